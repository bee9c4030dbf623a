package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"
)

const banner = `
 ____  _ _     _ _       _
| __ )(_) |__ | (_) ___ | |_ ___  ___ __ _
|  _ \| | '_ \| | |/ _ \| __/ _ \/ __/ _' |
| |_) | | |_) | | | (_) | ||  __/ (_| (_| |
|____/|_|_.__/|_|_|\___/ \__\___|\___\__,_|
`

const (
	mainMenuText = `
Main menu
  1. Borrowers
  2. Books
  3. Loans
  0. Exit`

	borrowersMenuText = `
Borrowers
  1. Register borrower
  2. List borrowers
  3. Update borrower
  4. Delete borrower
  0. Back`

	booksMenuText = `
Books
  1. Register book
  2. List books
  3. Update book
  4. Delete book
  0. Back`

	loansMenuText = `
Loans
  1. Issue loan
  2. Return loan
  3. List loans
  4. List returns
  0. Back`
)

// Menu is the interactive console of the library desk.
type Menu struct {
	logger    *zap.Logger
	ids       UIDHandler
	prompt    *Prompter
	report    Reporter
	borrowers BorrowerStorage
	books     BookStorage
	loans     LoanServiceProvider
	banner    bool
}

// NewMenu provides a console menu. The banner is only shown when showBanner
// is set, which is the case for interactive terminals.
func NewMenu(logger *zap.Logger, ids UIDHandler, prompt *Prompter, report Reporter,
	borrowers BorrowerStorage, books BookStorage, loans LoanServiceProvider, showBanner bool,
) *Menu {
	return &Menu{
		logger:    logger,
		ids:       ids,
		prompt:    prompt,
		report:    report,
		borrowers: borrowers,
		books:     books,
		loans:     loans,
		banner:    showBanner,
	}
}

type action func(ctx context.Context) error

// Run loops on the main menu until the user exits, the input ends or ctx
// is cancelled. Only the latter is reported as an error.
func (m *Menu) Run(ctx context.Context) error {
	if m.banner {
		m.report.Notice(banner)
	}
	for {
		m.report.Notice(mainMenuText)
		choice, err := m.prompt.Ask(ctx, "Option")
		if err != nil {
			return endOfInput(err)
		}
		switch choice {
		case "1":
			err = m.submenu(ctx, borrowersMenuText, map[string]action{
				"1": m.createBorrower,
				"2": m.listBorrowers,
				"3": m.updateBorrower,
				"4": m.deleteBorrower,
			})
		case "2":
			err = m.submenu(ctx, booksMenuText, map[string]action{
				"1": m.createBook,
				"2": m.listBooks,
				"3": m.updateBook,
				"4": m.deleteBook,
			})
		case "3":
			err = m.submenu(ctx, loansMenuText, map[string]action{
				"1": m.issueLoan,
				"2": m.returnLoan,
				"3": m.listLoans,
				"4": m.listReturns,
			})
		case "0":
			m.report.Notice("Goodbye.")
			return nil
		default:
			m.report.Failure("Unknown option " + strconv.Quote(choice) + ".")
		}
		if err != nil {
			return endOfInput(err)
		}
	}
}

// submenu shows text and runs the selected action until the user goes back.
func (m *Menu) submenu(ctx context.Context, text string, actions map[string]action) error {
	for {
		m.report.Notice(text)
		choice, err := m.prompt.Ask(ctx, "Option")
		if err != nil {
			return err
		}
		if choice == "0" {
			return nil
		}
		fn, ok := actions[choice]
		if !ok {
			m.report.Failure("Unknown option " + strconv.Quote(choice) + ".")
			continue
		}
		if err = m.do(ctx, fn); err != nil {
			return err
		}
	}
}

// do runs one action under its own operation id. Domain failures are shown
// to the user and logged; only input errors are returned.
func (m *Menu) do(ctx context.Context, fn action) error {
	opID := m.ids.Generate(OperationIDPrefix)
	logger := m.logger.With(zap.String(string(OperationIDContextKey), opID))
	ctx = context.WithValue(ContextWithLogger(ctx, logger), OperationIDContextKey, opID)

	err := fn(ctx)
	if err == nil {
		return nil
	}
	if isInputError(err) {
		return err
	}
	logger.Warn("menu: operation failed", zap.Error(err))
	m.report.Failure(describeError(err))
	return nil
}

func isInputError(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// endOfInput turns the end of the input stream into a normal exit.
func endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// describeError maps a failure to the message shown to the user.
func describeError(err error) string {
	var missing missingFieldError
	var invalid invalidFieldError
	var storageErr *StorageError
	switch {
	case errors.Is(err, ErrBorrowerNotFound):
		return "No borrower is registered with that document."
	case errors.Is(err, ErrBookNotFound):
		return "No book is registered with that ISBN."
	case errors.Is(err, ErrLoanNotFound):
		return "No loan exists with that id."
	case errors.Is(err, ErrAlreadyExists):
		return "Already registered (" + err.Error() + ")."
	case errors.Is(err, ErrNoStockAvailable):
		return "No copies of that book are available."
	case errors.Is(err, ErrAlreadyReturned):
		return "That loan was already returned."
	case errors.As(err, &missing), errors.As(err, &invalid):
		return "Invalid input: " + err.Error() + "."
	case errors.As(err, &storageErr):
		return "Data file problem: " + storageErr.Error()
	}
	return "Unexpected error: " + err.Error()
}

func (m *Menu) createBorrower(ctx context.Context) error {
	var b Borrower
	var err error
	for _, f := range []struct {
		label string
		dst   *string
	}{
		{"Document number", &b.Document},
		{"Names", &b.Names},
		{"Surnames", &b.Surnames},
		{"Email", &b.Email},
	} {
		if *f.dst, err = m.prompt.Ask(ctx, f.label); err != nil {
			return err
		}
	}
	created, err := m.borrowers.Create(ctx, b)
	if err != nil {
		return err
	}
	m.report.Success("Borrower registered with id " + created.ID + ".")
	return nil
}

func (m *Menu) listBorrowers(ctx context.Context) error {
	borrowers, err := m.borrowers.List(ctx)
	if err != nil {
		return err
	}
	if len(borrowers) == 0 {
		m.report.Notice("No borrowers registered.")
		return nil
	}
	rows := make([][]string, 0, len(borrowers))
	for _, b := range SortByNaturalKey(borrowers, func(b Borrower) string { return b.Document }) {
		rows = append(rows, []string{b.ID, b.Document, b.Names, b.Surnames, b.Email})
	}
	m.report.Table("Borrowers", []string{"ID", "Document", "Names", "Surnames", "Email"}, rows)
	return nil
}

func (m *Menu) updateBorrower(ctx context.Context) error {
	document, err := m.prompt.Ask(ctx, "Document number")
	if err != nil {
		return err
	}
	current, err := m.borrowers.FindByDocument(ctx, document)
	if err != nil {
		return err
	}
	var update BorrowerUpdate
	if update.Names, err = m.askChange(ctx, "Names", current.Names); err != nil {
		return err
	}
	if update.Surnames, err = m.askChange(ctx, "Surnames", current.Surnames); err != nil {
		return err
	}
	if update.Email, err = m.askChange(ctx, "Email", current.Email); err != nil {
		return err
	}
	if update.IsEmpty() {
		m.report.Notice("Nothing changed.")
		return nil
	}
	if _, err = m.borrowers.Update(ctx, current.Document, update); err != nil {
		return err
	}
	m.report.Success("Borrower " + current.Document + " updated.")
	return nil
}

func (m *Menu) deleteBorrower(ctx context.Context) error {
	document, err := m.prompt.Ask(ctx, "Document number")
	if err != nil {
		return err
	}
	current, err := m.borrowers.FindByDocument(ctx, document)
	if err != nil {
		return err
	}
	ok, err := m.prompt.Confirm(ctx, fmt.Sprintf("Delete %s (%s)?", current.FullName(), current.Document))
	if err != nil {
		return err
	}
	if !ok {
		m.report.Notice("Deletion cancelled.")
		return nil
	}
	if err = m.borrowers.Delete(ctx, current.Document); err != nil {
		return err
	}
	m.report.Success("Borrower " + current.Document + " deleted.")
	return nil
}

func (m *Menu) createBook(ctx context.Context) error {
	var b Book
	var err error
	if b.ISBN, err = m.prompt.Ask(ctx, "ISBN"); err != nil {
		return err
	}
	if b.Title, err = m.prompt.Ask(ctx, "Title"); err != nil {
		return err
	}
	if b.Author, err = m.prompt.Ask(ctx, "Author"); err != nil {
		return err
	}
	if b.Stock, err = m.prompt.AskInt(ctx, "Copies in stock"); err != nil {
		return err
	}
	created, err := m.books.Create(ctx, b)
	if err != nil {
		return err
	}
	m.report.Success("Book registered with id " + created.ID + ".")
	return nil
}

func (m *Menu) listBooks(ctx context.Context) error {
	books, err := m.books.List(ctx)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		m.report.Notice("No books registered.")
		return nil
	}
	rows := make([][]string, 0, len(books))
	for _, b := range SortByNaturalKey(books, func(b Book) string { return b.ISBN }) {
		rows = append(rows, []string{b.ID, b.ISBN, b.Title, b.Author, strconv.Itoa(b.Stock)})
	}
	m.report.Table("Books", []string{"ID", "ISBN", "Title", "Author", "Stock"}, rows)
	return nil
}

func (m *Menu) updateBook(ctx context.Context) error {
	isbn, err := m.prompt.Ask(ctx, "ISBN")
	if err != nil {
		return err
	}
	current, err := m.books.FindByISBN(ctx, isbn)
	if err != nil {
		return err
	}
	var update BookUpdate
	if update.Title, err = m.askChange(ctx, "Title", current.Title); err != nil {
		return err
	}
	if update.Author, err = m.askChange(ctx, "Author", current.Author); err != nil {
		return err
	}
	stock, err := m.askChange(ctx, "Copies in stock", strconv.Itoa(current.Stock))
	if err != nil {
		return err
	}
	if stock != nil {
		n, errA := strconv.Atoi(*stock)
		if errA != nil {
			return invalidFieldError("stock " + *stock)
		}
		update.Stock = &n
	}
	if update.IsEmpty() {
		m.report.Notice("Nothing changed.")
		return nil
	}
	if _, err = m.books.Update(ctx, current.ISBN, update); err != nil {
		return err
	}
	m.report.Success("Book " + current.ISBN + " updated.")
	return nil
}

func (m *Menu) deleteBook(ctx context.Context) error {
	isbn, err := m.prompt.Ask(ctx, "ISBN")
	if err != nil {
		return err
	}
	current, err := m.books.FindByISBN(ctx, isbn)
	if err != nil {
		return err
	}
	ok, err := m.prompt.Confirm(ctx, fmt.Sprintf("Delete %q (%s)?", current.Title, current.ISBN))
	if err != nil {
		return err
	}
	if !ok {
		m.report.Notice("Deletion cancelled.")
		return nil
	}
	if err = m.books.Delete(ctx, current.ISBN); err != nil {
		return err
	}
	m.report.Success("Book " + current.ISBN + " deleted.")
	return nil
}

func (m *Menu) issueLoan(ctx context.Context) error {
	document, err := m.prompt.Ask(ctx, "Borrower document number")
	if err != nil {
		return err
	}
	isbn, err := m.prompt.Ask(ctx, "Book ISBN")
	if err != nil {
		return err
	}
	loan, err := m.loans.IssueLoan(ctx, document, isbn)
	if err != nil {
		return err
	}
	m.report.Success(fmt.Sprintf("Loan %s registered, due on %s.", loan.ID, FormatDate(loan.DueDate)))
	return nil
}

func (m *Menu) returnLoan(ctx context.Context) error {
	id, err := m.prompt.Ask(ctx, "Loan id")
	if err != nil {
		return err
	}
	loan, err := m.loans.ReturnLoan(ctx, id)
	if err != nil {
		return err
	}
	m.report.Success("Loan " + loan.ID + " returned.")
	return nil
}

func (m *Menu) listLoans(ctx context.Context) error {
	loans, err := m.loans.ListLoans(ctx)
	if err != nil {
		return err
	}
	m.showLoans("Loans", "No loans registered.", loans)
	return nil
}

func (m *Menu) listReturns(ctx context.Context) error {
	loans, err := m.loans.ListReturns(ctx)
	if err != nil {
		return err
	}
	m.showLoans("Returns", "No returned loans.", loans)
	return nil
}

func (m *Menu) showLoans(title, empty string, loans []JoinedLoan) {
	if len(loans) == 0 {
		m.report.Notice(empty)
		return
	}
	rows := make([][]string, 0, len(loans))
	for _, l := range loans {
		rows = append(rows, []string{l.LoanID, l.Borrower, l.Book, l.LoanDate, l.DueDate, string(l.Status)})
	}
	m.report.Table(title, []string{"ID", "Borrower", "Book", "Loan date", "Due date", "Status"}, rows)
}

// askChange asks for a new value with the current one as default. It
// returns nil when the value is kept.
func (m *Menu) askChange(ctx context.Context, label, current string) (*string, error) {
	answer, err := m.prompt.AskDefault(ctx, label, current)
	if err != nil {
		return nil, err
	}
	if answer == current {
		return nil, nil
	}
	return &answer, nil
}
