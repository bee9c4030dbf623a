package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

type AppProvider interface {
	Run() error
	Serve(ctx context.Context, cancel context.CancelFunc) func() error
	Stop(nCtx, gCtx context.Context) func() error
}

type App struct {
	logger   *zap.Logger
	config   *Config
	menu     *Menu
	cleanups []func()
}

// NewApp provides an instance of App.
func NewApp() (AppProvider, error) {
	config, err := LoadAndInitConfigs(GitCommit, GitTag, BuildTime)
	if err != nil {
		return nil, fmt.Errorf("failed to setup app configuration: %s", err)
	}

	// ensure the logs folder exists and Setup the logging module.
	err = os.MkdirAll(config.LogFolder, 0o700)
	if err != nil {
		return nil, fmt.Errorf("failed to create logging folder: %s", err)
	}
	clock := NewClock(config.IsProduction)
	logWriter := NewRSyncWriter(config, clock)
	logger, flusher := SetupLogging(config, logWriter, NewTickClock(clock))
	cleanups := []func(){
		func() {
			if ferr := flusher(); ferr != nil {
				fmt.Fprintln(os.Stderr, "error during flushing of logs: ", ferr)
			}
		},
		func() {
			if cerr := logWriter.Close(); cerr != nil {
				fmt.Fprintln(os.Stderr, "error during closing of log file: ", cerr)
			}
		},
	}

	// Setup the three collections on the configured format.
	borrowersPath, booksPath, loansPath := config.DataFiles()
	borrowerStore, err := NewBorrowerStore(logger, borrowersPath, config.Storage.BoltTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to setup borrowers storage: %s", err)
	}
	bookStore, err := NewBookStore(logger, booksPath, config.Storage.BoltTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to setup books storage: %s", err)
	}
	loanStore, err := NewLoanStore(logger, loansPath, config.Storage.BoltTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to setup loans storage: %s", err)
	}
	loanService := NewLoanService(logger, clock, config.Loans.PeriodDays, loanStore, borrowerStore, bookStore)

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	menu := NewMenu(
		logger,
		NewIDsHandler(),
		NewPrompter(os.Stdin, os.Stdout),
		NewConsoleReporter(os.Stdout),
		borrowerStore,
		bookStore,
		loanService,
		interactive,
	)

	logger.Info("app configured",
		zap.String("storage.format", config.Storage.Format),
		zap.String("storage.folder", config.Storage.Folder),
		zap.Int("loans.period_days", config.Loans.PeriodDays),
		zap.Bool("app.interactive", interactive),
	)

	return &App{
		logger:   logger,
		config:   config,
		menu:     menu,
		cleanups: cleanups,
	}, nil
}

// Run starts the console menu and a goroutine which is responsible to stop it.
func (app *App) Run() error {
	defer app.Clean()
	nCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(nCtx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(app.Serve(gCtx, cancel))
	g.Go(app.Stop(nCtx, gCtx))

	err := g.Wait()
	app.logger.Info("app stopped", zap.Error(err))
	return err
}

// Clean calls all registered cleanups functions.
func (app *App) Clean() {
	for _, f := range app.cleanups {
		f()
	}
}

// Serve runs the menu until the user leaves. It cancels ctx on return so
// that Stop is released. Its returned error will be caught by the errorgroup.
func (app *App) Serve(ctx context.Context, cancel context.CancelFunc) func() error {
	return func() error {
		defer cancel()
		app.logger.Info("menu starting", zap.String("app.version", app.version()))
		err := app.menu.Run(ctx)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		return err
	}
}

// Stop waits for the group context and states the reason of the stop.
// It returns `nil` to allow the errorgroup catches only the `Serve` result.
func (app *App) Stop(nCtx, gCtx context.Context) func() error {
	return func() error {
		<-gCtx.Done()
		if nCtx.Err() != nil {
			app.logger.Info("menu stopping. reason: requested to stop")
			fmt.Fprintln(os.Stdout, "\nInterrupted. Goodbye.")
		} else {
			app.logger.Info("menu stopping. reason: menu closed")
		}
		return nil
	}
}

// version uses git commit in case the tag is not set.
func (app *App) version() string {
	if app.config.GitTag == "" {
		return app.config.GitCommit
	}
	return app.config.GitTag
}
