package main

import (
	"context"
	"strings"
	"time"
)

// This file contains mocks definitions needed to perform unit tests.

// MockLoanStorage lets tests decide the outcome of each loans collection access.
type MockLoanStorage struct {
	LoadFunc func(ctx context.Context) ([]Loan, error)
	SaveFunc func(ctx context.Context, loans []Loan) error
}

// Load mocks the behavior of reading the loans collection.
func (m *MockLoanStorage) Load(ctx context.Context) ([]Loan, error) {
	return m.LoadFunc(ctx)
}

// Save mocks the behavior of rewriting the loans collection.
func (m *MockLoanStorage) Save(ctx context.Context, loans []Loan) error {
	return m.SaveFunc(ctx, loans)
}

// MockClocker implements a fake Clocker.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 0o7, 0o2, 10, 30, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `2023-07-02 10:30:00 +0000 UTC` in String format.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

// MockUIDHandler implements a fake UIDHandler.
type MockUIDHandler struct {
	MockedUID string
}

// NewMockUIDHandler returns a mocked instance with predictable id.
func NewMockUIDHandler(id string) *MockUIDHandler {
	return &MockUIDHandler{MockedUID: id}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	return prefix + ":" + muid.MockedUID
}

// MockReporter records every message and table rendered by the menu.
type MockReporter struct {
	Successes []string
	Failures  []string
	Notices   []string
	Tables    map[string][][]string
}

func NewMockReporter() *MockReporter {
	return &MockReporter{Tables: map[string][][]string{}}
}

func (mr *MockReporter) Success(msg string) {
	mr.Successes = append(mr.Successes, msg)
}

func (mr *MockReporter) Failure(msg string) {
	mr.Failures = append(mr.Failures, msg)
}

func (mr *MockReporter) Notice(msg string) {
	mr.Notices = append(mr.Notices, msg)
}

func (mr *MockReporter) Table(title string, _ []string, rows [][]string) {
	mr.Tables[title] = rows
}

// script joins answers into the input a user would type.
func script(answers ...string) *strings.Reader {
	return strings.NewReader(strings.Join(answers, "\n") + "\n")
}
