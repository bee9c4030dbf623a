package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Prompter asks questions on out and reads one answer per input line.
// Input is read by a background goroutine so a pending question can be
// abandoned when the context is cancelled.
type Prompter struct {
	out   io.Writer
	lines <-chan string
}

// NewPrompter starts reading lines from in. The line channel is closed on EOF.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return &Prompter{out: out, lines: lines}
}

// Ask prints label and returns the trimmed answer. It returns io.EOF once
// the input is exhausted and the context error if ctx is done first.
func (p *Prompter) Ask(ctx context.Context, label string) (string, error) {
	if _, err := fmt.Fprint(p.out, label+": "); err != nil {
		return "", err
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-p.lines:
		if !ok {
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
}

// AskDefault is like Ask but an empty answer selects def.
func (p *Prompter) AskDefault(ctx context.Context, label, def string) (string, error) {
	answer, err := p.Ask(ctx, fmt.Sprintf("%s [%s]", label, def))
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// AskInt asks again until the answer is a whole number.
func (p *Prompter) AskInt(ctx context.Context, label string) (int, error) {
	for {
		answer, err := p.Ask(ctx, label)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err == nil {
			return n, nil
		}
		fmt.Fprintln(p.out, "Please enter a whole number.")
	}
}

// Confirm asks a yes/no question. Anything but an explicit yes is a no.
func (p *Prompter) Confirm(ctx context.Context, label string) (bool, error) {
	answer, err := p.Ask(ctx, label+" (y/N)")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes", "s", "si", "sí":
		return true, nil
	}
	return false, nil
}
