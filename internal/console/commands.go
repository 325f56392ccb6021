package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ErrUnknownCommand is returned for an unrecognised command word.
var ErrUnknownCommand = errors.New("unknown command")

// Actions are the user actions a command line can trigger.
type Actions interface {
	SelectMarket(base, market string) error
	Invert() error
	ToggleLogScale() error
	SetFilter(value string) error
	Search() error
	FirstSearch(token string) error
	RequestChart() error
}

// Commands turns text lines into user actions.
//
//	select [BASE MARKET]   pick a market; no arguments re-requests the book
//	invert                 swap quote direction
//	log                    toggle log scale
//	filter MPA|LPT|UIA|Pool|BTS
//	search [TEXT]          set the search box and search
//	first TOKEN            first picker stage choice
//	chart [SIZE [TYPE]]    set chart controls and request candles
type Commands struct {
	actions Actions
	dom     *DOM
	logger  *slog.Logger
}

// NewCommands creates a command interpreter over actions. Control values
// set by commands are written to dom.
func NewCommands(actions Actions, dom *DOM, logger *slog.Logger) *Commands {
	if logger == nil {
		logger = slog.Default()
	}
	return &Commands{actions: actions, dom: dom, logger: logger}
}

// Execute runs a single command line. Blank lines are ignored.
func (c *Commands) Execute(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "select":
		switch len(args) {
		case 0:
			return c.actions.SelectMarket("", "")
		case 2:
			return c.actions.SelectMarket(args[0], args[1])
		}
		return fmt.Errorf("select: want 0 or 2 arguments, got %d", len(args))

	case "invert":
		return c.actions.Invert()

	case "log":
		return c.actions.ToggleLogScale()

	case "filter":
		if len(args) != 1 {
			return fmt.Errorf("filter: want 1 argument, got %d", len(args))
		}
		return c.actions.SetFilter(args[0])

	case "search":
		c.dom.SetControl("coinsearch", strings.Join(args, " "))
		return c.actions.Search()

	case "first":
		if len(args) != 1 {
			return fmt.Errorf("first: want 1 argument, got %d", len(args))
		}
		return c.actions.FirstSearch(args[0])

	case "chart":
		if len(args) > 0 {
			c.dom.SetControl("options", args[0])
		}
		if len(args) > 1 {
			c.dom.SetControl("candles", args[1])
		}
		return c.actions.RequestChart()
	}
	return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
}

// Run executes lines from r until EOF or ctx is done. Failed commands are
// logged and do not stop the reader.
func (c *Commands) Run(ctx context.Context, r io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		s := bufio.NewScanner(r)
		for s.Scan() {
			select {
			case lines <- s.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- s.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if err := c.Execute(line); err != nil {
				c.logger.Warn("command failed", "line", line, "error", err)
			}
		}
	}
}
