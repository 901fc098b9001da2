// Package console is the interactive front end: a line-oriented REPL over a reader and writer.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"FinAnalyst/internal/coordinator"
	"FinAnalyst/internal/model"
	"FinAnalyst/internal/notifier"
	"FinAnalyst/internal/recorder"
)

const helpText = `Ask about one or more stocks, for example:
  Analyze AAPL and NVDA this week
  How did $TSLA do over the last 30 days?
  and compared to last month?     (follows up on the previous tickers)
Commands:
  :history      list the queries of this session
  :journal [n]  show the last n journaled reports (needs database.sqlite_path)
  :help         show this help
  :quit         exit`

// Console reads queries line by line and prints reports.
type Console struct {
	In      io.Reader
	Out     io.Writer
	Handler coordinator.QueryHandler
	Session *coordinator.Session
	Journal recorder.Recorder

	styles styles
}

// New creates a console with a fresh session. journal may be nil.
func New(in io.Reader, out io.Writer, h coordinator.QueryHandler, journal recorder.Recorder) *Console {
	if journal == nil {
		journal = recorder.NewNoopRecorder()
	}
	return &Console{
		In:      in,
		Out:     out,
		Handler: h,
		Session: coordinator.NewSession(),
		Journal: journal,
		styles:  newStyles(out),
	}
}

// Run loops until EOF, :quit or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintln(c.Out, c.styles.title.Render("FinAnalyst")+c.styles.muted.Render("  type :help for examples, :quit to exit"))

	stop := make(chan struct{})
	defer close(stop)
	lines, readErr := readLines(c.In, stop)

	for {
		fmt.Fprint(c.Out, c.styles.prompt.Render("> "))
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.Out)
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(c.Out)
				return <-readErr
			}
			line = strings.TrimSpace(l)
		}

		switch {
		case line == "":
			continue
		case line == ":quit" || line == ":exit" || line == ":q":
			return nil
		case line == ":help":
			fmt.Fprintln(c.Out, helpText)
		case line == ":history":
			fmt.Fprintln(c.Out, notifier.FormatHistory(c.Session.Turns()))
		case strings.HasPrefix(line, ":journal"):
			c.printJournal(strings.TrimSpace(strings.TrimPrefix(line, ":journal")))
		case strings.HasPrefix(line, ":"):
			fmt.Fprintln(c.Out, c.styles.warning.Render("unknown command "+line+", try :help"))
		default:
			if err := c.Ask(ctx, line); err != nil {
				return err
			}
		}
	}
}

// Ask runs a single query and prints its report.
func (c *Console) Ask(ctx context.Context, text string) error {
	rep, err := c.Handler.Handle(ctx, model.NewQuery(text), c.Session)
	if err != nil {
		return err
	}
	c.PrintReport(rep)
	return nil
}

// PrintReport writes a report with a styled header per ticker.
func (c *Console) PrintReport(rep *model.Report) {
	for _, w := range rep.Warnings {
		fmt.Fprintln(c.Out, c.styles.warning.Render("warning: "+w))
	}
	if rep.Kind == model.ReportClarification {
		fmt.Fprintln(c.Out, rep.Text)
		return
	}
	var header []string
	for _, ac := range rep.Contexts {
		header = append(header, c.styles.sentiment(ac.Aggregate.Label).Render(fmt.Sprintf("%s %s", ac.Ticker, ac.Aggregate.Label)))
	}
	fmt.Fprintln(c.Out, strings.Join(header, c.styles.muted.Render(" | ")))
	fmt.Fprintln(c.Out, c.styles.report.Render(strings.TrimRight(rep.Text, "\n")))
}

func (c *Console) printJournal(arg string) {
	limit := 5
	if arg != "" {
		if n, err := strconv.Atoi(arg); err == nil && n > 0 {
			limit = n
		}
	}
	entries, err := c.Journal.Recent(limit)
	if err != nil {
		fmt.Fprintln(c.Out, c.styles.warning.Render("journal unavailable: "+err.Error()))
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(c.Out, c.styles.muted.Render("journal is empty or disabled"))
		return
	}
	for _, e := range entries {
		tickers := strings.Join(e.Tickers, ", ")
		if tickers == "" {
			tickers = string(e.Kind)
		}
		fmt.Fprintf(c.Out, "%s  %s -> %s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.Query, tickers)
	}
}

// readLines scans r in its own goroutine so that a blocked read does not hold up
// cancellation. The error channel receives the scanner error once input ends.
func readLines(r io.Reader, stop <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}
