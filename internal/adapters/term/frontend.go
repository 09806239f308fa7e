package term

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mikey/email-threat-widget/internal/widget"
	"go.uber.org/zap"
)

// Frontend is an interactive terminal loop around the widget: it reads
// pasted email text and triggers one analysis per submission. It implements
// ports.Frontend.
type Frontend struct {
	widget *widget.Widget
	in     io.Reader
	out    io.Writer
	logger *zap.Logger
}

// NewFrontend creates a new terminal frontend
func NewFrontend(w *widget.Widget, in io.Reader, out io.Writer, logger *zap.Logger) *Frontend {
	return &Frontend{
		widget: w,
		in:     in,
		out:    out,
		logger: logger,
	}
}

// Run reads email text from the input until EOF. A line holding a single
// '.' submits the text gathered so far, including an empty submission,
// which renders the empty-input prompt.
func (f *Frontend) Run(ctx context.Context) error {
	fmt.Fprintln(f.out, "Paste email text, then a single '.' on its own line to analyze. Ctrl-D quits.")

	scanner := bufio.NewScanner(f.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Text()
		if line != "." {
			lines = append(lines, line)
			continue
		}

		f.widget.Analyze(ctx, strings.Join(lines, "\n"))
		lines = lines[:0]
		fmt.Fprintln(f.out, "\nPaste the next email, '.' to analyze.")
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	f.logger.Debug("Input exhausted, frontend exiting")
	return nil
}
