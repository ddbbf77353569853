package cli

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
)

// WithProgress runs fn behind a spinner on w. The spinner is skipped when
// quiet is set or w is not a terminal, so piped output stays clean.
func WithProgress(w io.Writer, quiet bool, message string, fn func() error) error {
	if quiet || !isTerminal(w) {
		return fn()
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + message
	s.Start()

	err := fn()
	if err != nil {
		s.FinalMSG = text.FgRed.Sprint("✗ "+message) + "\n"
	}
	s.Stop()
	return err
}
