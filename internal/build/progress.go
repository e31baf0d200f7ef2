package build

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// Progress shows that a long step is running.
type Progress interface {
	Start(label string)
	Stop()
}

// NewProgress returns a spinner on f when f is a terminal, and a silent
// Progress otherwise.
func NewProgress(f *os.File) Progress {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return NoProgress{}
	}
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(f))
	return &spinnerProgress{s: s}
}

// Interactive reports whether p draws on a terminal.
func Interactive(p Progress) bool {
	_, ok := p.(*spinnerProgress)
	return ok
}

type spinnerProgress struct {
	s *spinner.Spinner
}

func (p *spinnerProgress) Start(label string) {
	p.s.Suffix = " " + label
	p.s.Start()
}

func (p *spinnerProgress) Stop() {
	p.s.Stop()
}

// NoProgress draws nothing.
type NoProgress struct{}

func (NoProgress) Start(string) {}

func (NoProgress) Stop() {}
