// Package notify defines the two user-facing primitives the player core
// calls into: a notice and a two-button confirmation.
package notify

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/AlecAivazis/survey/v2"
	"github.com/offplay/offplay/icon"
	"github.com/offplay/offplay/style"
)

// Notifier shows notices and asks for confirmations.
type Notifier interface {
	Notify(message string) error
	Confirm(message, affirmative, negative string) (bool, error)
}

// Survey prompts on the terminal.
type Survey struct {
	Out io.Writer
}

func (s *Survey) out() io.Writer {
	if s.Out == nil {
		return os.Stdout
	}
	return s.Out
}

func (s *Survey) Notify(message string) error {
	_, err := fmt.Fprintf(s.out(), "%s %s\n", icon.Get(icon.Notice), message)
	return err
}

// Confirm offers the two labels as a select so the affirmative action is
// named explicitly ("Delete All") rather than a bare yes/no.
func (s *Survey) Confirm(message, affirmative, negative string) (bool, error) {
	var answer string
	prompt := &survey.Select{
		Message: message,
		Options: []string{negative, affirmative},
		Default: negative,
	}

	if err := survey.AskOne(prompt, &answer); err != nil {
		return false, err
	}
	return answer == affirmative, nil
}

// Auto answers every confirmation with a fixed value and records what it
// was shown.
type Auto struct {
	Answer bool

	mu       sync.Mutex
	notices  []string
	confirms []string
}

func (a *Auto) Notify(message string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.notices = append(a.notices, message)
	return nil
}

func (a *Auto) Confirm(message, _, _ string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.confirms = append(a.confirms, message)
	return a.Answer, nil
}

// Notices returns every message passed to Notify.
func (a *Auto) Notices() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.notices...)
}

// Confirms returns every message passed to Confirm.
func (a *Auto) Confirms() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.confirms...)
}

// Printer writes notices with the active theme and auto-answers confirmations.
// It backs non-interactive commands run with --yes.
type Printer struct {
	Out    io.Writer
	Answer bool
}

func (p *Printer) Notify(message string) error {
	_, err := fmt.Fprintln(p.Out, style.Fg(style.Current().Warning)(message))
	return err
}

func (p *Printer) Confirm(message, affirmative, negative string) (bool, error) {
	label := negative
	if p.Answer {
		label = affirmative
	}
	_, err := fmt.Fprintf(p.Out, "%s %s\n", message, style.Subtle("["+label+"]"))
	return p.Answer, err
}
