// Package console collects free-text input from the user.
//
// Cancellation is part of the answer, not an error: pressing ctrl+c during a
// prompt yields Answer{Cancelled: true}. Errors are reserved for genuinely
// broken terminals.
package console

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

// Answer is the closed result of one prompt.
type Answer struct {
	// Cancelled is true when the user aborted the prompt.
	Cancelled bool

	// Text is the user's input, trimmed. Empty text is a valid answer.
	Text string
}

// Terminal prompts on the controlling terminal using huh forms.
type Terminal struct{}

// New creates a terminal console.
func New() *Terminal {
	return &Terminal{}
}

// Ask presents a multi-line text prompt and returns the answer.
func (t *Terminal) Ask(title string) (Answer, error) {
	var text string
	form := huh.NewForm(huh.NewGroup(
		huh.NewText().
			Title(title).
			Value(&text),
	))
	return runForm(form, &text)
}

// AskLine presents a single-line input prompt and returns the answer.
func (t *Terminal) AskLine(title string) (Answer, error) {
	var text string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(title).
			Value(&text),
	))
	return runForm(form, &text)
}

func runForm(form *huh.Form, text *string) (Answer, error) {
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return Answer{Cancelled: true}, nil
		}
		return Answer{}, err
	}
	return Answer{Text: strings.TrimSpace(*text)}, nil
}
