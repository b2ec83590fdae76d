package cli

import (
	"errors"
	"io"

	"github.com/manifoldco/promptui"
)

var ErrAborted = errors.New("aborted")

const selectSize = 12

// PromptUI prompts on a terminal. Zero values use the process' stdin and
// stdout.
type PromptUI struct {
	Stdin  io.ReadCloser
	Stdout io.WriteCloser
}

func (p PromptUI) Select(label string, items []string, cursor int) (int, error) {
	s := promptui.Select{
		Label:     label,
		Items:     items,
		CursorPos: cursor,
		Size:      min(len(items), selectSize),
		HideHelp:  true,
		Stdin:     p.Stdin,
		Stdout:    p.Stdout,
	}
	i, _, err := s.Run()
	if err != nil {
		return 0, promptError(err)
	}
	return i, nil
}

func (p PromptUI) Input(label, defaultValue string, validate func(string) error) (string, error) {
	in := promptui.Prompt{
		Label:     label,
		Default:   defaultValue,
		AllowEdit: true,
		Validate:  validate,
		Stdin:     p.Stdin,
		Stdout:    p.Stdout,
	}
	v, err := in.Run()
	if err != nil {
		return "", promptError(err)
	}
	return v, nil
}

func promptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort) {
		return ErrAborted
	}
	return err
}
