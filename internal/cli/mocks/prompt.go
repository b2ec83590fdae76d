package mocks

import "fmt"

// SelectCall records one Select prompt.
type SelectCall struct {
	Label  string
	Items  []string
	Cursor int
}

// ScriptedPrompter answers prompts from queues. An exhausted queue returns
// Exhausted, which lets tests end a menu loop.
type ScriptedPrompter struct {
	Selections []string
	Inputs     []string
	Exhausted  error

	SelectCalls []SelectCall
	InputLabels []string
}

// Select picks the item whose text matches the next scripted selection.
func (p *ScriptedPrompter) Select(label string, items []string, cursor int) (int, error) {
	p.SelectCalls = append(p.SelectCalls, SelectCall{Label: label, Items: items, Cursor: cursor})
	if len(p.Selections) == 0 {
		return 0, p.Exhausted
	}
	want := p.Selections[0]
	p.Selections = p.Selections[1:]
	for i, item := range items {
		if item == want {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no item %q in %v", want, items)
}

func (p *ScriptedPrompter) Input(label, defaultValue string, validate func(string) error) (string, error) {
	p.InputLabels = append(p.InputLabels, label)
	if len(p.Inputs) == 0 {
		return "", p.Exhausted
	}
	v := p.Inputs[0]
	p.Inputs = p.Inputs[1:]
	if v == "" {
		v = defaultValue
	}
	if validate != nil {
		if err := validate(v); err != nil {
			return "", err
		}
	}
	return v, nil
}

// Progress records its lifecycle and status messages.
type Progress struct {
	Text     string
	Started  int
	Stopped  int
	Messages []string
}

func (p *Progress) Start()            { p.Started++ }
func (p *Progress) Stop()             { p.Stopped++ }
func (p *Progress) Status(msg string) { p.Messages = append(p.Messages, msg) }
