// Package prompt asks the operator yes/no questions before release steps
// that change repository state.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Confirmer answers yes/no questions put to the operator.
type Confirmer interface {
	Confirm(message string, def bool) (bool, error)
}

// Terminal prompts on Out and reads one line per question from In.
type Terminal struct {
	In  *bufio.Reader
	Out io.Writer
}

// NewTerminal returns a Terminal bound to stdin/stdout.
func NewTerminal() *Terminal {
	return &Terminal{In: bufio.NewReader(os.Stdin), Out: os.Stdout}
}

// Confirm prints message with a [Y/n] or [y/N] hint and reads the answer.
// Empty or unrecognized input selects the default.
func (t *Terminal) Confirm(message string, def bool) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	fmt.Fprintf(t.Out, "%s %s ", message, hint)

	line, err := t.In.ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return def, nil
	}
}

// AssumeYes answers yes to every question; it backs the --yes flag.
type AssumeYes struct{}

func (AssumeYes) Confirm(string, bool) (bool, error) { return true, nil }

// Scripted replays canned answers in order and records what was asked.
// Running out of answers is an error so tests notice unexpected prompts.
type Scripted struct {
	Answers []bool
	Asked   []string
	next    int
}

func (s *Scripted) Confirm(message string, def bool) (bool, error) {
	s.Asked = append(s.Asked, message)
	if s.next >= len(s.Answers) {
		return false, fmt.Errorf("unexpected prompt: %s", message)
	}
	ans := s.Answers[s.next]
	s.next++
	return ans, nil
}
