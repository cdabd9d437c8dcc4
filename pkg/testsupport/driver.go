package testsupport

import (
	"context"
	"errors"

	"github.com/goliatone/go-formreader/pkg/engine"
)

// ScriptedDriver replays canned answers in call order. Running out of script
// fails the prompt so tests notice unexpected prompts.
type ScriptedDriver struct {
	Inputs   []string
	Selects  []int
	Multis   [][]int
	Messages []string
	Warnings []string

	// Prompts records the message of every Input/Select/MultiSelect call.
	Prompts []string

	inputPos  int
	selectPos int
	multiPos  int
}

var _ engine.PromptDriver = (*ScriptedDriver)(nil)

// ErrScriptExhausted is returned when a prompt has no scripted answer left.
var ErrScriptExhausted = errors.New("testsupport: script exhausted")

func (s *ScriptedDriver) Input(_ context.Context, cfg engine.InputConfig) (string, error) {
	s.Prompts = append(s.Prompts, cfg.Message)
	if s.inputPos >= len(s.Inputs) {
		return "", ErrScriptExhausted
	}
	val := s.Inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *ScriptedDriver) Select(_ context.Context, cfg engine.SelectConfig) (int, error) {
	s.Prompts = append(s.Prompts, cfg.Message)
	if s.selectPos >= len(s.Selects) {
		return -1, ErrScriptExhausted
	}
	val := s.Selects[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *ScriptedDriver) MultiSelect(_ context.Context, cfg engine.SelectConfig) ([]int, error) {
	s.Prompts = append(s.Prompts, cfg.Message)
	if s.multiPos >= len(s.Multis) {
		return nil, ErrScriptExhausted
	}
	val := s.Multis[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *ScriptedDriver) Info(_ context.Context, msg string) error {
	s.Messages = append(s.Messages, msg)
	return nil
}

func (s *ScriptedDriver) Warn(_ context.Context, msg string) error {
	s.Warnings = append(s.Warnings, msg)
	return nil
}

// Consumed reports whether every scripted answer was used.
func (s *ScriptedDriver) Consumed() bool {
	return s.inputPos == len(s.Inputs) && s.selectPos == len(s.Selects) && s.multiPos == len(s.Multis)
}
