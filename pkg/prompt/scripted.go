package prompt

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrScriptExhausted is returned when a Scripted driver runs out of answers.
var ErrScriptExhausted = errors.New("prompt: no scripted answer")

// Scripted is a Driver that replays canned answers in order. It records
// every prompt message and info line it sees.
type Scripted struct {
	mu sync.Mutex

	Inputs   []string
	Selects  []int
	Confirms []bool

	inputPos   int
	selectPos  int
	confirmPos int

	Asked []string
	Infos []string
}

var _ Driver = (*Scripted)(nil)

func (s *Scripted) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Asked = append(s.Asked, cfg.Message)
	if s.inputPos >= len(s.Inputs) {
		return "", fmt.Errorf("%w: input %q", ErrScriptExhausted, cfg.Message)
	}
	val := s.Inputs[s.inputPos]
	s.inputPos++
	if val == "" {
		val = cfg.Default
	}
	if cfg.Validator != nil {
		if err := cfg.Validator(val); err != nil {
			return "", err
		}
	}
	return val, nil
}

func (s *Scripted) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Asked = append(s.Asked, cfg.Message)
	if s.confirmPos >= len(s.Confirms) {
		return false, fmt.Errorf("%w: confirm %q", ErrScriptExhausted, cfg.Message)
	}
	val := s.Confirms[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *Scripted) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Asked = append(s.Asked, cfg.Message)
	if s.selectPos >= len(s.Selects) {
		return 0, fmt.Errorf("%w: select %q", ErrScriptExhausted, cfg.Message)
	}
	val := s.Selects[s.selectPos]
	s.selectPos++
	if val < 0 || val >= len(cfg.Options) {
		return 0, fmt.Errorf("prompt: scripted index %d out of range for %q", val, cfg.Message)
	}
	return val, nil
}

func (s *Scripted) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Infos = append(s.Infos, msg)
	return nil
}
