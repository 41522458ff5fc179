// Package dialog models the studio's blocking text prompts as explicit
// request/response exchanges. A cancelled dialog is a Response with OK
// false; it is never an error.
package dialog

import (
	"context"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
)

// Request asks the user for a single string.
type Request struct {
	Label   string
	Default string
}

// Response carries the user's answer. OK is false when the dialog was
// cancelled or the answer was empty.
type Response struct {
	Value string
	OK    bool
}

// None is the cancelled response.
var None = Response{}

// Answer returns a confirmed response, or None for an empty value.
func Answer(value string) Response {
	if value == "" {
		return None
	}
	return Response{Value: value, OK: true}
}

// Prompter shows a dialog and waits for the answer.
type Prompter interface {
	Prompt(ctx context.Context, req Request) (Response, error)
}

// Fixed answers every dialog with the same value. It is how HTTP request
// bodies and tests feed answers to shell actions.
type Fixed string

func (f Fixed) Prompt(ctx context.Context, _ Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return None, err
	}
	return Answer(string(f)), nil
}

// Cancelled answers every dialog by cancelling it.
type Cancelled struct{}

func (Cancelled) Prompt(context.Context, Request) (Response, error) { return None, nil }

// Optional answers with the pointed-to value, or cancels when it is nil.
// JSON bodies with a missing field decode into a nil pointer.
func Optional(v *string) Prompter {
	if v == nil {
		return Cancelled{}
	}
	return Fixed(*v)
}

// Terminal prompts on the controlling terminal.
type Terminal struct{}

func (Terminal) Prompt(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return None, err
	}
	p := promptui.Prompt{
		Label:     req.Label,
		Default:   req.Default,
		AllowEdit: true,
	}
	value, err := p.Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort) {
		return None, nil
	}
	if err != nil {
		return None, fmt.Errorf("prompt %q: %w", req.Label, err)
	}
	return Answer(value), nil
}
