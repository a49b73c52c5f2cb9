// Package llm wraps the external language model behind a single-method
// interface so callers can be tested with deterministic fakes.
package llm

import (
	"context"
	"errors"
	"strings"
)

// DefaultMIMEType is assumed for inline documents that arrive without one.
const DefaultMIMEType = "application/pdf"

var (
	ErrEmptyPrompt   = errors.New("llm: empty prompt")
	ErrEmptyResponse = errors.New("llm: empty model response")
	ErrMissingAPIKey = errors.New("llm: GEMINI_API_KEY is missing")
)

// Input is either a text prompt or a prompt with an inline document.
type Input struct {
	Prompt   string
	Data     []byte
	MIMEType string
}

// Generator returns free-form model text for an input. Callers own all
// parsing of the reply.
type Generator interface {
	Generate(ctx context.Context, in Input) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, in Input) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, in Input) (string, error) {
	return f(ctx, in)
}

// Text builds a prompt-only input.
func Text(prompt string) Input {
	return Input{Prompt: prompt}
}

// Inline builds an input carrying a document. An empty mimeType falls back
// to DefaultMIMEType.
func Inline(data []byte, mimeType, prompt string) Input {
	if strings.TrimSpace(mimeType) == "" {
		mimeType = DefaultMIMEType
	}
	return Input{Prompt: prompt, Data: data, MIMEType: mimeType}
}

// HasData reports whether the input carries an inline document.
func (in Input) HasData() bool {
	return len(in.Data) > 0
}

// Validate rejects inputs that cannot be sent.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Prompt) == "" {
		return ErrEmptyPrompt
	}
	return nil
}
