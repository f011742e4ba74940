// Package shortcode generates the random tokens used as short codes.
package shortcode

import (
	"errors"
	"fmt"
	"io"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet is the set of symbols a short code is drawn from.
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultLength is the length of generated short codes unless configured otherwise.
const DefaultLength = 6

// ErrInvalidLength is returned by New when the requested length is not positive.
var ErrInvalidLength = errors.New("short code length must be positive")

// largest multiple of len(Alphabet) that fits in a byte; bytes above it are rejected.
const rejectionBound = 256 - 256%len(Alphabet)

type Option func(*Generator)

// WithRandSource makes the generator draw bytes from r instead of the default
// cryptographically strong source.
func WithRandSource(r io.Reader) Option {
	return func(g *Generator) {
		g.rand = r
	}
}

// Generator produces fixed-length tokens uniformly distributed over Alphabet.
type Generator struct {
	length int
	rand   io.Reader
}

func New(length int, opts ...Option) (*Generator, error) {
	const op = "shortcode.New"

	if length <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidLength)
	}

	g := &Generator{length: length}
	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// Length returns the number of characters in every generated code.
func (g *Generator) Length() int {
	return g.length
}

// Generate returns a new random short code.
func (g *Generator) Generate() (string, error) {
	const op = "shortcode.Generator.Generate"

	if g.rand == nil {
		code, err := gonanoid.Generate(Alphabet, g.length)
		if err != nil {
			return "", fmt.Errorf("%s: failed to generate code: %w", op, err)
		}
		return code, nil
	}

	code := make([]byte, 0, g.length)
	buf := make([]byte, g.length)

	for len(code) < g.length {
		chunk := buf[:g.length-len(code)]
		if _, err := io.ReadFull(g.rand, chunk); err != nil {
			return "", fmt.Errorf("%s: failed to read random bytes: %w", op, err)
		}

		for _, b := range chunk {
			if int(b) < rejectionBound {
				code = append(code, Alphabet[int(b)%len(Alphabet)])
			}
		}
	}

	return string(code), nil
}
