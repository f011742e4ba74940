// Package b64 converts UTF-8 text to and from standard Base64.
package b64

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrEmptyInput is returned when the input is empty or whitespace only.
	ErrEmptyInput = errors.New("empty input")
	// ErrInvalidBase64 is returned when the input is not Base64 or does not decode to UTF-8 text.
	ErrInvalidBase64 = errors.New("invalid base64")
)

// Encode returns the padded standard Base64 encoding of text.
func Encode(text string) (string, error) {
	const op = "b64.Encode"

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyInput)
	}

	return base64.StdEncoding.EncodeToString([]byte(text)), nil
}

// Decode decodes standard Base64 into text. ASCII whitespace anywhere in the
// input is ignored and trailing padding is optional.
func Decode(encoded string) (string, error) {
	const op = "b64.Decode"

	if strings.TrimSpace(encoded) == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyInput)
	}

	s := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\f', '\r':
			return -1
		}
		return r
	}, encoded)

	if len(s)%4 == 0 {
		s = strings.TrimSuffix(s, "=")
		s = strings.TrimSuffix(s, "=")
	}

	data, err := base64.RawStdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrInvalidBase64, err)
	}

	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s: %w: not utf-8 text", op, ErrInvalidBase64)
	}

	return string(data), nil
}
