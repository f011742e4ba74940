// Package password generates random passwords and scores their strength.
package password

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	Uppercase = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	Lowercase = "abcdefghjkmnpqrstuvwxyz"
	Numbers   = "0123456789"
	Symbols   = "!@#$%^&*()_+-=[]{}|;:,.<>?"
	Ambiguous = "0O1lI"
)

const (
	MinLength     = 8
	MaxLength     = 64
	DefaultLength = 16
)

// ErrInvalidLength is returned when the requested length is outside [MinLength, MaxLength].
var ErrInvalidLength = errors.New("invalid password length")

// Options controls which characters a generated password may contain.
type Options struct {
	Length           int
	Uppercase        bool
	Lowercase        bool
	Numbers          bool
	Symbols          bool
	ExcludeAmbiguous bool
}

// DefaultOptions enables every character set and uses DefaultLength.
func DefaultOptions() Options {
	return Options{
		Length:    DefaultLength,
		Uppercase: true,
		Lowercase: true,
		Numbers:   true,
		Symbols:   true,
	}
}

// Charset returns the characters a password generated with opts is drawn from.
// With no set selected it falls back to Lowercase.
func (opts Options) Charset() string {
	var sb strings.Builder

	if opts.Uppercase {
		sb.WriteString(Uppercase)
	}
	if opts.Lowercase {
		sb.WriteString(Lowercase)
	}
	if opts.Numbers {
		sb.WriteString(Numbers)
	}
	if opts.Symbols {
		sb.WriteString(Symbols)
	}

	chars := sb.String()
	if opts.ExcludeAmbiguous {
		chars = strings.Map(func(r rune) rune {
			if strings.ContainsRune(Ambiguous, r) {
				return -1
			}
			return r
		}, chars)
	}

	if chars == "" {
		return Lowercase
	}

	return chars
}

// Generate returns a random password built from opts.
func Generate(opts Options) (string, error) {
	const op = "password.Generate"

	if opts.Length < MinLength || opts.Length > MaxLength {
		return "", fmt.Errorf("%s: %w: %d", op, ErrInvalidLength, opts.Length)
	}

	pwd, err := gonanoid.Generate(opts.Charset(), opts.Length)
	if err != nil {
		return "", fmt.Errorf("%s: failed to generate password: %w", op, err)
	}

	return pwd, nil
}

// Strength is the qualitative rating of a password.
type Strength string

const (
	Weak       Strength = "weak"
	Medium     Strength = "medium"
	Strong     Strength = "strong"
	VeryStrong Strength = "very_strong"
)

// Score rates pwd on a 0..9 scale: one point per length threshold reached
// (8, 12, 16, 20), one point each for lowercase, uppercase and digits, and two
// points for any other character. Length is measured in UTF-16 code units, so
// a character outside the BMP counts twice.
func Score(pwd string) int {
	score := 0

	n := len(utf16.Encode([]rune(pwd)))
	for _, threshold := range []int{8, 12, 16, 20} {
		if n >= threshold {
			score++
		}
	}

	var lower, upper, digit, other bool
	for _, r := range pwd {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			other = true
		}
	}

	if lower {
		score++
	}
	if upper {
		score++
	}
	if digit {
		score++
	}
	if other {
		score += 2
	}

	return score
}

// Evaluate maps the score of pwd to a Strength.
func Evaluate(pwd string) Strength {
	switch score := Score(pwd); {
	case score >= 7:
		return VeryStrong
	case score >= 5:
		return Strong
	case score >= 3:
		return Medium
	default:
		return Weak
	}
}
