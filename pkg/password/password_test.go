package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_Charset(t *testing.T) {
	t.Run("all sets", func(t *testing.T) {
		chars := DefaultOptions().Charset()

		assert.Equal(t, Uppercase+Lowercase+Numbers+Symbols, chars)
	})

	t.Run("nothing selected falls back to lowercase", func(t *testing.T) {
		chars := Options{Length: 12}.Charset()

		assert.Equal(t, Lowercase, chars)
	})

	t.Run("exclude ambiguous", func(t *testing.T) {
		opts := DefaultOptions()
		opts.ExcludeAmbiguous = true

		chars := opts.Charset()

		for _, r := range Ambiguous {
			assert.NotContains(t, chars, string(r))
		}
		assert.Contains(t, chars, "2")
	})

	t.Run("only ambiguous characters left", func(t *testing.T) {
		opts := Options{Length: 8, Numbers: true, ExcludeAmbiguous: true}

		chars := opts.Charset()

		assert.Equal(t, "23456789", chars)
	})
}

func TestGenerate(t *testing.T) {
	t.Run("too short", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Length = MinLength - 1

		pwd, err := Generate(opts)

		assert.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidLength)
		assert.Empty(t, pwd)
	})

	t.Run("too long", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Length = MaxLength + 1

		_, err := Generate(opts)

		assert.ErrorIs(t, err, ErrInvalidLength)
	})

	t.Run("default options", func(t *testing.T) {
		pwd, err := Generate(DefaultOptions())

		assert.NoError(t, err)
		assert.Len(t, pwd, DefaultLength)
	})

	t.Run("digits only", func(t *testing.T) {
		pwd, err := Generate(Options{Length: 32, Numbers: true})

		require.NoError(t, err)
		assert.Len(t, pwd, 32)
		assert.Regexp(t, "^[0-9]+$", pwd)
	})

	t.Run("no ambiguous characters", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Length = MaxLength
		opts.ExcludeAmbiguous = true

		for i := 0; i < 50; i++ {
			pwd, err := Generate(opts)
			require.NoError(t, err)
			assert.False(t, strings.ContainsAny(pwd, Ambiguous), "ambiguous character in %q", pwd)
		}
	})
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		pwd       string
		wantScore int
		want      Strength
	}{
		{pwd: "", wantScore: 0, want: Weak},
		{pwd: "abc", wantScore: 1, want: Weak},
		{pwd: "abcdefgh", wantScore: 2, want: Weak},
		{pwd: "abcdefgh1", wantScore: 3, want: Medium},
		{pwd: "Abcdefgh1", wantScore: 4, want: Medium},
		{pwd: "Abcdefghijk1", wantScore: 5, want: Strong},
		{pwd: "Abcdefgh1!", wantScore: 6, want: Strong},
		{pwd: "Abcdefghijk1!", wantScore: 7, want: VeryStrong},
		{pwd: "Abcdefghijklmnopqrs1!", wantScore: 9, want: VeryStrong},
		{pwd: "aaaa😀😀", wantScore: 4, want: Medium},
		{pwd: "ççççççç", wantScore: 2, want: Weak},
	}

	for _, tt := range tests {
		t.Run(tt.pwd, func(t *testing.T) {
			assert.Equal(t, tt.wantScore, Score(tt.pwd))
			assert.Equal(t, tt.want, Evaluate(tt.pwd))
		})
	}
}
