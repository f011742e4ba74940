package b64

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr error
	}{
		{name: "empty", text: "", wantErr: ErrEmptyInput},
		{name: "whitespace", text: "   ", wantErr: ErrEmptyInput},
		{name: "ascii", text: "Hello, World!", want: "SGVsbG8sIFdvcmxkIQ=="},
		{name: "utf-8", text: "Merhaba dünya", want: "TWVyaGFiYSBkw7xueWE="},
		{name: "keeps surrounding whitespace", text: " a ", want: "IGEg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.text)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		want    string
		wantErr error
	}{
		{name: "empty", encoded: "", wantErr: ErrEmptyInput},
		{name: "whitespace", encoded: "\n\t", wantErr: ErrEmptyInput},
		{name: "padded", encoded: "SGVsbG8sIFdvcmxkIQ==", want: "Hello, World!"},
		{name: "unpadded", encoded: "SGVsbG8sIFdvcmxkIQ", want: "Hello, World!"},
		{name: "with line breaks", encoded: "SGVsbG8s\nIFdvcmxk\r\nIQ==", want: "Hello, World!"},
		{name: "utf-8", encoded: "TWVyaGFiYSBkw7xueWE=", want: "Merhaba dünya"},
		{name: "illegal characters", encoded: "not base64!", wantErr: ErrInvalidBase64},
		{name: "impossible length", encoded: "QUJDR", wantErr: ErrInvalidBase64},
		{name: "not utf-8", encoded: "/w==", wantErr: ErrInvalidBase64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.encoded)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
