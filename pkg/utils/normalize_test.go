package utils

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{
			name: "bare domain gets https prefix",
			raw:  "example.com",
			want: "https://example.com",
		},
		{
			name: "existing https kept",
			raw:  "https://example.com/path?q=1",
			want: "https://example.com/path?q=1",
		},
		{
			name: "existing http kept",
			raw:  "http://example.com",
			want: "http://example.com",
		},
		{
			name: "surrounding whitespace trimmed",
			raw:  "  example.com/page \n",
			want: "https://example.com/page",
		},
		{
			name: "case preserved apart from prefix",
			raw:  "Example.com/PaGe",
			want: "https://Example.com/PaGe",
		},
		{
			name: "scheme check is case-insensitive",
			raw:  "HTTPS://example.com",
			want: "HTTPS://example.com",
		},
		{
			name:    "empty input",
			raw:     "",
			wantErr: ErrEmptyURL,
		},
		{
			name:    "whitespace only",
			raw:     "   \t ",
			wantErr: ErrEmptyURL,
		},
		{
			name:    "javascript scheme",
			raw:     "javascript:alert(1)",
			wantErr: ErrUnsafeURL,
		},
		{
			name:    "javascript scheme mixed case",
			raw:     "JaVaScRiPt:alert(1)",
			wantErr: ErrUnsafeURL,
		},
		{
			name:    "data scheme",
			raw:     "data:text/html;base64,AAAA",
			wantErr: ErrUnsafeURL,
		},
		{
			name:    "file scheme",
			raw:     "FILE:///etc/passwd",
			wantErr: ErrUnsafeURL,
		},
		{
			name:    "over length limit",
			raw:     "https://example.com/" + strings.Repeat("a", MaxURLLength),
			wantErr: ErrURLTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURL(tt.raw)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NormalizeURL(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeURL(%q) error = %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
			if !strings.HasPrefix(strings.ToLower(got), "http://") && !strings.HasPrefix(strings.ToLower(got), "https://") {
				t.Errorf("NormalizeURL(%q) = %q does not start with http(s)://", tt.raw, got)
			}
		})
	}
}
