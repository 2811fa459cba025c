package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Mod5ied/eagle-server/internal/auth"
)

func TestParseExpiry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  time.Duration
	}{
		{"3600", time.Hour},
		{"90", 90 * time.Second},
		{"30s", 30 * time.Second},
		{"15m", 15 * time.Minute},
		{"1h", time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"", time.Hour},
		{"1w", time.Hour},
		{"1.5h", time.Hour},
		{"h", time.Hour},
		{"-5", time.Hour},
		{" 5m", time.Hour},
		{"106751d", 106751 * 24 * time.Hour},
		{"106752d", time.Hour},
		{"200000d", time.Hour},
		{"2562047h", 2562047 * time.Hour},
		{"2562048h", time.Hour},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, auth.ParseExpiry(tt.input), "input %q", tt.input)
	}
}

func TestParseExpiry_NeverNegative(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"4294967295d", "4294967295h", "4294967295m", "4294967295s", "4294967295"} {
		assert.Positive(t, auth.ParseExpiry(input), "input %q", input)
	}
}
