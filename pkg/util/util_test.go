package util

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"7d", 7 * 24 * time.Hour},
		{"30", 30 * time.Second},
		{"15m", 15 * time.Minute},
		{" 2h ", 2 * time.Hour},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if err != nil {
			t.Errorf("ParseDuration(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	_, err := ParseDuration("xd")
	assert.Error(t, err)
}

func TestMustParseDuration(t *testing.T) {
	assert.Equal(t, time.Minute, MustParseDuration("", time.Minute))
	assert.Equal(t, time.Minute, MustParseDuration("bogus", time.Minute))
	assert.Equal(t, time.Minute, MustParseDuration("-5s", time.Minute))
	assert.Equal(t, 3*time.Second, MustParseDuration("3", time.Minute))
}

func TestPasswordHash(t *testing.T) {
	hash, err := GeneratePasswordHash("s3cret")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash(hash, "s3cret"))
	assert.False(t, CheckPasswordHash(hash, "wrong"))
	assert.False(t, CheckPasswordHash("", "s3cret"))
	assert.False(t, CheckPasswordHash("not-a-bcrypt-hash", "s3cret"))

	_, err = GeneratePasswordHash(strings.Repeat("x", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestGetRandomString(t *testing.T) {
	a := GetRandomString(32)
	b := GetRandomString(32)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("editor@example.com"))
	assert.False(t, IsValidEmail("editor@"))
	assert.False(t, IsValidEmail(""))
}
