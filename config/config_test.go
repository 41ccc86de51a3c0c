package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAdminEmails(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty falls back to bootstrap", "", []string{defaultAdminEmail}},
		{"whitespace falls back to bootstrap", "   ", []string{defaultAdminEmail}},
		{"single email", "boss@example.com", []string{"boss@example.com"}},
		{"lowercased", "Boss@Example.COM", []string{"boss@example.com"}},
		{"list with spaces", " a@x.com , b@y.com ", []string{"a@x.com", "b@y.com"}},
		{"only commas falls back to bootstrap", ",,,", []string{defaultAdminEmail}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseAdminEmails(tt.raw))
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/meme_battles_test")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ADMIN_EMAILS", "boss@example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, []string{"boss@example.com"}, cfg.AdminEmails)
	assert.Equal(t, "http://localhost:9090", cfg.PublicBaseURL)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET_KEY", "secret")

	_, err := Load()
	assert.Error(t, err)
}
