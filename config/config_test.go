package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	err := os.WriteFile(path, []byte(`
env = "production"

[database]
driver = "mysql"
host = "db"
port = "3306"
database = "campus"
user = "root"
password = "pw"

[auth]
token_secret = "auth-secret"

[auth.access_token]
expiration = "15m"

[ticket]
qr_secret = "qr-secret"

[ticket.fallback_prices]
duo = 15000
`), 0600)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.True(t, cfg.IsProduction())
	require.Equal(t, "root:pw@tcp(db:3306)/campus?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.ConnectionString())
	require.Equal(t, 15*time.Minute, cfg.Auth.AccessToken.Expiration.Duration)
	require.Equal(t, "access_token", cfg.Auth.AccessToken.Name)
	require.Equal(t, "qr-secret", cfg.Ticket.QRSecret)
	require.Equal(t, int64(15000), cfg.Ticket.FallbackPrices["duo"])
	require.Equal(t, 256, cfg.Ticket.QRSize)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, "campus.db", cfg.Database.ConnectionString())
}

func TestLoadInvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[cache]\nstatistic_ttl = \"soon\"\n"), 0600))

	_, err := Load(path)
	require.Error(t, err)
}
