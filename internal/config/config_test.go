package config

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory so no .env or config.yaml leaks in.
func isolate(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	for _, key := range []string{
		"PORT", "SERVER_PORT", "NODE_ENV", "SERVER_ENV", "LOG_LEVEL", "PUBLIC_DIR",
		"MCHIC_USER", "MCHIC_PASS", "MCHIC_PASS_FILE", "STORAGE_DRIVER", "DATA_FILE",
		"DB_URL_DEV", "DB_URL_PROD", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_PASSWORD_FILE",
		"REDIS_DB", "RATELIMIT_LOGIN_PER_MIN", "BACKUP_DIR", "BACKUP_KEEP",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("MCHIC_USER", "duo")
	t.Setenv("MCHIC_PASS", "segreto")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "4000", cfg.Server.Port)
	require.Equal(t, EnvDev, cfg.Server.Env)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "./public", cfg.Server.PublicDir)
	require.Equal(t, AuthConfig{User: "duo", Pass: "segreto", Realm: "Mchic"}, cfg.Auth)
	require.Equal(t, DriverFile, cfg.Storage.Driver)
	require.Equal(t, "./data/songs.json", cfg.Storage.FilePath)
	require.Equal(t, 10, cfg.RateLimit.LoginPerMin)
	require.Equal(t, 20, cfg.Backup.Keep)
	require.False(t, cfg.RedisEnabled())
	require.False(t, cfg.SnapshotsEnabled())
}

func TestLoadRequiresCredentials(t *testing.T) {
	isolate(t)

	_, err := Load()
	require.Error(t, err)
}

func TestLoadReadsSecretFile(t *testing.T) {
	isolate(t)
	secret := filepath.Join(t.TempDir(), "pass")
	require.NoError(t, os.WriteFile(secret, []byte("da-file\n"), 0o600))

	t.Setenv("MCHIC_USER", "duo")
	t.Setenv("MCHIC_PASS_FILE", secret)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "da-file", cfg.Auth.Pass)
}

func TestLoadOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("MCHIC_USER", "duo")
	t.Setenv("MCHIC_PASS", "segreto")
	t.Setenv("PORT", "8080")
	t.Setenv("DATA_FILE", "/tmp/setlist.json")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("BACKUP_DIR", "/tmp/backups")
	t.Setenv("BACKUP_KEEP", "5")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, "/tmp/setlist.json", cfg.Storage.FilePath)
	require.True(t, cfg.RedisEnabled())
	require.True(t, cfg.SnapshotsEnabled())
	require.Equal(t, 5, cfg.Backup.Keep)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	isolate(t)
	t.Setenv("MCHIC_USER", "duo")
	t.Setenv("MCHIC_PASS", "segreto")
	t.Setenv("STORAGE_DRIVER", "sqlite")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadPostgresPicksURLByEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		dev     string
		prod    string
		want    string
		wantErr bool
	}{
		{
			name: "dev disables tls",
			env:  "dev",
			dev:  "postgres://u:p@localhost:5432/setlist",
			want: "disable",
		},
		{
			name: "prod requires tls",
			env:  "prod",
			dev:  "postgres://u:p@localhost:5432/dev",
			prod: "postgres://u:p@db.example.com:5432/setlist",
			want: "require",
		},
		{
			name: "explicit mode kept",
			env:  "prod",
			prod: "postgres://u:p@db.example.com:5432/setlist?sslmode=verify-full",
			want: "verify-full",
		},
		{
			name: "other env uses dev url with tls",
			env:  "staging",
			dev:  "postgres://u:p@staging.example.com:5432/setlist",
			want: "require",
		},
		{
			name:    "missing prod url",
			env:     "prod",
			dev:     "postgres://u:p@localhost:5432/setlist",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv("MCHIC_USER", "duo")
			t.Setenv("MCHIC_PASS", "segreto")
			t.Setenv("STORAGE_DRIVER", "postgres")
			t.Setenv("NODE_ENV", tt.env)
			if tt.dev != "" {
				t.Setenv("DB_URL_DEV", tt.dev)
			}
			if tt.prod != "" {
				t.Setenv("DB_URL_PROD", tt.prod)
			}

			cfg, err := Load()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			u, err := url.Parse(cfg.Database.URL)
			require.NoError(t, err)
			require.Equal(t, tt.want, u.Query().Get("sslmode"))
		})
	}
}
