package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run(`defaults`, func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "config.yml")
		require.Nil(t, os.WriteFile(file, []byte("app: {}\n"), 0o600))
		conf, err := Load(file)
		require.Nil(t, err)
		require.Equal(t, 8080, conf.App.Port)
		require.Equal(t, int64(1048576), conf.App.BodyLimit)
		require.Equal(t, "postgres", conf.Database.Driver)
		require.NotNil(t, conf.Database.MigrateOnStart)
		require.True(t, *conf.Database.MigrateOnStart)
		require.Equal(t, "info", conf.Log.Level)
		require.Equal(t, 30, conf.Notification.RetentionDays)
	})

	t.Run(`file and env`, func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "config.yml")
		err := os.WriteFile(file, []byte("app:\n  port: 9090\ndatabase:\n  driver: sqlite\n"), 0o600)
		require.Nil(t, err)
		t.Setenv("SUPABASE_JWT_SECRET", "secret")
		t.Setenv("LOG_LEVEL", "debug")

		conf, err := Load(file)
		require.Nil(t, err)
		require.Equal(t, 9090, conf.App.Port)
		require.Equal(t, "sqlite", conf.Database.Driver)
		require.Equal(t, "secret", conf.Auth.JWTSecret)
		require.Equal(t, "debug", conf.Log.Level)
	})
}
