package config

import (
	"github.com/gotify/configor"
)

type Configuration struct {
	App struct {
		ListenAddr   string `default:"" env:"APP_HOST"`
		Port         int    `default:"8080"  env:"APP_PORT"`
		BodyLimit    int64  `default:"1048576" env:"APP_BODY_LIMIT"`
		SwaggerFile  string `default:"./docs/swagger.json" env:"APP_SWAGGER_FILE"`
		ErrNotifyURL string `default:"" env:"APP_ERR_NOTIFY_URL"`
	}
	Database struct {
		Driver         string `default:"postgres" env:"DB_DRIVER"`
		Host           string `default:"127.0.0.1" env:"DB_HOST"`
		Port           string `default:"5432" env:"DB_PORT"`
		Name           string `default:"amia" env:"DB_NAME"`
		User           string `default:"postgres" env:"DB_USER"`
		Password       string `default:"postgres" env:"DB_PASSWORD"`
		SQLitePath     string `default:"amia.db" env:"DB_SQLITE_PATH"`
		MigrateOnStart *bool  `default:"true" env:"DB_MIGRATE_ON_START"`
		DebugMode      *bool  `default:"false" env:"DB_DEBUG_MODE"`
	}
	Auth struct {
		JWTSecret string `default:"" env:"SUPABASE_JWT_SECRET"`
	}
	YandexGPT struct {
		IAMToken   string `default:"" env:"YANDEX_GPT_IAM_TOKEN"`
		CatalogID  string `default:"" env:"YANDEX_GPT_CATALOG_ID"`
		TimeoutSec int    `default:"30" env:"YANDEX_GPT_TIMEOUT_SEC"`
	}
	Notification struct {
		RetentionDays   int `default:"30" env:"NOTIFICATION_RETENTION_DAYS"`
		CleanupInterval int `default:"60" env:"NOTIFICATION_CLEANUP_INTERVAL_MIN"`
	}
	Log struct {
		Level string `default:"info" env:"LOG_LEVEL"`
	}
}

func configFiles() []string {
	return []string{"config.yml"}
}

// Load читает config.yml и переменные окружения, переменные окружения имеют приоритет
func Load(files ...string) (*Configuration, error) {
	if len(files) == 0 {
		files = configFiles()
	}
	conf := new(Configuration)
	err := configor.New(&configor.Config{}).Load(conf, files...)
	if err != nil {
		return nil, err
	}
	return conf, nil
}
