package db

import (
	"fmt"

	"github.com/google/uuid"
	gorm_logrus "github.com/onrik/gorm-logrus"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DriverType string

const (
	DriverPostgres DriverType = "postgres"
	DriverSQLite   DriverType = "sqlite"
)

type ConnectConfig struct {
	Driver     DriverType
	Host       string
	Port       string
	Database   string
	User       string
	Pass       string
	SQLitePath string
	DebugMode  bool
	Migrate    bool
}

func dialector(cfg ConnectConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverPostgres, "":
		dbConnString := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable password=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Database, cfg.Pass)
		return postgres.Open(dbConnString), nil
	case DriverSQLite:
		return sqlite.Open(cfg.SQLitePath), nil
	}
	return nil, errors.Errorf("неподдерживаемый драйвер БД: %s", cfg.Driver)
}

func Connect(cfg ConnectConfig) (*gorm.DB, error) {
	dial, err := dialector(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dial, &gorm.Config{
		Logger:         gorm_logrus.New(),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "Ошибка подключения к БД")
	}
	if cfg.DebugMode {
		db.Logger = logger.Default.LogMode(logger.Info)
		db = db.Debug()
	}
	if cfg.Migrate {
		if err = AutoMigrateDB(db); err != nil {
			return nil, err
		}
	}
	log.WithField("driver", cfg.Driver).Info("Сервис успешно подключен к БД")
	return db, nil
}

func PingDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err = sqlDB.Ping(); err != nil {
		return err
	}
	return nil
}

// ConnectInMemory отдельная БД sqlite в памяти с примененными миграциями, для тестов и локального запуска.
// Соединение одно, иначе каждое новое соединение видит пустую БД.
func ConnectInMemory() (*gorm.DB, error) {
	db, err := Connect(ConnectConfig{
		Driver:     DriverSQLite,
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		Migrate:    true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}
