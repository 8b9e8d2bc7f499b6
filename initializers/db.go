package initializers

import (
	"amia-backend/config"
	"amia-backend/db"

	"gorm.io/gorm"
)

func InitDBConnection(conf *config.Configuration) *gorm.DB {
	DB, err := db.Connect(db.ConnectConfig{
		Driver:     db.DriverType(conf.Database.Driver),
		Host:       conf.Database.Host,
		Port:       conf.Database.Port,
		Database:   conf.Database.Name,
		User:       conf.Database.User,
		Pass:       conf.Database.Password,
		SQLitePath: conf.Database.SQLitePath,
		DebugMode:  *conf.Database.DebugMode,
		Migrate:    *conf.Database.MigrateOnStart,
	})
	if err != nil {
		panic(err.Error())
	}
	return DB
}
