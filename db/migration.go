package db

import (
	dbmodels "amia-backend/models/db"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func AutoMigrateDB(db *gorm.DB) error {
	log.Info("Запуск миграций")
	if err := db.AutoMigrate(&dbmodels.EventRequest{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры EventRequest")
	}
	if err := db.AutoMigrate(&dbmodels.EventRequestApproval{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры EventRequestApproval")
	}
	if err := db.AutoMigrate(&dbmodels.ApprovalHistory{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры ApprovalHistory")
	}
	if err := db.AutoMigrate(&dbmodels.Notification{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры Notification")
	}
	log.Info("Миграция прошла успешно")
	return nil
}
