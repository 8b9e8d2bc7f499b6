package approvalhistorystore

import (
	dbmodels "amia-backend/models/db"

	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.ApprovalHistory) (id string, err error)
	List(requestID string) (list []dbmodels.ApprovalHistory, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

// Create во вложенной транзакции (SAVEPOINT), ошибка вставки не прерывает внешнюю транзакцию
func (i impl) Create(rec dbmodels.ApprovalHistory) (id string, err error) {
	err = i.db.Transaction(func(tx *gorm.DB) error {
		return tx.
			Create(&rec).
			Error
	})
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) List(requestID string) (list []dbmodels.ApprovalHistory, err error) {
	list = []dbmodels.ApprovalHistory{}
	err = i.db.
		Where("event_request_id = ?", requestID).
		Order("created_at ASC").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
