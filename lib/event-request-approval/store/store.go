package approvalstore

import (
	"amia-backend/models"
	eventrequestapimodels "amia-backend/models/api/event-request"
	dbmodels "amia-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.EventRequestApproval) (*dbmodels.EventRequestApproval, error)
	CreateBatch(list []dbmodels.EventRequestApproval) ([]dbmodels.EventRequestApproval, error)
	GetByID(id string) (rec *dbmodels.EventRequestApproval, err error)
	Exist(requestID, userID string) (bool, error)
	Update(id string, updMap map[string]interface{}) error
	Delete(id string) error
	DeleteByRequest(requestID string) error
	List(filter eventrequestapimodels.ApprovalFilter) (list []dbmodels.EventRequestApproval, err error)
	RequiredCounts(requestID string) (total, approved int64, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.EventRequestApproval) (*dbmodels.EventRequestApproval, error) {
	err := i.db.
		Create(&rec).
		Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (i impl) CreateBatch(list []dbmodels.EventRequestApproval) ([]dbmodels.EventRequestApproval, error) {
	if len(list) == 0 {
		return list, nil
	}
	err := i.db.
		Create(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) GetByID(id string) (*dbmodels.EventRequestApproval, error) {
	rec := dbmodels.EventRequestApproval{}
	err := i.db.
		Where("id = ?", id).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) Exist(requestID, userID string) (bool, error) {
	var rowCount int64
	err := i.db.
		Model(&dbmodels.EventRequestApproval{}).
		Where("event_request_id = ?", requestID).
		Where("user_id = ?", userID).
		Count(&rowCount).
		Error
	if err != nil {
		return false, err
	}
	return rowCount > 0, nil
}

func (i impl) Update(id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	tx := i.db.
		Model(&dbmodels.EventRequestApproval{}).
		Where("id = ?", id).
		Updates(updMap)
	if err := tx.Error; err != nil {
		return err
	}
	if tx.RowsAffected == 0 {
		return errors.New("запись не найдена")
	}
	return nil
}

func (i impl) Delete(id string) error {
	rec := dbmodels.EventRequestApproval{
		BaseModel: dbmodels.BaseModel{ID: id},
	}
	err := i.db.
		Delete(&rec).
		Error
	if err != nil {
		return err
	}
	return nil
}

func (i impl) DeleteByRequest(requestID string) error {
	err := i.db.
		Where("event_request_id = ?", requestID).
		Delete(&dbmodels.EventRequestApproval{}).
		Error
	if err != nil {
		return err
	}
	return nil
}

func (i impl) List(filter eventrequestapimodels.ApprovalFilter) (list []dbmodels.EventRequestApproval, err error) {
	list = []dbmodels.EventRequestApproval{}
	tx := i.db.Model(&dbmodels.EventRequestApproval{})
	if filter.EventRequestID != "" {
		tx = tx.Where("event_request_id = ?", filter.EventRequestID)
	}
	if filter.UserID != "" {
		tx = tx.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status)
	}
	if filter.Required != nil {
		tx = tx.Where("required = ?", *filter.Required)
	}
	err = tx.
		Order("created_at ASC").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) RequiredCounts(requestID string) (total, approved int64, err error) {
	var result struct {
		Total    int64
		Approved int64
	}
	err = i.db.
		Model(&dbmodels.EventRequestApproval{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS approved", models.AStateApproved).
		Where("event_request_id = ?", requestID).
		Where("required = ?", true).
		Scan(&result).
		Error
	if err != nil {
		return 0, 0, err
	}
	return result.Total, result.Approved, nil
}
