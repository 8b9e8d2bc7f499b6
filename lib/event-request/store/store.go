package eventrequeststore

import (
	eventrequestapimodels "amia-backend/models/api/event-request"
	dbmodels "amia-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Provider interface {
	Create(rec dbmodels.EventRequest) (id string, err error)
	GetByID(id string) (rec *dbmodels.EventRequest, err error)
	GetByGoogleEventID(googleEventID string) (rec *dbmodels.EventRequest, err error)
	GetWithApprovals(id string) (rec *dbmodels.EventRequest, err error)
	Update(id string, updMap map[string]interface{}) error
	Delete(id string) error
	List(filter eventrequestapimodels.EventRequestFilter) (list []dbmodels.EventRequest, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.EventRequest) (id string, err error) {
	err = i.db.
		Omit(clause.Associations).
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(id string) (*dbmodels.EventRequest, error) {
	rec := dbmodels.EventRequest{}
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

func (i impl) GetByGoogleEventID(googleEventID string) (*dbmodels.EventRequest, error) {
	rec := dbmodels.EventRequest{}
	err := i.db.
		Where("google_event_id = ?", googleEventID).
		Order("created_at DESC").
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

func (i impl) GetWithApprovals(id string) (*dbmodels.EventRequest, error) {
	rec := dbmodels.EventRequest{}
	err := i.db.
		Where("id = ?", id).
		Preload("Approvals", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at ASC")
		}).
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

func (i impl) Update(id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	tx := i.db.
		Model(&dbmodels.EventRequest{}).
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
	rec := dbmodels.EventRequest{
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

func (i impl) List(filter eventrequestapimodels.EventRequestFilter) (list []dbmodels.EventRequest, err error) {
	list = []dbmodels.EventRequest{}
	tx := i.db.Model(&dbmodels.EventRequest{})
	if filter.CreatedBy != "" {
		tx = tx.Where("created_by = ?", filter.CreatedBy)
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status)
	}
	if filter.ImportanceLevel != nil {
		tx = tx.Where("importance_level = ?", *filter.ImportanceLevel)
	}
	if filter.StartDateFrom != nil {
		tx = tx.Where("start_at >= ?", filter.StartDateFrom.UTC())
	}
	if filter.StartDateTo != nil {
		tx = tx.Where("start_at <= ?", filter.StartDateTo.UTC())
	}
	err = tx.
		Order("start_at ASC").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
