package notificationstore

import (
	notificationapimodels "amia-backend/models/api/notification"
	dbmodels "amia-backend/models/db"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.Notification) (*dbmodels.Notification, error)
	GetByID(id string) (*dbmodels.Notification, error)
	List(userID string, filter notificationapimodels.NotificationFilter) (list []dbmodels.Notification, rowCount int64, err error)
	ListUnread(userID string) ([]dbmodels.Notification, error)
	Update(id string, updMap map[string]interface{}) error
	Delete(id string) error
	MarkAllRead(userID string) (int64, error)
	PurgeDeleted(before time.Time) (int64, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.Notification) (*dbmodels.Notification, error) {
	err := i.db.
		Create(&rec).
		Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (i impl) GetByID(id string) (*dbmodels.Notification, error) {
	rec := dbmodels.Notification{}
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

func (i impl) listQuery(userID string, filter notificationapimodels.NotificationFilter) *gorm.DB {
	tx := i.db.
		Model(&dbmodels.Notification{}).
		Where("user_id = ?", userID)
	if filter.IsRead != nil {
		tx = tx.Where("is_read = ?", *filter.IsRead)
	}
	if filter.IsDeleted != nil {
		tx = tx.Where("is_deleted = ?", *filter.IsDeleted)
	}
	return tx
}

func (i impl) List(userID string, filter notificationapimodels.NotificationFilter) (list []dbmodels.Notification, rowCount int64, err error) {
	err = i.listQuery(userID, filter).
		Count(&rowCount).
		Error
	if err != nil {
		return nil, 0, err
	}
	list = []dbmodels.Notification{}
	if rowCount == 0 {
		return list, 0, nil
	}
	skip, take := filter.GetPage()
	err = i.listQuery(userID, filter).
		Order("created_at DESC").
		Offset(skip).
		Limit(take).
		Find(&list).
		Error
	if err != nil {
		return nil, 0, err
	}
	return list, rowCount, nil
}

func (i impl) ListUnread(userID string) (list []dbmodels.Notification, err error) {
	list = []dbmodels.Notification{}
	err = i.db.
		Where("user_id = ?", userID).
		Where("is_read = ?", false).
		Where("is_deleted = ?", false).
		Order("created_at").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) Update(id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	tx := i.db.
		Model(&dbmodels.Notification{}).
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
	rec := dbmodels.Notification{
		BaseModel: dbmodels.BaseModel{ID: id},
	}
	return i.db.
		Delete(&rec).
		Error
}

func (i impl) MarkAllRead(userID string) (int64, error) {
	tx := i.db.
		Model(&dbmodels.Notification{}).
		Where("user_id = ?", userID).
		Where("is_read = ?", false).
		Update("is_read", true)
	if err := tx.Error; err != nil {
		return 0, err
	}
	return tx.RowsAffected, nil
}

// PurgeDeleted физически удаляет помеченные удаленными уведомления, измененные раньше before
func (i impl) PurgeDeleted(before time.Time) (int64, error) {
	tx := i.db.
		Where("is_deleted = ?", true).
		Where("updated_at < ?", before).
		Delete(&dbmodels.Notification{})
	if err := tx.Error; err != nil {
		return 0, err
	}
	return tx.RowsAffected, nil
}
