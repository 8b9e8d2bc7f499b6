package eventrequestviewstore

import (
	"amia-backend/models"
	dbmodels "amia-backend/models/db"

	"gorm.io/gorm"
)

type Filter struct {
	UserID string
	Status models.RequestStatus
}

type Provider interface {
	ListWithApprovals(filter Filter, skip, take int) (list []dbmodels.EventRequestWithApprovals, rowCount int64, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) applyFilter(tx *gorm.DB, filter Filter) *gorm.DB {
	if filter.UserID != "" {
		tx = tx.Where("event_requests.created_by = ?", filter.UserID)
	}
	if filter.Status != "" {
		tx = tx.Where("event_requests.status = ?", filter.Status)
	}
	return tx
}

// ListWithApprovals заявки со счетчиками согласований, свежие сверху.
// take <= 0 - без ограничения (для выгрузки)
func (i impl) ListWithApprovals(filter Filter, skip, take int) (list []dbmodels.EventRequestWithApprovals, rowCount int64, err error) {
	err = i.applyFilter(i.db.Model(&dbmodels.EventRequest{}), filter).
		Count(&rowCount).
		Error
	if err != nil {
		return nil, 0, err
	}
	list = []dbmodels.EventRequestWithApprovals{}
	if rowCount == 0 || int64(skip) >= rowCount {
		return list, rowCount, nil
	}

	counters := i.db.
		Model(&dbmodels.EventRequestApproval{}).
		Select(
			"event_request_id, "+
				"COUNT(*) AS requested_approvals, "+
				"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS approved_count, "+
				"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS rejected_count, "+
				"SUM(CASE WHEN status <> ? THEN 1 ELSE 0 END) AS completed_count",
			models.AStateApproved, models.AStateRejected, models.AStatePending).
		Group("event_request_id")

	tx := i.db.
		Table("event_requests").
		Select("event_requests.*, " +
			"COALESCE(a.requested_approvals, 0) AS requested_approvals, " +
			"COALESCE(a.approved_count, 0) AS approved_count, " +
			"COALESCE(a.rejected_count, 0) AS rejected_count, " +
			"COALESCE(a.completed_count, 0) AS completed_count").
		Joins("LEFT JOIN (?) AS a ON a.event_request_id = event_requests.id", counters)
	tx = i.applyFilter(tx, filter).
		Order("event_requests.created_at DESC").
		Offset(skip)
	if take > 0 {
		tx = tx.Limit(take)
	}
	err = tx.Scan(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, rowCount, nil
}
