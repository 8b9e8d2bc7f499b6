package eventrequesthandler

import (
	"amia-backend/db"
	eventrequestapprovalhandler "amia-backend/lib/event-request-approval"
	apperrors "amia-backend/lib/utils/app-errors"
	"amia-backend/models"
	eventrequestapimodels "amia-backend/models/api/event-request"
	dbmodels "amia-backend/models/db"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	ownerID   = "owner-1"
	otherID   = "owner-2"
	approverA = "approver-a"
	approverB = "approver-b"
)

func newTestDB(t *testing.T) *gorm.DB {
	DB, err := db.ConnectInMemory()
	require.Nil(t, err)
	return DB
}

func strPtr(value string) *string {
	return &value
}

func timedData(title string, start time.Time, approvers ...eventrequestapimodels.ApproverData) eventrequestapimodels.EventRequestCreateData {
	return eventrequestapimodels.EventRequestCreateData{
		EventRequestData: eventrequestapimodels.EventRequestData{
			Title:     strPtr(title),
			StartDate: models.Timed(start, "Europe/Moscow"),
			EndDate:   models.Timed(start.Add(time.Hour), "Europe/Moscow"),
		},
		Approvers: approvers,
	}
}

func countRows(t *testing.T, DB *gorm.DB, model interface{}) int64 {
	var rowCount int64
	require.Nil(t, DB.Model(model).Count(&rowCount).Error)
	return rowCount
}

func TestEventRequestHandler(t *testing.T) {
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	t.Run(`create and get echo fields`, func(t *testing.T) {
		DB := newTestDB(t)
		h := NewHandler(DB)
		data := timedData("Встреча с клиентом", start,
			eventrequestapimodels.ApproverData{UserID: approverA, Required: true},
			eventrequestapimodels.ApproverData{UserID: approverB})
		data.Location = strPtr("Переговорная 1")
		data.GoogleEventID = strPtr("google-1")
		data.ImportanceLevel = 4

		created, err := h.Create(ownerID, data)
		require.Nil(t, err)
		require.NotEmpty(t, created.ID)
		require.Equal(t, models.RequestStatusPending, created.Status)
		require.Equal(t, ownerID, created.CreatedBy)
		require.Equal(t, 4, created.ImportanceLevel)
		require.Len(t, created.Approvers, 2)

		got, err := h.Get(created.ID)
		require.Nil(t, err)
		require.Equal(t, "Встреча с клиентом", *got.Title)
		require.Equal(t, "Переговорная 1", *got.Location)
		require.Equal(t, data.StartDate.String(), got.StartDate.String())
		require.Equal(t, data.EndDate.String(), got.EndDate.String())

		byGoogle, err := h.GetByGoogleEventID("google-1")
		require.Nil(t, err)
		require.Equal(t, created.ID, byGoogle.ID)

		withApprovers, err := h.GetWithApprovers(created.ID)
		require.Nil(t, err)
		require.Len(t, withApprovers.Approvers, 2)
		require.Equal(t, approverA, withApprovers.Approvers[0].UserID)
		require.Equal(t, true, withApprovers.Approvers[0].Required)
	})

	t.Run(`importance defaults to 1 and is bounded`, func(t *testing.T) {
		DB := newTestDB(t)
		h := NewHandler(DB)
		created, err := h.Create(ownerID, timedData("Без важности", start))
		require.Nil(t, err)
		require.Equal(t, 1, created.ImportanceLevel)
		require.Len(t, created.Approvers, 0)

		data := timedData("Слишком важно", start)
		data.ImportanceLevel = 6
		_, err = h.Create(ownerID, data)
		require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})

	t.Run(`all day event`, func(t *testing.T) {
		DB := newTestDB(t)
		h := NewHandler(DB)
		day, err := models.AllDay("2025-06-10")
		require.Nil(t, err)
		created, err := h.Create(ownerID, eventrequestapimodels.EventRequestCreateData{
			EventRequestData: eventrequestapimodels.EventRequestData{
				Title:     strPtr("Корпоратив"),
				StartDate: day,
				EndDate:   day,
			},
		})
		require.Nil(t, err)
		got, err := h.Get(created.ID)
		require.Nil(t, err)
		require.Equal(t, true, got.StartDate.IsAllDay())
		require.Equal(t, "2025-06-10", got.StartDate.Day())
	})

	t.Run(`invalid dates persist nothing`, func(t *testing.T) {
		DB := newTestDB(t)
		h := NewHandler(DB)
		data := timedData("Наоборот", start, eventrequestapimodels.ApproverData{UserID: approverA})
		data.EndDate = models.Timed(start.Add(-time.Hour), "")
		_, err := h.Create(ownerID, data)
		require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

		_, err = h.Create(ownerID, eventrequestapimodels.EventRequestCreateData{})
		require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

		require.Equal(t, int64(0), countRows(t, DB, &dbmodels.EventRequest{}))
		require.Equal(t, int64(0), countRows(t, DB, &dbmodels.EventRequestApproval{}))
	})

	t.Run(`failed approvers roll back the request`, func(t *testing.T) {
		DB := newTestDB(t)
		h := NewHandler(DB)
		data := timedData("Дубль", start,
			eventrequestapimodels.ApproverData{UserID: approverA},
			eventrequestapimodels.ApproverData{UserID: approverA})
		_, err := h.Create(ownerID, data)
		require.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

		require.Equal(t, int64(0), countRows(t, DB, &dbmodels.EventRequest{}))
		require.Equal(t, int64(0), countRows(t, DB, &dbmodels.EventRequestApproval{}))

		list, err := h.ListMine(ownerID, eventrequestapimodels.EventRequestFilter{})
		require.Nil(t, err)
		require.Len(t, list, 0)
	})

	t.Run(`get unknown is not found`, func(t *testing.T) {
		DB := newTestDB(t)
		h := NewHandler(DB)
		_, err := h.Get("missing")
		require.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
		_, err = h.GetWithApprovers("missing")
		require.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
		_, err = h.GetByGoogleEventID("missing")
		require.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	})

	t.Run(`partial update by owner`, func(t *testing.T) {
		DB := newTestDB(t)
		h := NewHandler(DB)
		created, err := h.Create(ownerID, timedData("Старое название", start))
		require.Nil(t, err)

		importance := 3
		updated, err := h.Update(created.ID, ownerID, eventrequestapimodels.EventRequestEditData{
			Title:           strPtr("Новое название"),
			ImportanceLevel: &importance,
		})
		require.Nil(t, err)
		require.Equal(t, "Новое название", *updated.Title)
		require.Equal(t, 3, updated.ImportanceLevel)
		require.Equal(t, created.StartDate.String(), updated.StartDate.String())

		newStart := models.Timed(start.Add(24*time.Hour), "UTC")
		newEnd := models.Timed(start.Add(25*time.Hour), "UTC")
		updated, err = h.Update(created.ID, ownerID, eventrequestapimodels.EventRequestEditData{
			StartDate: &newStart,
			EndDate:   &newEnd,
		})
		require.Nil(t, err)
		require.Equal(t, newStart.String(), updated.StartDate.String())

		from := start.Add(12 * time.Hour)
		list, err := h.ListAll(eventrequestapimodels.EventRequestFilter{StartDateFrom: &from})
		require.Nil(t, err)
		require.Len(t, list, 1)
	})

	t.Run(`update keeps date order against stored dates`, func(t *testing.T) {
		DB := newTestDB(t)
		h := NewHandler(DB)
		created, err := h.Create(ownerID, timedData("Порядок", start))
		require.Nil(t, err)

		lateStart := models.Timed(start.Add(2*time.Hour), "")
		_, err = h.Update(created.ID, ownerID, eventrequestapimodels.EventRequestEditData{StartDate: &lateStart})
		require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

		got, err := h.Get(created.ID)
		require.Nil(t, err)
		require.Equal(t, created.StartDate.String(), got.StartDate.String())
	})

	t.Run(`non owner update leaves row unchanged`, func(t *testing.T) {
		DB := newTestDB(t)
		h := NewHandler(DB)
		created, err := h.Create(ownerID, timedData("Чужая", start))
		require.Nil(t, err)

		_, err = h.Update(created.ID, otherID, eventrequestapimodels.EventRequestEditData{Title: strPtr("Взлом")})
		require.Equal(t, apperrors.KindPermission, apperrors.KindOf(err))
		_, err = h.Approve(created.ID, otherID)
		require.Equal(t, apperrors.KindPermission, apperrors.KindOf(err))
		_, err = h.Delete(created.ID, otherID)
		require.Equal(t, apperrors.KindPermission, apperrors.KindOf(err))

		got, err := h.Get(created.ID)
		require.Nil(t, err)
		require.Equal(t, "Чужая", *got.Title)
		require.Equal(t, models.RequestStatusPending, got.Status)

		_, err = h.Update("missing", ownerID, eventrequestapimodels.EventRequestEditData{Title: strPtr("x")})
		require.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	})

	t.Run(`approve and reject request`, func(t *testing.T) {
		DB := newTestDB(t)
		h := NewHandler(DB)
		created, err := h.Create(ownerID, timedData("Статус", start))
		require.Nil(t, err)

		approved, err := h.Approve(created.ID, ownerID)
		require.Nil(t, err)
		require.Equal(t, models.RequestStatusApproved, approved.Status)
		rejected, err := h.Reject(created.ID, ownerID)
		require.Nil(t, err)
		require.Equal(t, models.RequestStatusRejected, rejected.Status)

		status := models.RequestStatus("done")
		_, err = h.Update(created.ID, ownerID, eventrequestapimodels.EventRequestEditData{Status: &status})
		require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})

	t.Run(`delete removes approvals`, func(t *testing.T) {
		DB := newTestDB(t)
		h := NewHandler(DB)
		created, err := h.Create(ownerID, timedData("Удаление", start,
			eventrequestapimodels.ApproverData{UserID: approverA},
			eventrequestapimodels.ApproverData{UserID: approverB}))
		require.Nil(t, err)
		kept, err := h.Create(ownerID, timedData("Остается", start, eventrequestapimodels.ApproverData{UserID: approverA}))
		require.Nil(t, err)

		deleted, err := h.Delete(created.ID, ownerID)
		require.Nil(t, err)
		require.Equal(t, created.ID, deleted.ID)

		_, err = h.Get(created.ID)
		require.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
		approvals := eventrequestapprovalhandler.NewHandler(DB)
		list, err := approvals.ListByRequest(created.ID)
		require.Nil(t, err)
		require.Len(t, list, 0)
		list, err = approvals.ListByRequest(kept.ID)
		require.Nil(t, err)
		require.Len(t, list, 1)
	})

	t.Run(`list filters and order`, func(t *testing.T) {
		DB := newTestDB(t)
		h := NewHandler(DB)
		later, err := h.Create(ownerID, timedData("Позже", start.Add(48*time.Hour)))
		require.Nil(t, err)
		earlier, err := h.Create(ownerID, timedData("Раньше", start))
		require.Nil(t, err)
		other, err := h.Create(otherID, timedData("Чужая", start.Add(24*time.Hour)))
		require.Nil(t, err)
		_, err = h.Approve(other.ID, otherID)
		require.Nil(t, err)

		mine, err := h.ListMine(ownerID, eventrequestapimodels.EventRequestFilter{})
		require.Nil(t, err)
		require.Len(t, mine, 2)
		require.Equal(t, earlier.ID, mine[0].ID)
		require.Equal(t, later.ID, mine[1].ID)

		all, err := h.ListAll(eventrequestapimodels.EventRequestFilter{})
		require.Nil(t, err)
		require.Len(t, all, 3)

		approved, err := h.ListAll(eventrequestapimodels.EventRequestFilter{Status: models.RequestStatusApproved})
		require.Nil(t, err)
		require.Len(t, approved, 1)
		require.Equal(t, other.ID, approved[0].ID)

		to := start.Add(36 * time.Hour)
		until, err := h.ListAll(eventrequestapimodels.EventRequestFilter{StartDateTo: &to})
		require.Nil(t, err)
		require.Len(t, until, 2)

		_, err = h.ListAll(eventrequestapimodels.EventRequestFilter{Status: "unknown"})
		require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})

	t.Run(`approval workflow scenario`, func(t *testing.T) {
		DB := newTestDB(t)
		h := NewHandler(DB)
		approvals := eventrequestapprovalhandler.NewHandler(DB)
		created, err := h.Create(ownerID, timedData("Сценарий", start,
			eventrequestapimodels.ApproverData{UserID: approverA, Required: true},
			eventrequestapimodels.ApproverData{UserID: approverB, Required: false}))
		require.Nil(t, err)

		page, err := h.ListWithApprovalStatus(ownerID, eventrequestapimodels.WithApprovalsFilter{})
		require.Nil(t, err)
		require.Len(t, page.EventRequests, 1)
		require.Equal(t, models.ApprovalStatusPending, page.EventRequests[0].ApprovalStatus)
		require.Equal(t, int64(2), page.EventRequests[0].RequestedApprovals)
		require.Equal(t, int64(0), page.EventRequests[0].CompletedCount)

		pending, err := approvals.ListPendingForUser(approverA)
		require.Nil(t, err)
		require.Len(t, pending, 1)
		_, err = approvals.Approve(pending[0].ID, approverA, nil)
		require.Nil(t, err)

		complete, err := approvals.AllRequiredComplete(created.ID)
		require.Nil(t, err)
		require.Equal(t, true, complete)

		page, err = h.ListWithApprovalStatus(ownerID, eventrequestapimodels.WithApprovalsFilter{})
		require.Nil(t, err)
		require.Equal(t, models.ApprovalStatusPending, page.EventRequests[0].ApprovalStatus)
		require.Equal(t, int64(1), page.EventRequests[0].CompletedCount)

		pending, err = approvals.ListPendingForUser(approverB)
		require.Nil(t, err)
		_, err = approvals.Approve(pending[0].ID, approverB, nil)
		require.Nil(t, err)
		page, err = h.ListWithApprovalStatus(ownerID, eventrequestapimodels.WithApprovalsFilter{})
		require.Nil(t, err)
		require.Equal(t, models.ApprovalStatusApproved, page.EventRequests[0].ApprovalStatus)

		_, err = approvals.Reject(pending[0].ID, approverB, strPtr("занят"))
		require.Nil(t, err)
		page, err = h.ListWithApprovalStatus(ownerID, eventrequestapimodels.WithApprovalsFilter{})
		require.Nil(t, err)
		require.Equal(t, models.ApprovalStatusRejected, page.EventRequests[0].ApprovalStatus)
		require.Equal(t, int64(2), page.EventRequests[0].CompletedCount)
	})

	t.Run(`export with approvals`, func(t *testing.T) {
		DB := newTestDB(t)
		h := NewHandler(DB)
		_, err := h.Create(ownerID, timedData("Выгрузка", start, eventrequestapimodels.ApproverData{UserID: approverA, Required: true}))
		require.Nil(t, err)
		_, err = h.Create(otherID, timedData("Не моя", start))
		require.Nil(t, err)

		buf, err := h.ExportWithApprovals(ownerID, "")
		require.Nil(t, err)
		f, err := excelize.OpenReader(buf)
		require.Nil(t, err)
		defer f.Close()
		rows, err := f.GetRows(f.GetSheetName(0))
		require.Nil(t, err)
		require.Len(t, rows, 2)
		require.Equal(t, "Выгрузка", rows[1][0])

		_, err = h.ExportWithApprovals(ownerID, "unknown")
		require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})
}
