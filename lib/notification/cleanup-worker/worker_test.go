package cleanupworker

import (
	"amia-backend/db"
	notificationstore "amia-backend/lib/notification/store"
	dbmodels "amia-backend/models/db"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHandle(t *testing.T) {
	DB, err := db.ConnectInMemory()
	require.Nil(t, err)
	store := notificationstore.NewInstance(DB)

	create := func(deleted bool, updatedAt time.Time) string {
		rec, err := store.Create(dbmodels.Notification{
			UserID:    "user-1",
			Title:     "title",
			Message:   "message",
			IsDeleted: deleted,
		})
		require.Nil(t, err)
		err = DB.Model(&dbmodels.Notification{}).
			Where("id = ?", rec.ID).
			UpdateColumn("updated_at", updatedAt).
			Error
		require.Nil(t, err)
		return rec.ID
	}
	old := time.Now().Add(-48 * time.Hour)
	oldDeleted := create(true, old)
	freshDeleted := create(true, time.Now())
	oldActive := create(false, old)

	newWorker(store, 24*time.Hour, time.Hour).handle(context.Background())

	rec, err := store.GetByID(oldDeleted)
	require.Nil(t, err)
	require.Nil(t, rec)
	rec, err = store.GetByID(freshDeleted)
	require.Nil(t, err)
	require.NotNil(t, rec)
	rec, err = store.GetByID(oldActive)
	require.Nil(t, err)
	require.NotNil(t, rec)
}
