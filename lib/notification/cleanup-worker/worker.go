package cleanupworker

import (
	notificationstore "amia-backend/lib/notification/store"
	baseworker "amia-backend/lib/utils/base-worker"
	"context"
	"time"
)

// StartWorker удаляет из БД уведомления, помеченные удаленными дольше retention
func StartWorker(ctx context.Context, store notificationstore.Provider, retention, interval time.Duration) {
	i := newWorker(store, retention, interval)
	go i.Run(ctx, i.handle)
}

func newWorker(store notificationstore.Provider, retention, interval time.Duration) *impl {
	return &impl{
		BaseImpl:  *baseworker.NewInstance("NotificationCleanupWorker", 30*time.Second, interval),
		store:     store,
		retention: retention,
	}
}

type impl struct {
	baseworker.BaseImpl
	store     notificationstore.Provider
	retention time.Duration
}

func (i impl) handle(ctx context.Context) {
	logger := i.GetLogger()
	count, err := i.store.PurgeDeleted(time.Now().Add(-i.retention))
	if err != nil {
		logger.WithError(err).Error("Ошибка очистки удаленных уведомлений")
		return
	}
	if count > 0 {
		logger.WithField("count", count).Info("Удаленные уведомления очищены")
	}
}
