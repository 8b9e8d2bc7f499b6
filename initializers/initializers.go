package initializers

import (
	"amia-backend/config"
	"amia-backend/fiberlog"
	autofillhandler "amia-backend/lib/autofill"
	eventrequesthandler "amia-backend/lib/event-request"
	eventrequestapprovalhandler "amia-backend/lib/event-request-approval"
	yagptclient "amia-backend/lib/gpt/yagpt-client"
	notificationhandler "amia-backend/lib/notification"
	cleanupworker "amia-backend/lib/notification/cleanup-worker"
	notificationstore "amia-backend/lib/notification/store"
	connectionhub "amia-backend/lib/ws/hub/connection-hub"
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Services собранные зависимости приложения, передаются в контроллеры явно
type Services struct {
	Config        *config.Configuration
	LoggerConfig  *fiberlog.Config
	DB            *gorm.DB
	Hub           connectionhub.Provider
	EventRequests eventrequesthandler.Provider
	Approvals     eventrequestapprovalhandler.Provider
	Notifications notificationhandler.Provider
	NotifyStore   notificationstore.Provider
	AutoFill      autofillhandler.Provider
}

func InitAllServices() *Services {
	conf, err := config.Load()
	if err != nil {
		panic(err)
	}
	loggerConfig := InitLogger(conf.Log.Level)
	DB := InitDBConnection(conf)
	return NewServices(conf, loggerConfig, DB)
}

func NewServices(conf *config.Configuration, loggerConfig *fiberlog.Config, DB *gorm.DB) *Services {
	notifications := notificationstore.NewInstance(DB)
	hub := connectionhub.NewHub(notifications)
	if conf.Auth.JWTSecret == "" {
		log.Warn("не задан SUPABASE_JWT_SECRET, авторизация не пройдет")
	}
	if conf.YandexGPT.IAMToken == "" {
		log.Warn("не заданы параметры YandexGPT, автозаполнение заявок недоступно")
	}
	return &Services{
		Config:        conf,
		LoggerConfig:  loggerConfig,
		DB:            DB,
		Hub:           hub,
		EventRequests: eventrequesthandler.NewHandler(DB),
		Approvals:     eventrequestapprovalhandler.NewHandler(DB),
		Notifications: notificationhandler.NewHandler(notifications, hub),
		NotifyStore:   notifications,
		AutoFill:      autofillhandler.NewHandler(yagptclient.NewClient(yagptclient.Config{
			IAMToken:  conf.YandexGPT.IAMToken,
			CatalogID: conf.YandexGPT.CatalogID,
			Timeout:   time.Duration(conf.YandexGPT.TimeoutSec) * time.Second,
		})),
	}
}

func StartWorkers(ctx context.Context, s *Services) {
	// Очистка удаленных уведомлений
	cleanupworker.StartWorker(ctx, s.NotifyStore,
		time.Duration(s.Config.Notification.RetentionDays)*24*time.Hour,
		time.Duration(s.Config.Notification.CleanupInterval)*time.Minute)
}
