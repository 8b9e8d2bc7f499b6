package main

import (
	apiv1 "amia-backend/controllers/v1"
	"amia-backend/fiberlog"
	"amia-backend/initializers"
	"amia-backend/lib/ws"
	"amia-backend/middleware"
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberRecover "github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"
)

func main() {
	services := initializers.InitAllServices()
	conf := services.Config
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	initializers.StartWorkers(ctx, services)

	app := fiber.New(fiber.Config{
		BodyLimit: int(conf.App.BodyLimit),
	})
	app.Use(fiberRecover.New())

	if _, err := os.Stat(conf.App.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			Path:     "/swagger",
			FilePath: conf.App.SwaggerFile,
		}))
	} else {
		log.WithField("file", conf.App.SwaggerFile).Warn("swagger не подключен, файл не найден")
	}

	//api
	apiV1 := fiber.New()
	apiV1.Use(fiberlog.New(*services.LoggerConfig))
	app.Mount("/api/v1", apiV1)
	apiV1.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PATCH, DELETE",
	}))
	apiV1.Use(middleware.WithBodyLimit(conf.App.BodyLimit))
	if conf.App.ErrNotifyURL != "" {
		apiV1.Use(middleware.ErrNotify(conf.App.ErrNotifyURL))
	}
	apiv1.InitHealthApiRouters(apiV1, services.DB)

	//ws
	wsGroup := apiV1.Group("/ws", middleware.WsAuthorizationRequired(conf.Auth.JWTSecret), middleware.UserRequired())
	ws.InitWs(wsGroup, services.Hub)

	//авторизованная зона, регистрируется после health и ws
	private := apiV1.Group("", middleware.AuthorizationRequired(conf.Auth.JWTSecret), middleware.UserRequired())
	apiv1.InitEventRequestApiRouters(private, services.EventRequests, services.Approvals, services.AutoFill, services.Notifications)
	apiv1.InitEventRequestApprovalApiRouters(private, services.EventRequests, services.Approvals, services.Notifications)
	apiv1.InitNotificationApiRouters(private, services.Notifications)

	// gracefully shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, ok := <-c
		if !ok {
			return
		}
		log.Info("Gracefully shutting down...")
		cancel()
		if err := app.Shutdown(); err != nil {
			log.WithError(err).Error("Error when try gracefully shutting down")
		}
		time.Sleep(time.Second)
		log.Info("Gracefully shutting down finished")
	}()

	// run HTTP server
	if err := app.Listen(fmt.Sprintf("%s:%d", conf.App.ListenAddr, conf.App.Port)); err != nil {
		log.Fatal(err)
	}

	signal.Stop(c)
	close(c)
	wg.Wait()
	log.Info("HTTP server successfully stopped")
}
