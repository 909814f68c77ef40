package main

import (
	"context"
	"flag"
	"time"

	"fyne.io/fyne/v2/app"
	log "github.com/sirupsen/logrus"

	"github.com/todo-manager/v2/assets"
	"github.com/todo-manager/v2/core"
	"github.com/todo-manager/v2/internal/auth"
	"github.com/todo-manager/v2/internal/config"
	"github.com/todo-manager/v2/services"
	"github.com/todo-manager/v2/ui"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to a YAML config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	log.SetLevel(cfg.Level())
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.WithField("api_url", cfg.APIURL).Info("Starting To-Do Manager")

	var store auth.Store
	if !cfg.MemorySession {
		db, err := core.NewDatabase(cfg.DataDir, "")
		if err != nil {
			log.Fatalf("Failed to prepare data directory: %v", err)
		}
		if err := db.Connect(); err != nil {
			log.Fatalf("Failed to open session database: %v", err)
		}
		defer db.Close()
		store = db
	}

	session := auth.NewSession(store)
	api := services.NewApiClient(cfg.APIURL, session, cfg.RequestTimeout)

	myApp := app.NewWithID("io.todo-manager.client")
	icon := assets.GetAppIcon()
	if icon == nil {
		log.Warn("Failed to load icon from embedded resources")
	} else {
		myApp.SetIcon(icon)
	}

	window := ui.NewTaskWindow(myApp, icon)
	client := core.NewSessionClient(core.Deps{
		Auth:       services.NewAuthService(api),
		Categories: services.NewCategoryService(api),
		Tasks:      services.NewTaskService(api),
		Health:     api,
		Session:    session,
	}, window)
	window.Bind(client)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.CheckHealth(ctx)
	}()
	go func() {
		if err := client.Start(context.Background()); err != nil {
			log.Warnf("Initial load failed: %v", err)
		}
	}()

	window.Run()
	log.Info("Application has exited.")
}
