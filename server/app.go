package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"natours/config"
	"natours/internal/apperr"
	"natours/internal/auth"
	"natours/internal/bookings"
	"natours/internal/db"
	"natours/internal/health"
	"natours/internal/logs"
	"natours/internal/mail"
	"natours/internal/middleware"
	"natours/internal/models"
	"natours/internal/reviews"
	"natours/internal/storage"
	"natours/internal/tours"
	"natours/internal/users"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type App struct {
	cfg        *config.Config
	db         *gorm.DB
	Router     *mux.Router
	httpServer *http.Server

	ctx    context.Context
	cancel context.CancelFunc
}

func (a *App) Initialize(cfg *config.Config) {
	a.cfg = cfg

	/* 1) Логи */
	logs.Init(logs.Options{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.Logging.Format,
		File:   a.cfg.Logging.File,
	})

	/* 2) DB */
	d, err := db.Open(a.cfg.Database.Driver, a.cfg.Database.DSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	a.db = d

	if err := a.db.AutoMigrate(
		&models.User{},
		&models.Tour{},
		&models.Review{},
		&models.Booking{}); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	/* 3) Внешние коллабораторы: почта и объектное хранилище */
	var mailer mail.Sender = mail.LogSender{}
	if a.cfg.SMTP.Host != "" {
		mailer = mail.NewSMTP(mail.SMTPConfig{
			Host:     a.cfg.SMTP.Host,
			Port:     a.cfg.SMTP.Port,
			Username: a.cfg.SMTP.Username,
			Password: a.cfg.SMTP.Password,
			From:     a.cfg.SMTP.From,
		})
	}

	var images storage.ImageStore
	if a.cfg.Storage.Endpoint != "" {
		images, err = storage.NewMinio(storage.Config{
			Endpoint:  a.cfg.Storage.Endpoint,
			AccessKey: a.cfg.Storage.AccessKey,
			SecretKey: a.cfg.Storage.SecretKey,
			Bucket:    a.cfg.Storage.Bucket,
			UseSSL:    a.cfg.Storage.UseSSL,
		})
		if err != nil {
			log.Fatalf("storage init failed: %v", err)
		}
	}

	/* 4) Router + middleware */
	a.Router = mux.NewRouter().StrictSlash(true)
	a.Router.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.LoggerMW,
	)

	/* 5) Аутентификация и обработчики областей */
	tokens := auth.NewManager(a.cfg.JWT.Secret, a.cfg.JWT.ExpiresIn)
	uh := users.New(a.db, tokens, mailer, images, a.cfg)
	requireAuth := auth.RequireAuth(tokens, uh.Store())

	health.RegisterRoutes(a.Router, a.db)
	users.RegisterRoutes(a.Router, uh, requireAuth)
	tours.RegisterRoutes(a.Router, tours.New(a.db), requireAuth)
	reviews.RegisterRoutes(a.Router, reviews.New(a.db), requireAuth)
	bookings.RegisterRoutes(a.Router, bookings.New(a.db), requireAuth)

	/* 6) Немаршрутизированные URL — 404 в общем формате */
	a.Router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apperr.Write(w, r, apperr.NotFound("can't find %s on this server", r.URL.Path))
	})

	/* (необязательно) вывести известные маршруты в лог при старте */
	_ = a.Router.Walk(func(rt *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, _ := rt.GetPathTemplate()
		methods, _ := rt.GetMethods()
		if len(methods) == 0 {
			methods = []string{"ANY"}
		}
		log.Printf("route: %-6v %s", methods, path)
		return nil
	})
}

func (a *App) Run() error {
	if a.Router == nil || a.cfg == nil {
		return fmt.Errorf("server not initialized")
	}

	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)

	a.ctx, a.cancel = context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigs
		logs.Logger.Infof("shutdown signal: %s", s)
		a.cancel()
	}()

	// Жёсткие таймауты — это важно для production
	a.httpServer = &http.Server{
		Addr:              bind,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logs.Logger.Infof("HTTP listening on %s", bind)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logs.Logger.Fatalf("http server error: %v", err)
		}
	}()

	<-a.ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logs.Logger.Errorf("http shutdown: %v", err)
	}
	return nil
}
