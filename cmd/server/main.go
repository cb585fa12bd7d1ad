package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nandanugg/fleet-compliance/config"
	"github.com/nandanugg/fleet-compliance/module/core"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(cfg)

	db, err := config.NewPostgres(cfg)
	if err != nil {
		logger.WithError(err).Fatal("postgres")
	}
	defer func() { _ = db.Close() }()

	rdb, err := config.NewRedis(cfg)
	if err != nil {
		logger.WithError(err).Fatal("redis")
	}
	defer func() { _ = rdb.Close() }()

	amqpConn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		logger.WithError(err).Fatal("rabbitmq")
	}
	defer func() { _ = amqpConn.Close() }()

	mqttClient, err := config.NewMQTT(cfg)
	if err != nil {
		logger.WithError(err).Fatal("mqtt")
	}
	defer mqttClient.Disconnect(250)

	coreModule, err := core.Build(db, rdb, amqpConn, mqttClient, core.Options{
		StrictManualChecks: cfg.StrictManualChecks,
		BroadcastRoles:     cfg.BroadcastRoles,
		BroadcastTimeout:   cfg.BroadcastTimeout,
		LockTTL:            cfg.LockTTL,
		LockRetries:        cfg.LockRetries,
		IngestTimeout:      cfg.IngestTimeout,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("core module")
	}

	if err := coreModule.StartSubscribers(); err != nil {
		logger.WithError(err).Fatal("start subscribers")
	}

	r := gin.New()
	r.Use(gin.Recovery(), cors.Default())

	health := config.NewHealthChecker(db, rdb, amqpConn, mqttClient)
	health.Register(r)

	coreModule.RegisterRoutes(&r.RouterGroup)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.HTTPPort).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("http shutdown")
	}
	coreModule.Drain()
}
