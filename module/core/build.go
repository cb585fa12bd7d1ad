package core

import (
	"database/sql"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/nandanugg/fleet-compliance/module/core/compliance"
	handler "github.com/nandanugg/fleet-compliance/module/core/internal/handler/http"
	"github.com/nandanugg/fleet-compliance/module/core/internal/handler/subscriber"
	rediscache "github.com/nandanugg/fleet-compliance/module/core/internal/repository/cache/redis"
	"github.com/nandanugg/fleet-compliance/module/core/internal/repository/database/postgres"
	"github.com/nandanugg/fleet-compliance/module/core/internal/repository/publisher/rabbitmq"
	"github.com/nandanugg/fleet-compliance/module/core/service"
)

type Options struct {
	StrictManualChecks bool
	BroadcastRoles     []string
	BroadcastTimeout   time.Duration
	LockTTL            time.Duration
	LockRetries        int
	IngestTimeout      time.Duration
}

type Module struct {
	LocationSvc *service.LocationService
	GeofenceSvc *service.GeofenceService
	CrossingSvc *service.CrossingService

	broadcaster *service.Broadcaster
	handlers    []interface{ Register(r *gin.RouterGroup) }
	subscriber  *subscriber.PositionSubscriber
}

func Build(db *sql.DB, rdb *redis.Client, amqpConn *amqp.Connection, mqttClient mqtt.Client, opts Options, log logrus.FieldLogger) (*Module, error) {
	locationRepo := postgres.NewLocationRepo(db)
	zoneRepo := postgres.NewZoneRepo(db)
	transitionRepo := postgres.NewTransitionRepo(db)
	shipmentRepo := postgres.NewShipmentRepo(db)
	mileageRepo := postgres.NewMileageRepo(db)
	eventRepo := postgres.NewComplianceEventRepo(db)

	stateStore := rediscache.NewZoneStateStore(rdb)
	locker := rediscache.NewVehicleLocker(rdb, opts.LockTTL, opts.LockRetries)

	alertPub, err := rabbitmq.NewAlertPublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("alert publisher: %w", err)
	}

	engine := compliance.NewEngine(compliance.DefaultRules, compliance.Options{
		StrictManualChecks: opts.StrictManualChecks,
	})

	broadcaster := service.NewBroadcaster(alertPub, transitionRepo, opts.BroadcastRoles, opts.BroadcastTimeout, log.WithField("component", "broadcaster"))
	crossingSvc := service.NewCrossingService(shipmentRepo, mileageRepo, eventRepo, engine, broadcaster, log.WithField("component", "crossing"))
	geofenceSvc := service.NewGeofenceService(zoneRepo, transitionRepo, stateStore, crossingSvc, broadcaster, log.WithField("component", "geofence"))
	locationSvc := service.NewLocationService(locationRepo, geofenceSvc, crossingSvc, locker, log.WithField("component", "location"))
	routeSvc := service.NewRouteService(shipmentRepo, engine)
	iftaSvc := service.NewIFTAService(mileageRepo)
	driverSvc := service.NewDriverService(locationRepo)
	zoneSvc := service.NewZoneService(zoneRepo)

	sub := subscriber.NewPositionSubscriber(mqttClient, locationSvc, opts.IngestTimeout, log.WithField("component", "subscriber"))

	return &Module{
		LocationSvc: locationSvc,
		GeofenceSvc: geofenceSvc,
		CrossingSvc: crossingSvc,
		broadcaster: broadcaster,
		handlers: []interface{ Register(r *gin.RouterGroup) }{
			handler.NewVehicleHandler(locationSvc),
			handler.NewZoneHandler(zoneSvc),
			handler.NewShipmentHandler(crossingSvc, routeSvc),
			handler.NewReportHandler(iftaSvc, driverSvc),
		},
		subscriber: sub,
	}, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	for _, h := range m.handlers {
		h.Register(r)
	}
}

func (m *Module) StartSubscribers() error {
	return m.subscriber.Start()
}

// Drain blocks until in-flight alert publishes have finished.
func (m *Module) Drain() {
	m.broadcaster.Wait()
}
