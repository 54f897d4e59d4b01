package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"tiffin-app-go/internal/clock"
	"tiffin-app-go/internal/config"
	"tiffin-app-go/internal/db"
	catalogdomain "tiffin-app-go/internal/domain/catalog"
	currydomain "tiffin-app-go/internal/domain/curry"
	deliverydomain "tiffin-app-go/internal/domain/delivery"
	mealsdomain "tiffin-app-go/internal/domain/meals"
	subscriptiondomain "tiffin-app-go/internal/domain/subscription"
	upgradedomain "tiffin-app-go/internal/domain/upgrade"
	"tiffin-app-go/internal/lock"
	"tiffin-app-go/internal/notify"
	"tiffin-app-go/internal/repository/inmemory"
	catalogrepo "tiffin-app-go/internal/repository/postgres/catalog"
	curryrepo "tiffin-app-go/internal/repository/postgres/curry"
	deliveryrepo "tiffin-app-go/internal/repository/postgres/delivery"
	mealsrepo "tiffin-app-go/internal/repository/postgres/meals"
	subscriptionrepo "tiffin-app-go/internal/repository/postgres/subscription"
	upgraderepo "tiffin-app-go/internal/repository/postgres/upgrade"
	redisrepo "tiffin-app-go/internal/repository/redis"
	"tiffin-app-go/internal/transport/httpserver"
	"tiffin-app-go/internal/transport/httpserver/handler"
	cataloghandler "tiffin-app-go/internal/transport/httpserver/handler/catalog"
	commonhandler "tiffin-app-go/internal/transport/httpserver/handler/common"
	curryhandler "tiffin-app-go/internal/transport/httpserver/handler/curry"
	deliveryhandler "tiffin-app-go/internal/transport/httpserver/handler/delivery"
	mealshandler "tiffin-app-go/internal/transport/httpserver/handler/meals"
	subscriptionshandler "tiffin-app-go/internal/transport/httpserver/handler/subscriptions"
	upgradeshandler "tiffin-app-go/internal/transport/httpserver/handler/upgrades"
	"tiffin-app-go/pkg/logger"
	"tiffin-app-go/pkg/rabbitmq"
)

const redisPingTimeout = 3 * time.Second

type App struct {
	cfg        config.Config
	log        logger.Logger
	httpServer *http.Server
	db         *gorm.DB
	redis      *goredis.Client
	producer   *rabbitmq.Producer
}

// Deps are the collaborators shared by every domain service.
type Deps struct {
	Clock        clock.Clock
	Notifier     notify.Notifier
	Locker       lock.Locker
	CatalogCache catalogdomain.Cache
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: log}

	log.Info("app: initializing database")
	a.db, err = db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		log.Info("app: applying migrations")
		if err := db.Migrate(a.db); err != nil {
			a.Close()
			return nil, err
		}
	}

	deps := Deps{
		Clock:    clock.System{},
		Notifier: notify.NewLogNotifier(log),
		Locker:   lock.Nop(),
	}

	if cfg.Redis.Enabled() {
		log.Info("app: connecting to redis", "addr", cfg.Redis.Addr)
		a.redis, err = connectRedis(cfg.Redis)
		if err != nil {
			a.Close()
			return nil, err
		}
		deps.Locker = redisrepo.NewUserLocker(a.redis, cfg.Redis.KeyPrefix, cfg.Redis.LockTTL, log)
	}

	switch cfg.CatalogCache.Mode {
	case config.CatalogCacheMemory:
		deps.CatalogCache = inmemory.NewInMemoryCatalogCache()
	case config.CatalogCacheRedis:
		deps.CatalogCache = redisrepo.NewCatalogCache(a.redis, cfg.Redis.KeyPrefix, log)
	}

	if cfg.AMQP.URL != "" {
		log.Info("app: connecting to rabbitmq", "exchange", cfg.AMQP.Exchange)
		a.producer, err = rabbitmq.NewProducer(cfg.AMQP.URL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("rabbitmq: %w", err)
		}
		deps.Notifier = notify.NewAMQPNotifier(a.producer, cfg.AMQP.Exchange, log)
	}

	log.Info("app: initializing router")
	handlers := NewHandlers(cfg, a.db, deps, log)
	router := httpserver.NewRouter(cfg, handlers, log)

	log.Info("app: initializing http server")
	a.httpServer = httpserver.New(cfg, router)

	return a, nil
}

// NewHandlers wires repositories and services over dbConn into HTTP handlers.
func NewHandlers(cfg config.Config, dbConn *gorm.DB, deps Deps, log logger.Logger) *handler.Handlers {
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}

	catalogService := catalogdomain.NewService(catalogrepo.NewPostgres(dbConn), deps.CatalogCache, cfg.CatalogCache.TTL)
	subscriptionService := subscriptiondomain.NewService(
		subscriptionrepo.NewPostgres(dbConn), catalogService, deps.Clock, deps.Notifier, deps.Locker)
	mealsService := mealsdomain.NewService(
		mealsrepo.NewPostgres(dbConn), subscriptionService, catalogService, deps.Clock, deps.Notifier)
	deliveryService := deliverydomain.NewService(deliveryrepo.NewPostgres(dbConn), catalogService, deps.Clock)
	curryService := currydomain.NewService(currydomain.Deps{
		Repo:     curryrepo.NewPostgres(dbConn),
		Catalog:  catalogService,
		Lunches:  mealsService,
		Pairer:   deliveryService,
		Clock:    deps.Clock,
		Notifier: deps.Notifier,
		Locker:   deps.Locker,
		Log:      log,
	})
	upgradeService := upgradedomain.NewService(
		upgraderepo.NewPostgres(dbConn), subscriptionService, catalogService, deps.Clock, deps.Notifier, deps.Locker)

	return &handler.Handlers{
		Common:        commonhandler.New(log),
		Catalog:       cataloghandler.New(catalogService, log),
		Subscriptions: subscriptionshandler.New(subscriptionService, log),
		Meals:         mealshandler.New(mealsService, log),
		Delivery:      deliveryhandler.New(deliveryService, deps.Clock.Today, log),
		Curry:         curryhandler.New(curryService, log),
		Upgrades:      upgradeshandler.New(upgradeService, log),
	}
}

func connectRedis(cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	var errs []error
	if a.producer != nil {
		errs = append(errs, a.producer.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		sqlDB, err := a.db.DB()
		if err != nil {
			errs = append(errs, err)
		} else {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
