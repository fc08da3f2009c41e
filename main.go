package main

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mongodb"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"

	"storefront/config"
	"storefront/pkg/domain/service"
	"storefront/pkg/infrastructure/auth"
	"storefront/pkg/infrastructure/event"
	"storefront/pkg/infrastructure/geo"
	"storefront/pkg/infrastructure/mail"
	"storefront/pkg/infrastructure/metrics"
	"storefront/pkg/infrastructure/repository"
	"storefront/pkg/infrastructure/worker"
	"storefront/transport"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	app := &cli.App{
		Name:  "storefront",
		Usage: "storefront backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-prefix",
				Value:   config.DefaultPrefix,
				Usage:   "prefix of the environment variables holding the configuration",
				EnvVars: []string{"STOREFRONT_ENV_PREFIX"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "service",
				Usage:  "run the HTTP API",
				Action: runService,
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations",
				Action: runMigrations,
			},
			{
				Name:  "create-superadmin",
				Usage: "create the first superadmin account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"STOREFRONT_SUPERADMIN_PASSWORD"}},
				},
				Action: runCreateSuperAdmin,
			},
		},
		DefaultCommand: "service",
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("storefront failed")
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("env-prefix"))
	if err != nil {
		return nil, err
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", cfg.LogLevel)
	}
	log.SetLevel(level)
	return cfg, nil
}

func runService(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	client, err := repository.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("failed to disconnect from mongo")
		}
	}()
	db := client.Database(cfg.MongoDatabase)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	queue := worker.NewQueue(ctx, worker.Config{
		Workers:     cfg.Workers,
		Capacity:    cfg.QueueCapacity,
		TaskTimeout: cfg.TaskTimeout,
	}, m)
	defer func() {
		if err := queue.Close(); err != nil {
			log.WithError(err).Warn("failed to drain background queue")
		}
	}()

	var dispatcher service.EventDispatcher = event.LogDispatcher{}
	if cfg.AMQPURL != "" {
		amqpDispatcher, err := event.NewAMQPDispatcher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return err
		}
		defer func() {
			if err := amqpDispatcher.Close(); err != nil {
				log.WithError(err).Warn("failed to close broker connection")
			}
		}()
		dispatcher = amqpDispatcher
	}
	dispatcher = m.Dispatcher(dispatcher)

	users := repository.NewUserRepository(db)
	pending := repository.NewPendingUserRepository(db)
	products := repository.NewProductRepository(db)
	reviews := repository.NewReviewRepository(db)
	orders := repository.NewOrderRepository(db)
	carts := repository.NewCartRepository(db)
	wishlists := repository.NewWishlistRepository(db)
	discountCodes := repository.NewDiscountCodeRepository(db)
	activities := repository.NewActivityRepository(db)
	categories := repository.NewCategoryRepository(db)
	deals := repository.NewDealRepository(db)

	sender := mail.NewSMTPSender(mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		SSL:      cfg.SMTPSSL,
		Timeout:  cfg.SMTPTimeout,
	})
	notifier := service.NewNotifier(sender, queue, service.NotifierConfig{
		AdminEmail:    cfg.AdminEmail,
		StorefrontURL: cfg.StorefrontURL,
	})

	analytics := service.NewAnalyticsService(
		activities, users, carts, products,
		geo.NewIPAPILocator(cfg.GeoBaseURL, cfg.GeoTimeout),
		queue,
	)
	discounts := service.NewDiscountService(discountCodes, notifier, dispatcher)

	services := transport.Services{
		Users: service.NewUserService(
			users, pending, orders,
			auth.NewBcryptPasswordManager(cfg.BcryptCost),
			auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
			notifier, dispatcher,
		),
		Products:   service.NewProductService(products, reviews, categories, carts, users, dispatcher),
		Carts:      service.NewCartService(carts, products, analytics),
		Wishlists:  service.NewWishlistService(wishlists, products),
		Orders:     service.NewOrderService(orders, products, carts, discounts, analytics, notifier, dispatcher),
		Discounts:  discounts,
		Categories: service.NewCategoryService(categories),
		Deals:      service.NewDealService(deals, categories),
		Content: service.NewContentService(
			repository.NewSlideRepository(db),
			repository.NewBannerRepository(db),
			repository.NewReelRepository(db),
		),
		Campaigns: service.NewCampaignService(repository.NewCampaignRepository(db), users, notifier, dispatcher),
		Analytics: analytics,
	}

	router := transport.Router(services, transport.Options{
		DashboardSecret:  cfg.DashboardSecret,
		AnalyticsLimiter: rate.NewLimiter(rate.Limit(cfg.AnalyticsRate), cfg.AnalyticsBurst),
		Metrics:          m,
	})

	log.WithFields(log.Fields{"url": cfg.ServeAddress}).Info("Starting server")

	killSignalChan := getKillSignalChan()
	srv := startServer(cfg.ServeAddress, router)

	waitForKillSignalChan(killSignalChan)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}

func runCreateSuperAdmin(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	client, err := repository.Connect(c.Context, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("failed to disconnect from mongo")
		}
	}()
	db := client.Database(cfg.MongoDatabase)

	// Bootstrapping sends no mail, so the notifier is left out.
	users := service.NewUserService(
		repository.NewUserRepository(db),
		repository.NewPendingUserRepository(db),
		repository.NewOrderRepository(db),
		auth.NewBcryptPasswordManager(cfg.BcryptCost),
		auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
		nil,
		event.LogDispatcher{},
	)
	session, err := users.BootstrapSuperAdmin(c.Context, c.String("username"), c.String("email"), c.String("password"))
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"userID": session.UserID.Hex(), "email": session.Email}).Info("superadmin created")
	return nil
}

func runMigrations(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	databaseURL, err := migrationURL(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return err
	}
	m, err := migrate.New("file://"+cfg.MigrationsDir, databaseURL)
	if err != nil {
		return errors.Wrap(err, "failed to init migrations")
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "failed to apply migrations")
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return errors.Wrap(err, "failed to read migration version")
	}
	log.WithFields(log.Fields{"version": version, "dirty": dirty}).Info("migrations applied")
	return nil
}

// migrationURL points the mongo uri at the application database.
func migrationURL(uri, database string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", errors.Wrap(err, "invalid mongo uri")
	}
	u.Path = "/" + database
	return u.String(), nil
}

func startServer(serverUrl string, router http.Handler) *http.Server {
	srv := &http.Server{Addr: serverUrl, Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	return srv
}

func getKillSignalChan() chan os.Signal {
	osKillSignalChan := make(chan os.Signal, 1)
	signal.Notify(osKillSignalChan, os.Kill, os.Interrupt, syscall.SIGTERM)
	return osKillSignalChan
}

func waitForKillSignalChan(killSignalChan <-chan os.Signal) {
	killSignal := <-killSignalChan
	switch killSignal {
	case os.Interrupt:
		log.Info("Got SIGINT...")
	case syscall.SIGTERM:
		log.Info("Got SIGTERM...")
	}
}
