package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"ordermenu/internal/cache"
	"ordermenu/internal/config"
	"ordermenu/internal/database"
	"ordermenu/internal/logger"
	"ordermenu/internal/messaging"
	"ordermenu/internal/models"
	"ordermenu/internal/repository"
	"ordermenu/internal/server"
	"ordermenu/internal/services/kitchen"
	"ordermenu/internal/services/notification"
)

const migrationsPath = "migrations"

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "ordermenu",
		Short:         "Multi-tenant restaurant ordering platform",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the config file")

	root.AddCommand(
		orderServiceCmd(),
		kitchenWorkerCmd(),
		notificationSubscriberCmd(),
		migrateCmd(),
		seedCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the config and creates the logger for service
func setup(service string) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.NewWithLevel(service, cfg.Log.Level), nil
}

// openStore connects to PostgreSQL, or falls back to the in-memory store
// when the database is disabled.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*repository.Store, func(), error) {
	if !cfg.Database.Enabled {
		log.Warn("db_disabled", "Database disabled, using in-memory store", "startup", nil)
		return repository.NewMemoryStore(), func() {}, nil
	}
	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to initialize database")
	}
	log.Info("db_connected", "Connected to PostgreSQL database", "startup", nil)
	if err := db.RunMigrations(ctx, migrationsPath); err != nil {
		db.Close()
		return nil, nil, errors.Wrap(err, "failed to run migrations")
	}
	return repository.NewPostgresStore(db, log, cfg.Ordering.NumberRetryAttempts), db.Close, nil
}

func openBroker(cfg *config.Config, log *logger.Logger) (*messaging.Connection, error) {
	conn, err := messaging.New(cfg, log)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize messaging")
	}
	log.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", nil)
	return conn, nil
}

func openCache(ctx context.Context, cfg *config.Config, log *logger.Logger) (cache.Menus, cache.Throttle, func(), error) {
	if !cfg.Redis.Enabled {
		log.Warn("redis_disabled", "Redis disabled, menu cache and login throttle are off", "startup", nil)
		return cache.NopMenus{}, cache.NopThrottle{}, func() {}, nil
	}
	c, err := cache.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Info("redis_connected", "Connected to Redis", "startup", nil)
	return cache.NewRedisMenus(c, cfg.Redis.MenuTTL), cache.NewRedisThrottle(c, cfg.Auth.LoginMaxFailures), func() { c.Close() }, nil
}

func orderServiceCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "order-service",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup("order-service")
			if err != nil {
				return err
			}
			defer log.Sync()
			if port == 0 {
				port = cfg.HTTP.Port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, closeStore, err := openStore(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer closeStore()

			menus, throttle, closeCache, err := openCache(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer closeCache()

			var events messaging.EventPublisher = messaging.NopPublisher{}
			if cfg.RabbitMQ.Enabled {
				conn, err := openBroker(cfg, log)
				if err != nil {
					return err
				}
				defer conn.Close()
				events = messaging.NewPublisher(conn, log)
			}

			handler, err := server.NewRouter(cfg, server.Deps{Store: store, Events: events, Menus: menus, Throttle: throttle}, log)
			if err != nil {
				return err
			}
			return serve(ctx, handler, cfg, port, log)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (defaults to http.port)")
	return cmd
}

// serve runs the HTTP server until ctx ends, then drains it for up to 10s
func serve(ctx context.Context, handler http.Handler, cfg *config.Config, port int, log *logger.Logger) error {
	requestID := logger.GenerateRequestID()
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("service_started", fmt.Sprintf("Order service started on port %d", port), requestID, map[string]interface{}{
			"port": port,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Wrap(err, "http server failed")
		}
	case <-ctx.Done():
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "failed to shut down http server")
	}
	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
	return nil
}

func kitchenWorkerCmd() *cobra.Command {
	var (
		name      string
		orderType string
		prefetch  int
	)
	cmd := &cobra.Command{
		Use:   "kitchen-worker",
		Short: "Accept placed orders from a kitchen queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			ot := models.OrderType(orderType)
			if !ot.Valid() {
				return errors.Errorf("invalid --order-type %q: want dine_in or take_away", orderType)
			}
			if name == "" {
				return errors.New("--name is required")
			}
			cfg, log, err := setup("kitchen-worker")
			if err != nil {
				return err
			}
			defer log.Sync()
			if !cfg.Database.Enabled || !cfg.RabbitMQ.Enabled {
				return errors.New("kitchen-worker needs database and rabbitmq enabled")
			}

			ctx := cmd.Context()
			store, closeStore, err := openStore(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer closeStore()

			conn, err := openBroker(cfg, log)
			if err != nil {
				return err
			}
			defer conn.Close()

			consumer := messaging.NewConsumer(conn, log, kitchen.QueueFor(ot), "kitchen-"+name, prefetch)
			worker := kitchen.NewWorker(name, []models.OrderType{ot}, consumer, store.Orders, messaging.NewPublisher(conn, log), log)
			return worker.Start(ctx)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "worker name recorded in the status log")
	cmd.Flags().StringVar(&orderType, "order-type", string(models.DineIn), "order type to handle (dine_in or take_away)")
	cmd.Flags().IntVar(&prefetch, "prefetch", 1, "RabbitMQ prefetch count")
	return cmd
}

func notificationSubscriberCmd() *cobra.Command {
	var prefetch int
	cmd := &cobra.Command{
		Use:   "notification-subscriber",
		Short: "Forward order events to tenant Telegram chats",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup("notification-subscriber")
			if err != nil {
				return err
			}
			defer log.Sync()
			if !cfg.RabbitMQ.Enabled {
				return errors.New("notification-subscriber needs rabbitmq enabled")
			}

			ctx := cmd.Context()
			store, closeStore, err := openStore(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer closeStore()

			conn, err := openBroker(cfg, log)
			if err != nil {
				return err
			}
			defer conn.Close()

			var sender notification.Sender
			if cfg.Telegram.Token != "" {
				tg, err := notification.NewTelegramSender(cfg.Telegram.Token)
				if err != nil {
					return err
				}
				sender = tg
			} else {
				log.Warn("telegram_disabled", "No telegram token, notifications are only logged", "startup", nil)
			}

			orders := messaging.NewConsumer(conn, log, messaging.TenantOrdersQueue, "notifier-orders", prefetch)
			updates := messaging.NewConsumer(conn, log, messaging.NotificationsQueue, "notifier-updates", prefetch)
			return notification.NewSubscriber(orders, updates, store.Tenants, sender, log).Start(ctx)
		},
	}
	cmd.Flags().IntVar(&prefetch, "prefetch", 10, "RabbitMQ prefetch count")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup("migrate")
			if err != nil {
				return err
			}
			defer log.Sync()
			db, err := database.New(cmd.Context(), cfg, log)
			if err != nil {
				return errors.Wrap(err, "failed to initialize database")
			}
			defer db.Close()
			if err := db.RunMigrations(cmd.Context(), migrationsPath); err != nil {
				return err
			}
			log.Info("migrations_applied", "Migrations applied", "", nil)
			return nil
		},
	}
}
