package main

import (
	"context"
	"html/template"
	"log/slog"
	"os"
	"time"

	"github.com/gorilla/sessions"

	"github.com/luanbartole/powerblog/internal/blogservice"
	"github.com/luanbartole/powerblog/internal/common"
	"github.com/luanbartole/powerblog/internal/mailservice"
	"github.com/luanbartole/powerblog/internal/userservice"
)

const (
	userCacheExpiration = 15 * time.Minute
	userCacheCleanup    = 30 * time.Minute
	limiterIdleTimeout  = 3 * time.Minute
)

type application struct {
	config        *Config
	logger        *slog.Logger
	db            *common.DB
	userService   *userservice.UserService
	blogService   *blogservice.BlogService
	mailService   contactSender
	sessions      *sessions.CookieStore
	templateCache map[string]*template.Template
	limiter       *ipRateLimiter
}

// newApplication wires the services around db. mb may be nil, in which case
// comments are stored without publishing an event.
func newApplication(cfg *Config, logger *slog.Logger, db *common.DB, mb common.MessageProducer, mailer contactSender) (*application, error) {
	templateCache, err := newTemplateCache()
	if err != nil {
		return nil, err
	}

	app := &application{
		config:        cfg,
		logger:        logger,
		db:            db,
		userService:   userservice.NewUserService(db, common.NewCache(userCacheExpiration, userCacheCleanup), cfg.BcryptCost),
		blogService:   blogservice.NewBlogService(db, mb),
		mailService:   mailer,
		sessions:      newSessionStore(cfg),
		templateCache: templateCache,
	}

	if cfg.RateLimit.Enabled {
		app.limiter = newIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	return app, nil
}

func main() {
	// Initialize the logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Load the configuration
	cfg, err := loadConfig(".env")
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize the database
	db, err := common.NewDB(cfg.DB.Driver, cfg.DB.DSN, cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns, cfg.DB.MaxIdleTime)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	if err := common.Migrate(db); err != nil {
		logger.Error("failed to migrate the database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// The message broker is optional. Without it comments are not announced.
	var (
		producer common.MessageProducer
		consumer common.MessageConsumer
	)
	if cfg.RabbitMQ.Host != "" {
		broker, err := common.NewMessageBroker(common.AMQPURI(cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port))
		if err != nil {
			logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer broker.Close()

		if err := common.SetupBlogExchange(broker); err != nil {
			logger.Error("failed to setup the blog exchange", slog.String("error", err.Error()))
			os.Exit(1)
		}

		producer = broker
		consumer = broker
	}

	mailService := mailservice.NewMailService(consumer, mailservice.Config{
		Host:      cfg.Mail.Host,
		Port:      cfg.Mail.Port,
		Username:  cfg.Mail.User,
		Password:  cfg.Mail.Password,
		Sender:    cfg.Mail.Sender,
		Recipient: cfg.Mail.Recipient,
		Timeout:   cfg.Mail.Timeout,
	}, logger)
	defer mailService.Close()

	if consumer != nil {
		if err := mailService.ConsumeCommentEvents(); err != nil {
			logger.Error("failed to consume comment events", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	app, err := newApplication(cfg, logger, db, producer, mailService)
	if err != nil {
		logger.Error("failed to initialize the application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if app.limiter != nil {
		go func() {
			for range time.Tick(time.Minute) {
				app.limiter.prune(limiterIdleTimeout)
			}
		}()
	}

	// Start the HTTP server
	err = app.serve(context.Background())
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
