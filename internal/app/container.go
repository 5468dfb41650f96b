// Package app provides the dependency injection container for the application.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
	"github.com/xiaowang-jiji/taskbot/internal/infra/assistant"
	"github.com/xiaowang-jiji/taskbot/internal/infra/crypto"
	"github.com/xiaowang-jiji/taskbot/internal/infra/jsonstore"
	"github.com/xiaowang-jiji/taskbot/internal/infra/line"
	"github.com/xiaowang-jiji/taskbot/internal/infra/logging"
	"github.com/xiaowang-jiji/taskbot/internal/infra/sqlstore"
	"github.com/xiaowang-jiji/taskbot/internal/infra/tagfile"
	"github.com/xiaowang-jiji/taskbot/internal/infra/userstore"
	"github.com/xiaowang-jiji/taskbot/internal/usecase"
	"github.com/xiaowang-jiji/taskbot/internal/web"
)

// DefaultSQLitePath is used for the sqlite driver when [store].path is left
// at the JSON default.
const DefaultSQLitePath = "taskbot.db"

// dedupeTTL is how long webhook event ids are remembered.
const dedupeTTL = 10 * time.Minute

// ErrMissingDSN is returned when the postgres driver has no connection string.
var ErrMissingDSN = errors.New("store driver postgres needs [store].dsn or DATABASE_URL")

// uuidGenerator implements domain.IDGenerator with random UUIDs.
type uuidGenerator struct{}

func (uuidGenerator) NewID() string { return uuid.NewString() }

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Users       domain.UserStore
	Persistence domain.Persistence // nil when [store].driver = "none"
	Tags        domain.TagSource
	TagWriter   domain.TagWriter // nil when the store cannot hold tags
	Assistant   domain.Assistant // nil without an API key
	Messenger   domain.Messenger
	Ticketer    domain.Ticketer
	IDs         domain.IDGenerator
	Clock       domain.Clock
	Logger      domain.Logger

	// Pointer fields
	RequestLog *slog.Logger
	Config     *domain.Config

	closers []io.Closer
}

// New creates a new Container from the effective configuration.
// Log lines without a configured directory go to stderr.
func New(ctx context.Context, cfg *domain.Config, stderr io.Writer) (*Container, error) {
	logger := logging.New(cfg.Log.Dir, logging.ParseLevel(cfg.Log.Level), stderr)
	c := &Container{
		Users:      userstore.New(),
		IDs:        uuidGenerator{},
		Clock:      domain.RealClock{},
		Logger:     logger,
		RequestLog: slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logging.ParseLevel(cfg.Log.Level)})),
		Config:     cfg,
		closers:    []io.Closer{logger},
	}

	// The CLI prints warnings to the terminal; keep them in the log file too
	if cfg.Log.Dir != "" {
		for _, w := range cfg.Warnings {
			logger.Warn("", "config", w)
		}
	}

	if err := c.openStore(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}

	if err := c.openTags(); err != nil {
		_ = c.Close()
		return nil, err
	}

	if cfg.Assistant.APIKey != "" {
		c.Assistant = assistant.New(cfg.Assistant)
	} else {
		logger.Warn("", "config", "no assistant api key; questions get an apology")
	}

	c.Messenger = line.NewClient(cfg.LINE.APIBase, cfg.LINE.ChannelAccessToken, &http.Client{Timeout: line.DefaultTimeout})

	key := cfg.Sync.Key
	if key == "" {
		var err error
		if key, err = crypto.GenerateKey(); err != nil {
			_ = c.Close()
			return nil, err
		}
		logger.Info("", "config", "no sync key; view tickets last until restart")
	}
	ticketer, err := crypto.NewTicketer(key, cfg.Sync.TicketTTL, c.Clock)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("sync key: %w", err)
	}
	c.Ticketer = ticketer

	return c, nil
}

// openStore binds Persistence (and TagWriter) to the configured driver.
func (c *Container) openStore(ctx context.Context) error {
	store := c.Config.Store
	switch store.Driver {
	case domain.StoreDriverNone:
		return nil
	case domain.StoreDriverJSON, "":
		s := jsonstore.New(store.Path)
		if err := s.Initialize(); err != nil {
			return fmt.Errorf("initialize json store: %w", err)
		}
		c.Persistence, c.TagWriter, c.Tags = s, s, s
		return nil
	case domain.StoreDriverSQLite, domain.StoreDriverPostgres:
		dsn := store.DSN
		if store.Driver == domain.StoreDriverSQLite {
			dsn = store.Path
			if dsn == "" || dsn == domain.DefaultStorePath {
				dsn = DefaultSQLitePath
			}
		} else if dsn == "" {
			return ErrMissingDSN
		}
		s, err := sqlstore.Open(ctx, store.Driver, dsn)
		if err != nil {
			return err
		}
		c.Persistence, c.TagWriter, c.Tags = s, s, s
		c.closers = append(c.closers, s)
		return nil
	default:
		return fmt.Errorf("unknown store driver %q", store.Driver)
	}
}

// openTags puts the tag file behind the store, when one is configured.
func (c *Container) openTags() error {
	if c.Config.Tags.File == "" {
		return nil
	}
	f, err := tagfile.Load(c.Config.Tags.File)
	if err != nil {
		return err
	}
	c.Tags = tagfile.Chain{c.Tags, f}
	return nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg *domain.Config, users domain.UserStore, persistence domain.Persistence, messenger domain.Messenger, ticketer domain.Ticketer, clock domain.Clock, logger domain.Logger) *Container {
	return &Container{
		Users:       users,
		Persistence: persistence,
		Messenger:   messenger,
		Ticketer:    ticketer,
		IDs:         uuidGenerator{},
		Clock:       clock,
		Logger:      logger,
		Config:      cfg,
	}
}

// Close releases the store connection and log file.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// UseCase factory methods

// HandleEventUseCase returns a new HandleEvent use case.
func (c *Container) HandleEventUseCase() *usecase.HandleEvent {
	return usecase.NewHandleEvent(usecase.HandleEventDeps{
		Users:       c.Users,
		Persistence: c.Persistence,
		Tags:        c.Tags,
		Assistant:   c.Assistant,
		Ticketer:    c.Ticketer,
		IDs:         c.IDs,
		Clock:       c.Clock,
		Logger:      c.Logger,
		Links:       c.Config.Links,
		TagTimeout:  c.Config.Dialogue.TagTimeout,
	})
}

// DeliverReplyUseCase returns a new DeliverReply use case.
func (c *Container) DeliverReplyUseCase() *usecase.DeliverReply {
	return usecase.NewDeliverReply(c.Messenger, c.Logger)
}

// ListTasksUseCase returns a new ListTasks use case.
func (c *Container) ListTasksUseCase() *usecase.ListTasks {
	return usecase.NewListTasks(c.Users)
}

// SyncTasksUseCase returns a new SyncTasks use case.
func (c *Container) SyncTasksUseCase() *usecase.SyncTasks {
	return usecase.NewSyncTasks(c.Users, c.Persistence, c.Clock, c.Logger)
}

// RemoveFavoriteUseCase returns a new RemoveFavorite use case.
func (c *Container) RemoveFavoriteUseCase() *usecase.RemoveFavorite {
	return usecase.NewRemoveFavorite(c.Users, c.Persistence, c.Logger)
}

// ImportTagsUseCase returns a new ImportTags use case.
func (c *Container) ImportTagsUseCase() *usecase.ImportTags {
	return usecase.NewImportTags(c.TagWriter, c.Logger)
}

// WebServer returns the HTTP server wired to the container.
func (c *Container) WebServer() *web.Server {
	return web.NewServer(web.Deps{
		Dispatch:       c.HandleEventUseCase(),
		Deliver:        c.DeliverReplyUseCase(),
		List:           c.ListTasksUseCase(),
		Sync:           c.SyncTasksUseCase(),
		RemoveFavorite: c.RemoveFavoriteUseCase(),
		Persistence:    c.Persistence,
		Ticketer:       c.Ticketer,
		Deduper:        line.NewDeduper(dedupeTTL),
		Logger:         c.Logger,
		RequestLog:     c.RequestLog,
		ChannelSecret:  c.Config.LINE.ChannelSecret,
		WebhookPath:    c.Config.Server.WebhookPath,
	})
}
