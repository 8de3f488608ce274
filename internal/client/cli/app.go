package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/dmitrijs2005/wlog/internal/backup"
	"github.com/dmitrijs2005/wlog/internal/client/config"
	"github.com/dmitrijs2005/wlog/internal/filex"
	"github.com/dmitrijs2005/wlog/internal/logging"
	"github.com/dmitrijs2005/wlog/internal/models"
	"github.com/dmitrijs2005/wlog/internal/services"
	"github.com/dmitrijs2005/wlog/internal/store"
	"golang.org/x/term"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	store        *store.Store
	entryService *services.EntryService
	httpClient   *http.Client
	out          io.Writer
	colorize     bool
}

// Option customises an App; used by tests and the main package.
type Option func(*App)

func WithOutput(w io.Writer) Option {
	return func(a *App) {
		a.out = w
		a.colorize = isTerminal(w)
	}
}

func WithClock(now models.Clock) Option {
	return func(a *App) {
		a.entryService = services.NewEntryService(a.store, now)
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(a *App) { a.httpClient = hc }
}

// NewApp opens (and if needed creates) the local log.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger, opts ...Option) (*App, error) {
	if !isPostgres(c.DatabaseDSN) {
		if err := filex.EnsureParent(c.DatabaseDSN); err != nil {
			return nil, err
		}
	}

	st, err := store.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	a := &App{
		config:       c,
		logger:       logger,
		store:        st,
		entryService: services.NewEntryService(st, models.SystemClock),
		httpClient:   http.DefaultClient,
	}
	WithOutput(os.Stdout)(a)

	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Run performs one invocation and closes the local log.
func (a *App) Run(ctx context.Context) error {
	defer a.store.Close()

	a.syncRemotes(ctx)

	if a.config.Message != "" {
		if err := a.logMessage(ctx); err != nil {
			return err
		}
	}

	if a.config.Backup {
		if err := a.backup(ctx); err != nil {
			return err
		}
	}

	return a.printEntries(ctx)
}

func (a *App) logMessage(ctx context.Context) error {
	var err error
	if a.config.Date != "" {
		_, err = a.entryService.LogOn(ctx, a.config.Date, a.config.Message)
	} else {
		_, err = a.entryService.Log(ctx, a.config.Message)
	}
	if err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

func (a *App) backup(ctx context.Context) error {
	es, err := a.entryService.All(ctx)
	if err != nil {
		return err
	}

	u := backup.NewUploader(backup.Settings{
		AccessKey:    a.config.S3AccessKey,
		SecretKey:    a.config.S3SecretKey,
		Bucket:       a.config.S3Bucket,
		Region:       a.config.S3Region,
		BaseEndpoint: a.config.S3BaseEndpoint,
	}, a.httpClient, nil)

	key, err := u.Upload(ctx, es)
	if err != nil {
		return err
	}
	a.logger.Info(ctx, "backup uploaded", "key", key, "entries", len(es))
	return nil
}
