// Package server wires the wlog server together: it opens the shared entry
// store once, then runs the line protocol listener and the HTTP and gRPC sync
// endpoints until the process is signalled. An optional S3 snapshot is taken
// on the way out.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/wlog/internal/backup"
	"github.com/dmitrijs2005/wlog/internal/grpcsync"
	"github.com/dmitrijs2005/wlog/internal/httpsync"
	"github.com/dmitrijs2005/wlog/internal/lineproto"
	"github.com/dmitrijs2005/wlog/internal/logging"
	"github.com/dmitrijs2005/wlog/internal/models"
	"github.com/dmitrijs2005/wlog/internal/server/config"
	"github.com/dmitrijs2005/wlog/internal/services"
	"github.com/dmitrijs2005/wlog/internal/store"
)

// runner is a long-lived listener stopped by cancelling its context.
type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config       *config.Config
	logger       logging.Logger
	store        *store.Store
	entryService *services.EntryService
}

// NewApp opens the store. Failure here is fatal and wraps
// common.ErrStoreUnavailable.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewJSONLogger(os.Stdout, slog.LevelInfo)
	}

	st, err := store.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	return &App{
		config:       c,
		logger:       logger,
		store:        st,
		entryService: services.NewEntryService(st, models.SystemClock),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) runners() []runner {
	return []runner{
		lineproto.NewServer(app.config.LineAddr, app.logger, app.entryService, app.config.QueueLimit),
		httpsync.NewServer(app.config.HTTPAddr, app.logger, app.entryService, app.config.Secret, app.config.ReadHeaderTimeout),
		grpcsync.NewServer(app.config.GRPCAddr, app.logger, app.entryService, app.config.Secret),
	}
}

// start runs r; any error, a bind failure included, stops the whole app.
func (app *App) start(ctx context.Context, cancelFunc context.CancelFunc, r runner) {
	if err := r.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a signal arrives or a listener fails.
// It closes the store before returning.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if app.config.Secret == "" {
		app.logger.Warn(ctx, "no shared secret configured, HTTP and gRPC sync will reject every request")
	}

	var wg sync.WaitGroup

	for _, r := range app.runners() {
		wg.Add(1)
		go func(r runner) {
			defer wg.Done()
			app.start(ctx, cancelFunc, r)
		}(r)
	}

	wg.Wait()

	app.backup()

	if err := app.store.Close(); err != nil {
		app.logger.Error(ctx, "closing store", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}

// backup uploads a final snapshot when S3 is configured.
func (app *App) backup() {
	if !app.config.BackupEnabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	es, err := app.entryService.All(ctx)
	if err != nil {
		app.logger.Error(ctx, "backup: reading entries", "error", err)
		return
	}

	u := backup.NewUploader(backup.Settings{
		AccessKey:    app.config.S3AccessKey,
		SecretKey:    app.config.S3SecretKey,
		Bucket:       app.config.S3Bucket,
		Region:       app.config.S3Region,
		BaseEndpoint: app.config.S3BaseEndpoint,
	}, http.DefaultClient, nil)

	key, err := u.Upload(ctx, es)
	if err != nil {
		app.logger.Error(ctx, "backup failed", "error", err)
		return
	}
	app.logger.Info(ctx, "backup uploaded", "key", key, "entries", len(es))
}
