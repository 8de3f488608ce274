package cli

import (
	"context"

	"github.com/dmitrijs2005/wlog/internal/grpcsync"
	"github.com/dmitrijs2005/wlog/internal/httpsync"
	"github.com/dmitrijs2005/wlog/internal/lineproto"
)

// syncRemotes runs every configured sync. Failures are logged only.
func (a *App) syncRemotes(ctx context.Context) {
	if a.config.SyncTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.SyncTimeout)
		defer cancel()
	}

	if a.config.Remote != "" {
		if err := a.syncLine(ctx); err != nil {
			a.logger.Error(ctx, "line protocol sync failed", "remote", a.config.Remote, "error", err)
		}
	}
	if a.config.SyncURL != "" {
		if err := a.syncHTTP(ctx); err != nil {
			a.logger.Error(ctx, "http sync failed", "url", a.config.SyncURL, "error", err)
		}
	}
	if a.config.GRPCAddr != "" {
		if err := a.syncGRPC(ctx); err != nil {
			a.logger.Error(ctx, "grpc sync failed", "remote", a.config.GRPCAddr, "error", err)
		}
	}
}

func (a *App) syncLine(ctx context.Context) error {
	c, err := lineproto.Dial(ctx, a.config.Remote)
	if err != nil {
		return err
	}
	defer c.Close()

	res, err := c.Sync(ctx, a.store)
	if err != nil {
		return err
	}
	a.logger.Info(ctx, "line protocol sync done", "pulled", res.Pulled, "pushed", res.Pushed, "rejected", res.Rejected)
	return nil
}

func (a *App) syncHTTP(ctx context.Context) error {
	res, err := httpsync.NewClient(a.config.SyncURL, a.config.Secret, a.httpClient).Sync(ctx, a.store)
	if err != nil {
		return err
	}
	a.logger.Info(ctx, "http sync done", "pulled", res.Pulled, "pushed_new", res.Pushed.Inserted, "rejected", res.Rejected)
	return nil
}

func (a *App) syncGRPC(ctx context.Context) error {
	c, err := grpcsync.Dial(a.config.GRPCAddr, a.config.Secret)
	if err != nil {
		return err
	}
	defer c.Close()

	res, err := c.Sync(ctx, a.store)
	if err != nil {
		return err
	}
	a.logger.Info(ctx, "grpc sync done", "pulled", res.Pulled, "pushed_new", res.Pushed, "rejected", res.Rejected)
	return nil
}
