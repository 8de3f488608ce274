package cli

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/wlog/internal/client/config"
	"github.com/dmitrijs2005/wlog/internal/common"
	"github.com/dmitrijs2005/wlog/internal/httpsync"
	"github.com/dmitrijs2005/wlog/internal/lineproto"
	"github.com/dmitrijs2005/wlog/internal/logging"
	"github.com/dmitrijs2005/wlog/internal/models"
	"github.com/dmitrijs2005/wlog/internal/services"
	"github.com/dmitrijs2005/wlog/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 15, 9, 0, 0, 0, time.Local)
}

// run executes one invocation against the log at dsn and returns stdout.
func run(t *testing.T, c *config.Config) string {
	t.Helper()
	var out bytes.Buffer
	app, err := NewApp(context.Background(), c, logging.Discard(), WithOutput(&out), WithClock(fixedClock))
	require.NoError(t, err)
	require.NoError(t, app.Run(context.Background()))
	return out.String()
}

func localDSN(t *testing.T) string {
	return filepath.Join(t.TempDir(), "nested", "wlog.sqlite")
}

func TestRun_LogAndPrintToday(t *testing.T) {
	dsn := localDSN(t)

	out := run(t, &config.Config{DatabaseDSN: dsn, Message: "  wrote the parser  "})
	assert.Equal(t, "2024-03-15 - wrote the parser\n", out)

	out = run(t, &config.Config{DatabaseDSN: dsn, Message: "reviewed"})
	assert.Equal(t, "2024-03-15 - wrote the parser\n2024-03-15 - reviewed\n", out)
}

func TestRun_LogIntoDate(t *testing.T) {
	dsn := localDSN(t)

	out := run(t, &config.Config{DatabaseDSN: dsn, Message: "backfilled", Date: "2024-03-01"})
	assert.Equal(t, "2024-03-01 - backfilled\n", out)

	// today is empty
	assert.Equal(t, "", run(t, &config.Config{DatabaseDSN: dsn}))
}

func TestRun_BadDate(t *testing.T) {
	app, err := NewApp(context.Background(), &config.Config{DatabaseDSN: localDSN(t), Message: "x", Date: "yesterday"},
		logging.Discard(), WithOutput(&bytes.Buffer{}))
	require.NoError(t, err)
	require.ErrorIs(t, app.Run(context.Background()), common.ErrMalformedEntry)
}

func TestRun_Search(t *testing.T) {
	dsn := localDSN(t)
	run(t, &config.Config{DatabaseDSN: dsn, Message: "deploy api", Date: "2024-01-01"})
	run(t, &config.Config{DatabaseDSN: dsn, Message: "lunch"})
	run(t, &config.Config{DatabaseDSN: dsn, Message: "deploy web"})

	out := run(t, &config.Config{DatabaseDSN: dsn, Search: "deploy"})
	assert.Equal(t, "2024-01-01 - deploy api\n2024-03-15 - deploy web\n", out)
}

func newRemote(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "remote.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRun_SyncsOverLineProtocol(t *testing.T) {
	ctx := context.Background()
	remote := newRemote(t)
	theirs := models.NewEntryOn("2024-03-15", "from the other laptop")
	require.NoError(t, remote.Insert(ctx, &theirs))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	sctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = lineproto.NewServer("", logging.Discard(), services.NewEntryService(remote, nil), 0).Serve(sctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})

	out := run(t, &config.Config{DatabaseDSN: localDSN(t), Remote: ln.Addr().String(), Message: "mine"})
	assert.Equal(t, "2024-03-15 - from the other laptop\n2024-03-15 - mine\n", out)

	// the local "mine" was logged after the sync, so only the pulled entry is there
	all, err := remote.SelectAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRun_SyncsOverHTTP(t *testing.T) {
	ctx := context.Background()
	remote := newRemote(t)
	theirs := models.NewEntryOn("2024-03-15", "remote note")
	require.NoError(t, remote.Insert(ctx, &theirs))

	ts := httptest.NewServer(httpsync.NewServer("", logging.Discard(), services.NewEntryService(remote, nil), "k", time.Second).Handler())
	defer ts.Close()

	dsn := localDSN(t)
	run(t, &config.Config{DatabaseDSN: dsn, Message: "local note"})

	out := run(t, &config.Config{DatabaseDSN: dsn, SyncURL: ts.URL + "/", Secret: "k"})
	assert.Equal(t, "2024-03-15 - local note\n2024-03-15 - remote note\n", out)

	all, err := remote.SelectAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRun_SyncFailureIsNotFatal(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	out := run(t, &config.Config{
		DatabaseDSN: localDSN(t),
		Remote:      addr,
		SyncURL:     "http://" + addr + "/",
		SyncTimeout: time.Second,
		Message:     "offline work",
	})
	assert.Equal(t, "2024-03-15 - offline work\n", out)
}

func TestRun_Backup(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	s3 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.Method+" "+r.URL.Path)
		mu.Unlock()
	}))
	defer s3.Close()

	run(t, &config.Config{
		DatabaseDSN:    localDSN(t),
		Message:        "keep me",
		Backup:         true,
		S3AccessKey:    "a",
		S3SecretKey:    "b",
		S3Bucket:       "bk",
		S3Region:       "us-east-1",
		S3BaseEndpoint: s3.URL,
	})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, paths, 1)
	assert.Regexp(t, `^PUT /bk/wlog/\d{4}/\d{2}/\d{2}/[0-9a-f-]+\.json$`, paths[0])
}

func TestNewApp_StoreUnavailable(t *testing.T) {
	_, err := NewApp(context.Background(), &config.Config{DatabaseDSN: "postgres://nobody@127.0.0.1:1/wlog?connect_timeout=1"}, logging.Discard())
	require.ErrorIs(t, err, common.ErrStoreUnavailable)
}
