package backup

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/dmitrijs2005/wlog/internal/codec"
	"github.com/dmitrijs2005/wlog/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clock() time.Time {
	return time.Date(2024, 5, 7, 12, 0, 0, 0, time.UTC)
}

func TestStorageKey(t *testing.T) {
	key := StorageKey(clock())
	assert.Regexp(t, regexp.MustCompile(`^wlog/2024/05/07/[0-9a-f-]{36}\.json$`), key)
	assert.NotEqual(t, key, StorageKey(clock()))
}

type captured struct {
	mu     sync.Mutex
	method string
	path   string
	ctype  string
	body   string
}

func TestUpload_PutsSnapshot(t *testing.T) {
	var got captured
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got.mu.Lock()
		got.method, got.path, got.ctype, got.body = r.Method, r.URL.Path, r.Header.Get("Content-Type"), string(b)
		got.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	u := NewUploader(Settings{
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		Bucket:       "logs",
		Region:       "us-east-1",
		BaseEndpoint: ts.URL,
	}, ts.Client(), clock)

	es := []models.Entry{models.NewEntryOn("2024-05-07", "backed up")}
	key, err := u.Upload(context.Background(), es)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "wlog/2024/05/07/"))

	got.mu.Lock()
	defer got.mu.Unlock()
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/logs/"+key, got.path)
	assert.Equal(t, "application/json", got.ctype)
	assert.Equal(t, string(codec.EncodeEntries(es)), got.body)
}

func TestUpload_ServerRejects(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "AccessDenied", http.StatusForbidden)
	}))
	defer ts.Close()

	u := NewUploader(Settings{Bucket: "logs", Region: "us-east-1", AccessKey: "a", SecretKey: "b", BaseEndpoint: ts.URL}, nil, clock)
	_, err := u.Upload(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "AccessDenied")
}

func TestUpload_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	boom := errors.New("no config")
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-west-1", lo.Region)
		assert.NotNil(t, lo.Credentials)
		return aws.Config{}, boom
	}

	u := NewUploader(Settings{Bucket: "logs", Region: "eu-west-1"}, nil, clock)
	_, err := u.Upload(context.Background(), nil)
	require.ErrorIs(t, err, boom)
}
