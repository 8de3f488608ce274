package httpsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/wlog/internal/codec"
	"github.com/dmitrijs2005/wlog/internal/common"
	"github.com/dmitrijs2005/wlog/internal/merge"
	"github.com/dmitrijs2005/wlog/internal/models"
	"github.com/dmitrijs2005/wlog/internal/netx"
)

type LocalStore interface {
	merge.Store
	SelectAll(ctx context.Context) ([]models.Entry, error)
}

type Client struct {
	url    string
	secret string
	http   *http.Client
}

func NewClient(url, secret string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{url: url, secret: secret, http: hc}
}

func (c *Client) do(ctx context.Context, method string, body []byte) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url, r)
	if err != nil {
		return nil, err
	}
	req.Header.Set(common.AuthorizationHeaderName, c.secret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return nil, fmt.Errorf("%s %s: %w", method, c.url, common.ErrUnauthorized)
	}
	return resp, nil
}

// Push sends every entry in es in one request.
func (c *Client) Push(ctx context.Context, es []models.Entry) (PushResult, error) {
	resp, err := c.do(ctx, http.MethodPost, codec.EncodeEntries(es))
	if err != nil {
		return PushResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return PushResult{}, netx.StatusError(resp, "push failed")
	}

	var res PushResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return PushResult{}, fmt.Errorf("push response: %w", err)
	}
	return res, nil
}

// Pull fetches every remote entry. Elements that fail to decode are
// skipped and counted in rejected.
func (c *Client) Pull(ctx context.Context) (es []models.Entry, rejected int, err error) {
	resp, err := c.do(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, netx.StatusError(resp, "pull failed")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	items, err := codec.SplitArray(body)
	if err != nil {
		return nil, 0, err
	}

	es = make([]models.Entry, 0, len(items))
	for _, item := range items {
		e, err := codec.DecodeEntry(string(item))
		if err != nil {
			rejected++
			continue
		}
		es = append(es, e)
	}
	return es, rejected, nil
}

// SyncResult reports both directions of a sync. Rejected counts pulled
// elements that did not decode.
type SyncResult struct {
	Pushed   PushResult
	Pulled   int
	Rejected int
}

// Sync pushes all local entries, then pulls and merges all remote ones.
func (c *Client) Sync(ctx context.Context, local LocalStore) (SyncResult, error) {
	var res SyncResult

	all, err := local.SelectAll(ctx)
	if err != nil {
		return res, err
	}
	if res.Pushed, err = c.Push(ctx, all); err != nil {
		return res, err
	}

	remote, rejected, err := c.Pull(ctx)
	res.Rejected = rejected
	if err != nil {
		return res, err
	}
	res.Pulled, err = merge.MergeAll(ctx, local, remote)
	return res, err
}
