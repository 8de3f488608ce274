// Package netx contains small HTTP helpers shared by the sync and backup clients.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// Upload PUTs body to a presigned URL and expects 200 OK.
func Upload(ctx context.Context, client *http.Client, url, contentType string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return StatusError(resp, "upload failed")
	}
	return nil
}

// StatusError builds an error carrying the response status and a bounded
// prefix of its body.
func StatusError(resp *http.Response, what string) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("%s: %s; body: %s", what, resp.Status, string(bytes.TrimSpace(b)))
}
