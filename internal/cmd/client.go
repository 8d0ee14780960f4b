package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const probeTimeout = 5 * time.Second

// serverURL defaults to the local server on the configured port.
var serverURL string

// getJSON fetches path from the running server and decodes the body into out.
// Non-2xx responses are decoded too; the status is returned for the caller to
// judge.
func getJSON(ctx context.Context, base, path string, out any) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	target := strings.TrimRight(base, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request %s: %w", target, err)
	}
	defer resp.Body.Close() // nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, err
	}
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s: %w", target, err)
		}
	}
	return resp.StatusCode, nil
}

// resolveServerURL returns --url, or the configured local listener.
func resolveServerURL() (string, error) {
	if strings.TrimSpace(serverURL) != "" {
		return serverURL, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	host := cfg.Server.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d", host, cfg.Server.Port), nil
}
