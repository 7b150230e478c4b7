package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/poiesic/ragbot/core"
)

// maxBodyBytes bounds how much of a page is read.
const maxBodyBytes = 10 << 20

const userAgent = "ragbot/1.0 (+https://github.com/poiesic/ragbot)"

// FetchURL downloads rawURL and returns its readable text.
// A nil client uses http.DefaultClient.
func FetchURL(ctx context.Context, client *http.Client, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.5")

	logger := slog.Default().With("component", "source")
	logger.Debug("fetching page", "url", u.String())

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch %s: %w: %s", u, ErrUnexpectedStatus, resp.Status)
	}

	text, err := ExtractText(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", u, err)
	}
	if text == "" {
		return "", fmt.Errorf("%w: no text at %s", core.ErrContentUnavailable, u)
	}

	logger.Debug("fetched page", "url", u.String(), "chars", len(text))
	return text, nil
}
