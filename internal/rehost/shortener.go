package rehost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const maxShortenedBody = 2048

var errShortenRejected = errors.New("shortener returned unusable body")

// ShortenerConfig configures a Shortener.
type ShortenerConfig struct {
	Enabled  bool
	Endpoint string
	Timeout  time.Duration
}

// Shortener rewrites long media URLs through a tinyurl-style GET API so
// they fit comfortably in button payloads. Failures fall back to the
// original URL at the call site, same policy as re-hosting.
type Shortener struct {
	cfg    ShortenerConfig
	client *http.Client
	logger *zerolog.Logger
}

func NewShortener(cfg ShortenerConfig, logger *zerolog.Logger) *Shortener {
	return &Shortener{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (s *Shortener) Enabled() bool {
	return s.cfg.Enabled
}

// Shorten returns the shortened form of longURL.
func (s *Shortener) Shorten(ctx context.Context, longURL string) (string, error) {
	if longURL == "" {
		return "", errEmptyURL
	}

	endpoint := fmt.Sprintf("%s?url=%s", s.cfg.Endpoint, url.QueryEscape(longURL))

	var short string

	err := withRetry(ctx, func() error {
		var attemptErr error

		short, attemptErr = s.shortenOnce(ctx, endpoint)

		return attemptErr
	})
	if err != nil {
		return "", err
	}

	return short, nil
}

func (s *Shortener) shortenOnce(ctx context.Context, endpoint string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create shorten request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call shortener: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", &statusError{status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxShortenedBody))
	if err != nil {
		return "", fmt.Errorf("read shortener response: %w", err)
	}

	short := strings.TrimSpace(string(body))
	if !strings.HasPrefix(short, "http") {
		return "", errShortenRejected
	}

	return short, nil
}
