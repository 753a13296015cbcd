// Package rehost works around transport-side fetch restrictions by copying
// oversized upstream media to an intermediate file host, and shortens
// unwieldy button URLs. Both operations are best-effort: callers fall back
// to the original URL on any failure.
package rehost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// maxRetries bounds retry attempts for retryable failures
	// (timeouts and 5xx responses); delays grow linearly.
	maxRetries = 2

	downloadTimeout = 45 * time.Second
	maxFilenameLen  = 100

	formFieldFiles = "files[]"
)

var (
	errUploadRejected = errors.New("rehost upload rejected")
	errEmptyURL       = errors.New("empty media url")

	retryBaseDelay = 2 * time.Second
)

// statusError marks a non-2xx upstream response; 5xx variants are
// retryable.
type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.status)
}

func retryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var se *statusError
	if errors.As(err, &se) {
		return se.status >= http.StatusInternalServerError
	}

	return false
}

// withRetry runs fn up to maxRetries+1 times, sleeping a linearly growing
// delay between attempts. Non-retryable errors are returned immediately.
func withRetry(ctx context.Context, fn func() error) error {
	var err error

	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !retryable(err) || attempt >= maxRetries {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * retryBaseDelay):
		}
	}
}

// uploadResponse is the uguu-style JSON reply.
type uploadResponse struct {
	Success bool `json:"success"`
	Files   []struct {
		URL      string `json:"url"`
		Filename string `json:"filename"`
		Size     int64  `json:"size"`
	} `json:"files"`
}

// UploaderConfig configures an Uploader.
type UploaderConfig struct {
	Enabled  bool
	Endpoint string
	Timeout  time.Duration
	MaxBytes int64
	RPS      float64
}

// Uploader copies media from an origin URL to the configured file host.
// Sequential uploads belonging to one descriptor are paced through a shared
// rate limiter to avoid bursting the host.
type Uploader struct {
	cfg     UploaderConfig
	client  *http.Client
	limiter *rate.Limiter
	logger  *zerolog.Logger
}

func NewUploader(cfg UploaderConfig, logger *zerolog.Logger) *Uploader {
	rps := cfg.RPS
	if rps <= 0 {
		rps = 1
	}

	return &Uploader{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logger,
	}
}

// Enabled reports whether re-hosting is configured on.
func (u *Uploader) Enabled() bool {
	return u.cfg.Enabled
}

// TooLarge reports whether a media of the given size exceeds what the file
// host accepts. Unknown sizes (<= 0) are not too large.
func (u *Uploader) TooLarge(size int64) bool {
	return size > 0 && u.cfg.MaxBytes > 0 && size > u.cfg.MaxBytes
}

// Rehost downloads the media at originalURL and uploads it to the file
// host, returning the re-hosted URL. filenameHint seeds a readable upload
// filename; a short random suffix keeps names unique.
func (u *Uploader) Rehost(ctx context.Context, originalURL, filenameHint string) (string, error) {
	if originalURL == "" {
		return "", errEmptyURL
	}

	if err := u.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rehost pacing: %w", err)
	}

	filename := buildFilename(filenameHint, originalURL)

	var hosted string

	err := withRetry(ctx, func() error {
		var attemptErr error

		hosted, attemptErr = u.uploadOnce(ctx, originalURL, filename)

		return attemptErr
	})
	if err != nil {
		return "", err
	}

	u.logger.Info().Str("original_url", originalURL).Str("hosted_url", hosted).Msg("media re-hosted")

	return hosted, nil
}

func (u *Uploader) uploadOnce(ctx context.Context, originalURL, filename string) (string, error) {
	dlCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(dlCtx, http.MethodGet, originalURL, nil)
	if err != nil {
		return "", fmt.Errorf("create download request: %w", err)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download media: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", &statusError{status: resp.StatusCode}
	}

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		part, formErr := form.CreateFormFile(formFieldFiles, filename)
		if formErr == nil {
			_, formErr = io.Copy(part, resp.Body)
		}

		if formErr == nil {
			formErr = form.Close()
		}

		_ = pw.CloseWithError(formErr)
	}()

	upReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.cfg.Endpoint, pr)
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}

	upReq.Header.Set("Content-Type", form.FormDataContentType())

	upResp, err := u.client.Do(upReq)
	if err != nil {
		return "", fmt.Errorf("upload media: %w", err)
	}

	defer func() {
		_ = upResp.Body.Close()
	}()

	if upResp.StatusCode != http.StatusOK {
		return "", &statusError{status: upResp.StatusCode}
	}

	var parsed uploadResponse
	if err := json.NewDecoder(upResp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}

	if !parsed.Success || len(parsed.Files) == 0 || parsed.Files[0].URL == "" {
		return "", errUploadRejected
	}

	return parsed.Files[0].URL, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

func buildFilename(hint, mediaURL string) string {
	base := hint
	if base == "" {
		base = "media"
	}

	base = unsafeFilenameChars.ReplaceAllString(base, "_")

	name := fmt.Sprintf("%s_%s%s", base, uuid.NewString()[:8], fileExtension(mediaURL))
	if len(name) > maxFilenameLen {
		name = name[len(name)-maxFilenameLen:]
	}

	return name
}

// fileExtension guesses an extension from the URL path, falling back on
// URL hints the way downloader CDNs encode them.
func fileExtension(mediaURL string) string {
	parsed, err := url.Parse(mediaURL)
	if err != nil {
		return ".tmp"
	}

	if ext := path.Ext(parsed.Path); ext != "" {
		return ext
	}

	switch {
	case strings.Contains(mediaURL, "photomode"):
		return ".jpg"
	case strings.Contains(mediaURL, "video"), strings.Contains(mediaURL, "mp4"):
		return ".mp4"
	default:
		return ".tmp"
	}
}
