// Package httpx provides the HTTP client shared by the remote services
// bookops talks to: the approved book list, the legacy content archive
// and the legacy CMS.
package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/openstax/bookops/pkg/errors"
	"github.com/openstax/bookops/pkg/logging"
	"github.com/rs/zerolog"
)

// Defaults for NewClient.
const (
	DefaultRetryMax = 3
	DefaultTimeout  = 30 * time.Second
)

// NewClient returns an *http.Client that retries connection errors and
// 5xx responses, logging through the component logger.
func NewClient(component string) *http.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = DefaultRetryMax
	c.RetryWaitMin = 200 * time.Millisecond
	c.RetryWaitMax = 2 * time.Second
	c.HTTPClient.Timeout = DefaultTimeout
	c.Logger = leveledLogger{logging.GetLogger(component)}
	return c.StandardClient()
}

// GetJSON fetches url with query parameters and decodes the JSON body into
// v. Non-2xx responses are errors.
func GetJSON(ctx context.Context, client *http.Client, rawURL string, query url.Values, v interface{}) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "invalid URL %q", rawURL)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	resp, err := Get(ctx, client, u.String())
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrapf(err, errors.ErrRemoteRequest, "cannot decode response from %s", u.Redacted())
	}
	return nil
}

// Get issues a GET request and returns the response when its status is
// 2xx. The caller closes the body.
func Get(ctx context.Context, client *http.Client, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid URL %q", rawURL)
	}
	return Do(client, req)
}

// Do sends req and turns transport failures and non-2xx statuses into
// ErrRemoteRequest errors. The caller closes the body of a returned
// response.
func Do(client *http.Client, req *http.Request) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRemoteRequest, "%s %s failed", req.Method, req.URL.Redacted())
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return nil, errors.Newf(errors.ErrRemoteRequest, "%s %s: %s", req.Method, req.URL.Redacted(), resp.Status).
			WithDetail("status", resp.StatusCode).
			WithDetail("body", string(body))
	}
	return resp, nil
}

// leveledLogger adapts zerolog to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger zerolog.Logger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.emit(l.logger.Error(), msg, kv) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.emit(l.logger.Debug(), msg, kv) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.emit(l.logger.Trace(), msg, kv) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.emit(l.logger.Warn(), msg, kv) }

func (l leveledLogger) emit(ev *zerolog.Event, msg string, kv []interface{}) {
	for i := 0; i+1 < len(kv); i += 2 {
		ev = ev.Interface(fmt.Sprint(kv[i]), kv[i+1])
	}
	ev.Msg(msg)
}
