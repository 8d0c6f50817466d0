package e2etest

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/justinas/nosurf"
	"github.com/myrjola/chartnote/internal/errors"
)

// Client talks JSON to the chartnote API and carries the session and CSRF cookies.
type Client struct {
	client    *http.Client
	url       string
	csrfToken string
}

// NewClient creates a cookie-aware HTTP client for the server at url.
func NewClient(url string) (*Client, error) {
	jar, err := newUnsafeCookieJar()
	if err != nil {
		return nil, errors.Wrap(err, "create unsafe cookie jar")
	}
	return &Client{
		client:    &http.Client{Jar: jar},
		url:       url,
		csrfToken: "",
	}, nil
}

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	timeout := 1 * time.Second
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = http.NewRequestWithContext(
			ctx,
			http.MethodGet,
			c.url+urlPath,
			nil,
		); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = c.client.Do(req); err == nil {
			if resp.StatusCode == http.StatusOK {
				if err = resp.Body.Close(); err != nil {
					return errors.Wrap(err, "close response body")
				}
				return nil
			}
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "context cancelled")
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond) //nolint:mnd // 100ms
		}
	}
}

// Do sends body encoded as JSON, or raw when it is a []byte, and returns the response. The CSRF
// token fetched by Session is attached.
func (c *Client) Do(ctx context.Context, method, urlPath string, body any) (*http.Response, error) {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, errors.Wrap(err, "marshal request body")
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url+urlPath, reader)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req)
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	if c.csrfToken != "" {
		req.Header.Set(nosurf.HeaderName, c.csrfToken)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request", slog.String("uri", req.URL.RequestURI()))
	}
	return resp, nil
}

// DoJSON is Do followed by decoding the response into out when out is not nil. It returns the
// status code.
func (c *Client) DoJSON(ctx context.Context, method, urlPath string, body, out any) (int, error) {
	resp, err := c.Do(ctx, method, urlPath, body)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, errors.Wrap(err, "read response body")
	}
	if out != nil && len(data) > 0 {
		if err = json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, errors.Wrap(err, "decode response body",
				slog.Int("status", resp.StatusCode), slog.String("body", string(data)))
		}
	}
	return resp.StatusCode, nil
}

// Upload posts a multipart form with a single file field.
func (c *Client) Upload(ctx context.Context, urlPath, field, filename string, data []byte) (*http.Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, errors.Wrap(err, "create form file")
	}
	if _, err = part.Write(data); err != nil {
		return nil, errors.Wrap(err, "write form file")
	}
	if err = mw.Close(); err != nil {
		return nil, errors.Wrap(err, "close multipart writer")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+urlPath, &buf)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req)
}

// SessionStatus is the body of GET /api/session.
type SessionStatus struct {
	Authenticated bool   `json:"authenticated"`
	CSRFToken     string `json:"csrfToken"`
}

// Session fetches the session status and remembers the CSRF token.
func (c *Client) Session(ctx context.Context) (SessionStatus, error) {
	var status SessionStatus
	code, err := c.DoJSON(ctx, http.MethodGet, "/api/session", nil, &status)
	if err != nil {
		return status, err
	}
	if code != http.StatusOK {
		return status, errors.New("unexpected status code", slog.Int("status", code))
	}
	c.csrfToken = status.CSRFToken
	return status, nil
}

// Login passes the access code gate.
func (c *Client) Login(ctx context.Context, accessCode string) error {
	if _, err := c.Session(ctx); err != nil {
		return errors.Wrap(err, "fetch session")
	}
	code, err := c.DoJSON(ctx, http.MethodPost, "/api/access", map[string]string{"code": accessCode}, nil)
	if err != nil {
		return errors.Wrap(err, "submit access code")
	}
	if code != http.StatusOK {
		return errors.New("unexpected status code", slog.Int("status", code))
	}
	return nil
}

func (c *Client) Logout(ctx context.Context) error {
	code, err := c.DoJSON(ctx, http.MethodPost, "/api/logout", nil, nil)
	if err != nil {
		return errors.Wrap(err, "logout")
	}
	if code != http.StatusOK {
		return errors.New("unexpected status code", slog.Int("status", code))
	}
	return nil
}
