package network

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"trade-dashboard/src/helpers"
	"trade-dashboard/src/interfaces"
	"trade-dashboard/src/logger"
	"trade-dashboard/src/models"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"golang.org/x/net/publicsuffix"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	maxBodyBytes = 16 << 20

	HeaderCorrelationID = "X-Correlation-ID"
	HeaderSourceAppID   = "X-Source-Application-ID"
)

// -----------------------------------------------------------------------------

// BackendClient talks to the trade backend. One base client is built at
// startup; each workspace derives its own copy with WithCredentials so
// cookies never leak between sessions.
type BackendClient struct {
	Config        *models.MConfig
	ProxyManager  interfaces.IProxyManager
	Client        *http.Client
	Logger        *logger.Logger
	baseURL       *url.URL
	authorization string
}

// -----------------------------------------------------------------------------

func NewBackendClient(cfg *models.MConfig, log *logger.Logger) (*BackendClient, error) {
	base, err := url.Parse(strings.TrimRight(cfg.Backend.BaseURL, "/"))
	if err != nil {
		return nil, errors.WithMessage(err, "invalid backend url")
	}

	c := &BackendClient{
		Config:        cfg,
		ProxyManager:  helpers.NewProxyManager(cfg.Network.Proxies, cfg.Network.UserAgent),
		Logger:        log,
		baseURL:       base,
		authorization: cfg.Backend.Authorization,
	}
	c.Client = c.createClient(nil)
	return c, nil
}

// -----------------------------------------------------------------------------

func (c *BackendClient) createClient(jar http.CookieJar) *http.Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: c.Config.Network.InsecureTLS},
	}

	if c.ProxyManager.HasProxies() {
		// Resolved per request so a rotation applies to every derived client.
		transport.Proxy = func(*http.Request) (*url.URL, error) {
			proxyStr, err := c.ProxyManager.GetCurrentProxy()
			if err != nil || proxyStr == "" {
				return nil, err
			}
			return url.Parse(proxyStr)
		}
	}

	return &http.Client{
		Transport: transport,
		Jar:       jar,
		Timeout:   time.Duration(c.Config.Network.RequestTimeout) * time.Second,
	}
}

// -----------------------------------------------------------------------------

// WithCredentials returns a client that sends the given backend cookies and
// Authorization value. An empty authorization keeps the configured one.
func (c *BackendClient) WithCredentials(cookies []*http.Cookie, authorization string) *BackendClient {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		c.Logger.Warning("Failed to create cookie jar: %v", err)
		jar = nil
	}
	if jar != nil && len(cookies) > 0 {
		jar.SetCookies(c.baseURL, cookies)
	}

	clone := *c
	clone.Client = c.createClient(jar)
	if authorization != "" {
		clone.authorization = authorization
	}
	return &clone
}

// -----------------------------------------------------------------------------

func (c *BackendClient) rotateProxy() {
	if !c.ProxyManager.HasProxies() {
		return
	}
	c.ProxyManager.RotateProxy()
}

// -----------------------------------------------------------------------------

// Send performs one request. There is no retry: the user resubmits.
func (c *BackendClient) Send(ctx context.Context, req models.MRequest) ([]byte, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	target := c.baseURL.String() + req.URL()

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, helpers.NewTransportError("Could not encode the request.", 0, errors.WithMessage(err, "marshal request body"))
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, helpers.NewTransportError("", 0, errors.WithMessage(err, "build request"))
	}
	correlationID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.ProxyManager.GetUserAgent())
	httpReq.Header.Set(HeaderCorrelationID, correlationID)
	if c.Config.Backend.SourceAppID != "" {
		httpReq.Header.Set(HeaderSourceAppID, c.Config.Backend.SourceAppID)
	}
	if c.authorization != "" {
		httpReq.Header.Set("Authorization", c.authorization)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.Client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, helpers.NewTransportError("Request was cancelled.", 0, errors.WithMessage(ctxErr, "request cancelled"))
		}
		c.Logger.Info("Request %s %s failed [%s]: %v", method, req.Path, correlationID, err)
		c.rotateProxy()
		return nil, helpers.NewTransportError("", 0, errors.WithMessage(err, "backend request failed"))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, helpers.NewTransportError("", resp.StatusCode, errors.WithMessage(err, "read response body"))
	}

	c.Logger.Debug("%s %s -> %d in %v [%s]", method, req.Path, resp.StatusCode, time.Since(start), correlationID)

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, helpers.NewAuthError(errors.Errorf("backend answered 401 for %s", req.Path))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, helpers.NewTransportError(errorMessage(data), resp.StatusCode, errors.Errorf("bad status: %d", resp.StatusCode))
	}

	return data, nil
}

// -----------------------------------------------------------------------------

// errorMessage extracts a human-readable message from an error body, if any.
func errorMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ""
	}
	var eb models.MErrorBody
	if err := json.Unmarshal(trimmed, &eb); err != nil {
		return ""
	}
	if eb.Message != "" {
		return eb.Message
	}
	return eb.Error
}
