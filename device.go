package dailyquote

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/1set/dailyquote/internal/ctxlog"
)

// DefaultDeviceBaseURL is the Quote/0 open API host.
const DefaultDeviceBaseURL = "https://dot.mindreset.tech"

const (
	deviceTextEndpoint  = "/api/open/text"
	deviceImageEndpoint = "/api/open/image"
)

// PushMode selects how a widget is sent to the device.
type PushMode string

const (
	// PushText uses the device's fixed text layout: title, three message lines, signature.
	PushText PushMode = "text"
	// PushImage rasterises the widget with RenderImage and uploads the PNG.
	PushImage PushMode = "image"
)

// DeviceResponse is the JSON envelope returned by the Quote/0 API. Plain-text answers
// leave Code at zero and copy the body into Message.
type DeviceResponse struct {
	Code       int             `json:"code"`
	Message    string          `json:"message"`
	Result     json.RawMessage `json:"result"`
	StatusCode int             `json:"-"`
}

// TextRequest matches the /api/open/text payload.
type TextRequest struct {
	RefreshNow *bool  `json:"refreshNow,omitempty"`
	DeviceID   string `json:"deviceId"`
	Title      string `json:"title,omitempty"`
	Message    string `json:"message,omitempty"`
	Signature  string `json:"signature,omitempty"`
	Icon       string `json:"icon,omitempty"` // base64 40×40 PNG, bottom-left
	Link       string `json:"link,omitempty"`
}

// ImageRequest matches the /api/open/image payload. PNG, when set, takes precedence
// over Image and is base64-encoded before sending.
type ImageRequest struct {
	RefreshNow *bool  `json:"refreshNow,omitempty"`
	DeviceID   string `json:"deviceId"`
	Image      string `json:"image"`
	PNG        []byte `json:"-"`
	Link       string `json:"link,omitempty"`
	Border     int    `json:"border,omitempty"` // 0 white, 1 black
	DitherType string `json:"ditherType,omitempty"`
}

// DeviceClient pushes content to a Quote/0 e-ink display.
type DeviceClient struct {
	baseURL   string
	token     string
	http      *http.Client
	limiter   RateLimiter
	userAgent string
	log       *slog.Logger

	mu            sync.RWMutex
	defaultDevice string
}

// DeviceOption mutates the device client during construction.
type DeviceOption func(*DeviceClient)

// NewDeviceClient builds a client for the Quote/0 API. token is required (dot_app_xxx).
// Calls are limited to one per second, as documented by the service.
func NewDeviceClient(token string, opts ...DeviceOption) (*DeviceClient, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("dailyquote: device API token is required")
	}
	c := &DeviceClient{
		baseURL:   DefaultDeviceBaseURL,
		token:     token,
		http:      &http.Client{Timeout: defaultHTTPTimeout},
		limiter:   NewHostLimiter(time.Second),
		userAgent: buildDefaultUserAgent(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if c.log == nil {
		c.log = ctxlog.Discard()
	}
	c.baseURL = sanitizeURL(c.baseURL, DefaultDeviceBaseURL)
	return c, nil
}

// WithDeviceBaseURL overrides the API host.
func WithDeviceBaseURL(u string) DeviceOption {
	return func(c *DeviceClient) { c.baseURL = u }
}

// WithDeviceHTTPClient installs a custom http.Client.
func WithDeviceHTTPClient(hc *http.Client) DeviceOption {
	return func(c *DeviceClient) { c.http = hc }
}

// WithDeviceRateLimiter replaces the 1 QPS limiter. Pass nil to disable.
func WithDeviceRateLimiter(l RateLimiter) DeviceOption {
	return func(c *DeviceClient) { c.limiter = l }
}

// WithDeviceLogger routes request logging to l.
func WithDeviceLogger(l *slog.Logger) DeviceOption {
	return func(c *DeviceClient) { c.log = l }
}

// WithDefaultDeviceID sets the serial used when a request leaves DeviceID empty.
func WithDefaultDeviceID(id string) DeviceOption {
	return func(c *DeviceClient) { c.SetDefaultDeviceID(id) }
}

// SetDefaultDeviceID updates the default device serial.
func (c *DeviceClient) SetDefaultDeviceID(id string) {
	c.mu.Lock()
	c.defaultDevice = strings.TrimSpace(id)
	c.mu.Unlock()
}

// DefaultDeviceID returns the current default device serial.
func (c *DeviceClient) DefaultDeviceID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defaultDevice
}

func (c *DeviceClient) resolveDeviceID(explicit string) (string, error) {
	if id := strings.TrimSpace(explicit); id != "" {
		return id, nil
	}
	if id := c.DefaultDeviceID(); id != "" {
		return id, nil
	}
	return "", ErrDeviceIDMissing
}

// SendText posts a text layout.
func (c *DeviceClient) SendText(ctx context.Context, payload TextRequest) (*DeviceResponse, error) {
	id, err := c.resolveDeviceID(payload.DeviceID)
	if err != nil {
		return nil, err
	}
	payload.DeviceID = id
	return c.post(ctx, deviceTextEndpoint, payload)
}

// SendImage posts a 296×152 PNG.
func (c *DeviceClient) SendImage(ctx context.Context, payload ImageRequest) (*DeviceResponse, error) {
	id, err := c.resolveDeviceID(payload.DeviceID)
	if err != nil {
		return nil, err
	}
	payload.DeviceID = id
	if len(payload.PNG) > 0 {
		payload.Image = base64.StdEncoding.EncodeToString(payload.PNG)
	}
	if strings.TrimSpace(payload.Image) == "" {
		return nil, ErrImagePayloadMissing
	}
	return c.post(ctx, deviceImageEndpoint, payload)
}

// PushWidget sends wg to the default device. Text mode maps header, quote and author to
// title, message and signature; image mode uploads the rendered card.
func (c *DeviceClient) PushWidget(ctx context.Context, wg *Widget, mode PushMode) (*DeviceResponse, error) {
	if wg == nil {
		return nil, errors.New("dailyquote: nil widget")
	}
	switch mode {
	case PushText, "":
		return c.SendText(ctx, widgetText(wg))
	case PushImage:
		var buf bytes.Buffer
		if err := RenderPNG(&buf, wg); err != nil {
			return nil, err
		}
		return c.SendImage(ctx, ImageRequest{RefreshNow: Bool(true), PNG: buf.Bytes()})
	default:
		return nil, fmt.Errorf("dailyquote: unknown push mode %q", mode)
	}
}

func widgetText(wg *Widget) TextRequest {
	req := TextRequest{RefreshNow: Bool(true)}
	texts := wg.Texts()
	if wg.Err != nil || len(texts) < 3 {
		req.Title = headerTitle
		req.Message = strings.Join(texts, " ")
		return req
	}
	req.Title, req.Message, req.Signature = texts[0], texts[1], texts[2]
	return req
}

func (c *DeviceClient) post(ctx context.Context, endpoint string, payload interface{}) (*DeviceResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("dailyquote: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("dailyquote: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	raw, status, err := send(ctx, c.http, c.limiter, c.userAgent, req)
	if err != nil {
		return nil, err
	}
	c.log.Debug("device push", "endpoint", endpoint, "status", status)

	out := &DeviceResponse{StatusCode: status}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		out.Message = strings.TrimSpace(string(raw))
	}
	return out, nil
}
