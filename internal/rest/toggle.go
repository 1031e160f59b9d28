package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Guyuepp/Go-Like-Toggle/domain"
	"github.com/Guyuepp/Go-Like-Toggle/internal/rest/response"
)

// ClientConfig configures the toggle client
type ClientConfig struct {
	BaseURL       string        // Scheme and host of the server, e.g. http://localhost:5000
	Path          string        // Path template with an {id} placeholder
	Timeout       time.Duration // Zero means no timeout
	SessionCookie string        // Raw Cookie header value, e.g. "session=abc"
}

// ToggleClient sends the like toggle request
type ToggleClient struct {
	client   *resty.Client
	path     string
	validate *validator.Validate
}

var _ domain.ToggleClient = (*ToggleClient)(nil)

// NewToggleClient will create a client for the toggle endpoint.
// Retries stay disabled: replaying a toggle flips the state twice.
func NewToggleClient(cfg ClientConfig) *ToggleClient {
	path := cfg.Path
	if path == "" {
		path = domain.DefaultTogglePath
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("X-Requested-With", "XMLHttpRequest")
	if cfg.SessionCookie != "" {
		client.SetHeader("Cookie", cfg.SessionCookie)
	}

	return &ToggleClient{
		client:   client,
		path:     path,
		validate: validator.New(),
	}
}

// SetCookies attaches session cookies, e.g. the ones of a browser tab
func (t *ToggleClient) SetCookies(cookies []*http.Cookie) {
	t.client.SetCookies(cookies)
}

// Toggle will POST to the toggle endpoint of the given id and decode {"liked": bool}
func (t *ToggleClient) Toggle(ctx context.Context, id string) (domain.ToggleResponse, error) {
	if strings.TrimSpace(id) == "" {
		return domain.ToggleResponse{}, domain.ErrBadParamInput
	}

	resp, err := t.client.R().
		SetContext(ctx).
		SetPathParam(domain.TogglePathParam, id).
		Post(t.path)
	if err != nil {
		return domain.ToggleResponse{}, errors.Wrapf(domain.ErrTransport, "toggle %s: %v", id, err)
	}

	logrus.Debugf("toggle %s: %s %s -> %d", id, resp.Request.Method, resp.Request.URL, resp.StatusCode())

	if !resp.IsSuccess() {
		return domain.ToggleResponse{}, errors.Wrapf(domain.ErrUnexpectedStatus, "toggle %s: status %d", id, resp.StatusCode())
	}

	var body response.Toggle
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return domain.ToggleResponse{}, errors.Wrapf(domain.ErrMalformedResponse, "toggle %s: %v", id, err)
	}
	if err := t.validate.Struct(&body); err != nil {
		return domain.ToggleResponse{}, errors.Wrapf(domain.ErrMalformedResponse, "toggle %s: %v", id, err)
	}

	return body.ToDomain(), nil
}
