package oauthproxy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"med-alert/internal/platform/httpclient"
	"med-alert/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("auth proxy not configured")
	ErrUnauthorized  = errors.New("auth proxy unauthorized")
	ErrUpstream      = errors.New("auth proxy upstream error")
)

// Config del verificador contra el servicio de identidad externo.
// BaseURL y APIKey normalmente vienen de env vars en main.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Verifier implementa auth.AuthVerifier delegando la verificación del
// token al servicio de identidad. Este servicio nunca parsea tokens por
// su cuenta: la autenticación es un colaborador externo.
type Verifier struct {
	client *httpclient.Client
	apiKey string
}

func NewVerifier(cfg Config) (*Verifier, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	key := strings.TrimSpace(cfg.APIKey)
	if base == "" || key == "" {
		return nil, ErrNotConfigured
	}

	c, err := httpclient.NewWithBaseURL(base, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &Verifier{client: c, apiKey: key}, nil
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrUnauthorized
	}

	var out struct {
		UserID   string `json:"user_id"`
		Email    string `json:"email"`
		TenantID string `json:"tenant_id"`
	}

	err := v.client.DoJSON(ctx, "POST", "/v1/tokens/verify",
		map[string]string{
			"X-Api-Key":     v.apiKey,
			"Authorization": "Bearer " + token,
		},
		map[string]string{"token": token},
		&out,
	)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) && (httpErr.StatusCode == 401 || httpErr.StatusCode == 403) {
			return auth.Claims{}, ErrUnauthorized
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	out.UserID = strings.TrimSpace(out.UserID)
	if out.UserID == "" {
		return auth.Claims{}, fmt.Errorf("%w: response missing user_id", ErrUpstream)
	}

	return auth.Claims{
		UserID:   out.UserID,
		Email:    strings.TrimSpace(out.Email),
		TenantID: strings.TrimSpace(out.TenantID),
	}, nil
}
