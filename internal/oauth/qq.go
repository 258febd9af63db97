// Package oauth talks to the QQ Connect OAuth2 endpoints. QQ still answers
// token requests with query-string bodies and openid requests with a JSONP
// wrapper, so both responses need hand parsing.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	authorizeURL = "https://graph.qq.com/oauth2.0/authorize"
	tokenURL     = "https://graph.qq.com/oauth2.0/token"
	openIDURL    = "https://graph.qq.com/oauth2.0/me"
)

// ErrUpstream reports any failure of the QQ API; handlers map it to 503.
var ErrUpstream = errors.New("qq api unavailable")

type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type QQClient struct {
	appID       string
	appKey      string
	redirectURL string
	defaultNext string

	// Overridable in tests.
	HTTPClient Doer
}

func NewQQClient(appID, appKey, redirectURL, defaultNext string) *QQClient {
	if defaultNext == "" {
		defaultNext = "/"
	}
	return &QQClient{
		appID:       appID,
		appKey:      appKey,
		redirectURL: redirectURL,
		defaultNext: defaultNext,
		HTTPClient:  http.DefaultClient,
	}
}

// AuthorizationURL builds the login URL the frontend redirects the user to.
// state carries the in-app page to land on after the round trip.
func (c *QQClient) AuthorizationURL(state string) string {
	if state == "" {
		state = c.defaultNext
	}
	params := url.Values{
		"response_type": {"code"},
		"client_id":     {c.appID},
		"redirect_uri":  {c.redirectURL},
		"state":         {state},
		"scope":         {"get_user_info"},
	}
	return authorizeURL + "?" + params.Encode()
}

// GetAccessToken exchanges the authorization code for a QQ access token.
func (c *QQClient) GetAccessToken(ctx context.Context, code string) (string, error) {
	params := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {c.appID},
		"client_secret": {c.appKey},
		"code":          {code},
		"redirect_uri":  {c.redirectURL},
	}

	body, err := c.get(ctx, tokenURL+"?"+params.Encode())
	if err != nil {
		return "", err
	}

	values, err := url.ParseQuery(body)
	if err != nil {
		return "", fmt.Errorf("%w: parse token response", ErrUpstream)
	}
	accessToken := values.Get("access_token")
	if accessToken == "" {
		return "", fmt.Errorf("%w: no access_token in response", ErrUpstream)
	}
	return accessToken, nil
}

// GetOpenID resolves the access token to the user's openid. The endpoint
// replies with `callback( {...} );`.
func (c *QQClient) GetOpenID(ctx context.Context, accessToken string) (string, error) {
	body, err := c.get(ctx, openIDURL+"?access_token="+url.QueryEscape(accessToken))
	if err != nil {
		return "", err
	}

	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("%w: malformed openid response", ErrUpstream)
	}

	var payload struct {
		ClientID string `json:"client_id"`
		OpenID   string `json:"openid"`
	}
	if err := json.Unmarshal([]byte(body[start:end+1]), &payload); err != nil {
		return "", fmt.Errorf("%w: decode openid response", ErrUpstream)
	}
	if payload.OpenID == "" {
		return "", fmt.Errorf("%w: no openid in response", ErrUpstream)
	}
	return payload.OpenID, nil
}

func (c *QQClient) get(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return string(body), nil
}
