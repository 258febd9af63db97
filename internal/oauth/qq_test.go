package oauth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

type fakeHTTPClient struct {
	resp     *http.Response
	err      error
	requests []*http.Request
}

func (f *fakeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func stringResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func newTestClient(resp *http.Response, err error) (*QQClient, *fakeHTTPClient) {
	c := NewQQClient("appid", "appkey", "https://mall.example.com/oauth_callback", "/")
	fake := &fakeHTTPClient{resp: resp, err: err}
	c.HTTPClient = fake
	return c, fake
}

func TestAuthorizationURL(t *testing.T) {
	c, _ := newTestClient(nil, nil)

	raw := c.AuthorizationURL("/cart")
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := parsed.Query()
	if q.Get("client_id") != "appid" || q.Get("response_type") != "code" {
		t.Fatalf("unexpected query: %v", q)
	}
	if q.Get("state") != "/cart" {
		t.Fatalf("expected state /cart, got %q", q.Get("state"))
	}

	raw = c.AuthorizationURL("")
	parsed, _ = url.Parse(raw)
	if parsed.Query().Get("state") != "/" {
		t.Fatalf("expected default state, got %q", parsed.Query().Get("state"))
	}
}

func TestGetAccessToken(t *testing.T) {
	c, fake := newTestClient(stringResponse(http.StatusOK, "access_token=ABC123&expires_in=7776000&refresh_token=XYZ"), nil)

	tok, err := c.GetAccessToken(context.Background(), "thecode")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "ABC123" {
		t.Fatalf("expected ABC123, got %q", tok)
	}
	if len(fake.requests) != 1 {
		t.Fatalf("expected one request, got %d", len(fake.requests))
	}
	q := fake.requests[0].URL.Query()
	if q.Get("code") != "thecode" || q.Get("grant_type") != "authorization_code" {
		t.Fatalf("unexpected request query: %v", q)
	}
}

func TestGetAccessTokenUpstreamFailure(t *testing.T) {
	c, _ := newTestClient(nil, errors.New("connection refused"))

	if _, err := c.GetAccessToken(context.Background(), "code"); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}

	c, _ = newTestClient(stringResponse(http.StatusOK, "error=100019&error_description=code+reused"), nil)
	if _, err := c.GetAccessToken(context.Background(), "code"); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream for missing token, got %v", err)
	}
}

func TestGetOpenID(t *testing.T) {
	body := `callback( {"client_id":"appid","openid":"OPENID42"} );`
	c, _ := newTestClient(stringResponse(http.StatusOK, body), nil)

	openid, err := c.GetOpenID(context.Background(), "ABC123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if openid != "OPENID42" {
		t.Fatalf("expected OPENID42, got %q", openid)
	}
}

func TestGetOpenIDMalformedBody(t *testing.T) {
	c, _ := newTestClient(stringResponse(http.StatusOK, "not jsonp at all"), nil)

	if _, err := c.GetOpenID(context.Background(), "ABC123"); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
