package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchwolf/launchwolf/pkg/engine"
)

func newTestClient(t *testing.T, srv *httptest.Server, auth AuthMethod) *Client {
	t.Helper()
	c, err := NewClient(Config{
		Provider:   "example.net",
		BaseURL:    srv.URL + "/v1/",
		AuthMethod: auth,
		Token:      "secret",
		Username:   "pub",
		Password:   "priv",
		UserAgent:  "launchwolf/test",
	}, srv.Client())
	require.NoError(t, err)
	return c
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid apikey", Config{Provider: "p", BaseURL: "https://api.example.com", AuthMethod: AuthMethodAPIKey, Token: "t"}, false},
		{"valid none", Config{Provider: "p", BaseURL: "https://api.example.com"}, false},
		{"missing provider", Config{BaseURL: "https://api.example.com"}, true},
		{"relative url", Config{Provider: "p", BaseURL: "/v5"}, true},
		{"bearer without token", Config{Provider: "p", BaseURL: "https://api.example.com", AuthMethod: AuthMethodBearer}, true},
		{"basic without password", Config{Provider: "p", BaseURL: "https://api.example.com", AuthMethod: AuthMethodBasic, Username: "u"}, true},
		{"unknown auth", Config{Provider: "p", BaseURL: "https://api.example.com", AuthMethod: "oauth"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClient_SendsJSONWithAuth(t *testing.T) {
	tests := []struct {
		auth AuthMethod
		want func(t *testing.T, r *http.Request)
	}{
		{AuthMethodAPIKey, func(t *testing.T, r *http.Request) {
			assert.Equal(t, "Apikey secret", r.Header.Get("Authorization"))
		}},
		{AuthMethodBearer, func(t *testing.T, r *http.Request) {
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		}},
		{AuthMethodBasic, func(t *testing.T, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "pub", user)
			assert.Equal(t, "priv", pass)
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.auth), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.want(t, r)
				assert.Equal(t, "/v1/things", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.Equal(t, "launchwolf/test", r.Header.Get("User-Agent"))
				assert.Equal(t, "1", r.Header.Get("Dry-Run"))

				var in map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
				assert.Equal(t, "wolf", in["name"])

				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(`{"id":"42"}`))
			}))
			defer srv.Close()

			c := newTestClient(t, srv, tt.auth)
			var out struct{ ID string }
			resp, err := c.Do(context.Background(), Request{
				Operation: "create_thing",
				Method:    http.MethodPost,
				Path:      "/things",
				Header:    http.Header{"Dry-Run": []string{"1"}},
				Body:      map[string]string{"name": "wolf"},
			}, &out)

			require.NoError(t, err)
			assert.Equal(t, http.StatusCreated, resp.StatusCode)
			assert.Equal(t, "42", out.ID)
		})
	}
}

func TestClient_QueryParameters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "example.com", r.URL.Query().Get("name"))
		assert.Equal(t, "EUR", r.URL.Query().Get("currency"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, AuthMethodNone)
	var out []any
	err := c.Get(context.Background(), "check", "check", map[string][]string{
		"name":     {"example.com"},
		"currency": {"EUR"},
	}, &out)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestClient_ErrorResponsesAreClassified(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		class   engine.ErrorClass
		message string
	}{
		{http.StatusNotFound, `{"message":"Domain not found"}`, engine.ErrorClassPermanent, "Domain not found"},
		{http.StatusTooManyRequests, `{"ErrorMessage":"slow down"}`, engine.ErrorClassThrottled, "slow down"},
		{http.StatusBadGateway, `upstream failed`, engine.ErrorClassTransient, "upstream failed"},
		{http.StatusConflict, `{"cause":"already exists"}`, engine.ErrorClassConflict, "already exists"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Request-Id", "req-1")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newTestClient(t, srv, AuthMethodNone)
			err := c.Get(context.Background(), "lookup", "/things/1", nil, nil)
			require.Error(t, err)

			var engErr *engine.EngineError
			require.True(t, errors.As(err, &engErr))
			assert.Equal(t, tt.class, engErr.Class)
			assert.Equal(t, "example.net", engErr.Provider)
			assert.Equal(t, engine.CodeForHTTPStatus(tt.status), engErr.Code)
			assert.Equal(t, tt.status, engErr.Details["status"])

			apiErr, ok := AsAPIError(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message())
			assert.Equal(t, "req-1", apiErr.Header.Get("X-Request-Id"))
			assert.True(t, IsStatus(err, tt.status))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestClient_TransportFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	c := newTestClient(t, srv, AuthMethodNone)
	srv.Close()

	err := c.Get(context.Background(), "lookup", "/things", nil, nil)
	require.Error(t, err)
	assert.True(t, engine.IsTransient(err))
	_, ok := AsAPIError(err)
	assert.False(t, ok)
}

func TestClient_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()
	c := newTestClient(t, srv, AuthMethodNone)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Get(ctx, "lookup", "/things", nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
