package netlify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeState(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".netlify"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, StateFile), []byte(content), 0o644))
}

func TestReadSiteID(t *testing.T) {
	dir := t.TempDir()

	id, err := ReadSiteID(dir)
	require.NoError(t, err)
	assert.Empty(t, id)

	writeState(t, dir, `{"siteId":"abc-123"}`)
	id, err = ReadSiteID(dir)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)

	writeState(t, dir, `{`)
	_, err = ReadSiteID(dir)
	assert.Error(t, err)
}

func TestSetupContinuousDeployment_AlreadyLinked(t *testing.T) {
	dir := t.TempDir()
	writeState(t, dir, `{"siteId":"abc-123"}`)

	var out bytes.Buffer
	d := &Deployer{Dir: dir, Out: &out, Runner: func(context.Context, string, string, ...string) error {
		t.Fatal("netlify init must not run")
		return nil
	}}

	id, err := d.SetupContinuousDeployment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)
	assert.Contains(t, out.String(), "already been set up")
}

func TestSetupContinuousDeployment_RunsInit(t *testing.T) {
	dir := t.TempDir()

	var ran []string
	d := &Deployer{Dir: dir, Out: &bytes.Buffer{}, Runner: func(_ context.Context, runDir, name string, args ...string) error {
		assert.Equal(t, dir, runDir)
		ran = append(append(ran, name), args...)
		writeState(t, dir, `{"siteId":"new-site"}`)
		return nil
	}}

	id, err := d.SetupContinuousDeployment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new-site", id)
	assert.Equal(t, []string{"netlify", "init"}, ran)
}

func TestSetupContinuousDeployment_NotLinked(t *testing.T) {
	d := &Deployer{Dir: t.TempDir(), Out: &bytes.Buffer{}, Runner: func(context.Context, string, string, ...string) error {
		return nil
	}}

	_, err := d.SetupContinuousDeployment(context.Background())
	assert.ErrorIs(t, err, ErrNotLinked)
}

func TestAddDomainToSite(t *testing.T) {
	site := Site{ID: "abc", Name: "wolf", CustomDomain: "old.com"}
	patches := 0

	mux := http.NewServeMux()
	mux.HandleFunc("GET /sites/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.Equal(t, "abc", r.PathValue("id"))
		_ = json.NewEncoder(w).Encode(site)
	})
	mux.HandleFunc("PATCH /sites/{id}", func(w http.ResponseWriter, r *http.Request) {
		patches++
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"custom_domain": "example.com", "ssl": true}, body)
		site.CustomDomain = "example.com"
		site.SSL = true
		_ = json.NewEncoder(w).Encode(site)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, AccessToken: "token", HTTPClient: srv.Client()})
	require.NoError(t, err)
	ctx := context.Background()

	updated, err := c.AddDomainToSite(ctx, "abc", "example.com")
	require.NoError(t, err)
	assert.Equal(t, "example.com", updated.CustomDomain)
	assert.True(t, updated.SSL)

	_, err = c.AddDomainToSite(ctx, "abc", "example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, patches)
}

func TestLoadBalancerTarget(t *testing.T) {
	assert.Equal(t, "wolf.netlify.app", (&Site{Name: "wolf"}).LoadBalancerTarget())
	assert.Equal(t, "wolf-x.netlify.app", (&Site{Name: "wolf", DefaultDomain: "wolf-x.netlify.app"}).LoadBalancerTarget())
}
