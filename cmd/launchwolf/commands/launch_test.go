package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchwolf/launchwolf/pkg/config"
	"github.com/launchwolf/launchwolf/pkg/engine"
	"github.com/launchwolf/launchwolf/pkg/policy"
	"github.com/launchwolf/launchwolf/pkg/telemetry"
)

const availableJSON = `{
	"currency": "EUR",
	"products": [
		{"name": "example.com", "process": "create", "status": "available",
		 "prices": [{"duration_unit": "y", "price_after_taxes": 15.5}]}
	]
}`

type fakePrompts struct {
	confirm   bool
	questions []string
}

func (f *fakePrompts) Domain(context.Context) (string, error)      { return "example.com", nil }
func (f *fakePrompts) GandiAPIKey(context.Context) (string, error) { return "gandi-key", nil }
func (f *fakePrompts) Currency(context.Context) (string, error)    { return "EUR", nil }
func (f *fakePrompts) Email(context.Context, string) (string, error) {
	return "hello", nil
}
func (f *fakePrompts) NetlifyAccessToken(context.Context) (string, error) {
	return "netlify-token", nil
}

func (f *fakePrompts) DomainOwner(context.Context) (*config.DomainOwner, error) {
	return &config.DomainOwner{
		FirstName: "Ada", LastName: "Lovelace", StreetAddress: "1 Analytical Way",
		City: "London", Zip: "N1", Phone: "+44.1234", Email: "ada@example.org",
		CountryISO: "GB",
	}, nil
}

func (f *fakePrompts) MailjetAPIKeys(context.Context) (*config.MailjetAPIKeys, error) {
	return &config.MailjetAPIKeys{PublicAPIKey: "pub", PrivateAPIKey: "priv"}, nil
}

func (f *fakePrompts) Confirm(_ context.Context, title, _ string, _ bool) (bool, error) {
	f.questions = append(f.questions, title)
	return f.confirm, nil
}

type testLaunch struct {
	*launcher
	app     *app
	out     *bytes.Buffer
	prompts *fakePrompts
}

// newTestLaunch builds a launcher whose providers all live on mux.
func newTestLaunch(t *testing.T, mux *http.ServeMux, flagArgs ...string) *testLaunch {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	settings := config.DefaultSettings()
	settings.Telemetry.Logging.Level = "error"
	settings.Providers.GandiURL = srv.URL
	settings.Providers.NetlifyURL = srv.URL
	settings.Providers.MailjetURL = srv.URL
	settings.Poll = config.PollSettings{DomainAttempts: 2, DNSAttempts: 2}

	tel, err := telemetry.NewTelemetry(&settings.Telemetry)
	require.NoError(t, err)

	dir := t.TempDir()
	local := config.NewFileStore(filepath.Join(dir, "local.json"))
	global := config.NewFileStore(filepath.Join(dir, "global.json"))

	out := &bytes.Buffer{}
	a := &app{settings: settings, tel: tel, local: local, global: global, out: out}

	schema, err := config.DefaultSchema(nil)
	require.NoError(t, err)
	fs := pflag.NewFlagSet("launch", pflag.ContinueOnError)
	registerConfigFlags(fs, schema)
	require.NoError(t, fs.Parse(flagArgs))

	p := &fakePrompts{confirm: true}
	l, err := newLauncher(a, p, fs, "example.com")
	require.NoError(t, err)
	l.httpClient = srv.Client()
	l.projectDir = dir
	l.runner = func(context.Context, string, string, ...string) error {
		t.Error("netlify CLI must not run for a linked project")
		return nil
	}

	return &testLaunch{launcher: l, app: a, out: out, prompts: p}
}

func (tl *testLaunch) status(t *testing.T, step string) engine.StepStatus {
	t.Helper()
	h, err := tl.tracker.Handle(step)
	require.NoError(t, err)
	return tl.tracker.Step(h).Status
}

func skipAllBut(step string) map[string]bool {
	skip := make(map[string]bool)
	for _, s := range engine.DefaultSteps() {
		if s.Name != step {
			skip[s.Name] = true
		}
	}
	return skip
}

func TestParseSkip(t *testing.T) {
	skip, err := parseSkip([]string{"domain", "Mailing-List", "mailing_list"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{engine.StepDomain: true, engine.StepMailingList: true}, skip)

	_, err = parseSkip([]string{"dns"})
	assert.Error(t, err)
}

func TestLaunch_AllSkipped(t *testing.T) {
	tl := newTestLaunch(t, http.NewServeMux())

	skip, err := parseSkip([]string{"domain", "email", "hosting", "mailing-list"})
	require.NoError(t, err)
	require.NoError(t, tl.run(context.Background(), skip))

	out := tl.out.String()
	assert.Contains(t, out, "Welcome to LaunchWolf!")
	assert.Contains(t, out, "Looks like this is your first run.")
	assert.Contains(t, out, "Skipping Hosting.")
	assert.Contains(t, out, "All done, example.com is launched!")
	for _, s := range engine.DefaultSteps() {
		assert.Equal(t, engine.StepStatusPending, tl.status(t, s.Name))
	}
}

func TestLaunch_DomainAlreadyOwned(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /domain/domains/{fqdn}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "example.com", r.PathValue("fqdn"))
		assert.Equal(t, "Apikey gandi-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"fqdn":"example.com","status":["clientTransferProhibited"]}`))
	})
	tl := newTestLaunch(t, mux)

	require.NoError(t, tl.run(context.Background(), skipAllBut(engine.StepDomain)))

	assert.Contains(t, tl.out.String(), `Seems like you already own "example.com".`)
	assert.Equal(t, engine.StepStatusDone, tl.status(t, engine.StepDomain))

	key, ok := tl.app.global.Get(string(config.KeyGandiAPIKey))
	require.True(t, ok, "prompted API key must be saved globally")
	assert.Equal(t, "gandi-key", key)
	_, ok = tl.app.local.Get(string(config.KeyGandiAPIKey))
	assert.False(t, ok)
}

func TestLaunch_PurchaseDeniedByPriceCap(t *testing.T) {
	orders := 0
	mux := http.NewServeMux()
	mux.HandleFunc("GET /domain/domains/{fqdn}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("GET /domain/check", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(availableJSON))
	})
	mux.HandleFunc("POST /domain/domains", func(w http.ResponseWriter, r *http.Request) {
		orders++
	})
	tl := newTestLaunch(t, mux, "--domainPurchaseMaxPrice", "10")

	err := tl.run(context.Background(), skipAllBut(engine.StepDomain))
	require.Error(t, err)
	assert.ErrorIs(t, err, policy.ErrPurchaseDenied)

	var engErr *engine.EngineError
	require.True(t, errors.As(err, &engErr))
	assert.Equal(t, engine.ErrCodePolicyDenied, engErr.Code)

	assert.Zero(t, orders)
	assert.Empty(t, tl.prompts.questions, "user must not be asked to pay a denied price")
	assert.Equal(t, engine.StepStatusFailed, tl.status(t, engine.StepDomain))
	assert.NotContains(t, tl.out.String(), "All done")
}

func TestLaunch_DryRunPurchase(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /domain/domains/{fqdn}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("GET /domain/check", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "EUR", r.URL.Query().Get("currency"))
		_, _ = w.Write([]byte(availableJSON))
	})
	mux.HandleFunc("POST /domain/domains", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.Header.Get("Dry-Run"))
		var body struct {
			FQDN     string `json:"fqdn"`
			Duration int    `json:"duration"`
			Owner    struct {
				Family string `json:"family"`
			} `json:"owner"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "example.com", body.FQDN)
		assert.Equal(t, 1, body.Duration)
		assert.Equal(t, "Lovelace", body.Owner.Family)
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})
	tl := newTestLaunch(t, mux)
	tl.settings.Gandi.DryRun = true

	require.NoError(t, tl.run(context.Background(), skipAllBut(engine.StepDomain)))

	require.Len(t, tl.prompts.questions, 1)
	assert.Equal(t, `Do you want to purchase domain "example.com" at 15.50EUR total for 1 year?`, tl.prompts.questions[0])
	assert.Contains(t, tl.out.String(), "Dry run: Gandi accepted the purchase request")
	assert.Equal(t, engine.StepStatusDone, tl.status(t, engine.StepDomain))

	_, ok := tl.app.global.Get(string(config.KeyDomainOwner))
	assert.True(t, ok, "owner must be saved after the prompt")
}

func TestLaunch_EmailForward(t *testing.T) {
	var created map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("GET /email/mailboxes/{domain}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("GET /email/forwards/{domain}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("POST /email/forwards/{domain}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "example.com", r.PathValue("domain"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&created))
		w.WriteHeader(http.StatusCreated)
	})
	tl := newTestLaunch(t, mux)

	require.NoError(t, tl.run(context.Background(), skipAllBut(engine.StepEmail)))

	assert.Equal(t, "hello", created["source"])
	assert.Equal(t, []any{"ada@example.org"}, created["destinations"])
	assert.Contains(t, tl.out.String(), "Emails to hello@example.com are now forwarded to ada@example.org.")

	email, ok := tl.app.local.Get(string(config.KeyEmail))
	require.True(t, ok, "email is a project answer")
	assert.Equal(t, "hello", email)
}

func TestLaunch_Hosting(t *testing.T) {
	records := make(map[string][]any)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sites/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer netlify-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":"site-1","name":"wolf","custom_domain":""}`))
	})
	mux.HandleFunc("PATCH /sites/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "example.com", body["custom_domain"])
		assert.Equal(t, true, body["ssl"])
		_, _ = w.Write([]byte(`{"id":"site-1","name":"wolf","custom_domain":"example.com"}`))
	})
	mux.HandleFunc("GET /livedns/domains/{fqdn}/records/{name}/{type}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("PUT /livedns/domains/{fqdn}/records/{name}/{type}", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Values []any `json:"rrset_values"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		records[r.PathValue("name")+" "+r.PathValue("type")] = body.Values
		w.WriteHeader(http.StatusCreated)
	})
	tl := newTestLaunch(t, mux)

	stateDir := filepath.Join(tl.projectDir, ".netlify")
	require.NoError(t, os.MkdirAll(stateDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(stateDir, "state.json"), []byte(`{"siteId":"site-1"}`), 0o644))

	require.NoError(t, tl.run(context.Background(), skipAllBut(engine.StepHosting)))

	assert.Equal(t, map[string][]any{
		"@ ALIAS":   {"wolf.netlify.app."},
		"www CNAME": {"wolf.netlify.app."},
	}, records)
	assert.Contains(t, tl.out.String(), "continuous deployment with Netlify has already been set up")
	assert.Equal(t, engine.StepStatusDone, tl.status(t, engine.StepHosting))
}

func TestLaunch_MailingList(t *testing.T) {
	txt := make(map[string][]any)
	checks := 0
	listCreated := false
	mux := http.NewServeMux()
	mux.HandleFunc("GET /REST/dns", func(w http.ResponseWriter, r *http.Request) {
		user, _, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "pub", user)
		_, _ = w.Write([]byte(`{"Count":1,"Total":1,"Data":[{
			"ID": 7,
			"Domain": "example.com",
			"DKIMRecordName": "mailjet._domainkey.example.com.",
			"DKIMRecordValue": "k=rsa; p=abc",
			"SPFRecordValue": "v=spf1 include:spf.mailjet.com ?all",
			"OwnerShipToken": "token-1",
			"OwnerShipTokenRecordName": "mailjet._token.example.com."
		}]}`))
	})
	mux.HandleFunc("POST /REST/dns/{id}/check", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.PathValue("id"))
		checks++
		if checks < 2 {
			_, _ = w.Write([]byte(`{"Data":[{"DKIMStatus":"Not Found","SPFStatus":"OK"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"Data":[{"DKIMStatus":"OK","SPFStatus":"OK"}]}`))
	})
	mux.HandleFunc("GET /REST/contactslist", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Count":0,"Total":0,"Data":[]}`))
	})
	mux.HandleFunc("POST /REST/contactslist", func(w http.ResponseWriter, r *http.Request) {
		listCreated = true
		_, _ = w.Write([]byte(`{"Data":[{"ID":99,"Name":"example.com"}]}`))
	})
	mux.HandleFunc("GET /livedns/domains/{fqdn}/records/{name}/{type}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("name") == "@" {
			_, _ = w.Write([]byte(`{"rrset_name":"@","rrset_type":"TXT","rrset_ttl":300,"rrset_values":["\"v=spf1 include:_mailcust.gandi.net ~all\""]}`))
			return
		}
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("PUT /livedns/domains/{fqdn}/records/{name}/{type}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TXT", r.PathValue("type"))
		var body struct {
			Values []any `json:"rrset_values"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		txt[r.PathValue("name")] = body.Values
		w.WriteHeader(http.StatusCreated)
	})
	tl := newTestLaunch(t, mux)

	require.NoError(t, tl.run(context.Background(), skipAllBut(engine.StepMailingList)))

	assert.Equal(t, []any{`"v=spf1 include:_mailcust.gandi.net include:spf.mailjet.com ~all"`}, txt["@"])
	assert.Equal(t, []any{`"k=rsa; p=abc"`}, txt["mailjet._domainkey"])
	assert.Equal(t, []any{`"token-1"`}, txt["mailjet._token"])
	assert.Equal(t, 2, checks)
	assert.True(t, listCreated)

	out := tl.out.String()
	assert.Contains(t, out, "Attempt 1/2 failed, retrying in 0s...")
	assert.Contains(t, out, `Created contact list "example.com" (ID 99).`)
	assert.Equal(t, engine.StepStatusDone, tl.status(t, engine.StepMailingList))
}

func TestLaunch_ProviderFailureStopsRun(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /domain/domains/{fqdn}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-Id", "req-42")
		http.Error(w, `{"message":"backend down"}`, http.StatusServiceUnavailable)
	})
	tl := newTestLaunch(t, mux)

	err := tl.run(context.Background(), map[string]bool{})
	require.Error(t, err)
	assert.True(t, engine.IsTransient(err))

	assert.Equal(t, engine.StepStatusFailed, tl.status(t, engine.StepDomain))
	assert.Equal(t, engine.StepStatusPending, tl.status(t, engine.StepEmail))
	assert.Equal(t, engine.StepStatusPending, tl.status(t, engine.StepMailingList))

	var report bytes.Buffer
	reported := printLaunchError(&report, err)
	assert.ErrorIs(t, reported, err)
	assert.Contains(t, report.String(), "Status:  503 Service Unavailable")
	assert.Contains(t, report.String(), "X-Request-Id: req-42")
	assert.Contains(t, report.String(), rerunHint)
}

func TestNewLauncher_DisabledPolicies(t *testing.T) {
	settings := config.DefaultSettings()
	settings.Telemetry.Logging.Level = "error"
	tel, err := telemetry.NewTelemetry(&settings.Telemetry)
	require.NoError(t, err)

	dir := t.TempDir()
	a := &app{
		settings: settings,
		tel:      tel,
		local:    config.NewFileStore(filepath.Join(dir, "local.json")),
		global:   config.NewFileStore(filepath.Join(dir, "global.json")),
		out:      &bytes.Buffer{},
	}
	fs := pflag.NewFlagSet("launch", pflag.ContinueOnError)

	settings.Policy.Disabled = []string{"purchase_price_cap"}
	l, err := newLauncher(a, &fakePrompts{}, fs, "example.com")
	require.NoError(t, err)
	for _, p := range l.policies.ListPolicies() {
		assert.Equal(t, p.Name != "purchase_price_cap", p.Enabled, p.Name)
	}

	settings.Policy.Disabled = []string{"no_such_policy"}
	_, err = newLauncher(a, &fakePrompts{}, fs, "example.com")
	assert.ErrorContains(t, err, "policy.disabled")
}
