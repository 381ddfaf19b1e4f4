package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/launchwolf/launchwolf/pkg/telemetry"
)

// DefaultSettingsFile is the settings file looked up in the working directory.
const DefaultSettingsFile = "launchwolf.yaml"

// Settings is the operator configuration of the tool itself. Unlike the JSON
// config files it never holds launch answers.
type Settings struct {
	Telemetry telemetry.Config `yaml:"telemetry"`
	Providers ProviderSettings `yaml:"providers"`
	Gandi     GandiSettings    `yaml:"gandi"`
	Poll      PollSettings     `yaml:"poll"`
	Policy    PolicySettings   `yaml:"policy"`
}

// ProviderSettings holds provider API base URLs.
type ProviderSettings struct {
	GandiURL   string        `yaml:"gandi_url" validate:"required,url"`
	NetlifyURL string        `yaml:"netlify_url" validate:"required,url"`
	MailjetURL string        `yaml:"mailjet_url" validate:"required,url"`
	Timeout    time.Duration `yaml:"timeout" validate:"min=0"`
}

// GandiSettings tunes domain purchases.
type GandiSettings struct {
	// DryRun sends the Dry-Run header so purchases are validated but not made.
	DryRun bool `yaml:"dry_run"`
}

// PollSettings tunes the two polling loops of a launch.
type PollSettings struct {
	DomainAttempts int           `yaml:"domain_attempts" validate:"min=1,max=100"`
	DomainDelay    time.Duration `yaml:"domain_delay" validate:"min=0"`
	DNSAttempts    int           `yaml:"dns_attempts" validate:"min=1,max=100"`
	DNSDelay       time.Duration `yaml:"dns_delay" validate:"min=0"`
}

// PolicySettings lists custom purchase policies.
type PolicySettings struct {
	// Paths are .rego files or directories evaluated next to the builtin
	// purchase policies.
	Paths []string `yaml:"paths"`

	// Disabled names policies, builtin or custom, that are not evaluated.
	Disabled []string `yaml:"disabled,omitempty"`
}

// DefaultSettings returns the settings used when no settings file exists.
func DefaultSettings() *Settings {
	tel := telemetry.DefaultConfig()
	// Wizard output shares the terminal with logs; keep them quiet unless asked.
	tel.Logging.Level = "warn"

	return &Settings{
		Telemetry: *tel,
		Providers: ProviderSettings{
			GandiURL:   "https://api.gandi.net/v5",
			NetlifyURL: "https://api.netlify.com/api/v1",
			MailjetURL: "https://api.mailjet.com/v3",
			Timeout:    30 * time.Second,
		},
		Poll: PollSettings{
			DomainAttempts: 10,
			DomainDelay:    5 * time.Second,
			DNSAttempts:    30,
			DNSDelay:       10 * time.Second,
		},
	}
}

// LoadSettings reads path over the defaults. A missing file yields the
// defaults unchanged.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("settings file %s: %w", path, err)
	}
	return s, nil
}

// Validate checks struct constraints and the telemetry section.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if s.Telemetry.ServiceName == "" {
		s.Telemetry.ServiceName = "launchwolf"
	}
	if s.Telemetry.ServiceVersion == "" {
		s.Telemetry.ServiceVersion = "dev"
	}
	if err := s.Telemetry.Validate(); err != nil {
		return fmt.Errorf("invalid telemetry settings: %w", err)
	}
	return nil
}

const settingsHeader = `# LaunchWolf settings. Every key is optional, missing keys keep the
# values shown here.
#
# telemetry.tracing.exporter: none, stdout or otlp
# providers.gandi_url: use https://api.sandbox.gandi.net/v5 to try purchases
#   against the Gandi sandbox
# gandi.dry_run: validate purchases without placing an order
# policy.paths: extra .rego files or directories with purchase policies
# policy.disabled: policy names to skip, for example purchase_price_cap
# telemetry.events.min_level: info, warning or error
`

// WriteSettings writes s to path as YAML. It refuses to overwrite an
// existing file unless force is set.
func WriteSettings(path string, s *Settings, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("settings file %s already exists", path)
		}
	}

	b, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	b = append([]byte(settingsHeader), b...)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create settings directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("failed to write settings file %s: %w", path, err)
	}
	return nil
}
