package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/launchwolf/launchwolf/pkg/config"
	"github.com/launchwolf/launchwolf/pkg/engine"
	"github.com/launchwolf/launchwolf/pkg/policy"
	"github.com/launchwolf/launchwolf/pkg/prompt"
	"github.com/launchwolf/launchwolf/pkg/providers/gandi"
	"github.com/launchwolf/launchwolf/pkg/providers/netlify"
	"github.com/launchwolf/launchwolf/pkg/telemetry"
)

// wizardPrompts is everything the launch asks the user.
type wizardPrompts interface {
	config.Prompts
	Confirm(ctx context.Context, title, description string, initial bool) (bool, error)
}

func newLaunchCommand() *cobra.Command {
	var (
		skip       []string
		accessible bool
	)

	// Flags are generated from the descriptors. Prompt closures are only
	// invoked at run time, so a schema without prompts is enough here.
	flagSchema, err := config.DefaultSchema(nil)
	if err != nil {
		panic(fmt.Sprintf("invalid config schema: %v", err))
	}

	cmd := &cobra.Command{
		Use:   "launch [domain]",
		Short: "Launch a website",
		Long: `Launch a website step by step:

  1. Domain:       purchase the domain at Gandi (skipped if you own it)
  2. Email:        forward your primary address at Gandi
  3. Hosting:      continuous deployment, DNS and SSL at Netlify
  4. Mailing list: sender domain and contact list at Mailjet

Anything not given as a flag is read from the local config, then the global
config, and otherwise asked for. Answers are saved so re-running continues
where the last run stopped.`,
		Example: `  # Launch interactively
  launchwolf launch

  # Launch a known domain, paying in USD
  launchwolf launch example.com --domainPurchaseCurrency USD

  # Only set up hosting
  launchwolf launch example.com --skip domain,email,mailing-list`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFlagChoices(cmd.Flags(), flagSchema); err != nil {
				return err
			}
			_, err := parseSkip(skip)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			skipped, err := parseSkip(skip)
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			p, err := prompt.New(
				prompt.WithAccessible(accessible),
				prompt.WithIO(cmd.InOrStdin(), cmd.OutOrStdout()),
			)
			if err != nil {
				return err
			}

			var domainArg string
			if len(args) > 0 {
				domainArg = prompt.NormalizeDomain(args[0])
			}

			l, err := newLauncher(a, p, cmd.Flags(), domainArg)
			if err != nil {
				return err
			}

			log.Info().
				Str("domain", domainArg).
				Strs("skip", skip).
				Msg("Starting launch")

			if err := l.run(a.context(cmd.Context()), skipped); err != nil {
				return printLaunchError(a.out, err)
			}
			return nil
		},
	}

	registerConfigFlags(cmd.Flags(), flagSchema)
	cmd.Flags().StringSliceVar(&skip, "skip", nil, "steps to skip (domain, email, hosting, mailing-list)")
	cmd.Flags().BoolVar(&accessible, "accessible", false, "use plain line-based prompts")

	return cmd
}

// parseSkip maps --skip values to step names.
func parseSkip(values []string) (map[string]bool, error) {
	known := make(map[string]string)
	for _, s := range engine.DefaultSteps() {
		known[stepKey(s.Name)] = s.Name
	}

	out := make(map[string]bool, len(values))
	for _, v := range values {
		name, ok := known[stepKey(v)]
		if !ok {
			return nil, fmt.Errorf("unknown step %q for --skip", v)
		}
		out[name] = true
	}
	return out, nil
}

func stepKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}

// launcher runs the launch steps against the providers.
type launcher struct {
	settings *config.Settings
	tel      *telemetry.Telemetry
	resolver *config.Resolver
	prompts  wizardPrompts
	tracker  *engine.Tracker
	policies *policy.Engine
	out      io.Writer

	// httpClient is shared by the provider clients. Nil means each client
	// builds its own.
	httpClient *http.Client
	userAgent  string

	// projectDir is where the Netlify CLI links the site.
	projectDir string
	runner     netlify.CommandRunner

	domain   string
	runCtx   context.Context
	gandiAPI *gandi.Client
}

type launchStep struct {
	name string
	run  func(ctx context.Context) error
}

func newLauncher(a *app, p wizardPrompts, flags *pflag.FlagSet, domainArg string) (*launcher, error) {
	schema, err := config.DefaultSchema(p)
	if err != nil {
		return nil, err
	}

	policies, err := policy.NewEngine(a.tel.Logger.Zerolog())
	if err != nil {
		return nil, err
	}
	if len(a.settings.Policy.Paths) > 0 {
		if err := policies.LoadPolicies(context.Background(), a.settings.Policy.Paths); err != nil {
			return nil, err
		}
	}
	for _, name := range a.settings.Policy.Disabled {
		if err := policies.DisablePolicy(name); err != nil {
			return nil, fmt.Errorf("invalid policy.disabled entry: %w", err)
		}
	}
	for _, p := range policies.ListPolicies() {
		log.Debug().Str("policy", p.Name).Bool("enabled", p.Enabled).Msg("Purchase policy")
	}

	r, err := a.resolver(schema, &cobraFlags{fs: flags, schema: schema, domain: domainArg})
	if err != nil {
		return nil, err
	}

	l := &launcher{
		settings:   a.settings,
		tel:        a.tel,
		resolver:   r,
		prompts:    p,
		tracker:    engine.NewTracker(engine.DefaultSteps()...),
		policies:   policies,
		out:        a.out,
		userAgent:  a.userAgent(),
		projectDir: ".",
		runner:     netlify.ExecRunner,
		runCtx:     context.Background(),
	}

	l.resolver.OnResolve(func(key config.Key, source config.Source) {
		telemetry.RecordConfigResolution(l.runCtx, string(key), string(source))
	})
	l.resolver.OnSave(func(key config.Key, scope config.Scope) {
		l.tel.Events.PublishConfigSaved(telemetry.RunIDFromContext(l.runCtx), string(key), string(scope))
	})
	l.tracker.OnTransition(func(step engine.Step, from engine.StepStatus) {
		telemetry.RecordStepTransition(l.runCtx, step.Name, string(from), string(step.Status))
	})

	return l, nil
}

func (l *launcher) steps() []launchStep {
	return []launchStep{
		{name: engine.StepDomain, run: l.domainStep},
		{name: engine.StepEmail, run: l.emailStep},
		{name: engine.StepHosting, run: l.hostingStep},
		{name: engine.StepMailingList, run: l.mailingListStep},
	}
}

// run executes every step not in skip, in order, and stops at the first
// failure.
func (l *launcher) run(ctx context.Context, skip map[string]bool) (err error) {
	l.runCtx = ctx

	fmt.Fprintln(l.out, prompt.Styles.Title.Render("Welcome to LaunchWolf!"))
	fmt.Fprintln(l.out, "This tool will set up the following for your website:")
	fmt.Fprintln(l.out, l.tracker.RenderAll())

	if !l.resolver.LocalConfigExists() && !l.resolver.GlobalConfigExists() {
		fmt.Fprintln(l.out, prompt.Styles.Box.Render(fmt.Sprintf(
			"Looks like this is your first run.\nAnswers will be saved to %s (this project)\nand %s (all projects).",
			l.resolver.ConfigPath(config.ScopeLocal), l.resolver.ConfigPath(config.ScopeGlobal))))
	}

	domain, err := l.resolver.GetString(ctx, config.KeyDomain, config.PromptParams{})
	if err != nil {
		return err
	}
	domain = prompt.NormalizeDomain(domain)
	if err := prompt.ValidateDomain(domain); err != nil {
		return fmt.Errorf("invalid domain %q: %w", domain, err)
	}
	l.domain = domain

	runID := telemetry.NewRunID()
	ctx = telemetry.WithRunContext(ctx, runID, domain)
	l.runCtx = ctx
	defer func() {
		telemetry.EndRunContext(ctx, err)
	}()

	telemetry.FromContext(ctx).Info("Launch run started")

	for _, s := range l.steps() {
		if skip[s.name] {
			fmt.Fprintf(l.out, "Skipping %s.\n", s.name)
			continue
		}
		if err := l.runStep(ctx, s); err != nil {
			return err
		}
		fmt.Fprintln(l.out, l.tracker.RenderStatusOnly())
	}

	fmt.Fprintln(l.out, prompt.Success(fmt.Sprintf("All done, %s is launched!", domain)))
	fmt.Fprintln(l.out, l.tracker.RenderAll())
	return nil
}

func (l *launcher) runStep(ctx context.Context, s launchStep) error {
	h, err := l.tracker.Handle(s.name)
	if err != nil {
		return err
	}

	ic := telemetry.StartStep(ctx, s.name)
	if err := l.tracker.SetStatus(h, engine.StepStatusInProgress); err != nil {
		ic.End(err)
		return err
	}
	fmt.Fprintln(l.out, l.tracker.RenderStep(h))

	err = s.run(ic.Ctx)
	ic.End(err)
	if err != nil {
		ic.Logger.WithError(err).Error("Step failed")
		if serr := l.tracker.SetStatus(h, engine.StepStatusFailed); serr != nil {
			ic.Logger.WithError(serr).Warn("Failed to mark step as failed")
		}
		fmt.Fprintln(l.out, l.tracker.RenderStatusOnly())
		return err
	}

	ic.Logger.Infof("Step completed in %s", ic.Timer.Duration())
	return l.tracker.SetStatus(h, engine.StepStatusDone)
}
