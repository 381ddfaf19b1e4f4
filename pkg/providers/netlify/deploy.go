package netlify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// StateFile is where the Netlify CLI links a directory to a site.
var StateFile = filepath.Join(".netlify", "state.json")

// ErrNotLinked is returned when the Netlify CLI finished without linking the
// project to a site.
var ErrNotLinked = errors.New("project is not linked to a Netlify site")

type state struct {
	SiteID string `json:"siteId"`
}

// ReadSiteID returns the site linked to dir. A directory without state file
// returns an empty ID and no error.
func ReadSiteID(dir string) (string, error) {
	path := filepath.Join(dir, StateFile)
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	var s state
	if err := json.Unmarshal(b, &s); err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return s.SiteID, nil
}

// CommandRunner runs an interactive external command in dir.
type CommandRunner func(ctx context.Context, dir, name string, args ...string) error

// ExecRunner runs the command with the terminal attached.
func ExecRunner(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %v failed: %w", name, args, err)
	}
	return nil
}

// Deployer links a project directory to a Netlify site.
type Deployer struct {
	Dir    string
	Out    io.Writer
	Runner CommandRunner
}

// SetupContinuousDeployment runs "netlify init" unless dir is already
// linked, and returns the linked site ID.
func (d *Deployer) SetupContinuousDeployment(ctx context.Context) (string, error) {
	siteID, err := ReadSiteID(d.Dir)
	if err != nil {
		return "", err
	}
	if siteID != "" {
		fmt.Fprintln(d.Out, "Seems like continuous deployment with Netlify has already been set up. Anything you push to master branch should automatically be deployed.")
		return siteID, nil
	}

	fmt.Fprintln(d.Out, "Will now set up continuous deployment with Netlify. Please follow the instructions from Netlify CLI.")
	runner := d.Runner
	if runner == nil {
		runner = ExecRunner
	}
	if err := runner(ctx, d.Dir, "netlify", "init"); err != nil {
		return "", err
	}

	siteID, err = ReadSiteID(d.Dir)
	if err != nil {
		return "", err
	}
	if siteID == "" {
		return "", ErrNotLinked
	}

	fmt.Fprintln(d.Out, "Continuous deployment was set up successfully! Anything you push to master branch will automatically be deployed.")
	return siteID, nil
}
