package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/PolarWolf314/handoff/internal/configs"
	herrors "github.com/PolarWolf314/handoff/internal/errors"
	"github.com/PolarWolf314/handoff/internal/keystore"
	"github.com/PolarWolf314/handoff/internal/record"
	"github.com/PolarWolf314/handoff/internal/ui"
	"github.com/PolarWolf314/handoff/internal/utils"
	"github.com/PolarWolf314/handoff/internal/workflows"
)

// prompter is swapped out by tests.
var prompter keystore.Prompter = keystore.TerminalPrompter{}

// startSpinner creates and starts a spinner on stderr with the given message
// when not in verbose or debug mode. Returns the spinner and a function that
// should be deferred to clean up.
//
// spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// calls ui.EnsureNewline() on the final message before printing it to stderr.
func startSpinner(message string) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		// If we can't set spinner color, just continue without it.
		Logger.Debugf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
	} else {
		Logger.Infof("%s", message)
	}

	cleanup := func() {
		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		if finalMsg != "" {
			fmt.Fprint(os.Stderr, finalMsg)
		}
	}

	return s, cleanup
}

// spinnerPrompter pauses the spinner while a prompt is on screen.
type spinnerPrompter struct {
	inner   keystore.Prompter
	spinner *spinner.Spinner
}

func (p spinnerPrompter) pause() func() {
	if p.spinner == nil || !p.spinner.Active() {
		return func() {}
	}
	p.spinner.Stop()
	return p.spinner.Start
}

func (p spinnerPrompter) Passphrase(prompt string) ([]byte, error) {
	defer p.pause()()
	return p.inner.Passphrase(prompt)
}

func (p spinnerPrompter) Confirm(prompt string) (bool, error) {
	defer p.pause()()
	return p.inner.Confirm(prompt)
}

// loadEnv reads config.toml and builds the workflow Env. With network set
// it also opens the configured transport; the returned function releases it.
func loadEnv(ctx context.Context, s *spinner.Spinner, network bool) (*workflows.Env, func(), error) {
	settings := configs.UserHandoffSettings
	Logger.Debugf("Loading config from %s", settings.ConfigPath)
	config, err := configs.LoadConfig(settings.ConfigPath)
	if err != nil {
		return nil, nil, err
	}

	env := workflows.NewEnv(config, settings, Logger)
	env.Keys.Prompter = spinnerPrompter{inner: prompter, spinner: s}

	release := func() {}
	if network {
		client, closeFn, err := workflows.OpenTransport(ctx, config, settings, Logger)
		if err != nil {
			return nil, nil, err
		}
		env.Transport = client
		release = func() {
			if err := closeFn(); err != nil {
				Logger.Debugf("Closing transport: %v", err)
			}
		}
	}
	return env, release, nil
}

// FormatError renders err for the terminal with a hint where one helps.
func FormatError(err error) string {
	msg := ui.Error.Sprint("✗") + " " + err.Error()

	var expired *record.ExpiredError
	hint := ""
	switch {
	case errors.As(err, &expired):
		hint = "Ask the publisher to send it again"
	case errors.Is(err, herrors.ErrIdentityNotFound):
		hint = "Run " + ui.Code.Sprint("handoff init") + " to create an identity"
	case errors.Is(err, herrors.ErrInsecurePermissions):
		hint = "Run " + ui.Code.Sprint("chmod 600 "+configs.UserHandoffSettings.KeyPath)
	case errors.Is(err, herrors.ErrNoTTY):
		hint = "Run the command from an interactive terminal"
	case errors.Is(err, herrors.ErrPINRequired):
		hint = "Pass " + ui.Flag.Sprint("--pin") + " to enter it"
	case errors.Is(err, herrors.ErrRetriesExhausted):
		hint = "The store could not be reached; check " + ui.Path.Sprint(configs.UserHandoffSettings.ConfigPath)
	case errors.Is(err, herrors.ErrNotFound):
		hint = "Nothing published, revoked, or not yet visible; try again in a moment"
	}

	if hint != "" {
		msg += "\n" + ui.Info.Sprint("→") + " " + hint
	}
	return msg
}

// interactiveInput reports whether the command reads from a terminal rather
// than a pipe or a test reader.
func interactiveInput(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	return ok && f == os.Stdin && utils.IsTerminal()
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
