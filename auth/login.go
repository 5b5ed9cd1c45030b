// Package auth drives the OTP-based buyer login flow as an explicit
// state machine. The one-time code comes from a human through a
// blocking prompt; everything else is automated.
package auth

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/use-agent/leadmart/behavior"
	"github.com/use-agent/leadmart/cleaner"
	"github.com/use-agent/leadmart/config"
	"github.com/use-agent/leadmart/models"
	"github.com/use-agent/leadmart/session"
)

// Page element locators on the buyer login form.
const (
	mobileInputSelector = "#mobilemy"
	sendOTPSelector     = `input#signInSubmitButton[value="Send OTP"]`
	otpInputSelector    = `input[type="text"][placeholder="----"][maxlength="4"]`
	verifyOTPSelector   = `input#signInSubmitButton[value="Verify OTP"]`
)

// dashboardMarkers are text fragments whose presence indicates the
// authenticated dashboard has rendered.
var dashboardMarkers = []string{
	"My Account", "Dashboard", "My Orders", "Post Your Requirement",
}

// Flow runs the login state machine against the session's primary page.
// Prompt supplies the human-entered one-time code; when nil, a stdin
// prompt is used.
type Flow struct {
	Sess   *session.Session
	Cfg    config.AuthConfig
	Prompt func(ctx context.Context) (string, error)

	state State
}

// State reports the machine's current state, mostly for logging and
// tests.
func (f *Flow) State() State {
	return f.state
}

func (f *Flow) transition(to State) {
	slog.Info("login state transition", "from", f.state.String(), "to", to.String())
	f.state = to
}

// fail moves to StateFailed, captures diagnostics and wraps the cause.
func (f *Flow) fail(artifact, msg string, err error) error {
	f.transition(StateFailed)
	f.Sess.Capture(artifact)
	return models.NewStageError(models.ErrCodeLoginTimeout, msg, err)
}

// Run executes one full pass of the machine from StateNotStarted.
// A stage-level failure comes back as an error value, never a panic;
// the caller layers retries on top, restarting from scratch.
func (f *Flow) Run(ctx context.Context) error {
	f.state = StateNotStarted

	// Identifier format check happens before any browser interaction.
	mobile := cleaner.Phone(f.Cfg.Mobile)
	if len(mobile) != 10 {
		f.transition(StateFailed)
		return models.NewStageError(models.ErrCodeInvalidInput,
			fmt.Sprintf("mobile number %q is not a valid 10-digit identifier", f.Cfg.Mobile), nil)
	}

	page := f.Sess.Primary().Context(ctx)

	slog.Info("navigating to buyer login page", "url", f.Cfg.LoginURL)
	if err := page.Navigate(f.Cfg.LoginURL); err != nil {
		return f.fail("login_navigation_error", "could not open login page", err)
	}
	if err := session.WaitURLContains(ctx, page, f.Cfg.URLMarker, f.Cfg.NavTimeout); err != nil {
		return f.fail("login_timeout_error", "login page did not load", err)
	}
	f.transition(StatePageLoaded)
	if err := behavior.Sleep(ctx, f.Cfg.SettleDelay); err != nil {
		return err
	}

	if err := fillInput(page, mobileInputSelector, mobile, f.Cfg.ElementTimeout); err != nil {
		return f.fail("login_elements_missing", "mobile input not found", err)
	}
	slog.Info("entered mobile number", "mobile", mobile)
	f.transition(StateIdentifierEntered)
	if err := behavior.Sleep(ctx, f.Cfg.SettleDelay); err != nil {
		return err
	}

	if err := clickElement(page, sendOTPSelector, f.Cfg.ElementTimeout); err != nil {
		return f.fail("login_elements_missing", "send OTP button not found", err)
	}
	slog.Info("requested one-time code")
	f.transition(StateCodeRequested)
	if err := behavior.Sleep(ctx, f.Cfg.SettleDelay); err != nil {
		return err
	}

	prompt := f.Prompt
	if prompt == nil {
		prompt = stdinPrompt
	}
	code, err := prompt(ctx)
	if err != nil {
		return f.fail("login_otp_prompt_error", "one-time code prompt failed", err)
	}

	if err := fillInput(page, otpInputSelector, code, f.Cfg.NavTimeout); err != nil {
		return f.fail("login_elements_missing", "OTP input not found", err)
	}
	f.transition(StateCodeEntered)

	if err := clickElement(page, verifyOTPSelector, f.Cfg.ElementTimeout); err != nil {
		return f.fail("login_elements_missing", "verify OTP button not found", err)
	}
	slog.Info("submitted one-time code")

	if err := f.waitVerified(ctx, page); err != nil {
		return f.fail("login_timeout_error", "no post-login success marker appeared", err)
	}
	f.transition(StateVerified)
	slog.Info("login successful")
	return nil
}

// waitVerified blocks until the URL marker or any dashboard text marker
// shows up, within the configured timeout.
func (f *Flow) waitVerified(ctx context.Context, page *rod.Page) error {
	deadline := time.Now().Add(f.Cfg.NavTimeout)
	for {
		if info, err := page.Info(); err == nil && strings.Contains(info.URL, f.Cfg.URLMarker) {
			return nil
		}
		if hasDashboardMarker(page) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out after %s", f.Cfg.NavTimeout)
		}
		if err := behavior.Sleep(ctx, 500*time.Millisecond); err != nil {
			return err
		}
	}
}

func hasDashboardMarker(page *rod.Page) bool {
	res, err := page.Eval(`(markers) => {
		const text = document.body ? document.body.innerText : "";
		return markers.some(m => text.includes(m));
	}`, dashboardMarkers)
	return err == nil && res.Value.Bool()
}

func fillInput(page *rod.Page, selector, value string, timeout time.Duration) error {
	el, err := page.Timeout(timeout).Element(selector)
	if err != nil {
		return err
	}
	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	return el.Input(value)
}

func clickElement(page *rod.Page, selector string, timeout time.Duration) error {
	el, err := page.Timeout(timeout).Element(selector)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

// stdinPrompt is the default human input boundary: a synchronous read
// from the terminal.
func stdinPrompt(context.Context) (string, error) {
	fmt.Print("Enter the OTP received: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
