package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Browser   BrowserConfig
	Auth      AuthConfig
	Search    SearchConfig
	Extract   ExtractConfig
	Profile   ProfileConfig
	Collector CollectorConfig
	Run       RunConfig
	Log       LogConfig
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: false

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// Bin overrides the Chromium binary path.
	Bin string

	// DebugPortMin/Max bound the randomized remote debugging port,
	// avoiding collisions across concurrent instances.
	DebugPortMin int // default: 9000
	DebugPortMax int // default: 10000

	// PageLoadTimeout bounds full page loads.
	PageLoadTimeout time.Duration // default: 30s

	// ScreenshotDir is where diagnostic artifacts are written.
	ScreenshotDir string // default: "."
}

// AuthConfig controls the OTP login flow.
type AuthConfig struct {
	// LoginURL is the buyer login entry point.
	LoginURL string // default: https://buyer.indiamart.com/

	// URLMarker must appear in the URL once the login page (and later
	// the authenticated dashboard) has loaded.
	URLMarker string // default: buyer.indiamart.com

	// Mobile is the 10-digit identifier used to request the OTP.
	Mobile string

	// NavTimeout bounds the wait for the login URL marker and the
	// post-verification success markers.
	NavTimeout time.Duration // default: 15s

	// ElementTimeout bounds individual element lookups.
	ElementTimeout time.Duration // default: 10s

	// SettleDelay is the fixed pause after page loads and field fills.
	SettleDelay time.Duration // default: 3s

	Attempts   int           // default: 3
	RetryDelay time.Duration // default: 2s
}

// SearchConfig controls query submission and the new-tab transition.
type SearchConfig struct {
	// InputTimeout bounds the wait for the search input.
	InputTimeout time.Duration // default: 15s

	// ButtonTimeout bounds the waits for the two search triggers.
	ButtonTimeout time.Duration // default: 10s

	// WindowTimeout bounds the wait for the results tab to open and
	// for the results URL marker inside it.
	WindowTimeout time.Duration // default: 20s

	// ResultsURLMarker must appear in the results tab URL.
	ResultsURLMarker string // default: /isearch.php

	// ClickDelay is the pause between the two search triggers.
	ClickDelay time.Duration // default: 2s

	// SettleDelay is the pause before touching the search input.
	SettleDelay time.Duration // default: 3s

	Attempts   int           // default: 3
	RetryDelay time.Duration // default: 2s
}

// ExtractConfig controls per-card listing extraction.
type ExtractConfig struct {
	// ResultsTimeout bounds the wait for the results container.
	ResultsTimeout time.Duration // default: 20s

	// RevealTimeout bounds the wait for the phone number revealed by
	// the "View Mobile Number" control.
	RevealTimeout time.Duration // default: 5s

	// NextTimeout bounds the search for a next-page control.
	NextTimeout time.Duration // default: 7s

	// NextSelectors is the ordered next-page locator chain, tried
	// first to last. Overridable so site-layout drift is a config
	// change, not a code change.
	NextSelectors []string
}

// ProfileConfig controls the detail-page enrichment fallback.
type ProfileConfig struct {
	// HTTPFirst tries a plain HTTP fetch of the profile URL (with a
	// Chrome TLS fingerprint) before opening a browser tab.
	HTTPFirst bool // default: true

	// HTTPTimeout bounds the HTTP-first fetch.
	HTTPTimeout time.Duration // default: 10s

	// ReadyTimeout bounds the wait for the profile page body.
	ReadyTimeout time.Duration // default: 15s

	// SettleMin/Max bound the randomized wait for dynamic content.
	SettleMin time.Duration // default: 2s
	SettleMax time.Duration // default: 4s

	// MinAddressLen is the plausibility floor below which an existing
	// address is still considered missing and eligible for backfill.
	MinAddressLen int // default: 10

	Attempts   int           // default: 2
	RetryDelay time.Duration // default: 1s
}

// CollectorConfig controls the pagination loop.
type CollectorConfig struct {
	// SettleMin/Max bound the randomized post-load settle delay.
	SettleMin time.Duration // default: 2s
	SettleMax time.Duration // default: 4s

	// ItemDelayMin/Max bound the randomized inter-card delay.
	ItemDelayMin time.Duration // default: 500ms
	ItemDelayMax time.Duration // default: 1500ms

	// PageDelayMin/Max bound the randomized wait after a next click.
	PageDelayMin time.Duration // default: 3s
	PageDelayMax time.Duration // default: 5s

	// RatePerSecond caps sustained card processing on top of the
	// randomized delays.
	RatePerSecond float64 // default: 2
}

// RunConfig holds the per-run parameters the CLI flags override.
type RunConfig struct {
	Keyword  string // default: "Cricket Ball"
	Output   string // default: "leads.csv"
	MinLeads int    // default: 100
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string // default: "info"
	Dir   string // default: "logs"
}

// defaultNextSelectors is the next-page locator chain observed on the
// results pages, most specific first. When none match, the extractor
// falls back to matching anchor/span text against "Next".
var defaultNextSelectors = []string{
	"a.next",
	"a.pagination__next",
	".pg-next",
}

// Load reads configuration from environment variables with sane
// defaults. A .env file in the working directory is honored if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Browser: BrowserConfig{
			Headless:        envBoolOr("LEADMART_HEADLESS", false),
			NoSandbox:       envBoolOr("LEADMART_NO_SANDBOX", false),
			Bin:             os.Getenv("LEADMART_BROWSER_BIN"),
			DebugPortMin:    envIntOr("LEADMART_DEBUG_PORT_MIN", 9000),
			DebugPortMax:    envIntOr("LEADMART_DEBUG_PORT_MAX", 10000),
			PageLoadTimeout: envDurationOr("LEADMART_PAGE_LOAD_TIMEOUT", 30*time.Second),
			ScreenshotDir:   envOr("LEADMART_SCREENSHOT_DIR", "."),
		},
		Auth: AuthConfig{
			LoginURL:       envOr("LEADMART_LOGIN_URL", "https://buyer.indiamart.com/"),
			URLMarker:      envOr("LEADMART_LOGIN_URL_MARKER", "buyer.indiamart.com"),
			Mobile:         os.Getenv("LEADMART_MOBILE"),
			NavTimeout:     envDurationOr("LEADMART_AUTH_NAV_TIMEOUT", 15*time.Second),
			ElementTimeout: envDurationOr("LEADMART_AUTH_ELEMENT_TIMEOUT", 10*time.Second),
			SettleDelay:    envDurationOr("LEADMART_AUTH_SETTLE_DELAY", 3*time.Second),
			Attempts:       envIntOr("LEADMART_AUTH_ATTEMPTS", 3),
			RetryDelay:     envDurationOr("LEADMART_AUTH_RETRY_DELAY", 2*time.Second),
		},
		Search: SearchConfig{
			InputTimeout:     envDurationOr("LEADMART_SEARCH_INPUT_TIMEOUT", 15*time.Second),
			ButtonTimeout:    envDurationOr("LEADMART_SEARCH_BUTTON_TIMEOUT", 10*time.Second),
			WindowTimeout:    envDurationOr("LEADMART_SEARCH_WINDOW_TIMEOUT", 20*time.Second),
			ResultsURLMarker: envOr("LEADMART_RESULTS_URL_MARKER", "/isearch.php"),
			ClickDelay:       envDurationOr("LEADMART_SEARCH_CLICK_DELAY", 2*time.Second),
			SettleDelay:      envDurationOr("LEADMART_SEARCH_SETTLE_DELAY", 3*time.Second),
			Attempts:         envIntOr("LEADMART_SEARCH_ATTEMPTS", 3),
			RetryDelay:       envDurationOr("LEADMART_SEARCH_RETRY_DELAY", 2*time.Second),
		},
		Extract: ExtractConfig{
			ResultsTimeout: envDurationOr("LEADMART_RESULTS_TIMEOUT", 20*time.Second),
			RevealTimeout:  envDurationOr("LEADMART_REVEAL_TIMEOUT", 5*time.Second),
			NextTimeout:    envDurationOr("LEADMART_NEXT_TIMEOUT", 7*time.Second),
			NextSelectors:  envSliceOr("LEADMART_NEXT_SELECTORS", defaultNextSelectors),
		},
		Profile: ProfileConfig{
			HTTPFirst:     envBoolOr("LEADMART_PROFILE_HTTP_FIRST", true),
			HTTPTimeout:   envDurationOr("LEADMART_PROFILE_HTTP_TIMEOUT", 10*time.Second),
			ReadyTimeout:  envDurationOr("LEADMART_PROFILE_READY_TIMEOUT", 15*time.Second),
			SettleMin:     envDurationOr("LEADMART_PROFILE_SETTLE_MIN", 2*time.Second),
			SettleMax:     envDurationOr("LEADMART_PROFILE_SETTLE_MAX", 4*time.Second),
			MinAddressLen: envIntOr("LEADMART_MIN_ADDRESS_LEN", 10),
			Attempts:      envIntOr("LEADMART_PROFILE_ATTEMPTS", 2),
			RetryDelay:    envDurationOr("LEADMART_PROFILE_RETRY_DELAY", 1*time.Second),
		},
		Collector: CollectorConfig{
			SettleMin:     envDurationOr("LEADMART_PAGE_SETTLE_MIN", 2*time.Second),
			SettleMax:     envDurationOr("LEADMART_PAGE_SETTLE_MAX", 4*time.Second),
			ItemDelayMin:  envDurationOr("LEADMART_ITEM_DELAY_MIN", 500*time.Millisecond),
			ItemDelayMax:  envDurationOr("LEADMART_ITEM_DELAY_MAX", 1500*time.Millisecond),
			PageDelayMin:  envDurationOr("LEADMART_PAGE_DELAY_MIN", 3*time.Second),
			PageDelayMax:  envDurationOr("LEADMART_PAGE_DELAY_MAX", 5*time.Second),
			RatePerSecond: envFloatOr("LEADMART_RATE_PER_SECOND", 2.0),
		},
		Run: RunConfig{
			Keyword:  envOr("LEADMART_KEYWORD", "Cricket Ball"),
			Output:   envOr("LEADMART_OUTPUT", "leads.csv"),
			MinLeads: envIntOr("LEADMART_MIN_LEADS", 100),
		},
		Log: LogConfig{
			Level: envOr("LEADMART_LOG_LEVEL", "info"),
			Dir:   envOr("LEADMART_LOG_DIR", "logs"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
