package session

import (
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
)

// mdConverter renders diagnostic DOM snapshots. The base plugin strips
// script/style/head noise so the .md artifact stays readable.
var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
	),
)

// Capture writes best-effort diagnostic artifacts for the primary page
// under the configured screenshot dir: <name>.png (viewport screenshot)
// and <name>.md (markdown rendering of the current DOM). Failures are
// logged, never propagated; diagnostics must not break the stage that
// asked for them.
func (s *Session) Capture(name string) {
	dir := s.cfg.ScreenshotDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Warn("could not create screenshot dir", "dir", dir, "error", err)
		return
	}

	if data, err := s.primary.Screenshot(false, nil); err != nil {
		slog.Warn("diagnostic screenshot failed", "name", name, "error", err)
	} else if err := os.WriteFile(filepath.Join(dir, name+".png"), data, 0o644); err != nil {
		slog.Warn("could not write diagnostic screenshot", "name", name, "error", err)
	}

	html, err := s.primary.HTML()
	if err != nil {
		slog.Warn("diagnostic DOM read failed", "name", name, "error", err)
		return
	}
	md, err := mdConverter.ConvertString(html, converter.WithDomain(s.primaryDomain()))
	if err != nil {
		slog.Warn("diagnostic markdown conversion failed", "name", name, "error", err)
		return
	}
	if err := os.WriteFile(filepath.Join(dir, name+".md"), []byte(md), 0o644); err != nil {
		slog.Warn("could not write diagnostic snapshot", "name", name, "error", err)
	}
}

// primaryDomain returns the primary page's origin for resolving
// relative links in snapshots, or "" when it cannot be determined.
func (s *Session) primaryDomain() string {
	info, err := s.primary.Info()
	if err != nil {
		return ""
	}
	u, err := url.Parse(info.URL)
	if err != nil {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
