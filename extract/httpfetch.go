package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	tls2 "github.com/refraction-networking/utls"
	"golang.org/x/net/html"
)

// profileFetcher retrieves profile pages over plain HTTP with a Chrome
// TLS fingerprint (utls), avoiding a browser round trip for pages that
// render server-side.
type profileFetcher struct {
	userAgent string
}

func newProfileFetcher(userAgent string) *profileFetcher {
	return &profileFetcher{userAgent: userAgent}
}

func (f *profileFetcher) fetch(ctx context.Context, targetURL string) ([]byte, error) {
	transport := &http.Transport{
		DialTLSContext: dialTLSChrome,
	}
	client := &http.Client{Transport: transport}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("profile fetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile fetch: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("profile fetch: HTTP %d for %s", resp.StatusCode, targetURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024)) // 10 MB cap
	if err != nil {
		return nil, fmt.Errorf("profile fetch: read body: %w", err)
	}
	return body, nil
}

// dialTLSChrome establishes a TLS connection using a Chrome fingerprint via utls.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{}
	rawConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls2.UClient(rawConn, &tls2.Config{
		ServerName: host,
	}, tls2.HelloChrome_Auto)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}

// needsRendering decides if HTTP-fetched HTML is an SPA shell that only
// yields its contact data after JS execution.
func needsRendering(body []byte) bool {
	bodyText := visibleText(body)

	// Very little visible text in <body> means an empty client-side shell.
	if len(bodyText) < 200 {
		return true
	}

	lower := strings.ToLower(string(body))
	scriptCount := strings.Count(lower, "<script")
	return scriptCount > 10 && len(bodyText) < 500
}

// visibleText strips tags and <script>/<style> content from <body>.
// Used for the rendering heuristic only.
func visibleText(body []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	var buf strings.Builder
	inBody := false
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return buf.String()
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			tag := string(tn)
			if tag == "body" {
				inBody = true
			}
			if tag == "script" || tag == "style" || tag == "noscript" {
				skipDepth++
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			tag := string(tn)
			if tag == "script" || tag == "style" || tag == "noscript" {
				if skipDepth > 0 {
					skipDepth--
				}
			}
		case html.TextToken:
			if inBody && skipDepth == 0 {
				text := strings.TrimSpace(string(tokenizer.Text()))
				if text != "" {
					buf.WriteString(text)
					buf.WriteByte(' ')
				}
			}
		}
	}
}
