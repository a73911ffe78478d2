package handlers

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

var filenameSanitizeRegexp = regexp.MustCompile(`[^a-zA-Z0-9._ -]`)

// Download proxies an upstream asset and re-serves it as an attachment.
// Browsers cannot force a cross-origin download, so the server fetches the
// asset and sets Content-Disposition itself.
func (a *App) Download(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "url required")
		return
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid url")
		return
	}

	filename := strings.TrimSpace(r.URL.Query().Get("filename"))
	if filename == "" {
		filename = "download"
	}
	filename = filenameSanitizeRegexp.ReplaceAllString(filename, "")
	if filename == "" {
		filename = "download"
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, rawURL, nil)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid url")
		return
	}
	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		a.Logger.Warn().Err(err).Str("url", rawURL).Msg("download proxy fetch failed")
		a.error(w, http.StatusBadGateway, "upstream", "failed to fetch asset")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		a.error(w, http.StatusBadGateway, "upstream", fmt.Sprintf("upstream returned %d", resp.StatusCode))
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		w.Header().Set("Content-Length", cl)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		a.Logger.Warn().Err(err).Str("url", rawURL).Msg("download proxy stream interrupted")
	}
}
