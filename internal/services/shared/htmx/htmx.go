// Package htmx renders templ components for both htmx partial requests and
// full page loads.
package htmx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/shared/httpx"
)

// TriggerHeader names client-side events htmx dispatches after a swap.
const TriggerHeader = "HX-Trigger"

// TitleTag formats an escaped `<title>` element.
func TitleTag(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	return "<title>" + html.EscapeString(title) + "</title>"
}

// RenderPage renders fragment for htmx requests and full otherwise. A nil
// fragment falls back to full and the reverse. Rendering is buffered so a
// component error becomes a 500 instead of a truncated page. For htmx
// responses the title is prepended so htmx updates the document title.
func RenderPage(w http.ResponseWriter, r *http.Request, status int, fragment, full templ.Component, title string) error {
	if w == nil {
		return fmt.Errorf("response writer is required")
	}
	partial := httpx.IsHTMXRequest(r)
	target := full
	if partial && fragment != nil || target == nil {
		target = fragment
	}
	if target == nil {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}

	var body bytes.Buffer
	if partial {
		body.WriteString(TitleTag(title))
	}
	if err := target.Render(httpx.RequestContext(r), &body); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return fmt.Errorf("render page: %w", err)
	}
	if status <= 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write(body.Bytes())
	return err
}

// Trigger asks htmx to dispatch event with detail after the swap. Repeated
// calls merge into one header value.
func Trigger(w http.ResponseWriter, event string, detail any) {
	if w == nil || strings.TrimSpace(event) == "" {
		return
	}
	events := map[string]any{}
	if existing := w.Header().Get(TriggerHeader); existing != "" {
		_ = json.Unmarshal([]byte(existing), &events)
	}
	events[strings.TrimSpace(event)] = detail
	encoded, err := json.Marshal(events)
	if err != nil {
		return
	}
	w.Header().Set(TriggerHeader, string(encoded))
}
