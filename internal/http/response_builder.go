package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// htmx events emitted through HX-Trigger.
const (
	eventTransactionsUpdated = "transactions:updated"
	eventTransactionTagged   = "transaction:tagged"
	eventReportRefresh       = "report:refresh"
	eventNotification        = "show-notification"
)

// Level is the toast style of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// toastMillis is how long each level stays on screen.
var toastMillis = map[Level]int{
	LevelSuccess: 3000,
	LevelWarning: 6000,
	LevelError:   5000,
}

// Fragment is an htmx answer: an optional HTML snippet for the swap plus
// HX-* headers and events for the page.
type Fragment struct {
	status   int
	html     string
	redirect string
	events   map[string]any
}

func NewFragment() *Fragment {
	return &Fragment{status: http.StatusOK, events: map[string]any{}}
}

func (f *Fragment) Status(code int) *Fragment {
	f.status = code
	return f
}

// Event queues a client-side event with its detail payload.
func (f *Fragment) Event(name string, detail any) *Fragment {
	f.events[name] = detail
	return f
}

func (f *Fragment) TransactionsUpdated(count int) *Fragment {
	return f.Event(eventTransactionsUpdated, map[string]int{"count": count})
}

func (f *Fragment) TransactionTagged(id, field string) *Fragment {
	return f.Event(eventTransactionTagged, map[string]string{"id": id, "field": field})
}

func (f *Fragment) ReportRefresh() *Fragment {
	return f.Event(eventReportRefresh, struct{}{})
}

// Notify shows a toast. Only the last notification of a fragment is kept.
func (f *Fragment) Notify(level Level, message string) *Fragment {
	return f.Event(eventNotification, map[string]any{
		"type":     string(level),
		"message":  message,
		"duration": toastMillis[level],
	})
}

// Redirect makes htmx load url as a full page.
func (f *Fragment) Redirect(url string) *Fragment {
	f.redirect = url
	return f
}

func (f *Fragment) HTML(s string) *Fragment {
	f.html = s
	return f
}

func (f *Fragment) Write(w http.ResponseWriter) {
	h := w.Header()
	if f.redirect != "" {
		h.Set("HX-Redirect", f.redirect)
	}
	if len(f.events) > 0 {
		if b, err := json.Marshal(f.events); err == nil {
			h.Set("HX-Trigger", string(b))
		}
	}
	if f.html != "" {
		h.Set("Content-Type", "text/html; charset=utf-8")
	}
	w.WriteHeader(f.status)
	if f.html != "" {
		_, _ = w.Write([]byte(f.html))
	}
}

// ErrorFragment renders message as an escaped alert box with the given status.
func ErrorFragment(status int, message string) *Fragment {
	return NewFragment().
		Status(status).
		HTML(`<div class="error" role="alert">` + template.HTMLEscapeString(message) + `</div>`)
}
