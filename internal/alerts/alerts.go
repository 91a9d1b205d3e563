// Package alerts carries user-visible failure notices from workflows to
// whichever front end runs them.
package alerts

import (
	"sync"

	"github.com/dsyorkd/assisted-console/internal/logger"
)

// Variant is the severity of an alert
type Variant string

const (
	VariantDanger  Variant = "danger"
	VariantWarning Variant = "warning"
	VariantInfo    Variant = "info"
	VariantSuccess Variant = "success"
)

// Alert is a dismissible notice shown to the user
type Alert struct {
	Title   string  `json:"title" yaml:"title"`
	Message string  `json:"message,omitempty" yaml:"message,omitempty"`
	Variant Variant `json:"variant" yaml:"variant"`
}

// Dispatcher receives alerts. Workflows take one explicitly instead of
// reaching for shared state.
type Dispatcher interface {
	Add(alert Alert)
	Clear()
}

// List collects alerts in memory. It is safe for concurrent use.
type List struct {
	mu     sync.Mutex
	alerts []Alert
}

// NewList creates an empty alert list
func NewList() *List {
	return &List{}
}

// Add appends an alert, defaulting its variant to danger
func (l *List) Add(alert Alert) {
	if alert.Variant == "" {
		alert.Variant = VariantDanger
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.alerts = append(l.alerts, alert)
}

// Clear drops every collected alert
func (l *List) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.alerts = nil
}

// Alerts returns a copy of the collected alerts
func (l *List) Alerts() []Alert {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Alert, len(l.alerts))
	copy(out, l.alerts)
	return out
}

// Len returns the number of collected alerts
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.alerts)
}

// LogDispatcher writes alerts to a logger, for terminal use
type LogDispatcher struct {
	logger logger.Interface
}

// NewLogDispatcher creates a dispatcher that logs every alert
func NewLogDispatcher(l logger.Interface) *LogDispatcher {
	return &LogDispatcher{logger: l.WithField("component", "alerts")}
}

// Add logs the alert at a level matching its variant
func (d *LogDispatcher) Add(alert Alert) {
	entry := d.logger.WithField("title", alert.Title)
	switch alert.Variant {
	case VariantInfo, VariantSuccess:
		entry.Info(alert.Message)
	case VariantWarning:
		entry.Warn(alert.Message)
	default:
		entry.Error(alert.Message)
	}
}

// Clear is a no-op: logged lines cannot be withdrawn
func (d *LogDispatcher) Clear() {}
