// Package validations groups installer validation results by category and
// decides what each category shows: its state and the pending/failed alerts.
package validations

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dsyorkd/assisted-console/internal/models"
)

// State summarises a category
type State string

const (
	StatePending State = "Pending input"
	StateFailed  State = "Failed"
	StateReady   State = "Ready"
)

// Alert titles
const (
	PendingTitle = "Pending validations:"
	FailedTitle  = "Failed validations:"
)

// Actions offered next to failed validations
const (
	ActionChangeHostname = "change-hostname"
	ActionAddNTPSources  = "add-ntp-sources"
)

var groupLabels = map[string]string{
	"hardware":      "Hardware",
	"network":       "Network",
	"role":          "Roles",
	"operators":     "Operators",
	"configuration": "Configuration",
	"hosts-data":    "Hosts",
}

var validationLabels = map[string]string{
	"connected":                  "Connected",
	"has-inventory":              "Readable inventory",
	"has-min-cpu-cores":          "Minimum CPU cores",
	"has-min-valid-disks":        "Minimum disks of required size",
	"has-min-memory":             "Minimum Memory",
	"machine-cidr-defined":       "Machine CIDR",
	"has-cpu-cores-for-role":     "Minimum CPU cores for selected role",
	"has-memory-for-role":        "Minimum memory for selected role",
	"hostname-unique":            "Unique hostname",
	"hostname-valid":             "Valid hostname",
	"belongs-to-machine-cidr":    "Belongs to machine CIDR",
	"api-vip-connected":          "API VIP connected",
	"belongs-to-majority-group":  "Belongs to majority connected group",
	"valid-platform":             "Platform",
	"ntp-synced":                 "NTP synchronization",
	"container-images-available": "Container images availability",
}

var failureHints = map[string]string{
	"hostname-unique": "Change the hostname of one of the hosts sharing it.",
	"hostname-valid":  "Change the hostname to a valid DNS label.",
	"ntp-synced":      "Please configure an NTP server via DHCP or set clock manually.",
}

// Line is one validation inside an alert
type Line struct {
	ID      string                  `json:"id" yaml:"id"`
	Label   string                  `json:"label" yaml:"label"`
	Status  models.ValidationStatus `json:"status" yaml:"status"`
	Message string                  `json:"message" yaml:"message"`
	Hint    string                  `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// Alert is a titled list of validations with follow-up actions
type Alert struct {
	Title   string   `json:"title" yaml:"title"`
	Variant string   `json:"variant" yaml:"variant"`
	Lines   []Line   `json:"lines" yaml:"lines"`
	Actions []string `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// Group is the display state of one validation category
type Group struct {
	Name    string              `json:"name" yaml:"name"`
	Label   string              `json:"label" yaml:"label"`
	State   State               `json:"state" yaml:"state"`
	Pending []models.Validation `json:"pending" yaml:"pending"`
	Failed  []models.Validation `json:"failed" yaml:"failed"`
	Alerts  []Alert             `json:"alerts" yaml:"alerts"`
}

// Groups computes the display state of every category, sorted by name
func Groups(info models.ValidationsInfo) []Group {
	names := make([]string, 0, len(info))
	for name := range info {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]Group, 0, len(names))
	for _, name := range names {
		groups = append(groups, group(name, info[name]))
	}
	return groups
}

func group(name string, list []models.Validation) Group {
	g := Group{
		Name:    name,
		Label:   GroupLabel(name),
		Pending: []models.Validation{},
		Failed:  []models.Validation{},
		Alerts:  []Alert{},
	}
	for _, v := range list {
		switch v.Status {
		case models.ValidationStatusPending:
			g.Pending = append(g.Pending, v)
		case models.ValidationStatusFailure:
			g.Failed = append(g.Failed, v)
		}
	}

	switch {
	case len(g.Pending) > 0:
		g.State = StatePending
	case len(g.Failed) > 0:
		g.State = StateFailed
	default:
		g.State = StateReady
	}

	// Pending validations are only worth showing once nothing has failed.
	if len(g.Failed) == 0 && len(g.Pending) > 0 {
		g.Alerts = append(g.Alerts, alert(PendingTitle, "info", g.Pending))
	}
	if len(g.Failed) > 0 {
		g.Alerts = append(g.Alerts, alert(FailedTitle, "warning", g.Failed))
	}
	return g
}

func alert(title, variant string, list []models.Validation) Alert {
	a := Alert{Title: title, Variant: variant, Lines: make([]Line, 0, len(list))}
	for _, v := range list {
		line := Line{ID: v.ID, Label: Label(v.ID), Status: v.Status, Message: ToSentence(v.Message)}
		if v.Status == models.ValidationStatusFailure {
			line.Hint = failureHints[v.ID]
		}
		a.Lines = append(a.Lines, line)
	}
	a.Actions = Actions(list)
	return a
}

// Actions returns the follow-up actions the failed validations call for
func Actions(list []models.Validation) []string {
	var hostname, ntp bool
	for _, v := range list {
		if v.Status != models.ValidationStatusFailure {
			continue
		}
		switch v.ID {
		case "hostname-unique", "hostname-valid":
			hostname = true
		case "ntp-synced":
			ntp = true
		}
	}
	var actions []string
	if hostname {
		actions = append(actions, ActionChangeHostname)
	}
	if ntp {
		actions = append(actions, ActionAddNTPSources)
	}
	return actions
}

// GroupLabel returns the display name of a category
func GroupLabel(name string) string {
	if label, ok := groupLabels[name]; ok {
		return label
	}
	return name
}

// Label returns the display name of a validation id
func Label(id string) string {
	if label, ok := validationLabels[id]; ok {
		return label
	}
	return id
}

// ToSentence capitalises s and ends it with a period
func ToSentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	s = string(unicode.ToUpper(r)) + s[size:]
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}

// Summary counts validations across all categories
type Summary struct {
	Pending int `json:"pending" yaml:"pending"`
	Failed  int `json:"failed" yaml:"failed"`
	Passed  int `json:"passed" yaml:"passed"`
}

// Summarize counts validations by status
func Summarize(info models.ValidationsInfo) Summary {
	var s Summary
	for _, list := range info {
		for _, v := range list {
			switch v.Status {
			case models.ValidationStatusPending:
				s.Pending++
			case models.ValidationStatusFailure:
				s.Failed++
			case models.ValidationStatusSuccess:
				s.Passed++
			}
		}
	}
	return s
}
