// Package drilldown holds the click-to-drill-down selection on the employment
// chart.
//
// The selection is plain data. The caller owns it, passes it into each
// pipeline run and stores the one that comes back; nothing here keeps state
// between runs.
//
//	NoSelection --click(status)--> StatusSelected(status)
//	StatusSelected --deselect | context change--> NoSelection
//	StatusSelected --click(other)--> StatusSelected(other)
package drilldown

import (
	"sort"
	"strings"
)

// State of a selection
type State string

const (
	StateNone     State = "none"
	StateSelected State = "status_selected"
)

// Selection is the current drill-down choice. Context is the fingerprint of
// the filter criteria the selection was made under.
type Selection struct {
	Status  string `json:"status,omitempty"`
	Context string `json:"context,omitempty"`
}

// NoSelection is the zero selection
var NoSelection = Selection{}

// State reports which state the selection is in
func (s Selection) State() State {
	if s.Status == "" {
		return StateNone
	}
	return StateSelected
}

// EventKind is the type of a chart interaction
type EventKind string

const (
	EventClick    EventKind = "click"
	EventDeselect EventKind = "deselect"
)

// Event is a chart interaction sent by the widget layer
type Event struct {
	Kind     EventKind `json:"kind"`
	Category string    `json:"category,omitempty"`
}

// ChartKind says how a drill-down chart is computed
type ChartKind string

const (
	// KindGroup aggregates a prefix group over the filtered rows.
	KindGroup ChartKind = "group"
	// KindFieldAlignment splits employed graduates into in-field and
	// outside-field counts.
	KindFieldAlignment ChartKind = "field_alignment"
)

// ChartSpec describes one drill-down chart
type ChartSpec struct {
	Title  string    `json:"title"`
	Kind   ChartKind `json:"kind"`
	Prefix string    `json:"prefix,omitempty"`
}

// Table maps a selected status to the charts shown for it
type Table map[string][]ChartSpec

// DefaultTable is the lookup for the employment donut
func DefaultTable() Table {
	return Table{
		"Unemployed": {
			{Title: "Reasons for not working", Kind: KindGroup, Prefix: "Employment.Reason for Not Working."},
		},
		"Employed": {
			{Title: "Work activities", Kind: KindGroup, Prefix: "Employment.Work Activity."},
			{Title: "Field alignment", Kind: KindFieldAlignment},
		},
	}
}

// Statuses returns the categories that can be drilled into, sorted.
func (t Table) Statuses() []string {
	out := make([]string, 0, len(t))
	for k := range t {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Charts returns the specs for a selection; nil when nothing is selected or
// the status has no entry.
func (t Table) Charts(s Selection) []ChartSpec {
	if s.State() == StateNone {
		return nil
	}
	return t[s.Status]
}

// Reconcile drops a selection made under a different filter context.
func (s Selection) Reconcile(context string) Selection {
	if s.State() == StateSelected && s.Context != context {
		return NoSelection
	}
	return s
}

// Apply runs one transition. The context check happens first, so a click
// that arrives together with a filter change still lands. A click on a
// category the table does not know, or on nothing, deselects.
func (t Table) Apply(s Selection, ev *Event, context string) Selection {
	s = s.Reconcile(context)
	if ev == nil {
		return s
	}

	switch ev.Kind {
	case EventDeselect:
		return NoSelection
	case EventClick:
		category := strings.TrimSpace(ev.Category)
		if _, ok := t[category]; !ok {
			return NoSelection
		}
		return Selection{Status: category, Context: context}
	}
	return s
}
