package model

import (
	"time"
)

// LogRecord is the normalized representation of one event from any source.
// Original log fields are set once during ingestion and treated as immutable;
// SessionID and Risk are additive annotations applied by later pipeline stages.
type LogRecord struct {
	Source    Source    `json:"source"`
	User      string    `json:"user"`
	Timestamp time.Time `json:"timestamp"`

	TCode           string          `json:"transaction_code,omitempty"`
	Table           string          `json:"table,omitempty"`
	Field           string          `json:"field,omitempty"`
	ChangeIndicator ChangeIndicator `json:"change_indicator,omitempty"`
	OldValue        string          `json:"old_value,omitempty"`
	NewValue        string          `json:"new_value,omitempty"`

	// Change-document linkage (CDHDR/CDPOS only).
	ObjectClass string `json:"object_class,omitempty"`
	ObjectID    string `json:"object_id,omitempty"`
	DocNumber   string `json:"doc_number,omitempty"`

	Description   string `json:"description,omitempty"`
	EventCode     string `json:"event_code,omitempty"`
	VariableFirst string `json:"variable_first,omitempty"`
	Variable2     string `json:"variable_2,omitempty"`
	VariableData  string `json:"variable_data,omitempty"`

	Ticket string `json:"sysaid_ticket,omitempty"`

	// OrphanItem marks a CDPOS item that had no matching CDHDR header.
	OrphanItem bool `json:"orphan_item,omitempty"`

	// DisplayButChanged marks a record whose description indicates a
	// display-only activity while sibling change documents exist in the
	// same session. Set by the timeline merger.
	DisplayButChanged bool `json:"display_but_changed,omitempty"`

	// Annotations.
	SessionID string         `json:"session_id,omitempty"`
	Risk      RiskAssessment `json:"risk"`
}

// Valid reports whether the record satisfies the merger precondition:
// non-empty source, user and timestamp.
func (r *LogRecord) Valid() bool {
	return r.Source != "" && r.User != "" && !r.Timestamp.IsZero()
}

// RiskAssessment carries the classification outcome for one record.
// The level only ever escalates and factors are append-only, preserving
// the detection order as an audit trail.
type RiskAssessment struct {
	Level        RiskLevel    `json:"risk_level"`
	Factors      []string     `json:"risk_factors,omitempty"`
	ActivityType ActivityType `json:"activity_type,omitempty"`
}

// Escalate raises the level to at least min. It never downgrades.
func (a *RiskAssessment) Escalate(min RiskLevel) {
	if min > a.Level {
		a.Level = min
	}
}

// AddFactor appends a rationale string. Factors are never deduplicated
// or reordered.
func (a *RiskAssessment) AddFactor(factor string) {
	a.Factors = append(a.Factors, factor)
}
