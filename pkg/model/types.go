package model

// Source identifies the originating SAP export for a log record.
type Source string

const (
	SourceSM20  Source = "SM20"
	SourceCDHDR Source = "CDHDR"
	SourceCDPOS Source = "CDPOS"
)

// ChangeIndicator is the normalized CDPOS change type.
type ChangeIndicator string

const (
	ChangeInsert ChangeIndicator = "I"
	ChangeUpdate ChangeIndicator = "U"
	ChangeDelete ChangeIndicator = "D"
	ChangeNone   ChangeIndicator = ""
)

// IsChange reports whether the indicator represents an actual data change.
func (c ChangeIndicator) IsChange() bool {
	return c == ChangeInsert || c == ChangeUpdate || c == ChangeDelete
}

// RiskLevel is a totally ordered severity scale. Critical is maximal.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
	RiskCritical
)

// String returns the display name for the risk level.
func (r RiskLevel) String() string {
	switch r {
	case RiskCritical:
		return "Critical"
	case RiskHigh:
		return "High"
	case RiskMedium:
		return "Medium"
	default:
		return "Low"
	}
}

// MarshalText implements encoding.TextMarshaler so risk levels serialize
// as their display names in JSON and YAML output.
func (r RiskLevel) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// MaxRisk returns the higher of two risk levels.
func MaxRisk(a, b RiskLevel) RiskLevel {
	if a > b {
		return a
	}
	return b
}

// ActivityType classifies what a record represents.
type ActivityType string

const (
	ActivityView    ActivityType = "View"
	ActivityCreate  ActivityType = "Create"
	ActivityUpdate  ActivityType = "Update"
	ActivityDelete  ActivityType = "Delete"
	ActivityDebug   ActivityType = "Debug"
	ActivityUnknown ActivityType = "Unknown"
)

// GroupingMode selects the session boundary rule. Date and ticket grouping
// are mutually exclusive per run.
type GroupingMode string

const (
	GroupByDate   GroupingMode = "date"
	GroupByTicket GroupingMode = "ticket"
)
