// Package refdata supplies the static sensitivity sets consumed by the risk
// classifier and pattern detectors. The sets are configuration data, injected
// at construction time and immutable afterwards, so synthetic sets can be used
// in tests without touching package state.
package refdata

import (
	"regexp"
	"strings"

	"github.com/polcn/sap-log-analyzer2/pkg/errclass"
	"github.com/polcn/sap-log-analyzer2/pkg/model"
)

// FieldPattern is one critical-field rule: a case-insensitive regex plus the
// category label reported in risk factors. Order matters: the first matching
// pattern wins the category label.
type FieldPattern struct {
	Pattern  string
	Category string

	re *regexp.Regexp
}

// EventClass is SAP's own criticality classification for an audit event code.
type EventClass string

const (
	EventCritical    EventClass = "Critical"
	EventImportant   EventClass = "Important"
	EventNonCritical EventClass = "Non-Critical"
)

// Reference holds every lookup set used during risk assessment. Build one
// with New (built-in defaults) or Load (YAML override); do not mutate after
// construction.
type Reference struct {
	sensitiveTables map[string]string // table -> description
	sensitiveTCodes map[string]string // tcode -> description
	fieldPatterns   []FieldPattern
	fieldExclusions map[string]struct{} // exact field names exempt from pattern rules

	inventoryTables map[string]string // table -> description
	inventoryFields map[string]string // field -> description

	debugMessageCodes map[string]string // SM20 message code -> description
	debugFlags        []string          // variable-data markers (D!, I!, G!)

	// Service-interface signatures. Disjoint from the debug set: traffic
	// matching these is never counted as debugging.
	serviceSignatures []string

	eventClasses      map[string]EventClass
	eventDescriptions map[string]string

	tableBrowserTCodes map[string]struct{} // SE16 family

	authFailureMarkers []string
	authSuccessMarkers []string
	displayMarkers     []string
	changeActivity     string // SM20 activity code meaning "change"
}

// Config is the serializable form of Reference, used for YAML overrides.
type Config struct {
	SensitiveTables    map[string]string `yaml:"sensitive_tables"`
	SensitiveTCodes    map[string]string `yaml:"sensitive_tcodes"`
	FieldPatterns      []FieldPatternDef `yaml:"critical_field_patterns"`
	FieldExclusions    []string          `yaml:"field_exclusions"`
	InventoryTables    map[string]string `yaml:"inventory_tables"`
	InventoryFields    map[string]string `yaml:"inventory_fields"`
	DebugMessageCodes  map[string]string `yaml:"debug_message_codes"`
	DebugFlags         []string          `yaml:"debug_flags"`
	ServiceSignatures  []string          `yaml:"service_signatures"`
	EventClasses       map[string]string `yaml:"event_classes"`
	EventDescriptions  map[string]string `yaml:"event_descriptions"`
	TableBrowserTCodes []string          `yaml:"table_browser_tcodes"`
	AuthFailureMarkers []string          `yaml:"auth_failure_markers"`
	AuthSuccessMarkers []string          `yaml:"auth_success_markers"`
	DisplayMarkers     []string          `yaml:"display_markers"`
}

// FieldPatternDef is the YAML form of a FieldPattern.
type FieldPatternDef struct {
	Pattern  string `yaml:"pattern"`
	Category string `yaml:"category"`
}

// New builds a Reference from a Config. Every key is upper-cased for
// case-insensitive lookup. Invalid regex patterns are rejected.
func New(cfg Config) (*Reference, error) {
	r := &Reference{
		sensitiveTables:    upperKeys(cfg.SensitiveTables),
		sensitiveTCodes:    upperKeys(cfg.SensitiveTCodes),
		fieldExclusions:    upperSet(cfg.FieldExclusions),
		inventoryTables:    upperKeys(cfg.InventoryTables),
		inventoryFields:    upperKeys(cfg.InventoryFields),
		debugMessageCodes:  upperKeys(cfg.DebugMessageCodes),
		debugFlags:         append([]string(nil), cfg.DebugFlags...),
		serviceSignatures:  append([]string(nil), cfg.ServiceSignatures...),
		eventDescriptions:  upperKeys(cfg.EventDescriptions),
		tableBrowserTCodes: upperSet(cfg.TableBrowserTCodes),
		authFailureMarkers: upperAll(cfg.AuthFailureMarkers),
		authSuccessMarkers: upperAll(cfg.AuthSuccessMarkers),
		displayMarkers:     upperAll(cfg.DisplayMarkers),
		changeActivity:     "ACTIVITY 02",
	}

	r.eventClasses = make(map[string]EventClass, len(cfg.EventClasses))
	for code, class := range cfg.EventClasses {
		switch EventClass(class) {
		case EventCritical, EventImportant, EventNonCritical:
			r.eventClasses[strings.ToUpper(code)] = EventClass(class)
		default:
			return nil, errclass.ErrRefDataInvalid.WithMessagef(
				"event code %s: unknown class %q", code, class)
		}
	}

	for _, def := range cfg.FieldPatterns {
		re, err := regexp.Compile("(?i)" + def.Pattern)
		if err != nil {
			return nil, errclass.ErrRefDataInvalid.WithMessagef(
				"field pattern %q: %v", def.Pattern, err)
		}
		r.fieldPatterns = append(r.fieldPatterns, FieldPattern{
			Pattern:  def.Pattern,
			Category: def.Category,
			re:       re,
		})
	}

	return r, nil
}

// SensitiveTable returns the description for a sensitive table, if listed.
func (r *Reference) SensitiveTable(table string) (string, bool) {
	desc, ok := r.sensitiveTables[strings.ToUpper(strings.TrimSpace(table))]
	return desc, ok && table != ""
}

// SensitiveTCode returns the description for a sensitive transaction code.
func (r *Reference) SensitiveTCode(tcode string) (string, bool) {
	desc, ok := r.sensitiveTCodes[strings.ToUpper(strings.TrimSpace(tcode))]
	return desc, ok && tcode != ""
}

// MatchCriticalField returns the category of the first critical-field pattern
// matching the field name. Excluded field names never match.
func (r *Reference) MatchCriticalField(field string) (string, bool) {
	f := strings.ToUpper(strings.TrimSpace(field))
	if f == "" {
		return "", false
	}
	if _, excluded := r.fieldExclusions[f]; excluded {
		return "", false
	}
	for _, p := range r.fieldPatterns {
		if p.re.MatchString(f) {
			return p.Category, true
		}
	}
	return "", false
}

// InventorySensitive reports whether a table or field belongs to the
// inventory-sensitive set (material valuation, potency, batch data).
func (r *Reference) InventorySensitive(table, field string) bool {
	if _, ok := r.inventoryTables[strings.ToUpper(strings.TrimSpace(table))]; ok && table != "" {
		return true
	}
	_, ok := r.inventoryFields[strings.ToUpper(strings.TrimSpace(field))]
	return ok && field != ""
}

// DebugMessageCode returns the description for a message code known to
// indicate debugger interaction.
func (r *Reference) DebugMessageCode(code string) (string, bool) {
	desc, ok := r.debugMessageCodes[strings.ToUpper(strings.TrimSpace(code))]
	return desc, ok && code != ""
}

// DebugFlags returns the variable-data markers that indicate a debug session.
func (r *Reference) DebugFlags() []string { return r.debugFlags }

// ServiceSignature reports whether the variable data matches a known
// service-interface or gateway call signature.
func (r *Reference) ServiceSignature(varData string) bool {
	for _, sig := range r.serviceSignatures {
		if strings.Contains(varData, sig) {
			return true
		}
	}
	return false
}

// EventClass returns SAP's classification for an audit event code.
func (r *Reference) EventClass(code string) (EventClass, bool) {
	class, ok := r.eventClasses[strings.ToUpper(strings.TrimSpace(code))]
	return class, ok && code != ""
}

// EventDescription returns the human-readable description for an event code.
func (r *Reference) EventDescription(code string) string {
	return r.eventDescriptions[strings.ToUpper(strings.TrimSpace(code))]
}

// TableBrowser reports whether the transaction code is a direct table
// browser (the SE16 family).
func (r *Reference) TableBrowser(tcode string) bool {
	_, ok := r.tableBrowserTCodes[strings.ToUpper(strings.TrimSpace(tcode))]
	return ok
}

// AuthFailure reports whether a record's event code or description signals
// an authorization or transaction-start failure.
func (r *Reference) AuthFailure(rec *model.LogRecord) bool {
	if strings.EqualFold(strings.TrimSpace(rec.EventCode), "AU4") {
		return true
	}
	desc := strings.ToUpper(rec.Description)
	for _, marker := range r.authFailureMarkers {
		if strings.Contains(desc, marker) {
			return true
		}
	}
	return false
}

// AuthSuccess reports whether a record's description signals a passed
// authorization check.
func (r *Reference) AuthSuccess(rec *model.LogRecord) bool {
	desc := strings.ToUpper(rec.Description)
	for _, marker := range r.authSuccessMarkers {
		if strings.Contains(desc, marker) {
			return true
		}
	}
	return false
}

// DisplayOnly reports whether the description indicates a display-only
// activity.
func (r *Reference) DisplayOnly(description string) bool {
	desc := strings.ToUpper(description)
	for _, marker := range r.displayMarkers {
		if strings.Contains(desc, marker) {
			return true
		}
	}
	return false
}

// ChangeActivity reports whether the description carries the SM20 activity
// code meaning "change" (activity 02).
func (r *Reference) ChangeActivity(description string) bool {
	return strings.Contains(strings.ToUpper(description), r.changeActivity)
}

func upperKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	return out
}

func upperSet(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, it := range items {
		out[strings.ToUpper(strings.TrimSpace(it))] = struct{}{}
	}
	return out
}

func upperAll(items []string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = strings.ToUpper(it)
	}
	return out
}
