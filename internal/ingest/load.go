package ingest

import (
	"strings"
	"time"

	"github.com/polcn/sap-log-analyzer2/pkg/errclass"
	"github.com/polcn/sap-log-analyzer2/pkg/logging"
	"github.com/polcn/sap-log-analyzer2/pkg/model"
)

// timestampLayouts covers the date/time renderings seen across SAP GUI and
// spreadsheet exports.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02.01.2006 15:04:05",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04:05",
	"2006-01-02",
	"02.01.2006",
	"01/02/2006",
}

// Loader turns raw export rows into validated LogRecords. Rows with an
// unparseable timestamp or missing user are dropped with a warning, never
// silently retained.
type Loader struct {
	log *logging.Logger

	// Dropped counts rows discarded across all Load calls.
	Dropped     int
	Diagnostics []string
}

func NewLoader(log *logging.Logger) *Loader {
	if log == nil {
		log = logging.Discard()
	}
	return &Loader{log: log}
}

// LoadSM20 reads a security audit log export.
func (l *Loader) LoadSM20(path string) ([]*model.LogRecord, error) {
	rows, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errclass.ErrInputMalformed.WithMessagef("%s: empty file", path)
	}
	ci := newColumnIndex(rows[0])
	if !ci.has("user") || !ci.has("date") {
		return nil, errclass.ErrInputMalformed.WithMessagef("%s: no user/date columns found", path)
	}

	var records []*model.LogRecord
	for n, row := range rows[1:] {
		ts, ok := l.parseTimestamp(ci.get(row, "date"), ci.get(row, "time"))
		user := strings.ToUpper(ci.get(row, "user"))
		if !ok || user == "" {
			l.drop(path, n+2, "missing user or unparseable timestamp")
			continue
		}
		records = append(records, &model.LogRecord{
			Source:        model.SourceSM20,
			User:          user,
			Timestamp:     ts,
			TCode:         strings.ToUpper(ci.get(row, "tcode")),
			EventCode:     strings.ToUpper(ci.get(row, "event")),
			Description:   ci.get(row, "message"),
			VariableFirst: ci.get(row, "var_first"),
			Variable2:     ci.get(row, "var_2"),
			VariableData:  ci.get(row, "var_data"),
			Ticket:        ci.get(row, "sysaid"),
		})
	}
	l.log.WithFields(map[string]any{"path": path, "records": len(records)}).Info("loaded security audit log")
	return records, nil
}

// LoadCDHDR reads a change-document header export.
func (l *Loader) LoadCDHDR(path string) ([]*model.LogRecord, error) {
	rows, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errclass.ErrInputMalformed.WithMessagef("%s: empty file", path)
	}
	ci := newColumnIndex(rows[0])
	if !ci.has("user") || !ci.has("doc_number") {
		return nil, errclass.ErrInputMalformed.WithMessagef("%s: no user/doc.number columns found", path)
	}

	var records []*model.LogRecord
	for n, row := range rows[1:] {
		ts, ok := l.parseTimestamp(ci.get(row, "date"), ci.get(row, "time"))
		user := strings.ToUpper(ci.get(row, "user"))
		if !ok || user == "" {
			l.drop(path, n+2, "missing user or unparseable timestamp")
			continue
		}
		records = append(records, &model.LogRecord{
			Source:      model.SourceCDHDR,
			User:        user,
			Timestamp:   ts,
			TCode:       strings.ToUpper(ci.get(row, "tcode")),
			ObjectClass: strings.ToUpper(ci.get(row, "object")),
			ObjectID:    ci.get(row, "object_id"),
			DocNumber:   ci.get(row, "doc_number"),
			Ticket:      ci.get(row, "sysaid"),
		})
	}
	l.log.WithFields(map[string]any{"path": path, "records": len(records)}).Info("loaded change document headers")
	return records, nil
}

// LoadCDPOS reads a change-document item export. Items carry no user or
// timestamp of their own; both arrive from the header during the join.
func (l *Loader) LoadCDPOS(path string) ([]*model.LogRecord, error) {
	rows, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errclass.ErrInputMalformed.WithMessagef("%s: empty file", path)
	}
	ci := newColumnIndex(rows[0])
	if !ci.has("doc_number") || !ci.has("table") {
		return nil, errclass.ErrInputMalformed.WithMessagef("%s: no doc.number/table columns found", path)
	}

	var records []*model.LogRecord
	for n, row := range rows[1:] {
		doc := ci.get(row, "doc_number")
		if doc == "" {
			l.drop(path, n+2, "missing document number")
			continue
		}
		records = append(records, &model.LogRecord{
			Source:          model.SourceCDPOS,
			ObjectClass:     strings.ToUpper(ci.get(row, "object")),
			ObjectID:        ci.get(row, "object_id"),
			DocNumber:       doc,
			Table:           strings.ToUpper(ci.get(row, "table")),
			Field:           strings.ToUpper(ci.get(row, "field")),
			ChangeIndicator: normalizeIndicator(ci.get(row, "indicator")),
			OldValue:        ci.get(row, "old_value"),
			NewValue:        ci.get(row, "new_value"),
		})
	}
	l.log.WithFields(map[string]any{"path": path, "records": len(records)}).Info("loaded change document items")
	return records, nil
}

// normalizeIndicator maps raw change-indicator codes onto the four-value
// enum. Unknown codes mean display/no-change.
func normalizeIndicator(raw string) model.ChangeIndicator {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "I":
		return model.ChangeInsert
	case "U":
		return model.ChangeUpdate
	case "D":
		return model.ChangeDelete
	default:
		return model.ChangeNone
	}
}

func (l *Loader) parseTimestamp(date, clock string) (time.Time, bool) {
	candidate := strings.TrimSpace(strings.TrimSpace(date) + " " + strings.TrimSpace(clock))
	if candidate == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, candidate); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func (l *Loader) drop(path string, line int, reason string) {
	l.Dropped++
	l.Diagnostics = append(l.Diagnostics, path+": dropped row: "+reason)
	l.log.WithFields(map[string]any{"path": path, "line": line}).Warnf("dropped row: %s", reason)
}
