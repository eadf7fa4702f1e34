package timeline

import (
	"github.com/polcn/sap-log-analyzer2/internal/refdata"
	"github.com/polcn/sap-log-analyzer2/internal/session"
	"github.com/polcn/sap-log-analyzer2/pkg/errclass"
	"github.com/polcn/sap-log-analyzer2/pkg/logging"
	"github.com/polcn/sap-log-analyzer2/pkg/model"
)

// Merger combines the security-log stream with joined change documents into
// one deterministic timeline and verifies that no record was lost.
type Merger struct {
	// Tolerance is the maximum allowed absolute difference between the
	// merged count and the sum of input counts before the run aborts.
	// Zero means exact reconciliation.
	Tolerance int

	log *logging.Logger
}

func NewMerger(tolerance int, log *logging.Logger) *Merger {
	if log == nil {
		log = logging.Discard()
	}
	return &Merger{Tolerance: tolerance, log: log}
}

// Merge concatenates both input streams and stable-sorts by (user, timestamp,
// source priority) with security-log rows preceding change documents on
// identical timestamps. The output count is reconciled against the inputs and
// any discrepancy beyond the tolerance is a hard error, never a warning.
func (m *Merger) Merge(sm20, changes []*model.LogRecord) ([]*model.LogRecord, error) {
	expected := len(sm20) + len(changes)
	merged := make([]*model.LogRecord, 0, expected)
	merged = append(merged, sm20...)
	merged = append(merged, changes...)
	session.SortRecords(merged)

	if diff := abs(len(merged) - expected); diff > m.Tolerance {
		return nil, errclass.ErrCountMismatch.WithMessagef(
			"record count mismatch: expected %d, got %d (%d records lost during merge)",
			expected, len(merged), diff)
	}

	m.log.WithFields(map[string]any{
		"sm20":    len(sm20),
		"changes": len(changes),
		"merged":  len(merged),
	}).Info("timeline merge reconciled")
	return merged, nil
}

// MarkDisplayChanges flags security-log records whose description reads as
// display-only while a change document exists for the same user, table and
// session. The flag records the contradiction for reporting; risk escalation
// for it belongs to the pattern detector.
func MarkDisplayChanges(records []*model.LogRecord, ref *refdata.Reference) int {
	type changeKey struct {
		session string
		user    string
		table   string
	}
	changed := make(map[changeKey]bool)
	for _, rec := range records {
		if rec.Source != model.SourceSM20 && rec.ChangeIndicator.IsChange() {
			changed[changeKey{rec.SessionID, rec.User, rec.Table}] = true
		}
	}

	var flagged int
	for _, rec := range records {
		if rec.Source != model.SourceSM20 || rec.Table == "" {
			continue
		}
		if !ref.DisplayOnly(rec.Description) {
			continue
		}
		if changed[changeKey{rec.SessionID, rec.User, rec.Table}] {
			rec.DisplayButChanged = true
			flagged++
		}
	}
	return flagged
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
