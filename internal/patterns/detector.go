// Package patterns performs cross-record escalation within a session. It is
// the only stage allowed to raise a record to Critical.
package patterns

import (
	"strings"

	"github.com/polcn/sap-log-analyzer2/internal/refdata"
	"github.com/polcn/sap-log-analyzer2/pkg/logging"
	"github.com/polcn/sap-log-analyzer2/pkg/model"
)

const (
	FactorAuthBypass       = "Authorization bypass pattern: failed action -> debugging -> matching success"
	FactorDebugWithChanges = "Debugging combined with data changes in same session"
	FactorInventoryDebug   = "Debug-enabled change to inventory valuation/potency field"
	FactorStealthChange    = "Potential unlogged change: authorization for change granted but no change document found"
)

// Detector evaluates the session-level patterns against the chronological
// record order produced by the merger. The tie-break order matters: the
// bypass triple is positional.
type Detector struct {
	ref *refdata.Reference
	log *logging.Logger
}

func NewDetector(ref *refdata.Reference, log *logging.Logger) *Detector {
	if log == nil {
		log = logging.Discard()
	}
	return &Detector{ref: ref, log: log}
}

// Findings summarizes pattern hits for one session.
type Findings struct {
	AuthBypass     bool
	DebugWithStage bool
	Inventory      bool
	StealthChanges int
}

// Detect runs all patterns over one session. Records are only ever escalated,
// never downgraded; sessions too short for a pattern simply do not match.
func (d *Detector) Detect(sess *model.Session) Findings {
	var f Findings
	f.AuthBypass = d.detectAuthBypass(sess)
	f.DebugWithStage, f.Inventory = d.detectDebugWithChanges(sess)
	f.StealthChanges = d.detectStealthChanges(sess)

	if f.AuthBypass || f.DebugWithStage || f.StealthChanges > 0 {
		d.log.WithFields(map[string]any{
			"session":     sess.ID,
			"user":        sess.User,
			"auth_bypass": f.AuthBypass,
			"debug_chg":   f.DebugWithStage,
			"inventory":   f.Inventory,
			"stealth":     f.StealthChanges,
		}).Info("session pattern detected")
	}
	return f
}

// DetectAll runs Detect over every session and merges the findings.
func (d *Detector) DetectAll(sessions []*model.Session) Findings {
	var total Findings
	for _, sess := range sessions {
		f := d.Detect(sess)
		total.AuthBypass = total.AuthBypass || f.AuthBypass
		total.DebugWithStage = total.DebugWithStage || f.DebugWithStage
		total.Inventory = total.Inventory || f.Inventory
		total.StealthChanges += f.StealthChanges
	}
	return total
}

// detectAuthBypass scans for the ordered triple: an authorization failure,
// then a debug signal, then a success on a similar transaction. All three
// participating records are escalated.
func (d *Detector) detectAuthBypass(sess *model.Session) bool {
	recs := sess.Records
	if len(recs) < 3 {
		return false
	}
	for i := 0; i < len(recs)-2; i++ {
		if !d.ref.AuthFailure(recs[i]) {
			continue
		}
		for j := i + 1; j < len(recs)-1; j++ {
			if !d.DebugSignal(recs[j]) {
				continue
			}
			for k := j + 1; k < len(recs); k++ {
				if !d.similarSuccess(recs[i], recs[k]) {
					continue
				}
				for _, rec := range []*model.LogRecord{recs[i], recs[j], recs[k]} {
					rec.Risk.Escalate(model.RiskCritical)
					rec.Risk.AddFactor(FactorAuthBypass)
				}
				return true
			}
		}
	}
	return false
}

// similarSuccess reports whether candidate looks like a successful retry of
// the failed record: same transaction code, the failed code referenced in the
// description, or an explicit passed-check marker.
func (d *Detector) similarSuccess(failed, candidate *model.LogRecord) bool {
	if !d.ref.AuthSuccess(candidate) && d.ref.AuthFailure(candidate) {
		return false
	}
	if failed.TCode != "" && failed.TCode == candidate.TCode && !d.ref.AuthFailure(candidate) {
		return true
	}
	if failed.TCode != "" && strings.Contains(strings.ToUpper(candidate.Description), failed.TCode) {
		return true
	}
	return d.ref.AuthSuccess(candidate)
}

// detectDebugWithChanges escalates every debug-signal record in a session
// that also contains actual data changes. Changes touching the inventory
// valuation/potency set push the escalation to Critical instead of High.
func (d *Detector) detectDebugWithChanges(sess *model.Session) (detected, inventory bool) {
	var debugRecs []*model.LogRecord
	for _, rec := range sess.Records {
		if d.DebugSignal(rec) {
			debugRecs = append(debugRecs, rec)
		}
	}
	if len(debugRecs) == 0 {
		return false, false
	}

	var hasChange bool
	for _, rec := range sess.Records {
		if !rec.ChangeIndicator.IsChange() {
			continue
		}
		hasChange = true
		if d.ref.InventorySensitive(rec.Table, rec.Field) {
			inventory = true
		}
	}
	if !hasChange {
		return false, false
	}

	for _, rec := range debugRecs {
		if rec.Risk.ActivityType == model.ActivityView {
			continue
		}
		if inventory {
			rec.Risk.Escalate(model.RiskCritical)
			rec.Risk.AddFactor(FactorInventoryDebug)
		} else {
			rec.Risk.Escalate(model.RiskHigh)
			rec.Risk.AddFactor(FactorDebugWithChanges)
		}
	}
	return true, inventory
}

// detectStealthChanges finds security-log rows granted a change authorization
// with no change document anywhere in the session for the same table. The
// baseline is Medium; inventory-sensitive tables raise it to High.
func (d *Detector) detectStealthChanges(sess *model.Session) int {
	changedTables := make(map[string]bool)
	var anyChangeDoc bool
	for _, rec := range sess.Records {
		if rec.Source != model.SourceSM20 {
			anyChangeDoc = true
			changedTables[strings.ToUpper(rec.Table)] = true
		}
	}

	var hits int
	for _, rec := range sess.Records {
		if rec.Source != model.SourceSM20 {
			continue
		}
		if !d.ref.ChangeActivity(rec.Description) || !d.ref.AuthSuccess(rec) {
			continue
		}
		if rec.OldValue != "" || rec.NewValue != "" {
			continue
		}
		table := strings.ToUpper(rec.Table)
		if table != "" && changedTables[table] {
			continue
		}
		if table == "" && anyChangeDoc {
			continue
		}

		level := model.RiskMedium
		if d.ref.InventorySensitive(table, "") {
			level = model.RiskHigh
		}
		rec.Risk.Escalate(level)
		rec.Risk.AddFactor(FactorStealthChange)
		hits++
	}
	return hits
}

// DebugSignal reports whether a record indicates real debugger interaction:
// a known debug event code, or a debug type flag in the auxiliary variable
// fields or description. Service-interface signatures such as gateway or
// OData access deliberately do not match; conflating the two once inflated
// debug counts from 13 to over 8,000 on representative data.
func (d *Detector) DebugSignal(rec *model.LogRecord) bool {
	if _, ok := d.ref.DebugMessageCode(rec.EventCode); ok {
		return true
	}
	desc := strings.ToUpper(rec.Description)
	for _, flag := range d.ref.DebugFlags() {
		if strings.Contains(rec.Variable2, flag) ||
			strings.Contains(rec.VariableData, flag) ||
			strings.Contains(desc, "EVENT TYPE "+flag) {
			return true
		}
	}
	return false
}

// ServiceInterface reports whether a record carries a known service or
// gateway call signature. Kept disjoint from DebugSignal by construction.
func (d *Detector) ServiceInterface(rec *model.LogRecord) bool {
	return d.ref.ServiceSignature(rec.VariableFirst) || d.ref.ServiceSignature(rec.VariableData)
}
