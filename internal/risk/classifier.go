// Package risk assigns a per-record risk assessment from context-free rules.
// Cross-record escalation lives in the patterns package; this classifier
// never emits Critical.
package risk

import (
	"fmt"
	"strings"

	"github.com/polcn/sap-log-analyzer2/internal/refdata"
	"github.com/polcn/sap-log-analyzer2/pkg/model"
)

// Factor strings are stable text: they end up verbatim in audit reports and
// downstream tooling greps for them.
const (
	FactorSensitiveTable    = "Sensitive table access"
	FactorSensitiveTCode    = "Sensitive transaction code"
	FactorDisplayButChanged = "Display transaction with underlying changes"
	FactorInsertOperation   = "Insert operation"
	FactorDeleteOperation   = "Delete operation"
	FactorUpdateOperation   = "Update operation"
	FactorRoutineActivity   = "Routine/display activity"
)

// Classifier evaluates every rule against a single record. All matching
// rules append a factor; the record's level is the maximum across them.
type Classifier struct {
	ref *refdata.Reference
}

func NewClassifier(ref *refdata.Reference) *Classifier {
	return &Classifier{ref: ref}
}

// Classify fills rec.Risk in place. Unknown tables, transaction codes and
// fields match no rule and fall through to Low, which is deliberate policy
// rather than an error.
func (c *Classifier) Classify(rec *model.LogRecord) {
	assessment := model.RiskAssessment{Level: model.RiskLow}

	if _, ok := c.ref.SensitiveTable(rec.Table); ok {
		assessment.Escalate(model.RiskHigh)
		assessment.AddFactor(FactorSensitiveTable)
	}
	if _, ok := c.ref.SensitiveTCode(rec.TCode); ok {
		assessment.Escalate(model.RiskHigh)
		assessment.AddFactor(FactorSensitiveTCode)
	}
	if category, ok := c.ref.MatchCriticalField(rec.Field); ok {
		assessment.Escalate(model.RiskHigh)
		assessment.AddFactor(fmt.Sprintf("Critical field: %s", category))
	}
	if rec.DisplayButChanged {
		assessment.Escalate(model.RiskHigh)
		assessment.AddFactor(FactorDisplayButChanged)
	}
	switch rec.ChangeIndicator {
	case model.ChangeInsert:
		assessment.Escalate(model.RiskHigh)
		assessment.AddFactor(FactorInsertOperation)
	case model.ChangeDelete:
		assessment.Escalate(model.RiskHigh)
		assessment.AddFactor(FactorDeleteOperation)
	case model.ChangeUpdate:
		assessment.Escalate(model.RiskMedium)
		assessment.AddFactor(FactorUpdateOperation)
	}
	if class, ok := c.ref.EventClass(rec.EventCode); ok && class == refdata.EventCritical {
		assessment.Escalate(model.RiskHigh)
		if desc := c.ref.EventDescription(rec.EventCode); desc != "" {
			assessment.AddFactor(fmt.Sprintf("SAP event %s: %s", rec.EventCode, desc))
		} else {
			assessment.AddFactor(fmt.Sprintf("SAP event %s", rec.EventCode))
		}
	}

	if len(assessment.Factors) == 0 {
		assessment.AddFactor(FactorRoutineActivity)
	}

	assessment.ActivityType = c.activityType(rec)
	rec.Risk = assessment
}

// ClassifyAll classifies every record in order.
func (c *Classifier) ClassifyAll(records []*model.LogRecord) {
	for _, rec := range records {
		c.Classify(rec)
	}
}

// activityType derives the record's activity category. Table-browser
// transactions that report an authorization probe for "change" without any
// actual change indicator are views, not updates; treating them as updates
// produced persistent false positives on routine browsing.
func (c *Classifier) activityType(rec *model.LogRecord) model.ActivityType {
	if c.isAuthorizationProbe(rec) {
		return model.ActivityView
	}
	switch rec.ChangeIndicator {
	case model.ChangeInsert:
		return model.ActivityCreate
	case model.ChangeUpdate:
		return model.ActivityUpdate
	case model.ChangeDelete:
		return model.ActivityDelete
	}
	if _, ok := c.ref.DebugMessageCode(rec.EventCode); ok {
		return model.ActivityDebug
	}
	desc := strings.ToUpper(rec.Description)
	if c.ref.ChangeActivity(desc) {
		return model.ActivityUpdate
	}
	if c.ref.DisplayOnly(desc) {
		return model.ActivityView
	}
	return model.ActivityUnknown
}

// isAuthorizationProbe reports whether the record is a table-browser
// authorization check that passed without producing data changes.
func (c *Classifier) isAuthorizationProbe(rec *model.LogRecord) bool {
	if rec.Source != model.SourceSM20 || !c.ref.TableBrowser(rec.TCode) {
		return false
	}
	if rec.ChangeIndicator.IsChange() || rec.OldValue != "" || rec.NewValue != "" {
		return false
	}
	desc := strings.ToUpper(rec.Description)
	return c.ref.ChangeActivity(desc) && c.ref.AuthSuccess(rec)
}
