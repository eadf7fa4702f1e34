package patterns

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polcn/sap-log-analyzer2/internal/refdata"
	"github.com/polcn/sap-log-analyzer2/internal/risk"
	"github.com/polcn/sap-log-analyzer2/pkg/logging"
	"github.com/polcn/sap-log-analyzer2/pkg/model"
)

func newDetector(t *testing.T) *Detector {
	t.Helper()
	return NewDetector(refdata.Default(), logging.Discard())
}

func sessionOf(records ...*model.LogRecord) *model.Session {
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	for i, rec := range records {
		if rec.User == "" {
			rec.User = "FF_ADMIN"
		}
		if rec.Timestamp.IsZero() {
			rec.Timestamp = base.Add(time.Duration(i) * time.Minute)
		}
		rec.SessionID = "S0001 (2025-03-10)"
	}
	return &model.Session{ID: "S0001 (2025-03-10)", User: "FF_ADMIN", Records: records}
}

// classify runs the context-free classifier first, the way the pipeline does.
func classify(t *testing.T, sess *model.Session) {
	t.Helper()
	risk.NewClassifier(refdata.Default()).ClassifyAll(sess.Records)
}

func TestAuthBypassTriple(t *testing.T) {
	fail := &model.LogRecord{
		Source:      model.SourceSM20,
		TCode:       "F110",
		EventCode:   "AU4",
		Description: "AUTH. CHECK: FAILED F110",
	}
	debug := &model.LogRecord{
		Source:    model.SourceSM20,
		EventCode: "CUK",
	}
	success := &model.LogRecord{
		Source:      model.SourceSM20,
		TCode:       "F110",
		Description: "AUTH. CHECK: PASSED",
	}
	sess := sessionOf(fail, debug, success)
	classify(t, sess)

	f := newDetector(t).Detect(sess)
	assert.True(t, f.AuthBypass)
	assert.Equal(t, model.RiskCritical, success.Risk.Level)
	assert.Contains(t, success.Risk.Factors, FactorAuthBypass)
	assert.Equal(t, model.RiskCritical, fail.Risk.Level)
	assert.Equal(t, model.RiskCritical, debug.Risk.Level)
}

func TestAuthBypassRequiresOrder(t *testing.T) {
	debug := &model.LogRecord{Source: model.SourceSM20, EventCode: "CUK"}
	fail := &model.LogRecord{
		Source:      model.SourceSM20,
		TCode:       "F110",
		EventCode:   "AU4",
		Description: "AUTH. CHECK: FAILED F110",
	}
	sess := sessionOf(debug, fail)
	classify(t, sess)

	f := newDetector(t).Detect(sess)
	assert.False(t, f.AuthBypass)
}

func TestAuthBypassNonAdjacentTriple(t *testing.T) {
	fail := &model.LogRecord{
		Source:      model.SourceSM20,
		TCode:       "F110",
		EventCode:   "AU4",
		Description: "AUTH. CHECK: FAILED F110",
	}
	noise := &model.LogRecord{Source: model.SourceSM20, Description: "LOGON"}
	debug := &model.LogRecord{Source: model.SourceSM20, Variable2: "D!"}
	noise2 := &model.LogRecord{Source: model.SourceSM20, Description: "LOGON"}
	success := &model.LogRecord{
		Source:      model.SourceSM20,
		TCode:       "F110",
		Description: "AUTH. CHECK: PASSED",
	}
	sess := sessionOf(fail, noise, debug, noise2, success)
	classify(t, sess)

	f := newDetector(t).Detect(sess)
	assert.True(t, f.AuthBypass)
	assert.Equal(t, model.RiskCritical, success.Risk.Level)
}

func TestDebugWithChangesEscalatesDebugRecord(t *testing.T) {
	debug := &model.LogRecord{Source: model.SourceSM20, EventCode: "CUL"}
	change := &model.LogRecord{
		Source:          model.SourceCDPOS,
		Table:           "ZCUSTOM",
		ChangeIndicator: model.ChangeUpdate,
	}
	sess := sessionOf(debug, change)
	classify(t, sess)

	f := newDetector(t).Detect(sess)
	assert.True(t, f.DebugWithStage)
	assert.False(t, f.Inventory)
	assert.Equal(t, model.RiskHigh, debug.Risk.Level)
	assert.Contains(t, debug.Risk.Factors, FactorDebugWithChanges)
	assert.NotContains(t, change.Risk.Factors, FactorDebugWithChanges)
}

func TestInventoryDebugEscalatesToCritical(t *testing.T) {
	debug := &model.LogRecord{Source: model.SourceSM20, Variable2: "D!"}
	change := &model.LogRecord{
		Source:          model.SourceCDPOS,
		Table:           "MBEW",
		ChangeIndicator: model.ChangeDelete,
	}
	sess := sessionOf(debug, change)
	classify(t, sess)

	f := newDetector(t).Detect(sess)
	assert.True(t, f.Inventory)
	assert.Equal(t, model.RiskCritical, debug.Risk.Level)
	assert.Contains(t, debug.Risk.Factors, FactorInventoryDebug)
	assert.NotContains(t, debug.Risk.Factors, FactorDebugWithChanges)
}

func TestDebugWithoutChangesDoesNotFire(t *testing.T) {
	debug := &model.LogRecord{Source: model.SourceSM20, EventCode: "CUK"}
	view := &model.LogRecord{Source: model.SourceSM20, Description: "DISPLAY TABLE"}
	sess := sessionOf(debug, view)
	classify(t, sess)

	f := newDetector(t).Detect(sess)
	assert.False(t, f.DebugWithStage)
	assert.NotContains(t, debug.Risk.Factors, FactorDebugWithChanges)
}

func TestStealthChangeMediumBaseline(t *testing.T) {
	rec := &model.LogRecord{
		Source:      model.SourceSM20,
		TCode:       "ZWRITE",
		Table:       "ZCONFIG",
		Description: "ACTIVITY 02 AUTH. CHECK: PASSED",
	}
	other := &model.LogRecord{Source: model.SourceSM20, Description: "LOGON"}
	sess := sessionOf(rec, other)
	classify(t, sess)

	f := newDetector(t).Detect(sess)
	assert.Equal(t, 1, f.StealthChanges)
	assert.Equal(t, model.RiskMedium, rec.Risk.Level)
	assert.Contains(t, rec.Risk.Factors, FactorStealthChange)
}

func TestStealthChangeInventoryTableIsHigh(t *testing.T) {
	rec := &model.LogRecord{
		Source:      model.SourceSM20,
		TCode:       "ZWRITE",
		Table:       "MBEW",
		Description: "ACTIVITY 02 AUTH. CHECK: PASSED",
	}
	sess := sessionOf(rec)
	classify(t, sess)

	newDetector(t).Detect(sess)
	assert.GreaterOrEqual(t, rec.Risk.Level, model.RiskHigh)
	assert.Contains(t, rec.Risk.Factors, FactorStealthChange)
}

func TestStealthChangeSuppressedByMatchingChangeDoc(t *testing.T) {
	rec := &model.LogRecord{
		Source:      model.SourceSM20,
		TCode:       "ZWRITE",
		Table:       "ZCONFIG",
		Description: "ACTIVITY 02 AUTH. CHECK: PASSED",
	}
	doc := &model.LogRecord{
		Source:          model.SourceCDPOS,
		Table:           "ZCONFIG",
		ChangeIndicator: model.ChangeUpdate,
	}
	sess := sessionOf(rec, doc)
	classify(t, sess)

	f := newDetector(t).Detect(sess)
	assert.Zero(t, f.StealthChanges)
	assert.NotContains(t, rec.Risk.Factors, FactorStealthChange)
}

func TestDebugSignalFlags(t *testing.T) {
	d := newDetector(t)
	cases := []*model.LogRecord{
		{EventCode: "CU_M"},
		{EventCode: "BU4"},
		{Variable2: "D!"},
		{VariableData: "I!"},
		{Description: "RFC CALL EVENT TYPE G!"},
	}
	for _, rec := range cases {
		assert.True(t, d.DebugSignal(rec), "expected debug signal for %+v", rec)
	}
}

func TestServiceTrafficIsNotDebug(t *testing.T) {
	d := newDetector(t)
	cases := []*model.LogRecord{
		{VariableFirst: "R3TR IWSV ZSERVICE_SRV"},
		{VariableFirst: "R3TR IWSG ZSERVICE_SG"},
		{VariableFirst: "R3TR G4BA GATEWAY"},
		{VariableData: "/sap/opu/odata/sap/ZSERVICE_SRV"},
	}
	for _, rec := range cases {
		assert.False(t, d.DebugSignal(rec), "service record misread as debug: %+v", rec)
		assert.True(t, d.ServiceInterface(rec))
	}
}

// Regression guard: a large all-service session must produce zero pattern
// escalations.
func TestServiceOnlySessionNoEscalations(t *testing.T) {
	records := make([]*model.LogRecord, 0, 10000)
	for i := 0; i < 10000; i++ {
		records = append(records, &model.LogRecord{
			Source:        model.SourceSM20,
			TCode:         "SICF",
			VariableFirst: "R3TR IWSV ZSERVICE_SRV",
			VariableData:  fmt.Sprintf("/sap/opu/odata/sap/ZSERVICE_SRV/%04d", i),
			Description:   "SERVICE CALL",
		})
	}
	sess := sessionOf(records...)
	classify(t, sess)

	f := newDetector(t).Detect(sess)
	assert.False(t, f.AuthBypass)
	assert.False(t, f.DebugWithStage)
	assert.False(t, f.Inventory)

	for _, rec := range sess.Records {
		require.Less(t, rec.Risk.Level, model.RiskCritical)
		assert.NotContains(t, rec.Risk.Factors, FactorAuthBypass)
		assert.NotContains(t, rec.Risk.Factors, FactorDebugWithChanges)
		assert.NotContains(t, rec.Risk.Factors, FactorInventoryDebug)
	}
}
