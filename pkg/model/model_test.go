package model_test

import (
	"testing"
	"time"

	"github.com/polcn/sap-log-analyzer2/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiskLevel_Ordering(t *testing.T) {
	assert.True(t, model.RiskLow < model.RiskMedium)
	assert.True(t, model.RiskMedium < model.RiskHigh)
	assert.True(t, model.RiskHigh < model.RiskCritical)
}

func TestRiskLevel_String(t *testing.T) {
	assert.Equal(t, "Low", model.RiskLow.String())
	assert.Equal(t, "Medium", model.RiskMedium.String())
	assert.Equal(t, "High", model.RiskHigh.String())
	assert.Equal(t, "Critical", model.RiskCritical.String())
}

func TestRiskAssessment_Escalate_NeverDowngrades(t *testing.T) {
	a := model.RiskAssessment{Level: model.RiskHigh}
	a.Escalate(model.RiskMedium)
	assert.Equal(t, model.RiskHigh, a.Level)

	a.Escalate(model.RiskCritical)
	assert.Equal(t, model.RiskCritical, a.Level)
}

func TestRiskAssessment_AddFactor_AppendOnly(t *testing.T) {
	var a model.RiskAssessment
	a.AddFactor("first")
	a.AddFactor("second")
	a.AddFactor("first")
	assert.Equal(t, []string{"first", "second", "first"}, a.Factors)
}

func TestChangeIndicator_IsChange(t *testing.T) {
	assert.True(t, model.ChangeInsert.IsChange())
	assert.True(t, model.ChangeUpdate.IsChange())
	assert.True(t, model.ChangeDelete.IsChange())
	assert.False(t, model.ChangeNone.IsChange())
}

func TestFormatSessionID(t *testing.T) {
	date := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "S0007 (2025-03-14)", model.FormatSessionID(7, date))
	assert.Equal(t, "S0008 (unknown)", model.FormatSessionID(8, time.Time{}))
}

func TestLogRecord_Valid(t *testing.T) {
	rec := &model.LogRecord{
		Source:    model.SourceSM20,
		User:      "JDOE",
		Timestamp: time.Now(),
	}
	assert.True(t, rec.Valid())

	assert.False(t, (&model.LogRecord{User: "JDOE", Timestamp: time.Now()}).Valid())
	assert.False(t, (&model.LogRecord{Source: model.SourceSM20, Timestamp: time.Now()}).Valid())
	assert.False(t, (&model.LogRecord{Source: model.SourceSM20, User: "JDOE"}).Valid())
}

func TestGroupSessions(t *testing.T) {
	ts := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	records := []*model.LogRecord{
		{Source: model.SourceSM20, User: "A", Timestamp: ts, SessionID: "S0001 (2025-01-02)"},
		{Source: model.SourceSM20, User: "A", Timestamp: ts.Add(time.Minute), SessionID: "S0001 (2025-01-02)"},
		{Source: model.SourceSM20, User: "B", Timestamp: ts, SessionID: "S0002 (2025-01-02)"},
	}

	sessions := model.GroupSessions(records)
	require.Len(t, sessions, 2)
	assert.Equal(t, "A", sessions[0].User)
	assert.Len(t, sessions[0].Records, 2)
	assert.Equal(t, "B", sessions[1].User)
	assert.Len(t, sessions[1].Records, 1)
}

func TestSession_MaxRisk(t *testing.T) {
	s := &model.Session{
		Records: []*model.LogRecord{
			{Risk: model.RiskAssessment{Level: model.RiskLow}},
			{Risk: model.RiskAssessment{Level: model.RiskHigh}},
			{Risk: model.RiskAssessment{Level: model.RiskMedium}},
		},
	}
	assert.Equal(t, model.RiskHigh, s.MaxRisk())
}
