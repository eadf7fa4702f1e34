package pipeline

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polcn/sap-log-analyzer2/internal/refdata"
	"github.com/polcn/sap-log-analyzer2/pkg/logging"
	"github.com/polcn/sap-log-analyzer2/pkg/model"
)

func newRunner(t *testing.T) *Runner {
	t.Helper()
	return NewRunner(refdata.Default(), logging.Discard())
}

func at(offset int) time.Time {
	return time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC).Add(time.Duration(offset) * time.Second)
}

func bulkInput(sm20Count, changeCount int) Input {
	var in Input
	for i := 0; i < sm20Count; i++ {
		in.SM20 = append(in.SM20, &model.LogRecord{
			Source:    model.SourceSM20,
			User:      fmt.Sprintf("USER%02d", i%25),
			Timestamp: at(i),
		})
	}
	for i := 0; i < changeCount; i++ {
		doc := fmt.Sprintf("%010d", i)
		in.Headers = append(in.Headers, &model.LogRecord{
			Source:      model.SourceCDHDR,
			User:        fmt.Sprintf("USER%02d", i%25),
			Timestamp:   at(i),
			ObjectClass: "MATERIAL",
			ObjectID:    fmt.Sprintf("M%05d", i),
			DocNumber:   doc,
		})
		in.Items = append(in.Items, &model.LogRecord{
			Source:          model.SourceCDPOS,
			ObjectClass:     "MATERIAL",
			ObjectID:        fmt.Sprintf("M%05d", i),
			DocNumber:       doc,
			Table:           "ZTAB",
			Field:           "ZFIELD",
			ChangeIndicator: model.ChangeUpdate,
		})
	}
	return in
}

func TestRunMergeCompleteness(t *testing.T) {
	in := bulkInput(8714, 429)

	res, err := newRunner(t).Run(in, Options{Grouping: model.GroupByDate})
	require.NoError(t, err)
	assert.Len(t, res.Timeline, 9143)
	assert.Equal(t, 9143, res.Counts.Merged)
	assert.Equal(t, 429, res.Counts.Joined)

	for _, sess := range res.Sessions {
		for _, rec := range sess.Records {
			assert.Equal(t, sess.User, rec.User)
		}
	}
}

func TestRunSessionsNeverSpanDates(t *testing.T) {
	in := Input{SM20: []*model.LogRecord{
		{Source: model.SourceSM20, User: "FF_ADMIN", Timestamp: at(0)},
		{Source: model.SourceSM20, User: "FF_ADMIN", Timestamp: at(0).Add(24 * time.Hour)},
	}}

	res, err := newRunner(t).Run(in, Options{Grouping: model.GroupByDate})
	require.NoError(t, err)
	require.Len(t, res.Sessions, 2)
	for _, sess := range res.Sessions {
		date := sess.Records[0].Timestamp.Format("2006-01-02")
		for _, rec := range sess.Records {
			assert.Equal(t, date, rec.Timestamp.Format("2006-01-02"))
		}
	}
}

func TestRunMonotonicRisk(t *testing.T) {
	in := Input{SM20: []*model.LogRecord{
		{Source: model.SourceSM20, User: "FF_ADMIN", Timestamp: at(0), EventCode: "AU4", TCode: "F110", Description: "AUTH. CHECK: FAILED F110"},
		{Source: model.SourceSM20, User: "FF_ADMIN", Timestamp: at(1), EventCode: "CUK"},
		{Source: model.SourceSM20, User: "FF_ADMIN", Timestamp: at(2), TCode: "F110", Description: "AUTH. CHECK: PASSED"},
	}}

	res, err := newRunner(t).Run(in, Options{Grouping: model.GroupByDate})
	require.NoError(t, err)

	assert.True(t, res.Findings.AuthBypass)
	for _, rec := range res.Timeline {
		assert.NotEmpty(t, rec.Risk.Factors)
	}
	assert.Equal(t, model.RiskCritical, res.Timeline[2].Risk.Level)
}

func TestRunIdempotent(t *testing.T) {
	build := func() Input {
		in := bulkInput(50, 10)
		in.SM20 = append(in.SM20, &model.LogRecord{
			Source: model.SourceSM20, User: "USER01", Timestamp: at(5), EventCode: "CUK",
		})
		return in
	}

	first, err := newRunner(t).Run(build(), Options{Grouping: model.GroupByDate})
	require.NoError(t, err)
	second, err := newRunner(t).Run(build(), Options{Grouping: model.GroupByDate})
	require.NoError(t, err)

	require.Len(t, second.Timeline, len(first.Timeline))
	for i := range first.Timeline {
		a, b := first.Timeline[i], second.Timeline[i]
		assert.Equal(t, a.SessionID, b.SessionID)
		assert.Equal(t, a.Risk.Level, b.Risk.Level)
		assert.Equal(t, a.Risk.Factors, b.Risk.Factors)
	}
}

func TestRunSessionRanking(t *testing.T) {
	in := Input{SM20: []*model.LogRecord{
		{Source: model.SourceSM20, User: "AAA", Timestamp: at(0), Description: "LOGON"},
		{Source: model.SourceSM20, User: "BBB", Timestamp: at(0), TCode: "SU01"},
	}}

	res, err := newRunner(t).Run(in, Options{Grouping: model.GroupByDate})
	require.NoError(t, err)
	require.Len(t, res.Sessions, 2)
	assert.Equal(t, "BBB", res.Sessions[0].User)
	assert.GreaterOrEqual(t, res.Sessions[0].MaxRisk(), res.Sessions[1].MaxRisk())
}

func TestRunOrphanDiagnosticsSurface(t *testing.T) {
	// The item carries only what the CDPOS loader produces: no user and
	// no timestamp. Those are backfilled from the header on a match, so
	// an orphan reaches the pipeline without either.
	in := Input{
		SM20: []*model.LogRecord{
			{Source: model.SourceSM20, User: "FF_ADMIN", Timestamp: at(0)},
		},
		Items: []*model.LogRecord{
			{Source: model.SourceCDPOS, ObjectClass: "X", ObjectID: "Y", DocNumber: "1", Table: "ZTAB", ChangeIndicator: model.ChangeUpdate},
		},
	}

	res, err := newRunner(t).Run(in, Options{Grouping: model.GroupByDate})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Counts.Orphans)
	require.NotEmpty(t, res.Diagnostics)
	assert.Contains(t, res.Diagnostics[0], "orphan")
	require.Len(t, res.Timeline, 2)

	var orphan *model.LogRecord
	for _, rec := range res.Timeline {
		if rec.OrphanItem {
			orphan = rec
		}
	}
	require.NotNil(t, orphan)
	assert.Equal(t, "UNKNOWN", orphan.User)
	assert.True(t, orphan.Timestamp.IsZero())
	assert.Contains(t, orphan.SessionID, "unknown")
}

func TestRunInvalidRecordAborts(t *testing.T) {
	in := Input{SM20: []*model.LogRecord{
		{Source: model.SourceSM20, Timestamp: at(0)}, // missing user
	}}

	_, err := newRunner(t).Run(in, Options{Grouping: model.GroupByDate})
	require.Error(t, err)
}
