// Package pipeline orchestrates one full analysis run: join, merge, session
// assignment, per-record classification, session pattern detection and the
// final session ranking. Each stage fully consumes its input before the next
// begins; the run is single-threaded and deterministic.
package pipeline

import (
	"sort"

	"github.com/polcn/sap-log-analyzer2/internal/patterns"
	"github.com/polcn/sap-log-analyzer2/internal/refdata"
	"github.com/polcn/sap-log-analyzer2/internal/risk"
	"github.com/polcn/sap-log-analyzer2/internal/session"
	"github.com/polcn/sap-log-analyzer2/internal/timeline"
	"github.com/polcn/sap-log-analyzer2/pkg/logging"
	"github.com/polcn/sap-log-analyzer2/pkg/model"
)

// Input is the normalized record set handed to a run. All records must
// already satisfy the source/user/timestamp invariant; the input adapters
// drop and log malformed rows before this point.
type Input struct {
	SM20    []*model.LogRecord
	Headers []*model.LogRecord
	Items   []*model.LogRecord
}

// Options tune a run without changing its semantics.
type Options struct {
	Grouping model.GroupingMode
	// MergeTolerance is the allowed count drift in the merge
	// reconciliation. Zero demands an exact match.
	MergeTolerance int
}

// Result is everything the output consumers need: the annotated timeline,
// sessions ranked by maximum contained risk, run counts and accumulated
// non-fatal diagnostics.
type Result struct {
	Timeline []*model.LogRecord
	Sessions []*model.Session

	Counts      Counts
	Findings    patterns.Findings
	Diagnostics []string
}

// Counts is the record-count ledger carried through the run so count
// discrepancies are attributable to a stage.
type Counts struct {
	SM20        int
	Headers     int
	Items       int
	Joined      int
	HeaderOnly  int
	Orphans     int
	Merged      int
	Sessions    int
	DisplayFlag int
}

// Runner wires the stages together around a shared reference-data set.
type Runner struct {
	ref *refdata.Reference
	log *logging.Logger
}

func NewRunner(ref *refdata.Reference, log *logging.Logger) *Runner {
	if log == nil {
		log = logging.Discard()
	}
	return &Runner{ref: ref, log: log}
}

// Run executes the pipeline over one input batch. Precondition violations
// and merge count mismatches abort the run; orphan joins and unknown
// reference data degrade with a diagnostic instead.
func (r *Runner) Run(in Input, opts Options) (*Result, error) {
	res := &Result{}
	res.Counts.SM20 = len(in.SM20)
	res.Counts.Headers = len(in.Headers)
	res.Counts.Items = len(in.Items)

	joined := timeline.Join(in.Headers, in.Items, r.log)
	res.Counts.Joined = len(joined.Records)
	res.Counts.HeaderOnly = joined.HeaderOnly
	res.Counts.Orphans = joined.Orphans
	res.Diagnostics = append(res.Diagnostics, joined.Diagnostics...)

	merged, err := timeline.NewMerger(opts.MergeTolerance, r.log).Merge(in.SM20, joined.Records)
	if err != nil {
		return nil, err
	}
	res.Counts.Merged = len(merged)
	res.Timeline = merged

	if err := session.NewAssigner(opts.Grouping, r.log).Assign(merged); err != nil {
		return nil, err
	}
	res.Counts.DisplayFlag = timeline.MarkDisplayChanges(merged, r.ref)

	risk.NewClassifier(r.ref).ClassifyAll(merged)

	sessions := model.GroupSessions(merged)
	res.Counts.Sessions = len(sessions)
	res.Findings = patterns.NewDetector(r.ref, r.log).DetectAll(sessions)

	RankSessions(sessions)
	res.Sessions = sessions

	r.log.WithFields(map[string]any{
		"records":  res.Counts.Merged,
		"sessions": res.Counts.Sessions,
		"orphans":  res.Counts.Orphans,
	}).Info("analysis run complete")
	return res, nil
}

// RankSessions orders sessions by maximum contained risk descending, then by
// start time ascending, then by ID for a stable presentation order. Ranking
// never touches record order inside a session.
func RankSessions(sessions []*model.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		if a.MaxRisk() != b.MaxRisk() {
			return a.MaxRisk() > b.MaxRisk()
		}
		if !a.Start().Equal(b.Start()) {
			return a.Start().Before(b.Start())
		}
		return a.ID < b.ID
	})
}
