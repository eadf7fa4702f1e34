package report

import (
	"fmt"
	"io"

	"github.com/polcn/sap-log-analyzer2/internal/pipeline"
	"github.com/polcn/sap-log-analyzer2/pkg/model"
)

// WriteText renders the run summary as plain text for terminals and run logs.
func WriteText(w io.Writer, res *pipeline.Result) error {
	sum := Summarize(res)

	p := func(format string, args ...any) {
		fmt.Fprintf(w, format+"\n", args...)
	}

	p("SAP AUDIT ANALYSIS SUMMARY")
	p("==========================")
	p("")
	p("Records analyzed:   %d", sum.TotalRecords)
	p("  Security log:     %d", res.Counts.SM20)
	p("  Change documents: %d (headers %d, items %d, orphans %d)",
		res.Counts.Joined, res.Counts.Headers, res.Counts.Items, res.Counts.Orphans)
	p("Sessions:           %d", sum.Sessions)
	p("Users:              %d", sum.Users)
	p("")
	p("Risk distribution")
	for _, level := range []model.RiskLevel{model.RiskCritical, model.RiskHigh, model.RiskMedium, model.RiskLow} {
		p("  %-8s %d", level.String(), sum.RiskCounts[level])
	}

	if len(sum.Findings) > 0 {
		p("")
		p("High-interest findings")
		for _, f := range sum.Findings {
			p("  - %s", f)
		}
	}

	if len(sum.TopSessions) > 0 {
		p("")
		p("Highest-risk sessions")
		for _, s := range sum.TopSessions {
			p("  %-20s %-12s %-8s %d records", s.ID, s.User, s.MaxRisk.String(), len(s.Records))
		}
	}

	if len(sum.KeyUsers) > 0 {
		p("")
		p("Users with elevated-risk activity")
		for _, u := range sum.KeyUsers {
			p("  %-12s %d records at High or above", u.User, u.Elevated)
		}
	}

	if len(sum.Diagnostics) > 0 {
		p("")
		p("Diagnostics (%d)", len(sum.Diagnostics))
		for _, d := range sum.Diagnostics {
			p("  - %s", d)
		}
	}
	return nil
}
