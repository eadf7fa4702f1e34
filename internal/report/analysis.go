package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/polcn/sap-log-analyzer2/internal/pipeline"
	"github.com/polcn/sap-log-analyzer2/pkg/model"
)

// Summary is the derived view shared by the text, HTML and Excel renderers.
type Summary struct {
	TotalRecords int
	Sessions     int
	Users        int
	RiskCounts   map[model.RiskLevel]int

	// TopSessions are the highest-risk sessions in ranked order, capped
	// for presentation.
	TopSessions []SessionDigest

	// KeyUsers are users with at least one High or Critical record,
	// ordered by their count of such records descending.
	KeyUsers []UserDigest

	Findings    []string
	Diagnostics []string
}

type SessionDigest struct {
	ID      string
	User    string
	MaxRisk model.RiskLevel
	Records []*model.LogRecord
}

type UserDigest struct {
	User     string
	Elevated int
}

const topSessionCap = 10

// Summarize derives the presentation summary from a completed run. It reads
// the result and never mutates it.
func Summarize(res *pipeline.Result) *Summary {
	sum := &Summary{
		TotalRecords: len(res.Timeline),
		Sessions:     len(res.Sessions),
		RiskCounts:   make(map[model.RiskLevel]int),
		Diagnostics:  res.Diagnostics,
	}

	users := make(map[string]int)
	elevated := make(map[string]int)
	displayChanged := 0
	dynamicABAP := 0
	for _, rec := range res.Timeline {
		sum.RiskCounts[rec.Risk.Level]++
		users[rec.User]++
		if rec.Risk.Level >= model.RiskHigh {
			elevated[rec.User]++
		}
		if rec.DisplayButChanged {
			displayChanged++
		}
		if rec.Variable2 == "I!" || strings.Contains(rec.VariableData, "I!") {
			dynamicABAP++
		}
	}
	sum.Users = len(users)

	for _, sess := range res.Sessions {
		if len(sum.TopSessions) == topSessionCap {
			break
		}
		if sess.MaxRisk() < model.RiskMedium {
			continue
		}
		sum.TopSessions = append(sum.TopSessions, SessionDigest{
			ID:      sess.ID,
			User:    sess.User,
			MaxRisk: sess.MaxRisk(),
			Records: sess.Records,
		})
	}

	for user, count := range elevated {
		sum.KeyUsers = append(sum.KeyUsers, UserDigest{User: user, Elevated: count})
	}
	sort.Slice(sum.KeyUsers, func(i, j int) bool {
		if sum.KeyUsers[i].Elevated != sum.KeyUsers[j].Elevated {
			return sum.KeyUsers[i].Elevated > sum.KeyUsers[j].Elevated
		}
		return sum.KeyUsers[i].User < sum.KeyUsers[j].User
	})

	if res.Findings.AuthBypass {
		sum.Findings = append(sum.Findings, "Authorization bypass sequence detected (failure, debugging, matching success)")
	}
	if res.Findings.Inventory {
		sum.Findings = append(sum.Findings, "Debugging combined with inventory valuation/potency changes")
	} else if res.Findings.DebugWithStage {
		sum.Findings = append(sum.Findings, "Debugging combined with data changes in the same session")
	}
	if res.Findings.StealthChanges > 0 {
		sum.Findings = append(sum.Findings,
			"Change authorizations without matching change documents (potential unlogged changes)")
	}
	if dynamicABAP > 0 {
		sum.Findings = append(sum.Findings,
			fmt.Sprintf("Dynamic ABAP execution observed on %d records", dynamicABAP))
	}
	if displayChanged > 0 {
		sum.Findings = append(sum.Findings,
			fmt.Sprintf("Display transactions with underlying changes on %d records", displayChanged))
	}
	return sum
}
