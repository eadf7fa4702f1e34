// Package report renders an analysis result for human review: an Excel
// workbook for auditors, plus text and HTML summaries and CSV intermediates.
// Rendering never changes risk levels, factors or ordering.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/polcn/sap-log-analyzer2/internal/pipeline"
	"github.com/polcn/sap-log-analyzer2/pkg/errclass"
	"github.com/polcn/sap-log-analyzer2/pkg/fsutil"
	"github.com/polcn/sap-log-analyzer2/pkg/model"
)

const timelineSheet = "Unified_Audit_Timeline"

// Risk level fill colors, matched to the long-standing review workbook
// conventions so auditors see familiar coloring.
var riskColors = map[model.RiskLevel]string{
	model.RiskCritical: "7030A0",
	model.RiskHigh:     "FFC7CE",
	model.RiskMedium:   "FFEB9C",
	model.RiskLow:      "C6EFCE",
}

var sourceColors = map[model.Source]string{
	model.SourceSM20:  "FFD966",
	model.SourceCDHDR: "9BC2E6",
	model.SourceCDPOS: "C6E0B4",
}

var timelineHeader = []string{
	"Session ID with Date", "Source", "User", "Datetime", "TCode", "Table",
	"Field", "Change_Indicator", "Old_Value", "New_Value", "Description",
	"Event", "SYSAID #", "Activity_Type", "Risk_Level", "Risk_Factors",
}

// WriteExcel writes the full review workbook: the unified timeline, a run
// summary and a color legend.
func WriteExcel(path string, res *pipeline.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeTimelineSheet(f, res); err != nil {
		return errclass.ErrReportWrite.WithMessagef("timeline sheet: %v", err)
	}
	if err := writeSummarySheet(f, res); err != nil {
		return errclass.ErrReportWrite.WithMessagef("summary sheet: %v", err)
	}
	if err := writeLegendSheet(f); err != nil {
		return errclass.ErrReportWrite.WithMessagef("legend sheet: %v", err)
	}

	f.DeleteSheet("Sheet1")
	buf, err := f.WriteToBuffer()
	if err != nil {
		return errclass.ErrReportWrite.WithMessagef("encode workbook: %v", err)
	}
	if err := fsutil.AtomicWrite(path, buf.Bytes(), 0o644); err != nil {
		return errclass.ErrReportWrite.WithMessagef("save %s: %v", path, err)
	}
	return nil
}

func writeTimelineSheet(f *excelize.File, res *pipeline.Result) error {
	if _, err := f.NewSheet(timelineSheet); err != nil {
		return err
	}
	header := toAny(timelineHeader)
	if err := f.SetSheetRow(timelineSheet, "A1", &header); err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDDDDD"}},
	})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(timelineSheet, 1, 1, headerStyle); err != nil {
		return err
	}

	riskStyles := make(map[model.RiskLevel]int, len(riskColors))
	for level, color := range riskColors {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		if err != nil {
			return err
		}
		riskStyles[level] = style
	}
	sourceStyles := make(map[model.Source]int, len(sourceColors))
	for source, color := range sourceColors {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		if err != nil {
			return err
		}
		sourceStyles[source] = style
	}

	row := 2
	for _, sess := range res.Sessions {
		for _, rec := range sess.Records {
			cells := []any{
				rec.SessionID,
				string(rec.Source),
				rec.User,
				displayTime(rec.Timestamp),
				rec.TCode,
				rec.Table,
				rec.Field,
				string(rec.ChangeIndicator),
				rec.OldValue,
				rec.NewValue,
				rec.Description,
				rec.EventCode,
				displayTicket(rec.Ticket),
				string(rec.Risk.ActivityType),
				rec.Risk.Level.String(),
				strings.Join(rec.Risk.Factors, "; "),
			}
			cell := fmt.Sprintf("A%d", row)
			if err := f.SetSheetRow(timelineSheet, cell, &cells); err != nil {
				return err
			}
			if style, ok := sourceStyles[rec.Source]; ok {
				if err := f.SetCellStyle(timelineSheet, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), style); err != nil {
					return err
				}
			}
			if style, ok := riskStyles[rec.Risk.Level]; ok {
				if err := f.SetCellStyle(timelineSheet, fmt.Sprintf("O%d", row), fmt.Sprintf("O%d", row), style); err != nil {
					return err
				}
			}
			row++
		}
	}

	last, err := excelize.CoordinatesToCellName(len(timelineHeader), row-1)
	if err != nil {
		return err
	}
	if err := f.AutoFilter(timelineSheet, "A1:"+last, nil); err != nil {
		return err
	}
	return f.SetPanes(timelineSheet, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	})
}

func writeSummarySheet(f *excelize.File, res *pipeline.Result) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	sum := Summarize(res)

	rows := [][]any{
		{"SAP audit analysis summary"},
		{},
		{"Records analyzed", sum.TotalRecords},
		{"Sessions", sum.Sessions},
		{"Users", sum.Users},
		{"Orphan change items", res.Counts.Orphans},
		{"Header-only change documents", res.Counts.HeaderOnly},
		{"Display-but-changed flags", res.Counts.DisplayFlag},
		{},
		{"Risk distribution"},
		{"Critical", sum.RiskCounts[model.RiskCritical]},
		{"High", sum.RiskCounts[model.RiskHigh]},
		{"Medium", sum.RiskCounts[model.RiskMedium]},
		{"Low", sum.RiskCounts[model.RiskLow]},
	}
	for i, cells := range rows {
		row := cells
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}

	start := len(rows) + 2
	if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", start), &[]any{"Highest-risk sessions"}); err != nil {
		return err
	}
	for i, hs := range sum.TopSessions {
		cells := []any{hs.ID, hs.User, hs.MaxRisk.String(), len(hs.Records)}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", start+1+i), &cells); err != nil {
			return err
		}
	}
	return nil
}

func writeLegendSheet(f *excelize.File) error {
	const sheet = "Legend"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := [][]any{
		{"Risk colors"},
		{"Critical", "Purple"},
		{"High", "Red"},
		{"Medium", "Yellow"},
		{"Low", "Green"},
		{},
		{"Source colors"},
		{"SM20", "Yellow", "Security audit log"},
		{"CDHDR", "Blue", "Change document header"},
		{"CDPOS", "Green", "Change document item"},
	}
	for i, cells := range rows {
		row := cells
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}
	return nil
}

func displayTicket(ticket string) string {
	if ticket == "" {
		return "UNKNOWN"
	}
	return ticket
}

// displayTime renders a record timestamp, blank for records that never had
// one (orphan change items).
func displayTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

func toAny(cells []string) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}
