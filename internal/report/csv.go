package report

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/polcn/sap-log-analyzer2/pkg/errclass"
	"github.com/polcn/sap-log-analyzer2/pkg/fsutil"
	"github.com/polcn/sap-log-analyzer2/pkg/model"
)

// WriteTimelineCSV persists the annotated timeline as a flat file, usable as
// an intermediate between runs or for diffing two analyses. The file is
// written atomically.
func WriteTimelineCSV(path string, records []*model.LogRecord) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(timelineHeader); err != nil {
		return errclass.ErrReportWrite.WithMessagef("write %s: %v", path, err)
	}
	for _, rec := range records {
		row := []string{
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
		if err := w.Write(row); err != nil {
			return errclass.ErrReportWrite.WithMessagef("write %s: %v", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errclass.ErrReportWrite.WithMessagef("flush %s: %v", path, err)
	}
	if err := fsutil.AtomicWrite(path, buf.Bytes(), 0o644); err != nil {
		return errclass.ErrReportWrite.WithMessagef("write %s: %v", path, err)
	}
	return nil
}

var sourceHeader = []string{
	"Source", "User", "Datetime", "Event", "TCode", "Object", "Object Value",
	"Doc Number", "Table", "Field", "Change_Indicator", "Old_Value", "New_Value",
	"Description", "SYSAID #",
}

// WriteSourceCSV persists one normalized input stream before analysis, for
// inspection of what the loaders actually produced. Risk and session columns
// are absent because the records have not been through the pipeline yet.
func WriteSourceCSV(path string, records []*model.LogRecord) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(sourceHeader); err != nil {
		return errclass.ErrReportWrite.WithMessagef("write %s: %v", path, err)
	}
	for _, rec := range records {
		row := []string{
			string(rec.Source),
			rec.User,
			displayTime(rec.Timestamp),
			rec.EventCode,
			rec.TCode,
			rec.ObjectClass,
			rec.ObjectID,
			rec.DocNumber,
			rec.Table,
			rec.Field,
			string(rec.ChangeIndicator),
			rec.OldValue,
			rec.NewValue,
			rec.Description,
			rec.Ticket,
		}
		if err := w.Write(row); err != nil {
			return errclass.ErrReportWrite.WithMessagef("write %s: %v", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errclass.ErrReportWrite.WithMessagef("flush %s: %v", path, err)
	}
	if err := fsutil.AtomicWrite(path, buf.Bytes(), 0o644); err != nil {
		return errclass.ErrReportWrite.WithMessagef("write %s: %v", path, err)
	}
	return nil
}
