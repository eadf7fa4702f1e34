// Package sysaid links records to ticket-system context. Ticket numbers
// appear in wildly inconsistent formats across exports (SR-12345, CR 12,345,
// #12345), so everything is normalized to the bare digits before matching.
package sysaid

import (
	"strings"

	"github.com/polcn/sap-log-analyzer2/internal/ingest"
	"github.com/polcn/sap-log-analyzer2/pkg/errclass"
	"github.com/polcn/sap-log-analyzer2/pkg/logging"
	"github.com/polcn/sap-log-analyzer2/pkg/model"
)

// Unknown is the bucket for records without a resolvable ticket.
const Unknown = "UNKNOWN"

// Normalize reduces a raw ticket reference to its digits. SR-/CR- prefixes,
// leading #, commas and whitespace all drop out. An empty or digit-free
// input maps to Unknown.
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return Unknown
	}
	return b.String()
}

// Ticket is one row of a ticket-system export.
type Ticket struct {
	ID             string
	Title          string
	Description    string
	Notes          string
	RequestUser    string
	ProcessManager string
	RequestTime    string
}

// Directory holds normalized tickets for lookup during enrichment.
type Directory struct {
	byID map[string]*Ticket
	log  *logging.Logger
}

func NewDirectory(log *logging.Logger) *Directory {
	if log == nil {
		log = logging.Discard()
	}
	return &Directory{byID: make(map[string]*Ticket), log: log}
}

// ticket export column aliases, matched case-insensitively.
var ticketColumns = map[string][]string{
	"ticket":          {"TICKET", "SERVICE RECORD", "SR", "ID", "SYSAID#", "SYSAID #"},
	"title":           {"TITLE", "SUBJECT"},
	"description":     {"DESCRIPTION"},
	"notes":           {"NOTES"},
	"request_user":    {"REQUEST USER", "REQUESTED BY"},
	"process_manager": {"PROCESS MANAGER", "ASSIGNED TO"},
	"request_time":    {"REQUEST TIME", "CREATED"},
}

// Load reads a ticket export file into the directory.
func (d *Directory) Load(path string) error {
	rows, err := ingest.ReadTable(path)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return errclass.ErrInputMalformed.WithMessagef("%s: empty ticket export", path)
	}

	byName := make(map[string]int, len(rows[0]))
	for i, cell := range rows[0] {
		byName[strings.ToUpper(strings.TrimSpace(cell))] = i
	}
	col := func(field string, row []string) string {
		for _, alias := range ticketColumns[field] {
			if i, ok := byName[alias]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
		}
		return ""
	}
	if _, ok := byName["TICKET"]; !ok {
		found := false
		for _, alias := range ticketColumns["ticket"] {
			if _, ok := byName[alias]; ok {
				found = true
				break
			}
		}
		if !found {
			return errclass.ErrInputMalformed.WithMessagef("%s: no ticket column found", path)
		}
	}

	var loaded int
	for _, row := range rows[1:] {
		id := Normalize(col("ticket", row))
		if id == Unknown {
			continue
		}
		d.byID[id] = &Ticket{
			ID:             id,
			Title:          col("title", row),
			Description:    col("description", row),
			Notes:          col("notes", row),
			RequestUser:    col("request_user", row),
			ProcessManager: col("process_manager", row),
			RequestTime:    col("request_time", row),
		}
		loaded++
	}
	d.log.WithFields(map[string]any{"path": path, "tickets": loaded}).Info("loaded ticket directory")
	return nil
}

// Lookup returns the ticket for a raw reference, if known.
func (d *Directory) Lookup(raw string) (*Ticket, bool) {
	t, ok := d.byID[Normalize(raw)]
	return t, ok
}

func (d *Directory) Len() int { return len(d.byID) }

// Enrich normalizes every record's ticket field in place. A record whose
// reference resolves to no digits keeps an empty ticket, which makes
// ticket-based session grouping fall back to dates for it; reports render
// the empty value as Unknown. Returns how many records matched a known
// ticket.
func (d *Directory) Enrich(records []*model.LogRecord) int {
	var matched int
	for _, rec := range records {
		id := Normalize(rec.Ticket)
		if id == Unknown {
			rec.Ticket = ""
			continue
		}
		rec.Ticket = id
		if _, ok := d.byID[id]; ok {
			matched++
		}
	}
	return matched
}
