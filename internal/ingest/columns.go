package ingest

import "strings"

// columnIndex resolves canonical field names against a header row. Export
// variants differ in casing, spacing and wording, so each canonical name
// carries a list of accepted aliases matched case-insensitively.
type columnIndex struct {
	idx map[string]int
}

var columnAliases = map[string][]string{
	"user":       {"USER", "USERNAME", "USER NAME", "USER-ID"},
	"date":       {"DATE", "LOG DATE", "CREATION DATE"},
	"time":       {"TIME", "LOG TIME", "CREATION TIME"},
	"event":      {"EVENT", "MESSAGE_ID", "MESSAGE ID", "MSG. ID"},
	"tcode":      {"SOURCE TA", "TCODE", "TRANSACTION", "TRANSACTION CODE"},
	"message":    {"AUDIT LOG MSG. TEXT", "MESSAGE TEXT", "DESCRIPTION", "MSG TEXT"},
	"var_first":  {"FIRST VARIABLE VALUE FOR EVENT", "VARIABLE_FIRST", "VARIABLE FIRST", "VAR FIRST"},
	"var_2":      {"VARIABLE 2", "VARIABLE_2", "VAR 2", "VAR2"},
	"var_data":   {"VARIABLE DATA FOR MESSAGE", "VARIABLE_DATA", "VARIABLE DATA", "VAR DATA"},
	"sysaid":     {"SYSAID#", "SYSAID #", "SYSAID", "TICKET#", "TICKET", "CHANGE_REQUEST", "SR", "CR", "SR #", "CR #"},
	"doc_number": {"DOC.NUMBER", "DOC NUMBER", "DOCUMENT NUMBER", "CHANGENR"},
	"object":     {"OBJECT", "OBJECT CLASS", "OBJECTCLAS"},
	"object_id":  {"OBJECT VALUE", "OBJECT ID", "OBJECTID"},
	"table":      {"TABLE NAME", "TABLE", "TABNAME"},
	"field":      {"FIELD NAME", "FIELD", "FNAME"},
	"indicator":  {"CHANGE INDICATOR", "CHANGE_INDICATOR", "CHNGIND"},
	"old_value":  {"OLD VALUE", "OLD_VALUE", "VALUE_OLD"},
	"new_value":  {"NEW VALUE", "NEW_VALUE", "VALUE_NEW"},
}

func newColumnIndex(header []string) *columnIndex {
	byName := make(map[string]int, len(header))
	for i, cell := range header {
		byName[strings.ToUpper(strings.TrimSpace(cell))] = i
	}

	ci := &columnIndex{idx: make(map[string]int)}
	for field, aliases := range columnAliases {
		for _, alias := range aliases {
			if i, ok := byName[alias]; ok {
				ci.idx[field] = i
				break
			}
		}
	}
	return ci
}

// get returns the trimmed cell for a canonical field, or "" when the column
// is absent or the row is short. Absent columns are a normal export variant,
// not an error.
func (ci *columnIndex) get(row []string, field string) string {
	i, ok := ci.idx[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (ci *columnIndex) has(field string) bool {
	_, ok := ci.idx[field]
	return ok
}
