// Package ingest loads SAP export files and normalizes them into LogRecords.
// Exports arrive as XLSX workbooks or Latin-1 encoded CSV files with column
// names that vary between export variants; all name-sniffing happens here so
// the analysis stages never see a raw column.
package ingest

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/polcn/sap-log-analyzer2/pkg/errclass"
)

// ReadTable loads a tabular file as rows of cells. The format is chosen by
// extension: .xlsx workbooks are read from their first sheet, anything else
// is parsed as CSV decoded from Latin-1, which is what SAP GUI exports use.
func ReadTable(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readXLSX(path)
	default:
		return readCSV(path)
	}
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errclass.ErrInputMissing.WithMessagef("input file %s not found", path)
		}
		return nil, errclass.ErrInputMalformed.WithMessagef("open %s: %v", path, err)
	}
	defer f.Close()

	r := csv.NewReader(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errclass.ErrInputMalformed.WithMessagef("parse %s: %v", path, err)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errclass.ErrInputMissing.WithMessagef("input file %s not found", path)
		}
		return nil, errclass.ErrInputMalformed.WithMessagef("open %s: %v", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errclass.ErrInputMalformed.WithMessagef("%s has no sheets", path)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errclass.ErrInputMalformed.WithMessagef("read %s sheet %q: %v", path, sheet, err)
	}
	return rows, nil
}

// Discover locates input files under dir using the export naming convention.
// Each slot may be empty; the caller decides which inputs are mandatory.
type Inputs struct {
	SM20   string
	CDHDR  string
	CDPOS  string
	SysAid string
}

func Discover(dir string) (Inputs, error) {
	var in Inputs
	globs := []struct {
		target   *string
		patterns []string
	}{
		{&in.SM20, []string{"*_sm20_*.xlsx", "*_sm20_*.csv", "*sm20*.xlsx", "*sm20*.csv"}},
		{&in.CDHDR, []string{"*_cdhdr_*.xlsx", "*_cdhdr_*.csv", "*cdhdr*.xlsx", "*cdhdr*.csv"}},
		{&in.CDPOS, []string{"*_cdpos_*.xlsx", "*_cdpos_*.csv", "*cdpos*.xlsx", "*cdpos*.csv"}},
		{&in.SysAid, []string{"*sysaid*.xlsx", "*sysaid*.csv"}},
	}
	for _, g := range globs {
		for _, pattern := range g.patterns {
			matches, err := filepath.Glob(filepath.Join(dir, pattern))
			if err != nil {
				return in, errclass.ErrInputMissing.WithMessagef("scan %s: %v", dir, err)
			}
			if len(matches) > 0 {
				*g.target = matches[0]
				break
			}
		}
	}
	return in, nil
}
