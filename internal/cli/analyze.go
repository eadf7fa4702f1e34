package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/polcn/sap-log-analyzer2/internal/ingest"
	"github.com/polcn/sap-log-analyzer2/internal/pipeline"
	"github.com/polcn/sap-log-analyzer2/internal/refdata"
	"github.com/polcn/sap-log-analyzer2/internal/report"
	"github.com/polcn/sap-log-analyzer2/internal/sysaid"
	"github.com/polcn/sap-log-analyzer2/pkg/config"
	"github.com/polcn/sap-log-analyzer2/pkg/fsutil"
	"github.com/polcn/sap-log-analyzer2/pkg/logging"
	"github.com/polcn/sap-log-analyzer2/pkg/model"
	"github.com/polcn/sap-log-analyzer2/pkg/template"
)

var (
	analyzeConfig    string
	analyzeInputDir  string
	analyzeSM20      string
	analyzeCDHDR     string
	analyzeCDPOS     string
	analyzeSysAid    string
	analyzeGroupBy   string
	analyzeTolerance int
	analyzeRefData   string
	analyzeOut       string
	analyzeHTML      string
	analyzeCSV       string
	analyzeKeepDir   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a full audit analysis over one input batch",
	Long: `Run the complete analysis pipeline: load the exports, join change
documents, merge into one timeline, assign sessions, classify risk,
detect session patterns and write the reports.

Input files are discovered in --input by naming convention
(*sm20*, *cdhdr*, *cdpos*, *sysaid*) or given explicitly.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := applyConfig(cmd); err != nil {
			fmtErr("%v", err)
			os.Exit(1)
		}

		log := newLogger()
		runID := uuid.NewString()
		log = log.WithField("run_id", runID)

		ref, err := loadRefData(analyzeRefData)
		if err != nil {
			fmtErr("reference data: %v", err)
			os.Exit(1)
		}

		in, grouping, diags, err := loadInputs(log)
		if err != nil {
			fmtErr("%v", err)
			os.Exit(1)
		}

		if analyzeKeepDir != "" {
			if err := writeIntermediates(analyzeKeepDir, in); err != nil {
				fmtErr("keep intermediates: %v", err)
				os.Exit(1)
			}
		}

		res, err := pipeline.NewRunner(ref, log).Run(in, pipeline.Options{
			Grouping:       grouping,
			MergeTolerance: analyzeTolerance,
		})
		if err != nil {
			fmtErr("analysis failed: %v", err)
			os.Exit(1)
		}
		res.Diagnostics = append(diags, res.Diagnostics...)

		analyzeOut = template.ExpandPath(analyzeOut, runID)
		analyzeHTML = template.ExpandPath(analyzeHTML, runID)
		analyzeCSV = template.ExpandPath(analyzeCSV, runID)

		if analyzeOut != "" {
			if err := report.WriteExcel(analyzeOut, res); err != nil {
				fmtErr("write workbook: %v", err)
				os.Exit(1)
			}
			log.WithField("path", analyzeOut).Info("workbook written")
		}
		if analyzeHTML != "" {
			var buf bytes.Buffer
			err := report.WriteHTML(&buf, res)
			if err == nil {
				err = fsutil.AtomicWrite(analyzeHTML, buf.Bytes(), 0o644)
			}
			if err != nil {
				fmtErr("write html summary: %v", err)
				os.Exit(1)
			}
		}
		if analyzeCSV != "" {
			if err := report.WriteTimelineCSV(analyzeCSV, res.Timeline); err != nil {
				fmtErr("write timeline csv: %v", err)
				os.Exit(1)
			}
		}

		if jsonOutput {
			outputJSON(report.Summarize(res))
		} else {
			report.WriteText(os.Stdout, res)
		}
	},
}

// loadInputs resolves and loads the input files, returning the normalized
// batch plus loader diagnostics.
func loadInputs(log *logging.Logger) (pipeline.Input, model.GroupingMode, []string, error) {
	paths := ingest.Inputs{
		SM20:   analyzeSM20,
		CDHDR:  analyzeCDHDR,
		CDPOS:  analyzeCDPOS,
		SysAid: analyzeSysAid,
	}
	if analyzeInputDir != "" {
		discovered, err := ingest.Discover(analyzeInputDir)
		if err != nil {
			return pipeline.Input{}, model.GroupByDate, nil, err
		}
		if paths.SM20 == "" {
			paths.SM20 = discovered.SM20
		}
		if paths.CDHDR == "" {
			paths.CDHDR = discovered.CDHDR
		}
		if paths.CDPOS == "" {
			paths.CDPOS = discovered.CDPOS
		}
		if paths.SysAid == "" {
			paths.SysAid = discovered.SysAid
		}
	}

	loader := ingest.NewLoader(log)
	var in pipeline.Input
	var err error
	if paths.SM20 != "" {
		if in.SM20, err = loader.LoadSM20(paths.SM20); err != nil {
			return in, model.GroupByDate, nil, err
		}
	}
	if paths.CDHDR != "" {
		if in.Headers, err = loader.LoadCDHDR(paths.CDHDR); err != nil {
			return in, model.GroupByDate, nil, err
		}
	}
	if paths.CDPOS != "" {
		if in.Items, err = loader.LoadCDPOS(paths.CDPOS); err != nil {
			return in, model.GroupByDate, nil, err
		}
	}

	grouping := model.GroupByDate
	if strings.EqualFold(analyzeGroupBy, "ticket") {
		grouping = model.GroupByTicket
	}

	dir := sysaid.NewDirectory(log)
	if paths.SysAid != "" {
		if err := dir.Load(paths.SysAid); err != nil {
			return in, grouping, nil, err
		}
	}
	dir.Enrich(in.SM20)
	dir.Enrich(in.Headers)

	if grouping == model.GroupByTicket && paths.SysAid == "" {
		log.Warnf("ticket grouping selected without a ticket export; untagged records group by date")
	}
	return in, grouping, loader.Diagnostics, nil
}

// applyConfig overlays sapaudit.yaml values onto flags the user did not set
// explicitly. Flags always win over the file; the file wins over built-in
// defaults.
// writeIntermediates dumps the normalized input streams before analysis so a
// reviewer can check what the loaders made of the raw exports.
func writeIntermediates(dir string, in pipeline.Input) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	streams := []struct {
		name    string
		records []*model.LogRecord
	}{
		{"sm20_normalized.csv", in.SM20},
		{"cdhdr_normalized.csv", in.Headers},
		{"cdpos_normalized.csv", in.Items},
	}
	for _, s := range streams {
		if err := report.WriteSourceCSV(filepath.Join(dir, s.name), s.records); err != nil {
			return err
		}
	}
	return nil
}

func applyConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(analyzeConfig)
	if err != nil {
		return err
	}
	set := func(flag string, target *string, value string) {
		if !cmd.Flags().Changed(flag) && value != "" {
			*target = value
		}
	}
	set("input", &analyzeInputDir, cfg.InputDir)
	set("refdata", &analyzeRefData, cfg.RefData)
	set("group-by", &analyzeGroupBy, cfg.GroupBy)
	set("out", &analyzeOut, cfg.Output.Workbook)
	set("html", &analyzeHTML, cfg.Output.HTML)
	set("csv", &analyzeCSV, cfg.Output.CSV)
	if !cmd.Flags().Changed("merge-tolerance") && cfg.Merge.Tolerance != 0 {
		analyzeTolerance = cfg.Merge.Tolerance
	}
	if !cmd.Flags().Changed("log-level") && cfg.Logging.Level != "" {
		logLevel = cfg.Logging.Level
	}
	return nil
}

// loadRefData builds the reference set, overlaying an optional YAML file on
// the built-in defaults.
func loadRefData(path string) (*refdata.Reference, error) {
	if path == "" {
		return refdata.Default(), nil
	}
	return refdata.Load(path)
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeConfig, "config", "sapaudit.yaml", "run configuration file")
	analyzeCmd.Flags().StringVarP(&analyzeInputDir, "input", "i", "", "directory to discover input exports in")
	analyzeCmd.Flags().StringVar(&analyzeSM20, "sm20", "", "security audit log export (csv or xlsx)")
	analyzeCmd.Flags().StringVar(&analyzeCDHDR, "cdhdr", "", "change document header export")
	analyzeCmd.Flags().StringVar(&analyzeCDPOS, "cdpos", "", "change document item export")
	analyzeCmd.Flags().StringVar(&analyzeSysAid, "sysaid", "", "ticket system export")
	analyzeCmd.Flags().StringVar(&analyzeGroupBy, "group-by", "date", "session grouping: date or ticket")
	analyzeCmd.Flags().IntVar(&analyzeTolerance, "merge-tolerance", 0, "allowed record count drift in merge reconciliation")
	analyzeCmd.Flags().StringVar(&analyzeRefData, "refdata", "", "reference data overrides (yaml)")
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", defaultOut(), "output workbook path, supports {date} and {run} placeholders")
	analyzeCmd.Flags().StringVar(&analyzeHTML, "html", "", "also write an HTML summary to this path")
	analyzeCmd.Flags().StringVar(&analyzeCSV, "csv", "", "also write the annotated timeline as CSV")
	analyzeCmd.Flags().StringVar(&analyzeKeepDir, "keep-intermediate", "", "write the normalized per-source records as CSV into this directory")
	rootCmd.AddCommand(analyzeCmd)
}

func defaultOut() string {
	if v := os.Getenv("SAPAUDIT_OUT"); v != "" {
		return v
	}
	return filepath.Join(".", "sap_audit_report.xlsx")
}
