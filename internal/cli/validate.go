package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/polcn/sap-log-analyzer2/internal/ingest"
)

var validateDir string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that an input directory loads cleanly",
	Long: `Discover and load the exports in a directory without running the
analysis, reporting record counts and any rows that would be dropped.
Useful before a long run against a fresh export batch.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		log := newLogger()
		in, err := ingest.Discover(validateDir)
		if err != nil {
			fmtErr("%v", err)
			os.Exit(1)
		}

		type fileCheck struct {
			Kind    string `json:"kind"`
			Path    string `json:"path"`
			Records int    `json:"records"`
		}
		var checks []fileCheck
		loader := ingest.NewLoader(log)

		if in.SM20 != "" {
			records, err := loader.LoadSM20(in.SM20)
			if err != nil {
				fmtErr("sm20: %v", err)
				os.Exit(1)
			}
			checks = append(checks, fileCheck{"sm20", in.SM20, len(records)})
		}
		if in.CDHDR != "" {
			records, err := loader.LoadCDHDR(in.CDHDR)
			if err != nil {
				fmtErr("cdhdr: %v", err)
				os.Exit(1)
			}
			checks = append(checks, fileCheck{"cdhdr", in.CDHDR, len(records)})
		}
		if in.CDPOS != "" {
			records, err := loader.LoadCDPOS(in.CDPOS)
			if err != nil {
				fmtErr("cdpos: %v", err)
				os.Exit(1)
			}
			checks = append(checks, fileCheck{"cdpos", in.CDPOS, len(records)})
		}

		if len(checks) == 0 {
			fmtErr("no input exports found in %s", validateDir)
			os.Exit(1)
		}

		if jsonOutput {
			outputJSON(struct {
				Files   []fileCheck `json:"files"`
				Dropped int         `json:"dropped"`
			}{checks, loader.Dropped})
			return
		}
		for _, c := range checks {
			fmt.Printf("%-6s %-50s %d records\n", c.Kind, c.Path, c.Records)
		}
		if loader.Dropped > 0 {
			fmt.Printf("dropped %d malformed rows:\n", loader.Dropped)
			for _, d := range loader.Diagnostics {
				fmt.Printf("  - %s\n", d)
			}
		}
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateDir, "input", "i", ".", "directory to discover input exports in")
	rootCmd.AddCommand(validateCmd)
}
