// Package cli implements the sapaudit command tree.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/polcn/sap-log-analyzer2/pkg/color"
	"github.com/polcn/sap-log-analyzer2/pkg/logging"
)

var (
	jsonOutput bool
	noColor    bool
	logLevel   string

	rootCmd = &cobra.Command{
		Use:   "sapaudit",
		Short: "SAP security log audit analyzer",
		Long: `sapaudit builds a unified audit timeline from SAP security logs (SM20)
and change documents (CDHDR/CDPOS), groups records into user sessions,
applies rule-based risk classification and session pattern detection,
and renders reviewer-ready reports.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			color.Init(noColor)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

// Execute runs the root command. Environment files are loaded first so flags
// can default from SAPAUDIT_* variables in .env.
func Execute() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmtErr("%v", err)
		os.Exit(1)
	}
}

func newLogger() *logging.Logger {
	return logging.New(logLevel)
}

// outputJSON prints v as JSON if --json flag is set, otherwise does nothing.
func outputJSON(v any) error {
	if !jsonOutput {
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fmtErr(format string, args ...any) {
	prefix := "sapaudit: "
	if color.Enabled() {
		prefix = color.Error("sapaudit:") + " "
	}
	fmt.Fprintf(os.Stderr, prefix+format+"\n", args...)
}
