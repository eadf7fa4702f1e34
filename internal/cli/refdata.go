package cli

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/polcn/sap-log-analyzer2/internal/refdata"
)

var refdataFile string

var refdataCmd = &cobra.Command{
	Use:   "refdata",
	Short: "Print the effective reference data",
	Long: `Print the reference data the classifier would use, as YAML.

With --refdata the file is merged over the built-in defaults first, so the
output shows the effective configuration, not just the overrides.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := refdata.DefaultConfig()
		if refdataFile != "" {
			data, err := os.ReadFile(refdataFile)
			if err != nil {
				return err
			}
			var override refdata.Config
			if err := yaml.Unmarshal(data, &override); err != nil {
				return err
			}
			cfg = refdata.Merge(cfg, override)
		}
		if _, err := refdata.New(cfg); err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(cfg)
		}
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(cfg)
	},
}

func init() {
	refdataCmd.Flags().StringVar(&refdataFile, "refdata", "", "reference data overrides (yaml)")
	rootCmd.AddCommand(refdataCmd)
}
