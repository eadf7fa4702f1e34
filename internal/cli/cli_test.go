package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polcn/sap-log-analyzer2/pkg/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// resetAnalyzeFlags restores the shared analyze command flags to their
// defaults. Cobra keeps flag state on the command between Execute calls,
// so tests that set flags would otherwise leak into each other.
func resetAnalyzeFlags(t *testing.T) {
	t.Helper()
	analyzeCmd.Flags().VisitAll(func(f *pflag.Flag) {
		require.NoError(t, f.Value.Set(f.DefValue))
		f.Changed = false
	})
}

func TestAnalyzeEndToEnd(t *testing.T) {
	resetAnalyzeFlags(t)
	dir := t.TempDir()
	writeFile(t, dir, "acme_sm20_march.csv",
		"USER,DATE,TIME,EVENT,SOURCE TA,AUDIT LOG MSG. TEXT\n"+
			"FF_ADMIN,2025-03-10,08:00:00,AU1,SU01,Logon successful\n"+
			"FF_ADMIN,2025-03-10,08:05:00,CUK,,C debugging activated\n")
	writeFile(t, dir, "acme_cdhdr_march.csv",
		"USER,DATE,TIME,TCODE,DOC.NUMBER,OBJECT,OBJECT VALUE\n"+
			"FF_ADMIN,2025-03-10,08:10:00,MM02,0000000001,MATERIAL,M-100\n")
	writeFile(t, dir, "acme_cdpos_march.csv",
		"DOC.NUMBER,OBJECT,OBJECT VALUE,TABLE NAME,FIELD NAME,CHANGE INDICATOR,OLD VALUE,NEW VALUE\n"+
			"0000000001,MATERIAL,M-100,MBEW,STPRS,U,10.00,99.00\n")

	out := filepath.Join(dir, "report.xlsx")
	csvOut := filepath.Join(dir, "timeline.csv")
	keepDir := filepath.Join(dir, "intermediate")
	rootCmd.SetArgs([]string{
		"analyze",
		"--input", dir,
		"--config", filepath.Join(dir, "absent.yaml"),
		"--out", out,
		"--csv", csvOut,
		"--keep-intermediate", keepDir,
	})
	require.NoError(t, rootCmd.Execute())

	_, err := os.Stat(out)
	assert.NoError(t, err, "workbook not written")
	_, err = os.Stat(csvOut)
	assert.NoError(t, err, "timeline csv not written")
	_, err = os.Stat(filepath.Join(keepDir, "sm20_normalized.csv"))
	assert.NoError(t, err, "intermediate csv not written")
}

func TestApplyConfigFlagPrecedence(t *testing.T) {
	resetAnalyzeFlags(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sapaudit.yaml")
	require.NoError(t, config.Save(cfgPath, &config.Config{
		InputDir: "/from/config",
		GroupBy:  "ticket",
		Output:   config.OutputConfig{Workbook: "from_config.xlsx"},
		Logging:  config.LoggingConfig{Level: "debug"},
	}))

	cmd := analyzeCmd
	require.NoError(t, cmd.Flags().Set("config", cfgPath))
	require.NoError(t, cmd.Flags().Set("input", "/from/flag"))
	analyzeConfig = cfgPath
	analyzeInputDir = "/from/flag"

	require.NoError(t, applyConfig(cmd))

	// The explicitly set flag wins; unset flags take config values.
	assert.Equal(t, "/from/flag", analyzeInputDir)
	assert.Equal(t, "ticket", analyzeGroupBy)
	assert.Equal(t, "from_config.xlsx", analyzeOut)
	assert.Equal(t, "debug", logLevel)
}

func TestLoadRefDataDefaultWhenUnset(t *testing.T) {
	ref, err := loadRefData("")
	require.NoError(t, err)
	_, ok := ref.SensitiveTCode("SU01")
	assert.True(t, ok)
}

func TestVersionCommand(t *testing.T) {
	rootCmd.SetArgs([]string{"version"})
	assert.NoError(t, rootCmd.Execute())
}
