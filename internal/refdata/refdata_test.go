package refdata_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/polcn/sap-log-analyzer2/internal/refdata"
	"github.com/polcn/sap-log-analyzer2/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_SensitiveTables(t *testing.T) {
	ref := refdata.Default()

	desc, ok := ref.SensitiveTable("USR02")
	require.True(t, ok)
	assert.Contains(t, desc, "password")

	// Case-insensitive, whitespace tolerant.
	_, ok = ref.SensitiveTable("  usr02 ")
	assert.True(t, ok)

	_, ok = ref.SensitiveTable("MAKT")
	assert.False(t, ok)

	_, ok = ref.SensitiveTable("")
	assert.False(t, ok)
}

func TestDefault_SensitiveTCodes(t *testing.T) {
	ref := refdata.Default()

	for _, tc := range []string{"SU01", "SE16", "F110", "SM49"} {
		_, ok := ref.SensitiveTCode(tc)
		assert.True(t, ok, "expected %s to be sensitive", tc)
	}

	_, ok := ref.SensitiveTCode("VA03")
	assert.False(t, ok)
}

func TestDefault_MatchCriticalField(t *testing.T) {
	ref := refdata.Default()

	cat, ok := ref.MatchCriticalField("PASSWORD")
	require.True(t, ok)
	assert.Equal(t, "Password field", cat)

	cat, ok = ref.MatchCriticalField("bank_acct")
	require.True(t, ok)
	assert.Equal(t, "Banking information field", cat)

	// Excluded exact field names never match even though SPERM contains PERM.
	for _, f := range []string{"KEY", "SPERM", "SPERQ", "QUAN"} {
		_, ok := ref.MatchCriticalField(f)
		assert.False(t, ok, "excluded field %s must not match", f)
	}

	_, ok = ref.MatchCriticalField("MATNR")
	assert.False(t, ok)
}

func TestDefault_InventorySensitive(t *testing.T) {
	ref := refdata.Default()

	assert.True(t, ref.InventorySensitive("MBEW", ""))
	assert.True(t, ref.InventorySensitive("", "STPRS"))
	assert.True(t, ref.InventorySensitive("mch1", ""))
	assert.False(t, ref.InventorySensitive("BKPF", "BELNR"))
	assert.False(t, ref.InventorySensitive("", ""))
}

func TestDefault_DebugAndServiceSetsDisjoint(t *testing.T) {
	ref := refdata.Default()

	// The service signatures must not be recognizable as debug codes.
	for _, sig := range []string{"R3TR IWSV", "R3TR IWSG", "R3TR G4BA"} {
		_, ok := ref.DebugMessageCode(sig)
		assert.False(t, ok)
		assert.True(t, ref.ServiceSignature(sig))
	}

	_, ok := ref.DebugMessageCode("CU_M")
	assert.True(t, ok)
	assert.False(t, ref.ServiceSignature("CU_M"))
}

func TestDefault_EventClasses(t *testing.T) {
	ref := refdata.Default()

	class, ok := ref.EventClass("AU2")
	require.True(t, ok)
	assert.Equal(t, refdata.EventCritical, class)

	class, ok = ref.EventClass("AU1")
	require.True(t, ok)
	assert.Equal(t, refdata.EventImportant, class)

	class, ok = ref.EventClass("AU3")
	require.True(t, ok)
	assert.Equal(t, refdata.EventNonCritical, class)

	_, ok = ref.EventClass("ZZZ")
	assert.False(t, ok)
}

func TestDefault_AuthMarkers(t *testing.T) {
	ref := refdata.Default()

	failed := &model.LogRecord{Description: "SE16: auth. check: failed"}
	assert.True(t, ref.AuthFailure(failed))

	au4 := &model.LogRecord{EventCode: "AU4"}
	assert.True(t, ref.AuthFailure(au4))

	passed := &model.LogRecord{Description: "SE16 ACTIVITY 02 AUTH. CHECK: PASSED"}
	assert.True(t, ref.AuthSuccess(passed))
	assert.False(t, ref.AuthFailure(passed))
}

func TestNew_RejectsInvalidPattern(t *testing.T) {
	cfg := refdata.DefaultConfig()
	cfg.FieldPatterns = append(cfg.FieldPatterns, refdata.FieldPatternDef{
		Pattern: "(unclosed", Category: "broken",
	})
	_, err := refdata.New(cfg)
	require.Error(t, err)
}

func TestNew_RejectsUnknownEventClass(t *testing.T) {
	cfg := refdata.DefaultConfig()
	cfg.EventClasses["ZZ9"] = "Severe"
	_, err := refdata.New(cfg)
	require.Error(t, err)
}

func TestLoad_MergesOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refdata.yaml")
	content := `
sensitive_tables:
  ZCUSTOM: "Custom interface staging table"
debug_flags: ["D!"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	ref, err := refdata.Load(path)
	require.NoError(t, err)

	// Override adds without removing defaults.
	_, ok := ref.SensitiveTable("ZCUSTOM")
	assert.True(t, ok)
	_, ok = ref.SensitiveTable("USR02")
	assert.True(t, ok)

	// List sections replace entirely.
	assert.Equal(t, []string{"D!"}, ref.DebugFlags())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := refdata.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
