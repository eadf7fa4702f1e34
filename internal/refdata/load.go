package refdata

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/polcn/sap-log-analyzer2/pkg/errclass"
)

// Load reads a YAML reference-data file and merges it over the built-in
// defaults. Maps are merged key-by-key; list-valued sections replace the
// default list entirely when present, so a site can both extend the
// sensitivity sets and re-calibrate the marker lists.
func Load(path string) (*Reference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errclass.ErrRefDataInvalid.WithMessagef("read %s: %v", path, err)
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, errclass.ErrRefDataInvalid.WithMessagef("parse %s: %v", path, err)
	}

	return New(Merge(DefaultConfig(), override))
}

// Merge overlays an override config onto a base config.
func Merge(base, override Config) Config {
	mergeMap(base.SensitiveTables, override.SensitiveTables)
	mergeMap(base.SensitiveTCodes, override.SensitiveTCodes)
	mergeMap(base.InventoryTables, override.InventoryTables)
	mergeMap(base.InventoryFields, override.InventoryFields)
	mergeMap(base.DebugMessageCodes, override.DebugMessageCodes)
	mergeMap(base.EventClasses, override.EventClasses)
	mergeMap(base.EventDescriptions, override.EventDescriptions)

	if len(override.FieldPatterns) > 0 {
		base.FieldPatterns = override.FieldPatterns
	}
	if len(override.FieldExclusions) > 0 {
		base.FieldExclusions = override.FieldExclusions
	}
	if len(override.DebugFlags) > 0 {
		base.DebugFlags = override.DebugFlags
	}
	if len(override.ServiceSignatures) > 0 {
		base.ServiceSignatures = override.ServiceSignatures
	}
	if len(override.TableBrowserTCodes) > 0 {
		base.TableBrowserTCodes = override.TableBrowserTCodes
	}
	if len(override.AuthFailureMarkers) > 0 {
		base.AuthFailureMarkers = override.AuthFailureMarkers
	}
	if len(override.AuthSuccessMarkers) > 0 {
		base.AuthSuccessMarkers = override.AuthSuccessMarkers
	}
	if len(override.DisplayMarkers) > 0 {
		base.DisplayMarkers = override.DisplayMarkers
	}

	return base
}

func mergeMap(dst, src map[string]string) {
	for k, v := range src {
		dst[k] = v
	}
}
