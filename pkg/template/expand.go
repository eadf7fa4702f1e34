// Package template expands placeholders in report output paths, so a
// scheduled run can write dated files without shell wrapping.
package template

import (
	"fmt"
	"os"
	"os/user"
	"strings"
	"time"
)

// Expand replaces placeholders in a path or name.
//
// Supported placeholders:
//   {date}     - Current date in YYYY-MM-DD format
//   {time}     - Current time in HHMMSS format (filename safe)
//   {datetime} - {date}_{time}
//   {unix}     - Current Unix timestamp
//   {user}     - Current username
//   {hostname} - System hostname, domain stripped
//
// Custom values provided via the vars map override built-ins.
func Expand(text string, vars map[string]string) string {
	now := time.Now()

	placeholders := map[string]string{
		"date":     now.Format("2006-01-02"),
		"time":     now.Format("150405"),
		"datetime": now.Format("2006-01-02_150405"),
		"unix":     fmt.Sprintf("%d", now.Unix()),
	}

	if u, err := user.Current(); err == nil {
		placeholders["user"] = u.Username
	} else {
		placeholders["user"] = "unknown"
	}

	if h, err := os.Hostname(); err == nil {
		placeholders["hostname"] = strings.Split(h, ".")[0]
	} else {
		placeholders["hostname"] = "unknown"
	}

	for k, v := range vars {
		placeholders[k] = v
	}

	result := text
	for key, value := range placeholders {
		result = strings.ReplaceAll(result, "{"+key+"}", value)
	}
	return result
}

// ExpandPath expands a report output path with the given run identifier
// available as {run}.
func ExpandPath(path, runID string) string {
	return Expand(path, map[string]string{"run": runID})
}
