package report

import (
	"html/template"
	"io"

	"github.com/polcn/sap-log-analyzer2/internal/pipeline"
	"github.com/polcn/sap-log-analyzer2/pkg/errclass"
	"github.com/polcn/sap-log-analyzer2/pkg/model"
)

var htmlTmpl = template.Must(template.New("summary").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>SAP Audit Analysis Summary</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: left; }
th { background: #ddd; }
.risk-Critical { background: #7030A0; color: #fff; }
.risk-High { background: #FFC7CE; }
.risk-Medium { background: #FFEB9C; }
.risk-Low { background: #C6EFCE; }
</style>
</head>
<body>
<h1>SAP Audit Analysis Summary</h1>

<table>
<tr><td>Records analyzed</td><td>{{.Sum.TotalRecords}}</td></tr>
<tr><td>Sessions</td><td>{{.Sum.Sessions}}</td></tr>
<tr><td>Users</td><td>{{.Sum.Users}}</td></tr>
<tr><td>Orphan change items</td><td>{{.Counts.Orphans}}</td></tr>
</table>

<h2>Risk distribution</h2>
<table>
{{range .Levels}}<tr class="risk-{{.Name}}"><td>{{.Name}}</td><td>{{.Count}}</td></tr>
{{end}}</table>

{{if .Sum.Findings}}
<h2>High-interest findings</h2>
<ul>
{{range .Sum.Findings}}<li>{{.}}</li>
{{end}}</ul>
{{end}}

{{if .Sum.TopSessions}}
<h2>Highest-risk sessions</h2>
<table>
<tr><th>Session</th><th>User</th><th>Max risk</th><th>Records</th></tr>
{{range .Sum.TopSessions}}<tr class="risk-{{.MaxRisk.String}}"><td>{{.ID}}</td><td>{{.User}}</td><td>{{.MaxRisk.String}}</td><td>{{len .Records}}</td></tr>
{{end}}</table>
{{end}}

{{if .Sum.KeyUsers}}
<h2>Users with elevated-risk activity</h2>
<table>
<tr><th>User</th><th>High or Critical records</th></tr>
{{range .Sum.KeyUsers}}<tr><td>{{.User}}</td><td>{{.Elevated}}</td></tr>
{{end}}</table>
{{end}}

{{if .Sum.Diagnostics}}
<h2>Diagnostics</h2>
<ul>
{{range .Sum.Diagnostics}}<li>{{.}}</li>
{{end}}</ul>
{{end}}
</body>
</html>
`))

// WriteHTML renders the run summary as a standalone HTML page.
func WriteHTML(w io.Writer, res *pipeline.Result) error {
	sum := Summarize(res)
	type levelRow struct {
		Name  string
		Count int
	}
	data := struct {
		Sum    *Summary
		Counts pipeline.Counts
		Levels []levelRow
	}{Sum: sum, Counts: res.Counts}
	for _, level := range []model.RiskLevel{model.RiskCritical, model.RiskHigh, model.RiskMedium, model.RiskLow} {
		data.Levels = append(data.Levels, levelRow{Name: level.String(), Count: sum.RiskCounts[level]})
	}
	if err := htmlTmpl.Execute(w, data); err != nil {
		return errclass.ErrReportWrite.WithMessagef("render html: %v", err)
	}
	return nil
}
