package email

var digestTemplate = `
<html>
<body>
<p>Snapshot from {{.GeneratedAt}} for {{.Owner}}: {{len .Attention}} of {{.TotalRepos}} repositories need attention.</p>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Repository</th><th>Track</th><th>Stage</th><th>Score</th><th>Last commit</th><th>Dirty files</th></tr>
{{range .Attention}}
<tr>
<td>{{.Name}}</td>
<td>{{.Track}}</td>
<td>{{.Stage}}</td>
<td>{{.Score}}</td>
<td>{{.LastCommit}}</td>
<td>{{.Dirty}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`
