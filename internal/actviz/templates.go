package actviz

import "html/template"

var viewerFuncMap = template.FuncMap{
	"other": func(mode string) string {
		if mode == Sampled.String() {
			return AllChannels.String()
		}
		return Sampled.String()
	},
	"button": func(mode string) string {
		if mode == Sampled.String() {
			return "Show All Channels"
		}
		return "Show Sampled"
	},
}

var viewerPage = template.Must(template.New("viewer").Funcs(viewerFuncMap).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Name}} Activations</title>
<style>
body { background:#020617; color:#cbd5e1; font-family:sans-serif; margin:24px; }
.panel { background:#0f172a; border:1px solid #1e293b; border-radius:12px; padding:16px; display:inline-block; }
img { image-rendering:pixelated; max-width:100%; }
button { background:#8b5cf6; color:#fff; border:0; border-radius:4px; padding:4px 12px; cursor:pointer; }
.muted { color:#94a3b8; font-size:12px; }
</style>
</head>
<body>
<div class="panel">
  <h3>{{.Name}} Activations</h3>
  <p class="muted">{{.ChannelCount}} channels total, {{.Kind}}</p>
  <p>{{.Caption}}</p>
  {{if .Toggle}}
  <form method="post" action="/viewers/{{.ID}}/mode/{{other .Mode}}">
    <button type="submit">{{button .Mode}}</button>
  </form>
  {{end}}
  <p><img src="/api/v1/viewers/{{.ID}}/frame.png" alt="{{.Caption}}"></p>
  {{if eq .Kind "combined_grid"}}
  <p class="muted">Channel Grid ({{.Layout.Rows}}&times;{{.Layout.Cols}} cells, {{.Layout.CellHeight}}&times;{{.Layout.CellWidth}} each)</p>
  {{end}}
  <p class="muted">min {{printf "%.3f" .Stats.Min}} &middot; max {{printf "%.3f" .Stats.Max}} &middot; mean {{printf "%.3f" .Stats.Mean}}</p>
</div>
</body>
</html>
`))
