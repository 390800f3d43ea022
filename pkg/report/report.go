// Package report renders a run's ranked output to files for archival
// and sharing: an HTML page and a plain-text summary per run date.
package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/elonfeng/hotradar/pkg/trend"
)

// Writer renders reports into a date-keyed output directory.
type Writer struct {
	outputDir string
	tmpl      *template.Template
}

// NewWriter creates a report writer rooted at outputDir.
func NewWriter(outputDir string) (*Writer, error) {
	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	return &Writer{outputDir: outputDir, tmpl: tmpl}, nil
}

type reportData struct {
	Date      string
	Generated string
	Items     []reportRow
}

type reportRow struct {
	Position  int
	Title     string
	URL       string
	Platforms string
	Final     string
	Rank      string
	Frequency string
	Keyword   string
}

// Write renders the HTML and text reports and returns the HTML path.
func (w *Writer) Write(res *trend.Result) (string, error) {
	dir := filepath.Join(w.outputDir, res.Date.Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir %s: %w", dir, err)
	}

	data := reportData{
		Date:      res.Date.Format("2006-01-02"),
		Generated: time.Now().Format("15:04"),
	}
	for _, item := range res.Items {
		data.Items = append(data.Items, reportRow{
			Position:  item.Position,
			Title:     item.Cluster.Title,
			URL:       firstURL(item.Cluster),
			Platforms: strings.Join(item.Cluster.Platforms, " / "),
			Final:     fmt.Sprintf("%.3f", item.Scores.Final),
			Rank:      fmt.Sprintf("%.3f", item.Scores.Rank),
			Frequency: fmt.Sprintf("%.3f", item.Scores.Frequency),
			Keyword:   fmt.Sprintf("%.3f", item.Scores.Keyword),
		})
	}

	htmlPath := filepath.Join(dir, "report.html")
	f, err := os.Create(htmlPath)
	if err != nil {
		return "", fmt.Errorf("create report %s: %w", htmlPath, err)
	}
	if err := w.tmpl.Execute(f, data); err != nil {
		f.Close()
		return "", fmt.Errorf("render report: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close report: %w", err)
	}

	textPath := filepath.Join(dir, "report.txt")
	if err := os.WriteFile(textPath, []byte(renderText(res)), 0o644); err != nil {
		return "", fmt.Errorf("write text report: %w", err)
	}
	return htmlPath, nil
}

// renderText builds the plain-text variant of the report.
func renderText(res *trend.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "热点榜单 %s\n\n", res.Date.Format("2006-01-02"))
	for _, item := range res.Items {
		fmt.Fprintf(&b, "%2d. %s（%s）  %.3f\n",
			item.Position, item.Cluster.Title,
			strings.Join(item.Cluster.Platforms, "/"),
			item.Scores.Final)
	}
	if len(res.Items) == 0 {
		b.WriteString("（本次运行没有可用数据）\n")
	}
	return b.String()
}

func firstURL(c trend.Cluster) string {
	for _, m := range c.Members {
		if m.URL != "" {
			return m.URL
		}
	}
	return ""
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<title>热点榜单 {{.Date}}</title>
<style>
body { font-family: -apple-system, "PingFang SC", "Microsoft YaHei", sans-serif; max-width: 860px; margin: 2rem auto; color: #222; }
table { border-collapse: collapse; width: 100%; }
th, td { padding: .4rem .6rem; border-bottom: 1px solid #e3e3e3; text-align: left; }
th { background: #fafafa; }
td.num { text-align: right; font-variant-numeric: tabular-nums; }
.platforms { color: #888; font-size: .85em; }
</style>
</head>
<body>
<h1>热点榜单 {{.Date}}</h1>
<p class="platforms">生成于 {{.Generated}}</p>
<table>
<tr><th>#</th><th>话题</th><th>平台</th><th>综合</th><th>排名</th><th>频次</th><th>关键词</th></tr>
{{range .Items}}<tr>
<td class="num">{{.Position}}</td>
<td>{{if .URL}}<a href="{{.URL}}">{{.Title}}</a>{{else}}{{.Title}}{{end}}</td>
<td class="platforms">{{.Platforms}}</td>
<td class="num">{{.Final}}</td>
<td class="num">{{.Rank}}</td>
<td class="num">{{.Frequency}}</td>
<td class="num">{{.Keyword}}</td>
</tr>{{end}}
</table>
</body>
</html>
`
