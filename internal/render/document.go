package render

import (
	"bytes"
	"fmt"
	"html/template"

	"resumevault/internal/resume"
)

// Word 导出走“自包含 HTML 文档”路线：内联样式、无外部引用，
// 由浏览器/Office 以 .doc 方式打开。
var documentTmpl = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Name}}</title>
    <style>
        body { font-family: Arial, sans-serif; padding: 40px; }
        h1 { color: #2c3e50; border-bottom: 2px solid #2c3e50; padding-bottom: 10px; }
        h2 { color: #34495e; margin-top: 30px; border-bottom: 1px solid #bdc3c7; padding-bottom: 5px; }
        .contact-info { margin: 10px 0; }
        .section { margin: 20px 0; }
        .skill-tag { display: inline-block; background: #ecf0f1; padding: 5px 10px; margin: 5px; border-radius: 3px; }
    </style>
</head>
<body>
    <h1>{{.Name}}</h1>
    <div class="contact-info">
        {{if .Email}}<p>Email: {{.Email}}</p>{{end}}
        {{if .Phone}}<p>Phone: {{.Phone}}</p>{{end}}
        {{if .Address}}<p>Address: {{.Address}}</p>{{end}}
    </div>
    {{if .Skills}}
    <div class="section">
        <h2>Skills</h2>
        <p>{{range .Skills}}<span class="skill-tag">{{.}}</span> {{end}}</p>
    </div>
    {{end}}
    {{if .Experiences}}
    <div class="section">
        <h2>Experience</h2>
        {{range .Experiences}}
        <div>
            <h3>{{.JobTitle}} - {{.Company}}</h3>
            {{if or .Location .StartDate .EndDate}}<p><em>{{.Location}} {{.StartDate}} - {{.EndDate}}</em></p>{{end}}
            {{if .Description}}<p>{{.Description}}</p>{{end}}
        </div>
        {{end}}
    </div>
    {{end}}
    {{if .Education}}
    <div class="section">
        <h2>Education</h2>
        {{range .Education}}
        <div>
            <h3>{{.Degree}}{{if .Field}} in {{.Field}}{{end}}</h3>
            <p>{{.Institution}}{{if .Year}}, {{.Year}}{{end}}{{if .GPA}} | GPA: {{.GPA}}{{end}}</p>
        </div>
        {{end}}
    </div>
    {{end}}
</body>
</html>
`))

// RenderDocumentHTML 生成自包含的 Word 兼容 HTML 文档。
func RenderDocumentHTML(res *resume.Resume) (string, error) {
	var buf bytes.Buffer
	if err := documentTmpl.Execute(&buf, res); err != nil {
		return "", fmt.Errorf("render document html: %w", err)
	}
	return buf.String(), nil
}
