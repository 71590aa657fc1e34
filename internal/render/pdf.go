package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"resumevault/internal/resume"
)

// Printer 是外部 PDF 排印协作方（无头浏览器）。
// 渲染引擎只负责把主题化的版面编排进打印文档，不触碰 PDF 编码。
type Printer interface {
	PrintHTML(ctx context.Context, html string) ([]byte, error)
}

// 打印文档：主题主色的页眉色带、白色页眉文字、黑色正文，
// 段落标题与正文依次向下排布，由 Chrome 以 A4 打印。
var printTmpl = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Resume.Name}}</title>
<style>
    @page { size: A4; margin: 0; }
    body { font-family: Helvetica, Arial, sans-serif; margin: 0; color: #000; }
    .header { background-color: {{.Theme.PrimaryColor}}; color: #fff; padding: 28px 40px; }
    .header h1 { margin: 0 0 8px 0; font-size: 24pt; }
    .header p { margin: 2px 0; font-size: 10pt; }
    .body { padding: 24px 40px; }
    h2 { font-size: 16pt; color: {{.Theme.SecondaryColor}}; margin: 18px 0 8px 0; }
    p, li { font-size: 10pt; line-height: 1.5; }
    .entry { margin-bottom: 10px; }
    .entry strong { font-size: 10pt; }
</style>
</head>
<body>
    <div class="header">
        <h1>{{.Resume.Name}}</h1>
        {{if .Resume.Email}}<p>{{.Resume.Email}}</p>{{end}}
        {{if .Resume.Phone}}<p>{{.Resume.Phone}}</p>{{end}}
        {{if .Resume.Address}}<p>{{.Resume.Address}}</p>{{end}}
    </div>
    <div class="body">
        {{if .Resume.Skills}}
        <h2>Skills</h2>
        <p>{{.SkillLine}}</p>
        {{end}}
        {{if .Resume.Experiences}}
        <h2>Experience</h2>
        {{range .Resume.Experiences}}
        <div class="entry">
            <strong>{{.JobTitle}} - {{.Company}}</strong>
            {{if .Description}}<p>{{.Description}}</p>{{end}}
        </div>
        {{end}}
        {{end}}
        {{if .Resume.Education}}
        <h2>Education</h2>
        {{range .Resume.Education}}
        <div class="entry">
            <strong>{{.Degree}}{{if .Field}} in {{.Field}}{{end}}</strong>
            <p>{{.Institution}}{{if .Year}}, {{.Year}}{{end}}{{if .GPA}} | GPA: {{.GPA}}{{end}}</p>
        </div>
        {{end}}
        {{end}}
    </div>
</body>
</html>
`))

type printData struct {
	Resume    *resume.Resume
	Theme     Theme
	SkillLine string
}

// BuildPrintDocument 生成交给打印协作方的主题化 HTML 文档。
func BuildPrintDocument(res *resume.Resume, theme Theme) (string, error) {
	var buf bytes.Buffer
	data := printData{
		Resume:    res,
		Theme:     theme,
		SkillLine: resume.JoinSkills(res.Skills),
	}
	if err := printTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("build print document: %w", err)
	}
	return buf.String(), nil
}

// RenderPDF 编排打印文档并委托 Printer 产出 PDF 字节。
func RenderPDF(ctx context.Context, printer Printer, res *resume.Resume, theme Theme) ([]byte, error) {
	doc, err := BuildPrintDocument(res, theme)
	if err != nil {
		return nil, err
	}
	data, err := printer.PrintHTML(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return data, nil
}
