package render

import (
	"bytes"
	"fmt"
	"html/template"

	"resumevault/internal/resume"
)

// 渲染全部走 html/template：用户字段只会出现在文本节点位置，
// 转义由模板引擎在叶子处统一完成，调用方无法绕过。

type previewData struct {
	Resume *resume.Resume
	Theme  Theme
}

var previewTmpl = template.Must(template.New("preview").Parse(`<div class="resume-content theme-{{.Theme.ID}}" style="background-color: {{.Theme.BgColor}}; color: {{.Theme.TextColor}};">
    <div class="resume-header" style="border-bottom: 3px solid {{.Theme.PrimaryColor}};">
        <h1 style="color: {{.Theme.PrimaryColor}};">{{.Resume.Name}}</h1>
        <div class="contact-info">
            {{if .Resume.Email}}<span>{{.Resume.Email}}</span>{{end}}
            {{if .Resume.Phone}}<span>{{.Resume.Phone}}</span>{{end}}
            {{if .Resume.Address}}<span>{{.Resume.Address}}</span>{{end}}
        </div>
    </div>
    {{if .Resume.Skills}}
    <div class="resume-section">
        <h2 style="color: {{.Theme.SecondaryColor}};">Skills</h2>
        <div class="skills-list">
            {{range .Resume.Skills}}<span class="skill-tag">{{.}}</span>{{end}}
        </div>
    </div>
    {{end}}
    {{if .Resume.Experiences}}
    <div class="resume-section">
        <h2 style="color: {{.Theme.SecondaryColor}};">Experience</h2>
        {{range .Resume.Experiences}}
        <div class="experience-item">
            <div class="exp-header">
                <strong>{{.JobTitle}}</strong>
                <span class="exp-company">{{.Company}}</span>
            </div>
            {{if or .Location .StartDate .EndDate}}
            <div class="exp-meta">
                {{if .Location}}<span>{{.Location}}</span>{{end}}
                {{if or .StartDate .EndDate}}<span>{{.StartDate}} - {{.EndDate}}</span>{{end}}
            </div>
            {{end}}
            {{if .Description}}<p class="exp-description">{{.Description}}</p>{{end}}
        </div>
        {{end}}
    </div>
    {{end}}
    {{if .Resume.Education}}
    <div class="resume-section">
        <h2 style="color: {{.Theme.SecondaryColor}};">Education</h2>
        {{range .Resume.Education}}
        <div class="education-item">
            <div class="edu-header">
                <strong>{{.Degree}}</strong>
                {{if .Field}}<span>in {{.Field}}</span>{{end}}
            </div>
            <div class="edu-meta">
                {{if .Institution}}<span>{{.Institution}}</span>{{end}}
                {{if .Year}}<span>{{.Year}}</span>{{end}}
                {{if .GPA}}<span>GPA: {{.GPA}}</span>{{end}}
            </div>
        </div>
        {{end}}
    </div>
    {{end}}
</div>
`))

// RenderPreview 将简历投影为带主题的 HTML 片段，供编辑预览与公开只读页使用。
// 不修改传入的简历；列表为空的段落整段省略。
func RenderPreview(res *resume.Resume, theme Theme) (string, error) {
	var buf bytes.Buffer
	if err := previewTmpl.Execute(&buf, previewData{Resume: res, Theme: theme}); err != nil {
		return "", fmt.Errorf("render preview: %w", err)
	}
	return buf.String(), nil
}
