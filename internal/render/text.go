package render

import (
	"fmt"
	"strings"
	"time"

	"resumevault/internal/resume"
)

const (
	textBorder  = "═══════════════════════════════════════════════════════════"
	textDivider = "───────────────────────────────────────────────────────────"
)

// RenderText 生成定宽带边框的纯文本简历报告，用于 .txt 导出。
// 段落集合与 HTML 预览一致：空列表的段落整段省略。
func RenderText(res *resume.Resume, now time.Time) string {
	var b strings.Builder

	b.WriteString(textBorder + "\n")
	b.WriteString("                    RESUME\n")
	b.WriteString(textBorder + "\n\n")

	if res.Name != "" {
		fmt.Fprintf(&b, "NAME: %s\n\n", strings.ToUpper(res.Name))
	}

	if res.Email != "" || res.Phone != "" || res.Address != "" {
		b.WriteString("CONTACT INFORMATION:\n")
		b.WriteString(textDivider + "\n")
		if res.Email != "" {
			fmt.Fprintf(&b, "Email: %s\n", res.Email)
		}
		if res.Phone != "" {
			fmt.Fprintf(&b, "Phone: %s\n", res.Phone)
		}
		if res.Address != "" {
			fmt.Fprintf(&b, "Address: %s\n", res.Address)
		}
		b.WriteString("\n")
	}

	if len(res.Skills) > 0 {
		b.WriteString("SKILLS:\n")
		b.WriteString(textDivider + "\n")
		for _, skill := range res.Skills {
			fmt.Fprintf(&b, "• %s\n", skill)
		}
		b.WriteString("\n")
	}

	if len(res.Experiences) > 0 {
		b.WriteString("PROFESSIONAL EXPERIENCE:\n")
		b.WriteString(textDivider + "\n")
		for _, exp := range res.Experiences {
			fmt.Fprintf(&b, "Job Title: %s\n", exp.JobTitle)
			if exp.Company != "" {
				fmt.Fprintf(&b, "Company: %s\n", exp.Company)
			}
			if exp.Location != "" {
				fmt.Fprintf(&b, "Location: %s\n", exp.Location)
			}
			if exp.StartDate != "" || exp.EndDate != "" {
				fmt.Fprintf(&b, "Duration: %s - %s\n", exp.StartDate, exp.EndDate)
			}
			if exp.Description != "" {
				fmt.Fprintf(&b, "Description: %s\n", exp.Description)
			}
			b.WriteString("\n")
		}
	}

	if len(res.Education) > 0 {
		b.WriteString("EDUCATION:\n")
		b.WriteString(textDivider + "\n")
		for _, edu := range res.Education {
			fmt.Fprintf(&b, "Degree: %s\n", edu.Degree)
			if edu.Field != "" {
				fmt.Fprintf(&b, "Field: %s\n", edu.Field)
			}
			if edu.Institution != "" {
				fmt.Fprintf(&b, "Institution: %s\n", edu.Institution)
			}
			if edu.Year != "" {
				fmt.Fprintf(&b, "Year: %s\n", edu.Year)
			}
			if edu.GPA != "" {
				fmt.Fprintf(&b, "GPA: %s\n", edu.GPA)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString(textBorder + "\n")
	fmt.Fprintf(&b, "Generated: %s\n", now.Format("2006-01-02 15:04:05"))
	b.WriteString(textBorder + "\n")

	return b.String()
}
