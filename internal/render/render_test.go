package render

import (
	"context"
	"strings"
	"testing"
	"time"

	"resumevault/internal/resume"
)

func sampleResume() *resume.Resume {
	return &resume.Resume{
		ID:     1,
		UserID: 1,
		Name:   "Ada Lovelace",
		Email:  "ada@example.com",
		Phone:  "555-0100",
		Skills: []string{"Go", "Rust"},
		Experiences: []resume.Experience{
			{JobTitle: "Engineer", Company: "Babbage & Co", StartDate: "1840", EndDate: "1843"},
		},
		Education: []resume.Education{
			{Institution: "London", Degree: "BSc", Field: "Mathematics", Year: "1835", GPA: "4.0"},
		},
	}
}

func TestLookupTheme(t *testing.T) {
	if got := LookupTheme("classic"); got.PrimaryColor != "#8B7355" {
		t.Fatalf("classic primary = %s", got.PrimaryColor)
	}
	if got := LookupTheme("  Modern "); got.ID != "modern" {
		t.Fatalf("lookup should trim and lowercase, got %s", got.ID)
	}
	if got := LookupTheme("does-not-exist"); got.ID != DefaultThemeID {
		t.Fatalf("unknown theme should fall back, got %s", got.ID)
	}
	if got := LookupTheme(""); got.ID != DefaultThemeID {
		t.Fatalf("empty theme should fall back, got %s", got.ID)
	}
}

func TestRenderPreview_ThemedSections(t *testing.T) {
	html, err := RenderPreview(sampleResume(), LookupTheme("creative"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{
		"Ada Lovelace",
		"theme-creative",
		"#e74c3c",
		`<span class="skill-tag">Go</span>`,
		"Babbage &amp; Co",
		"in Mathematics",
		"GPA: 4.0",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("preview missing %q:\n%s", want, html)
		}
	}
}

func TestRenderPreview_OmitsEmptySections(t *testing.T) {
	res := sampleResume()
	res.Skills = nil
	res.Experiences = nil
	res.Education = nil

	html, err := RenderPreview(res, LookupTheme(""))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, section := range []string{">Skills<", ">Experience<", ">Education<"} {
		if strings.Contains(html, section) {
			t.Fatalf("empty section %q should be omitted:\n%s", section, html)
		}
	}
}

func TestRenderPreview_EscapesUserContent(t *testing.T) {
	res := sampleResume()
	res.Name = `<script>alert("x")</script>`
	res.Skills = []string{`<b>bold</b>`}

	html, err := RenderPreview(res, LookupTheme(""))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if strings.Contains(html, "<script>") || strings.Contains(html, "<b>bold</b>") {
		t.Fatalf("user markup leaked unescaped:\n%s", html)
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Fatalf("expected escaped markup:\n%s", html)
	}
}

func TestRenderDocumentHTML(t *testing.T) {
	html, err := RenderDocumentHTML(sampleResume())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "<html") || !strings.Contains(html, "Ada Lovelace") {
		t.Fatalf("document incomplete:\n%s", html)
	}
}

func TestRenderText(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	text := RenderText(sampleResume(), now)

	for _, want := range []string{
		"NAME: ADA LOVELACE",
		"CONTACT INFORMATION:",
		"• Go",
		"Job Title: Engineer",
		"Duration: 1840 - 1843",
		"Degree: BSc",
		"Generated: 2026-03-14 09:30:00",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("text export missing %q:\n%s", want, text)
		}
	}
}

func TestRenderText_OmitsEmptySections(t *testing.T) {
	res := sampleResume()
	res.Skills = nil
	res.Experiences = nil
	text := RenderText(res, time.Now())
	if strings.Contains(text, "SKILLS:") || strings.Contains(text, "PROFESSIONAL EXPERIENCE:") {
		t.Fatalf("empty sections should be omitted:\n%s", text)
	}
}

type stubPrinter struct {
	lastHTML string
	out      []byte
}

func (p *stubPrinter) PrintHTML(_ context.Context, html string) ([]byte, error) {
	p.lastHTML = html
	return p.out, nil
}

func TestRenderPDF_PassesThemedDocumentToPrinter(t *testing.T) {
	printer := &stubPrinter{out: []byte("%PDF-fake")}
	theme := LookupTheme("modern")

	data, err := RenderPDF(context.Background(), printer, sampleResume(), theme)
	if err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	if string(data) != "%PDF-fake" {
		t.Fatalf("unexpected pdf bytes: %q", data)
	}

	if !strings.Contains(printer.lastHTML, theme.PrimaryColor) {
		t.Fatalf("print document missing theme color:\n%s", printer.lastHTML)
	}
	if !strings.Contains(printer.lastHTML, "Go, Rust") {
		t.Fatalf("print document missing joined skills:\n%s", printer.lastHTML)
	}
}
