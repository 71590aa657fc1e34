package api

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resumevault/internal/exportgw"
	"resumevault/internal/resume"
)

func newExportTestHandler(t *testing.T) (*ExportHandler, Deps, string) {
	t.Helper()
	deps := newTestDeps(t)

	dir := t.TempDir()
	deps.Gateway = exportgw.NewGateway(nil,
		exportgw.NewRetainedDirStrategy(exportgw.NewDirHandle(dir)),
	)
	return NewExportHandler(deps), deps, dir
}

func TestExportText_SavesThroughGateway(t *testing.T) {
	h, deps, dir := newExportTestHandler(t)

	user, err := deps.Directory.Register(context.Background(), "Ada", "ada", "ada@example.com", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := deps.Repo.Save(context.Background(), user.ID, sampleFieldsPayload()); err != nil {
		t.Fatalf("save resume: %v", err)
	}

	c, w := newJSONContext(t, http.MethodGet, "/v1/resume/export/text", nil, user.ID)
	h.ExportText(c)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Status   string `json:"status"`
		File     string `json:"file"`
		Strategy string `json:"strategy"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "saved" || resp.Strategy != "retained_directory" {
		t.Fatalf("response = %+v", resp)
	}
	if !strings.HasPrefix(resp.File, "ada_lovelace_resume_") || !strings.HasSuffix(resp.File, ".txt") {
		t.Fatalf("file name = %q", resp.File)
	}

	data, err := os.ReadFile(filepath.Join(dir, resp.File))
	if err != nil {
		t.Fatalf("read exported file: %v", err)
	}
	if !strings.Contains(string(data), "NAME: ADA LOVELACE") {
		t.Fatalf("exported text incomplete:\n%s", data)
	}
}

func TestExportText_NoResume(t *testing.T) {
	h, _, _ := newExportTestHandler(t)

	c, w := newJSONContext(t, http.MethodGet, "/v1/resume/export/text", nil, 99)
	h.ExportText(c)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
}

func TestExportWord_SavesHTMLDocument(t *testing.T) {
	h, deps, dir := newExportTestHandler(t)

	user, err := deps.Directory.Register(context.Background(), "Ada", "ada", "ada@example.com", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := deps.Repo.Save(context.Background(), user.ID, sampleFieldsPayload()); err != nil {
		t.Fatalf("save resume: %v", err)
	}

	c, w := newJSONContext(t, http.MethodGet, "/v1/resume/export/word", nil, user.ID)
	h.ExportWord(c)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("exported files = %v err=%v", entries, err)
	}
	name := entries[0].Name()
	if !strings.HasSuffix(name, ".doc") {
		t.Fatalf("file name = %q", name)
	}
	data, _ := os.ReadFile(filepath.Join(dir, name))
	if !strings.Contains(string(data), "<html") || !strings.Contains(string(data), "Ada Lovelace") {
		t.Fatalf("word document incomplete:\n%s", data)
	}
}

func TestExportDocument_AttachmentWithMetadata(t *testing.T) {
	h, deps, _ := newExportTestHandler(t)

	user, err := deps.Directory.Register(context.Background(), "Ada", "ada", "ada@example.com", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := deps.Repo.Save(context.Background(), user.ID, sampleFieldsPayload()); err != nil {
		t.Fatalf("save resume: %v", err)
	}

	c, w := newJSONContext(t, http.MethodGet, "/v1/resume/document", nil, user.ID)
	h.ExportDocument(c)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Fatalf("content disposition = %q", cd)
	}

	var doc resume.Document
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.ExportedBy != "ada" || doc.Version != resume.DocumentVersion {
		t.Fatalf("document = %+v", doc)
	}
}

func TestExportDocument_NoResume(t *testing.T) {
	h, deps, _ := newExportTestHandler(t)

	user, err := deps.Directory.Register(context.Background(), "Ada", "ada", "ada@example.com", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	c, w := newJSONContext(t, http.MethodGet, "/v1/resume/document", nil, user.ID)
	h.ExportDocument(c)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
}
