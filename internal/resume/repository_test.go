package resume

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"resumevault/internal/kvstore"
)

func newTestRepository() *Repository {
	return NewRepository(kvstore.NewMemoryStore())
}

func sampleFields() Fields {
	return Fields{
		Name:    "Ada Lovelace",
		Email:   "ada@example.com",
		Phone:   "555-0100",
		Address: "12 Analytical Row",
		Skills:  "go, rust, go",
		Experiences: []Experience{
			{JobTitle: "Engineer", Company: "Babbage & Co"},
		},
		Education: []Education{
			{Institution: "London", Degree: "BSc"},
		},
	}
}

func TestSave_Validation(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	fields := sampleFields()
	fields.Name = "   "
	if _, err := repo.Save(ctx, 1, fields); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}

	fields = sampleFields()
	fields.Email = "not-an-email"
	if _, err := repo.Save(ctx, 1, fields); !errors.Is(err, ErrEmailInvalid) {
		t.Fatalf("expected ErrEmailInvalid, got %v", err)
	}
}

func TestSave_ParsesSkillsPreservingOrderAndDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	saved, err := repo.Save(ctx, 1, sampleFields())
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	want := []string{"go", "rust", "go"}
	if !reflect.DeepEqual(saved.Skills, want) {
		t.Fatalf("skills = %v, want %v", saved.Skills, want)
	}
}

func TestSave_UpsertPreservesID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	first, err := repo.Save(ctx, 1, sampleFields())
	if err != nil {
		t.Fatalf("first save: %v", err)
	}

	fields := sampleFields()
	fields.Phone = "555-0199"
	second, err := repo.Save(ctx, 1, fields)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("ID changed on overwrite: %d -> %d", first.ID, second.ID)
	}
	if second.Phone != "555-0199" {
		t.Fatalf("phone not updated: %s", second.Phone)
	}

	loaded, err := repo.Load(ctx, 1)
	if err != nil || loaded == nil {
		t.Fatalf("load: res=%v err=%v", loaded, err)
	}
	if loaded.ID != first.ID {
		t.Fatalf("loaded ID = %d, want %d", loaded.ID, first.ID)
	}
}

func TestSave_ClearsDraftAsLastStep(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	if err := repo.AutoSaveDraft(ctx, 1, sampleFields()); err != nil {
		t.Fatalf("autosave: %v", err)
	}
	if draft, _ := repo.LoadDraft(ctx, 1); draft == nil {
		t.Fatalf("draft should exist before save")
	}

	if _, err := repo.Save(ctx, 1, sampleFields()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if draft, _ := repo.LoadDraft(ctx, 1); draft != nil {
		t.Fatalf("draft should be cleared after save, got %+v", draft)
	}
}

func TestLoad_NoResumeReturnsNilWithoutError(t *testing.T) {
	repo := newTestRepository()
	res, err := repo.Load(context.Background(), 42)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res != nil {
		t.Fatalf("expected nil resume, got %+v", res)
	}
}

func TestResumesArePerUser(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	if _, err := repo.Save(ctx, 1, sampleFields()); err != nil {
		t.Fatalf("save user 1: %v", err)
	}
	other := sampleFields()
	other.Name = "Grace Hopper"
	other.Email = "grace@example.com"
	if _, err := repo.Save(ctx, 2, other); err != nil {
		t.Fatalf("save user 2: %v", err)
	}

	one, _ := repo.Load(ctx, 1)
	two, _ := repo.Load(ctx, 2)
	if one == nil || two == nil {
		t.Fatalf("both resumes should load")
	}
	if one.Name != "Ada Lovelace" || two.Name != "Grace Hopper" {
		t.Fatalf("cross-user mixup: %q / %q", one.Name, two.Name)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	original, err := repo.Save(ctx, 1, sampleFields())
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	doc, err := repo.Export(ctx, 1, "ada")
	if err != nil || doc == nil {
		t.Fatalf("export: doc=%v err=%v", doc, err)
	}
	if doc.ExportedBy != "ada" || doc.Version != DocumentVersion {
		t.Fatalf("document metadata: %+v", doc)
	}
	if _, err := time.Parse(time.RFC3339, doc.ExportedAt); err != nil {
		t.Fatalf("exportedAt not RFC3339: %q", doc.ExportedAt)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal doc: %v", err)
	}

	// 导入到另一个用户，内容一致但身份归属导入方。
	imported, err := repo.Import(ctx, 2, raw)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if imported.UserID != 2 {
		t.Fatalf("imported userID = %d", imported.UserID)
	}
	if imported.Name != original.Name || !reflect.DeepEqual(imported.Skills, original.Skills) {
		t.Fatalf("imported content mismatch: %+v", imported)
	}
}

func TestImport_Malformed(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	if _, err := repo.Import(ctx, 1, []byte("{not json")); !errors.Is(err, ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument for bad json, got %v", err)
	}
	if _, err := repo.Import(ctx, 1, []byte(`{"phone":"555"}`)); !errors.Is(err, ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument for empty identity, got %v", err)
	}
}

func TestImport_FillsMissingCollections(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	imported, err := repo.Import(ctx, 1, []byte(`{"name":"Ada","email":"ada@example.com"}`))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if imported.Skills == nil || imported.Experiences == nil || imported.Education == nil {
		t.Fatalf("collections should be non-nil: %+v", imported)
	}
}

func TestExport_NoResume(t *testing.T) {
	repo := newTestRepository()
	doc, err := repo.Export(context.Background(), 7, "nobody")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if doc != nil {
		t.Fatalf("expected nil document, got %+v", doc)
	}
}

func TestParseSkills(t *testing.T) {
	got := ParseSkills(" go ,, rust ,go,  ")
	want := []string{"go", "rust", "go"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseSkills = %v, want %v", got, want)
	}
	if len(ParseSkills("   ")) != 0 {
		t.Fatalf("blank input should yield no skills")
	}
}
