package exportgw

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
)

type scriptedStrategy struct {
	name   string
	result Result
	calls  int
}

func (s *scriptedStrategy) Name() string { return s.name }
func (s *scriptedStrategy) Try(context.Context, File) Result {
	s.calls++
	return s.result
}

func testFile() File {
	return File{Name: "ada_resume_2026-03-14.txt", ContentType: "text/plain", Data: []byte("hello")}
}

func TestGateway_FallsThroughFailuresUntilSuccess(t *testing.T) {
	first := &scriptedStrategy{name: "first", result: Result{Outcome: OutcomeFailed, Err: errors.New("boom")}}
	second := &scriptedStrategy{name: "second", result: Result{Outcome: OutcomeSuccess, Location: "/tmp/x"}}
	third := &scriptedStrategy{name: "third", result: Result{Outcome: OutcomeSuccess}}

	g := NewGateway(nil, first, second, third)
	receipt, err := g.Save(context.Background(), testFile())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if receipt.Strategy != "second" || receipt.Location != "/tmp/x" {
		t.Fatalf("receipt = %+v", receipt)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Fatalf("call counts: first=%d second=%d", first.calls, second.calls)
	}
	if third.calls != 0 {
		t.Fatalf("success must stop the chain, third called %d times", third.calls)
	}
}

func TestGateway_CancelStopsChainSilently(t *testing.T) {
	first := &scriptedStrategy{name: "first", result: Result{Outcome: OutcomeCancelled}}
	second := &scriptedStrategy{name: "second", result: Result{Outcome: OutcomeSuccess}}

	g := NewGateway(nil, first, second)
	_, err := g.Save(context.Background(), testFile())
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if second.calls != 0 {
		t.Fatalf("cancel must not fall through")
	}
}

func TestGateway_AllFailed(t *testing.T) {
	first := &scriptedStrategy{name: "first", result: Result{Outcome: OutcomeFailed, Err: errors.New("a")}}
	second := &scriptedStrategy{name: "second", result: Result{Outcome: OutcomeFailed, Err: errors.New("b")}}

	g := NewGateway(nil, first, second)
	_, err := g.Save(context.Background(), testFile())
	if err == nil || !strings.Contains(err.Error(), "first") || !strings.Contains(err.Error(), "second") {
		t.Fatalf("aggregate error should name strategies, got %v", err)
	}
}

func TestFileName(t *testing.T) {
	stamp := time.Date(2026, 3, 14, 15, 4, 5, 0, time.UTC)

	if got := FileName("Ada Lovelace", "pdf", stamp); got != "ada_lovelace_resume_2026-03-14.pdf" {
		t.Fatalf("FileName = %q", got)
	}
	if got := FileName("J@ne / D'oe!", "txt", stamp); got != "j_ne_d_oe_resume_2026-03-14.txt" {
		t.Fatalf("FileName = %q", got)
	}
	if got := FileName("???", "doc", stamp); got != "my_resume_2026-03-14.doc" {
		t.Fatalf("blank-safe FileName = %q", got)
	}
	if got := FallbackFileName("Ada", "pdf", stamp); got != "ada_resume_2026-03-14_150405.pdf" {
		t.Fatalf("FallbackFileName = %q", got)
	}
}

func TestRetainedDirStrategy(t *testing.T) {
	dir := t.TempDir()
	handle := NewDirHandle(dir)
	s := NewRetainedDirStrategy(handle)

	file := testFile()
	result := s.Try(context.Background(), file)
	if result.Outcome != OutcomeSuccess {
		t.Fatalf("result = %+v", result)
	}
	data, err := os.ReadFile(filepath.Join(dir, file.Name))
	if err != nil || string(data) != "hello" {
		t.Fatalf("written file: data=%q err=%v", data, err)
	}
}

func TestRetainedDirStrategy_DiscardsHandleOnFailure(t *testing.T) {
	handle := NewDirHandle(filepath.Join(t.TempDir(), "does-not-exist"))
	s := NewRetainedDirStrategy(handle)

	result := s.Try(context.Background(), testFile())
	if result.Outcome != OutcomeFailed {
		t.Fatalf("result = %+v", result)
	}
	if _, ok := handle.Get(); ok {
		t.Fatalf("failed write must discard the retained handle")
	}

	// 没有句柄时同样是 Failed，交给下一策略。
	if again := s.Try(context.Background(), testFile()); again.Outcome != OutcomeFailed {
		t.Fatalf("result without handle = %+v", again)
	}
}

type fakePrompter struct {
	dir     string
	file    string
	err     error
	watched int
}

func (p *fakePrompter) PickDirectory(context.Context) (string, error) {
	p.watched++
	return p.dir, p.err
}

func (p *fakePrompter) PickFile(_ context.Context, suggested string) (string, error) {
	p.watched++
	if p.err != nil {
		return "", p.err
	}
	return filepath.Join(p.dir, suggested), nil
}

func TestDirPromptStrategy_RetainsDirectoryAfterSuccess(t *testing.T) {
	dir := t.TempDir()
	handle := NewDirHandle("")
	s := NewDirPromptStrategy(&fakePrompter{dir: dir}, handle)

	result := s.Try(context.Background(), testFile())
	if result.Outcome != OutcomeSuccess {
		t.Fatalf("result = %+v", result)
	}
	if retained, ok := handle.Get(); !ok || retained != dir {
		t.Fatalf("handle = %q ok=%v", retained, ok)
	}
}

func TestDirPromptStrategy_Cancelled(t *testing.T) {
	handle := NewDirHandle("")
	s := NewDirPromptStrategy(&fakePrompter{err: ErrCancelled}, handle)

	if result := s.Try(context.Background(), testFile()); result.Outcome != OutcomeCancelled {
		t.Fatalf("result = %+v", result)
	}
	if _, ok := handle.Get(); ok {
		t.Fatalf("cancel must not retain a directory")
	}
}

func TestFilePromptStrategy(t *testing.T) {
	dir := t.TempDir()
	s := NewFilePromptStrategy(&fakePrompter{dir: dir})

	file := testFile()
	result := s.Try(context.Background(), file)
	if result.Outcome != OutcomeSuccess {
		t.Fatalf("result = %+v", result)
	}
	if _, err := os.Stat(filepath.Join(dir, file.Name)); err != nil {
		t.Fatalf("file not written: %v", err)
	}
}

type fakeUploader struct {
	objects map[string][]byte
	fail    bool
}

func (u *fakeUploader) UploadFile(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (*minio.UploadInfo, error) {
	if u.fail {
		return nil, errors.New("upload refused")
	}
	if u.objects == nil {
		u.objects = map[string][]byte{}
	}
	b, _ := io.ReadAll(reader)
	u.objects[objectName] = b
	return &minio.UploadInfo{}, nil
}

func (u *fakeUploader) GeneratePresignedURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://example.invalid/" + objectKey, nil
}

func TestDownloadFallbackStrategy(t *testing.T) {
	uploader := &fakeUploader{}
	s := NewDownloadFallbackStrategy(uploader, "downloads", time.Minute)
	s.now = func() time.Time { return time.Date(2026, 3, 14, 15, 4, 5, 0, time.UTC) }

	result := s.Try(context.Background(), testFile())
	if result.Outcome != OutcomeSuccess {
		t.Fatalf("result = %+v", result)
	}

	wantKey := "downloads/ada_resume_2026-03-14_150405.txt"
	if _, ok := uploader.objects[wantKey]; !ok {
		t.Fatalf("uploaded keys = %v, want %q", uploader.objects, wantKey)
	}
	if result.Location != "https://example.invalid/"+wantKey {
		t.Fatalf("location = %q", result.Location)
	}
}

func TestDownloadFallbackStrategy_UploadFailure(t *testing.T) {
	s := NewDownloadFallbackStrategy(&fakeUploader{fail: true}, "downloads", time.Minute)
	if result := s.Try(context.Background(), testFile()); result.Outcome != OutcomeFailed {
		t.Fatalf("result = %+v", result)
	}
}
