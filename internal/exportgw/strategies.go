package exportgw

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
)

// Prompter 向用户征询保存位置。取消时返回 ErrCancelled。
type Prompter interface {
	PickDirectory(ctx context.Context) (string, error)
	PickFile(ctx context.Context, suggestedName string) (string, error)
}

// DirHandle 是跨次导出复用的目录授权。
// 目录提示成功后写入，写盘失败后丢弃，下次重新征询。
type DirHandle struct {
	mu   sync.Mutex
	path string
}

func NewDirHandle(initial string) *DirHandle {
	return &DirHandle{path: strings.TrimSpace(initial)}
}

func (h *DirHandle) Get() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.path, h.path != ""
}

func (h *DirHandle) Set(dir string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.path = strings.TrimSpace(dir)
}

func (h *DirHandle) Discard() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.path = ""
}

// RetainedDirStrategy 直接写入此前授权过的目录。
// 没有留存目录、或写入失败（目录被移走/权限收回）都算 Failed，
// 失败时同时丢弃句柄，让后面的目录提示重新征询。
type RetainedDirStrategy struct {
	handle *DirHandle
}

func NewRetainedDirStrategy(handle *DirHandle) *RetainedDirStrategy {
	return &RetainedDirStrategy{handle: handle}
}

func (s *RetainedDirStrategy) Name() string { return "retained_directory" }

func (s *RetainedDirStrategy) Try(ctx context.Context, file File) Result {
	dir, ok := s.handle.Get()
	if !ok {
		return Result{Outcome: OutcomeFailed, Err: errors.New("no retained directory")}
	}

	target := filepath.Join(dir, file.Name)
	if err := os.WriteFile(target, file.Data, 0o644); err != nil {
		s.handle.Discard()
		return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("write %s: %w", target, err)}
	}
	return Result{Outcome: OutcomeSuccess, Location: target}
}

// DirPromptStrategy 征询一个目录，写入成功后把目录留存给后续导出。
type DirPromptStrategy struct {
	prompter Prompter
	handle   *DirHandle
}

func NewDirPromptStrategy(prompter Prompter, handle *DirHandle) *DirPromptStrategy {
	return &DirPromptStrategy{prompter: prompter, handle: handle}
}

func (s *DirPromptStrategy) Name() string { return "directory_prompt" }

func (s *DirPromptStrategy) Try(ctx context.Context, file File) Result {
	dir, err := s.prompter.PickDirectory(ctx)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return Result{Outcome: OutcomeCancelled}
		}
		return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("pick directory: %w", err)}
	}

	target := filepath.Join(dir, file.Name)
	if err := os.WriteFile(target, file.Data, 0o644); err != nil {
		return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("write %s: %w", target, err)}
	}

	// 只有写成功才值得留存授权。
	s.handle.Set(dir)
	return Result{Outcome: OutcomeSuccess, Location: target}
}

// FilePromptStrategy 逐次征询完整保存路径，不留存任何授权。
type FilePromptStrategy struct {
	prompter Prompter
}

func NewFilePromptStrategy(prompter Prompter) *FilePromptStrategy {
	return &FilePromptStrategy{prompter: prompter}
}

func (s *FilePromptStrategy) Name() string { return "file_prompt" }

func (s *FilePromptStrategy) Try(ctx context.Context, file File) Result {
	target, err := s.prompter.PickFile(ctx, file.Name)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return Result{Outcome: OutcomeCancelled}
		}
		return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("pick file: %w", err)}
	}

	if err := os.WriteFile(target, file.Data, 0o644); err != nil {
		return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("write %s: %w", target, err)}
	}
	return Result{Outcome: OutcomeSuccess, Location: target}
}

// ObjectUploader 是对象存储侧需要的最小能力，storage.Client 满足之。
type ObjectUploader interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration) (string, error)
}

// DownloadFallbackStrategy 是兜底：上传到对象存储并返回限时下载链接。
// 对象键在文件名里追加时间戳，同一天多次导出互不覆盖。
type DownloadFallbackStrategy struct {
	uploader   ObjectUploader
	prefix     string
	presignTTL time.Duration
	now        func() time.Time
}

func NewDownloadFallbackStrategy(uploader ObjectUploader, prefix string, presignTTL time.Duration) *DownloadFallbackStrategy {
	if presignTTL <= 0 {
		presignTTL = 15 * time.Minute
	}
	return &DownloadFallbackStrategy{
		uploader:   uploader,
		prefix:     strings.Trim(prefix, "/"),
		presignTTL: presignTTL,
		now:        time.Now,
	}
}

func (s *DownloadFallbackStrategy) Name() string { return "download_fallback" }

func (s *DownloadFallbackStrategy) Try(ctx context.Context, file File) Result {
	objectKey := path.Join(s.prefix, stampedName(file.Name, s.now()))

	_, err := s.uploader.UploadFile(ctx, objectKey, bytes.NewReader(file.Data), int64(len(file.Data)), file.ContentType)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("upload %s: %w", objectKey, err)}
	}

	downloadURL, err := s.uploader.GeneratePresignedURL(ctx, objectKey, s.presignTTL)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("presign %s: %w", objectKey, err)}
	}
	return Result{Outcome: OutcomeSuccess, Location: downloadURL}
}

// stampedName 在扩展名前插入时间戳。
func stampedName(name string, t time.Time) string {
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s_%s%s", base, t.Format("150405"), ext)
}
