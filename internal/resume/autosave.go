package resume

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultAutoSaveDebounce 是用户停止输入后到草稿落盘的等待窗口。
const DefaultAutoSaveDebounce = 2 * time.Second

// AutoSaver 对草稿写入做防抖：同一用户的计时器重置而非叠加，
// 一个空闲窗口内至多落盘一次，且只写最后一批字段。
type AutoSaver struct {
	repo   *Repository
	delay  time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	pending map[int64]*time.Timer
}

// NewAutoSaver 构造防抖自动保存器。delay <= 0 时使用默认窗口。
func NewAutoSaver(repo *Repository, delay time.Duration, logger *slog.Logger) *AutoSaver {
	if delay <= 0 {
		delay = DefaultAutoSaveDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoSaver{
		repo:    repo,
		delay:   delay,
		logger:  logger,
		pending: make(map[int64]*time.Timer),
	}
}

// Schedule 记录一批表单字段并重置该用户的计时器。
func (a *AutoSaver) Schedule(userID int64, fields Fields) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if timer, ok := a.pending[userID]; ok {
		timer.Stop()
	}

	a.pending[userID] = time.AfterFunc(a.delay, func() {
		a.flush(userID, fields)
	})
}

// Cancel 丢弃该用户尚未触发的草稿写入。
// 显式 Save 与离开编辑页都必须先调用它，避免迟到的草稿写入。
func (a *AutoSaver) Cancel(userID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if timer, ok := a.pending[userID]; ok {
		timer.Stop()
		delete(a.pending, userID)
	}
}

func (a *AutoSaver) flush(userID int64, fields Fields) {
	a.mu.Lock()
	delete(a.pending, userID)
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.repo.AutoSaveDraft(ctx, userID, fields); err != nil {
		a.logger.Error("autosave draft failed",
			slog.Int64("user_id", userID),
			slog.Any("error", err),
		)
	}
}
