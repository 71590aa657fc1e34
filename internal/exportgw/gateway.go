package exportgw

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
)

// ErrCancelled 表示用户主动放弃保存。链路立即终止且不视为错误告警。
var ErrCancelled = errors.New("export cancelled")

// Outcome 是单个策略的尝试结果。
type Outcome int

const (
	// OutcomeSuccess 文件已落地，链路结束。
	OutcomeSuccess Outcome = iota
	// OutcomeCancelled 用户取消，链路静默终止。
	OutcomeCancelled
	// OutcomeFailed 本策略失败，交给下一个策略。
	OutcomeFailed
)

// Result 携带策略的结论与（成功时的）落地位置。
type Result struct {
	Outcome  Outcome
	Location string
	Err      error
}

// File 是待保存的导出产物。
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Strategy 是一种保存手段。Try 只汇报结论，不自行决定链路走向。
type Strategy interface {
	Name() string
	Try(ctx context.Context, file File) Result
}

// Receipt 记录最终由哪个策略落地、落在哪里。
type Receipt struct {
	Strategy string
	Location string
}

// Gateway 依序尝试各策略：成功或取消即停，失败才向后递补。
type Gateway struct {
	strategies []Strategy
	logger     *slog.Logger
}

func NewGateway(logger *slog.Logger, strategies ...Strategy) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{strategies: strategies, logger: logger}
}

// Save 执行保存链。所有策略都失败时返回聚合错误。
func (g *Gateway) Save(ctx context.Context, file File) (Receipt, error) {
	if len(g.strategies) == 0 {
		return Receipt{}, errors.New("no export strategies configured")
	}

	var failures []string
	for _, strategy := range g.strategies {
		if err := ctx.Err(); err != nil {
			return Receipt{}, err
		}

		result := strategy.Try(ctx, file)
		switch result.Outcome {
		case OutcomeSuccess:
			g.logger.Info("export saved",
				"strategy", strategy.Name(),
				"file", file.Name,
				"location", result.Location)
			return Receipt{Strategy: strategy.Name(), Location: result.Location}, nil
		case OutcomeCancelled:
			g.logger.Info("export cancelled by user", "strategy", strategy.Name(), "file", file.Name)
			return Receipt{}, ErrCancelled
		case OutcomeFailed:
			g.logger.Warn("export strategy failed, trying next",
				"strategy", strategy.Name(),
				"file", file.Name,
				"error", result.Err)
			failures = append(failures, fmt.Sprintf("%s: %v", strategy.Name(), result.Err))
		}
	}

	return Receipt{}, fmt.Errorf("all export strategies failed: %s", strings.Join(failures, "; "))
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// FileName 由简历姓名派生导出文件名：非字母数字折叠为下划线、
// 统一小写，并加上日期戳。ext 不含点。
func FileName(ownerName, ext string, t time.Time) string {
	return fileNameStamp(ownerName, ext, t.Format("2006-01-02"))
}

// FallbackFileName 供下载回退使用：日期戳之外再追加时间，
// 避免同日多次导出互相覆盖。
func FallbackFileName(ownerName, ext string, t time.Time) string {
	return fileNameStamp(ownerName, ext, t.Format("2006-01-02_150405"))
}

func fileNameStamp(ownerName, ext, stamp string) string {
	safe := strings.ToLower(unsafeFileChars.ReplaceAllString(ownerName, "_"))
	safe = strings.Trim(safe, "_")
	if safe == "" {
		safe = "my"
	}
	return fmt.Sprintf("%s_resume_%s.%s", safe, stamp, ext)
}
