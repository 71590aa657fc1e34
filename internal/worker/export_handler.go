package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"resumevault/internal/errcode"
	"resumevault/internal/exportgw"
	"resumevault/internal/render"
	"resumevault/internal/resume"
	"resumevault/internal/tasks"
)

// PDFExportHandler 负责消费 PDF 导出任务：
// 读取简历 → 按主题编排打印文档 → 无头浏览器排印 → 走保存链落地 → 通知用户。
type PDFExportHandler struct {
	repo        *resume.Repository
	printer     render.Printer
	gateway     *exportgw.Gateway
	redisClient redis.UniversalClient
	logger      *slog.Logger
	now         func() time.Time
}

// NewPDFExportHandler 创建任务处理器。
func NewPDFExportHandler(
	repo *resume.Repository,
	printer render.Printer,
	gateway *exportgw.Gateway,
	redisClient redis.UniversalClient,
	logger *slog.Logger,
) *PDFExportHandler {
	return &PDFExportHandler{
		repo:        repo,
		printer:     printer,
		gateway:     gateway,
		redisClient: redisClient,
		logger:      logger,
		now:         time.Now,
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *PDFExportHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	var payload tasks.PDFExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return err
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Int64("user_id", payload.UserID),
	)
	log.Info("Starting resume PDF export task...")

	defer func() {
		if retErr == nil {
			return
		}
		if !isFinalAsynqAttempt(ctx) {
			return
		}

		notify := PDFExportNotifyMessage{
			Status:        "error",
			UserID:        payload.UserID,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     errcode.SystemError,
			ErrorMessage:  strings.TrimSpace(retErr.Error()),
		}
		if err := h.publishExportNotify(ctx, payload.UserID, notify); err != nil {
			log.Error("publish pdf error notification failed", slog.Any("error", err))
		}
	}()

	res, err := h.repo.Load(ctx, payload.UserID)
	if err != nil {
		log.Error("load resume failed", slog.Any("error", err))
		return err
	}
	if res == nil {
		log.Warn("resume not found, skipping task")
		return nil
	}

	theme := render.LookupTheme(payload.ThemeID)
	pdfBytes, err := render.RenderPDF(ctx, h.printer, res, theme)
	if err != nil {
		log.Error("render pdf failed", slog.Any("error", err))
		return err
	}

	file := exportgw.File{
		Name:        exportgw.FileName(res.Name, "pdf", h.now()),
		ContentType: "application/pdf",
		Data:        pdfBytes,
	}
	receipt, err := h.gateway.Save(ctx, file)
	if err != nil {
		log.Error("save pdf export failed", slog.Any("error", err))
		return err
	}

	notify := PDFExportNotifyMessage{
		Status:        "completed",
		UserID:        payload.UserID,
		CorrelationID: payload.CorrelationID,
		Strategy:      receipt.Strategy,
		Location:      receipt.Location,
		ErrorCode:     errcode.OK,
	}
	if err := h.publishExportNotify(ctx, payload.UserID, notify); err != nil {
		log.Error("publish redis notification failed", slog.Any("error", err))
		return err
	}

	log.Info("PDF export task completed successfully.",
		slog.String("strategy", receipt.Strategy))
	return nil
}

func (h *PDFExportHandler) publishExportNotify(ctx context.Context, userID int64, notify PDFExportNotifyMessage) error {
	data, err := json.Marshal(notify)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	channel := fmt.Sprintf("user_notify:%d", userID)
	if err := h.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", channel, err)
	}
	return nil
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
