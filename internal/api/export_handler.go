package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"resumevault/internal/account"
	"resumevault/internal/api/middleware"
	"resumevault/internal/exportgw"
	"resumevault/internal/render"
	"resumevault/internal/resume"
	"resumevault/internal/tasks"
)

// ExportHandler 负责各种格式的简历导出。
// 文本与 Word 同步走保存链；PDF 入队后台任务，经 WebSocket 通知结果。
type ExportHandler struct {
	repo        *resume.Repository
	directory   *account.Directory
	gateway     *exportgw.Gateway
	asynqClient *asynq.Client
	now         func() time.Time
}

// NewExportHandler 构造 ExportHandler。
func NewExportHandler(deps Deps) *ExportHandler {
	return &ExportHandler{
		repo:        deps.Repo,
		directory:   deps.Directory,
		gateway:     deps.Gateway,
		asynqClient: deps.AsynqClient,
		now:         time.Now,
	}
}

// ExportDocument 以可移植 JSON 文档形式返回简历（用于备份与迁移）。
func (h *ExportHandler) ExportDocument(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	user, err := h.directory.GetByID(ctx, userID)
	if err != nil {
		Unauthorized(c)
		return
	}

	doc, err := h.repo.Export(ctx, userID, user.Username)
	if err != nil {
		Internal(c, "failed to export resume")
		return
	}
	if doc == nil {
		NotFound(c, "no resume to export")
		return
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		Internal(c, "failed to encode document")
		return
	}

	fileName := exportgw.FileName(doc.Name, "json", h.now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "application/json", data)
}

// ExportText 生成纯文本简历并走保存链落地。
func (h *ExportHandler) ExportText(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	res, err := h.repo.Load(ctx, userID)
	if err != nil {
		Internal(c, "failed to load resume")
		return
	}
	if res == nil {
		NotFound(c, "no resume to export")
		return
	}

	now := h.now()
	file := exportgw.File{
		Name:        exportgw.FileName(res.Name, "txt", now),
		ContentType: "text/plain; charset=utf-8",
		Data:        []byte(render.RenderText(res, now)),
	}
	h.saveAndReply(c, file)
}

// ExportWord 生成 Word 兼容的 HTML 文档并走保存链落地。
func (h *ExportHandler) ExportWord(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	res, err := h.repo.Load(ctx, userID)
	if err != nil {
		Internal(c, "failed to load resume")
		return
	}
	if res == nil {
		NotFound(c, "no resume to export")
		return
	}

	html, err := render.RenderDocumentHTML(res)
	if err != nil {
		Internal(c, "failed to render document")
		return
	}

	file := exportgw.File{
		Name:        exportgw.FileName(res.Name, "doc", h.now()),
		ContentType: "application/msword",
		Data:        []byte(html),
	}
	h.saveAndReply(c, file)
}

func (h *ExportHandler) saveAndReply(c *gin.Context, file exportgw.File) {
	receipt, err := h.gateway.Save(c.Request.Context(), file)
	if err != nil {
		if errors.Is(err, exportgw.ErrCancelled) {
			c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
			return
		}
		Internal(c, "failed to save export")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "saved",
		"file":     file.Name,
		"strategy": receipt.Strategy,
		"location": receipt.Location,
	})
}

type exportPDFRequest struct {
	Theme string `json:"theme"`
}

// ExportPDF 将 PDF 导出任务入队并立即返回 202。
func (h *ExportHandler) ExportPDF(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	// 请求体可省略，缺省主题由 worker 侧回退。
	var req exportPDFRequest
	_ = c.ShouldBindJSON(&req)

	ctx := c.Request.Context()
	res, err := h.repo.Load(ctx, userID)
	if err != nil {
		Internal(c, "failed to load resume")
		return
	}
	if res == nil {
		NotFound(c, "no resume to export")
		return
	}

	user, err := h.directory.GetByID(ctx, userID)
	if err != nil {
		Unauthorized(c)
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	task, err := tasks.NewPDFExportTask(userID, req.Theme, user.Username, correlationID)
	if err != nil {
		Internal(c, "failed to create task")
		return
	}

	info, err := h.asynqClient.Enqueue(task, asynq.MaxRetry(5))
	if err != nil {
		Internal(c, "failed to enqueue pdf export")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "PDF export request accepted",
		"task_id": info.ID,
	})
}
