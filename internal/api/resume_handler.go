package api

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"

	"resumevault/internal/account"
	"resumevault/internal/api/middleware"
	"resumevault/internal/kvstore"
	"resumevault/internal/render"
	"resumevault/internal/resume"
)

// 导入文档的大小上限。
const maxImportBytes = 1 << 20

// ResumeHandler 负责简历的读写、草稿、预览与公开页。
type ResumeHandler struct {
	store         kvstore.Store
	repo          *resume.Repository
	directory     *account.Directory
	autoSaver     *resume.AutoSaver
	logger        *slog.Logger
	publicBaseURL string
	clamdAddr     string
}

// NewResumeHandler 构造 ResumeHandler。
func NewResumeHandler(deps Deps) *ResumeHandler {
	return &ResumeHandler{
		store:         deps.Store,
		repo:          deps.Repo,
		directory:     deps.Directory,
		autoSaver:     deps.AutoSaver,
		logger:        deps.Logger,
		publicBaseURL: strings.TrimRight(strings.TrimSpace(deps.PublicBaseURL), "/"),
		clamdAddr:     deps.ClamdAddr,
	}
}

// emptyResume 是从未保存过的用户打开编辑器时拿到的空骨架。
func emptyResume(userID int64) resume.Resume {
	return resume.Resume{
		UserID:      userID,
		Skills:      []string{},
		Experiences: []resume.Experience{},
		Education:   []resume.Education{},
	}
}

// GetResume 返回用户的简历；从未保存过时返回空骨架而非 404。
func (h *ResumeHandler) GetResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	res, err := h.repo.Load(c.Request.Context(), userID)
	if err != nil {
		Internal(c, "failed to load resume")
		return
	}
	if res == nil {
		c.JSON(http.StatusOK, emptyResume(userID))
		return
	}
	c.JSON(http.StatusOK, res)
}

// SaveResume 校验并保存表单字段，成功后清除该用户的草稿。
func (h *ResumeHandler) SaveResume(c *gin.Context) {
	var fields resume.Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	// 先丢弃未触发的自动保存，避免迟到的草稿写入盖掉清除。
	h.autoSaver.Cancel(userID)

	res, err := h.repo.Save(c.Request.Context(), userID, fields)
	if err != nil {
		switch {
		case errors.Is(err, resume.ErrNameRequired), errors.Is(err, resume.ErrEmailInvalid):
			BadRequest(c, err.Error())
		default:
			Internal(c, "failed to save resume")
		}
		return
	}

	c.JSON(http.StatusOK, res)
}

// SaveDraft 登记一批表单字段并重置防抖窗口，立即返回 202。
func (h *ResumeHandler) SaveDraft(c *gin.Context) {
	var fields resume.Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	h.autoSaver.Schedule(userID, fields)
	c.Status(http.StatusAccepted)
}

// GetDraft 返回待恢复的草稿；没有草稿时 204。
func (h *ResumeHandler) GetDraft(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	draft, err := h.repo.LoadDraft(c.Request.Context(), userID)
	if err != nil {
		Internal(c, "failed to load draft")
		return
	}
	if draft == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// DeleteDraft 丢弃草稿（用户拒绝恢复时调用）。
func (h *ResumeHandler) DeleteDraft(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	h.autoSaver.Cancel(userID)
	if err := h.repo.ClearDraft(c.Request.Context(), userID); err != nil {
		Internal(c, "failed to clear draft")
		return
	}
	c.Status(http.StatusNoContent)
}

// ImportResume 接收导出文档 JSON 并覆盖当前用户的简历。
// 配置了 clamd 时上传内容先过病毒扫描。
func (h *ResumeHandler) ImportResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes+1))
	if err != nil {
		BadRequest(c, "failed to read request body")
		return
	}
	if len(raw) > maxImportBytes {
		BadRequest(c, "document too large")
		return
	}

	if h.clamdAddr != "" {
		if err := h.scanDocument(raw); err != nil {
			if errors.Is(err, errMaliciousDocument) {
				BadRequest(c, "malicious file detected")
				return
			}
			h.loggerFromContext(c).Error("scan document failed", slog.Any("error", err))
			Internal(c, "failed to scan document")
			return
		}
	}

	res, err := h.repo.Import(c.Request.Context(), userID, raw)
	if err != nil {
		if errors.Is(err, resume.ErrMalformedDocument) {
			BadRequest(c, "invalid resume file")
			return
		}
		Internal(c, "failed to import resume")
		return
	}

	c.JSON(http.StatusOK, res)
}

var errMaliciousDocument = errors.New("malicious document")

func (h *ResumeHandler) scanDocument(raw []byte) error {
	clamdClient := clamd.NewClamd(h.clamdAddr)

	abortChan := make(chan bool)
	scanChan, err := clamdClient.ScanStream(bytes.NewReader(raw), abortChan)
	if err != nil {
		return err
	}
	defer close(abortChan)

	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			return errMaliciousDocument
		}
	}
	return nil
}

// Preview 返回主题化的简历预览 HTML。?theme= 缺省时用存储里的主题。
func (h *ResumeHandler) Preview(c *gin.Context) {
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
		NotFound(c, "no resume to preview")
		return
	}

	themeID := c.Query("theme")
	if themeID == "" {
		themeID = h.storedThemeID(c)
	}

	html, err := render.RenderPreview(res, render.LookupTheme(themeID))
	if err != nil {
		Internal(c, "failed to render preview")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// PublicURL 返回当前用户简历的规范公开链接。
func (h *ResumeHandler) PublicURL(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	user, err := h.directory.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, account.ErrUserNotFound) {
			Unauthorized(c)
			return
		}
		Internal(c, "failed to load user")
		return
	}

	publicURL := h.publicBaseURL + "/?user=" + url.QueryEscape(user.Username)
	c.JSON(http.StatusOK, gin.H{"url": publicURL})
}

// PublicResume 按用户名或邮箱返回只读简历页，无需登录。
func (h *ResumeHandler) PublicResume(c *gin.Context) {
	ctx := c.Request.Context()

	user, err := h.directory.FindByIdentifier(ctx, c.Param("identifier"))
	if err != nil {
		if errors.Is(err, account.ErrUserNotFound) {
			NotFound(c, "user not found")
			return
		}
		Internal(c, "failed to resolve user")
		return
	}

	res, err := h.repo.Load(ctx, user.ID)
	if err != nil {
		Internal(c, "failed to load resume")
		return
	}
	if res == nil {
		NotFound(c, "resume not found")
		return
	}

	html, err := render.RenderPreview(res, render.LookupTheme(h.storedThemeID(c)))
	if err != nil {
		Internal(c, "failed to render resume")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// ListThemes 返回可选主题列表。
func (h *ResumeHandler) ListThemes(c *gin.Context) {
	c.JSON(http.StatusOK, render.Themes())
}

type settingsPayload struct {
	Theme    string `json:"theme"`
	DarkMode bool   `json:"darkMode"`
}

// GetSettings 返回界面设置（主题与暗色模式）。
func (h *ResumeHandler) GetSettings(c *gin.Context) {
	ctx := c.Request.Context()

	settings := settingsPayload{Theme: render.DefaultThemeID}

	var themeID string
	if ok, err := kvstore.GetJSON(ctx, h.store, kvstore.KeyTheme, &themeID); err != nil {
		Internal(c, "failed to load settings")
		return
	} else if ok && themeID != "" {
		settings.Theme = themeID
	}

	var darkMode bool
	if ok, err := kvstore.GetJSON(ctx, h.store, kvstore.KeyDarkMode, &darkMode); err != nil {
		Internal(c, "failed to load settings")
		return
	} else if ok {
		settings.DarkMode = darkMode
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings 持久化界面设置。未知主题 ID 直接拒绝。
func (h *ResumeHandler) UpdateSettings(c *gin.Context) {
	var req settingsPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	if render.LookupTheme(req.Theme).ID != req.Theme {
		BadRequest(c, "unknown theme")
		return
	}

	ctx := c.Request.Context()
	if err := kvstore.SetJSON(ctx, h.store, kvstore.KeyTheme, req.Theme); err != nil {
		Internal(c, "failed to save settings")
		return
	}
	if err := kvstore.SetJSON(ctx, h.store, kvstore.KeyDarkMode, req.DarkMode); err != nil {
		Internal(c, "failed to save settings")
		return
	}

	c.JSON(http.StatusOK, req)
}

func (h *ResumeHandler) storedThemeID(c *gin.Context) string {
	var themeID string
	ok, err := kvstore.GetJSON(c.Request.Context(), h.store, kvstore.KeyTheme, &themeID)
	if err != nil || !ok || themeID == "" {
		return render.DefaultThemeID
	}
	return themeID
}

func (h *ResumeHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}

func userIDFromContext(c *gin.Context) (int64, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case int64:
		if v <= 0 {
			return 0, false
		}
		return v, true
	case int:
		if v <= 0 {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}
