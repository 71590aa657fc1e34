package resume

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"resumevault/internal/kvstore"
)

var (
	ErrNameRequired      = errors.New("resume name is required")
	ErrEmailInvalid      = errors.New("resume email is missing or malformed")
	ErrMalformedDocument = errors.New("malformed resume document")
)

// 本地部分@域名.顶级域，ASCII、不含空白。
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// ValidEmail 判断邮箱是否满足导出/保存要求的语法形态。
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Repository 负责单用户简历的读写、导入导出与草稿。
// 所有写操作都对 resumes 键做整体读改写，写前必定重读列表。
type Repository struct {
	store kvstore.Store
	now   func() time.Time
}

// NewRepository 构造简历仓库。
func NewRepository(store kvstore.Store) *Repository {
	return &Repository{store: store, now: time.Now}
}

// Save 校验并按 userID upsert 简历；已有简历时保留其 ID，保证外部引用稳定。
// 成功后最后一步清除该用户的草稿（顺序保证：草稿清除不会被迟到的自动保存覆盖语义破坏）。
func (r *Repository) Save(ctx context.Context, userID int64, fields Fields) (*Resume, error) {
	name := strings.TrimSpace(fields.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	email := strings.TrimSpace(fields.Email)
	if !ValidEmail(email) {
		return nil, ErrEmailInvalid
	}

	saved, err := r.upsert(ctx, userID, Resume{
		UserID:      userID,
		Name:        name,
		Email:       email,
		Phone:       strings.TrimSpace(fields.Phone),
		Address:     strings.TrimSpace(fields.Address),
		Skills:      ParseSkills(fields.Skills),
		Experiences: fields.Experiences,
		Education:   fields.Education,
	})
	if err != nil {
		return nil, err
	}

	// 清除草稿必须是 Save 的最后动作。
	if err := r.ClearDraft(ctx, userID); err != nil {
		return nil, err
	}
	return saved, nil
}

// Load 返回用户的简历；从未保存过时返回 (nil, nil)，不算错误。
func (r *Repository) Load(ctx context.Context, userID int64) (*Resume, error) {
	resumes, err := r.loadResumes(ctx)
	if err != nil {
		return nil, err
	}
	for i := range resumes {
		if resumes[i].UserID == userID {
			res := resumes[i]
			return &res, nil
		}
	}
	return nil, nil
}

// Import 接收 Export 产出的外部文档，按当前用户 upsert。
// 文档里缺失的字段按空值补齐；version 不做校验。
func (r *Repository) Import(ctx context.Context, userID int64, raw []byte) (*Resume, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if strings.TrimSpace(doc.Name) == "" && strings.TrimSpace(doc.Email) == "" {
		return nil, ErrMalformedDocument
	}

	incoming := Resume{
		UserID:      userID,
		Name:        strings.TrimSpace(doc.Name),
		Email:       strings.TrimSpace(doc.Email),
		Phone:       strings.TrimSpace(doc.Phone),
		Address:     strings.TrimSpace(doc.Address),
		Skills:      doc.Skills,
		Experiences: doc.Experiences,
		Education:   doc.Education,
	}
	if incoming.Skills == nil {
		incoming.Skills = []string{}
	}
	if incoming.Experiences == nil {
		incoming.Experiences = []Experience{}
	}
	if incoming.Education == nil {
		incoming.Education = []Education{}
	}

	return r.upsert(ctx, userID, incoming)
}

// Export 将当前简历序列化为带出处元数据的可移植文档。
func (r *Repository) Export(ctx context.Context, userID int64, exportedBy string) (*Document, error) {
	res, err := r.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}

	return &Document{
		ID:          res.ID,
		UserID:      res.UserID,
		Name:        res.Name,
		Email:       res.Email,
		Phone:       res.Phone,
		Address:     res.Address,
		Skills:      res.Skills,
		Experiences: res.Experiences,
		Education:   res.Education,
		LastUpdated: res.LastUpdated,
		ExportedAt:  r.now().UTC().Format(time.RFC3339),
		ExportedBy:  exportedBy,
		Version:     DocumentVersion,
	}, nil
}

// AutoSaveDraft 写入该用户的草稿快照，独立于已保存简历。
func (r *Repository) AutoSaveDraft(ctx context.Context, userID int64, fields Fields) error {
	draft := Draft{
		UserID:      userID,
		Name:        fields.Name,
		Email:       fields.Email,
		Phone:       fields.Phone,
		Address:     fields.Address,
		Skills:      fields.Skills,
		Experiences: fields.Experiences,
		Education:   fields.Education,
		AutoSavedAt: r.now().UnixMilli(),
	}
	if err := kvstore.SetJSON(ctx, r.store, kvstore.AutoSaveKey(userID), draft); err != nil {
		return fmt.Errorf("autosave draft: %w", err)
	}
	return nil
}

// LoadDraft 返回该用户的草稿；没有草稿时返回 (nil, nil)。
func (r *Repository) LoadDraft(ctx context.Context, userID int64) (*Draft, error) {
	var draft Draft
	ok, err := kvstore.GetJSON(ctx, r.store, kvstore.AutoSaveKey(userID), &draft)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &draft, nil
}

// ClearDraft 删除该用户的草稿。
func (r *Repository) ClearDraft(ctx context.Context, userID int64) error {
	if err := r.store.Remove(ctx, kvstore.AutoSaveKey(userID)); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}

// upsert 按 userID 插入或覆盖，保留既有 ID 并加盖 lastUpdated。
func (r *Repository) upsert(ctx context.Context, userID int64, incoming Resume) (*Resume, error) {
	resumes, err := r.loadResumes(ctx)
	if err != nil {
		return nil, err
	}

	incoming.LastUpdated = r.now().UnixMilli()

	replaced := false
	for i := range resumes {
		if resumes[i].UserID == userID {
			incoming.ID = resumes[i].ID
			resumes[i] = incoming
			replaced = true
			break
		}
	}
	if !replaced {
		incoming.ID = nextResumeID(resumes, r.now())
		resumes = append(resumes, incoming)
	}

	if err := kvstore.SetJSON(ctx, r.store, kvstore.KeyResumes, resumes); err != nil {
		return nil, err
	}
	return &incoming, nil
}

func (r *Repository) loadResumes(ctx context.Context) ([]Resume, error) {
	var resumes []Resume
	if _, err := kvstore.GetJSON(ctx, r.store, kvstore.KeyResumes, &resumes); err != nil {
		return nil, fmt.Errorf("load resumes: %w", err)
	}
	return resumes, nil
}

func nextResumeID(resumes []Resume, now time.Time) int64 {
	id := now.UnixMilli()
	for {
		taken := false
		for i := range resumes {
			if resumes[i].ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
		id++
	}
}
