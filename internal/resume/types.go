package resume

import "strings"

// Resume 是某个用户的唯一简历。每个 userId 至多一份，保存即覆盖。
type Resume struct {
	ID          int64        `json:"id"`
	UserID      int64        `json:"userId"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Phone       string       `json:"phone"`
	Address     string       `json:"address"`
	Skills      []string     `json:"skills"`
	Experiences []Experience `json:"experiences"`
	Education   []Education  `json:"education"`
	LastUpdated int64        `json:"lastUpdated"`
}

// Experience 是一段工作经历，全部为自由文本，列表顺序即用户录入顺序。
type Experience struct {
	JobTitle    string `json:"jobTitle"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

// Education 是一段教育经历。
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	Year        string `json:"year"`
	GPA         string `json:"gpa"`
}

// Fields 是表单提交的简历字段。Skills 为逗号分隔的自由文本。
type Fields struct {
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Phone       string       `json:"phone"`
	Address     string       `json:"address"`
	Skills      string       `json:"skills"`
	Experiences []Experience `json:"experiences"`
	Education   []Education  `json:"education"`
}

// Draft 是独立于已保存简历的自动保存快照，仅用于恢复，不会自动合并。
type Draft struct {
	UserID      int64        `json:"userId"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Phone       string       `json:"phone"`
	Address     string       `json:"address"`
	Skills      string       `json:"skills"`
	Experiences []Experience `json:"experiences"`
	Education   []Education  `json:"education"`
	AutoSavedAt int64        `json:"autoSavedAt"`
}

// Document 是导入/导出边界上的可移植 JSON 文档。
// Version 只是标记，导入端不校验其取值（尽力向前兼容）。
type Document struct {
	ID          int64        `json:"id,omitempty"`
	UserID      int64        `json:"userId,omitempty"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Phone       string       `json:"phone"`
	Address     string       `json:"address"`
	Skills      []string     `json:"skills"`
	Experiences []Experience `json:"experiences"`
	Education   []Education  `json:"education"`
	LastUpdated int64        `json:"lastUpdated,omitempty"`
	ExportedAt  string       `json:"exportedAt"`
	ExportedBy  string       `json:"exportedBy"`
	Version     string       `json:"version"`
}

// DocumentVersion 是当前导出格式标记。
const DocumentVersion = "1.0"

// ParseSkills 拆分逗号分隔的技能串：去首尾空白、丢弃空项、保序、允许重复。
func ParseSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			skills = append(skills, p)
		}
	}
	return skills
}

// JoinSkills 还原为表单里的逗号分隔形式。
func JoinSkills(skills []string) string {
	return strings.Join(skills, ", ")
}
