package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypePDFExport = "export:pdf"
)

// PDFExportPayload 描述一次 PDF 导出所需的最小信息。
// Theme 在入队时固化，后续改主题不影响已排队的导出。
type PDFExportPayload struct {
	UserID        int64  `json:"user_id"`
	ThemeID       string `json:"theme_id"`
	ExportedBy    string `json:"exported_by"`
	CorrelationID string `json:"correlation_id"`
}

// NewPDFExportTask 构造简历 PDF 导出任务。
func NewPDFExportTask(userID int64, themeID, exportedBy, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(PDFExportPayload{
		UserID:        userID,
		ThemeID:       themeID,
		ExportedBy:    exportedBy,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePDFExport, payload), nil
}
