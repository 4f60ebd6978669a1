// email_handler.go
package email

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"SurvivalDashboard/src/storage"
	"SurvivalDashboard/src/utils"
)

// ====================== 邮件处理器实现 ======================

// 可作为数据集的附件类型
var datasetExts = []string{".csv", ".xlsx"}

// DatasetAttachmentHandler 把目标邮件中的数据集附件保存到本地
type DatasetAttachmentHandler struct {
	TargetSubject string          // 目标邮件主题关键词
	DataDir       string          // 附件保存目录
	logger        *storage.Logger // 日志记录器
	processedUIDs map[uint32]bool // 已处理邮件UID记录
	mu            sync.RWMutex    // 保护processedUIDs的读写锁
}

func NewDatasetAttachmentHandler(subject, dataDir string, logger *storage.Logger) *DatasetAttachmentHandler {
	return &DatasetAttachmentHandler{
		TargetSubject: subject,
		DataDir:       dataDir,
		logger:        logger,
		processedUIDs: make(map[uint32]bool),
	}
}

// isProcessed 检查邮件是否已处理过（线程安全）
func (h *DatasetAttachmentHandler) isProcessed(uid uint32) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.processedUIDs[uid]
}

// markAsProcessed 标记邮件为已处理（线程安全）
func (h *DatasetAttachmentHandler) markAsProcessed(uid uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.processedUIDs[uid] = true
}

func (h *DatasetAttachmentHandler) info(msg string) {
	if h.logger != nil {
		h.logger.Info(msg)
	}
}

// Handle 处理单个邮件
// 返回保存的数据集路径, 没有新数据集时返回空字符串
func (h *DatasetAttachmentHandler) Handle(email *Email) (string, error) {
	if email == nil || h.isProcessed(email.UID) {
		return "", nil
	}

	if !strings.Contains(email.Subject, h.TargetSubject) {
		h.info(fmt.Sprintf("跳过主题不匹配的邮件: %s", email.Subject))
		return "", nil
	}

	h.info(fmt.Sprintf("处理邮件: %s 发件人: %s 日期: %s",
		email.Subject, email.From, email.Date.Format("2006-01-02 15:04:05")))

	// 只取第一个数据集附件
	for _, attachment := range email.Attachments {
		ext := strings.ToLower(filepath.Ext(attachment.Filename))
		if !utils.Contains(datasetExts, ext) {
			continue
		}

		if err := os.MkdirAll(h.DataDir, 0755); err != nil {
			return "", fmt.Errorf("创建目录失败: %w", err)
		}

		// 去掉附件名中的目录部分
		filePath := filepath.Join(h.DataDir, filepath.Base(attachment.Filename))
		if err := os.WriteFile(filePath, attachment.Content, 0644); err != nil {
			return "", fmt.Errorf("保存附件失败: %w", err)
		}

		h.info(fmt.Sprintf("附件已保存到: %s", filePath))
		h.markAsProcessed(email.UID)
		return filePath, nil
	}

	h.info(fmt.Sprintf("邮件 %d 没有数据集附件", email.UID))
	return "", nil
}

