package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized    bool   `json:"initialized"`    // 是否已初始化（有数据）
	ClockEntries   int    `json:"clockEntries"`   // 快照中的班次记录数
	TaskRecords    int    `json:"taskRecords"`    // 快照中的工单记录数
	LastImportTime string `json:"lastImportTime"` // 最后导入时间
	LastImportFile string `json:"lastImportFile"` // 最后导入文件名
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	clockCount, err := h.store.CountClockEntries()
	if err != nil {
		clockCount = 0
	}
	taskCount, err := h.store.CountTasks()
	if err != nil {
		taskCount = 0
	}

	resp := StatusResponse{
		Initialized:  clockCount > 0 || taskCount > 0,
		ClockEntries: clockCount,
		TaskRecords:  taskCount,
	}

	if logs, err := h.store.GetRecentImportLogs(1); err == nil && len(logs) > 0 {
		resp.LastImportTime = logs[0].CreatedAt.Format("2006-01-02 15:04:05")
		resp.LastImportFile = logs[0].Filename
	}

	c.JSON(http.StatusOK, resp)
}

// ListImportLogs 获取最近的导入日志
// GET /api/import/logs
func (h *Handler) ListImportLogs(c *gin.Context) {
	logs, err := h.store.GetRecentImportLogs(20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取导入日志失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
