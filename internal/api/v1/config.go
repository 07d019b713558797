package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"renjoyops/internal/config"
)

// 对账参数在快照库 kv 表里的键
const (
	cfgKeyHourlyRate          = "hourly_rate"
	cfgKeyLongDayHours        = "long_day_hours"
	cfgKeyLowClockedHours     = "low_clocked_hours"
	cfgKeyNoTaskMinHours      = "no_task_min_hours"
	cfgKeyFlagClockedHours    = "flag_clocked_hours"
	cfgKeyFlagTaskHours       = "flag_task_hours"
	cfgKeySimilarityThreshold = "similarity_threshold"
)

// ConfigResponse 对账配置响应
type ConfigResponse struct {
	HourlyRate          float64 `json:"hourlyRate"`          // 未覆盖工时估算单价
	LongDayHours        float64 `json:"longDayHours"`        // long_day 异常阈值
	LowClockedHours     float64 `json:"lowClockedHours"`     // low_hours_tasks 异常阈值
	NoTaskMinHours      float64 `json:"noTaskMinHours"`      // no_tasks 异常阈值
	FlagClockedHours    float64 `json:"flagClockedHours"`    // 当日标记：打卡阈值
	FlagTaskHours       float64 `json:"flagTaskHours"`       // 当日标记：任务工时阈值
	SimilarityThreshold float64 `json:"similarityThreshold"` // 姓名模糊匹配阈值
}

// UpdateConfigRequest 更新配置请求，指针字段允许部分更新
type UpdateConfigRequest struct {
	HourlyRate          *float64 `json:"hourlyRate"`
	LongDayHours        *float64 `json:"longDayHours"`
	LowClockedHours     *float64 `json:"lowClockedHours"`
	NoTaskMinHours      *float64 `json:"noTaskMinHours"`
	FlagClockedHours    *float64 `json:"flagClockedHours"`
	FlagTaskHours       *float64 `json:"flagTaskHours"`
	SimilarityThreshold *float64 `json:"similarityThreshold"`
}

// reconcileConfig 当前生效的对账参数
// kv 表里有值用存储值，没有落回 config.toml 的默认值。每个请求现读，
// 处理器之间不共享可变状态
func (h *Handler) reconcileConfig() config.ReconcileConfig {
	r := h.config.Reconcile

	stored, err := h.store.GetAllConfig()
	if err != nil {
		return r
	}

	getFloat := func(key string, dst *float64) {
		if val, ok := stored[key]; ok {
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				*dst = f
			}
		}
	}

	getFloat(cfgKeyHourlyRate, &r.HourlyRate)
	getFloat(cfgKeyLongDayHours, &r.LongDayHours)
	getFloat(cfgKeyLowClockedHours, &r.LowClockedHours)
	getFloat(cfgKeyNoTaskMinHours, &r.NoTaskMinHours)
	getFloat(cfgKeyFlagClockedHours, &r.FlagClockedHours)
	getFloat(cfgKeyFlagTaskHours, &r.FlagTaskHours)
	getFloat(cfgKeySimilarityThreshold, &r.SimilarityThreshold)

	return r
}

// GetConfig 获取对账配置
// GET /api/config
func (h *Handler) GetConfig(c *gin.Context) {
	r := h.reconcileConfig()
	c.JSON(http.StatusOK, ConfigResponse{
		HourlyRate:          r.HourlyRate,
		LongDayHours:        r.LongDayHours,
		LowClockedHours:     r.LowClockedHours,
		NoTaskMinHours:      r.NoTaskMinHours,
		FlagClockedHours:    r.FlagClockedHours,
		FlagTaskHours:       r.FlagTaskHours,
		SimilarityThreshold: r.SimilarityThreshold,
	})
}

// UpdateConfig 更新对账配置（部分更新，落到快照库的 kv 表）
// PATCH /api/config
func (h *Handler) UpdateConfig(c *gin.Context) {
	var req UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据"})
		return
	}

	if req.HourlyRate != nil && *req.HourlyRate < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "单价不能为负数"})
		return
	}
	if req.SimilarityThreshold != nil && (*req.SimilarityThreshold < 0 || *req.SimilarityThreshold > 1) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "相似度阈值必须在 0-1 之间"})
		return
	}

	updates := map[string]*float64{
		cfgKeyHourlyRate:          req.HourlyRate,
		cfgKeyLongDayHours:        req.LongDayHours,
		cfgKeyLowClockedHours:     req.LowClockedHours,
		cfgKeyNoTaskMinHours:      req.NoTaskMinHours,
		cfgKeyFlagClockedHours:    req.FlagClockedHours,
		cfgKeyFlagTaskHours:       req.FlagTaskHours,
		cfgKeySimilarityThreshold: req.SimilarityThreshold,
	}
	for key, val := range updates {
		if val == nil {
			continue
		}
		if err := h.store.SetConfigFloat(key, *val); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "保存配置失败: " + key})
			return
		}
	}

	h.GetConfig(c)
}
