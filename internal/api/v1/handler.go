package v1

import (
	"github.com/gin-gonic/gin"

	"renjoyops/internal/config"
	"renjoyops/internal/store"
)

// Handler V1 API 处理器
type Handler struct {
	store  *store.Store
	config *config.AppConfig
}

// NewHandler 创建 V1 API 处理器
func NewHandler(store *store.Store, cfg *config.AppConfig) *Handler {
	return &Handler{
		store:  store,
		config: cfg,
	}
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 配置管理
	router.GET("/config", h.GetConfig)
	router.PATCH("/config", h.UpdateConfig)

	// 数据导入
	router.POST("/import", h.Import)
	router.GET("/import/logs", h.ListImportLogs)

	// 对账
	router.GET("/reconcile", h.Reconcile)
}
