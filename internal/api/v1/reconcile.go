package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"renjoyops/internal/metrics"
	"renjoyops/internal/model"
	"renjoyops/internal/reconcile"
	"renjoyops/internal/store"
)

// Reconcile 对快照数据执行一次对账
// GET /api/reconcile?start=YYYY-MM-DD&end=YYYY-MM-DD
// 可选参数: department, minClockedHours, hourlyRate
func (h *Handler) Reconcile(c *gin.Context) {
	startStr := c.Query("start")
	endStr := c.Query("end")
	if startStr == "" || endStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 start/end 参数"})
		return
	}

	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start 日期格式无效，应为 YYYY-MM-DD"})
		return
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end 日期格式无效，应为 YYYY-MM-DD"})
		return
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end 不能早于 start"})
		return
	}

	opts := reconcile.Options{
		Start:      start,
		End:        end,
		Department: c.Query("department"),
	}

	if v := c.Query("minClockedHours"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "minClockedHours 参数无效"})
			return
		}
		opts.MinClockedHours = f
	}
	if v := c.Query("hourlyRate"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hourlyRate 参数无效"})
			return
		}
		opts.HourlyRate = f
	}

	snapshot, err := h.loadSnapshot(startStr, endStr)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取快照数据失败"})
		return
	}

	engine := reconcile.NewEngine(h.reconcileConfig())

	runStart := time.Now()
	result := engine.Run(snapshot, opts)
	metrics.ReconcileDurationSeconds.Observe(time.Since(runStart).Seconds())
	metrics.ReconcileRunsTotal.Inc()
	metrics.NameMatchUnmatchedTotal.Set(float64(result.Quality.NameMatch.Unmatched))
	for _, ex := range result.Exceptions {
		metrics.ReconcileExceptionsTotal.WithLabelValues(string(ex.Kind)).Inc()
	}

	c.JSON(http.StatusOK, result)
}

// loadSnapshot 按日期范围从快照数据库取数
// 关联记录不按日期过滤，跟随命中的工单
func (h *Handler) loadSnapshot(start, end string) (*reconcile.Snapshot, error) {
	entries, err := h.store.GetClockEntries(store.ClockQueryOptions{Start: &start, End: &end})
	if err != nil {
		return nil, err
	}

	tasks, err := h.store.GetTasks(store.TaskQueryOptions{Start: &start, End: &end})
	if err != nil {
		return nil, err
	}

	var links []*model.TaskAssignment
	if len(tasks) > 0 {
		taskKeys := make([]string, 0, len(tasks))
		for _, t := range tasks {
			taskKeys = append(taskKeys, t.TaskKey)
		}
		links, err = h.store.GetAssignmentsForTasks(taskKeys)
		if err != nil {
			return nil, err
		}
	}

	return &reconcile.Snapshot{
		ClockEntries: entries,
		Tasks:        tasks,
		Assignments:  links,
	}, nil
}
