// Package metrics 对账引擎的 Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry 应用自有的指标注册表
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// ImportsTotal 按来源与状态统计的导入次数
var ImportsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "renjoyops",
	Subsystem: "import",
	Name:      "total",
	Help:      "Total import runs by source kind and final status",
}, []string{"source_kind", "status"})

// ImportedRowsTotal 成功入库的行数
var ImportedRowsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "renjoyops",
	Subsystem: "import",
	Name:      "rows_total",
	Help:      "Total rows imported into the snapshot database by sheet type",
}, []string{"sheet_type"})

// SkippedRowsTotal 跳过的坏行数
var SkippedRowsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "renjoyops",
	Subsystem: "import",
	Name:      "skipped_rows_total",
	Help:      "Total malformed rows skipped during import by sheet type",
}, []string{"sheet_type"})

// ReconcileRunsTotal 对账运行次数
var ReconcileRunsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "renjoyops",
	Subsystem: "reconcile",
	Name:      "runs_total",
	Help:      "Total reconciliation runs",
})

// ReconcileDurationSeconds 单次对账耗时
var ReconcileDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "renjoyops",
	Subsystem: "reconcile",
	Name:      "duration_seconds",
	Help:      "Time taken to run a reconciliation over the snapshot",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
})

// ReconcileExceptionsTotal 按类别统计的例外条数
var ReconcileExceptionsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "renjoyops",
	Subsystem: "reconcile",
	Name:      "exceptions_total",
	Help:      "Exceptions raised by reconciliation runs by kind",
}, []string{"kind"})

// NameMatchUnmatchedTotal 身份解析后仍未匹配的姓名数
var NameMatchUnmatchedTotal = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "renjoyops",
	Subsystem: "namematch",
	Name:      "unmatched_names",
	Help:      "Task-side names left unmatched by the latest identity resolution",
})
