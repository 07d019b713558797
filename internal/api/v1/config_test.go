package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renjoyops/internal/reconcile"
)

// PATCH 的参数落在快照库 kv 表里，后续请求（包括对账）都按存储值取参，
// 处理器之间不共享可变配置
func TestUpdateConfigPersistedInStore(t *testing.T) {
	r, st := newTestRouter(t)
	seedSnapshot(t, st)

	body := strings.NewReader(`{"hourlyRate": 25, "similarityThreshold": 0.9}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/config", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ConfigResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 25.0, resp.HourlyRate)
	assert.Equal(t, 0.9, resp.SimilarityThreshold)
	// 未提交的字段保持默认值
	assert.Equal(t, 10.0, resp.LongDayHours)

	v, err := st.GetConfigFloat("hourly_rate")
	require.NoError(t, err)
	assert.Equal(t, 25.0, v)

	// 对账请求按更新后的单价估算成本
	req = httptest.NewRequest(http.MethodGet, "/api/reconcile?start=2024-01-01&end=2024-01-31", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result reconcile.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Daily, 1)
	assert.InDelta(t, 7.25*25, result.Daily[0].EstimatedCost, 1e-9)
}

// 非法值在任何写入之前被拒绝
func TestUpdateConfigValidation(t *testing.T) {
	r, st := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"负单价", `{"hourlyRate": -1}`},
		{"阈值越界", `{"similarityThreshold": 1.5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, "/api/config", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	// kv 表保持干净
	_, err := st.GetConfig("hourly_rate")
	assert.Error(t, err)
}
