package model

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/feedrank/core"
	"github.com/rushteam/feedrank/feature"
)

func TestRPCModel_Predict(t *testing.T) {
	var got rpcRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw struct {
			Model   string   `json:"model"`
			Columns []string `json:"columns"`
			Rows    [][]any  `json:"rows"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		got.Model = raw.Model
		got.Columns = raw.Columns
		assert.Equal(t, [][]any{{"movie", float64(34)}, {"sport", float64(34)}}, raw.Rows)
		_ = json.NewEncoder(w).Encode(rpcResponse{Probabilities: []float64{0.9, 0.4}})
	}))
	defer srv.Close()

	cols := []string{"topic", "age"}
	m := NewRPCModel("catboost", srv.URL, cols, time.Second)
	probs, err := m.Predict(context.Background(), matrix(cols,
		[]feature.Value{feature.Categorical("movie"), feature.Numeric(34)},
		[]feature.Value{feature.Categorical("sport"), feature.Numeric(34)},
	))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.9, 0.4}, probs)
	assert.Equal(t, "catboost", got.Model)
	assert.Equal(t, cols, got.Columns)
}

func TestRPCModel_BreakerOpens(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cols := []string{"age"}
	m := NewRPCModel("catboost", srv.URL, cols, time.Second,
		WithBreaker(BreakerConfig{FailureThreshold: 2, Timeout: time.Minute}))
	x := matrix(cols, []feature.Value{feature.Numeric(1)})

	for i := 0; i < 2; i++ {
		_, err := m.Predict(context.Background(), x)
		require.Error(t, err)
		assert.ErrorContains(t, err, "status=503")
	}

	_, err := m.Predict(context.Background(), x)
	require.Error(t, err)
	assert.True(t, core.IsUnavailable(err))
	assert.Equal(t, int32(2), hits.Load())
}

func TestRPCModel_Empty(t *testing.T) {
	m := NewRPCModel("catboost", "http://127.0.0.1:0", []string{"age"}, time.Second)
	probs, err := m.Predict(context.Background(), matrix([]string{"age"}))
	require.NoError(t, err)
	assert.Empty(t, probs)
}
