package model

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/feedrank/core"
	"github.com/rushteam/feedrank/feature"
)

const lrJSON = `{
  "version": "2023-06",
  "bias": -1.0,
  "feature_columns": ["topic", "age", "hour", "exp_group"],
  "weights": {"age": 0.01, "hour": 0.1},
  "categorical_weights": {
    "topic": {"movie": 0.5, "sport": -0.5},
    "exp_group": {"2": 0.3}
  }
}`

func TestLRModel_Predict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lr.json")
	require.NoError(t, os.WriteFile(path, []byte(lrJSON), 0o600))

	m, err := LoadLRModel(path)
	require.NoError(t, err)
	assert.Equal(t, "lr", m.Name())
	assert.Equal(t, []string{"topic", "age", "hour", "exp_group"}, m.FeatureColumns())

	x := matrix(m.FeatureColumns(),
		[]feature.Value{feature.Categorical("movie"), feature.Numeric(30), feature.Numeric(14), feature.Categorical("2")},
		[]feature.Value{feature.Categorical("sport"), feature.Numeric(30), feature.Numeric(14), feature.Categorical("1")},
		[]feature.Value{feature.Categorical("covid"), feature.Numeric(20), feature.Numeric(0), feature.Categorical("2")},
	)
	probs, err := m.Predict(context.Background(), x)
	require.NoError(t, err)
	require.Len(t, probs, 3)

	want := []float64{
		sigmoid(-1 + 0.5 + 0.3 + 1.4 + 0.3),
		sigmoid(-1 - 0.5 + 0.3 + 1.4),
		sigmoid(-1 + 0.2 + 0.3),
	}
	for i := range want {
		assert.InDelta(t, want[i], probs[i], 1e-12, "row %d", i)
	}
	assert.NoError(t, Validate(probs, 3))
}

func TestLRModel_OnlyCategorical(t *testing.T) {
	m, err := NewLRModel("", 0, []string{"topic"}, nil, map[string]map[string]float64{"topic": {"movie": math.Log(3)}})
	require.NoError(t, err)

	probs, err := m.Predict(context.Background(), matrix([]string{"topic"}, []feature.Value{feature.Categorical("movie")}))
	require.NoError(t, err)
	assert.InDelta(t, 0.75, probs[0], 1e-12)

	probs, err = m.Predict(context.Background(), matrix([]string{"topic"}))
	require.NoError(t, err)
	assert.Empty(t, probs)
}

func TestLRModel_Errors(t *testing.T) {
	_, err := NewLRModel("", 0, nil, nil, nil)
	assert.Error(t, err)

	_, err = NewLRModel("", 0, []string{"a"}, map[string]float64{}, nil)
	assert.ErrorContains(t, err, `no weight for column "a"`)

	_, err = NewLRModel("", 0, []string{"a"}, map[string]float64{"a": 1, "b": 2}, nil)
	assert.ErrorContains(t, err, "unknown column")

	_, err = NewLRModel("", 0, []string{"a"}, map[string]float64{"a": 1}, map[string]map[string]float64{"a": {}})
	assert.ErrorContains(t, err, "both")

	m, err := NewLRModel("", 0, []string{"a"}, map[string]float64{"a": 1}, nil)
	require.NoError(t, err)
	_, err = m.Predict(context.Background(), matrix([]string{"a"}, []feature.Value{feature.Categorical("x")}))
	assert.ErrorContains(t, err, "model expects numeric")

	_, err = m.Predict(context.Background(), matrix([]string{"b"}, []feature.Value{feature.Numeric(1)}))
	assert.True(t, core.IsFeatureMismatch(err))
}
