package rank

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/feedrank/core"
	"github.com/rushteam/feedrank/feature"
)

// postScorer 按帖子 ID 返回固定概率
type postScorer struct {
	columns []string
	probs   map[int64]float64
	err     error
}

func (s *postScorer) Name() string             { return "post" }
func (s *postScorer) FeatureColumns() []string { return s.columns }
func (s *postScorer) Predict(_ context.Context, m *feature.Matrix) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]float64, m.Len())
	for i, id := range m.PostIDs {
		out[i] = s.probs[id]
	}
	return out, nil
}

var testColumns = []string{"topic", "ctr", "age", "hour"}

func newNode(t *testing.T, probs map[int64]float64) *ModelNode {
	t.Helper()
	table, err := feature.NewTable([]feature.Row{
		{PostID: 1, Topic: "movie", Features: map[string]feature.Value{"topic": feature.Categorical("movie"), "ctr": feature.Numeric(0.1)}},
		{PostID: 2, Topic: "sport", Features: map[string]feature.Value{"topic": feature.Categorical("sport"), "ctr": feature.Numeric(0.2)}},
		{PostID: 3, Topic: "covid", Features: map[string]feature.Value{"topic": feature.Categorical("covid"), "ctr": feature.Numeric(0.3)}},
	})
	require.NoError(t, err)
	asm, err := feature.NewAssembler(&feature.Schema{
		Version:            "test",
		FeatureColumns:     testColumns,
		CategoricalColumns: []string{"topic"},
	}, table)
	require.NoError(t, err)
	return &ModelNode{Assembler: asm, Scorer: &postScorer{columns: testColumns, probs: probs}}
}

func candidates(n int) []*core.Item {
	out := make([]*core.Item, n)
	for i := range out {
		out[i] = core.NewItem(int64(i+1), i)
	}
	return out
}

func rctx() *core.RecommendContext {
	return &core.RecommendContext{
		UserID: 7,
		User:   &core.User{ID: 7, Age: 30},
		Time:   time.Date(2023, 6, 15, 14, 30, 0, 0, time.UTC),
	}
}

func TestModelNode_OrdersByProbability(t *testing.T) {
	node := newNode(t, map[int64]float64{1: 0.9, 2: 0.4, 3: 0.9})

	out, err := node.Process(context.Background(), rctx(), candidates(3))
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, int64(1), out[0].ID)
	assert.Equal(t, int64(3), out[1].ID)
	assert.Equal(t, int64(2), out[2].ID)
	assert.Equal(t, 0.9, out[0].Score)
	assert.Equal(t, 0.4, out[2].Score)
	assert.Equal(t, "post", out[0].Labels["rank_model"].Value)
}

func TestModelNode_Empty(t *testing.T) {
	node := newNode(t, nil)
	out, err := node.Process(context.Background(), rctx(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestModelNode_ScorerError(t *testing.T) {
	node := newNode(t, nil)
	node.Scorer.(*postScorer).err = errors.New("model down")

	_, err := node.Process(context.Background(), rctx(), candidates(3))
	assert.ErrorContains(t, err, "model down")
}

func TestModelNode_InvalidProbability(t *testing.T) {
	node := newNode(t, map[int64]float64{1: 0.5, 2: 1.5, 3: 0.1})

	_, err := node.Process(context.Background(), rctx(), candidates(3))
	require.Error(t, err)
	assert.Equal(t, core.ErrorCodeInvalidOutput, core.GetDomainError(err).Code)
}

func TestModelNode_ColumnMismatch(t *testing.T) {
	node := newNode(t, nil)
	node.Scorer = &postScorer{columns: []string{"ctr", "topic", "age", "hour"}}

	_, err := node.Process(context.Background(), rctx(), candidates(3))
	require.Error(t, err)
	assert.True(t, core.IsFeatureMismatch(err))
}
