package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/feedrank/core"
	"github.com/rushteam/feedrank/feature"
)

func testTable(t *testing.T) *feature.Table {
	t.Helper()
	table, err := feature.NewTable([]feature.Row{
		{PostID: 1, Topic: "movie", Features: map[string]feature.Value{"topic": feature.Categorical("movie")}},
		{PostID: 2, Topic: "covid", Features: map[string]feature.Value{"topic": feature.Categorical("covid")}},
		{PostID: 3, Topic: "sport", Features: map[string]feature.Value{"topic": feature.Categorical("sport")}},
	})
	require.NoError(t, err)
	return table
}

func items(ids ...int64) []*core.Item {
	out := make([]*core.Item, 0, len(ids))
	for i, id := range ids {
		out = append(out, core.NewItem(id, i))
	}
	return out
}

func ids(items []*core.Item) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestExprFilter_DropsNonMatching(t *testing.T) {
	f, err := NewExprFilter(`post.topic != "covid"`, testTable(t))
	require.NoError(t, err)
	require.NotNil(t, f)

	node := &FilterNode{Filters: []Filter{f}}
	out, err := node.Process(context.Background(), &core.RecommendContext{User: &core.User{ID: 1}}, items(1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids(out))
}

func TestExprFilter_UsesUser(t *testing.T) {
	f, err := NewExprFilter(`user.age >= 18 || post.topic != "movie"`, testTable(t))
	require.NoError(t, err)

	node := &FilterNode{Filters: []Filter{f}}
	out, err := node.Process(context.Background(), &core.RecommendContext{User: &core.User{Age: 12}}, items(1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids(out))
}

func TestNewExprFilter_Empty(t *testing.T) {
	f, err := NewExprFilter("", testTable(t))
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestNewExprFilter_CompileError(t *testing.T) {
	_, err := NewExprFilter(`post.topic ==`, testTable(t))
	assert.Error(t, err)
}

func TestExprFilter_UnknownPost(t *testing.T) {
	f, err := NewExprFilter(`true`, testTable(t))
	require.NoError(t, err)

	_, err = f.ShouldFilter(context.Background(), &core.RecommendContext{}, core.NewItem(99, 0))
	require.Error(t, err)
	assert.Equal(t, core.ErrorCodeInternalError, core.GetDomainError(err).Code)
}

type errFilter struct{}

func (errFilter) Name() string { return "filter.err" }
func (errFilter) ShouldFilter(context.Context, *core.RecommendContext, *core.Item) (bool, error) {
	return false, errors.New("boom")
}

func TestFilterNode_PropagatesErrors(t *testing.T) {
	node := &FilterNode{Filters: []Filter{errFilter{}}}
	_, err := node.Process(context.Background(), &core.RecommendContext{}, items(1))
	assert.ErrorContains(t, err, "boom")
}

func TestFilterNode_NoFilters(t *testing.T) {
	in := items(3, 1, 2)
	out, err := (&FilterNode{}).Process(context.Background(), &core.RecommendContext{}, in)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, ids(out))
}
