package recall

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/feedrank/core"
	"github.com/rushteam/feedrank/feature"
)

func TestTableRecall_KeepsTableOrder(t *testing.T) {
	table, err := feature.NewTable([]feature.Row{
		{PostID: 30, Topic: "movie", Features: map[string]feature.Value{"ctr": feature.Numeric(0.1)}},
		{PostID: 10, Topic: "sport", Features: map[string]feature.Value{"ctr": feature.Numeric(0.2)}},
		{PostID: 20, Topic: "covid", Features: map[string]feature.Value{"ctr": feature.Numeric(0.3)}},
	})
	require.NoError(t, err)

	r := &TableRecall{Table: table}
	items, err := r.Process(context.Background(), &core.RecommendContext{}, nil)
	require.NoError(t, err)
	require.Len(t, items, 3)

	for i, want := range []int64{30, 10, 20} {
		assert.Equal(t, want, items[i].ID)
		assert.Equal(t, i, items[i].Position)
	}
	assert.Equal(t, "table", items[0].Labels["recall_source"].Value)
}

func TestTableRecall_EmptyTable(t *testing.T) {
	table, err := feature.NewTable(nil)
	require.NoError(t, err)

	items, err := (&TableRecall{Table: table}).Process(context.Background(), &core.RecommendContext{}, nil)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = (&TableRecall{}).Process(context.Background(), &core.RecommendContext{}, nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}
