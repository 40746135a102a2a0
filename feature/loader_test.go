package feature

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/feedrank/core"
	"github.com/rushteam/feedrank/feast"
	"github.com/rushteam/feedrank/store"
)

type failingLoader struct{}

func (failingLoader) Name() string { return "failing" }
func (failingLoader) Load(context.Context) (*Table, error) {
	return nil, errors.New("connection refused")
}

func TestLoadTable(t *testing.T) {
	table, err := LoadTable(context.Background(), NewStaticLoader(testRows()...))
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())

	_, err = LoadTable(context.Background(), failingLoader{})
	require.Error(t, err)
	var se *core.StartupError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "feature_table", se.Stage)
	assert.ErrorContains(t, err, "connection refused")

	_, err = LoadTable(context.Background(), nil)
	assert.True(t, core.IsStartupError(err))
}

func TestStoreTableLoader(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	defer kv.Close()

	require.NoError(t, kv.Set(ctx, "post:features:ids", []byte(`[2, 1]`)))
	for id, fields := range map[string]map[string]string{
		"1": {"topic": "movie", "text": "42", "ctr": "0.1"},
		"2": {"topic": "sport", "text": "hello", "ctr": "0.2"},
	} {
		for f, v := range fields {
			require.NoError(t, kv.HSet(ctx, "post:features:"+id, f, []byte(v)))
		}
	}

	table, err := NewStoreTableLoader(kv, KeyPrefix{}, ColumnNames{}).Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, int64(2), table.At(0).PostID)

	row, ok := table.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, "42", row.Text)
	assert.Equal(t, Numeric(0.1), row.Features["ctr"])
	assert.Equal(t, Categorical("movie"), row.Features["topic"])
}

func TestStoreTableLoader_Missing(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	defer kv.Close()

	_, err := NewStoreTableLoader(kv, KeyPrefix{}, ColumnNames{}).Load(ctx)
	assert.ErrorContains(t, err, "not found")

	require.NoError(t, kv.Set(ctx, "post:features:ids", []byte(`[1]`)))
	_, err = NewStoreTableLoader(kv, KeyPrefix{}, ColumnNames{}).Load(ctx)
	assert.ErrorContains(t, err, "hash is empty")
}

type fakeFeast struct {
	values map[int64]map[string]any
	calls  int
}

func (f *fakeFeast) GetOnlineFeatures(_ context.Context, req *feast.GetOnlineFeaturesRequest) (*feast.GetOnlineFeaturesResponse, error) {
	f.calls++
	resp := &feast.GetOnlineFeaturesResponse{}
	for _, row := range req.EntityRows {
		id := row["post_id"].(int64)
		resp.FeatureVectors = append(resp.FeatureVectors, feast.FeatureVector{Values: f.values[id], EntityRow: row})
	}
	return resp, nil
}

func (f *fakeFeast) Close() error { return nil }

func TestFeastTableLoader(t *testing.T) {
	repo := store.NewMemoryRepository().PutPost(
		core.Post{ID: 1, Topic: "movie", Text: "first"},
		core.Post{ID: 2, Topic: "sport", Text: "second"},
		core.Post{ID: 3, Topic: "covid", Text: "third"},
	)
	client := &fakeFeast{values: map[int64]map[string]any{
		1: {"post_stats:ctr": 0.1},
		2: {"post_stats:ctr": 0.2},
		3: {"post_stats:ctr": 0.3},
	}}

	loader := NewFeastTableLoader(client, repo, []string{"post_stats:ctr"}, "").WithBatchSize(2)
	table, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, client.calls)
	require.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"ctr", "topic"}, table.Columns())
	assert.Equal(t, "third", table.At(2).Text)

	delete(client.values[2], "post_stats:ctr")
	_, err = loader.Load(context.Background())
	assert.ErrorContains(t, err, "is null")
}

func TestFeastTableLoader_ColumnConflicts(t *testing.T) {
	repo := store.NewMemoryRepository().PutPost(core.Post{ID: 1, Topic: "movie", Text: "first"})
	client := &fakeFeast{values: map[int64]map[string]any{
		1: {"a:ctr": 0.1, "b:ctr": 0.2, "post_stats:topic": "sport"},
	}}

	tests := []struct {
		name     string
		features []string
		want     string
	}{
		{"same feature in two views", []string{"a:ctr", "b:ctr"}, `feature "b:ctr" maps to column "ctr" already used by feature "a:ctr"`},
		{"shadows post topic", []string{"post_stats:topic"}, `column "topic" already used by post topic`},
		{"none configured", nil, "no feast features configured"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFeastTableLoader(client, repo, tt.features, "").Load(context.Background())
			assert.ErrorContains(t, err, tt.want)
		})
	}
	assert.Zero(t, client.calls)
}
