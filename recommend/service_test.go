package recommend

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/feedrank/core"
	"github.com/rushteam/feedrank/feature"
	"github.com/rushteam/feedrank/store"
)

var testColumns = []string{"topic", "ctr", "age", "exp_group", "month", "year", "hour"}

// postScorer 按帖子 ID 返回固定概率，并记录最后一次收到的矩阵
type postScorer struct {
	columns []string
	probs   map[int64]float64
	err     error

	mu   sync.Mutex
	last *feature.Matrix
}

func (s *postScorer) Name() string             { return "post" }
func (s *postScorer) FeatureColumns() []string { return s.columns }
func (s *postScorer) Predict(_ context.Context, m *feature.Matrix) ([]float64, error) {
	s.mu.Lock()
	s.last = m
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]float64, m.Len())
	for i, id := range m.PostIDs {
		out[i] = s.probs[id]
	}
	return out, nil
}

func testRows(n int) []feature.Row {
	topics := []string{"movie", "sport", "covid", "business", "politics", "tech", "entertainment"}
	rows := make([]feature.Row, n)
	for i := range rows {
		topic := topics[i%len(topics)]
		rows[i] = feature.Row{
			PostID: int64(i + 1),
			Topic:  topic,
			Text:   "text " + topic,
			Features: map[string]feature.Value{
				"topic": feature.Categorical(topic),
				"ctr":   feature.Numeric(float64(i) / 10),
			},
		}
	}
	return rows
}

func testRepo() *store.MemoryRepository {
	return store.NewMemoryRepository().PutUser(core.User{
		ID: 200, Gender: 1, Age: 34, Country: "Russia", City: "Moscow", ExpGroup: 2, OS: "Android", Source: "ads",
	})
}

func newService(t *testing.T, rows []feature.Row, scorer *postScorer, opts ...Option) *Service {
	t.Helper()
	table, err := feature.NewTable(rows)
	require.NoError(t, err)
	asm, err := feature.NewAssembler(&feature.Schema{
		Version:            "test",
		FeatureColumns:     testColumns,
		CategoricalColumns: []string{"topic"},
	}, table)
	require.NoError(t, err)
	svc, err := New(testRepo(), asm, scorer, opts...)
	require.NoError(t, err)
	return svc
}

func ids(posts []core.Post) []int64 {
	out := make([]int64, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

var at = time.Date(2023, 6, 15, 14, 30, 0, 0, time.UTC)

func TestGetRecommendations_TiesKeepTableOrder(t *testing.T) {
	scorer := &postScorer{columns: testColumns, probs: map[int64]float64{1: 0.9, 2: 0.4, 3: 0.9}}
	svc := newService(t, testRows(3), scorer)

	posts, err := svc.GetRecommendations(context.Background(), 200, at, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids(posts))
	assert.Equal(t, core.Post{ID: 1, Topic: "movie", Text: "text movie"}, posts[0])
	assert.Equal(t, core.Post{ID: 3, Topic: "covid", Text: "text covid"}, posts[1])
}

func TestGetRecommendations_LimitAboveCandidates(t *testing.T) {
	scorer := &postScorer{columns: testColumns, probs: map[int64]float64{1: 0.2, 2: 0.7, 3: 0.5}}
	svc := newService(t, testRows(3), scorer)

	posts, err := svc.GetRecommendations(context.Background(), 200, at, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 1}, ids(posts))
}

func TestGetRecommendations_LengthAndOrder(t *testing.T) {
	probs := map[int64]float64{}
	for i := int64(1); i <= 50; i++ {
		probs[i] = float64((i*37)%11) / 10
	}
	scorer := &postScorer{columns: testColumns, probs: probs}
	svc := newService(t, testRows(50), scorer)

	for _, limit := range []int{1, 5, 10, 49, 50, 80} {
		posts, err := svc.GetRecommendations(context.Background(), 200, at, limit)
		require.NoError(t, err)
		assert.Len(t, posts, min(limit, 50))

		for i := 1; i < len(posts); i++ {
			prev, cur := probs[posts[i-1].ID], probs[posts[i].ID]
			assert.GreaterOrEqual(t, prev, cur)
			if prev == cur {
				assert.Less(t, posts[i-1].ID, posts[i].ID)
			}
		}

		again, err := svc.GetRecommendations(context.Background(), 200, at, limit)
		require.NoError(t, err)
		assert.Equal(t, ids(posts), ids(again))
	}
}

func TestGetRecommendations_UnknownUser(t *testing.T) {
	scorer := &postScorer{columns: testColumns, probs: map[int64]float64{1: 0.5}}
	svc := newService(t, testRows(3), scorer)

	posts, err := svc.GetRecommendations(context.Background(), 999, at, 5)
	require.Error(t, err)
	assert.Nil(t, posts)
	assert.True(t, core.IsNotFound(err))
	assert.True(t, errors.Is(err, core.ErrUserNotFound))
	assert.Nil(t, scorer.last)

	_, err = svc.GetRecommendations(context.Background(), 999, at, 0)
	assert.True(t, core.IsNotFound(err))
}

func TestGetRecommendations_EmptyTable(t *testing.T) {
	scorer := &postScorer{columns: testColumns}
	svc := newService(t, nil, scorer)

	posts, err := svc.GetRecommendations(context.Background(), 200, at, 10)
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Nil(t, scorer.last)
}

func TestGetRecommendations_NonPositiveLimit(t *testing.T) {
	scorer := &postScorer{columns: testColumns, probs: map[int64]float64{1: 0.5}}
	svc := newService(t, testRows(3), scorer)

	for _, limit := range []int{0, -3} {
		posts, err := svc.GetRecommendations(context.Background(), 200, at, limit)
		require.NoError(t, err)
		assert.Empty(t, posts)
	}
}

func TestGetRecommendations_BroadcastsUserAndTime(t *testing.T) {
	scorer := &postScorer{columns: testColumns, probs: map[int64]float64{}}
	svc := newService(t, testRows(4), scorer)

	_, err := svc.GetRecommendations(context.Background(), 200, at, 2)
	require.NoError(t, err)

	m := scorer.last
	require.NotNil(t, m)
	require.Equal(t, testColumns, m.Columns)
	require.Equal(t, 4, m.Len())

	month, year, hour := m.Column("month"), m.Column("year"), m.Column("hour")
	age, exp := m.Column("age"), m.Column("exp_group")
	for _, row := range m.Rows {
		assert.Equal(t, feature.Numeric(6), row[month])
		assert.Equal(t, feature.Numeric(2023), row[year])
		assert.Equal(t, feature.Numeric(14), row[hour])
		assert.Equal(t, feature.Numeric(34), row[age])
		assert.Equal(t, feature.Categorical("2"), row[exp])
	}
}

func TestGetRecommendations_ScorerError(t *testing.T) {
	scorer := &postScorer{columns: testColumns, err: core.NewDomainError(core.ModuleModel, core.ErrorCodeUnavailable, "down")}
	svc := newService(t, testRows(3), scorer)

	posts, err := svc.GetRecommendations(context.Background(), 200, at, 2)
	require.Error(t, err)
	assert.Nil(t, posts)
	assert.True(t, core.IsUnavailable(err))
}

func TestGetRecommendations_InvalidProbabilities(t *testing.T) {
	scorer := &postScorer{columns: testColumns, probs: map[int64]float64{1: 2}}
	svc := newService(t, testRows(3), scorer)

	_, err := svc.GetRecommendations(context.Background(), 200, at, 2)
	require.Error(t, err)
	assert.Equal(t, core.ErrorCodeInvalidOutput, core.GetDomainError(err).Code)
}

func TestGetRecommendations_FilterExpr(t *testing.T) {
	scorer := &postScorer{columns: testColumns, probs: map[int64]float64{1: 0.1, 2: 0.2, 3: 0.9}}
	svc := newService(t, testRows(3), scorer, WithFilterExpr(`post.topic != "covid"`))

	posts, err := svc.GetRecommendations(context.Background(), 200, at, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, ids(posts))
}

func TestGetRecommendations_ConcurrentRequests(t *testing.T) {
	scorer := &postScorer{columns: testColumns, probs: map[int64]float64{1: 0.3, 2: 0.6, 3: 0.6, 4: 0.1}}
	svc := newService(t, testRows(4), scorer)

	var wg sync.WaitGroup
	results := make([][]int64, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			posts, err := svc.GetRecommendations(context.Background(), 200, at, 3)
			if assert.NoError(t, err) {
				results[i] = ids(posts)
			}
		}()
	}
	wg.Wait()
	for _, r := range results {
		assert.Equal(t, []int64{2, 3, 1}, r)
	}
}

func TestNew_ColumnMismatch(t *testing.T) {
	table, err := feature.NewTable(testRows(3))
	require.NoError(t, err)
	asm, err := feature.NewAssembler(&feature.Schema{Version: "v", FeatureColumns: testColumns}, table)
	require.NoError(t, err)

	reordered := []string{"ctr", "topic", "age", "exp_group", "month", "year", "hour"}
	_, err = New(testRepo(), asm, &postScorer{columns: reordered})
	require.Error(t, err)
	assert.True(t, core.IsStartupError(err))
	assert.True(t, core.IsFeatureMismatch(err))

	_, err = New(testRepo(), asm, &postScorer{columns: testColumns[:3]})
	assert.True(t, core.IsFeatureMismatch(err))
}

func TestNew_BadFilterExpr(t *testing.T) {
	table, err := feature.NewTable(testRows(3))
	require.NoError(t, err)
	asm, err := feature.NewAssembler(&feature.Schema{Version: "v", FeatureColumns: testColumns}, table)
	require.NoError(t, err)

	_, err = New(testRepo(), asm, &postScorer{columns: testColumns}, WithFilterExpr(`post.topic ==`))
	require.Error(t, err)
	assert.True(t, core.IsStartupError(err))
}

func TestFormat(t *testing.T) {
	table, err := feature.NewTable(testRows(3))
	require.NoError(t, err)

	posts, err := Format(table, []*core.Item{core.NewItem(3, 2), core.NewItem(1, 0)})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, ids(posts))
	assert.Equal(t, "covid", posts[0].Topic)
	assert.Equal(t, "text covid", posts[0].Text)

	_, err = Format(table, []*core.Item{core.NewItem(42, 0)})
	require.Error(t, err)
	assert.Equal(t, core.ErrorCodeInternalError, core.GetDomainError(err).Code)

	posts, err = Format(table, nil)
	require.NoError(t, err)
	assert.Empty(t, posts)
}
