package feature

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/feedrank/core"
)

func testSchema() *Schema {
	return &Schema{
		Version: "test",
		FeatureColumns: []string{
			"topic", "ctr", "age", "country", "city", "exp_group", "gender", "os", "source",
			"month", "year", "hour",
		},
		CategoricalColumns: []string{"topic"},
	}
}

func testUser() *core.User {
	return &core.User{ID: 200, Gender: 1, Age: 34, Country: "Russia", City: "Moscow", ExpGroup: 2, OS: "Android", Source: "ads"}
}

func newTestAssembler(t *testing.T, opts ...AssemblerOption) *Assembler {
	t.Helper()
	table, err := NewTable(testRows())
	require.NoError(t, err)
	a, err := NewAssembler(testSchema(), table, opts...)
	require.NoError(t, err)
	return a
}

func TestAssembler_Broadcast(t *testing.T) {
	a := newTestAssembler(t)
	at := time.Date(2023, 6, 15, 14, 30, 0, 0, time.UTC)

	m, err := a.AssembleAll(context.Background(), testUser(), at)
	require.NoError(t, err)

	require.Equal(t, 3, m.Len())
	assert.Equal(t, testSchema().FeatureColumns, m.Columns)
	assert.Equal(t, []int64{1, 2, 3}, m.PostIDs)

	for i, row := range m.Rows {
		require.Len(t, row, len(m.Columns))
		assert.Equal(t, Numeric(6), row[m.Column("month")], "row %d", i)
		assert.Equal(t, Numeric(2023), row[m.Column("year")], "row %d", i)
		assert.Equal(t, Numeric(14), row[m.Column("hour")], "row %d", i)
		assert.Equal(t, Numeric(34), row[m.Column("age")])
		assert.Equal(t, Categorical("Russia"), row[m.Column("country")])
		assert.Equal(t, Categorical("2"), row[m.Column("exp_group")])
		assert.Equal(t, Categorical("1"), row[m.Column("gender")])
		assert.Equal(t, Categorical("ads"), row[m.Column("source")])
	}
	assert.Equal(t, Categorical("movie"), m.Rows[0][0])
	assert.Equal(t, Numeric(0.3), m.Rows[2][1])
	assert.Equal(t, -1, m.Column("text"))
}

func TestAssembler_HourUsesOwnLocation(t *testing.T) {
	a := newTestAssembler(t)
	loc := time.FixedZone("UTC+3", 3*3600)
	at := time.Date(2023, 6, 15, 23, 10, 0, 0, loc)

	m, err := a.Assemble(context.Background(), testUser(), at, []int{0})
	require.NoError(t, err)
	assert.Equal(t, Numeric(23), m.Rows[0][m.Column("hour")])
}

func TestAssembler_SelectionAndChunks(t *testing.T) {
	a := newTestAssembler(t, WithChunkSize(1), WithWorkers(2))
	m, err := a.Assemble(context.Background(), testUser(), time.Now(), []int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, m.PostIDs)
	assert.Equal(t, Categorical("covid"), m.Rows[0][0])
	assert.Equal(t, Categorical("movie"), m.Rows[1][0])
}

func TestAssembler_Empty(t *testing.T) {
	table, err := NewTable(nil)
	require.NoError(t, err)
	a, err := NewAssembler(testSchema(), table)
	require.NoError(t, err)

	m, err := a.AssembleAll(context.Background(), testUser(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, testSchema().FeatureColumns, m.Columns)
}

func TestAssembler_Errors(t *testing.T) {
	a := newTestAssembler(t)

	_, err := a.Assemble(context.Background(), nil, time.Now(), []int{0})
	assert.True(t, core.IsInvalidInput(err))

	_, err = a.Assemble(context.Background(), testUser(), time.Now(), []int{5})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.Assemble(ctx, testUser(), time.Now(), []int{0, 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewAssembler_TableMissingColumn(t *testing.T) {
	table, err := NewTable(testRows())
	require.NoError(t, err)
	s := testSchema()
	s.FeatureColumns = append(s.FeatureColumns, "views")

	_, err = NewAssembler(s, table)
	assert.True(t, core.IsFeatureMismatch(err))
}

func TestMatrix_Dense(t *testing.T) {
	a := newTestAssembler(t)
	m, err := a.Assemble(context.Background(), testUser(), time.Date(2023, 6, 15, 14, 0, 0, 0, time.UTC), []int{1})
	require.NoError(t, err)

	enc := NewLabelEncoderFromSchema(&Schema{
		FeatureColumns:     testSchema().FeatureColumns,
		CategoricalColumns: []string{"topic", "country", "city", "os", "source"},
		Categories: map[string][]string{
			"topic":   {"movie", "sport"},
			"country": {"Russia"},
			"city":    {"Moscow"},
			"os":      {"iOS", "Android"},
			"source":  {"organic", "ads"},
		},
	})
	dense, err := m.Dense(enc)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{2, 0.2, 34, 1, 1, 2, 1, 2, 2, 6, 2023, 14}}, dense)

	_, err = m.Dense(NewLabelEncoder(nil))
	assert.ErrorContains(t, err, "no vocabulary")
}
