package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRows() []Row {
	return []Row{
		{PostID: 1, Topic: "movie", Text: "first", Features: map[string]Value{"topic": Categorical("movie"), "ctr": Numeric(0.1)}},
		{PostID: 2, Topic: "sport", Text: "second", Features: map[string]Value{"topic": Categorical("sport"), "ctr": Numeric(0.2)}},
		{PostID: 3, Topic: "covid", Text: "third", Features: map[string]Value{"topic": Categorical("covid"), "ctr": Numeric(0.3)}},
	}
}

func TestNewTable(t *testing.T) {
	table, err := NewTable(testRows())
	require.NoError(t, err)

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"ctr", "topic"}, table.Columns())
	assert.True(t, table.HasColumn("ctr"))
	assert.False(t, table.HasColumn("text"))

	row, ok := table.Lookup(2)
	require.True(t, ok)
	assert.Equal(t, "second", row.Text)

	pos, ok := table.Position(3)
	require.True(t, ok)
	assert.Equal(t, 2, pos)

	_, ok = table.Lookup(42)
	assert.False(t, ok)
}

func TestNewTable_Empty(t *testing.T) {
	table, err := NewTable(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
	assert.Empty(t, table.Columns())
}

func TestNewTable_Errors(t *testing.T) {
	dup := testRows()
	dup[2].PostID = 1
	_, err := NewTable(dup)
	assert.ErrorContains(t, err, "duplicate post id 1")

	ragged := testRows()
	ragged[1].Features = map[string]Value{"topic": Categorical("sport")}
	_, err = NewTable(ragged)
	assert.Error(t, err)

	renamed := testRows()
	renamed[2].Features = map[string]Value{"topic": Categorical("covid"), "views": Numeric(3)}
	_, err = NewTable(renamed)
	assert.ErrorContains(t, err, `missing feature column "ctr"`)
}

func TestNewTable_CopiesInput(t *testing.T) {
	rows := testRows()
	table, err := NewTable(rows)
	require.NoError(t, err)

	rows[0].Features["ctr"] = Numeric(99)
	row, _ := table.Lookup(1)
	assert.Equal(t, Numeric(0.1), row.Features["ctr"])
}

func TestNewRow(t *testing.T) {
	row, err := NewRow(map[string]any{
		"post_id": int64(7),
		"text":    "hello",
		"topic":   "movie",
		"ctr":     0.4,
		"bucket":  int32(3),
	}, ColumnNames{})
	require.NoError(t, err)

	assert.Equal(t, int64(7), row.PostID)
	assert.Equal(t, "hello", row.Text)
	assert.Equal(t, "movie", row.Topic)
	assert.Equal(t, map[string]Value{
		"topic":  Categorical("movie"),
		"ctr":    Numeric(0.4),
		"bucket": Numeric(3),
	}, row.Features)
}

func TestNewRow_Errors(t *testing.T) {
	_, err := NewRow(map[string]any{"topic": "movie"}, ColumnNames{})
	assert.ErrorContains(t, err, "missing id column")

	_, err = NewRow(map[string]any{"post_id": 1, "topic": "movie", "text": "a", "ctr": nil}, ColumnNames{})
	assert.ErrorContains(t, err, "null value")

	_, err = NewRow(map[string]any{"post_id": 1, "topic": "movie", "text": 5}, ColumnNames{})
	assert.ErrorContains(t, err, "unsupported type int")
}

func TestNewRow_DisplayColumns(t *testing.T) {
	tests := []struct {
		name   string
		record map[string]any
		want   string
	}{
		{"missing text", map[string]any{"post_id": 1, "topic": "movie", "ctr": 0.1}, `post 1: missing column "text"`},
		{"null text", map[string]any{"post_id": 2, "topic": "sport", "text": nil, "ctr": 0.2}, `post 2: text column "text": null value`},
		{"missing topic", map[string]any{"post_id": 3, "text": "hello", "ctr": 0.3}, `post 3: missing column "topic"`},
		{"null topic", map[string]any{"post_id": 4, "topic": nil, "text": "hello"}, `post 4: column "topic": null value`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRow(tt.record, ColumnNames{})
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestBuildTable_RejectsMissingDisplayColumns(t *testing.T) {
	_, err := BuildTable([]map[string]any{
		{"post_id": 1, "topic": "movie", "ctr": 0.1},
		{"post_id": 2, "topic": "sport", "ctr": 0.2, "text": nil},
	}, ColumnNames{})
	assert.ErrorContains(t, err, `missing column "text"`)

	table, err := BuildTable([]map[string]any{
		{"post_id": 1, "topic": "movie", "text": "first", "ctr": 0.1},
		{"post_id": 2, "topic": "sport", "text": "", "ctr": 0.2},
	}, ColumnNames{})
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
}
