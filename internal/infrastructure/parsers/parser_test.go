package parsers

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/entrylink/internal/domain/entities"
)

// collect parses input and returns every row.
func collect(t *testing.T, p Parser, input string) ([]entities.Row, error) {
	t.Helper()
	var rows []entities.Row
	err := p.Parse(strings.NewReader(input), func(r entities.Row) error {
		rows = append(rows, r)
		return nil
	})
	return rows, err
}

func TestJSONParser_Parse_ValidInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []entities.Row
	}{
		{
			name:  "rows keep number text",
			input: `[{"id": 10, "post_id": 1, "title": "Hi"}, {"id": 11, "post_id": null}]`,
			expected: []entities.Row{
				{"id": json.Number("10"), "post_id": json.Number("1"), "title": "Hi"},
				{"id": json.Number("11"), "post_id": nil},
			},
		},
		{
			name:     "empty array",
			input:    "[]",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := collect(t, &JSONParser{}, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestJSONParser_Parse_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not json", input: "not json"},
		{name: "object instead of array", input: `{"id": 1}`},
		{name: "truncated", input: `[{"id": 1}, {"id"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := collect(t, &JSONParser{}, tt.input)
			require.Error(t, err)
		})
	}
}

func TestCSVParser_Parse_ValidInput(t *testing.T) {
	input := "post_id,id,title\n1,10,Hi\n1,11,\n2,12\n"

	rows, err := collect(t, &CSVParser{}, input)
	require.NoError(t, err)
	assert.Equal(t, []entities.Row{
		{"post_id": "1", "id": "10", "title": "Hi"},
		{"post_id": "1", "id": "11", "title": nil},
		{"post_id": "2", "id": "12", "title": nil},
	}, rows)
}

func TestCSVParser_Parse_InvalidHeader(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "empty file", input: "", wantErr: "empty file"},
		{name: "duplicate column", input: "id,id\n1,2\n", wantErr: "duplicate column: id"},
		{name: "blank column", input: "id,,title\n", wantErr: "empty column name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := collect(t, &CSVParser{}, tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParser_StopsOnCallbackError(t *testing.T) {
	stop := errors.New("stop")
	for _, p := range []Parser{&CSVParser{}, &JSONParser{}} {
		input := "id\n1\n2\n"
		if p.Ext() == ".json" {
			input = `[{"id": 1}, {"id": 2}]`
		}
		calls := 0
		err := p.Parse(strings.NewReader(input), func(entities.Row) error {
			calls++
			return stop
		})
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 1, calls)
	}
}

func TestForFormat(t *testing.T) {
	assert.IsType(t, &JSONParser{}, ForFormat("json"))
	assert.IsType(t, &CSVParser{}, ForFormat("CSV"))
	assert.Nil(t, ForFormat("xml"))

	assert.IsType(t, &CSVParser{}, ForFile("dump/comment.csv"))
	assert.IsType(t, &JSONParser{}, ForFile("comment.JSON"))
	assert.Nil(t, ForFile("comment.txt"))
}

func TestDumpReader_StreamRows(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "comment.csv"), []byte("post_id,id\n1,10\n1,11\n"), 0644))

	reader, err := NewDumpReader(dir, "csv")
	require.NoError(t, err)
	defer reader.Close()

	var ids []any
	err = reader.StreamRows(context.Background(), "comment", func(r entities.Row) error {
		ids = append(ids, r["id"])
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"10", "11"}, ids)

	err = reader.StreamRows(context.Background(), "missing", func(entities.Row) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening table dump")
}

func TestDumpReader_Cancelled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "comment.json"), []byte(`[{"id": 1}]`), 0644))

	reader, err := NewDumpReader(dir, "json")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = reader.StreamRows(ctx, "comment", func(entities.Row) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewDumpReader_Errors(t *testing.T) {
	_, err := NewDumpReader(t.TempDir(), "xml")
	require.Error(t, err)

	_, err = NewDumpReader(filepath.Join(t.TempDir(), "nope"), "csv")
	require.Error(t, err)
}
