package snowflake

import (
	"testing"

	"github.com/snowflakedb/snowflake-rest-go/internal/testutil"
)

func TestRowGetCaseInsensitive(t *testing.T) {
	cts := []ColumnType{{Name: "Foo", Index: 0, Type: "fixed"}, {Name: "bar", Index: 1, Type: "text"}}
	idx := BuildColumnIndex(cts)
	row := NewRow([]*string{ptr("1"), ptr("hello")}, cts, idx)

	v, err := Get[int64](row, "FOO")
	testutil.NoError(t, err)
	testutil.Equal(t, v, int64(1))

	s, err := Get[string](row, "Bar")
	testutil.NoError(t, err)
	testutil.Equal(t, s, "hello")
}

func TestRowGetMissingColumn(t *testing.T) {
	cts := []ColumnType{{Name: "Foo", Index: 0, Type: "fixed"}}
	idx := BuildColumnIndex(cts)
	row := NewRow([]*string{ptr("1")}, cts, idx)
	_, err := Get[int64](row, "missing")
	testutil.Error(t, err)
}

func TestRowDuplicateNameFirstWins(t *testing.T) {
	cts := []ColumnType{
		{Name: "N", Index: 0, Type: "fixed"},
		{Name: "N", Index: 1, Type: "fixed"},
	}
	idx := BuildColumnIndex(cts)
	row := NewRow([]*string{ptr("1"), ptr("2")}, cts, idx)
	v, err := Get[int64](row, "n")
	if err != nil {
		t.Fatal(err)
	}
	if v != 1 {
		t.Fatalf("v = %d, want 1 (first occurrence)", v)
	}
}

func TestRowAtOutOfRange(t *testing.T) {
	cts := []ColumnType{{Name: "N", Index: 0, Type: "fixed"}}
	idx := BuildColumnIndex(cts)
	row := NewRow([]*string{ptr("1")}, cts, idx)
	if _, err := At[int64](row, 5); err == nil {
		t.Fatal("expected out-of-range error")
	}
}

func TestRowColumnNamesOrderedByIndex(t *testing.T) {
	cts := []ColumnType{{Name: "B", Index: 1}, {Name: "A", Index: 0}}
	idx := BuildColumnIndex(cts)
	row := NewRow([]*string{ptr("x"), ptr("y")}, cts, idx)
	names := row.ColumnNames()
	if names[0] != "A" || names[1] != "B" {
		t.Fatalf("names = %v", names)
	}
}

func TestRowColumnTypesReturnsMetadata(t *testing.T) {
	cts := []ColumnType{
		{Name: "N", Index: 0, Type: "fixed", Precision: 38, Scale: 0},
		{Name: "S", Index: 1, Type: "text", Nullable: true},
	}
	idx := BuildColumnIndex(cts)
	row := NewRow([]*string{ptr("1"), ptr("hi")}, cts, idx)
	got := row.ColumnTypes()
	if len(got) != 2 || got[0].Type != "fixed" || got[1].Nullable != true {
		t.Fatalf("ColumnTypes() = %+v", got)
	}
}
