package exporter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func herdDataset() Dataset {
	return Dataset{
		NewRecord(
			Field{Key: "tag", Value: "A-17"},
			Field{Key: "breed", Value: "Angus"},
			Field{Key: "weight", Value: 412.5},
			Field{Key: "vaccinated", Value: true},
		),
		NewRecord(
			Field{Key: "tag", Value: "B-02"},
			Field{Key: "breed", Value: `Hereford "polled"`},
			Field{Key: "weight", Value: 388},
			Field{Key: "vaccinated", Value: nil},
		),
		NewRecord(
			Field{Key: "tag", Value: "C-11"},
			Field{Key: "breed", Value: "Brahman, cross"},
			Field{Key: "weight", Value: 401.25},
		),
	}
}

func parseCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestMarshalCSVInferredColumns(t *testing.T) {
	out := MarshalCSV(herdDataset(), nil)

	expected := strings.Join([]string{
		`"tag","breed","weight","vaccinated"`,
		`"A-17","Angus","412.5","true"`,
		`"B-02","Hereford ""polled""","388",""`,
		`"C-11","Brahman, cross","401.25",""`,
	}, "\n")
	assert.Equal(t, expected, string(out))
	assert.False(t, strings.HasSuffix(string(out), "\n"))
}

func TestMarshalCSVExplicitColumns(t *testing.T) {
	cols := Columns{
		{Key: "breed", Header: "Breed"},
		{Key: "tag", Header: "Ear Tag"},
		{Key: "dam", Header: "Dam"},
	}

	rows := parseCSV(t, MarshalCSV(herdDataset(), cols))

	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Breed", "Ear Tag", "Dam"}, rows[0])
	assert.Equal(t, []string{"Angus", "A-17", ""}, rows[1])
	assert.Equal(t, "", rows[3][2])
}

func TestMarshalCSVRowCount(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"single record", 1},
		{"few records", 3},
		{"many records", 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := make(Dataset, tt.size)
			for i := range ds {
				ds[i] = NewRecord(Field{Key: "n", Value: i}, Field{Key: "note", Value: "line\nbreak"})
			}
			rows := parseCSV(t, MarshalCSV(ds, nil))
			assert.Len(t, rows, tt.size+1)
		})
	}
}

func TestMarshalCSVRoundTrip(t *testing.T) {
	ds := herdDataset()
	rows := parseCSV(t, MarshalCSV(ds, nil))

	cols := ResolveColumns(ds, nil)
	assert.Equal(t, cols.Headers(), rows[0])
	for i, r := range ds {
		for j, col := range cols {
			v, _ := r.Lookup(col.Key)
			assert.Equal(t, Stringify(v), rows[i+1][j], "row %d column %s", i, col.Key)
		}
	}
}

func TestQuoteField(t *testing.T) {
	assert.Equal(t, `"He said ""hi"""`, quoteField(`He said "hi"`))
	assert.Equal(t, `""`, quoteField(""))

	rows := parseCSV(t, []byte(quoteField(`He said "hi"`)))
	assert.Equal(t, `He said "hi"`, rows[0][0])
}

func TestMarshalCSVEmpty(t *testing.T) {
	assert.Nil(t, MarshalCSV(nil, nil))
	assert.Nil(t, MarshalCSV(Dataset{}, Columns{{Key: "a", Header: "A"}}))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestEncoderWriteError(t *testing.T) {
	enc := NewEncoder(failingWriter{})
	err := enc.WriteRow([]string{"a"})
	assert.ErrorContains(t, err, "closed pipe")
	assert.Equal(t, 0, enc.Rows())
}

func TestEncoderSeparatesRows(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.NoError(t, enc.WriteRow([]string{"a", "b"}))
	require.NoError(t, enc.WriteRow([]string{"c"}))

	assert.Equal(t, "\"a\",\"b\"\n\"c\"", buf.String())
	assert.Equal(t, 2, enc.Rows())
}
