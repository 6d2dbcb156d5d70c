package exporter

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSetAndLookup(t *testing.T) {
	var r Record
	r.Set("tag", "A-17")
	r.Set("weight", 412.5)
	r.Set("tag", "A-18")

	assert.Equal(t, []string{"tag", "weight"}, r.Keys())
	assert.Equal(t, 2, r.Len())

	v, ok := r.Lookup("tag")
	require.True(t, ok)
	assert.Equal(t, "A-18", v)

	_, ok = r.Lookup("breed")
	assert.False(t, ok)
}

func TestRecordLookupNilValue(t *testing.T) {
	r := NewRecord(Field{Key: "notes", Value: nil})

	v, ok := r.Lookup("notes")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestRecordUnmarshalKeepsKeyOrder(t *testing.T) {
	var r Record
	err := json.Unmarshal([]byte(`{"zeta":1,"alpha":"x","mid":true,"none":null,"price":12.50}`), &r)
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "mid", "none", "price"}, r.Keys())

	price, _ := r.Lookup("price")
	assert.Equal(t, json.Number("12.50"), price)
	mid, _ := r.Lookup("mid")
	assert.Equal(t, true, mid)
	none, ok := r.Lookup("none")
	assert.True(t, ok)
	assert.Nil(t, none)
}

func TestRecordUnmarshalNestedValues(t *testing.T) {
	var r Record
	err := json.Unmarshal([]byte(`{"vaccines": ["bvd", "ibr"], "owner": {"name": "Lee"}}`), &r)
	require.NoError(t, err)

	v, _ := r.Lookup("vaccines")
	assert.Equal(t, `["bvd","ibr"]`, v)
	v, _ = r.Lookup("owner")
	assert.Equal(t, `{"name":"Lee"}`, v)
}

func TestRecordUnmarshalRejectsNonObject(t *testing.T) {
	var r Record
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &r))
	assert.Error(t, json.Unmarshal([]byte(`"text"`), &r))
}

func TestRecordMarshalJSON(t *testing.T) {
	r := NewRecord(
		Field{Key: "b", Value: 2},
		Field{Key: "a", Value: "one"},
		Field{Key: "c", Value: nil},
	)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"b":2,"a":"one","c":null}`, string(data))
}

func TestDecodeDataset(t *testing.T) {
	ds, err := DecodeDataset(strings.NewReader(`[{"tag":"A1","head":3},{"tag":"A2"}]`))
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, []string{"tag", "head"}, ds[0].Keys())
	assert.Equal(t, []string{"tag"}, ds[1].Keys())

	_, err = DecodeDataset(strings.NewReader(`{"tag":"A1"}`))
	assert.Error(t, err)
}
