package exporter

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type tagID int

func (t tagID) String() string { return "TAG-" + formatInt(int64(t)) }

func TestStringify(t *testing.T) {
	var nilPtr *int
	seven := 7

	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{name: "nil", input: nil, expected: ""},
		{name: "string", input: "Angus", expected: "Angus"},
		{name: "string with quote", input: `He said "hi"`, expected: `He said "hi"`},
		{name: "bool true", input: true, expected: "true"},
		{name: "bool false", input: false, expected: "false"},
		{name: "int", input: 42, expected: "42"},
		{name: "negative int64", input: int64(-9), expected: "-9"},
		{name: "uint8", input: uint8(200), expected: "200"},
		{name: "float integer", input: 123.0, expected: "123"},
		{name: "float decimal", input: 13.4, expected: "13.4"},
		{name: "float trailing zeros", input: 123.456000, expected: "123.456"},
		{name: "float32", input: float32(0.1), expected: "0.1"},
		{name: "large float below exponent threshold", input: 1.2345e20, expected: "123450000000000000000"},
		{name: "large float uses exponent", input: 1e21, expected: "1e+21"},
		{name: "negative large float", input: -2.5e22, expected: "-2.5e+22"},
		{name: "small float at threshold", input: 0.000001, expected: "0.000001"},
		{name: "small float uses exponent", input: 1.5e-7, expected: "1.5e-7"},
		{name: "zero float", input: 0.0, expected: "0"},
		{name: "infinity", input: math.Inf(1), expected: "+Inf"},
		{name: "json number verbatim", input: json.Number("1.50"), expected: "1.50"},
		{name: "time", input: time.Date(2026, 11, 2, 8, 30, 0, 0, time.UTC), expected: "2026-11-02T08:30:00Z"},
		{name: "stringer", input: tagID(12), expected: "TAG-12"},
		{name: "error", input: errors.New("bad"), expected: "bad"},
		{name: "nil pointer", input: nilPtr, expected: ""},
		{name: "pointer", input: &seven, expected: "7"},
		{name: "fallback", input: []int{1, 2}, expected: "[1 2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Stringify(tt.input))
		})
	}
}

func TestFormatBool(t *testing.T) {
	assert.Equal(t, "true", formatBool(true))
	assert.Equal(t, "false", formatBool(false))
}
