package table

import (
	"testing"

	"github.com/poiesic/skillmatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNullToken(t *testing.T) {
	for _, tok := range []string{"", "  ", "null", "Null", "NULL", "nan", "NaN", "NAN"} {
		assert.True(t, IsNullToken(tok), "token %q", tok)
	}
	for _, tok := range []string{"0", "false", "n/a", "SQL", "None", "none"} {
		assert.False(t, IsNullToken(tok), "token %q", tok)
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"true", true},
		{"TRUE", true},
		{"t", true},
		{"Yes", true},
		{"y", true},
		{"1", true},
		{" 1 ", true},
		{"false", false},
		{"no", false},
		{"0", false},
		{"", false},
		{"maybe", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBool(tt.raw))
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"12", 12, true},
		{" 3.5 ", 3.5, true},
		{"-1", -1, true},
		{"", 0, false},
		{"nan", 0, false},
		{"Inf", 0, false},
		{"twelve", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseNumber(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseArray(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "simple", raw: "SQL,Python", want: []string{"SQL", "Python"}},
		{name: "whitespace", raw: " SQL ,  Python ", want: []string{"SQL", "Python"}},
		{name: "drops empty and null", raw: "SQL,,null, NaN ,Python", want: []string{"SQL", "Python"}},
		{name: "dedupes first seen", raw: "Python,SQL,Python,SQL", want: []string{"Python", "SQL"}},
		{name: "case sensitive", raw: "sql,SQL", want: []string{"sql", "SQL"}},
		{name: "none is a value", raw: "None, SQL", want: []string{"None", "SQL"}},
		{name: "null cell", raw: "null", want: []string{}},
		{name: "empty cell", raw: "", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseArray(tt.raw))
		})
	}
}

func TestValueStrings(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		got, err := List([]string{"a", " b", "a", ""}).Strings()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, got)
	})

	t.Run("delimited string", func(t *testing.T) {
		got, err := String("x, y").Strings()
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y"}, got)
	})

	t.Run("null", func(t *testing.T) {
		got, err := Null().Strings()
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("number is malformed", func(t *testing.T) {
		got, err := Number(3).Strings()
		assert.ErrorIs(t, err, core.ErrMalformedArrayField)
		assert.Empty(t, got)
	})

	t.Run("bool is malformed", func(t *testing.T) {
		got, err := Bool(true).Strings()
		assert.ErrorIs(t, err, core.ErrMalformedArrayField)
		assert.NotNil(t, got)
	})
}

func TestValueScalars(t *testing.T) {
	assert.True(t, Null().IsNull())
	assert.Equal(t, "", Null().Text())
	assert.Equal(t, "12.5", Number(12.5).Text())
	assert.Equal(t, "true", Bool(true).Text())
	assert.Equal(t, "SQL", String("SQL").Text())

	f, ok := String("40").Float()
	assert.True(t, ok)
	assert.Equal(t, 40.0, f)

	_, ok = Bool(true).Float()
	assert.False(t, ok)

	assert.True(t, String("yes").Truth())
	assert.False(t, Number(1).Truth())
	assert.Equal(t, "list", KindList.String())
}
