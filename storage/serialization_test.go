package storage

import (
	"testing"

	"github.com/poiesic/skillmatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalEntry(t *testing.T) {
	tests := []struct {
		name  string
		entry *core.EmbeddingCacheEntry
	}{
		{
			name: "empty vectors",
			entry: &core.EmbeddingCacheEntry{
				SourceHash: core.ContentHash([]byte("source")),
				Model:      "text-embedding-3-small",
				Vectors:    map[string][]float32{},
			},
		},
		{
			name: "several skills",
			entry: &core.EmbeddingCacheEntry{
				SourceHash: "abc123",
				Model:      "mock",
				Vectors: map[string][]float32{
					"SQL":              {0.1, -0.2, 0.3},
					"Python":           {1, 0, 0},
					"Machine Learning": {0, 0.5, -0.5},
				},
			},
		},
		{
			name: "unicode skill names",
			entry: &core.EmbeddingCacheEntry{
				SourceHash: "h",
				Model:      "m",
				Vectors:    map[string][]float32{"Análisis de Datos": {0.25}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalEntry(tt.entry)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalEntry(data)
			require.NoError(t, err)
			assert.Equal(t, tt.entry, decoded)
		})
	}
}

func TestMarshalEntry_Deterministic(t *testing.T) {
	entry := &core.EmbeddingCacheEntry{
		SourceHash: "h",
		Model:      "m",
		Vectors: map[string][]float32{
			"a": {1}, "b": {2}, "c": {3}, "d": {4}, "e": {5},
		},
	}
	first := MarshalEntry(entry)
	for range 10 {
		assert.Equal(t, first, MarshalEntry(entry))
	}
}

func TestUnmarshalEntry_Invalid(t *testing.T) {
	valid := MarshalEntry(&core.EmbeddingCacheEntry{
		SourceHash: "hash",
		Model:      "model",
		Vectors:    map[string][]float32{"SQL": {0.1, 0.2, 0.3, 0.4}},
	})

	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"truncated vector", valid[:len(valid)-3]},
		{"truncated header", valid[:3]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalEntry(tt.data)
			assert.Error(t, err)
		})
	}

	t.Run("unknown version", func(t *testing.T) {
		data := append([]byte{}, valid...)
		data[0] = 0x7e
		_, err := UnmarshalEntry(data)
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})
}

func TestMarshalUnmarshalVector(t *testing.T) {
	vec := []float32{0.5, -1, 3.25}
	decoded, err := UnmarshalVector(MarshalVector(vec))
	require.NoError(t, err)
	assert.Equal(t, vec, decoded)

	decoded, err = UnmarshalVector(MarshalVector(nil))
	require.NoError(t, err)
	assert.Empty(t, decoded)

	_, err = UnmarshalVector(nil)
	assert.ErrorIs(t, err, ErrTruncatedData)
}

func TestMarshalUnmarshalStrings(t *testing.T) {
	values := []string{"Python", "", "SQL"}
	decoded, err := UnmarshalStrings(MarshalStrings(values))
	require.NoError(t, err)
	assert.Equal(t, values, decoded)
}
