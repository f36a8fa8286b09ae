// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"
	"sort"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/skillmatch/core"
)

// entryFormatVersion prefixes every encoded entry.
const entryFormatVersion = 1

const float32Size = 4

// MarshalEntry serializes a cache entry. Skills are written in sorted order
// so equal entries encode to equal bytes.
func MarshalEntry(entry *core.EmbeddingCacheEntry) []byte {
	skills := sortedSkills(entry.Vectors)

	size := varint.Int.Size(entryFormatVersion) +
		ord.String.Size(entry.SourceHash) +
		ord.String.Size(entry.Model) +
		varint.Int.Size(len(skills))
	for _, skill := range skills {
		size += ord.String.Size(skill) + vectorSize(entry.Vectors[skill])
	}

	buf := make([]byte, size)
	n := varint.Int.Marshal(entryFormatVersion, buf)
	n += ord.String.Marshal(entry.SourceHash, buf[n:])
	n += ord.String.Marshal(entry.Model, buf[n:])
	n += varint.Int.Marshal(len(skills), buf[n:])
	for _, skill := range skills {
		n += ord.String.Marshal(skill, buf[n:])
		n += marshalVector(entry.Vectors[skill], buf[n:])
	}
	return buf
}

// UnmarshalEntry deserializes a cache entry.
func UnmarshalEntry(data []byte) (*core.EmbeddingCacheEntry, error) {
	d := &decoder{bs: data}

	version, err := d.int()
	if err != nil {
		return nil, err
	}
	if version != entryFormatVersion {
		return nil, fmt.Errorf("%w: unsupported entry version %d", ErrSerializationFailed, version)
	}

	entry := &core.EmbeddingCacheEntry{}
	if entry.SourceHash, err = d.string(); err != nil {
		return nil, err
	}
	if entry.Model, err = d.string(); err != nil {
		return nil, err
	}
	count, err := d.length()
	if err != nil {
		return nil, err
	}

	entry.Vectors = make(map[string][]float32, count)
	for range count {
		skill, err := d.string()
		if err != nil {
			return nil, err
		}
		vec, err := d.vector()
		if err != nil {
			return nil, err
		}
		entry.Vectors[skill] = vec
	}
	return entry, nil
}

// MarshalVector serializes a single vector.
func MarshalVector(vec []float32) []byte {
	buf := make([]byte, vectorSize(vec))
	marshalVector(vec, buf)
	return buf
}

// UnmarshalVector deserializes a single vector.
func UnmarshalVector(data []byte) ([]float32, error) {
	d := &decoder{bs: data}
	return d.vector()
}

// MarshalStrings serializes a list of strings.
func MarshalStrings(values []string) []byte {
	size := varint.Int.Size(len(values))
	for _, v := range values {
		size += ord.String.Size(v)
	}
	buf := make([]byte, size)
	n := varint.Int.Marshal(len(values), buf)
	for _, v := range values {
		n += ord.String.Marshal(v, buf[n:])
	}
	return buf
}

// UnmarshalStrings deserializes a list of strings.
func UnmarshalStrings(data []byte) ([]string, error) {
	d := &decoder{bs: data}
	count, err := d.length()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, count)
	for range count {
		s, err := d.string()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func sortedSkills(vectors map[string][]float32) []string {
	skills := make([]string, 0, len(vectors))
	for skill := range vectors {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	return skills
}

func vectorSize(vec []float32) int {
	return varint.Int.Size(len(vec)) + len(vec)*float32Size
}

func marshalVector(vec []float32, buf []byte) int {
	n := varint.Int.Marshal(len(vec), buf)
	for _, f := range vec {
		n += raw.Float32.Marshal(f, buf[n:])
	}
	return n
}

// decoder walks a buffer, turning short reads into ErrTruncatedData.
type decoder struct {
	bs  []byte
	off int
}

func (d *decoder) remaining() int {
	return len(d.bs) - d.off
}

func (d *decoder) int() (int, error) {
	if d.remaining() <= 0 {
		return 0, ErrTruncatedData
	}
	v, n, err := varint.Int.Unmarshal(d.bs[d.off:])
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrTruncatedData, err)
	}
	d.off += n
	return v, nil
}

// length reads a non-negative count that cannot exceed the bytes left.
func (d *decoder) length() (int, error) {
	v, err := d.int()
	if err != nil {
		return 0, err
	}
	if v < 0 || v > d.remaining() {
		return 0, fmt.Errorf("%w: bad length %d", ErrSerializationFailed, v)
	}
	return v, nil
}

func (d *decoder) string() (string, error) {
	if d.remaining() <= 0 {
		return "", ErrTruncatedData
	}
	s, n, err := ord.String.Unmarshal(d.bs[d.off:])
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTruncatedData, err)
	}
	d.off += n
	return s, nil
}

func (d *decoder) vector() ([]float32, error) {
	dim, err := d.int()
	if err != nil {
		return nil, err
	}
	if dim < 0 || dim > d.remaining()/float32Size {
		return nil, fmt.Errorf("%w: vector of %d floats", ErrTruncatedData, dim)
	}
	vec := make([]float32, dim)
	for i := range vec {
		f, n, err := raw.Float32.Unmarshal(d.bs[d.off:])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTruncatedData, err)
		}
		vec[i] = f
		d.off += n
	}
	return vec, nil
}
