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


package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

type decoder struct {
	name   string
	decode func([]byte) ([]byte, error)
}

// decoders are tried in order. UTF-16 requires a byte order mark so that
// plain ASCII files are never misread as UTF-16.
var decoders = []decoder{
	{name: "utf-16", decode: func(b []byte) ([]byte, error) {
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes(b)
	}},
	{name: "utf-8", decode: func(b []byte) ([]byte, error) {
		if !utf8.Valid(b) {
			return nil, errors.New("invalid utf-8")
		}
		return unicode.UTF8BOM.NewDecoder().Bytes(b)
	}},
	{name: "latin-1", decode: func(b []byte) ([]byte, error) {
		return charmap.ISO8859_1.NewDecoder().Bytes(b)
	}},
}

var delimiters = []rune{'\t', ','}

// Loader reads lesson-level extracts into typed tables.
type Loader struct {
	columns *ColumnMap
	logger  *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader) error

// WithColumnMap sets the logical to physical column mapping.
// Default is DefaultColumnMap().
func WithColumnMap(columns *ColumnMap) Option {
	return func(l *Loader) error {
		if columns == nil {
			return fmt.Errorf("%w: column map is nil", ErrInvalidColumnMap)
		}
		l.columns = columns
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...Option) (*Loader, error) {
	l := &Loader{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	if l.columns == nil {
		l.columns = DefaultColumnMap()
	}
	l.logger = l.logger.With("component", "table-loader")
	return l, nil
}

// Load reads and parses the file at path.
func (l *Loader) Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadFailure, path, err)
	}
	t, err := l.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return t, nil
}

// Parse tries every encoding and delimiter combination in order and returns
// the first table that parses cleanly with at least two header columns.
func (l *Loader) Parse(data []byte) (*Table, error) {
	for _, dec := range decoders {
		text, err := dec.decode(data)
		if err != nil {
			l.logger.Debug("encoding rejected", "encoding", dec.name, "err", err)
			continue
		}
		for _, delim := range delimiters {
			t, err := l.parse(text, delim)
			if err != nil {
				l.logger.Debug("delimiter rejected", "encoding", dec.name, "delimiter", string(delim), "err", err)
				continue
			}
			t.Encoding = dec.name
			t.Delimiter = delim
			l.logger.Debug("parsed table", "encoding", dec.name, "delimiter", string(delim), "rows", t.Len(), "columns", len(t.Header))
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: no supported encoding/delimiter combination parsed", ErrLoadFailure)
}

func (l *Loader) parse(text []byte, delim rune) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("empty input")
	}
	if len(records[0]) < 2 {
		return nil, errors.New("header has fewer than two columns")
	}
	return FromRecords(records[0], records[1:], l.columns)
}
