// Package keyword classifies transaction text into categories using
// user-defined keyword rules backed by a built-in keyword table.
package keyword

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/spice-ledger/internal/model"
)

//go:embed builtin.yaml
var builtinYAML []byte

var (
	builtinOnce  sync.Once
	builtinTable []model.BuiltInKeyword
)

// ErrInvalidTable is returned for a malformed keyword table document.
var ErrInvalidTable = errors.New("invalid keyword table")

// BuiltIn returns the built-in keyword table in declaration order. The table
// is decoded once; each call returns a fresh copy.
func BuiltIn() []model.BuiltInKeyword {
	builtinOnce.Do(func() {
		table, err := ParseTable(builtinYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded keyword table: %v", err))
		}
		builtinTable = table
	})
	out := make([]model.BuiltInKeyword, len(builtinTable))
	copy(out, builtinTable)
	return out
}

// ParseTable decodes a keyword table document: a YAML sequence of
// {keyword, parent, category} mappings. Keywords are lowercased.
func ParseTable(data []byte) ([]model.BuiltInKeyword, error) {
	var table []model.BuiltInKeyword
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}

	seen := make(map[string]bool, len(table))
	for i := range table {
		e := &table[i]
		e.Keyword = strings.ToLower(strings.TrimSpace(e.Keyword))
		if e.Keyword == "" || e.Parent == "" || e.Subcategory == "" {
			return nil, fmt.Errorf("%w: entry %d is incomplete", ErrInvalidTable, i+1)
		}
		if seen[e.Keyword] {
			return nil, fmt.Errorf("%w: keyword %q declared twice", ErrInvalidTable, e.Keyword)
		}
		seen[e.Keyword] = true
	}
	return table, nil
}
