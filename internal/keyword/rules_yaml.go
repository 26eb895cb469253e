package keyword

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// RuleDocument is the portable form of a keyword rule. Categories are named
// rather than referenced by id so documents survive a fresh database.
type RuleDocument struct {
	Active    *bool           `yaml:"active,omitempty"`
	Keyword   string          `yaml:"keyword"`
	Category  string          `yaml:"category"`
	Parent    string          `yaml:"parent,omitempty"`
	MatchMode model.MatchMode `yaml:"match_mode,omitempty"`
	Priority  int             `yaml:"priority,omitempty"`
}

// RuleStore is what rule import and export need from persistence.
type RuleStore interface {
	Store
	GetKeywords(ctx context.Context) ([]model.CategoryKeyword, error)
	CreateKeyword(ctx context.Context, kw *model.CategoryKeyword) error
}

// ImportReport counts the outcome of a rule import.
type ImportReport struct {
	Skipped  []string
	Imported int
}

// ExportRules writes every rule, active or not, as a YAML sequence.
func ExportRules(ctx context.Context, store RuleStore, w io.Writer) (int, error) {
	rules, err := store.GetKeywords(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load keyword rules: %w", err)
	}
	sortRules(rules)

	docs := make([]RuleDocument, 0, len(rules))
	for _, r := range rules {
		cat, err := store.GetCategoryByID(ctx, r.CategoryID)
		if err != nil {
			return 0, fmt.Errorf("failed to load category %d for %q: %w", r.CategoryID, r.Keyword, err)
		}
		doc := RuleDocument{
			Keyword:   r.Keyword,
			Category:  cat.Name,
			MatchMode: r.MatchMode,
			Priority:  r.Priority,
		}
		if parentID, ok := cat.ParentID(); ok {
			parent, err := store.GetCategoryByID(ctx, parentID)
			if err != nil {
				return 0, fmt.Errorf("failed to load parent category %d: %w", parentID, err)
			}
			doc.Parent = parent.Name
		}
		if !r.IsActive {
			inactive := false
			doc.Active = &inactive
		}
		docs = append(docs, doc)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(docs); err != nil {
		return 0, fmt.Errorf("failed to encode keyword rules: %w", err)
	}
	return len(docs), enc.Close()
}

// ImportRules reads a YAML sequence of rules and creates each one whose
// category can be resolved. Unresolvable or duplicate rules are reported as
// skipped rather than failing the import.
func ImportRules(ctx context.Context, store RuleStore, r io.Reader) (*ImportReport, error) {
	var docs []RuleDocument
	if err := yaml.NewDecoder(r).Decode(&docs); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}

	existing, err := store.GetKeywords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load keyword rules: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, k := range existing {
		seen[strings.ToLower(k.Keyword)] = true
	}

	report := &ImportReport{}
	for _, doc := range docs {
		kw := strings.TrimSpace(doc.Keyword)
		if kw == "" || doc.Category == "" {
			report.Skipped = append(report.Skipped, fmt.Sprintf("%q: keyword and category are required", kw))
			continue
		}
		if seen[strings.ToLower(kw)] {
			report.Skipped = append(report.Skipped, fmt.Sprintf("%q: already defined", kw))
			continue
		}

		cat, err := resolveDocCategory(ctx, store, doc)
		if err != nil {
			return report, err
		}
		if cat == nil {
			report.Skipped = append(report.Skipped,
				fmt.Sprintf("%q: unknown category %q", kw, model.DisplayName(doc.Parent, doc.Category)))
			continue
		}

		mode := doc.MatchMode
		if mode == "" {
			mode = model.MatchContains
		}
		if !mode.Valid() {
			report.Skipped = append(report.Skipped, fmt.Sprintf("%q: unknown match mode %q", kw, mode))
			continue
		}

		rule := &model.CategoryKeyword{
			Keyword:    kw,
			CategoryID: cat.ID,
			MatchMode:  mode,
			Priority:   doc.Priority,
			IsActive:   doc.Active == nil || *doc.Active,
		}
		if err := store.CreateKeyword(ctx, rule); err != nil {
			return report, fmt.Errorf("failed to create rule %q: %w", kw, err)
		}
		seen[strings.ToLower(kw)] = true
		report.Imported++
	}

	return report, nil
}

func resolveDocCategory(ctx context.Context, store RuleStore, doc RuleDocument) (*model.Category, error) {
	if doc.Parent == "" {
		cat, err := store.GetTopLevelCategoryByName(ctx, doc.Category)
		if err != nil {
			return nil, fmt.Errorf("failed to look up category %q: %w", doc.Category, err)
		}
		return cat, nil
	}

	parent, err := store.GetTopLevelCategoryByName(ctx, doc.Parent)
	if err != nil {
		return nil, fmt.Errorf("failed to look up category %q: %w", doc.Parent, err)
	}
	if parent == nil {
		return nil, nil
	}
	cat, err := store.GetSubcategoryByName(ctx, parent.ID, doc.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to look up category %q: %w", model.DisplayName(doc.Parent, doc.Category), err)
	}
	return cat, nil
}
