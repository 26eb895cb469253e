package keyword

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// Source tells which tier produced a match.
type Source string

// Match sources.
const (
	SourceUser    Source = "user"
	SourceBuiltIn Source = "builtin"
)

// Match is a resolved classification.
type Match struct {
	DisplayName string
	Keyword     string
	Source      Source
	CategoryID  int
	RuleID      int // zero for built-in matches
}

// Store is the persistence the matcher reads. Name lookups return a nil
// category when nothing matches; GetCategoryByID returns common.ErrNotFound.
type Store interface {
	GetActiveKeywords(ctx context.Context) ([]model.CategoryKeyword, error)
	GetCategoryByID(ctx context.Context, id int) (*model.Category, error)
	GetTopLevelCategoryByName(ctx context.Context, name string) (*model.Category, error)
	GetSubcategoryByName(ctx context.Context, parentID int, name string) (*model.Category, error)
}

type resolved struct {
	display  string
	category model.Category
}

// Matcher resolves text to a category: active user rules first, in
// descending priority with ties broken by ascending rule id, then the
// built-in table in declaration order. The first rule whose category accepts
// the transaction type wins.
//
// A Matcher caches rules and category lookups for its lifetime; create one
// per request, or call Reset after editing rules.
type Matcher struct {
	store    Store
	byID     map[int]*resolved
	byName   map[string]*resolved
	builtin  []model.BuiltInKeyword
	rules    []model.CategoryKeyword
	mu       sync.Mutex
	rulesSet bool
}

// NewMatcher creates a matcher over store and a built-in table.
func NewMatcher(store Store, builtin []model.BuiltInKeyword) *Matcher {
	return &Matcher{
		store:   store,
		builtin: builtin,
		byID:    make(map[int]*resolved),
		byName:  make(map[string]*resolved),
	}
}

// Reset drops cached rules and categories.
func (m *Matcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules, m.rulesSet = nil, false
	m.byID = make(map[int]*resolved)
	m.byName = make(map[string]*resolved)
}

// Classify returns the category for text and polarity, or nil when the text
// stays uncategorized. A matching rule whose category has the wrong type is
// passed over in favor of later rules.
func (m *Matcher) Classify(ctx context.Context, text string, polarity model.TransactionType) (*Match, error) {
	if polarity != model.TransactionTypeIncome && polarity != model.TransactionTypeExpense {
		return nil, nil
	}
	return m.match(ctx, text, func(c model.Category) bool { return c.Accepts(polarity) })
}

// Explain returns the first rule that matches text regardless of category
// type, to show how a description would be classified.
func (m *Matcher) Explain(ctx context.Context, text string) (*Match, error) {
	return m.match(ctx, text, func(model.Category) bool { return true })
}

func (m *Matcher) match(ctx context.Context, text string, accept func(model.Category) bool) (*Match, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rules, err := m.loadRules(ctx)
	if err != nil {
		return nil, err
	}

	for _, rule := range rules {
		if !rule.Matches(text) {
			continue
		}
		r, err := m.resolveByID(ctx, rule.CategoryID)
		if err != nil {
			return nil, err
		}
		if r == nil || !accept(r.category) {
			continue
		}
		return &Match{
			CategoryID:  r.category.ID,
			DisplayName: r.display,
			Keyword:     rule.Keyword,
			Source:      SourceUser,
			RuleID:      rule.ID,
		}, nil
	}

	lower := strings.ToLower(text)
	for _, entry := range m.builtin {
		if !strings.Contains(lower, entry.Keyword) {
			continue
		}
		r, err := m.resolveByName(ctx, entry.Parent, entry.Subcategory)
		if err != nil {
			return nil, err
		}
		if r == nil || !accept(r.category) {
			continue
		}
		return &Match{
			CategoryID:  r.category.ID,
			DisplayName: r.display,
			Keyword:     entry.Keyword,
			Source:      SourceBuiltIn,
		}, nil
	}

	return nil, nil
}

func (m *Matcher) loadRules(ctx context.Context) ([]model.CategoryKeyword, error) {
	if m.rulesSet {
		return m.rules, nil
	}

	rules, err := m.store.GetActiveKeywords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load keyword rules: %w", err)
	}

	sortRules(rules)
	m.rules, m.rulesSet = rules, true
	slog.Debug("Loaded keyword rules", "count", len(rules))
	return rules, nil
}

// sortRules orders rules by descending priority, then ascending id.
func sortRules(rules []model.CategoryKeyword) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		return rules[i].ID < rules[j].ID
	})
}

// resolveByID loads a rule's category and its display name. A missing
// category resolves to nil so the rule is skipped.
func (m *Matcher) resolveByID(ctx context.Context, id int) (*resolved, error) {
	if r, ok := m.byID[id]; ok {
		return r, nil
	}

	cat, err := m.store.GetCategoryByID(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		m.byID[id] = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load category %d: %w", id, err)
	}

	display := cat.Name
	if parentID, ok := cat.ParentID(); ok {
		parent, err := m.store.GetCategoryByID(ctx, parentID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("failed to load parent category %d: %w", parentID, err)
		}
		if parent != nil {
			display = model.DisplayName(parent.Name, cat.Name)
		}
	}

	r := &resolved{category: *cat, display: display}
	m.byID[id] = r
	return r, nil
}

// resolveByName finds a built-in entry's subcategory under its top-level
// parent.
func (m *Matcher) resolveByName(ctx context.Context, parentName, name string) (*resolved, error) {
	key := parentName + "\x00" + name
	if r, ok := m.byName[key]; ok {
		return r, nil
	}

	parent, err := m.store.GetTopLevelCategoryByName(ctx, parentName)
	if err != nil {
		return nil, fmt.Errorf("failed to look up category %q: %w", parentName, err)
	}
	if parent == nil {
		m.byName[key] = nil
		return nil, nil
	}

	sub, err := m.store.GetSubcategoryByName(ctx, parent.ID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up category %q: %w", model.DisplayName(parentName, name), err)
	}
	if sub == nil {
		m.byName[key] = nil
		return nil, nil
	}

	r := &resolved{category: *sub, display: model.DisplayName(parentName, name)}
	m.byName[key] = r
	return r, nil
}
