package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/Veraticus/spice-ledger/internal/storage"
)

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: configuration not loaded", common.ErrMissingConfig)
	}

	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// parseDay parses a YYYY-MM-DD flag value.
func parseDay(flag, value string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, common.NewUserError(fmt.Sprintf("invalid --%s %q (use YYYY-MM-DD)", flag, value), err)
	}
	return t, nil
}

// parseOptionalDay parses a YYYY-MM-DD flag value, returning nil when empty.
func parseOptionalDay(flag, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseDay(flag, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// resolveAccount finds an account by numeric id or case-insensitive name.
func resolveAccount(ctx context.Context, store service.AccountStore, ref string) (*model.Account, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		return store.GetAccount(ctx, id)
	}

	accounts, err := store.GetAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	for i := range accounts {
		if strings.EqualFold(accounts[i].Name, ref) {
			return &accounts[i], nil
		}
	}
	return nil, fmt.Errorf("account %q: %w", ref, common.ErrNotFound)
}

// resolveCategory finds a category by numeric id, "Parent > Child" path, or
// top-level name.
func resolveCategory(ctx context.Context, store service.CategoryStore, ref string) (*model.Category, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		return store.GetCategoryByID(ctx, id)
	}

	parentName, childName, nested := strings.Cut(ref, ">")
	parent, err := store.GetTopLevelCategoryByName(ctx, strings.TrimSpace(parentName))
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, fmt.Errorf("category %q: %w", ref, common.ErrNotFound)
	}
	if !nested {
		return parent, nil
	}

	child, err := store.GetSubcategoryByName(ctx, parent.ID, strings.TrimSpace(childName))
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, fmt.Errorf("category %q: %w", ref, common.ErrNotFound)
	}
	return child, nil
}

// categoryLabel renders a category as "Parent > Child" when it has a parent.
func categoryLabel(ctx context.Context, store service.CategoryStore, c *model.Category) string {
	parentID, ok := c.ParentID()
	if !ok {
		return c.Name
	}
	parent, err := store.GetCategoryByID(ctx, parentID)
	if err != nil {
		return c.Name
	}
	return model.DisplayName(parent.Name, c.Name)
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatRelativeTime(t, now time.Time) string {
	duration := now.Sub(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		if m := int(duration.Minutes()); m != 1 {
			return fmt.Sprintf("%d minutes ago", m)
		}
		return "1 minute ago"
	case duration < 24*time.Hour:
		if h := int(duration.Hours()); h != 1 {
			return fmt.Sprintf("%d hours ago", h)
		}
		return "1 hour ago"
	case duration < 7*24*time.Hour:
		if d := int(duration.Hours() / 24); d != 1 {
			return fmt.Sprintf("%d days ago", d)
		}
		return "yesterday"
	default:
		return t.Format("2006-01-02 15:04")
	}
}

func writeln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func writef(w io.Writer, format string, a ...any) {
	_, _ = fmt.Fprintf(w, format, a...)
}
