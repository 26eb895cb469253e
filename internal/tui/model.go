// Package tui implements the interactive review screen for an import preview.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/importer"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// Decision is what the user chose on the review screen.
type Decision struct {
	// Excluded holds candidate positions, in file order, left out of the commit.
	Excluded []int
	Commit   bool
}

const (
	minTableHeight = 5
	chromeHeight   = 8
)

// Model is the bubbletea model for reviewing a preview.
type Model struct {
	preview  *importer.Preview
	excluded map[int]bool
	keymap   KeyMap
	help     help.Model
	table    table.Model
	title    string
	decided  bool
	commit   bool
}

// NewModel builds a review model. Duplicates and repeated bank ids start
// excluded when skipDuplicates is set.
func NewModel(title string, preview *importer.Preview, skipDuplicates bool) Model {
	excluded := make(map[int]bool)
	if skipDuplicates {
		for i, c := range preview.Candidates {
			if c.Redundant() {
				excluded[i] = true
			}
		}
	}

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: " ", Width: 2},
			{Title: "Date", Width: 10},
			{Title: "Payee", Width: 32},
			{Title: "Amount", Width: 14},
			{Title: "Category", Width: 30},
		}),
		table.WithFocused(true),
		table.WithHeight(minTableHeight+10),
	)

	styles := table.DefaultStyles()
	styles.Header = cli.TableHeaderStyle
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("#FFFFFF")).Background(cli.PrimaryColor)
	t.SetStyles(styles)

	m := Model{
		preview:  preview,
		excluded: excluded,
		keymap:   DefaultKeyMap(),
		help:     help.New(),
		table:    t,
		title:    title,
	}
	m.refreshRows()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := msg.Height - chromeHeight
		if height < minTableHeight {
			height = minTableHeight
		}
		m.table.SetHeight(height)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			m.decided, m.commit = true, false
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Commit):
			m.decided, m.commit = true, true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Toggle):
			if i := m.table.Cursor(); i >= 0 && i < len(m.preview.Candidates) {
				m.excluded[i] = !m.excluded[i]
				m.refreshRows()
			}
			return m, nil
		case key.Matches(msg, m.keymap.DropDups):
			for i, c := range m.preview.Candidates {
				if c.Redundant() {
					m.excluded[i] = true
				}
			}
			m.refreshRows()
			return m, nil
		case key.Matches(msg, m.keymap.IncludeAll):
			m.excluded = make(map[int]bool)
			m.refreshRows()
			return m, nil
		case key.Matches(msg, m.keymap.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) refreshRows() {
	rows := make([]table.Row, 0, len(m.preview.Candidates))
	for i, c := range m.preview.Candidates {
		mark := "✓"
		switch {
		case m.excluded[i]:
			mark = "✗"
		case c.Redundant():
			mark = cli.DupIcon
		}

		sign := "-"
		if c.Polarity == model.TransactionTypeIncome {
			sign = "+"
		}

		category := c.SuggestedCategoryName
		if category == "" {
			category = "—"
		}

		rows = append(rows, table.Row{
			mark,
			c.Date.Format(time.DateOnly),
			c.Payee,
			sign + cli.Money(c.Amount),
			category,
		})
	}
	m.table.SetRows(rows)
}

// Decision returns the user's choice. Before a decision is made it reports
// no commit.
func (m Model) Decision() Decision {
	d := Decision{Commit: m.decided && m.commit}
	for i, out := range m.excluded {
		if out {
			d.Excluded = append(d.Excluded, i)
		}
	}
	sort.Ints(d.Excluded)
	return d
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(cli.FormatTitle(m.title))
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n\n")
	b.WriteString(m.summary())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keymap))
	return b.String()
}

func (m Model) summary() string {
	income, expenses := decimal.Zero, decimal.Zero
	var included int
	for i, c := range m.preview.Candidates {
		if m.excluded[i] {
			continue
		}
		included++
		if c.Polarity == model.TransactionTypeIncome {
			income = income.Add(decimal.NewFromFloat(c.Amount))
		} else {
			expenses = expenses.Add(decimal.NewFromFloat(c.Amount))
		}
	}

	parts := []string{
		fmt.Sprintf("%d of %d selected", included, len(m.preview.Candidates)),
		cli.IncomeStyle.Render("+" + cli.Money(income.InexactFloat64())),
		cli.ExpenseStyle.Render("-" + cli.Money(expenses.InexactFloat64())),
	}
	if m.preview.DuplicateCount > 0 {
		parts = append(parts, cli.WarningStyle.Render(fmt.Sprintf("%d duplicates", m.preview.DuplicateCount)))
	}
	if m.preview.RepeatedCount > 0 {
		parts = append(parts, cli.WarningStyle.Render(fmt.Sprintf("%d repeated bank ids", m.preview.RepeatedCount)))
	}
	return cli.SubtleStyle.Render(strings.Join(parts, "  •  "))
}
