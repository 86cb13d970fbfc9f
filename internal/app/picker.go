package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type pickerRow struct {
	index int
	entry Entry
	score int
}

type pickerModel struct {
	allRows    []pickerRow
	visible    []pickerRow
	queryInput textinput.Model
	table      table.Model
	selected   int
	cancelled  bool
	width      int
	height     int
	counts     string
}

func newPickerModel(entries []Entry) pickerModel {
	input := textinput.New()
	input.Placeholder = "fuzzy search"
	input.Prompt = "query> "
	input.Focus()

	cols := []table.Column{
		{Title: "CATEGORY", Width: 22},
		{Title: "CHANGE", Width: 8},
		{Title: "NAME", Width: 28},
		{Title: "VALUE", Width: 40},
	}

	tbl := table.New(
		table.WithColumns(cols),
		table.WithRows(nil),
		table.WithFocused(true),
		table.WithHeight(16),
	)

	m := pickerModel{
		queryInput: input,
		table:      tbl,
		allRows:    make([]pickerRow, 0, len(entries)),
		selected:   -1,
	}

	perChange := map[Change]int{}
	for i, e := range entries {
		m.allRows = append(m.allRows, pickerRow{index: i, entry: e})
		perChange[e.Change]++
	}
	m.counts = fmt.Sprintf("%d new  %d deleted  %d changed", perChange[Added], perChange[Removed], perChange[Modified])
	m.applyFilter()
	return m
}

func (m pickerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			if len(m.visible) == 0 {
				return m, nil
			}
			idx := m.table.Cursor()
			if idx >= 0 && idx < len(m.visible) {
				m.selected = m.visible[idx].index
				return m, tea.Quit
			}
		}
	}

	prevQuery := m.queryInput.Value()
	var cmdInput tea.Cmd
	m.queryInput, cmdInput = m.queryInput.Update(msg)
	if prevQuery != m.queryInput.Value() {
		m.applyFilter()
	}

	var cmdTable tea.Cmd
	m.table, cmdTable = m.table.Update(msg)

	return m, tea.Batch(cmdInput, cmdTable)
}

func (m pickerModel) View() string {
	var b strings.Builder
	b.WriteString("env-diff browser  " + m.counts + "\n")
	b.WriteString("enter: show  esc/ctrl-c: cancel  up/down: move  +new -deleted ~changed\n\n")
	b.WriteString(m.queryInput.View())
	b.WriteString("\n\n")
	if len(m.visible) == 0 {
		b.WriteString("No changes match query\n")
		return b.String()
	}
	b.WriteString(m.table.View())
	return b.String()
}

func (m *pickerModel) resize() {
	if m.width <= 0 {
		return
	}
	valueW := m.width - 66
	if valueW < 16 {
		valueW = 16
	}
	cols := m.table.Columns()
	if len(cols) == 4 {
		cols[3].Width = valueW
		m.table.SetColumns(cols)
	}

	tableHeight := m.height - 7
	if tableHeight < 5 {
		tableHeight = 5
	}
	m.table.SetHeight(tableHeight)
}

func (m *pickerModel) applyFilter() {
	kind, query := parseQuery(m.queryInput.Value())
	rows := make([]pickerRow, 0, len(m.allRows))

	for _, row := range m.allRows {
		if kind != "" && row.entry.Change != kind {
			continue
		}
		score, ok := entryScore(query, row.entry)
		if !ok {
			continue
		}
		row.score = score
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].score == rows[j].score {
			return rows[i].index < rows[j].index
		}
		return rows[i].score > rows[j].score
	})

	m.visible = rows
	tableRows := make([]table.Row, 0, len(rows))
	for _, row := range rows {
		tableRows = append(tableRows, table.Row{
			row.entry.Category.Title(),
			string(row.entry.Change),
			trim(row.entry.Name, 80),
			trim(valueColumn(row.entry), 120),
		})
	}
	m.table.SetRows(tableRows)

	if len(tableRows) == 0 {
		m.table.SetCursor(0)
		return
	}
	if m.table.Cursor() >= len(tableRows) {
		m.table.SetCursor(len(tableRows) - 1)
	}
}

// parseQuery splits a leading change marker off the query: "+" keeps new
// names, "-" deleted ones and "~" changed ones.
func parseQuery(raw string) (Change, string) {
	q := strings.TrimSpace(strings.ToLower(raw))
	var kind Change
	switch {
	case strings.HasPrefix(q, "+"):
		kind = Added
	case strings.HasPrefix(q, "-"):
		kind = Removed
	case strings.HasPrefix(q, "~"):
		kind = Modified
	default:
		return "", q
	}
	return kind, strings.TrimSpace(q[1:])
}

// entryScore ranks a match on the variable or function name above a match
// on its category.
func entryScore(query string, e Entry) (int, bool) {
	if score, ok := fuzzyScore(query, strings.ToLower(e.Name)); ok {
		return 2 * score, true
	}
	return fuzzyScore(query, strings.ToLower(e.Category.Title()+" "+string(e.Change)))
}

// valueColumn shows "old -> new" for changed scalars and the surviving value
// otherwise.
func valueColumn(e Entry) string {
	if e.Change == Modified && !strings.Contains(e.Before+e.After, "\n") {
		return e.Before + " -> " + e.After
	}
	return e.Summary()
}

func fuzzyScore(query, target string) (int, bool) {
	if query == "" {
		return 1, true
	}
	qi := 0
	score := 0
	streak := 0
	for i := 0; i < len(target) && qi < len(query); i++ {
		if target[i] == query[qi] {
			score += 10 + streak*3
			streak++
			qi++
		} else {
			streak = 0
		}
	}
	if qi != len(query) {
		return 0, false
	}
	return score, true
}

func trim(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func chooseEntry(entries []Entry) (Entry, error) {
	m := newPickerModel(entries)
	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return Entry{}, err
	}

	result, ok := finalModel.(pickerModel)
	if !ok {
		return Entry{}, fmt.Errorf("unexpected picker model type")
	}
	if result.cancelled {
		return Entry{}, fmt.Errorf("selection canceled")
	}
	if result.selected < 0 || result.selected >= len(entries) {
		return Entry{}, fmt.Errorf("no entry selected")
	}
	return entries[result.selected], nil
}
