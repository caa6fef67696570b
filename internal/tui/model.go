// Package tui provides the interactive budget browser.
package tui

import (
	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	minBarWidth = 10
	maxBarWidth = 40
)

// Model holds the budget browser state.
type Model struct {
	theme     themes.Theme
	lastError error
	load      Loader
	keymap    KeyMap
	help      help.Model
	bar       progress.Model
	bars      []model.BudgetBar
	cursor    int
	month     int
	year      int
	lastMonth int
	width     int
	height    int
	loading   bool
	quitting  bool
}

func newModel(load Loader, month, year int, cfg Config) Model {
	h := help.New()
	h.ShowAll = cfg.ShowHelp

	m := Model{
		theme:     cfg.Theme,
		load:      load,
		keymap:    DefaultKeyMap(),
		help:      h,
		bar:       progress.New(progress.WithGradient(cfg.Theme.BarStart, cfg.Theme.BarEnd), progress.WithoutPercentage()),
		month:     month,
		year:      year,
		lastMonth: month,
		loading:   true,
	}
	if month == calendar.WholeYear {
		m.lastMonth = 1
	}
	m.resize(cfg.Width, cfg.Height)
	return m
}

// Init loads the initial period.
func (m Model) Init() tea.Cmd {
	return m.fetch()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case barsLoadedMsg:
		// A slower load for a period we already left is dropped.
		if msg.month != m.month || msg.year != m.year {
			return m, nil
		}
		m.bars = msg.bars
		m.loading = false
		m.lastError = nil
		m.cursor = min(m.cursor, max(len(m.bars)-1, 0))

	case errorMsg:
		m.lastError = msg.err
		m.loading = false
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keymap.Down):
		if m.cursor < len(m.bars)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keymap.Home):
		m.cursor = 0
	case key.Matches(msg, m.keymap.End):
		m.cursor = max(len(m.bars)-1, 0)

	case key.Matches(msg, m.keymap.Prev):
		if m.month == calendar.WholeYear {
			m.year--
		} else {
			m.month, m.year = calendar.Retreat(m.month, m.year)
		}
		return m, m.reload()
	case key.Matches(msg, m.keymap.Next):
		if m.month == calendar.WholeYear {
			m.year++
		} else {
			m.month, m.year = calendar.Advance(m.month, m.year)
		}
		return m, m.reload()
	case key.Matches(msg, m.keymap.Period):
		if m.month == calendar.WholeYear {
			m.month = m.lastMonth
		} else {
			m.lastMonth = m.month
			m.month = calendar.WholeYear
		}
		return m, m.reload()
	case key.Matches(msg, m.keymap.Refresh):
		return m, m.reload()

	case key.Matches(msg, m.keymap.ToggleHelp):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.bar.Width = min(max(width/3, minBarWidth), maxBarWidth)
}

func (m *Model) reload() tea.Cmd {
	m.loading = true
	return m.fetch()
}

func (m Model) fetch() tea.Cmd {
	load, month, year := m.load, m.month, m.year
	return func() tea.Msg {
		bars, err := load(month, year)
		if err != nil {
			return errorMsg{err: err}
		}
		return barsLoadedMsg{bars: bars, month: month, year: year}
	}
}

// Selected returns the highlighted bar, if any.
func (m Model) Selected() (model.BudgetBar, bool) {
	if m.cursor < 0 || m.cursor >= len(m.bars) {
		return model.BudgetBar{}, false
	}
	return m.bars[m.cursor], true
}
