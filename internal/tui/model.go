package tui

import (
	"strconv"

	"github.com/Veraticus/recipebook/internal/model"
	"github.com/Veraticus/recipebook/internal/tui/themes"
	"github.com/Veraticus/recipebook/internal/tui/viewmodel"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Focus identifies which widget receives keystrokes.
type Focus int

const (
	FocusSearch Focus = iota
	FocusList
)

// Model holds the browser state. Everything about the recipe list itself lives in
// the view model; Model only mirrors its latest snapshot.
type Model struct {
	vm       *viewmodel.RecipeViewModel
	theme    themes.Theme
	keymap   KeyMap
	help     help.Model
	search   textinput.Model
	list     table.Model
	spinner  spinner.Model
	details  viewport.Model
	state    viewmodel.UIState
	config   Config
	width    int
	height   int
	focus    Focus
	quitting bool
}

// newModel creates a new model with the given configuration.
func newModel(vm *viewmodel.RecipeViewModel, cfg Config) Model {
	search := textinput.New()
	search.Placeholder = "Search recipes..."
	search.Prompt = "🔍 "
	search.PromptStyle = cfg.Theme.Prompt
	search.CharLimit = 100
	search.Focus()

	list := table.New(
		table.WithColumns(columns(cfg.Width)),
		table.WithHeight(listHeight(cfg.Height)),
	)
	styles := table.DefaultStyles()
	styles.Header = cfg.Theme.TableHeader
	styles.Selected = cfg.Theme.Selected
	list.SetStyles(styles)

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = cfg.Theme.Prompt

	m := Model{
		vm:      vm,
		theme:   cfg.Theme,
		keymap:  DefaultKeyMap(),
		help:    help.New(),
		search:  search,
		list:    list,
		spinner: spin,
		details: viewport.New(cfg.Width-4, listHeight(cfg.Height)),
		config:  cfg,
		width:   cfg.Width,
		height:  cfg.Height,
		focus:   FocusSearch,
	}
	m.applyState(vm.State())
	return m
}

// Init starts the landing search for the unfiltered first page.
func (m Model) Init() tea.Cmd {
	m.vm.Refresh()
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		waitForState(m.vm.Updates()),
	)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		return m, nil

	case stateMsg:
		m.applyState(msg.state)
		return m, waitForState(m.vm.Updates())

	case updatesClosedMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	if m.focus == FocusSearch {
		m.search, cmd = m.search.Update(msg)
	}
	return m, cmd
}

// handleKey routes a keystroke. Global keys first, then the details pane, then the
// focused widget.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.state.SelectedRecipe != nil {
		return m.handleDetailsKey(msg)
	}

	switch {
	case key.Matches(msg, m.keymap.Back):
		m.vm.ClearScreen()
		m.search.SetValue("")
		m.setFocus(FocusSearch)
		return m.sync(), nil

	case key.Matches(msg, m.keymap.Refresh):
		m.vm.Refresh()
		return m.sync(), nil

	case key.Matches(msg, m.keymap.Stored):
		m.vm.LoadStored()
		m.search.SetValue("")
		m.setFocus(FocusList)
		return m.sync(), nil

	case key.Matches(msg, m.keymap.NextPage):
		m.vm.LoadNextPage()
		return m.sync(), nil

	case key.Matches(msg, m.keymap.SwitchTab):
		if m.focus == FocusSearch {
			m.setFocus(FocusList)
		} else {
			m.setFocus(FocusSearch)
		}
		return m, nil
	}

	if m.focus == FocusSearch {
		return m.handleSearchKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.Select) {
		m.setFocus(FocusList)
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		m.vm.ChangeSearchText(after)
		m = m.sync()
	}
	return m, cmd
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keymap.Select):
		if recipe, ok := m.selectedRecipe(); ok {
			m.vm.SelectRecipe(recipe)
			m.vm.LoadDetails(recipe.ID)
			return m.sync(), nil
		}
		return m, nil

	case key.Matches(msg, m.keymap.Category):
		index, _ := strconv.Atoi(msg.String())
		if index >= 1 && index <= len(m.config.Categories) {
			m.search.SetValue("")
			m.vm.SelectCategory(m.config.Categories[index-1])
			return m.sync(), nil
		}
		return m, nil

	case key.Matches(msg, m.keymap.Down) && m.atLastRow():
		m.vm.LoadNextPage()
		return m.sync(), nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleDetailsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.Back) || key.Matches(msg, m.keymap.Quit) {
		m.vm.ClearSelectedRecipe()
		return m.sync(), nil
	}

	var cmd tea.Cmd
	m.details, cmd = m.details.Update(msg)
	return m, cmd
}

// sync pulls the snapshot produced by a synchronous view model call.
func (m Model) sync() Model {
	m.applyState(m.vm.State())
	return m
}

func (m *Model) applyState(state viewmodel.UIState) {
	showingDetails := m.state.SelectedRecipe != nil
	m.state = state

	rows := make([]table.Row, 0, len(state.Recipes))
	for i, r := range state.Recipes {
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			viewmodel.SanitizeForDisplay(r.Title),
			viewmodel.SanitizeForDisplay(r.Publisher),
			viewmodel.FormatRating(r.Rating),
		})
	}
	m.list.SetRows(rows)
	if cursor := m.list.Cursor(); cursor >= len(rows) {
		m.list.SetCursor(max(len(rows)-1, 0))
	}

	if state.SelectedRecipe != nil {
		m.details.SetContent(m.renderRecipe(*state.SelectedRecipe))
		if !showingDetails {
			m.details.GotoTop()
		}
	}
}

func (m *Model) setFocus(focus Focus) {
	m.focus = focus
	if focus == FocusSearch {
		m.search.Focus()
		m.list.Blur()
		return
	}
	m.search.Blur()
	m.list.Focus()
}

func (m Model) selectedRecipe() (model.Recipe, bool) {
	cursor := m.list.Cursor()
	if cursor < 0 || cursor >= len(m.state.Recipes) {
		return model.Recipe{}, false
	}
	return m.state.Recipes[cursor], true
}

func (m Model) atLastRow() bool {
	return len(m.state.Recipes) > 0 && m.list.Cursor() == len(m.state.Recipes)-1
}

// handleResize adjusts component sizes when terminal resizes.
func (m *Model) handleResize() {
	m.list.SetColumns(columns(m.width))
	m.list.SetHeight(listHeight(m.height))
	m.list.SetWidth(m.width)
	m.details.Width = m.width - 4
	m.details.Height = listHeight(m.height)
	m.search.Width = m.width - 6
	m.help.Width = m.width
}

// listHeight leaves room for the header, search box, status line and help.
func listHeight(height int) int {
	return max(height-9, 3)
}

func columns(width int) []table.Column {
	const (
		indexWidth  = 4
		ratingWidth = 7
	)
	rest := max(width-indexWidth-ratingWidth-8, 20)
	titleWidth := rest * 2 / 3
	return []table.Column{
		{Title: "#", Width: indexWidth},
		{Title: "Title", Width: titleWidth},
		{Title: "Publisher", Width: rest - titleWidth},
		{Title: "Rating", Width: ratingWidth},
	}
}
