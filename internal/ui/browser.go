package ui

// browser.go is the interactive issue list: saved search tabs, a query bar,
// the paged issue table and the pagination caption.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/thesavant42/issuenav/internal/models"
	"github.com/thesavant42/issuenav/internal/search"
)

// SortOrders are the sorts the browser cycles through
var SortOrders = []string{"date", "new", "freq", "user", "priority"}

const statusDuration = 4 * time.Second

// StatusUpdater changes the status of issues
type StatusUpdater interface {
	UpdateIssueStatus(ctx context.Context, org string, ids []string, status string) error
}

// BrowserOptions configures a Browser
type BrowserOptions struct {
	Controller *search.Controller
	History    *search.History
	Status     StatusUpdater    // Optional: enables resolving issues
	Logger     *log.Logger      // Optional
	Now        func() time.Time // Optional: clock for relative times
}

type browserMode int

const (
	modeTable browserMode = iota
	modeSearch
)

// Messages
type (
	loadedMsg struct{ err error }

	fetchedMsg struct {
		req  search.FetchRequest
		page *models.IssuePage
		err  error
	}

	pinnedMsg struct {
		search *models.SavedSearch
		err    error
	}

	unpinnedMsg struct{ err error }

	resolvedMsg struct {
		issue models.Issue
		err   error
	}
)

// Browser is the bubbletea model for the issue list
type Browser struct {
	PageState

	ctx     context.Context
	ctrl    *search.Controller
	history *search.History
	status  StatusUpdater
	logger  *log.Logger
	now     func() time.Time

	mode    browserMode
	table   table.Model
	input   textinput.Model
	spinner spinner.Model
	issues  []models.Issue // rows currently shown
}

// NewBrowser creates the issue browser. Fetches run under ctx.
func NewBrowser(ctx context.Context, opts BrowserOptions) Browser {
	layout := DefaultLayout()

	t := table.New(
		table.WithColumns(CalculateColumns(IssueColumns(), layout.TableWidth)),
		table.WithFocused(true),
		table.WithHeight(layout.TableHeight),
	)
	ApplyTableStyles(&t)

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = search.DefaultQuery
	ti.CharLimit = 512
	ti.Width = layout.InnerWidth - 4

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return Browser{
		PageState: NewPageState(layout, now),
		ctx:       ctx,
		ctrl:      opts.Controller,
		history:   opts.History,
		status:    opts.Status,
		logger:    opts.Logger,
		now:       now,
		table:     t,
		input:     ti,
		spinner:   NewAppSpinner(),
	}
}

// RunBrowser runs the browser full screen until the user quits
func RunBrowser(ctx context.Context, opts BrowserOptions) error {
	p := tea.NewProgram(NewBrowser(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("browser error: %w", err)
	}
	return nil
}

func (m Browser) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

// loadCmd loads the directory and first page for the current history entry
func (m Browser) loadCmd() tea.Cmd {
	ctrl, ctx, loc := m.ctrl, m.ctx, m.history.Current()
	return func() tea.Msg {
		return loadedMsg{err: ctrl.Load(ctx, loc)}
	}
}

// fetchCmd starts a fetch for the current location. Only the latest one is adopted.
func (m Browser) fetchCmd() tea.Cmd {
	req := m.ctrl.BeginFetch()
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		page, err := ctrl.Fetch(ctx, req)
		return fetchedMsg{req: req, page: page, err: err}
	}
}

func (m Browser) pinCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		pinned, err := ctrl.PinCurrent(ctx)
		return pinnedMsg{search: pinned, err: err}
	}
}

func (m Browser) unpinCmd(saved models.SavedSearch) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return unpinnedMsg{err: ctrl.Unpin(ctx, saved)}
	}
}

func (m Browser) resolveCmd(issue models.Issue) tea.Cmd {
	status, ctx, org := m.status, m.ctx, m.ctrl.Scope().Org
	return func() tea.Msg {
		err := status.UpdateIssueStatus(ctx, org, []string{issue.ID}, "resolved")
		return resolvedMsg{issue: issue, err: err}
	}
}

func (m Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.ClearExpiredStatus()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if m.UpdateLayout(msg.Width, msg.Height) {
			m.table.SetColumns(CalculateColumns(IssueColumns(), m.Layout.TableWidth))
			m.table.SetHeight(m.Layout.TableHeight)
			m.input.Width = m.Layout.InnerWidth - 4
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		if msg.err != nil {
			m.SetFailure("Load", msg.err, 0)
		}
		m.syncRows()
		return m, nil

	case fetchedMsg:
		if m.ctrl.CompleteFetch(msg.req, msg.page, msg.err) && msg.err == nil {
			m.syncRows()
		}
		return m, nil

	case pinnedMsg:
		if msg.err != nil {
			m.SetFailure("Pin", msg.err, statusDuration)
			return m, nil
		}
		m.SetStatus("Pinned "+msg.search.Label(), statusDuration)
		return m, m.fetchCmd()

	case unpinnedMsg:
		if msg.err != nil {
			m.SetFailure("Unpin", msg.err, statusDuration)
			return m, nil
		}
		m.SetStatus("Unpinned", statusDuration)
		return m, m.fetchCmd()

	case resolvedMsg:
		if msg.err != nil {
			m.SetFailure("Resolve", msg.err, statusDuration)
			return m, nil
		}
		m.removeIssue(msg.issue.ID)
		m.ctrl.MarkRemoved(1)
		m.SetStatus("Resolved "+msg.issue.ShortID, statusDuration)
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeSearch {
			return m.updateSearch(msg)
		}
		return m.updateTable(msg)
	}

	return m, nil
}

func (m Browser) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.mode = modeTable
		m.input.Blur()
		m.table.Focus()
		m.ctrl.SubmitQuery(strings.TrimSpace(sanitizeInput(m.input.Value())))
		return m, m.fetchCmd()
	case tea.KeyEsc:
		m.mode = modeTable
		m.input.Blur()
		m.table.Focus()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Browser) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.Quitting = true
		return m, tea.Quit

	case "n", "right":
		if _, ok := m.ctrl.NextPage(); !ok {
			m.SetStatus("No more results", statusDuration)
			return m, nil
		}
		return m, m.fetchCmd()

	case "p", "left":
		if _, ok := m.ctrl.PreviousPage(); !ok {
			m.SetStatus("Already on the first page", statusDuration)
			return m, nil
		}
		return m, m.fetchCmd()

	case "/":
		m.mode = modeSearch
		m.table.Blur()
		m.input.SetValue(m.ctrl.Effective().Query)
		m.input.CursorEnd()
		return m, m.input.Focus()

	case "s":
		m.ctrl.ChangeSort(nextSort(m.ctrl.Effective().Sort))
		return m, m.fetchCmd()

	case "tab", "shift+tab":
		next, ok := m.cycleSavedSearch(msg.String() == "tab")
		if !ok {
			m.SetStatus("No saved searches", statusDuration)
			return m, nil
		}
		m.ctrl.SelectSavedSearch(next)
		return m, m.fetchCmd()

	case "P":
		return m, m.pinCmd()

	case "U":
		selected := m.ctrl.SelectedSearch()
		if selected == nil || !selected.IsPinned {
			m.SetStatus("No pinned search selected", statusDuration)
			return m, nil
		}
		return m, m.unpinCmd(*selected)

	case "r":
		if m.status == nil {
			m.SetStatus("Resolving is not available", statusDuration)
			return m, nil
		}
		idx := m.table.Cursor()
		if idx < 0 || idx >= len(m.issues) {
			return m, nil
		}
		return m, m.resolveCmd(m.issues[idx])

	case "b":
		if !m.history.Back() {
			return m, nil
		}
		return m, m.fetchCmd()

	case "f":
		if !m.history.Forward() {
			return m, nil
		}
		return m, m.fetchCmd()

	case "R":
		return m, m.fetchCmd()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// cycleSavedSearch returns the search after (or before) the selected one
func (m Browser) cycleSavedSearch(forward bool) (models.SavedSearch, bool) {
	list := m.ctrl.SavedSearchList()
	if len(list) == 0 {
		return models.SavedSearch{}, false
	}

	current := -1
	if sel := m.ctrl.SelectedSearch(); sel != nil {
		for i, s := range list {
			if s.ID == sel.ID {
				current = i
				break
			}
		}
	}

	var next int
	switch {
	case current < 0 && forward:
		next = 0
	case current < 0:
		next = len(list) - 1
	case forward:
		next = (current + 1) % len(list)
	default:
		next = (current - 1 + len(list)) % len(list)
	}
	return list[next], true
}

func nextSort(current string) string {
	if current == "" {
		current = search.DefaultSort
	}
	for i, s := range SortOrders {
		if s == current {
			return SortOrders[(i+1)%len(SortOrders)]
		}
	}
	return SortOrders[0]
}

// syncRows rebuilds the table from the controller's adopted page
func (m *Browser) syncRows() {
	page := m.ctrl.Page()
	if page == nil {
		m.issues = nil
		m.table.SetRows(nil)
		return
	}
	m.issues = append([]models.Issue(nil), page.Issues...)
	m.setRows()
	m.table.GotoTop()
}

func (m *Browser) removeIssue(id string) {
	for i, issue := range m.issues {
		if issue.ID == id {
			m.issues = append(m.issues[:i], m.issues[i+1:]...)
			break
		}
	}
	m.setRows()
}

func (m *Browser) setRows() {
	cells := IssueRows(m.issues, m.now())
	rows := make([]table.Row, len(cells))
	for i, c := range cells {
		rows[i] = table.Row(c)
	}
	m.table.SetRows(rows)
}

func (m Browser) View() string {
	if m.Quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.tabsView())
	b.WriteString("\n")
	b.WriteString(m.queryView())
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(m.footerView())

	help := "n/p: page | /: search | s: sort | tab: saved searches | P/U: pin/unpin | r: resolve | b/f: back/forward | q: quit"
	return lipgloss.JoinVertical(lipgloss.Left,
		BorderedBox(m.Layout).Render(b.String()),
		BorderedBox(m.Layout).Render(HintStyle.Render(help)),
	)
}

func (m Browser) headerView() string {
	scope := m.ctrl.Scope()
	title := TitleStyle.Render("Issues · " + scope.Org)

	badge := m.ctrl.State().String()
	if sel := m.ctrl.SelectedSearch(); sel != nil {
		badge += ": " + sel.Label()
	}
	return title + "  " + AccentStyle.Render("["+badge+"]")
}

func (m Browser) tabsView() string {
	list := m.ctrl.SavedSearchList()
	if len(list) == 0 {
		return HintStyle.Render("No saved searches")
	}

	var selectedID string
	if sel := m.ctrl.SelectedSearch(); sel != nil {
		selectedID = sel.ID
	}

	tabs := make([]string, 0, len(list))
	for _, s := range list {
		label := s.Label()
		if s.IsPinned {
			label = "* " + label
		}
		if s.ID == selectedID {
			tabs = append(tabs, TabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, TabInactiveStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Browser) queryView() string {
	if m.mode == modeSearch {
		return m.input.View()
	}
	eq := m.ctrl.Effective()
	sort := eq.Sort
	if sort == "" {
		sort = search.DefaultSort
	}
	return NormalStyle.Render(fmt.Sprintf("Query: %s", eq.Query)) + "  " +
		HintStyle.Render(fmt.Sprintf("sort: %s  source: %s", sort, eq.Source))
}

func (m Browser) footerView() string {
	var links models.PageLinks
	if page := m.ctrl.Page(); page != nil {
		links = page.Links
	}

	prev := ArrowDisabledStyle.Render("‹ prev")
	if links.HasPrevious() {
		prev = ArrowStyle.Render("‹ prev")
	}
	next := ArrowDisabledStyle.Render("next ›")
	if links.HasNext() {
		next = ArrowStyle.Render("next ›")
	}

	parts := []string{prev, NormalStyle.Render(m.ctrl.Caption()), next}
	if m.ctrl.Loading() {
		parts = append(parts, m.spinner.View()+ProgressStyle.Render(" Loading..."))
	}
	if err := m.ctrl.Err(); err != nil {
		parts = append(parts, ErrorStyle.Render(err.Error()))
	}
	if m.HasStatus() {
		parts = append(parts, m.RenderStatus())
	}
	return strings.Join(parts, "  ")
}
