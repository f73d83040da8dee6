// Package tui is the terminal front end: it lists, creates and deletes
// todos through the API client.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Tomlord1122/todo-app/internal/client"
	"github.com/Tomlord1122/todo-app/internal/domain"
)

// API is the part of *client.Client the UI needs.
type API interface {
	GetTodos(ctx context.Context) client.Promise[[]domain.Todo]
	CreateTodo(ctx context.Context, req client.CreateTodoRequest) client.Promise[domain.Todo]
	DeleteTodo(ctx context.Context, id string) client.Promise[struct{}]
}

const (
	fieldTitle = iota
	fieldDescription
	fieldDeadline
)

var (
	errBlankTitle  = errors.New("title cannot be empty")
	errBadDeadline = errors.New("deadline must be YYYY-MM-DD or RFC 3339")
)

// todoItem adapts domain.Todo to list.DefaultItem
type todoItem struct{ todo domain.Todo }

func (i todoItem) Title() string { return i.todo.Title }

func (i todoItem) Description() string {
	var parts []string
	if i.todo.Description != nil && *i.todo.Description != "" {
		parts = append(parts, *i.todo.Description)
	}
	if i.todo.Deadline != nil {
		parts = append(parts, "due "+i.todo.Deadline.Local().Format("2006-01-02 15:04"))
	}
	if len(parts) == 0 {
		return mutedStyle.Render("no details")
	}
	return strings.Join(parts, " · ")
}

func (i todoItem) FilterValue() string { return i.todo.Title }

// Messages carry the sequence number of the request that produced them so
// that results of abandoned requests can be dropped.
type (
	todosLoadedMsg struct {
		seq   int
		todos []domain.Todo
		err   error
	}
	todoCreatedMsg struct {
		seq  int
		todo domain.Todo
		err  error
	}
	todoDeletedMsg struct {
		seq int
		id  string
		err error
	}
)

type Model struct {
	api    API
	ctx    context.Context
	cancel context.CancelFunc

	list    list.Model
	spinner spinner.Model
	inputs  []textinput.Model
	focus   int

	adding  bool
	pending bool
	seq     int
	err     string
	status  string
}

// New builds the UI model. Cancelling ctx, or quitting, abandons any request
// still in flight.
func New(ctx context.Context, api API) Model {
	ctx, cancel := context.WithCancel(ctx)

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Todos"
	l.Styles.Title = titleStyle
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(true)
	l.SetStatusBarItemName("todo", "todos")

	addBind := key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	deleteBind := key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	reloadBind := key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload"))
	l.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{addBind, deleteBind, reloadBind} }
	l.AdditionalFullHelpKeys = func() []key.Binding { return []key.Binding{addBind, deleteBind, reloadBind} }

	inputs := make([]textinput.Model, 3)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Prompt = "> "
	}
	inputs[fieldTitle].Placeholder = "Title"
	inputs[fieldDescription].Placeholder = "Description (optional)"
	inputs[fieldDeadline].Placeholder = "Deadline YYYY-MM-DD (optional)"
	inputs[fieldDeadline].CharLimit = 40

	return Model{
		api:     api,
		ctx:     ctx,
		cancel:  cancel,
		list:    l,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle)),
		inputs:  inputs,
		pending: true,
		seq:     1,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadTodos(m.seq))
}

func (m Model) loadTodos(seq int) tea.Cmd {
	api, ctx := m.api, m.ctx
	return func() tea.Msg {
		todos, err := api.GetTodos(ctx).Await(ctx)
		return todosLoadedMsg{seq: seq, todos: todos, err: err}
	}
}

func (m Model) createTodo(seq int, req client.CreateTodoRequest) tea.Cmd {
	api, ctx := m.api, m.ctx
	return func() tea.Msg {
		todo, err := api.CreateTodo(ctx, req).Await(ctx)
		return todoCreatedMsg{seq: seq, todo: todo, err: err}
	}
}

func (m Model) deleteTodo(seq int, id string) tea.Cmd {
	api, ctx := m.api, m.ctx
	return func() tea.Msg {
		_, err := api.DeleteTodo(ctx, id).Await(ctx)
		return todoDeletedMsg{seq: seq, id: id, err: err}
	}
}

// begin marks a new request in flight and returns its sequence number.
func (m *Model) begin() int {
	m.seq++
	m.pending = true
	m.err = ""
	m.status = ""
	return m.seq
}

// settle reports whether a result for seq should be applied.
func (m *Model) settle(seq int, err error) bool {
	if seq != m.seq || client.IsKind(err, client.KindCancelled) {
		return false
	}
	m.pending = false
	if err != nil {
		m.err = client.UserMessage(err)
		return false
	}
	return true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := panelStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-6)
		return m, nil

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case todosLoadedMsg:
		if !m.settle(msg.seq, msg.err) {
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.todos))
		for _, t := range msg.todos {
			items = append(items, todoItem{todo: t})
		}
		return m, m.list.SetItems(items)

	case todoCreatedMsg:
		if !m.settle(msg.seq, msg.err) {
			return m, nil
		}
		m.status = "Created " + msg.todo.Title
		return m, m.list.InsertItem(len(m.list.Items()), todoItem{todo: msg.todo})

	case todoDeletedMsg:
		if !m.settle(msg.seq, msg.err) {
			return m, nil
		}
		for i, it := range m.list.Items() {
			if ti, ok := it.(todoItem); ok && ti.todo.ID == msg.id {
				m.list.RemoveItem(i)
				m.status = "Deleted " + ti.todo.Title
				break
			}
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
			return m, tea.Quit
		}
		if m.adding {
			return m.updateForm(msg)
		}
		return m.updateBrowse(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.cancel()
		return m, tea.Quit
	case "a":
		if m.pending {
			return m, nil
		}
		m.adding = true
		m.err = ""
		m.focus = fieldTitle
		for i := range m.inputs {
			m.inputs[i].SetValue("")
			m.inputs[i].Blur()
		}
		return m, m.inputs[fieldTitle].Focus()
	case "d":
		if m.pending {
			return m, nil
		}
		ti, ok := m.list.SelectedItem().(todoItem)
		if !ok {
			return m, nil
		}
		seq := m.begin()
		return m, tea.Batch(m.spinner.Tick, m.deleteTodo(seq, ti.todo.ID))
	case "r":
		if m.pending {
			return m, nil
		}
		seq := m.begin()
		return m, tea.Batch(m.spinner.Tick, m.loadTodos(seq))
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.adding = false
		m.err = ""
		return m, nil
	case "tab", "down":
		return m, m.focusField((m.focus + 1) % len(m.inputs))
	case "shift+tab", "up":
		return m, m.focusField((m.focus + len(m.inputs) - 1) % len(m.inputs))
	case "enter":
		req, err := m.formRequest()
		if err != nil {
			m.err = sentence(err.Error())
			return m, nil
		}
		m.adding = false
		seq := m.begin()
		return m, tea.Batch(m.spinner.Tick, m.createTodo(seq, req))
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) focusField(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

// formRequest validates the form locally before anything is sent.
func (m Model) formRequest() (client.CreateTodoRequest, error) {
	req := client.CreateTodoRequest{Title: strings.TrimSpace(m.inputs[fieldTitle].Value())}
	if req.Title == "" {
		return req, errBlankTitle
	}
	if d := strings.TrimSpace(m.inputs[fieldDescription].Value()); d != "" {
		req.Description = &d
	}
	if raw := strings.TrimSpace(m.inputs[fieldDeadline].Value()); raw != "" {
		deadline, err := parseDeadline(raw)
		if err != nil {
			return req, err
		}
		req.Deadline = &deadline
	}
	return req, nil
}

// sentence capitalises an error string for display.
func sentence(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// parseDeadline accepts a calendar date, read as end of that day in local
// time, or a full RFC 3339 timestamp.
func parseDeadline(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, errBadDeadline
	}
	return day.Add(24*time.Hour - time.Second), nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.list.View())
	b.WriteString("\n")

	if m.adding {
		labels := []string{"Title", "Description", "Deadline"}
		var form strings.Builder
		form.WriteString(titleStyle.Render("Add todo"))
		for i, in := range m.inputs {
			fmt.Fprintf(&form, "\n%s\n%s", mutedStyle.Render(labels[i]), in.View())
		}
		form.WriteString("\n" + helpStyle.Render("tab next field · enter save · esc cancel"))
		b.WriteString(formStyle.Render(form.String()))
		b.WriteString("\n")
	}

	switch {
	case m.pending:
		b.WriteString(m.spinner.View() + " Working...")
	case m.err != "":
		b.WriteString(errorStyle.Render("✖ " + m.err))
	case m.status != "":
		b.WriteString(successStyle.Render("✔ " + m.status))
	}

	return panelStyle.Render(b.String())
}

// Run starts the terminal UI and blocks until the user quits.
func Run(ctx context.Context, api API) error {
	p := tea.NewProgram(New(ctx, api), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
