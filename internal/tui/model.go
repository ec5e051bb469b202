package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	bar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gabe/rcbt/internal/history"
	"github.com/gabe/rcbt/internal/models"
	"github.com/gabe/rcbt/internal/notify"
	"github.com/gabe/rcbt/internal/progress"
	"github.com/gabe/rcbt/internal/validator"
	"github.com/gabe/rcbt/internal/workflow"
)

type tab int

const (
	tabWorkflow tab = iota
	tabIndividual
	tabHistory
	tabLog
)

var tabNames = []string{"Workflow", "Individual", "History", "Log"}

// logLimit caps the entries kept for the log pane
const logLimit = 500

// Deps wires the dashboard to the workflow
type Deps struct {
	Controller  *workflow.Controller
	History     *history.Browser
	Bridge      *Bridge
	Log         workflow.EventLog
	Files       map[models.FileSlot]string
	DownloadDir string
	OpenBrowser bool
	Opener      func(url string) error
}

type (
	opDoneMsg struct {
		op  string
		err error
	}
	tickMsg time.Time
)

// Model is the dashboard state
type Model struct {
	deps Deps
	ctx  context.Context

	width     int
	height    int
	activeTab tab

	snap     workflow.Snapshot
	running  map[string]bool
	spinner  spinner.Model
	inputs   []textinput.Model
	focus    int
	editing  bool
	global   progress.Update
	indiv    progress.Update
	bar      bar.Model
	report   *reportMsg
	detour   *detourMsg
	opened   string
	kind     models.TargetType
	targets  *Chooser
	holder   string
	table    table.Model
	rows     []history.Row
	deleting int64
	entries  []notify.Notification
	logView  viewport.Model
	toasts   *ToastQueue

	palette      bool
	paletteInput string
	paletteIndex int

	quitting bool
}

// NewModel builds the dashboard around deps
func NewModel(ctx context.Context, deps Deps) Model {
	inputs := make([]textinput.Model, len(models.Slots))
	for i, slot := range models.Slots {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = "path to " + slot.FieldName()
		ti.CharLimit = 1024
		ti.Width = 50
		ti.SetValue(deps.Files[slot])
		inputs[i] = ti
	}

	t := table.New(
		table.WithColumns(historyColumns()),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	return Model{
		deps:    deps,
		ctx:     ctx,
		running: make(map[string]bool),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		inputs:  inputs,
		bar:     bar.New(bar.WithDefaultGradient(), bar.WithWidth(40)),
		targets: NewChooser(nil),
		holder:  workflow.TargetPlaceholder,
		table:   t,
		logView: viewport.New(80, 15),
		toasts:  NewToastQueue(),
	}
}

func historyColumns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Date", Width: 16},
		{Title: "Type", Width: 10},
		{Title: "Filter", Width: 20},
		{Title: "File", Width: 28},
		{Title: "Closure", Width: 10},
		{Title: "Satisfaction", Width: 12},
	}
}

func tick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tick(),
		m.op("recover", func(ctx context.Context) error {
			_, err := m.deps.Controller.Recover(ctx)
			return err
		}),
		m.op("history", func(ctx context.Context) error {
			_, err := m.deps.History.List(ctx)
			return err
		}),
	)
}

// op runs fn off the event loop and reports back with opDoneMsg
func (m Model) op(name string, fn func(ctx context.Context) error) tea.Cmd {
	m.running[name] = true
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: name, err: fn(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.bar.Width = clamp(msg.Width-30, 10, 60)
		m.logView.Width = msg.Width - 4
		m.logView.Height = clamp(msg.Height-10, 5, 40)
		m.table.SetHeight(clamp(msg.Height-12, 3, 30))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		m.toasts.Expire(time.Time(msg))
		return m, tick()

	case opDoneMsg:
		delete(m.running, msg.op)
		if errors.Is(msg.err, workflow.ErrBusy) {
			m.toast("A global workflow is already running", "warning")
		}
		return m, nil

	case stateMsg:
		m.snap = msg.snap
		if m.snap.State != workflow.AwaitingValidation {
			m.detour = nil
		}
		return m, nil

	case progressMsg:
		if msg.update.Channel == progress.Individual {
			m.indiv = msg.update
		} else {
			m.global = msg.update
		}
		return m, nil

	case reportMsg:
		m.report = &msg
		m.detour = nil
		return m, nil

	case detourMsg:
		m.detour = &msg
		return m, nil

	case targetsMsg:
		selected := m.targets.Selected()
		m.kind = msg.kind
		m.holder = msg.placeholder
		m.targets = NewChooser(msg.targets)
		m.targets.Keep(selected)
		return m, nil

	case openMsg:
		m.opened = msg.url
		if m.deps.OpenBrowser && m.deps.Opener != nil {
			opener, url := m.deps.Opener, msg.url
			return m, func() tea.Msg {
				if err := opener(url); err != nil {
					return eventMsg{n: notify.Notification{Level: notify.LevelWarning, Message: "Could not open browser: " + err.Error(), Timestamp: time.Now()}}
				}
				return nil
			}
		}
		return m, nil

	case historyMsg:
		m.rows = msg.rows
		m.table.SetRows(historyRows(msg.rows))
		return m, nil

	case eventMsg:
		m.entries = append(m.entries, msg.n)
		if len(m.entries) > logLimit {
			m.entries = m.entries[len(m.entries)-logLimit:]
		}
		m.logView.SetContent(renderEntries(m.entries))
		m.logView.GotoBottom()
		if msg.n.Level == notify.LevelError || msg.n.Level == notify.LevelWarning {
			m.toast(msg.n.Message, string(msg.n.Level))
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) toast(message, level string) {
	m.toasts.Push(Toast{Message: message, Level: level, Expires: time.Now().Add(toastTTL)})
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.editing {
		switch key {
		case "enter", "esc":
			m.editing = false
			m.inputs[m.focus].Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}

	if m.palette {
		return m.handlePaletteKey(msg)
	}

	if m.deleting != 0 {
		id := m.deleting
		m.deleting = 0
		if key == "y" || key == "Y" {
			return m, m.op("delete", func(ctx context.Context) error {
				_, err := m.deps.History.Delete(ctx, id)
				return err
			})
		}
		return m, nil
	}

	switch key {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "tab":
		m.activeTab = (m.activeTab + 1) % tab(len(tabNames))
		return m, nil
	case "shift+tab":
		m.activeTab = (m.activeTab + tab(len(tabNames)) - 1) % tab(len(tabNames))
		return m, nil
	case ":":
		m.palette = true
		m.paletteInput = ""
		m.paletteIndex = 0
		return m, nil
	case "u", "g", "r", "o":
		return m, m.command(key)
	}

	switch m.activeTab {
	case tabWorkflow:
		return m.handleWorkflowKey(key)
	case tabIndividual:
		return m.handleIndividualKey(key)
	case tabHistory:
		return m.handleHistoryKey(msg)
	case tabLog:
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Update(msg)
		return m, cmd
	}
	return m, nil
}

// command runs a palette command or its shortcut
func (m *Model) command(name string) tea.Cmd {
	ctrl := m.deps.Controller
	switch name {
	case "u", "upload":
		sel := m.selection()
		return m.op("upload", func(ctx context.Context) error {
			_, err := ctrl.Upload(ctx, sel)
			return err
		})
	case "g", "generate":
		return m.op("generate", func(ctx context.Context) error {
			_, err := ctrl.Generate(ctx)
			return err
		})
	case "r", "recover":
		return m.op("recover", func(ctx context.Context) error {
			_, err := ctrl.Recover(ctx)
			return err
		})
	case "o", "open":
		return m.op("open", func(context.Context) error {
			_, err := ctrl.OpenReport()
			return err
		})
	case "h", "history":
		return m.op("history", func(ctx context.Context) error {
			_, err := m.deps.History.List(ctx)
			return err
		})
	case "quit":
		m.quitting = true
		return tea.Quit
	}
	return nil
}

// selection describes the files typed into the slot inputs
func (m *Model) selection() models.Selection {
	sel := models.Selection{}
	for i, slot := range models.Slots {
		path := strings.TrimSpace(m.inputs[i].Value())
		if path == "" {
			continue
		}
		f, err := validator.Describe(path)
		if err != nil {
			if m.deps.Log != nil {
				m.deps.Log.Error("Cannot read %s: %v", slot.FieldName(), err)
			}
			continue
		}
		sel[slot] = f
	}
	return sel
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	matches := FilterCommands(paletteCommands, m.paletteInput)
	switch msg.String() {
	case "esc":
		m.palette = false
		return m, nil
	case "up":
		m.paletteIndex = NextIndex(m.paletteIndex, len(matches), -1)
		return m, nil
	case "down":
		m.paletteIndex = NextIndex(m.paletteIndex, len(matches), 1)
		return m, nil
	case "enter":
		m.palette = false
		if len(matches) == 0 {
			return m, nil
		}
		return m, m.command(matches[clamp(m.paletteIndex, 0, len(matches)-1)].Name)
	case "backspace":
		if m.paletteInput != "" {
			m.paletteInput = m.paletteInput[:len(m.paletteInput)-1]
		}
		m.paletteIndex = 0
		return m, nil
	}
	if msg.Type == tea.KeyRunes {
		m.paletteInput += string(msg.Runes)
		m.paletteIndex = 0
	}
	return m, nil
}

func (m Model) handleWorkflowKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		m.focus = NextIndex(m.focus, len(m.inputs), -1)
	case "down", "j":
		m.focus = NextIndex(m.focus, len(m.inputs), 1)
	case "enter", "e":
		m.editing = true
		return m, m.inputs[m.focus].Focus()
	}
	return m, nil
}

func (m Model) handleIndividualKey(key string) (tea.Model, tea.Cmd) {
	ctrl := m.deps.Controller
	switch key {
	case "t":
		next := models.TargetSite
		if m.kind == models.TargetSite {
			next = models.TargetCollaborator
		}
		ctrl.SelectType(next)
	case "left", "h":
		m.targets.Prev()
	case "right", "l":
		m.targets.Next()
	case "enter":
		kind, target := m.kind, m.targets.Selected()
		return m, m.op("individual", func(ctx context.Context) error {
			_, err := ctrl.GenerateIndividual(ctx, kind, target)
			return err
		})
	}
	return m, nil
}

func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	row, ok := m.selectedRow()
	switch msg.String() {
	case "h":
		return m, m.command("history")
	case "d":
		if ok {
			m.deleting = row.Record.ID
		}
		return m, nil
	case "s":
		if ok {
			path, dir := row.Record.FilePath, m.deps.DownloadDir
			return m, m.op("download", func(ctx context.Context) error {
				_, err := m.deps.History.Save(ctx, path, dir)
				return err
			})
		}
		return m, nil
	case "enter":
		if ok {
			url := m.deps.History.URL(row.Record)
			return m.Update(openMsg{url: url})
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) selectedRow() (history.Row, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return history.Row{}, false
	}
	return m.rows[i], true
}

func historyRows(rows []history.Row) []table.Row {
	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		rec := r.Record
		date := rec.Timestamp
		if t := rec.Time(); !t.IsZero() {
			date = t.Format("2006-01-02 15:04")
		}
		kind := "Individual"
		if rec.Kind == models.ReportKindGlobal {
			kind = "Global"
		}
		out = append(out, table.Row{
			strconv.FormatInt(rec.ID, 10),
			date,
			kind,
			rec.Filter(),
			rec.Filename,
			mark(rec.ClosureRate, r.ClosureOK),
			mark(rec.SatisfactionRate, r.SatisfactionOK),
		})
	}
	return out
}

// mark prefixes a rate with a plain-text badge, table cells are width-measured
func mark(rate *float64, ok bool) string {
	v := 0.0
	if rate != nil {
		v = *rate
	}
	prefix := "!"
	if ok {
		prefix = "✓"
	}
	return fmt.Sprintf("%s %s%%", prefix, strconv.FormatFloat(v, 'f', -1, 64))
}

func renderEntries(entries []notify.Notification) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(mutedStyle.Render("[" + e.Timestamp.Format("15:04:05") + "]"))
		sb.WriteString(" ")
		sb.WriteString(levelStyle(string(e.Level)).Render(e.Level.Icon() + " " + e.Message))
		sb.WriteString("\n")
	}
	return sb.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
