// Package tui provides the interactive Bubble Tea dashboard for nakop.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/theirongolddev/nakop/internal/cli"
	"github.com/theirongolddev/nakop/internal/config"
	"github.com/theirongolddev/nakop/internal/ledger"
	"github.com/theirongolddev/nakop/internal/model"
	"github.com/theirongolddev/nakop/internal/pipeline"
	"github.com/theirongolddev/nakop/internal/session"
	"github.com/theirongolddev/nakop/internal/tui/components"
	"github.com/theirongolddev/nakop/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Opener builds a session from a config. The TUI calls it at start-up and
// again whenever settings that shape the session change.
type Opener func(ctx context.Context, cfg config.Config) (*session.Session, error)

// Options configures NewApp.
type Options struct {
	Config    config.Config
	Open      Opener
	NeedSetup bool
	Logger    *log.Logger
}

type sessionOpenedMsg struct {
	sess *session.Session
	err  error
}

type dashboardMsg struct {
	dash pipeline.Dashboard
	err  error
}

type addedMsg struct {
	added session.Added
	err   error
}

type resetMsg struct {
	err error
}

// App is the Bubble Tea model of the dashboard.
type App struct {
	cfg    config.Config
	open   Opener
	logger *log.Logger

	// Data
	sess      *session.Session
	dash      pipeline.Dashboard
	loaded    bool  // a render pass has finished at least once
	passErr   error // last pass failed, figures are withheld
	fetchedAt time.Time
	busy      bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	status    string
	statusErr bool

	// huh forms: setup, add and reset. The values are pointers because the
	// form keeps writing into them while App is copied by value.
	form      *huh.Form
	formKind  formKind
	setupVals *setupValues
	addVals   *addValues
	resetVals *resetValues

	settings settingsState
	spinner  spinner.Model
}

const (
	tabDashboard = iota
	tabPeriods
	tabSettings
)

const (
	minTerminalWidth = 80
	compactWidth     = 110
	maxContentWidth  = 160
	minContentHeight = 5
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	a := App{
		cfg:     opts.Config,
		open:    opts.Open,
		logger:  logger,
		spinner: sp,
	}
	if opts.NeedSetup {
		a.setupVals = setupValuesFrom(opts.Config)
		a.form = newSetupForm(a.setupVals)
		a.formKind = formSetup
	}
	return a
}

// Close releases the open session, if any.
func (a App) Close() error {
	if a.sess == nil {
		return nil
	}
	return a.sess.Close()
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnableMouseCellMotion, a.spinner.Tick}
	if a.formKind == formSetup {
		cmds = append(cmds, a.form.Init())
	} else {
		cmds = append(cmds, openSessionCmd(a.open, a.cfg))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(formWidth(msg.Width)).WithHeight(msg.Height)
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case sessionOpenedMsg:
		if msg.err != nil {
			a.logger.Error("open session", "err", msg.err)
			a.loaded = true
			a.busy = false
			a.passErr = msg.err
			return a, nil
		}
		if a.sess != nil {
			_ = a.sess.Close()
		}
		a.sess = msg.sess
		a.busy = true
		return a, dashboardCmd(a.sess)

	case dashboardMsg:
		a.loaded = true
		a.busy = false
		if msg.err != nil {
			a.logger.Warn("render pass failed", "err", msg.err)
			a.passErr = msg.err
			a.dash = pipeline.Dashboard{}
			return a, nil
		}
		a.passErr = nil
		a.dash = msg.dash
		a.fetchedAt = time.Now()
		return a, nil

	case addedMsg:
		switch {
		case errors.Is(msg.err, ledger.ErrPersistenceWrite):
			// The change is kept in memory, so the dashboard still moves.
			a.setStatus(cli.UserMessage(msg.err), true)
		case msg.err != nil:
			a.busy = false
			a.setStatus(cli.UserMessage(msg.err), true)
			return a, nil
		default:
			a.setStatus(fmt.Sprintf("Added %s to %s", cli.FormatRUB(msg.added.Amount), msg.added.Period), false)
		}
		return a, dashboardCmd(a.sess)

	case resetMsg:
		if msg.err != nil {
			a.setStatus(cli.UserMessage(msg.err), true)
		} else {
			a.setStatus("All periods reset to zero", false)
		}
		return a, dashboardCmd(a.sess)

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.form != nil {
			return a, nil
		}
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	}

	// Forms take every remaining message while open.
	if a.form != nil {
		return a.updateForm(msg)
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		return a.updateKey(key)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if !a.loaded {
		if key == "q" {
			return a, tea.Quit
		}
		return a, nil
	}

	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "a":
		return a.openAddForm()
	case "R":
		return a.openResetForm()
	case "r":
		return a.refresh()
	case "left", "h":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "l", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if a.activeTab == tabSettings {
		switch key {
		case "j", "down":
			if a.settings.cursor < settingsFieldCount-1 {
				a.settings.cursor++
			}
			return a, nil
		case "k", "up":
			if a.settings.cursor > 0 {
				a.settings.cursor--
			}
			return a, nil
		case "enter":
			return a.settingsStartEdit()
		}
	}

	if len(key) == 1 {
		if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a *App) setStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
}

func (a App) refresh() (tea.Model, tea.Cmd) {
	if a.sess == nil {
		a.busy = true
		return a, openSessionCmd(a.open, a.cfg)
	}
	if a.busy {
		return a, nil
	}
	a.sess.RefreshRates()
	a.busy = true
	a.status = ""
	return a, dashboardCmd(a.sess)
}

func (a App) openAddForm() (tea.Model, tea.Cmd) {
	if a.sess == nil || a.busy {
		return a, nil
	}
	periods := a.sess.Ledger().Periods()
	a.addVals = &addValues{Period: periods[model.PeriodIndex(a.sess.Goal().Start, time.Now())]}
	a.form = newAddForm(periods, a.addVals)
	a.formKind = formAdd
	if a.width > 0 {
		a.form = a.form.WithWidth(formWidth(a.width)).WithHeight(a.height)
	}
	return a, a.form.Init()
}

func (a App) openResetForm() (tea.Model, tea.Cmd) {
	if a.sess == nil || a.busy {
		return a, nil
	}
	a.resetVals = &resetValues{}
	a.form = newResetForm(a.resetVals)
	a.formKind = formReset
	if a.width > 0 {
		a.form = a.form.WithWidth(formWidth(a.width)).WithHeight(a.height)
	}
	return a, a.form.Init()
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		return a.completeForm()
	case huh.StateAborted:
		kind := a.formKind
		a.form = nil
		a.formKind = formNone
		if kind == formSetup {
			// Skipping setup runs with the defaults for this launch only.
			a.busy = true
			return a, openSessionCmd(a.open, a.cfg)
		}
		return a, nil
	}
	return a, cmd
}

func (a App) completeForm() (tea.Model, tea.Cmd) {
	kind := a.formKind
	a.form = nil
	a.formKind = formNone

	switch kind {
	case formSetup:
		if err := a.saveSetupConfig(); err != nil {
			a.logger.Warn("save config", "err", err)
			a.setStatus("Settings apply to this run only: "+err.Error(), true)
		}
		a.busy = true
		return a, openSessionCmd(a.open, a.cfg)

	case formAdd:
		amounts, err := a.addVals.amounts()
		if err != nil {
			a.setStatus(cli.UserMessage(err), true)
			return a, nil
		}
		if amounts.IsZero() {
			a.setStatus("Nothing to add", false)
			return a, nil
		}
		a.busy = true
		return a, addCmd(a.sess, a.addVals.Period, amounts)

	case formReset:
		if !a.resetVals.Confirm {
			return a, nil
		}
		a.busy = true
		return a, resetCmd(a.sess)
	}
	return a, nil
}

func formWidth(w int) int {
	if w > 70 {
		return 70
	}
	return w
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if a.form != nil {
		return a.viewForm()
	}

	if !a.loaded {
		return a.viewLoading()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	t := theme.Active
	msg := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Background).
		Render(fmt.Sprintf("Terminal too narrow (%d cols). Need at least %d.", a.width, minTerminalWidth))
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, msg,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewForm() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2).
		Render(a.form.View())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ nakop"))
	b.WriteString(subtitleStyle.Render(" · Savings Goal Tracker"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Loading contributions and today's rates..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"d p x", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move in settings"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"a", "Add contribution"},
			{"r", "Refresh exchange rates"},
			{"R", "Reset all periods"},
			{"Enter", "Edit setting"},
			{"Esc", "Cancel"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-8s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, "◈ nakop", w)

	status := components.Status{
		Busy:    a.busy,
		Message: a.status,
		IsError: a.statusErr,
	}
	if a.sess != nil {
		status.Backend = a.sess.Ledger().Backend().Name()
	}
	if !a.fetchedAt.IsZero() {
		status.RatesAge = components.FormatAge(int64(time.Since(a.fetchedAt).Seconds()))
	}
	statusBar := components.RenderStatusBar(w, status)

	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch {
	case a.activeTab == tabSettings:
		content = a.renderSettingsTab(cw)
	case a.passErr != nil:
		content = a.renderPassError(cw)
	case a.activeTab == tabPeriods:
		content = a.renderPeriodsTab(cw)
	default:
		content = a.renderDashboardTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// renderPassError replaces every figure when the last pass failed.
func (a App) renderPassError(cw int) string {
	t := theme.Active
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	body := errStyle.Render(cli.UserMessage(a.passErr)) + "\n\n" +
		hintStyle.Render("No figures are shown until the rates load. Press r to retry.")
	return components.ContentCard("Unavailable", body, cw)
}

func openSessionCmd(open Opener, cfg config.Config) tea.Cmd {
	return func() tea.Msg {
		sess, err := open(context.Background(), cfg)
		return sessionOpenedMsg{sess: sess, err: err}
	}
}

func dashboardCmd(sess *session.Session) tea.Cmd {
	return func() tea.Msg {
		d, err := sess.Dashboard(context.Background())
		return dashboardMsg{dash: d, err: err}
	}
}

func addCmd(sess *session.Session, period string, amounts model.Amounts) tea.Cmd {
	return func() tea.Msg {
		added, err := sess.Add(context.Background(), period, amounts)
		return addedMsg{added: added, err: err}
	}
}

func resetCmd(sess *session.Session) tea.Cmd {
	return func() tea.Msg {
		return resetMsg{err: sess.Reset(context.Background())}
	}
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads every line to w columns with bg so gaps
// between cards are not left in the terminal's default color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
