// Package tui renders a live terminal dashboard of a running monitor.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/GriffinCanCode/screenwatch/internal/monitor"
	"github.com/GriffinCanCode/screenwatch/internal/orchestrator"
	"github.com/GriffinCanCode/screenwatch/internal/orchestrator/history"
	"github.com/GriffinCanCode/screenwatch/internal/reading"
)

const (
	refreshInterval = time.Second
	eventBuffer     = 32
	maxEvents       = 100
)

// Source is what the dashboard observes.
type Source interface {
	Status() orchestrator.Status
	History() *history.Store
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	alertStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	waitStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

type tickMsg time.Time

type statusMsg orchestrator.Status

type eventMsg history.Event

// eventsClosedMsg reports that the history subscription ended.
type eventsClosedMsg struct{}

// Model is the bubbletea model of the dashboard.
type Model struct {
	src    Source
	events <-chan history.Event

	status   orchestrator.Status
	log      []history.Event
	width    int
	height   int
	quitting bool
}

// NewModel seeds the dashboard with src's current status and recent events.
// events may be nil, in which case only periodic status refreshes apply.
func NewModel(src Source, events <-chan history.Event) Model {
	m := Model{src: src, events: events, status: src.Status()}
	if h := src.History(); h != nil {
		m.log = h.Recent(maxEvents)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), waitForEvent(m.events))
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitForEvent(ch <-chan history.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "c":
			m.log = nil
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tickMsg:
		m.status = m.src.Status()
		return m, tick()
	case statusMsg:
		m.status = orchestrator.Status(msg)
	case eventMsg:
		m.log = append(m.log, history.Event(msg))
		if len(m.log) > maxEvents {
			m.log = m.log[len(m.log)-maxEvents:]
		}
		m.status = m.src.Status()
		return m, waitForEvent(m.events)
	case eventsClosedMsg:
		m.events = nil
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	b.WriteString(titleStyle.Render("screenwatch"))
	b.WriteString("  ")
	b.WriteString(phaseText(m.status.Phase))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %q  %s %s\n",
		labelStyle.Render("window"), m.status.Window,
		labelStyle.Render("run"), m.status.RunID)
	fmt.Fprintf(&b, "%s %d  %s %d  %s %d  %s %d\n",
		labelStyle.Render("cycles"), m.status.Cycles,
		labelStyle.Render("samples"), m.status.Samples,
		labelStyle.Render("failures"), m.status.Failures,
		labelStyle.Render("cached"), m.status.CacheHits)

	b.WriteString(boxStyle.Render(m.metricsView()))
	b.WriteString("\n")
	b.WriteString(m.eventsView())
	b.WriteString(labelStyle.Render("q quit • c clear events"))
	return b.String()
}

func phaseText(p orchestrator.Phase) string {
	switch p {
	case orchestrator.PhaseSampling:
		return okStyle.Render(string(p))
	case orchestrator.PhaseWaiting:
		return waitStyle.Render(string(p))
	default:
		return labelStyle.Render("STARTING")
	}
}

func (m Model) metricsView() string {
	names := make([]string, 0, len(m.status.Metrics))
	for name := range m.status.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return labelStyle.Render("no readings yet")
	}

	lines := make([]string, 0, len(names))
	for _, name := range names {
		ms := m.status.Metrics[name]
		value := labelStyle.Render("  -")
		if ms.Present {
			value = fmt.Sprintf("%3d", ms.Value)
		}
		state := okStyle.Render("ok")
		if ms.Alerted {
			state = alertStyle.Render("ALERT")
		}
		lines = append(lines, fmt.Sprintf("%-12s %s  %s %d  %s",
			metricLabel(name), value, labelStyle.Render("limit"), ms.Limit, state))
	}
	return strings.Join(lines, "\n")
}

func metricLabel(name string) string {
	for _, metric := range []reading.Metric{reading.StrikeRate, reading.CPUUsage} {
		if metric.Name == name {
			return metric.Label
		}
	}
	return name
}

// eventsView shows the newest events that fit the window.
func (m Model) eventsView() string {
	rows := 10
	if m.height > 0 {
		rows = max(m.height-12, 3)
	}
	start := max(len(m.log)-rows, 0)

	var b strings.Builder
	for _, ev := range m.log[start:] {
		style := lipgloss.NewStyle()
		if ev.Kind == monitor.ThresholdWarning.String() || ev.Kind == history.KindOCRError {
			style = alertStyle
		}
		line := fmt.Sprintf("%s %s", labelStyle.Render(ev.Time.Format("15:04:05")), style.Render(ev.Message))
		if m.width > 0 {
			line = lipgloss.NewStyle().MaxWidth(m.width).Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// Run shows the dashboard until the user quits or ctx is cancelled.
func Run(ctx context.Context, src Source) error {
	var events <-chan history.Event
	if h := src.History(); h != nil {
		ch, cancel := h.Subscribe(eventBuffer)
		defer cancel()
		events = ch
	}

	p := tea.NewProgram(NewModel(src, events), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
