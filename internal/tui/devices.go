package tui

import (
	"fmt"
	"strings"

	"nativeaudio/internal/audio"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)
)

// ScreenType defines which screen is currently active
type ScreenType int

const (
	ListScreen ScreenType = iota
	DetailScreen
)

// Source is the part of the engine the browser reads from.
type Source interface {
	ActiveBackend() audio.Backend
	CaptureDevices(backend audio.Backend) []audio.Device
	PlaybackDevices(backend audio.Backend) []audio.Device
}

var keys = struct {
	Quit, Up, Down, Toggle, Enter, Back, Select key.Binding
}{
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c")),
	Up:     key.NewBinding(key.WithKeys("up", "k")),
	Down:   key.NewBinding(key.WithKeys("down", "j")),
	Toggle: key.NewBinding(key.WithKeys("tab")),
	Enter:  key.NewBinding(key.WithKeys("enter")),
	Back:   key.NewBinding(key.WithKeys("esc")),
	Select: key.NewBinding(key.WithKeys("s")),
}

// DeviceListModel is a Bubble Tea model for browsing the capture and
// playback devices of the active backend.
type DeviceListModel struct {
	source        Source
	backend       audio.Backend
	kind          audio.DeviceType
	devices       []audio.Device
	selectedIndex int
	viewport      viewport.Model
	ready         bool
	activeScreen  ScreenType

	chosen *audio.Device
}

// NewDeviceListModel creates a browser starting on the given device kind.
func NewDeviceListModel(source Source, kind audio.DeviceType) DeviceListModel {
	return DeviceListModel{
		source:       source,
		backend:      source.ActiveBackend(),
		kind:         kind,
		activeScreen: ListScreen,
	}
}

type devicesMsg struct {
	kind    audio.DeviceType
	devices []audio.Device
}

func (m DeviceListModel) Init() tea.Cmd {
	return m.fetchDevices(m.kind)
}

func (m DeviceListModel) fetchDevices(kind audio.DeviceType) tea.Cmd {
	source, backend := m.source, m.backend
	return func() tea.Msg {
		if kind == audio.Capture {
			return devicesMsg{kind, source.CaptureDevices(backend)}
		}
		return devicesMsg{kind, source.PlaybackDevices(backend)}
	}
}

func (m DeviceListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.viewport.Style = lipgloss.NewStyle()
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
		m.refresh()

	case devicesMsg:
		if msg.kind != m.kind {
			break // stale
		}
		m.devices = msg.devices
		m.selectedIndex = 0
		m.refresh()

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}

		switch m.activeScreen {
		case ListScreen:
			switch {
			case key.Matches(msg, keys.Up):
				if m.selectedIndex > 0 {
					m.selectedIndex--
					m.refresh()
				}
			case key.Matches(msg, keys.Down):
				if m.selectedIndex < len(m.devices)-1 {
					m.selectedIndex++
					m.refresh()
				}
			case key.Matches(msg, keys.Toggle):
				if m.kind == audio.Capture {
					m.kind = audio.Playback
				} else {
					m.kind = audio.Capture
				}
				m.devices = nil
				m.refresh()
				cmds = append(cmds, m.fetchDevices(m.kind))
			case key.Matches(msg, keys.Enter):
				if len(m.devices) > 0 {
					m.activeScreen = DetailScreen
					m.refresh()
				}
			}

		case DetailScreen:
			switch {
			case key.Matches(msg, keys.Back):
				m.activeScreen = ListScreen
				m.refresh()
			case key.Matches(msg, keys.Select):
				d := m.devices[m.selectedIndex]
				m.chosen = &d
				return m, tea.Quit
			}
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// Chosen returns the device picked with "s" on the detail screen.
func (m DeviceListModel) Chosen() (audio.Device, audio.DeviceType, bool) {
	if m.chosen == nil {
		return audio.Device{}, m.kind, false
	}
	return *m.chosen, m.kind, true
}

func (m *DeviceListModel) refresh() {
	if !m.ready {
		return
	}
	if m.activeScreen == DetailScreen {
		m.viewport.SetContent(m.renderDetail())
		return
	}
	m.viewport.SetContent(m.renderDevices())
}

func (m DeviceListModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var title, help string
	if m.activeScreen == ListScreen {
		title = titleStyle.Render(fmt.Sprintf("%s %s devices", m.backend, m.kind))
		help = infoStyle.Render("↑/↓: Navigate • Tab: Capture/Playback • Enter: Details • q: Quit")
	} else {
		title = titleStyle.Render("Device Details")
		help = infoStyle.Render("s: Select • Esc: Back • q: Quit")
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

func (m DeviceListModel) renderDevices() string {
	if len(m.devices) == 0 {
		return fmt.Sprintf("No %s devices found.", m.kind)
	}

	var sb strings.Builder
	for i, device := range m.devices {
		marker := " "
		if device.IsDefault {
			marker = "*"
		}
		line := fmt.Sprintf("%s [%d] %s\n", marker, device.Index, device.Name)
		if i == m.selectedIndex {
			line = highlightStyle.Render(line)
		}
		sb.WriteString(line)
	}
	return sb.String()
}

func (m DeviceListModel) renderDetail() string {
	device := m.devices[m.selectedIndex]

	var sb strings.Builder
	fmt.Fprintf(&sb, "Name:    %s\n", device.Name)
	fmt.Fprintf(&sb, "Kind:    %s\n", m.kind)
	fmt.Fprintf(&sb, "Backend: %s\n", m.backend)
	fmt.Fprintf(&sb, "ID:      %s\n", device.DisplayID(m.backend))
	fmt.Fprintf(&sb, "Default: %t\n", device.IsDefault)
	return sb.String()
}

// StartDeviceListUI runs the browser and returns the device the user
// selected, if any.
func StartDeviceListUI(source Source, kind audio.DeviceType) (audio.Device, audio.DeviceType, bool, error) {
	p := tea.NewProgram(
		NewDeviceListModel(source, kind),
		tea.WithAltScreen(),
	)
	final, err := p.Run()
	if err != nil {
		return audio.Device{}, kind, false, err
	}
	d, k, ok := final.(DeviceListModel).Chosen()
	return d, k, ok, nil
}
