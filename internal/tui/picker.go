// SPDX-License-Identifier: MIT
// Package tui provides an interactive picker for the capture device and
// visualization preset, used when aura is started without a device flag
// on an interactive terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"aura/internal/audio"
	"aura/internal/blob"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#5A56E0")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5A56E0")).
			Bold(true)
)

// screen identifies which picker step is active.
type screen int

const (
	deviceScreen screen = iota
	presetScreen
)

// Selection is what the picker returns: a capture device and a preset
// name. A DeviceID of -1 means the system default input.
type Selection struct {
	DeviceID   int
	SampleRate float64
	Preset     string
	Confirmed  bool
}

type pickerModel struct {
	devices       []audio.Device
	deviceIndex   int
	presetNames   []string
	presetIndex   int
	activeScreen  screen
	viewport      viewport.Model
	ready         bool
	err           error
	selection     Selection
}

type devicesMsg struct {
	devices []audio.Device
}

type errMsg struct {
	err error
}

func fetchDevices() tea.Msg {
	devices, err := audio.GetDevices()
	if err != nil {
		return errMsg{err}
	}
	// Only input-capable devices are pickable.
	inputs := devices[:0]
	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			inputs = append(inputs, d)
		}
	}
	return devicesMsg{inputs}
}

func newPickerModel() pickerModel {
	return pickerModel{
		presetNames:  blob.PresetNames(),
		activeScreen: deviceScreen,
	}
}

func (m pickerModel) Init() tea.Cmd {
	return fetchDevices
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			m.viewport.SetContent(m.renderScreen())
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}

	case devicesMsg:
		m.devices = msg.devices
		if m.ready {
			m.viewport.SetContent(m.renderScreen())
		}

	case errMsg:
		m.err = msg.err

	case tea.KeyMsg:
		if key.Matches(msg, key.NewBinding(key.WithKeys("q", "ctrl+c"))) {
			return m, tea.Quit
		}

		switch m.activeScreen {
		case deviceScreen:
			switch {
			case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
				if m.deviceIndex > 0 {
					m.deviceIndex--
				}
			case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
				if m.deviceIndex < len(m.devices)-1 {
					m.deviceIndex++
				}
			case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
				if len(m.devices) > 0 {
					m.activeScreen = presetScreen
				}
			}

		case presetScreen:
			switch {
			case key.Matches(msg, key.NewBinding(key.WithKeys("esc"))):
				m.activeScreen = deviceScreen
			case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
				if m.presetIndex > 0 {
					m.presetIndex--
				}
			case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
				if m.presetIndex < len(m.presetNames)-1 {
					m.presetIndex++
				}
			case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
				device := m.devices[m.deviceIndex]
				m.selection = Selection{
					DeviceID:   device.ID,
					SampleRate: device.DefaultSampleRate,
					Preset:     m.presetNames[m.presetIndex],
					Confirmed:  true,
				}
				return m, tea.Quit
			}
		}

		if m.ready {
			m.viewport.SetContent(m.renderScreen())
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m pickerModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to exit.", m.err)
	}

	var title, help string
	if m.activeScreen == deviceScreen {
		title = titleStyle.Render("Capture Device")
		help = infoStyle.Render("↑/↓: Navigate • Enter: Select • q: Quit")
	} else {
		title = titleStyle.Render("Visualization Preset")
		help = infoStyle.Render("↑/↓: Navigate • Enter: Start • Esc: Back • q: Quit")
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

func (m pickerModel) renderScreen() string {
	if m.activeScreen == presetScreen {
		return m.renderPresets()
	}
	return m.renderDeviceList()
}

func (m pickerModel) renderDeviceList() string {
	if len(m.devices) == 0 {
		return "No input devices found."
	}

	var sb strings.Builder
	for i, device := range m.devices {
		line := fmt.Sprintf("[%d] %s\n", device.ID, device.Name)
		line += fmt.Sprintf("    Input channels: %d, default rate: %.0f Hz\n",
			device.MaxInputChannels, device.DefaultSampleRate)

		if i == m.deviceIndex {
			line = highlightStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m pickerModel) renderPresets() string {
	device := m.devices[m.deviceIndex]

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Device: %s\n\nPreset:\n", device.Name))

	for i, name := range m.presetNames {
		marker := " "
		if i == m.presetIndex {
			marker = "▶"
		}
		line := fmt.Sprintf("  %s %s\n", marker, name)
		if i == m.presetIndex {
			line = highlightStyle.Render(line)
		}
		sb.WriteString(line)
	}
	return sb.String()
}

// Pick runs the interactive picker and returns the selection.
// Selection.Confirmed is false when the user quit without choosing.
func Pick() (Selection, error) {
	p := tea.NewProgram(newPickerModel(), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return Selection{}, err
	}
	model, ok := final.(pickerModel)
	if !ok {
		return Selection{}, nil
	}
	return model.selection, nil
}
