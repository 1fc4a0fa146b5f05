package viz

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/chargesim/internal/config"
	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/sim"
	"go.uber.org/zap"
)

var presetInfo = map[string]string{
	"dipole":     "opposite pair, free",
	"like":       "two like charges",
	"quadrupole": "fixed alternating square",
	"triangle":   "one against two",
	"orbit":      "circular coulomb orbit",
	"hydrogen":   "bohr-radius electron",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// menu param keys
const (
	paramDt           = "dt"
	paramSteps        = "steps/tick"
	paramRegenRate    = "lines hz"
	paramReleaseSpeed = "max throw"
	paramSeeds        = "seeds"
)

var paramNames = []string{paramDt, paramSteps, paramRegenRate, paramReleaseSpeed, paramSeeds}

type menu struct {
	state, cursor int
	presets       []string
	selected      string
	params        map[string]float64
	paramCursor   int
	editing       bool
	editBuf       string
	message       string
	log           *zap.Logger
	liveModel     Model
}

func NewMenu(logger *zap.Logger) *menu {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &menu{
		state:   stateMenu,
		presets: config.ListPresets(),
		params:  make(map[string]float64),
		log:     logger,
	}
}

func (m menu) Init() tea.Cmd { return nil }

func (m menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		if m.state == stateSim {
			newLive, cmd := m.liveModel.Update(msg)
			m.liveModel = newLive.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m menu) handleKey(msg tea.KeyMsg) (menu, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m menu) menuKey(msg tea.KeyMsg) (menu, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.presets[m.cursor]
		m.state, m.paramCursor, m.message = stateConfig, 0, ""
		m.loadParams()
	}
	return m, nil
}

func (m menu) configKey(msg tea.KeyMsg) (menu, tea.Cmd) {
	name := paramNames[m.paramCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			if val, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				m.params[name] = val
			} else {
				m.message = "not a number: " + m.editBuf
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == 'e' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(paramNames)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, strconv.FormatFloat(m.params[name], 'g', -1, 64)
	case "s":
		cmd := m.start()
		return m, cmd
	case "left", "h":
		m.params[name] = m.nudge(name, 1/1.25)
	case "right", "l":
		m.params[name] = m.nudge(name, 1.25)
	}
	return m, nil
}

// nudge scales a parameter, keeping counts whole and at least one.
func (m menu) nudge(name string, factor float64) float64 {
	v := m.params[name] * factor
	if name == paramSteps || name == paramSeeds {
		if factor > 1 {
			v = math.Ceil(v)
		} else {
			v = math.Floor(v)
		}
		v = math.Max(v, 1)
	}
	return v
}

func (m *menu) loadParams() {
	cfg := config.GetPreset(m.selected)
	m.params[paramDt] = cfg.Dt
	m.params[paramSteps] = 1
	m.params[paramRegenRate] = cfg.FieldLines.MaxRegenerationRate
	m.params[paramReleaseSpeed] = cfg.Drag.MaxReleaseSpeed
	m.params[paramSeeds] = float64(cfg.FieldLines.SeedsPerParticle)
}

// buildConfig applies the edited parameters to the selected preset.
func (m menu) buildConfig() *config.Config {
	cfg := config.GetPreset(m.selected)
	cfg.Dt = m.params[paramDt]
	cfg.FieldLines.MaxRegenerationRate = m.params[paramRegenRate]
	cfg.Drag.MaxReleaseSpeed = m.params[paramReleaseSpeed]
	cfg.FieldLines.SeedsPerParticle = int(m.params[paramSeeds])
	return cfg
}

func (m *menu) start() tea.Cmd {
	cfg := m.buildConfig()
	engine, err := sim.FromConfig(cfg, dynamo.NewWallClock(), m.log)
	if err != nil {
		m.message = err.Error()
		return nil
	}
	m.liveModel = NewModel(engine, Options{
		Dt:           cfg.Dt,
		StepsPerTick: int(m.params[paramSteps]),
		FrameRate:    cfg.FrameRate,
		Logger:       m.log,
	})
	m.state = stateSim
	return m.liveModel.Init()
}

func (m menu) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuActive   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuAccent   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuInactive = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuFaint    = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	menuKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

func keyHints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(menuKeyStyle.Render(pairs[i]) + menuInactive.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m menu) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("CHARGESIM") + "\n    " + menuSub.Render("interactive electrostatics") + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-12s", name)), menuAccent.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", menuInactive.Render(fmt.Sprintf("  %-12s", name)), menuFaint.Render(desc)))
		}
	}
	b.WriteString("\n    " + keyHints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m menu) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render(strings.ToUpper(m.selected)) + "\n    " + menuSub.Render(presetInfo[m.selected]) + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range paramNames {
		valStr := fmt.Sprintf("%10.4g", m.params[name])
		if m.editing && i == m.paramCursor {
			valStr = fmt.Sprintf("%10s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-12s", name)), menuAccent.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", menuInactive.Render(fmt.Sprintf("  %-12s", name)), menuFaint.Render(valStr)))
		}
	}
	if m.message != "" {
		b.WriteString("\n    " + StatusRecording.UnsetBlink().Render(m.message) + "\n")
	}
	b.WriteString("\n    " + keyHints("j/k", "select", "h/l", "adjust", "enter", "edit", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunMenu shows the preset picker and then the live viewer for the chosen
// scene.
func RunMenu(logger *zap.Logger) error {
	_, err := tea.NewProgram(NewMenu(logger), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
