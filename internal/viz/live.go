package viz

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/integrators"
	"github.com/san-kum/chargesim/internal/interaction"
	"github.com/san-kum/chargesim/internal/physics"
	"github.com/san-kum/chargesim/internal/sim"
	"go.uber.org/zap"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	pointerStep     = 2
	maxStepsPerTick = 4096
	// canvasStyle padding, used to map mouse cells onto the canvas.
	padTop, padLeft = 1, 2
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(padTop, padLeft)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(46)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Options tunes the live viewer.
type Options struct {
	// Dt is the simulated time per step.
	Dt float64
	// StepsPerTick is how many steps run per rendered frame.
	StepsPerTick int
	FrameRate    float64
	GIFPath      string
	Logger       *zap.Logger
}

func DefaultOptions() Options {
	return Options{Dt: 0.01, StepsPerTick: 1, FrameRate: 60, GIFPath: "chargesim.gif"}
}

// Model is the interactive viewer: it steps an engine on a timer, draws its
// particles and field lines, and lets the user grab and throw charges.
type Model struct {
	engine        *sim.Engine
	opts          Options
	log           *zap.Logger
	width, height int
	canvas        *Canvas
	camera        *Camera
	wire          *Wireframe
	pointerX      int
	pointerY      int
	selected      int
	energy        *dynamo.Ring[float64]
	speed         *dynamo.Ring[float64]
	lastRelease   float64
	message       string
	frame         int
	recorder      *Recorder
	showHelp      bool
}

// NewModel builds a viewer for engine and fits the camera to its particles.
func NewModel(engine *sim.Engine, opts Options) Model {
	def := DefaultOptions()
	if opts.Dt <= 0 {
		opts.Dt = def.Dt
	}
	if opts.StepsPerTick < 1 {
		opts.StepsPerTick = def.StepsPerTick
	}
	if opts.FrameRate <= 0 {
		opts.FrameRate = def.FrameRate
	}
	if opts.GIFPath == "" {
		opts.GIFPath = def.GIFPath
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	m := Model{
		engine:   engine,
		opts:     opts,
		log:      opts.Logger.Named("viz"),
		width:    width,
		height:   height,
		canvas:   NewCanvas(width, height),
		camera:   NewCamera(),
		wire:     NewWireframe(),
		pointerX: width,
		pointerY: height * 2,
		energy:   dynamo.NewRing[float64](historyCapacity),
		speed:    dynamo.NewRing[float64](historyCapacity),
	}
	m.fit()
	return m
}

func (m Model) tick() tea.Cmd {
	interval := time.Duration(float64(time.Second) / m.opts.FrameRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case TickMsg:
		m.advance()
		m.draw()
		if m.recorder != nil {
			m.recorder.Capture(m.canvas)
		}
		m.frame++
		return m, m.tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.stopRecording()
		return m, tea.Quit
	case " ":
		m.engine.Toggle()
	case "r":
		m.engine.Reset()
		m.energy.Clear()
		m.speed.Clear()
		m.lastRelease = 0
		m.message = "reset"
	case "tab":
		if n := len(m.engine.Particles()); n > 0 {
			m.selected = (m.selected + 1) % n
		}
	case "g":
		m.grab()
	case "enter":
		m.release()
	case "esc":
		m.engine.DragController().Cancel()
		m.message = "drag cancelled"
	case "up":
		m.movePointer(0, -pointerStep)
	case "down":
		m.movePointer(0, pointerStep)
	case "left":
		m.movePointer(-pointerStep, 0)
	case "right":
		m.movePointer(pointerStep, 0)
	case "l":
		m.engine.SetLinesEnabled(!m.engine.LinesEnabled())
	case "i":
		sys := m.engine.System()
		if sys.Method() == integrators.Verlet {
			sys.SetMethod(integrators.Euler)
		} else {
			sys.SetMethod(integrators.Verlet)
		}
		m.message = "integrator " + sys.Method().String()
	case ".":
		m.opts.StepsPerTick = min(m.opts.StepsPerTick*2, maxStepsPerTick)
	case ",":
		m.opts.StepsPerTick = max(m.opts.StepsPerTick/2, 1)
	case "f":
		m.fit()
	case "v":
		m.toggleRecording()
	case "?":
		m.showHelp = !m.showHelp
	case "t":
		NextTheme()
	case "x":
		m.camera.RotateX(0.1)
	case "X":
		m.camera.RotateX(-0.1)
	case "y":
		m.camera.RotateY(0.1)
	case "Y":
		m.camera.RotateY(-0.1)
	case "z":
		m.camera.RotateZ(0.1)
	case "Z":
		m.camera.RotateZ(-0.1)
	case "+", "=":
		m.camera.ZoomIn()
	case "-", "_":
		m.camera.ZoomOut()
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	x, y := (msg.X-padLeft)*2+1, (msg.Y-padTop)*4+2
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.pointerX, m.pointerY = x, y
		m.grabAtPointer()
	case msg.Action == tea.MouseActionMotion:
		m.movePointer(x-m.pointerX, y-m.pointerY)
	case msg.Action == tea.MouseActionRelease:
		if m.engine.DragController().IsDragging() {
			m.release()
		}
	}
}

func (m *Model) subSize() (int, int) { return m.width * 2, m.height * 4 }

func (m *Model) pointerRay() dynamo.Ray {
	cw, ch := m.subSize()
	return m.camera.Ray(m.pointerX, m.pointerY, cw, ch)
}

// fit frames every particle and re-centres the pointer.
func (m *Model) fit() {
	particles := m.engine.Particles()
	points := make([]dynamo.Vec3, 0, len(particles))
	for _, p := range particles {
		points = append(points, p.Position)
	}
	m.camera.Fit(points)
	m.camera.Zoom = 1
}

func (m *Model) movePointer(dx, dy int) {
	cw, ch := m.subSize()
	m.pointerX = min(max(m.pointerX+dx, 0), cw-1)
	m.pointerY = min(max(m.pointerY+dy, 0), ch-1)
	if m.engine.DragController().IsDragging() {
		if err := m.engine.Drag(m.pointerRay()); err != nil {
			m.message = err.Error()
		}
	}
}

// grabAtPointer picks whatever is under the pointer. It reports whether a
// particle was grabbed.
func (m *Model) grabAtPointer() bool {
	idx, err := m.engine.Grab(m.pointerRay(), m.camera.Eye())
	if err != nil {
		m.message = err.Error()
		return false
	}
	if idx < 0 {
		return false
	}
	m.selected = idx
	m.message = fmt.Sprintf("grabbed #%d", m.engine.Particles()[idx].ID)
	return true
}

// grab takes the particle under the pointer, falling back to the selected
// one and moving the pointer onto it.
func (m *Model) grab() {
	if m.grabAtPointer() {
		return
	}
	if m.engine.DragController().IsDragging() {
		return
	}
	particles := m.engine.Particles()
	if m.selected >= len(particles) {
		return
	}
	if err := m.engine.GrabIndex(m.selected, m.camera.Eye()); err != nil {
		m.message = err.Error()
		return
	}
	cw, ch := m.subSize()
	if x, y, _, ok := m.camera.Project(particles[m.selected].Position, cw, ch); ok {
		m.pointerX, m.pointerY = x, y
	}
	m.message = fmt.Sprintf("grabbed #%d", particles[m.selected].ID)
}

func (m *Model) release() {
	v, err := m.engine.Release()
	if errors.Is(err, interaction.ErrNotDragging) {
		m.message = "nothing to release"
		return
	}
	if err != nil {
		m.message = err.Error()
		return
	}
	m.lastRelease = v.Length()
	m.message = fmt.Sprintf("released at %.3g m/s", m.lastRelease)
}

// advance runs one tick worth of steps and records the energy trace.
func (m *Model) advance() {
	for i := 0; i < m.opts.StepsPerTick; i++ {
		m.engine.Frame(m.opts.Dt)
	}
	// Holding still while dragging still samples, so releasing a particle
	// that has stopped moving does not throw it.
	if m.engine.DragController().IsDragging() {
		if err := m.engine.Drag(m.pointerRay()); errors.Is(err, interaction.ErrNotDragging) {
			m.message = "dragged particle is gone"
		} else if err != nil {
			m.message = err.Error()
		}
	}
	if m.engine.Paused() {
		return
	}
	m.energy.Push(m.engine.Energy())
	fastest := 0.0
	for _, p := range m.engine.Particles() {
		fastest = math.Max(fastest, p.Velocity.Length())
	}
	m.speed.Push(fastest)
}

func chargeGlyph(sign int) rune {
	switch {
	case sign > 0:
		return '+'
	case sign < 0:
		return '−'
	default:
		return '•'
	}
}

// draw renders field lines, particles and the pointer onto the canvas.
func (m *Model) draw() {
	theme := CurrentTheme
	cw, ch := m.subSize()
	m.canvas.Clear()
	m.wire.Clear()

	axes := Axes(0.5/m.camera.Scale, theme.Muted)
	m.wire.Edges = append(m.wire.Edges, axes.Edges...)
	for _, line := range m.engine.Lines() {
		m.wire.AddPolyline(line.Points, theme.Line)
	}
	Render3D(m.canvas, m.wire, m.camera)

	particles := m.engine.Particles()
	for i := range particles {
		p := &particles[i]
		x, y, _, ok := m.camera.Project(p.Position, cw, ch)
		if !ok {
			continue
		}
		color := theme.ChargeColor(p.ChargeSign())
		r := min(max(m.camera.Radius(p.Position, p.VisualRadius, cw, ch), 1), 6)
		m.canvas.FillCircle(x, y, r, color)
		glyph := chargeGlyph(p.ChargeSign())
		if i == m.selected {
			m.canvas.Label(x, y, glyph, theme.Accent)
		} else {
			m.canvas.Label(x, y, glyph, theme.Text)
		}
	}
	m.canvas.Label(m.pointerX, m.pointerY, '┼', theme.Accent)
}

func (m *Model) toggleRecording() {
	if m.recorder != nil {
		m.stopRecording()
		return
	}
	m.recorder = NewRecorder(historyCapacity)
	m.message = "recording"
}

func (m *Model) stopRecording() {
	if m.recorder == nil {
		return
	}
	frames := m.recorder.Len()
	if err := m.recorder.Save(m.opts.GIFPath); err != nil {
		m.log.Error("failed to save recording", zap.String("path", m.opts.GIFPath), zap.Error(err))
		m.message = err.Error()
	} else {
		m.log.Info("saved recording", zap.String("path", m.opts.GIFPath), zap.Int("frames", frames))
		m.message = "saved " + m.opts.GIFPath
	}
	m.recorder = nil
}

func (m Model) status() string {
	drag := m.engine.DragController()
	var parts []string
	switch {
	case m.engine.Paused():
		parts = append(parts, StatusPaused.Render("PAUSED"))
	default:
		parts = append(parts, StatusRunning.Render(AnimatedSpinner(m.frame)+" RUNNING"))
	}
	if id, ok := drag.Target(); ok {
		parts = append(parts, StatusDragging.Render(fmt.Sprintf("DRAGGING #%d", id)))
	}
	if m.recorder != nil {
		parts = append(parts, StatusRecording.Render("● REC"))
	}
	return strings.Join(parts, "  ")
}

func metricRow(label, value string) string {
	return MetricLabel.Render(label) + MetricValue.Render(value) + "\n"
}

// View renders the TUI interface.
func (m Model) View() string {
	theme := CurrentTheme
	canvasView := canvasStyle.Render(m.canvas.Render())

	var s strings.Builder
	s.WriteString(GradientText(strings.ToUpper(m.engine.Name()), theme.Primary, theme.Secondary) + "\n")
	s.WriteString(m.status() + "\n")

	if energies := m.energy.Slice(); len(energies) > 1 {
		chart := asciigraph.Plot(energies, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy (J)"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	} else {
		s.WriteString("\n")
	}

	particles := m.engine.Particles()
	lines := m.engine.LineManager()
	s.WriteString(metricRow("Time", fmt.Sprintf("%.4gs", m.engine.Time())))
	s.WriteString(metricRow("Energy", fmt.Sprintf("%.4g J", m.engine.Energy())))
	s.WriteString(metricRow("Integrator", m.engine.System().Method().String()))
	s.WriteString(metricRow("Steps/tick", fmt.Sprintf("%d × %.3gs", m.opts.StepsPerTick, m.opts.Dt)))
	s.WriteString(metricRow("Particles", fmt.Sprintf("%d", len(particles))))
	if m.engine.LinesEnabled() {
		s.WriteString(metricRow("Lines", fmt.Sprintf("%d (%d traced)", len(lines.Lines()), lines.Regenerations())))
	} else {
		s.WriteString(metricRow("Lines", "off"))
	}
	s.WriteString(MetricLabel.Render("Speed") + SparklineChart(m.speed.Slice(), 24) + "\n")
	drag := m.engine.DragController()
	s.WriteString(MetricLabel.Render("Release") + ProgressBar(m.lastRelease/drag.MaxReleaseSpeed(), 16) + "\n")
	s.WriteString(Separator(40) + "\n")

	for i, p := range particles {
		if i >= 8 {
			s.WriteString(Subtle.Render(fmt.Sprintf("  … %d more", len(particles)-i)) + "\n")
			break
		}
		s.WriteString(particleRow(p, i == m.selected) + "\n")
	}

	if m.message != "" {
		s.WriteString("\n" + KeyHint.Render(m.message) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit ?:Help\nG:Grab ⏎:Throw Tab:Select ←↑↓→:Move"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

func particleRow(p physics.Particle, selected bool) string {
	dot := lipgloss.NewStyle().Foreground(colorOf(p.Color)).Render("●")
	flags := ""
	if p.Fixed {
		flags += " fixed"
	}
	if p.Dragged {
		flags += " held"
	}
	line := fmt.Sprintf("#%-3d q=%+.2e |v|=%.3g%s", p.ID, p.Charge, p.Velocity.Length(), flags)
	if selected {
		return "> " + dot + " " + MetricValue.Render(line)
	}
	return "  " + dot + " " + Subtle.Render(line)
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset simulation         ║
║  Q        - Quit                     ║
║  Tab      - Select next particle     ║
║  G        - Grab at pointer/selected ║
║  Arrows   - Move pointer / drag      ║
║  Enter    - Release (throw)          ║
║  Esc      - Cancel drag              ║
║  L        - Toggle field lines       ║
║  I        - Switch integrator        ║
║  , .      - Slower / faster          ║
║  x y z    - Rotate (shift reverses)  ║
║  + -      - Zoom        F - Refit    ║
║  V        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// Run opens the viewer full screen with mouse support and blocks until the
// user quits.
func Run(engine *sim.Engine, opts Options) error {
	_, err := tea.NewProgram(NewModel(engine, opts), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
