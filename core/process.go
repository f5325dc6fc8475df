package core

import "strings"

// Process is one cooperative machine driving the instrument: it owns the
// actuator outputs from Begin until End. Step is called once per control
// loop tick and must never block; it returns true when the process has
// finished and the supervisor should take the outputs back.
type Process interface {
	// Name returns the short label shown in the menu.
	Name() string

	// Begin initializes the process. Called exactly once on entry.
	Begin()

	// Step performs one non-blocking tick. Returns true on completion.
	Step() bool

	// End releases the process. It must leave all shared outputs (motion
	// speed, voltage rails) in a safe state; it runs both on normal
	// completion and on operator cancellation.
	End()
}

// inputOwner is implemented by processes that consume keypad input
// themselves; SELECT is not treated as a global exit for those.
type inputOwner interface {
	OwnsInput() bool
}

// SupervisorState is the UI state of the supervisor.
type SupervisorState uint8

const (
	// SupervisorMenu shows the process list; the operator navigates and selects.
	SupervisorMenu SupervisorState = iota
	// SupervisorRunning forwards ticks to the single active process.
	SupervisorRunning
)

// Supervisor owns the process collection and guarantees that exactly one
// process receives the control-loop tick at a time. Entry and exit always
// go through Begin/End, so hand-off is cooperative and synchronous.
type Supervisor struct {
	display Display
	keys    Keypad
	procs   []Process

	state    SupervisorState
	selected int
	running  int
}

// NewSupervisor creates the supervisor over a fixed process collection.
func NewSupervisor(display Display, keys Keypad, procs []Process) *Supervisor {
	return &Supervisor{display: display, keys: keys, procs: procs}
}

// Begin draws the menu and auto-starts the first process (homing on the
// instrument, so the axis is referenced before anything else can run).
func (s *Supervisor) Begin() {
	s.selected = 0
	s.state = SupervisorMenu
	s.drawMenu()
	s.start(0)
}

// Tick runs one supervisor iteration: menu navigation when idle, one Step
// of the active process otherwise. Callers must update the current sensor
// before Tick so the process reads this tick's statistics.
func (s *Supervisor) Tick() {
	k := s.keys.Poll()

	if s.state == SupervisorMenu {
		switch k {
		case KeyLeft:
			s.selected--
			if s.selected < 0 {
				s.selected = len(s.procs) - 1
			}
			s.drawMenu()
		case KeyRight:
			s.selected = (s.selected + 1) % len(s.procs)
			s.drawMenu()
		case KeySelect:
			s.start(s.selected)
		}
		return
	}

	p := s.procs[s.running]
	done := p.Step()

	// For processes that read the keypad themselves, SELECT belongs to
	// the process; for the rest it is a global exit back to the menu.
	owns := false
	if o, ok := p.(inputOwner); ok {
		owns = o.OwnsInput()
	}
	if !owns && k == KeySelect {
		s.stop()
		return
	}

	if done {
		s.stop()
	}
}

// Running returns the active process, if any.
func (s *Supervisor) Running() (Process, bool) {
	if s.state != SupervisorRunning {
		return nil, false
	}
	return s.procs[s.running], true
}

// State returns the supervisor UI state.
func (s *Supervisor) State() SupervisorState { return s.state }

func (s *Supervisor) start(idx int) {
	s.running = idx
	s.procs[idx].Begin()
	s.state = SupervisorRunning
}

func (s *Supervisor) stop() {
	s.procs[s.running].End()
	s.state = SupervisorMenu
	s.drawMenu()
}

func (s *Supervisor) drawMenu() {
	name := s.procs[s.selected].Name()
	pad := 16 - 4 - len(name)
	if pad < 0 {
		pad = 0
	}
	s.display.Clear()
	s.display.SetCursor(0, 0)
	s.display.Print("Select Mode:")
	s.display.SetCursor(0, 1)
	s.display.Print("< " + name + strings.Repeat(" ", pad) + " >")
}
