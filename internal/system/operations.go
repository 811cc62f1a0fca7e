package system

import (
	"neuralterm/internal/config"
	"neuralterm/internal/console"
	"neuralterm/internal/entropy"
	"neuralterm/internal/logging"
	"neuralterm/internal/logring"
)

// Snapshot is the read-only view handed to render surfaces.
type Snapshot struct {
	Entropy      int
	Perturbation entropy.Perturbation
	Blueprint    bool
	Logs         []logring.Entry
	LogSeq       uint64 // bumped by every log append or clear
	Theme        string
	ConsoleOpen  bool
}

// Lines renders the logs with their timestamp prefixes.
func (s Snapshot) Lines() []string {
	lines := make([]string, len(s.Logs))
	for i, e := range s.Logs {
		lines[i] = e.String()
	}
	return lines
}

// Header is the console title for the current mode.
func (s Snapshot) Header() string {
	if s.Blueprint {
		return "BLUEPRINT_MODE_ACTIVE"
	}
	return "NEURAL_TERMINAL"
}

// Snapshot copies the observable state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	if err := s.checkLocked("Snapshot"); err != nil {
		s.mu.Unlock()
		panic(err)
	}
	snap := Snapshot{
		Entropy:      s.engine.Level(),
		Perturbation: s.engine.Perturbation(),
		Blueprint:    s.mode.Enabled(),
		Logs:         s.ring.Entries(),
		LogSeq:       s.logSeq,
		Theme:        s.theme.Current(),
		ConsoleOpen:  s.console.IsOpen(),
	}
	s.mu.Unlock()
	return snap
}

// Tick advances entropy by one step. Called by the scheduler.
func (s *State) Tick() {
	var changed bool
	var level int
	s.do("Tick", func() {
		changed = s.engine.Tick()
		level = s.engine.Level()
	})
	if changed {
		logging.Entropy("tick: entropy=%d", level)
	}
}

// Advance applies n ticks as one handler and returns how many took effect.
func (s *State) Advance(n int) int {
	var applied int
	s.do("Advance", func() {
		applied = s.engine.Advance(n)
	})
	return applied
}

// ResetEntropy returns entropy and perturbation to zero and logs the reset.
func (s *State) ResetEntropy() {
	s.do("ResetEntropy", s.engine.Reset)
	logging.Get(logging.CategoryEntropy).Info("entropy reset")
}

// ToggleBlueprint flips blueprint mode and returns the new value.
func (s *State) ToggleBlueprint() bool {
	var enabled bool
	s.do("ToggleBlueprint", func() {
		enabled = s.mode.Toggle()
	})
	return enabled
}

// ObserveScroll feeds one viewport offset to the scroll instrumentation.
func (s *State) ObserveScroll(position int) {
	var logged bool
	s.do("ObserveScroll", func() {
		logged = s.scroll.Observe(position)
	})
	if logged {
		logging.Get(logging.CategoryScroll).Debugf("scroll logged at %d", position)
	}
}

// Submit runs one console input line.
func (s *State) Submit(line string) console.Kind {
	var kind console.Kind
	s.do("Submit", func() {
		kind = s.console.Submit(line)
	})
	return kind
}

// ToggleConsole opens or closes the console and returns whether it is open.
func (s *State) ToggleConsole() bool {
	var open bool
	s.do("ToggleConsole", func() {
		open = s.console.ToggleOpen()
	})
	return open
}

// OpenConsole makes the console accept input.
func (s *State) OpenConsole() {
	s.do("OpenConsole", s.console.Open)
}

// CloseConsole stops the console from accepting input.
func (s *State) CloseConsole() {
	s.do("CloseConsole", s.console.Close)
}

// Append writes an arbitrary operator-visible line.
func (s *State) Append(message string) {
	s.do("Append", func() {
		s.ring.Append(message)
	})
}

// ApplyConfig hot-applies the settings that can change at runtime and logs
// ReloadMessage. Capacity and tick period only take effect on restart.
func (s *State) ApplyConfig(cfg *config.Config) {
	s.do("ApplyConfig", func() {
		s.scroll.SetThreshold(cfg.Scroll.Threshold)
		s.console.SetRepoURL(cfg.Console.RepoURL)
		s.ring.Append(ReloadMessage)
	})
	logging.Get(logging.CategoryConfig).Infow("config applied",
		"scroll_threshold", cfg.Scroll.Threshold, "repo_url", cfg.Console.RepoURL)
}
