package shift

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/matiasrios/facegate/internal/storage"
)

//go:embed shifts.yaml
var defaultShiftsYAML []byte

// Timing classifies when an event happened relative to its configured window.
type Timing string

const (
	TimingOnTime Timing = "on-time"
	TimingEarly  Timing = "early"
	TimingLate   Timing = "late"

	// TimingOutOfWindow means the (shift, kind) pair has no configured
	// window at all. This is a configuration error, not a normal
	// classification, and is surfaced distinctly from late.
	TimingOutOfWindow Timing = "out-of-window"
)

const minutesPerDay = 24 * 60

// Window is the configured time-of-day window for one (shift, kind) pair.
// Start and End are minutes since midnight. Wraparound windows cross
// midnight (e.g. night shift 22:00-06:00).
type Window struct {
	Start      int
	End        int
	Wraparound bool
}

// Contains reports whether a minute-of-day falls inside the window.
func (w Window) Contains(minute int) bool {
	if w.Wraparound {
		return minute >= w.Start || minute <= w.End
	}
	return minute >= w.Start && minute <= w.End
}

// Schedule holds the configured windows for every shift and event kind.
type Schedule struct {
	windows map[Shift]map[storage.EventKind]Window
}

type windowYAML struct {
	Start      string `yaml:"start"`
	End        string `yaml:"end"`
	Wraparound bool   `yaml:"wraparound"`
}

type scheduleYAML struct {
	Shifts map[string]map[string]windowYAML `yaml:"shifts"`
}

// parseClock parses "HH:MM" into minutes since midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func parseKind(s string) (storage.EventKind, error) {
	switch s {
	case "check_in", "check-in":
		return storage.KindCheckIn, nil
	case "check_out", "check-out":
		return storage.KindCheckOut, nil
	default:
		return "", fmt.Errorf("unknown event kind %q in shift config", s)
	}
}

// ParseSchedule builds a schedule from YAML.
func ParseSchedule(data []byte) (*Schedule, error) {
	var raw scheduleYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse shift config: %w", err)
	}
	if len(raw.Shifts) == 0 {
		return nil, fmt.Errorf("shift config defines no shifts")
	}

	windows := make(map[Shift]map[storage.EventKind]Window, len(raw.Shifts))
	for name, kinds := range raw.Shifts {
		sh := Normalize(name)
		windows[sh] = make(map[storage.EventKind]Window, len(kinds))
		for kindName, w := range kinds {
			kind, err := parseKind(kindName)
			if err != nil {
				return nil, err
			}
			start, err := parseClock(w.Start)
			if err != nil {
				return nil, fmt.Errorf("shift %q %s: %w", name, kindName, err)
			}
			end, err := parseClock(w.End)
			if err != nil {
				return nil, fmt.Errorf("shift %q %s: %w", name, kindName, err)
			}
			windows[sh][kind] = Window{Start: start, End: end, Wraparound: w.Wraparound}
		}
	}
	return &Schedule{windows: windows}, nil
}

// LoadSchedule returns the schedule from the given YAML file, or the embedded
// defaults when path is empty.
func LoadSchedule(path string) (*Schedule, error) {
	if path == "" {
		return ParseSchedule(defaultShiftsYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shift config: %w", err)
	}
	return ParseSchedule(data)
}

// Known reports whether the schedule defines any window for the shift.
func (s *Schedule) Known(sh Shift) bool {
	_, ok := s.windows[sh]
	return ok
}

// Window returns the configured window for a (shift, kind) pair.
func (s *Schedule) Window(sh Shift, kind storage.EventKind) (Window, bool) {
	kinds, ok := s.windows[sh]
	if !ok {
		return Window{}, false
	}
	w, ok := kinds[kind]
	return w, ok
}

// Classify classifies the timing of an event at the given wall-clock time.
// Returns TimingOutOfWindow only when the (shift, kind) pair is entirely
// undefined in configuration.
func (s *Schedule) Classify(sh Shift, kind storage.EventKind, at time.Time) Timing {
	w, ok := s.Window(sh, kind)
	if !ok {
		return TimingOutOfWindow
	}

	minute := at.Hour()*60 + at.Minute()
	if w.Contains(minute) {
		return TimingOnTime
	}

	if !w.Wraparound {
		if minute < w.Start {
			return TimingEarly
		}
		return TimingLate
	}

	// Outside a wraparound window every instant is both after the end and
	// before the next start; classify by whichever boundary is closer.
	untilStart := (w.Start - minute + minutesPerDay) % minutesPerDay
	pastEnd := (minute - w.End + minutesPerDay) % minutesPerDay
	if untilStart <= pastEnd {
		return TimingEarly
	}
	return TimingLate
}
