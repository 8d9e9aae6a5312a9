package input

import (
	"strconv"

	"github.com/guidoenr/bloomer/internal/bloom"
	"github.com/guidoenr/bloomer/internal/params"
)

type presetBinding struct {
	key    Key
	preset bloom.Preset
}

type streakBinding struct {
	key    Key
	length int
}

type resolutionBinding struct {
	key  Key
	half bool
}

// Binding tables. Within a table the first held key wins, so holding two
// keys of the same table in one tick is still deterministic.
var (
	presetBindings = []presetBinding{
		{KeyF1, bloom.Wide},
		{KeyF2, bloom.SuperWide},
		{KeyF3, bloom.Focussed},
		{KeyF4, bloom.Small},
		{KeyF5, bloom.Cheap},
	}
	streakBindings = []streakBinding{
		{KeyF9, 1},
		{KeyF10, 2},
	}
	resolutionBindings = []resolutionBinding{
		{KeyF7, true},
		{KeyF8, false},
	}
	exitKey = KeyEscape
)

// Controller maps a tick's input snapshot onto the effect state. It holds no
// state of its own; every mapping is a plain assignment, so holding a key
// keeps re-applying the same value.
type Controller struct{}

// Apply mutates st according to snap and reports whether exit was requested.
func (Controller) Apply(snap Snapshot, st *params.State) bool {
	for _, b := range presetBindings {
		if snap.Keys.Has(b.key) {
			st.SetPreset(b.preset)
			break
		}
	}
	for _, b := range streakBindings {
		if snap.Keys.Has(b.key) {
			st.SetStreakLength(b.length)
			break
		}
	}
	for _, b := range resolutionBindings {
		if snap.Keys.Has(b.key) {
			st.HalfResolution = b.half
			break
		}
	}

	if snap.PointerDown && snap.WindowWidth > 0 {
		st.SetThreshold(snap.PointerX / float64(snap.WindowWidth))
	}

	return snap.Back || snap.Keys.Has(exitKey)
}

// PresetKey returns the key bound to p.
func PresetKey(p bloom.Preset) (Key, bool) {
	for _, b := range presetBindings {
		if b.preset == p {
			return b.key, true
		}
	}
	return KeyNone, false
}

// Help lists the bindings in display order.
func Help() []string {
	lines := make([]string, 0, len(presetBindings)+len(streakBindings)+len(resolutionBindings)+2)
	for _, b := range presetBindings {
		lines = append(lines, b.key.String()+": preset "+b.preset.String())
	}
	for _, b := range resolutionBindings {
		if b.half {
			lines = append(lines, b.key.String()+": half resolution on")
		} else {
			lines = append(lines, b.key.String()+": half resolution off")
		}
	}
	for _, b := range streakBindings {
		lines = append(lines, b.key.String()+": streak length "+strconv.Itoa(b.length))
	}
	lines = append(lines, "left mouse drag: threshold")
	lines = append(lines, exitKey.String()+": quit")
	return lines
}
