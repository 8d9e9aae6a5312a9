package input

import "strings"

// Key is a physical key the demo recognises. Hosts translate their native
// key codes into these; anything else never reaches the controller.
type Key uint8

const (
	KeyNone Key = iota
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyEscape

	keyCount
)

var keyNames = [...]string{
	KeyNone:   "none",
	KeyF1:     "f1",
	KeyF2:     "f2",
	KeyF3:     "f3",
	KeyF4:     "f4",
	KeyF5:     "f5",
	KeyF6:     "f6",
	KeyF7:     "f7",
	KeyF8:     "f8",
	KeyF9:     "f9",
	KeyF10:    "f10",
	KeyEscape: "esc",
}

func (k Key) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return "unknown"
}

// KeySet is the set of keys held during one tick.
type KeySet uint32

// Keys builds a set from the given keys.
func Keys(keys ...Key) KeySet {
	var s KeySet
	for _, k := range keys {
		s = s.With(k)
	}
	return s
}

// With returns s with k added. KeyNone and out-of-range keys are dropped.
func (s KeySet) With(k Key) KeySet {
	if k == KeyNone || k >= keyCount {
		return s
	}
	return s | 1<<k
}

func (s KeySet) Has(k Key) bool {
	return k < keyCount && s&(1<<k) != 0
}

func (s KeySet) Empty() bool {
	return s == 0
}

func (s KeySet) String() string {
	var names []string
	for k := KeyF1; k < keyCount; k++ {
		if s.Has(k) {
			names = append(names, k.String())
		}
	}
	return "[" + strings.Join(names, " ") + "]"
}

// Snapshot is the raw input observed for one tick.
type Snapshot struct {
	Keys KeySet

	// Pointer position along the window's horizontal axis, in the same
	// units as WindowWidth.
	PointerX    float64
	PointerDown bool
	WindowWidth int

	// Back is the game controller's back button.
	Back bool
}
