package host

import "github.com/cwbudde/algo-drive/dsp/param"

// Nudge is a relative parameter change in host units.
type Nudge struct {
	ID    param.ID
	Delta float64
}

// KeyMap binds keys to parameter nudges.
type KeyMap map[byte]Nudge

// DefaultKeyMap uses lower case to decrease and upper case to increase.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		'g': {param.Gain, -1}, 'G': {param.Gain, 1},
		'd': {param.Drive, -1}, 'D': {param.Drive, 1},
		'm': {param.Mix, -5}, 'M': {param.Mix, 5},
		'o': {param.Output, -1}, 'O': {param.Output, 1},
	}
}

// Apply nudges the parameter bound to key and returns its new host value.
func (k KeyMap) Apply(store *param.Store, key byte) (param.ID, float64, bool) {
	n, ok := k[key]
	if !ok {
		return "", 0, false
	}

	cur, ok := store.Value(n.ID)
	if !ok {
		return "", 0, false
	}

	store.OnParameterChanged(n.ID, cur+n.Delta)
	v, _ := store.Value(n.ID)

	return n.ID, v, true
}
