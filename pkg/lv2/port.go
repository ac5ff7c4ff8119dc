package lv2

import "fmt"

// Port is a plugin-scoped port identified by its zero-based index. It has
// no identity beyond the (plugin, index) pair; obtain one through
// Resolver.Port.
type Port struct {
	plugin *Plugin
	index  uint32
}

// Plugin returns the owning plugin
func (p Port) Plugin() *Plugin { return p.plugin }

// Index returns the port's lv2:index
func (p Port) Index() uint32 { return p.index }

// String returns "<plugin>#index"
func (p Port) String() string {
	return fmt.Sprintf("<%s>#%d", p.plugin.URI(), p.index)
}

// PortClass is the direction and signal type of a port
type PortClass int

const (
	PortClassUnknown PortClass = iota
	PortClassControlInput
	PortClassControlOutput
	PortClassAudioInput
	PortClassAudioOutput
	PortClassMIDIInput
	PortClassMIDIOutput
)

var portClassNames = map[PortClass]string{
	PortClassUnknown:       "Unknown",
	PortClassControlInput:  "Control input",
	PortClassControlOutput: "Control output",
	PortClassAudioInput:    "Audio input",
	PortClassAudioOutput:   "Audio output",
	PortClassMIDIInput:     "MIDI input",
	PortClassMIDIOutput:    "MIDI output",
}

// String returns a human-readable class name
func (c PortClass) String() string {
	if name, ok := portClassNames[c]; ok {
		return name
	}
	return portClassNames[PortClassUnknown]
}

// IsControl reports whether the class is a control input or output
func (c PortClass) IsControl() bool {
	return c == PortClassControlInput || c == PortClassControlOutput
}

// ClassifyPort maps a port's rdf:type values to a PortClass. Exactly one
// direction and exactly one signal type must be declared; anything else,
// including contradictory declarations, is PortClassUnknown.
func ClassifyPort(types *Values) PortClass {
	input := types.Contains(ClassInputPort)
	output := types.Contains(ClassOutputPort)
	if input == output {
		return PortClassUnknown
	}

	signals := 0
	var control, audio, midi bool
	if types.Contains(ClassControl) {
		control = true
		signals++
	}
	if types.Contains(ClassAudio) {
		audio = true
		signals++
	}
	if types.Contains(ClassMIDI) || types.Contains(ClassMIDILegacy) || types.Contains(ClassEventPort) {
		midi = true
		signals++
	}
	if signals != 1 {
		return PortClassUnknown
	}

	switch {
	case control && input:
		return PortClassControlInput
	case control:
		return PortClassControlOutput
	case audio && input:
		return PortClassAudioInput
	case audio:
		return PortClassAudioOutput
	case midi && input:
		return PortClassMIDIInput
	default:
		return PortClassMIDIOutput
	}
}
