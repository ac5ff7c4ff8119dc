package lv2

import "github.com/lv2meta/lv2meta/internal/rdf"

// Namespace IRIs of the vocabularies queried by the resolver
const (
	LV2Namespace  = "http://lv2plug.in/ns/lv2core#"
	DOAPNamespace = "http://usefulinc.com/ns/doap#"
)

// Plugin-level predicates
const (
	PredicateName            = "doap:name"
	PredicateLicense         = "doap:license"
	PredicatePluginProperty  = "lv2:pluginProperty"
	PredicatePluginHint      = "lv2:pluginHint"
	PredicatePort            = "lv2:port"
	PredicateOptionalFeature = "lv2:optionalHostFeature"
	PredicateRequiredFeature = "lv2:requiredHostFeature"
	PredicateBinary          = "lv2:binary"
	PredicateSeeAlso         = "rdfs:seeAlso"
	PredicateMinorVersion    = "lv2:minorVersion"
	PredicateMicroVersion    = "lv2:microVersion"
)

// Port-level predicates
const (
	PredicateType         = "rdf:type"
	PredicateIndex        = "lv2:index"
	PredicateSymbol       = "lv2:symbol"
	PredicatePortName     = "lv2:name"
	PredicateMinimum      = "lv2:minimum"
	PredicateMaximum      = "lv2:maximum"
	PredicateDefault      = "lv2:default"
	PredicatePortProperty = "lv2:portProperty"
	PredicatePortHint     = "lv2:portHint"
)

// Class and hint values
const (
	ClassPlugin     = LV2Namespace + "Plugin"
	ClassInputPort  = LV2Namespace + "InputPort"
	ClassOutputPort = LV2Namespace + "OutputPort"
	ClassControl    = LV2Namespace + "ControlPort"
	ClassAudio      = LV2Namespace + "AudioPort"
	// MIDI ports predate the event extension and were published under
	// several IRIs; all of them classify as MIDI.
	ClassMIDI       = LV2Namespace + "MIDIPort"
	ClassMIDILegacy = "http://ll-plugins.nongnu.org/lv2/ext/MidiPort"
	ClassEventPort  = "http://lv2plug.in/ns/ext/event#EventPort"

	HintReportsLatency = "lv2:reportsLatency"
)

// Namespaces returns the prefix bindings available to every query
func Namespaces() []rdf.Binding {
	return []rdf.Binding{
		{Prefix: "rdf", Namespace: rdf.RDFNamespace},
		{Prefix: "rdfs", Namespace: rdf.RDFSNamespace},
		{Prefix: "xsd", Namespace: rdf.XSDNamespace},
		{Prefix: "lv2", Namespace: LV2Namespace},
		{Prefix: "doap", Namespace: DOAPNamespace},
	}
}

var vocabulary = rdf.NewNamespaces(Namespaces()...)

// ExpandIRI expands a prefixed vocabulary name such as PredicateBinary to
// its absolute IRI. Names with an unknown prefix are returned unchanged.
func ExpandIRI(name string) string {
	iri, err := vocabulary.Expand(name)
	if err != nil {
		return name
	}
	return iri
}
