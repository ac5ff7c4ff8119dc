package lv2_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/lv2meta/lv2meta/internal/engine/memory"
	"github.com/lv2meta/lv2meta/internal/rdf/turtle"
	"github.com/lv2meta/lv2meta/pkg/lv2"
)

const dataURI = "file:///lv2/test.lv2/plugins.ttl"

const pluginsTTL = `
@prefix lv2:  <http://lv2plug.in/ns/lv2core#> .
@prefix doap: <http://usefulinc.com/ns/doap#> .
@prefix ll:   <http://ll-plugins.nongnu.org/lv2/ext/> .
@prefix ex:   <http://example.org/ext#> .

<http://example.org/plugins/gain>
    a lv2:Plugin ;
    doap:name "Gain" ;
    doap:license <http://usefulinc.com/doap/licenses/gpl> ;
    lv2:minorVersion 2 ;
    lv2:microVersion 4 ;
    lv2:binary <gain.so> ;
    lv2:pluginProperty lv2:hardRTCapable ;
    lv2:optionalHostFeature ex:a ;
    lv2:requiredHostFeature ex:b ;
    lv2:port [
        a lv2:AudioPort , lv2:InputPort ;
        lv2:index 0 ;
        lv2:symbol "in" ;
        lv2:name "In"
    ] , [
        a lv2:ControlPort , lv2:InputPort ;
        lv2:index 1 ;
        lv2:symbol "gain" ;
        lv2:name "Gain" ;
        lv2:minimum 0.0 ;
        lv2:maximum 1.0 ;
        lv2:default 0.5 ;
        lv2:portProperty lv2:toggled
    ] .

<http://example.org/plugins/delay>
    a lv2:Plugin ;
    doap:name "Delay" , "Verzögerung"@de ;
    lv2:optionalHostFeature ex:a , ex:b ;
    lv2:requiredHostFeature ex:b ;
    lv2:port [
        a lv2:MIDIPort , lv2:InputPort ;
        lv2:index 0 ;
        lv2:symbol "midi_in"
    ] , [
        a lv2:ControlPort , lv2:OutputPort ;
        lv2:index 1 ;
        lv2:symbol "latency" ;
        lv2:portHint lv2:reportsLatency
    ] , [
        a ll:MidiPort , lv2:OutputPort ;
        lv2:index 2 ;
        lv2:symbol "midi_out"
    ] .

<http://example.org/plugins/broken>
    a lv2:Plugin ;
    doap:license <http://usefulinc.com/doap/licenses/gpl> ;
    lv2:port [
        a lv2:ControlPort , lv2:OutputPort ;
        lv2:index 0 ;
        lv2:portHint lv2:reportsLatency ;
        lv2:default "loud"
    ] , [
        a lv2:ControlPort , lv2:OutputPort , lv2:InputPort ;
        lv2:index 1 ;
        lv2:portHint lv2:reportsLatency
    ] .

<http://example.org/plugins/twin>
    a lv2:Plugin ;
    lv2:port [
        a lv2:ControlPort , lv2:OutputPort ;
        lv2:index 3 ;
        lv2:portHint lv2:reportsLatency
    ] , [
        a lv2:ControlPort , lv2:OutputPort ;
        lv2:index 3 ;
        lv2:portHint lv2:reportsLatency
    ] .

<http://example.org/plugins/empty> a lv2:Plugin .
`

func setup(t *testing.T, opts ...lv2.Option) (*lv2.Resolver, func(name string) *lv2.Plugin) {
	t.Helper()

	doc, err := turtle.Parse(pluginsTTL, dataURI)
	require.NoError(t, err)

	engine := memory.New(nil)
	require.NoError(t, engine.Load(context.Background(), dataURI, doc.Triples))

	plugin := func(name string) *lv2.Plugin {
		p, err := lv2.NewPlugin(
			"http://example.org/plugins/"+name,
			"file:///lv2/test.lv2/",
			dataURI,
			"file:///lv2/test.lv2/"+name+".so",
		)
		require.NoError(t, err)
		return p
	}
	return lv2.NewResolver(engine, opts...), plugin
}

func sorted(v *lv2.Values) []string {
	s := v.Slice()
	sort.Strings(s)
	return s
}

func TestGainPluginScenario(t *testing.T) {
	r, plugin := setup(t)
	ctx := context.Background()
	gain := plugin("gain")

	n, err := r.NumPorts(ctx, gain)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	in, err := r.Port(ctx, gain, 0)
	require.NoError(t, err)
	class, err := r.PortClass(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, lv2.PortClassAudioInput, class)

	port, err := r.Port(ctx, gain, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), port.Index())
	assert.Same(t, gain, port.Plugin())

	class, err = r.PortClass(ctx, port)
	require.NoError(t, err)
	assert.Equal(t, lv2.PortClassControlInput, class)

	def, ok, err := r.PortDefault(ctx, port)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0.5, def)

	lo, ok, err := r.PortMinimum(ctx, port)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0.0, lo)

	hi, ok, err := r.PortMaximum(ctx, port)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1.0, hi)

	symbol, ok, err := r.PortSymbol(ctx, port)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "gain", symbol)

	name, ok, err := r.PortName(ctx, port)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Gain", name)

	props, err := r.PortProperties(ctx, port)
	require.NoError(t, err)
	assert.Equal(t, []string{lv2.LV2Namespace + "toggled"}, props.Slice())

	hints, err := r.PortHints(ctx, port)
	require.NoError(t, err)
	assert.Equal(t, 0, hints.Size())

	_, ok, err = r.PortDefault(ctx, in)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNameAndVerify(t *testing.T) {
	r, plugin := setup(t)
	ctx := context.Background()

	tests := []struct {
		plugin      string
		wantName    string
		wantNamed   bool
		wantLicense bool
	}{
		{"gain", "Gain", true, true},
		{"delay", "Delay", true, false},
		{"broken", "", false, true},
		{"empty", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.plugin, func(t *testing.T) {
			p := plugin(tt.plugin)

			name, ok, err := r.Name(ctx, p)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNamed, ok)
			assert.Equal(t, tt.wantName, name)

			verified, err := r.Verify(ctx, p)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNamed, verified)

			licensed, err := r.HasLicense(ctx, p)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLicense, licensed)
		})
	}
}

func TestNameIsOneOfDeclaredNames(t *testing.T) {
	r, plugin := setup(t)
	ctx := context.Background()
	delay := plugin("delay")

	names, err := r.Resolve(ctx, delay, lv2.PredicateName)
	require.NoError(t, err)
	assert.Equal(t, []string{"Delay", "Verzögerung"}, names.Slice())

	name, ok, err := r.Name(ctx, delay)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, names.Contains(name))
}

func TestFeatures(t *testing.T) {
	r, plugin := setup(t)
	ctx := context.Background()
	const a, b = "http://example.org/ext#a", "http://example.org/ext#b"

	tests := []struct {
		plugin        string
		wantSupported []string
		wantOptional  []string
		wantRequired  []string
	}{
		{"gain", []string{a, b}, []string{a}, []string{b}},
		{"delay", []string{a, b}, []string{a, b}, []string{b}},
		{"empty", []string{}, []string{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.plugin, func(t *testing.T) {
			p := plugin(tt.plugin)

			supported, err := r.SupportedFeatures(ctx, p)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSupported, sorted(supported))

			optional, err := r.OptionalFeatures(ctx, p)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOptional, sorted(optional))

			required, err := r.RequiredFeatures(ctx, p)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRequired, sorted(required))
		})
	}
}

func TestLatencyPort(t *testing.T) {
	r, plugin := setup(t)
	ctx := context.Background()

	tests := []struct {
		plugin      string
		wantLatency bool
		wantIndex   uint32
		wantErr     bool
	}{
		{"gain", false, 0, true},
		{"delay", true, 1, false},
		{"broken", true, 0, true},
		{"twin", true, 0, true},
		{"empty", false, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.plugin, func(t *testing.T) {
			p := plugin(tt.plugin)

			has, err := r.HasLatencyPort(ctx, p)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLatency, has)

			index, err := r.LatencyPortIndex(ctx, p)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, lv2.ErrContractViolation))
				assert.False(t, errors.Is(err, lv2.ErrEngineFailure))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIndex, index)
		})
	}
}

func TestPortClassification(t *testing.T) {
	r, plugin := setup(t)
	ctx := context.Background()

	tests := []struct {
		plugin string
		index  uint32
		want   lv2.PortClass
	}{
		{"delay", 0, lv2.PortClassMIDIInput},
		{"delay", 1, lv2.PortClassControlOutput},
		{"delay", 2, lv2.PortClassMIDIOutput},
		{"broken", 0, lv2.PortClassControlOutput},
		{"broken", 1, lv2.PortClassUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d", tt.plugin, tt.index), func(t *testing.T) {
			port, err := r.Port(ctx, plugin(tt.plugin), tt.index)
			require.NoError(t, err)

			class, err := r.PortClass(ctx, port)
			require.NoError(t, err)
			assert.Equal(t, tt.want, class)
		})
	}
}

func TestPorts(t *testing.T) {
	r, plugin := setup(t)
	ctx := context.Background()

	ports, err := r.Ports(ctx, plugin("delay"))
	require.NoError(t, err)
	require.Len(t, ports, 3)
	for i, port := range ports {
		assert.Equal(t, uint32(i), port.Index())
	}

	ports, err = r.Ports(ctx, plugin("empty"))
	require.NoError(t, err)
	assert.Empty(t, ports)
}

func TestPortOutOfRange(t *testing.T) {
	r, plugin := setup(t)

	_, err := r.Port(context.Background(), plugin("gain"), 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, lv2.ErrContractViolation))
	assert.Contains(t, err.Error(), "out of range")
}

func TestPortValueNotANumber(t *testing.T) {
	r, plugin := setup(t)
	ctx := context.Background()

	port, err := r.Port(ctx, plugin("broken"), 0)
	require.NoError(t, err)

	_, _, err = r.PortDefault(ctx, port)
	require.Error(t, err)
	assert.True(t, errors.Is(err, lv2.ErrContractViolation))
}

func TestVersion(t *testing.T) {
	r, plugin := setup(t)
	ctx := context.Background()

	v, ok, err := r.Version(ctx, plugin("gain"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "0.2.4", v.String())

	v, ok, err = r.Version(ctx, plugin("empty"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestPropertiesAndHints(t *testing.T) {
	r, plugin := setup(t)
	ctx := context.Background()

	props, err := r.Properties(ctx, plugin("gain"))
	require.NoError(t, err)
	assert.Equal(t, []string{lv2.LV2Namespace + "hardRTCapable"}, props.Slice())

	hints, err := r.Hints(ctx, plugin("gain"))
	require.NoError(t, err)
	assert.Equal(t, 0, hints.Size())
}

func TestResolveMissingPredicateIsEmpty(t *testing.T) {
	r, plugin := setup(t)

	values, err := r.Resolve(context.Background(), plugin("empty"), "doap:homepage")
	require.NoError(t, err)
	assert.Equal(t, 0, values.Size())

	count, err := r.CountMatches(context.Background(), plugin("empty"), lv2.PredicatePort)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestResolveViaListAndFilter(t *testing.T) {
	r, plugin := setup(t)
	ctx := context.Background()

	symbols, err := r.ResolveViaListAndFilter(ctx, plugin("delay"), lv2.PredicatePort, 2, lv2.PredicateSymbol)
	require.NoError(t, err)
	assert.Equal(t, []string{"midi_out"}, symbols.Slice())

	missing, err := r.ResolveViaListAndFilter(ctx, plugin("delay"), lv2.PredicatePort, 9, lv2.PredicateSymbol)
	require.NoError(t, err)
	assert.Equal(t, 0, missing.Size())
}

func TestContractViolations(t *testing.T) {
	r, plugin := setup(t)
	ctx := context.Background()
	gain := plugin("gain")

	tests := []struct {
		name string
		call func() error
	}{
		{"empty predicate", func() error { _, err := r.Resolve(ctx, gain, ""); return err }},
		{"unknown prefix", func() error { _, err := r.Resolve(ctx, gain, "foaf:name"); return err }},
		{"injection attempt", func() error { _, err := r.Resolve(ctx, gain, "doap:name ?value } #"); return err }},
		{"nil plugin", func() error { _, err := r.Resolve(ctx, nil, lv2.PredicateName); return err }},
		{"empty list predicate", func() error {
			_, err := r.ResolveViaListAndFilter(ctx, gain, "", 0, lv2.PredicateSymbol)
			return err
		}},
		{"empty port predicate", func() error {
			_, err := r.ResolveViaListAndFilter(ctx, gain, lv2.PredicatePort, 0, "")
			return err
		}},
		{"zero port", func() error { _, err := r.PortClass(ctx, lv2.Port{}); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.True(t, errors.Is(err, lv2.ErrContractViolation), "got %v", err)

			var resErr *lv2.ResolutionError
			require.True(t, errors.As(err, &resErr))
			assert.Equal(t, lv2.KindContractViolation, resErr.Kind)
		})
	}
}

func TestEngineFailure(t *testing.T) {
	cause := errors.New("connection refused")
	r := lv2.NewResolver(lv2.EngineFunc(func(ctx context.Context, query, graph string) ([]string, error) {
		return nil, cause
	}))
	p, err := lv2.NewPlugin("http://example.org/p", "", dataURI, "")
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), p, lv2.PredicateName)
	require.Error(t, err)
	assert.True(t, errors.Is(err, lv2.ErrEngineFailure))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, lv2.ErrContractViolation))

	var resErr *lv2.ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, "Resolve", resErr.Op)
	assert.Equal(t, "http://example.org/p", resErr.Plugin)
	assert.Equal(t, lv2.PredicateName, resErr.Predicate)
	assert.Equal(t,
		"lv2: Resolve <http://example.org/p> doap:name: engine failure: connection refused",
		err.Error())

	_, err = r.Verify(context.Background(), p)
	assert.True(t, errors.Is(err, lv2.ErrEngineFailure))
	_, err = r.LatencyPortIndex(context.Background(), p)
	assert.True(t, errors.Is(err, lv2.ErrEngineFailure))
}

func TestQueryTextSentToEngine(t *testing.T) {
	var gotQuery, gotGraph string
	r := lv2.NewResolver(lv2.EngineFunc(func(ctx context.Context, query, graph string) ([]string, error) {
		gotQuery, gotGraph = query, graph
		return []string{"Gain"}, nil
	}))
	p, err := lv2.NewPlugin("http://example.org/plugins/gain", "", dataURI, "")
	require.NoError(t, err)

	name, ok, err := r.Name(context.Background(), p)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Gain", name)

	assert.Equal(t, dataURI, gotGraph)
	assert.True(t, strings.HasPrefix(gotQuery,
		"PREFIX plugin: <http://example.org/plugins/gain>\nPREFIX data: <"+dataURI+">\n"))
	assert.True(t, strings.HasSuffix(gotQuery,
		"SELECT DISTINCT ?value FROM data: WHERE {\nplugin: doap:name ?value .\n}\n"))
}

func TestResolverLogsQueries(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r, plugin := setup(t, lv2.WithLogger(zap.New(core)))

	_, err := r.Resolve(context.Background(), plugin("gain"), lv2.PredicateName)
	require.NoError(t, err)

	entries := logs.FilterMessage("query resolved").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "http://example.org/plugins/gain", fields["plugin"])
	assert.Equal(t, lv2.PredicateName, fields["predicate"])
	assert.Equal(t, int64(1), fields["rows"])
}

func TestResolveCancelled(t *testing.T) {
	r, plugin := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Resolve(ctx, plugin("gain"), lv2.PredicateName)
	require.Error(t, err)
	assert.True(t, errors.Is(err, lv2.ErrEngineFailure))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFeatureSetProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		optional := rapid.SliceOfDistinct(rapid.IntRange(0, 20), func(i int) int { return i }).Draw(t, "optional")
		required := rapid.SliceOfDistinct(rapid.IntRange(0, 20), func(i int) int { return i }).Draw(t, "required")

		var b strings.Builder
		b.WriteString("@prefix lv2: <http://lv2plug.in/ns/lv2core#> .\n")
		b.WriteString("<http://example.org/p> a lv2:Plugin")
		for _, f := range optional {
			fmt.Fprintf(&b, " ;\n lv2:optionalHostFeature <http://example.org/f%d>", f)
		}
		for _, f := range required {
			fmt.Fprintf(&b, " ;\n lv2:requiredHostFeature <http://example.org/f%d>", f)
		}
		b.WriteString(" .\n")

		doc, err := turtle.Parse(b.String(), dataURI)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		engine := memory.New(nil)
		if err := engine.Load(context.Background(), dataURI, doc.Triples); err != nil {
			t.Fatalf("load: %v", err)
		}
		p, _ := lv2.NewPlugin("http://example.org/p", "", dataURI, "")
		r := lv2.NewResolver(engine)

		supported, err := r.SupportedFeatures(context.Background(), p)
		if err != nil {
			t.Fatalf("supported: %v", err)
		}

		want := make(map[string]bool)
		for _, f := range append(append([]int{}, optional...), required...) {
			want[fmt.Sprintf("http://example.org/f%d", f)] = true
		}
		if supported.Size() != len(want) {
			t.Fatalf("supported %v, want %d distinct features", supported.Slice(), len(want))
		}
		for _, f := range supported.Slice() {
			if !want[f] {
				t.Fatalf("unexpected feature %s", f)
			}
		}
	})
}
