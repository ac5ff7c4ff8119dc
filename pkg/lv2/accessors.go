package lv2

import (
	"context"
	"strconv"

	"github.com/Masterminds/semver/v3"

	"github.com/lv2meta/lv2meta/internal/sparql"
)

const subject = sparql.SubjectPrefix + ":"

// Name returns the first doap:name in result order. Language tags are not
// taken into account.
func (r *Resolver) Name(ctx context.Context, p *Plugin) (string, bool, error) {
	values, err := r.Resolve(ctx, p, PredicateName)
	if err != nil {
		return "", false, err
	}
	name, ok := values.First()
	return name, ok, nil
}

// Verify reports whether the plugin declares at least one name.
//
// A license is not required here; use HasLicense for that.
func (r *Resolver) Verify(ctx context.Context, p *Plugin) (bool, error) {
	n, err := r.CountMatches(ctx, p, PredicateName)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// HasLicense reports whether the plugin declares a doap:license
func (r *Resolver) HasLicense(ctx context.Context, p *Plugin) (bool, error) {
	n, err := r.CountMatches(ctx, p, PredicateLicense)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// NumPorts returns the number of distinct lv2:port objects
func (r *Resolver) NumPorts(ctx context.Context, p *Plugin) (int, error) {
	return r.CountMatches(ctx, p, PredicatePort)
}

// Properties returns the plugin's lv2:pluginProperty values
func (r *Resolver) Properties(ctx context.Context, p *Plugin) (*Values, error) {
	return r.Resolve(ctx, p, PredicatePluginProperty)
}

// Hints returns the plugin's lv2:pluginHint values
func (r *Resolver) Hints(ctx context.Context, p *Plugin) (*Values, error) {
	return r.Resolve(ctx, p, PredicatePluginHint)
}

// HasLatencyPort reports whether any port carries the reportsLatency hint
func (r *Resolver) HasLatencyPort(ctx context.Context, p *Plugin) (bool, error) {
	ports, err := r.run(ctx, "HasLatencyPort", p, PredicatePortHint, func(qc sparql.QueryContext) (*sparql.Query, error) {
		return latencyBuilder(qc, "port").Build()
	})
	if err != nil {
		return false, err
	}
	return ports.Size() > 0, nil
}

// LatencyPortIndex returns the index of the port carrying the
// reportsLatency hint. Exactly one such port must exist; zero or several
// yield ErrContractViolation.
func (r *Resolver) LatencyPortIndex(ctx context.Context, p *Plugin) (uint32, error) {
	const op = "LatencyPortIndex"
	ports, err := r.run(ctx, op, p, PredicatePortHint, func(qc sparql.QueryContext) (*sparql.Query, error) {
		return latencyBuilder(qc, "port").Build()
	})
	if err != nil {
		return 0, err
	}
	if ports.Size() != 1 {
		return 0, contractViolation(op, p.URI(), PredicatePortHint,
			"expected exactly one latency port, found %d", ports.Size())
	}

	// with a single latency port every index below belongs to it
	indexes, err := r.run(ctx, op, p, PredicateIndex, func(qc sparql.QueryContext) (*sparql.Query, error) {
		return latencyBuilder(qc, "index").
			Where(sparql.Var("port"), sparql.Prefixed(PredicateIndex), sparql.Var("index")).
			Build()
	})
	if err != nil {
		return 0, err
	}
	if indexes.Size() != 1 {
		return 0, contractViolation(op, p.URI(), PredicateIndex,
			"expected exactly one index on the latency port, found %d", indexes.Size())
	}

	raw, _ := indexes.First()
	index, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, contractViolation(op, p.URI(), PredicateIndex, "invalid port index %q", raw)
	}
	return uint32(index), nil
}

// latencyBuilder matches the plugin's ports carrying the reportsLatency hint
func latencyBuilder(qc sparql.QueryContext, variable string) *sparql.Builder {
	return sparql.NewBuilder(qc).
		Select(variable).
		Distinct().
		Where(sparql.Prefixed(subject), sparql.Prefixed(PredicatePort), sparql.Var("port")).
		Where(sparql.Var("port"), sparql.Prefixed(PredicatePortHint), sparql.Prefixed(HintReportsLatency))
}

// SupportedFeatures returns the union of optional and required host
// features, without duplicates
func (r *Resolver) SupportedFeatures(ctx context.Context, p *Plugin) (*Values, error) {
	return r.run(ctx, "SupportedFeatures", p, PredicateOptionalFeature, func(qc sparql.QueryContext) (*sparql.Query, error) {
		return sparql.UnionObjects(qc, "feature", PredicateOptionalFeature, PredicateRequiredFeature)
	})
}

// OptionalFeatures returns the host features the plugin can use
func (r *Resolver) OptionalFeatures(ctx context.Context, p *Plugin) (*Values, error) {
	return r.Resolve(ctx, p, PredicateOptionalFeature)
}

// RequiredFeatures returns the host features the plugin cannot run without
func (r *Resolver) RequiredFeatures(ctx context.Context, p *Plugin) (*Values, error) {
	return r.Resolve(ctx, p, PredicateRequiredFeature)
}

// Version returns the plugin version built from lv2:minorVersion and
// lv2:microVersion as 0.minor.micro. It reports false when neither is
// declared.
func (r *Resolver) Version(ctx context.Context, p *Plugin) (*semver.Version, bool, error) {
	minor, okMinor, err := r.firstUint(ctx, "Version", p, PredicateMinorVersion)
	if err != nil {
		return nil, false, err
	}
	micro, okMicro, err := r.firstUint(ctx, "Version", p, PredicateMicroVersion)
	if err != nil {
		return nil, false, err
	}
	if !okMinor && !okMicro {
		return nil, false, nil
	}
	return semver.New(0, minor, micro, "", ""), true, nil
}

func (r *Resolver) firstUint(ctx context.Context, op string, p *Plugin, predicate string) (uint64, bool, error) {
	values, err := r.Resolve(ctx, p, predicate)
	if err != nil {
		return 0, false, err
	}
	raw, ok := values.First()
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false, contractViolation(op, p.URI(), predicate, "invalid number %q", raw)
	}
	return n, true, nil
}

// Port returns the port with the given index. The index must be below
// NumPorts.
func (r *Resolver) Port(ctx context.Context, p *Plugin, index uint32) (Port, error) {
	n, err := r.NumPorts(ctx, p)
	if err != nil {
		return Port{}, err
	}
	if int64(index) >= int64(n) {
		return Port{}, contractViolation("Port", p.URI(), PredicatePort,
			"port index %d out of range (plugin has %d ports)", index, n)
	}
	return Port{plugin: p, index: index}, nil
}

// Ports returns every port of the plugin in index order
func (r *Resolver) Ports(ctx context.Context, p *Plugin) ([]Port, error) {
	n, err := r.NumPorts(ctx, p)
	if err != nil {
		return nil, err
	}
	ports := make([]Port, n)
	for i := range ports {
		ports[i] = Port{plugin: p, index: uint32(i)}
	}
	return ports, nil
}

// PortValues returns the port's objects of predicate
func (r *Resolver) PortValues(ctx context.Context, port Port, predicate string) (*Values, error) {
	return r.ResolveViaListAndFilter(ctx, port.plugin, PredicatePort, port.index, predicate)
}

// PortClass classifies the port from its rdf:type values
func (r *Resolver) PortClass(ctx context.Context, port Port) (PortClass, error) {
	types, err := r.PortValues(ctx, port, PredicateType)
	if err != nil {
		return PortClassUnknown, err
	}
	return ClassifyPort(types), nil
}

// PortSymbol returns the port's lv2:symbol
func (r *Resolver) PortSymbol(ctx context.Context, port Port) (string, bool, error) {
	return r.portFirst(ctx, port, PredicateSymbol)
}

// PortName returns the port's first lv2:name
func (r *Resolver) PortName(ctx context.Context, port Port) (string, bool, error) {
	return r.portFirst(ctx, port, PredicatePortName)
}

// PortMinimum returns the port's lv2:minimum
func (r *Resolver) PortMinimum(ctx context.Context, port Port) (float64, bool, error) {
	return r.portFloat(ctx, port, PredicateMinimum)
}

// PortMaximum returns the port's lv2:maximum
func (r *Resolver) PortMaximum(ctx context.Context, port Port) (float64, bool, error) {
	return r.portFloat(ctx, port, PredicateMaximum)
}

// PortDefault returns the port's lv2:default
func (r *Resolver) PortDefault(ctx context.Context, port Port) (float64, bool, error) {
	return r.portFloat(ctx, port, PredicateDefault)
}

// PortProperties returns the port's lv2:portProperty values
func (r *Resolver) PortProperties(ctx context.Context, port Port) (*Values, error) {
	return r.PortValues(ctx, port, PredicatePortProperty)
}

// PortHints returns the port's lv2:portHint values
func (r *Resolver) PortHints(ctx context.Context, port Port) (*Values, error) {
	return r.PortValues(ctx, port, PredicatePortHint)
}

func (r *Resolver) portFirst(ctx context.Context, port Port, predicate string) (string, bool, error) {
	values, err := r.PortValues(ctx, port, predicate)
	if err != nil {
		return "", false, err
	}
	v, ok := values.First()
	return v, ok, nil
}

func (r *Resolver) portFloat(ctx context.Context, port Port, predicate string) (float64, bool, error) {
	raw, ok, err := r.portFirst(ctx, port, predicate)
	if err != nil || !ok {
		return 0, false, err
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, contractViolation("Port", port.plugin.URI(), predicate,
			"%s is not a number: %q", port, raw)
	}
	return f, true, nil
}
