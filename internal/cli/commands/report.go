package commands

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/lv2meta/lv2meta/pkg/lv2"
)

// pluginReport is everything inspect shows about one plugin
type pluginReport struct {
	URI              string       `json:"uri"`
	Name             string       `json:"name,omitempty"`
	BundleURI        string       `json:"bundle_uri"`
	LibraryURI       string       `json:"library_uri"`
	DataURI          string       `json:"data_uri"`
	DataPath         string       `json:"data_path,omitempty"`
	Version          string       `json:"version,omitempty"`
	Verified         bool         `json:"verified"`
	HasLicense       bool         `json:"has_license"`
	HasLatency       bool         `json:"has_latency"`
	LatencyPort      *uint32      `json:"latency_port,omitempty"`
	Properties       []string     `json:"properties"`
	Hints            []string     `json:"hints"`
	RequiredFeatures []string     `json:"required_features"`
	OptionalFeatures []string     `json:"optional_features"`
	Ports            []portReport `json:"ports"`
}

type portReport struct {
	Index      uint32   `json:"index"`
	Class      string   `json:"class"`
	Symbol     string   `json:"symbol,omitempty"`
	Name       string   `json:"name,omitempty"`
	Minimum    *float64 `json:"minimum,omitempty"`
	Maximum    *float64 `json:"maximum,omitempty"`
	Default    *float64 `json:"default,omitempty"`
	Properties []string `json:"properties"`
	Hints      []string `json:"hints"`
	control    bool
}

// buildReport resolves every attribute of p. The first failing query
// aborts the report, except for an ambiguous latency port which is only
// logged.
func buildReport(ctx context.Context, r *lv2.Resolver, p *lv2.Plugin, logger *zap.Logger) (*pluginReport, error) {
	rep := &pluginReport{
		URI:        p.URI(),
		BundleURI:  p.BundleURI(),
		LibraryURI: p.LibraryURI(),
		DataURI:    p.DataURI(),
	}
	if path, ok := p.DataPath(); ok {
		rep.DataPath = path
	}

	var err error
	if rep.Name, _, err = r.Name(ctx, p); err != nil {
		return nil, err
	}
	if rep.Verified, err = r.Verify(ctx, p); err != nil {
		return nil, err
	}
	if rep.HasLicense, err = r.HasLicense(ctx, p); err != nil {
		return nil, err
	}

	version, ok, err := r.Version(ctx, p)
	if err != nil {
		return nil, err
	}
	if ok {
		rep.Version = version.String()
	}

	if rep.HasLatency, err = r.HasLatencyPort(ctx, p); err != nil {
		return nil, err
	}
	if rep.HasLatency {
		idx, err := r.LatencyPortIndex(ctx, p)
		switch {
		case errors.Is(err, lv2.ErrContractViolation):
			logger.Warn("latency port index unavailable",
				zap.String("plugin", p.URI()),
				zap.Error(err))
		case err != nil:
			return nil, err
		default:
			rep.LatencyPort = &idx
		}
	}

	lists := []struct {
		dst   *[]string
		fetch func(context.Context, *lv2.Plugin) (*lv2.Values, error)
	}{
		{&rep.Properties, r.Properties},
		{&rep.Hints, r.Hints},
		{&rep.RequiredFeatures, r.RequiredFeatures},
		{&rep.OptionalFeatures, r.OptionalFeatures},
	}
	for _, l := range lists {
		values, err := l.fetch(ctx, p)
		if err != nil {
			return nil, err
		}
		*l.dst = values.Slice()
	}

	ports, err := r.Ports(ctx, p)
	if err != nil {
		return nil, err
	}
	rep.Ports = make([]portReport, 0, len(ports))
	for _, port := range ports {
		pr, err := buildPortReport(ctx, r, port)
		if err != nil {
			return nil, err
		}
		rep.Ports = append(rep.Ports, *pr)
	}

	return rep, nil
}

func buildPortReport(ctx context.Context, r *lv2.Resolver, port lv2.Port) (*portReport, error) {
	class, err := r.PortClass(ctx, port)
	if err != nil {
		return nil, err
	}
	pr := &portReport{Index: port.Index(), Class: class.String(), control: class.IsControl()}

	if pr.Symbol, _, err = r.PortSymbol(ctx, port); err != nil {
		return nil, err
	}
	if pr.Name, _, err = r.PortName(ctx, port); err != nil {
		return nil, err
	}

	// ranges only mean something for control ports
	if pr.control {
		ranges := []struct {
			dst   **float64
			fetch func(context.Context, lv2.Port) (float64, bool, error)
		}{
			{&pr.Minimum, r.PortMinimum},
			{&pr.Maximum, r.PortMaximum},
			{&pr.Default, r.PortDefault},
		}
		for _, rg := range ranges {
			v, ok, err := rg.fetch(ctx, port)
			if err != nil {
				return nil, err
			}
			if ok {
				value := v
				*rg.dst = &value
			}
		}
	}

	props, err := r.PortProperties(ctx, port)
	if err != nil {
		return nil, err
	}
	pr.Properties = props.Slice()

	hints, err := r.PortHints(ctx, port)
	if err != nil {
		return nil, err
	}
	pr.Hints = hints.Slice()

	return pr, nil
}
