// Package lv2 resolves plugin metadata from installed LV2 bundles.
//
// # Overview
//
// A Plugin names a plugin and the graph that describes it. A Resolver turns
// (plugin, predicate) pairs into Values by building a structured select
// query, serializing it, and handing the text to an Engine. Everything else
// in the package, from names and port classes to latency and host
// features, is a derived accessor on top of three primitives:
//
//   - Resolve: objects of a single predicate
//   - ResolveViaListAndFilter: objects of a predicate on the port whose
//     lv2:index matches
//   - CountMatches: number of distinct objects of a predicate
//
// No match is an empty Values, never an error. Errors come in two kinds,
// matched with errors.Is:
//
//   - ErrContractViolation: the caller broke an invariant (empty
//     predicate, port index out of range, zero or several latency ports)
//   - ErrEngineFailure: the engine could not execute the query
//
// # Example Usage
//
//	resolver := lv2.NewResolver(engine, lv2.WithLogger(logger))
//
//	name, ok, err := resolver.Name(ctx, plugin)
//	if err != nil {
//		return err
//	}
//	if !ok {
//		name = plugin.URI()
//	}
//
//	ports, err := resolver.Ports(ctx, plugin)
//	for _, port := range ports {
//		class, _ := resolver.PortClass(ctx, port)
//		fmt.Println(port.Index(), class)
//	}
//
// # Language Tags
//
// Literals keep their language tag in the underlying data, but accessors
// do not filter on it. Name returns the first value in result order.
package lv2
