// Package domain defines the core types of the connector hub.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Path: A typed, parsed address into a connector's node tree
//   - Node: EntitySet, Entity, Action and Event capability nodes
//   - Schema: Argument and property type descriptions
//   - Connector: A configured backend instance
//   - NotifyMessage: An inbound event notification awaiting dispatch
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
