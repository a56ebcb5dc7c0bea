// Package engine implements the connector-independent core of the hub:
// path resolution, reflection, paginated listing, validated invocation
// and the two event polling disciplines.
//
// Every function here is synchronous and keeps no state between calls.
// Callers (the hub services) supply the connector root node, the user,
// and any URL builders, and own cursor persistence and locking.
//
// # Import Rules
//
//   - Can Import: domain, standard library, schema validation
//   - Cannot Import: adapters, connectors, services
package engine
