// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ConnectorStore: Connector configuration records
//   - ConnectorFactory: Builds a connector's root node from its record
//   - CursorStore: Event cursor persistence, keyed by (connector, event path)
//   - TaskQueue: Accepts inbound notifications for asynchronous dispatch
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - TokenProvider: Delegated bearer tokens. Without it, shared connectors fail with ErrUnauthorized.
//   - CursorLocker: Cross-process poll serialisation. Without it, polls are serialised in-process only.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or engine package
package driven
