// Package services implements the driving port interfaces.
// Services load connector records, build connector trees and hand the
// resolved nodes to the engine. They own everything the engine leaves to
// its caller: cursor persistence, per-event poll serialisation, notify
// authentication, logging and metrics.
//
// Services depend only on domain, engine, the ports, logger and metrics.
package services
