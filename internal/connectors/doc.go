// Package connectors registers the backend connector kinds with a
// ConnectorFactory. Each kind lives in its own subpackage and builds a fresh
// node tree per request from a connector record.
package connectors
