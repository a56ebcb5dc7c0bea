package domain

import "strings"

// Connector is a configured instance of a backend kind.
type Connector struct {
	// ID is the unique identifier used in hub paths.
	ID string

	// Kind selects the backend adapter (e.g., "elasticsearch", "verboice").
	Kind string

	// Name is the human-readable name for this connector.
	Name string

	// OwnerEmail identifies the user who configured the connector.
	OwnerEmail string

	// Shared connectors are visible to every user and authenticate to the
	// backend with the requesting user's delegated token.
	Shared bool

	// SecretToken authenticates inbound notifications. Empty disables notify.
	SecretToken string

	// Settings contains kind-specific configuration.
	Settings map[string]string
}

// VisibleTo reports whether user may address the connector.
// Connectors without an owner are visible to everyone.
func (c *Connector) VisibleTo(user User) bool {
	if c.Shared || c.OwnerEmail == "" {
		return true
	}
	return strings.EqualFold(c.OwnerEmail, user.Email)
}

// Owner returns the identity of the connector's owner, used when no
// interactive user is present (scheduled polls).
func (c *Connector) Owner() User {
	return User{ID: c.OwnerEmail, Email: c.OwnerEmail}
}

// Setting returns the named setting, or def when unset or empty.
func (c *Connector) Setting(name, def string) string {
	if v, ok := c.Settings[name]; ok && v != "" {
		return v
	}
	return def
}

// User is the identity on whose behalf an operation runs.
type User struct {
	ID    string
	Email string
}

// IsAnonymous reports whether no identity was supplied.
func (u User) IsAnonymous() bool {
	return u.ID == "" && u.Email == ""
}
