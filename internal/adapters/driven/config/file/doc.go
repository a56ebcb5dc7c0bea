// Package file provides the file-based hub configuration.
//
// The configuration lives in a TOML file, ~/.hub/config.toml by default:
//
//	[server]
//	listen = ":8080"
//	base_url = "https://hub.example.org"
//
//	[query]
//	page_size = 50
//
//	[storage]
//	driver = "sqlite"          # memory, sqlite or postgres
//	data_dir = "~/.hub/data"
//	dsn = ""                   # postgres only
//
//	[scheduler]
//	enabled = true
//	tick = "1m"
//
//	[oauth]
//	token_url = "https://id.example.org/oauth/token"
//	client_id = "hub"
//	client_secret = "..."
//
//	[[connectors]]
//	id = "search"
//	kind = "elasticsearch"
//	owner = "ops@example.org"
//	secret_token = "..."
//	settings = { url = "http://localhost:9200" }
//
//	[[polls]]
//	connector = "act"
//	event = "cases/$events/new_case"
//	interval = "5m"
//
// The Store serves the [[connectors]] records through driven.ConnectorStore
// and reloads them when the file changes.
package file
