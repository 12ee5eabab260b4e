package config

import (
	"bytes"
	"text/template"
)

var configFileTmpl = template.Must(template.New("config").Parse(`# BearTracks Server configurations

# The name of the server.
name: "{{ .Name }}"

# Logging configuration.
log:
  # Log format to use. Valid values are "json", "logfmt", and "text".
  format: "{{ .Log.Format }}"
  # Time format for the log "timestamp" field.
  # Should be described in Golang's time format.
  time_format: "{{ .Log.TimeFormat }}"
  # Path to the log file. Leave empty to write to stderr.
  #path: "{{ .Log.Path }}"

# The HTTP server configuration.
http:
  # Whether to start the HTTP server.
  enabled: {{ .HTTP.Enabled }}

  # The address on which the HTTP server will listen.
  listen_addr: "{{ .HTTP.ListenAddr }}"

  # The public URL of the HTTP server.
  public_url: "{{ .HTTP.PublicURL }}"

# The database configuration.
db:
  # The database driver to use.
  # Valid values are "sqlite" and "postgres".
  driver: "{{ .DB.Driver }}"
  # The database data source name.
  # This is driver specific and can be a file path or connection string.
  # Make sure foreign key support is enabled when using SQLite.
  data_source: "{{ .DB.DataSource }}"

# The upstream campus events feed.
feed:
  # The events list endpoint, without query parameters.
  url: "{{ .Feed.URL }}"
  # Maximum number of records requested per fetch.
  limit: {{ .Feed.Limit }}
  # The record key carrying the upstream event id.
  id_field: "{{ .Feed.IDField }}"
  # Deadline of a single fetch.
  timeout: "{{ .Feed.Timeout }}"

# The external calendar provider.
calendar:
  # The calendar RSVPs are mirrored to.
  calendar_id: "{{ .Calendar.CalendarID }}"
  # Override the Calendar API base URL. Leave empty for Google.
  #endpoint: "{{ .Calendar.Endpoint }}"
  # Override the OAuth2 userinfo API base URL used by mobile login.
  #userinfo_endpoint: "{{ .Calendar.UserinfoEndpoint }}"
  # OAuth token endpoint and client stored on newly logged in users.
  token_uri: "{{ .Calendar.TokenURI }}"
  #client_id: "{{ .Calendar.ClientID }}"
  #client_secret: "{{ .Calendar.ClientSecret }}"
  # OAuth scopes stored on newly logged in users.
  scopes: [{{ range $i, $s := .Calendar.Scopes }}{{ if $i }}, {{ end }}"{{ $s }}"{{ end }}]
  # Deadline of a single provider call.
  timeout: "{{ .Calendar.Timeout }}"

# The stats server configuration.
stats:
  # Whether to start the stats server.
  enabled: {{ .Stats.Enabled }}

  # The address on which the stats server will listen.
  listen_addr: "{{ .Stats.ListenAddr }}"

# Cron job specs.
jobs:
  # Feed ingestion schedule. Leave empty to only ingest on demand.
  ingest: "{{ .Jobs.Ingest }}"
`))

func newConfigFile(cfg *Config) string {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var b bytes.Buffer
	configFileTmpl.Execute(&b, cfg) // nolint: errcheck
	return b.String()
}
