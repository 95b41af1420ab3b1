package settings

import (
	"errors"
	"fmt"
	"os"

	"github.com/ctxlaunch/ctxlaunch/internal/catalog"
)

var (
	// ErrMissingSettings is returned when no settings payload exists for a server.
	ErrMissingSettings = errors.New("missing server settings")

	// ErrMissingURL is returned when neither the environment nor the settings
	// payload provides a server URL.
	ErrMissingURL = errors.New("missing server URL")
)

// Payload is the structured settings a host associates with one server.
// All fields are optional at this level; Resolve enforces what is required.
type Payload struct {
	URL          string   `mapstructure:"url" json:"url"`
	APIKey       string   `mapstructure:"api_key" json:"api_key"`
	EnabledTools []string `mapstructure:"enabled_tools" json:"enabled_tools"`
	Debug        bool     `mapstructure:"debug" json:"debug"`
}

// LaunchSettings is the normalized configuration for one launch. Immutable
// once constructed.
type LaunchSettings struct {
	URL          string
	APIKey       string
	EnabledTools []string
	Debug        bool
}

// Resolve merges a settings payload with process environment variables into
// LaunchSettings. The environment variables named by the server definition
// take precedence over the payload for URL and credential; the tool filter
// and debug flag come from the payload alone. A nil payload is an error, as
// is the absence of a URL from both sources. Resolve performs no I/O beyond
// environment lookups.
func Resolve(def catalog.ServerDef, payload *Payload) (LaunchSettings, error) {
	if payload == nil {
		return LaunchSettings{}, fmt.Errorf("%w for %s; add a servers.%s section to the config",
			ErrMissingSettings, def.Name, def.Name)
	}

	url := payload.URL
	if v, ok := os.LookupEnv(def.URLEnv); ok && v != "" {
		url = v
	}
	if url == "" {
		return LaunchSettings{}, fmt.Errorf("%w for %s; set servers.%s.url or the %s environment variable",
			ErrMissingURL, def.Name, def.Name, def.URLEnv)
	}

	key := payload.APIKey
	if def.KeyEnv != "" {
		if v, ok := os.LookupEnv(def.KeyEnv); ok && v != "" {
			key = v
		}
	}

	return LaunchSettings{
		URL:          url,
		APIKey:       key,
		EnabledTools: payload.EnabledTools,
		Debug:        payload.Debug,
	}, nil
}
