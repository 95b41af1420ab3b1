package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ServerDef describes a context server that can be provisioned from GitHub
// releases and launched over stdio.
type ServerDef struct {
	// Name is the identifier hosts use to request this server.
	Name string `yaml:"name"`

	// Repo is the GitHub repository ("owner/name") publishing releases.
	Repo string `yaml:"repo"`

	// Binary is the executable name inside release archives. Release asset
	// names are derived from it as {binary}_{os}_{arch}.{ext}.
	Binary string `yaml:"binary"`

	// URLEnv and KeyEnv name the environment variables the server reads its
	// target URL and credential from. The same variables, when set in the
	// launcher's own environment, override configured settings.
	URLEnv string `yaml:"url_env"`
	KeyEnv string `yaml:"key_env"`
}

// Catalog maps server names to their definitions.
type Catalog struct {
	defs map[string]ServerDef
}

// builtin servers are available without any manifest.
var builtin = []ServerDef{
	{
		Name:   "grafana",
		Repo:   "grafana/mcp-grafana",
		Binary: "mcp-grafana",
		URLEnv: "GRAFANA_URL",
		KeyEnv: "GRAFANA_API_KEY",
	},
}

// New returns a catalog containing only the built-in server definitions.
func New() *Catalog {
	c := &Catalog{defs: make(map[string]ServerDef)}
	for _, def := range builtin {
		c.defs[def.Name] = def
	}
	return c
}

// Load returns the built-in catalog merged with definitions from a YAML
// manifest. Manifest entries with a known name replace the built-in entry.
// An empty path returns just the built-ins.
func Load(path string) (*Catalog, error) {
	c := New()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	var manifest struct {
		Servers []ServerDef `yaml:"servers"`
	}
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}

	for _, def := range manifest.Servers {
		if err := def.validate(); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", path, err)
		}
		c.defs[def.Name] = def
	}
	return c, nil
}

func (d ServerDef) validate() error {
	switch {
	case d.Name == "":
		return fmt.Errorf("server definition missing name")
	case d.Repo == "":
		return fmt.Errorf("server %q missing repo", d.Name)
	case d.Binary == "":
		return fmt.Errorf("server %q missing binary", d.Name)
	case d.URLEnv == "":
		return fmt.Errorf("server %q missing url_env", d.Name)
	}
	return nil
}

// Get returns the definition for a named server.
func (c *Catalog) Get(name string) (ServerDef, error) {
	def, ok := c.defs[name]
	if !ok {
		return ServerDef{}, fmt.Errorf("unknown server: %s", name)
	}
	return def, nil
}

// List returns all definitions ordered by name.
func (c *Catalog) List() []ServerDef {
	defs := make([]ServerDef, 0, len(c.defs))
	for _, def := range c.defs {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}
