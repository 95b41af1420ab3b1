package launcher

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/ctxlaunch/ctxlaunch/internal/catalog"
	"github.com/ctxlaunch/ctxlaunch/internal/provision"
	"github.com/ctxlaunch/ctxlaunch/internal/settings"
	"github.com/ctxlaunch/ctxlaunch/internal/storage"
)

// Command is a fully formed descriptor for spawning a context server.
type Command struct {
	Path string   `json:"path"`
	Args []string `json:"args"`
	Env  []string `json:"env"`
}

// Assemble builds the command descriptor for a server from its resolved
// settings and a provisioned binary path. Pure: no I/O, no side effects.
// The URL variable always leads the environment; the credential variable is
// appended only when a credential was resolved.
func Assemble(def catalog.ServerDef, ls settings.LaunchSettings, binPath string) Command {
	env := []string{def.URLEnv + "=" + ls.URL}
	if ls.APIKey != "" {
		env = append(env, def.KeyEnv+"="+ls.APIKey)
	}

	var args []string
	if len(ls.EnabledTools) > 0 {
		args = append(args, "--enabled-tools", strings.Join(ls.EnabledTools, ","))
	}
	if ls.Debug {
		args = append(args, "--debug")
	}

	return Command{Path: binPath, Args: args, Env: env}
}

// Provisioner is the binary-acquisition dependency of the Launcher.
type Provisioner interface {
	Ensure(ctx context.Context, def catalog.ServerDef) (*provision.Result, error)
}

// Launcher turns a server name and its configured settings payload into a
// spawnable command, provisioning the binary on demand and recording the
// outcome.
type Launcher struct {
	catalog     *catalog.Catalog
	payloads    map[string]settings.Payload
	provisioner Provisioner
	store       storage.Store
}

// New creates a Launcher. store may be nil, in which case no history is
// recorded.
func New(cat *catalog.Catalog, payloads map[string]settings.Payload, p Provisioner, store storage.Store) *Launcher {
	return &Launcher{
		catalog:     cat,
		payloads:    payloads,
		provisioner: p,
		store:       store,
	}
}

// Catalog returns the launcher's server catalog.
func (l *Launcher) Catalog() *catalog.Catalog {
	return l.catalog
}

// payload returns the configured settings payload for a server, or nil when
// none was configured.
func (l *Launcher) payload(name string) *settings.Payload {
	p, ok := l.payloads[name]
	if !ok {
		return nil
	}
	return &p
}

// Provision ensures the server's binary exists and records the pass.
func (l *Launcher) Provision(ctx context.Context, name string) (*provision.Result, error) {
	def, err := l.catalog.Get(name)
	if err != nil {
		return nil, err
	}

	res, err := l.provisioner.Ensure(ctx, def)
	if err != nil {
		return nil, err
	}
	l.recordProvision(ctx, name, res)
	return res, nil
}

// Command resolves settings, provisions the binary, and assembles the
// command descriptor for a server. Failures from the settings resolver and
// the provisioner propagate verbatim.
func (l *Launcher) Command(ctx context.Context, name string) (Command, error) {
	def, err := l.catalog.Get(name)
	if err != nil {
		return Command{}, err
	}

	ls, err := settings.Resolve(def, l.payload(name))
	if err != nil {
		return Command{}, err
	}

	res, err := l.provisioner.Ensure(ctx, def)
	if err != nil {
		return Command{}, err
	}
	l.recordProvision(ctx, name, res)

	cmd := Assemble(def, ls, res.Path)
	l.recordLaunch(ctx, name, cmd)
	return cmd, nil
}

func (l *Launcher) recordProvision(ctx context.Context, name string, res *provision.Result) {
	if l.store == nil {
		return
	}
	failures := 0
	for _, c := range res.Cleanup {
		if c.Err != nil {
			failures++
		}
	}
	rec := &storage.Provision{
		ID:              uuid.New().String(),
		Server:          name,
		Version:         res.Version,
		Path:            res.Path,
		Reused:          res.Reused,
		CleanupFailures: failures,
	}
	if err := l.store.RecordProvision(ctx, rec); err != nil {
		log.Printf("failed to record provision for %s: %v", name, err)
	}
}

func (l *Launcher) recordLaunch(ctx context.Context, name string, cmd Command) {
	if l.store == nil {
		return
	}
	rec := &storage.Launch{
		ID:     uuid.New().String(),
		Server: name,
		Path:   cmd.Path,
		Args:   cmd.Args,
	}
	if err := l.store.RecordLaunch(ctx, rec); err != nil {
		log.Printf("failed to record launch for %s: %v", name, err)
	}
}

// String renders the command in shell-like form for logs and CLI output.
func (c Command) String() string {
	parts := append([]string{c.Path}, c.Args...)
	return fmt.Sprintf("%s (env: %d vars)", strings.Join(parts, " "), len(c.Env))
}
