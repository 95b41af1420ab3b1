package provision

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/ctxlaunch/ctxlaunch/internal/catalog"
	"github.com/ctxlaunch/ctxlaunch/internal/release"
)

// ReleaseSource provides release metadata and artifact downloads.
// *release.Client is the production implementation.
type ReleaseSource interface {
	Latest(ctx context.Context, repo string) (*release.Release, error)
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Event reports provisioning progress. Types: "reused", "resolving",
// "downloading", "installed", "cleanup".
type Event struct {
	Type    string `json:"type"`
	Server  string `json:"server"`
	Version string `json:"version,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message,omitempty"`
}

// CleanupResult is the outcome of removing one stale entry from a server's
// working directory. Err is nil on success.
type CleanupResult struct {
	Path string
	Err  error
}

// Result describes a provisioned binary.
type Result struct {
	// Path is the executable path, inside the version directory.
	Path string

	// Version is the release tag the binary came from. Empty when the
	// in-memory cache satisfied the request.
	Version string

	// Reused is true when no download happened: either the cache held a
	// live path, or the version directory already contained the executable.
	Reused bool

	// Cleanup lists the stale entries removed (or not) after a fresh
	// install. Failures here never fail the provisioning pass.
	Cleanup []CleanupResult
}

type cacheEntry struct {
	path    string
	version string
}

// Provisioner ensures a locally executable copy of each server's binary
// exists, downloading the latest release on demand and evicting stale
// versions. Resolved paths are memoized per server for the lifetime of the
// Provisioner; the memo is invalidated only by the file disappearing.
type Provisioner struct {
	workDir string
	source  ReleaseSource

	// OnEvent, when set, receives progress events. Called synchronously.
	OnEvent func(Event)

	mu     sync.Mutex
	cached map[string]cacheEntry

	// Overridable for tests; default to the host platform.
	goos   string
	goarch string
}

// New creates a Provisioner that stores binaries under workDir, one
// subdirectory per server.
func New(workDir string, source ReleaseSource) *Provisioner {
	return &Provisioner{
		workDir: workDir,
		source:  source,
		cached:  make(map[string]cacheEntry),
		goos:    runtime.GOOS,
		goarch:  runtime.GOARCH,
	}
}

func (p *Provisioner) emit(ev Event) {
	if p.OnEvent != nil {
		p.OnEvent(ev)
	}
}

// Ensure returns the path to a usable binary for the server, performing
// network and filesystem work only when necessary. Safe for concurrent use;
// passes are serialized.
func (p *Provisioner) Ensure(ctx context.Context, def catalog.ServerDef) (*Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Fast path: a memoized path that still points at a regular file is
	// returned without any network call.
	if entry, ok := p.cached[def.Name]; ok && isRegularFile(entry.path) {
		p.emit(Event{Type: "reused", Server: def.Name, Version: entry.version, Path: entry.path})
		return &Result{Path: entry.path, Version: entry.version, Reused: true}, nil
	}

	p.emit(Event{Type: "resolving", Server: def.Name})

	rel, err := p.source.Latest(ctx, def.Repo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReleaseLookup, err)
	}

	wantName, err := assetName(def.Binary, p.goos, p.goarch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetNotFound, err)
	}

	var asset *release.Asset
	for i := range rel.Assets {
		if rel.Assets[i].Name == wantName {
			asset = &rel.Assets[i]
			break
		}
	}
	if asset == nil {
		return nil, fmt.Errorf("%w: release %s of %s has no asset named %q",
			ErrAssetNotFound, rel.Version, def.Repo, wantName)
	}

	serverDir := filepath.Join(p.workDir, def.Name)
	versionDir := filepath.Join(serverDir, def.Binary+"-"+rel.Version)
	if err := os.MkdirAll(versionDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", ErrFilesystem, versionDir, err)
	}

	binPath := filepath.Join(versionDir, def.Binary)
	result := &Result{Path: binPath, Version: rel.Version}

	if isRegularFile(binPath) {
		result.Reused = true
	} else {
		p.emit(Event{Type: "downloading", Server: def.Name, Version: rel.Version, Message: asset.Name})

		if err := p.install(ctx, asset.DownloadURL, def.Binary, binPath); err != nil {
			return nil, err
		}

		result.Cleanup = cleanupStale(serverDir, filepath.Base(versionDir))
		for _, c := range result.Cleanup {
			if c.Err != nil {
				log.Printf("warning: could not remove stale entry %s: %v", c.Path, c.Err)
				p.emit(Event{Type: "cleanup", Server: def.Name, Path: c.Path, Message: c.Err.Error()})
			}
		}
	}

	p.emit(Event{Type: "installed", Server: def.Name, Version: rel.Version, Path: binPath})
	p.cached[def.Name] = cacheEntry{path: binPath, version: rel.Version}
	return result, nil
}

// install downloads the archive at url and places the executable at binPath.
func (p *Provisioner) install(ctx context.Context, url, binary, binPath string) error {
	body, err := p.source.Download(ctx, url)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer body.Close()

	archive, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("%w: reading archive: %v", ErrDownload, err)
	}

	if err := extractExecutable(archive, usesZip(p.goos), binary, binPath); err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}

	if err := os.Chmod(binPath, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrPermission, err)
	}
	return nil
}

// cleanupStale removes every entry in serverDir other than keep. Removal is
// best-effort: each outcome is reported, none aborts the pass.
func cleanupStale(serverDir, keep string) []CleanupResult {
	entries, err := os.ReadDir(serverDir)
	if err != nil {
		return []CleanupResult{{Path: serverDir, Err: err}}
	}

	var results []CleanupResult
	for _, entry := range entries {
		if entry.Name() == keep {
			continue
		}
		path := filepath.Join(serverDir, entry.Name())
		results = append(results, CleanupResult{Path: path, Err: os.RemoveAll(path)})
	}
	return results
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
