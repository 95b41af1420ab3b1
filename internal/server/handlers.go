package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ctxlaunch/ctxlaunch/internal/settings"
	"github.com/ctxlaunch/ctxlaunch/internal/storage"
)

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// --- Catalog and command handlers ---

func (s *Server) handleListServers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.launcher.Catalog().List())
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	cmd, err := s.launcher.Command(r.Context(), name)
	if err != nil {
		writeError(w, commandStatus(name, err, s), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cmd)
}

func (s *Server) handleProvision(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	res, err := s.launcher.Provision(r.Context(), name)
	if err != nil {
		writeError(w, commandStatus(name, err, s), err.Error())
		return
	}

	type cleanupOutcome struct {
		Path  string `json:"path"`
		Error string `json:"error,omitempty"`
	}
	resp := struct {
		Path    string           `json:"path"`
		Version string           `json:"version"`
		Reused  bool             `json:"reused"`
		Cleanup []cleanupOutcome `json:"cleanup,omitempty"`
	}{
		Path:    res.Path,
		Version: res.Version,
		Reused:  res.Reused,
	}
	for _, c := range res.Cleanup {
		o := cleanupOutcome{Path: c.Path}
		if c.Err != nil {
			o.Error = c.Err.Error()
		}
		resp.Cleanup = append(resp.Cleanup, o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// commandStatus maps launcher failures to HTTP statuses: unknown servers are
// 404, configuration problems are 400, everything else (release lookup,
// download, filesystem) is 502.
func commandStatus(name string, err error, s *Server) int {
	if _, catErr := s.launcher.Catalog().Get(name); catErr != nil {
		return http.StatusNotFound
	}
	if errors.Is(err, settings.ErrMissingSettings) || errors.Is(err, settings.ErrMissingURL) {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

// --- History handlers ---

func listOptions(r *http.Request) storage.ListOptions {
	opts := storage.ListOptions{Server: r.URL.Query().Get("server")}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			opts.Limit = n
		}
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		if n, err := strconv.Atoi(offset); err == nil {
			opts.Offset = n
		}
	}
	return opts
}

func (s *Server) handleListProvisions(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListProvisions(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []storage.Provision{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleListLaunches(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListLaunches(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []storage.Launch{}
	}
	writeJSON(w, http.StatusOK, records)
}
