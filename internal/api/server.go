// Package api serves read-only views of the Trippy archive over HTTP.
package api

import (
	"net/http"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/monet-trippy/internal/db"
	"github.com/banshee-data/monet-trippy/internal/export"
	"github.com/banshee-data/monet-trippy/internal/httputil"
	"github.com/banshee-data/monet-trippy/internal/stimulus"
)

// StatsFunc returns the per-frame luminance summary of a visual.
type StatsFunc func(v stimulus.Visual) (*mat.Dense, error)

type Server struct {
	db    *db.DB
	stats StatsFunc
}

// NewServer returns a server reading from d. stats is usually backed by the
// array cache; when nil the summary is computed on every request.
func NewServer(d *db.DB, stats StatsFunc) *Server {
	if stats == nil {
		stats = func(v stimulus.Visual) (*mat.Dense, error) {
			m, err := v.Movie()
			if err != nil {
				return nil, err
			}
			return export.FrameStats(m), nil
		}
	}
	return &Server{
		db:    d,
		stats: stats,
	}
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /conditions", s.listConditions)
	mux.HandleFunc("GET /conditions/{hash}", s.showCondition)
	mux.HandleFunc("GET /conditions/{hash}/luminance", s.showLuminance)
	mux.HandleFunc("GET /verifications", s.listVerifications)
	mux.HandleFunc("GET /discrepancies", s.listDiscrepancies)
	mux.HandleFunc("GET /{$}", s.homeHandler)
	return mux
}

func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Trippy archive. See /conditions, /verifications, /discrepancies and /debug/.\n"))
}

func (s *Server) listConditions(w http.ResponseWriter, r *http.Request) {
	hashes, err := s.db.ListConditionHashes()
	if err != nil {
		httputil.WriteError(w, "list conditions", err)
		return
	}
	httputil.WriteJSONOK(w, map[string]any{
		"conditions": hashes,
		"count":      len(hashes),
	})
}

func (s *Server) trippy(w http.ResponseWriter, r *http.Request) (*stimulus.Trippy, bool) {
	cond, err := s.db.GetCondition(r.PathValue("hash"))
	if err != nil {
		httputil.WriteError(w, "load condition", err)
		return nil, false
	}
	tr, err := stimulus.TrippyFromCondition(cond)
	if err != nil {
		httputil.WriteError(w, "build condition", err)
		return nil, false
	}
	return tr, true
}

func (s *Server) showCondition(w http.ResponseWriter, r *http.Request) {
	tr, ok := s.trippy(w, r)
	if !ok {
		return
	}
	trials, err := s.db.TrialsForCondition(r.PathValue("hash"))
	if err != nil {
		httputil.WriteError(w, "list trials", err)
		return
	}
	httputil.WriteJSONOK(w, map[string]any{
		"condition_hash": r.PathValue("hash"),
		"params":         tr.Params(),
		"frames":         tr.FrameCount(),
		"trials":         len(trials),
	})
}

func (s *Server) showLuminance(w http.ResponseWriter, r *http.Request) {
	tr, ok := s.trippy(w, r)
	if !ok {
		return
	}
	stats, err := s.stats(tr)
	if err != nil {
		httputil.WriteError(w, "reconstruct", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := export.WriteLuminanceHTML(w, "Trippy "+r.PathValue("hash"), stats, tr.FPS()); err != nil {
		http.Error(w, "Failed to render chart", http.StatusInternalServerError)
	}
}

func (s *Server) listVerifications(w http.ResponseWriter, r *http.Request) {
	vs, err := s.db.Verifications(r.URL.Query().Get("run"))
	if err != nil {
		httputil.WriteError(w, "list verifications", err)
		return
	}
	httputil.WriteJSONOK(w, map[string]any{
		"verifications": vs,
		"count":         len(vs),
	})
}

func (s *Server) listDiscrepancies(w http.ResponseWriter, r *http.Request) {
	ds, err := s.db.Discrepancies()
	if err != nil {
		httputil.WriteError(w, "list discrepancies", err)
		return
	}
	httputil.WriteJSONOK(w, map[string]any{
		"discrepancies": ds,
		"count":         len(ds),
	})
}
