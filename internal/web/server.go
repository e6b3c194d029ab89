// Package web serves the dataset and training views over HTTP.
package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"facenet/internal/trainer"
	"facenet/internal/viz"
)

const (
	curveWidth  = 640
	curveHeight = 400
)

// TrainFunc runs a training job for the /train page.
type TrainFunc func() (*trainer.Report, error)

// Server holds the dataset being viewed and the last training report.
type Server struct {
	grids  []viz.Grid
	train  TrainFunc
	logger *slog.Logger

	mu     sync.Mutex
	report *trainer.Report
}

// NewServer returns a viewer over grids. train may be nil, in which case the
// /train page is not served.
func NewServer(grids []viz.Grid, train TrainFunc, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{grids: grids, train: train, logger: logger}
}

// Router wires the viewer's routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/", http.RedirectHandler("/grids/all", http.StatusFound))
	r.HandleFunc("/grids/{filter:(?:all|faces|nonfaces)}", s.Grids()).Methods(http.MethodGet)
	r.HandleFunc("/grid/{row:[0-9]+}", s.Grid()).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.Stats()).Methods(http.MethodGet)
	if s.train != nil {
		r.HandleFunc("/train", s.Train()).Methods(http.MethodGet)
	}
	return r
}

// Grids renders the HTML card view, optionally filtered by label.
func (s *Server) Grids() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		grids := s.grids
		switch mux.Vars(r)["filter"] {
		case "faces":
			grids = viz.Filter(grids, true, false)
		case "nonfaces":
			grids = viz.Filter(grids, false, true)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		page := viz.Page{Stats: viz.ComputeStats(s.grids), Grids: grids}
		if err := viz.WritePage(w, page); err != nil {
			s.logError(w, err)
		}
	}
}

// Grid writes one row as ASCII art.
func (s *Server) Grid() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		row, err := strconv.Atoi(mux.Vars(r)["row"])
		if err != nil {
			http.Error(w, "bad row", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := viz.Display(w, s.grids, row); err != nil {
			if errors.Is(err, viz.ErrGridNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			s.logError(w, err)
		}
	}
}

// Stats writes label counts as plain text.
func (s *Server) Stats() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := viz.WriteStats(w, viz.ComputeStats(s.grids)); err != nil {
			s.logError(w, err)
		}
	}
}

// Train runs training on first request, or again with ?rerun=1, and shows the
// error curve with the test result. Requests are serialized.
func (s *Server) Train() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.report == nil || r.URL.Query().Get("rerun") == "1" {
			report, err := s.train()
			if err != nil {
				s.logError(w, err)
				return
			}
			s.report = report
		}
		curve, err := viz.ErrorCurveSVG(s.report.EpochErrors, curveWidth, curveHeight)
		if err != nil {
			s.logError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		page := viz.Page{
			Title:  fmt.Sprintf("Training run %s", s.report.RunID),
			Stats:  viz.ComputeStats(s.grids),
			Curve:  curve,
			Result: &s.report.Test,
		}
		if err := viz.WritePage(w, page); err != nil {
			s.logError(w, err)
		}
	}
}

func (s *Server) logError(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", "err", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
