package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kass/go-land-area/pkg/area"
	"github.com/kass/go-land-area/pkg/models"
	"github.com/kass/go-land-area/pkg/rtree"
	"github.com/kass/go-land-area/pkg/session"
)

const maxBodyBytes = 4 << 20

var errNotFinite = errors.New("area is not finite, check that fixes are valid coordinates")

type pointsRequest struct {
	Points []models.GeoPoint `json:"points"`
}

// fixesRequest accepts a single fix or a batch
type fixesRequest struct {
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Points []models.GeoPoint `json:"points"`
}

type areaResponse struct {
	AreaSqm    float64 `json:"area_sqm"`
	PerimeterM float64 `json:"perimeter_m"`
	Unit       string  `json:"unit"`
	Acres      int64   `json:"acres"`
	Guntha     int64   `json:"guntha"`
	Label      string  `json:"label"`
	Summary    string  `json:"summary"`
	Text       string  `json:"text"`
}

func newAreaResponse(r area.Result) areaResponse {
	return areaResponse{
		AreaSqm:    r.SquareMeters,
		PerimeterM: r.Perimeter,
		Unit:       r.Class.Unit.String(),
		Acres:      r.Class.Acres,
		Guntha:     r.Class.Guntha,
		Label:      r.Label(),
		Summary:    r.Summary(),
		Text:       r.String(),
	}
}

type stopResponse struct {
	Session session.Snapshot `json:"session"`
	Area    areaResponse     `json:"area"`
	PlotID  string           `json:"plot_id,omitempty"`
}

type plotResponse struct {
	ID     string             `json:"id"`
	Bounds models.BoundingBox `json:"bounds"`
	Fixes  int                `json:"fixes"`
	Area   areaResponse       `json:"area"`
}

func newPlotResponse(p *rtree.Plot) plotResponse {
	return plotResponse{
		ID:     p.ID,
		Bounds: p.Bounds,
		Fixes:  len(p.Fixes),
		Area:   newAreaResponse(p.Result),
	}
}

func newPlotsResponse(plots []*rtree.Plot) []plotResponse {
	out := make([]plotResponse, len(plots))
	for i, p := range plots {
		out[i] = newPlotResponse(p)
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"plots":  s.plots.Count(),
	})
}

// handleArea estimates the area of a posted fix sequence without keeping it
func (s *Server) handleArea(w http.ResponseWriter, r *http.Request) {
	var req pointsRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	result := area.Estimate(req.Points)
	if !result.Finite() {
		s.writeError(w, http.StatusUnprocessableEntity, errNotFinite)
		return
	}
	s.writeJSON(w, http.StatusOK, newAreaResponse(result))
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	sess := session.New(session.WithLogger(s.logger), session.WithClock(s.now))
	if err := sess.Start(); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.addSession(sess)

	s.writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleRecordFixes(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	var req fixesRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	fixes := req.Points
	if req.Lat != nil || req.Lon != nil {
		if req.Lat == nil || req.Lon == nil {
			s.writeError(w, http.StatusBadRequest, errors.New("both lat and lon are required"))
			return
		}
		fixes = append(fixes, models.GeoPoint{Lat: *req.Lat, Lon: *req.Lon})
	}

	// A batch is recorded whole or not at all
	if err := sess.RecordAll(fixes...); err != nil {
		s.writeSessionError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handlePauseSession(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, (*session.Session).Pause)
}

func (s *Server) handleResumeSession(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, (*session.Session).Resume)
}

func (s *Server) transition(w http.ResponseWriter, r *http.Request, fn func(*session.Session) error) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	if err := fn(sess); err != nil {
		s.writeSessionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Snapshot())
}

// handleStopSession estimates the area and indexes the walked plot
func (s *Server) handleStopSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	result, err := sess.Stop()
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	if !result.Finite() {
		s.writeError(w, http.StatusUnprocessableEntity, errNotFinite)
		return
	}

	resp := stopResponse{
		Session: sess.Snapshot(),
		Area:    newAreaResponse(result),
	}

	plot, err := rtree.NewPlot(sess.ID(), sess.Fixes(), result)
	switch {
	case errors.Is(err, rtree.ErrNoFixes):
		// nothing walked, nothing to index
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err)
		return
	default:
		if err := s.plots.Insert(plot); err != nil && !errors.Is(err, rtree.ErrDuplicatePlot) {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		resp.PlotID = plot.ID
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleQueryPlots expects bbox=minLat,minLon,maxLat,maxLon
func (s *Server) handleQueryPlots(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("bbox")
	if raw == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("bbox query parameter is required"))
		return
	}

	box, err := parseBBox(raw)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	plots, err := s.plots.QueryBox(box)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newPlotsResponse(plots))
}

func (s *Server) handleNearestPlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid lat: %w", err))
		return
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid lon: %w", err))
		return
	}

	n := 5
	if raw := q.Get("n"); raw != "" {
		n, err = strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid n %q", raw))
			return
		}
	}

	s.writeJSON(w, http.StatusOK, newPlotsResponse(s.plots.Nearest(lat, lon, n)))
}

func (s *Server) handleGetPlot(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	plot, ok := s.plots.Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("plot %s not found", id))
		return
	}
	s.writeJSON(w, http.StatusOK, newPlotResponse(plot))
}

func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := mux.Vars(r)["id"]
	sess, ok := s.session(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("session %s not found", id))
		return nil, false
	}
	return sess, true
}

func parseBBox(raw string) (models.BoundingBox, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return models.BoundingBox{}, fmt.Errorf("bbox must be minLat,minLon,maxLat,maxLon, got %q", raw)
	}

	var v [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return models.BoundingBox{}, fmt.Errorf("invalid bbox value %q: %w", part, err)
		}
		v[i] = f
	}

	return models.BoundingBox{
		BottomLeft: models.GeoPoint{Lat: v[0], Lon: v[1]},
		TopRight:   models.GeoPoint{Lat: v[2], Lon: v[3]},
	}, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, session.ErrNotTracking),
		errors.Is(err, session.ErrPaused):
		s.writeError(w, http.StatusConflict, err)
	default:
		s.writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeJSON encodes v before committing the status, so an unencodable
// value turns into a 500 instead of an empty 200.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to encode response", zap.Int("status", status), zap.Error(err))
		status = http.StatusInternalServerError
		body, _ = json.Marshal(map[string]string{"error": "failed to encode response"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		s.logger.Debug("failed to write response", zap.Error(err))
	}
}
