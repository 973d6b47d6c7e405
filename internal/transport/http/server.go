package transporthttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"nyayadrishti/casemetrics/internal/db"
	"nyayadrishti/casemetrics/internal/logging"
	"nyayadrishti/casemetrics/internal/metrics"
)

// Store is the side store the notes, reminders and session routes need.
type Store interface {
	GetNote(cnr string) (string, error)
	SetNote(cnr, body string) error
	ListReminders() ([]db.Reminder, error)
	ValidateToken(userID, token string) (db.Session, error)
}

// Server serves pipeline results as JSON. Sessions are issued out of band by
// the login command; the per-user routes only validate them.
type Server struct {
	pipeline *metrics.Pipeline
	data     metrics.Dataset
	store    Store
	params   metrics.Params
	log      *zap.Logger
	now      func() time.Time
}

// NewServer creates a server over one loaded dataset. store may be nil, in
// which case the note, reminder and per-user routes answer 503.
func NewServer(pipeline *metrics.Pipeline, data metrics.Dataset, store Store, params metrics.Params, log *zap.Logger) *Server {
	return &Server{
		pipeline: pipeline,
		data:     data,
		store:    store,
		params:   params,
		log:      logging.OrNop(log),
		now:      time.Now,
	}
}

// Routes registers every endpoint.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.health)
	mux.HandleFunc("GET /cases", s.handleCases)
	mux.HandleFunc("GET /cases/{cnr}", s.handleCase)
	mux.HandleFunc("GET /anomalies", s.handleAnomalies)
	mux.HandleFunc("GET /analytics", s.handleAnalytics)
	mux.HandleFunc("GET /judge", s.handleJudge)
	mux.HandleFunc("GET /lawyer", s.handleLawyer)
	mux.HandleFunc("GET /notes/{cnr}", s.handleGetNote)
	mux.HandleFunc("PUT /notes/{cnr}", s.handlePutNote)
	mux.HandleFunc("GET /reminders", s.handleReminders)
	return mux
}

// Handler is Routes wrapped in request logging and CORS.
func (s *Server) Handler() http.Handler {
	return withLogging(s.log, withCORS(s.Routes()))
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"cases":  s.data.Cases.Len(),
	})
}

func (s *Server) handleCases(w http.ResponseWriter, r *http.Request) {
	res, ok := s.run(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCase(w http.ResponseWriter, r *http.Request) {
	res, ok := s.run(w, r)
	if !ok {
		return
	}
	summary, err := metrics.Summarize(res, r.PathValue("cnr"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	res, ok := s.run(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":    metrics.SummarizeAnomalies(res.Cases),
		"thresholds": res.Explain,
		"features":   res.Features,
		"cases":      res.Anomalies(),
	})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	res, ok := s.run(w, r)
	if !ok {
		return
	}
	j, err := s.pipeline.Merge(s.data)
	if err != nil && !errors.Is(err, metrics.ErrNoJoinKey) {
		s.fail(w, err)
		return
	}
	// no hearings: stage and judge figures stay empty
	writeJSON(w, http.StatusOK, metrics.Analyze(res, j))
}

func (s *Server) handleJudge(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	j, ok := s.merge(w)
	if !ok {
		return
	}
	rep, err := metrics.JudgeView(sess, j, s.now())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleLawyer(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	j, ok := s.merge(w)
	if !ok {
		return
	}
	rep, err := metrics.LawyerView(sess, j, s.now())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	cnr := r.PathValue("cnr")
	body, err := s.store.GetNote(cnr)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"cnr_number": cnr, "body": body})
}

func (s *Server) handlePutNote(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	var payload struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&payload); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	cnr := r.PathValue("cnr")
	if err := s.store.SetNote(cnr, payload.Body); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"cnr_number": cnr, "body": payload.Body})
}

func (s *Server) handleReminders(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	list, err := s.store.ListReminders()
	if err != nil {
		s.fail(w, err)
		return
	}
	if list == nil {
		list = []db.Reminder{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reminders": list})
}

// run executes the pipeline for the request's query parameters.
func (s *Server) run(w http.ResponseWriter, r *http.Request) (*metrics.Result, bool) {
	q, err := s.parseQuery(r)
	if err != nil {
		s.fail(w, err)
		return nil, false
	}
	res, err := s.pipeline.Run(s.data, q)
	if err != nil {
		s.fail(w, err)
		return nil, false
	}
	return res, true
}

func (s *Server) merge(w http.ResponseWriter) (*metrics.Joined, bool) {
	j, err := s.pipeline.Merge(s.data)
	if err != nil {
		s.fail(w, err)
		return nil, false
	}
	return j, true
}

// authenticate checks the X-User header and bearer token against the store.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (metrics.Session, bool) {
	if s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "store disabled")
		return metrics.Session{}, false
	}
	user := strings.TrimSpace(r.Header.Get("X-User"))
	token, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if user == "" || strings.TrimSpace(token) == "" {
		s.fail(w, db.ErrInvalidToken)
		return metrics.Session{}, false
	}
	rec, err := s.store.ValidateToken(user, token)
	if err != nil {
		s.fail(w, err)
		return metrics.Session{}, false
	}
	role, ok := metrics.ParseRole(rec.Role)
	if !ok {
		s.fail(w, metrics.ErrForbidden)
		return metrics.Session{}, false
	}
	return metrics.Session{UserID: rec.UserID, Role: role, Token: rec.Token}, true
}

// parseQuery reads hearing_weight, year_weight, baseline_delay,
// contamination, years (comma separated) and today (YYYY-MM-DD).
// Absent parameters fall back to the server defaults.
func (s *Server) parseQuery(r *http.Request) (metrics.Query, error) {
	values := r.URL.Query()
	q := metrics.Query{Params: s.params, Today: s.now()}

	ints := []struct {
		name string
		dst  *int
	}{
		{"hearing_weight", &q.Params.HearingWeight},
		{"year_weight", &q.Params.YearWeight},
		{"baseline_delay", &q.Params.BaselineDelay},
	}
	for _, p := range ints {
		if v := values.Get(p.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return q, &requestError{fmt.Sprintf("%s must be an integer", p.name)}
			}
			*p.dst = n
		}
	}
	if v := values.Get("contamination"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return q, &requestError{"contamination must be a number"}
		}
		q.Params.Contamination = f
	}
	if v := values.Get("years"); v != "" {
		for _, part := range strings.Split(v, ",") {
			y, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return q, &requestError{"years must be comma-separated integers"}
			}
			q.Years = append(q.Years, y)
		}
	}
	if v := values.Get("today"); v != "" {
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return q, &requestError{"today must be YYYY-MM-DD"}
		}
		q.Today = t
	}
	return q, nil
}

type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var (
		pe *metrics.ParamError
		se *metrics.SchemaError
		re *requestError
	)
	switch {
	case errors.As(err, &pe), errors.As(err, &re):
		return http.StatusBadRequest
	case errors.As(err, &se), errors.Is(err, metrics.ErrNoJoinKey), errors.Is(err, metrics.ErrNoNumericColumns):
		return http.StatusUnprocessableEntity
	case errors.Is(err, metrics.ErrCaseNotFound), errors.Is(err, metrics.ErrNoCases):
		return http.StatusNotFound
	case errors.Is(err, db.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, metrics.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	}
	s.writeError(w, status, err.Error())
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// nothing we can do on failure; connection likely closed
	_ = json.NewEncoder(w).Encode(v)
}
