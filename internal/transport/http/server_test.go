package transporthttp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"nyayadrishti/casemetrics/internal/db"
	"nyayadrishti/casemetrics/internal/frame"
	"nyayadrishti/casemetrics/internal/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testCases = "cnr_number,filing_year,total_hearings,disposal_days,date_filed,current_status,petitioneradvocate,respondentadvocate,disposal_year\n" +
	"C1,2020,4,0,2020-01-10,Pending,R. Sharma,K. Rao,\n" +
	"C2,2021,2,300,2024-05-01,Disposed,P. Iyer,R. SHARMA,2022\n" +
	"C3,2019,9,500,2019-02-01,Pending,M. Das,N. Sen,\n"

const testHearings = "cnr_number,beforehonourablejudges,nexthearingdate,previoushearing,remappedstages\n" +
	"C1,Hon. A,2024-06-01,,Evidence\n" +
	"C1,Hon. A,2024-06-05,2024-05-20,Arguments\n" +
	"C2,Hon. B,2024-07-20,,Evidence\n" +
	"C3,Hon. A,2024-05-01,2024-04-01,Evidence\n"

func mustFrame(t *testing.T, data string) *frame.Frame {
	t.Helper()
	f, err := frame.ReadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	return f
}

// newTestServer wires a server over the sample tables and an in-memory store.
func newTestServer(t *testing.T, withHearings bool) (*Server, *db.DB) {
	t.Helper()
	store, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	ds := metrics.Dataset{Cases: mustFrame(t, testCases)}
	if withHearings {
		ds.Hearings = mustFrame(t, testHearings)
	}
	srv := NewServer(metrics.NewPipeline(nil, metrics.NewCache(8)), ds, store, metrics.DefaultParams(), nil)
	srv.now = func() time.Time { return time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC) }
	return srv, store
}

func do(t *testing.T, h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func authHeaders(user, token string) map[string]string {
	return map[string]string{"X-User": user, "Authorization": "Bearer " + token}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, true)
	rec := do(t, srv.Routes(), http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload map[string]any
	decode(t, rec, &payload)
	if payload["status"] != "ok" || payload["cases"] != float64(3) {
		t.Errorf("payload = %v", payload)
	}
}

func TestCases(t *testing.T) {
	srv, _ := newTestServer(t, true)
	h := srv.Routes()

	rec := do(t, h, http.MethodGet, "/cases", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var res struct {
		Today string           `json:"today"`
		Cases []map[string]any `json:"cases"`
	}
	decode(t, rec, &res)
	if len(res.Cases) != 3 {
		t.Errorf("got %d cases, want 3", len(res.Cases))
	}
	if res.Today != "2024-06-01" {
		t.Errorf("today = %q", res.Today)
	}
	for _, c := range res.Cases {
		if _, ok := c["predicted_disposal"]; !ok {
			t.Errorf("case lacks predicted_disposal: %v", c)
		}
	}

	rec = do(t, h, http.MethodGet, "/cases?years=2020", "", nil)
	decode(t, rec, &res)
	if len(res.Cases) != 1 || res.Cases[0]["cnr_number"] != "C1" {
		t.Errorf("year filter returned %v", res.Cases)
	}
}

func TestYearFilterWithoutRowsIsNotFound(t *testing.T) {
	srv, _ := newTestServer(t, true)
	h := srv.Routes()
	for _, target := range []string{"/cases?years=1900", "/analytics?years=1900", "/anomalies?years=1900"} {
		rec := do(t, h, http.MethodGet, target, "", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d: %s", target, rec.Code, rec.Body)
			continue
		}
		var payload map[string]string
		decode(t, rec, &payload)
		if !strings.Contains(payload["error"], "1900") {
			t.Errorf("%s: error = %q", target, payload["error"])
		}
	}
}

func TestCases_BadQuery(t *testing.T) {
	srv, _ := newTestServer(t, true)
	h := srv.Routes()

	tests := []struct {
		name, target string
	}{
		{"out of range", "/cases?hearing_weight=99"},
		{"not a number", "/cases?contamination=lots"},
		{"bad years", "/cases?years=2020,soon"},
		{"bad today", "/cases?today=June"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target, "", nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body)
			}
			var payload map[string]string
			decode(t, rec, &payload)
			if payload["error"] == "" {
				t.Error("error message missing")
			}
		})
	}
}

func TestCaseSummary(t *testing.T) {
	srv, _ := newTestServer(t, true)
	h := srv.Routes()

	rec := do(t, h, http.MethodGet, "/cases/C2", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var s metrics.CaseSummary
	decode(t, rec, &s)
	if s.Status != "Disposed" || s.Risk != "Normal" {
		t.Errorf("summary = %+v", s)
	}

	if rec := do(t, h, http.MethodGet, "/cases/NOPE", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown case: expected 404, got %d", rec.Code)
	}
}

func TestMissingColumnsIsUnprocessable(t *testing.T) {
	store, _ := db.OpenDB(":memory:")
	defer store.Close()
	ds := metrics.Dataset{Cases: mustFrame(t, "cnr_number,total_hearings\nA,1\n")}
	srv := NewServer(metrics.NewPipeline(nil, nil), ds, store, metrics.DefaultParams(), nil)

	rec := do(t, srv.Routes(), http.MethodGet, "/cases", "", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
}

func TestAnomaliesAndAnalytics(t *testing.T) {
	srv, _ := newTestServer(t, true)
	h := srv.Routes()

	rec := do(t, h, http.MethodGet, "/anomalies", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("anomalies: %d", rec.Code)
	}
	var an struct {
		Summary metrics.AnomalySummary `json:"summary"`
	}
	decode(t, rec, &an)
	if an.Summary.Total != 3 {
		t.Errorf("anomaly total = %d", an.Summary.Total)
	}

	rec = do(t, h, http.MethodGet, "/analytics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("analytics: %d", rec.Code)
	}
	var rep metrics.AnalyticsReport
	decode(t, rec, &rep)
	if rep.Totals.Total != 3 || rep.Totals.Disposed != 2 {
		t.Errorf("totals = %+v", rep.Totals)
	}
	if len(rep.JudgeWorkload) != 2 || rep.JudgeWorkload[0].Label != "Hon. A" {
		t.Errorf("judge workload = %+v", rep.JudgeWorkload)
	}
}

func TestAnalytics_WithoutHearings(t *testing.T) {
	srv, _ := newTestServer(t, false)
	rec := do(t, srv.Routes(), http.MethodGet, "/analytics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 without hearings, got %d", rec.Code)
	}
}

// login issues a session the way the login command does.
func login(t *testing.T, store *db.DB, user, role string) string {
	t.Helper()
	sess, err := store.CreateSession(user, role)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	return sess.Token
}

func TestNoSelfServiceLogin(t *testing.T) {
	srv, _ := newTestServer(t, true)
	h := srv.Routes()

	rec := do(t, h, http.MethodPost, "/login", `{"user_id":"Hon. A","role":"judge"}`, nil)
	if rec.Code == http.StatusOK || rec.Code == http.StatusCreated {
		t.Fatalf("anonymous login issued a session: %d %s", rec.Code, rec.Body)
	}

	// a made-up token for a real judge does not open the view
	if rec := do(t, h, http.MethodGet, "/judge", "", authHeaders("Hon. A", "guessed")); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestJudgeRoute(t *testing.T) {
	srv, store := newTestServer(t, true)
	h := srv.Routes()
	token := login(t, store, "Hon. A", "judge")

	rec := do(t, h, http.MethodGet, "/judge", "", authHeaders("Hon. A", token))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var rep metrics.JudgeReport
	decode(t, rec, &rep)
	if len(rep.Cases) != 3 || len(rep.TodayHearings) != 1 {
		t.Errorf("judge report: %d cases, %d today", len(rep.Cases), len(rep.TodayHearings))
	}

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"no credentials", nil, http.StatusUnauthorized},
		{"wrong token", authHeaders("Hon. A", "bogus"), http.StatusUnauthorized},
		{"token for another user", authHeaders("Hon. B", token), http.StatusUnauthorized},
		{"lawyer on judge view", authHeaders("sharma", login(t, store, "sharma", "lawyer")), http.StatusForbidden},
		{"judge without cases", authHeaders("Hon. Z", login(t, store, "Hon. Z", "judge")), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, h, http.MethodGet, "/judge", "", tt.headers); rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body)
			}
		})
	}
}

func TestJudgeRoute_NoHearings(t *testing.T) {
	srv, store := newTestServer(t, false)
	h := srv.Routes()
	token := login(t, store, "Hon. A", "judge")
	if rec := do(t, h, http.MethodGet, "/judge", "", authHeaders("Hon. A", token)); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 without a join key, got %d", rec.Code)
	}
}

func TestLawyerRoute(t *testing.T) {
	srv, store := newTestServer(t, true)
	h := srv.Routes()
	token := login(t, store, "sharma", "lawyer")

	rec := do(t, h, http.MethodGet, "/lawyer", "", authHeaders("sharma", token))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var rep metrics.LawyerReport
	decode(t, rec, &rep)
	if rep.Active != 2 || len(rep.Reminders) != 2 {
		t.Errorf("lawyer report: active=%d reminders=%d", rep.Active, len(rep.Reminders))
	}
}

func TestNotesAndReminders(t *testing.T) {
	srv, store := newTestServer(t, true)
	h := srv.Routes()
	auth := authHeaders("sharma", login(t, store, "sharma", "lawyer"))

	rec := do(t, h, http.MethodGet, "/notes/C1", "", auth)
	var note map[string]string
	decode(t, rec, &note)
	if rec.Code != http.StatusOK || note["body"] != "" {
		t.Errorf("empty note: %d %v", rec.Code, note)
	}

	if rec := do(t, h, http.MethodPut, "/notes/C1", `{"body":"call client"}`, auth); rec.Code != http.StatusOK {
		t.Fatalf("put note: %d", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/notes/C1", "", auth)
	decode(t, rec, &note)
	if note["body"] != "call client" {
		t.Errorf("note = %v", note)
	}
	if rec := do(t, h, http.MethodPut, "/notes/C1", `{"body":"x"}`, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated put: expected 401, got %d", rec.Code)
	}

	if err := store.SetReminder("C1", time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	rec = do(t, h, http.MethodGet, "/reminders", "", auth)
	var rem struct {
		Reminders []db.Reminder `json:"reminders"`
	}
	decode(t, rec, &rem)
	if len(rem.Reminders) != 1 || rem.Reminders[0].RemindOn != "2024-06-03" {
		t.Errorf("reminders = %+v", rem.Reminders)
	}
}

func TestNilStore(t *testing.T) {
	ds := metrics.Dataset{Cases: mustFrame(t, testCases), Hearings: mustFrame(t, testHearings)}
	srv := NewServer(metrics.NewPipeline(nil, nil), ds, nil, metrics.DefaultParams(), nil)
	h := srv.Routes()
	for _, target := range []string{"/judge", "/reminders", "/notes/C1"} {
		if rec := do(t, h, http.MethodGet, target, "", nil); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: expected 503, got %d", target, rec.Code)
		}
	}
	// pipeline routes work without a store
	if rec := do(t, h, http.MethodGet, "/cases", "", nil); rec.Code != http.StatusOK {
		t.Errorf("/cases: %d", rec.Code)
	}
}

func TestHandler_CORSAndLiveServer(t *testing.T) {
	srv, _ := newTestServer(t, true)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/cases", nil)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("preflight: %d %v", resp.StatusCode, resp.Header)
	}

	resp, err = ts.Client().Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz: %d", resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&metrics.ParamError{Name: "x"}, http.StatusBadRequest},
		{&metrics.SchemaError{Missing: []string{"a"}}, http.StatusUnprocessableEntity},
		{metrics.ErrNoJoinKey, http.StatusUnprocessableEntity},
		{metrics.ErrCaseNotFound, http.StatusNotFound},
		{metrics.ErrNoCases, http.StatusNotFound},
		{db.ErrInvalidToken, http.StatusUnauthorized},
		{metrics.ErrForbidden, http.StatusForbidden},
		{http.ErrHandlerTimeout, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
