package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"handtracker/internal/store"
	"handtracker/internal/tracker"
)

const rawHand = `PokerStars Hand #245110034881: Hold'em No Limit ($0.25/$0.50 USD) - 2024/03/15 20:01:02 ET
Table 'Aludra II' 6-max Seat #1 is the button
Seat 1: kaktus29 ($50.00 in chips)
Seat 2: heroPlayer ($50.00 in chips)
Seat 3: mr_flopped ($50.00 in chips)
heroPlayer: posts small blind $0.25
mr_flopped: posts big blind $0.50
*** HOLE CARDS ***
Dealt to heroPlayer [Ah Kh]
kaktus29: folds
heroPlayer: raises $1.50 to $2
mr_flopped: folds
Uncalled bet ($1.50) returned to heroPlayer
heroPlayer collected $1.00 from pot
*** SUMMARY ***
Total pot $1.00 | Rake $0
Seat 1: kaktus29 (button) folded before Flop (didn't bet)
Seat 2: heroPlayer (small blind) collected ($1.00)
Seat 3: mr_flopped (big blind) folded before Flop
`

func newTestServer(t *testing.T) (*Server, *tracker.Tracker) {
	t.Helper()
	tr := tracker.New(zerolog.Nop(), "heroPlayer", store.NewMemoryStore())
	return NewServer(zerolog.Nop(), tr), tr
}

func importBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	err := json.NewEncoder(&buf).Encode(map[string]any{
		"sources": []map[string]string{{"name": "a.txt", "text": rawHand}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return &buf
}

func TestImportEndpoint(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	router := srv.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/import", importBody(t)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp struct {
		Accepted   int `json:"accepted"`
		Duplicates int `json:"duplicates"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Accepted != 1 || resp.Duplicates != 0 {
		t.Errorf("accepted=%d duplicates=%d, want 1/0", resp.Accepted, resp.Duplicates)
	}

	// The same file again is all duplicates.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/import", importBody(t)))
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Accepted != 0 || resp.Duplicates != 1 {
		t.Errorf("re-import accepted=%d duplicates=%d, want 0/1", resp.Accepted, resp.Duplicates)
	}
}

func TestImportEndpointRejectsEmptyBody(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/import", strings.NewReader(`{"sources":[]}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	router := srv.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/import", importBody(t)))
	if rec.Code != http.StatusOK {
		t.Fatal(rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats?format=cash", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var snapshot struct {
		Hands      int      `json:"hands"`
		VPIP       *float64 `json:"vpip"`
		Generation uint64   `json:"generation"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&snapshot); err != nil {
		t.Fatal(err)
	}
	if snapshot.Hands != 1 || snapshot.Generation != 1 {
		t.Errorf("hands=%d generation=%d", snapshot.Hands, snapshot.Generation)
	}
	if snapshot.VPIP == nil || *snapshot.VPIP != 100 {
		t.Errorf("vpip = %v", snapshot.VPIP)
	}
}

func TestStatsEndpointQueryErrors(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	router := srv.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats?from=yesterday", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed timestamp: status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats?format=razz", nil))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown format: status = %d, want 422", rec.Code)
	}
}

func TestProgressEndpointIdle(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/progress", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var snap struct {
		CurrentStep string `json:"current_step"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.CurrentStep != "idle" {
		t.Errorf("step = %q, want idle", snap.CurrentStep)
	}
}

func TestExportEndpoint(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	router := srv.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/import", importBody(t)))
	if rec.Code != http.StatusOK {
		t.Fatal(rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hands/245110034881/export", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/toml" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `variant = "NT"`) {
		t.Errorf("export body missing variant:\n%s", rec.Body)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hands/999/export", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown hand: status = %d, want 404", rec.Code)
	}
}

func TestAnalysisEndpointWithoutBackend(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hands/245110034881/analysis", nil))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}
