package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"handtracker/internal/hand"
)

func TestAnalyzeHand(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/analyze" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req struct {
			Hands []hand.Hand `json:"hands"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if len(req.Hands) != 1 || req.Hands[0].ID != "245110034881" {
			t.Errorf("request hands = %+v", req.Hands)
		}
		json.NewEncoder(w).Encode(map[string]string{"commentary": "standard open from the small blind"})
	}))
	defer srv.Close()

	a := NewHTTPAnalyzer(srv.URL)
	got, err := a.AnalyzeHand(context.Background(), &hand.Hand{ID: "245110034881", Hero: "heroPlayer"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "standard open from the small blind" {
		t.Errorf("commentary = %q", got)
	}
}

func TestAnalyzeSessionBackendError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a := NewHTTPAnalyzer(srv.URL)
	if _, err := a.AnalyzeSession(context.Background(), []hand.Hand{{ID: "1"}}); err == nil {
		t.Fatal("expected error from 503 backend")
	}
}

func TestAnalyzeRespectsContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewHTTPAnalyzer(srv.URL)
	if _, err := a.AnalyzeHand(ctx, &hand.Hand{ID: "1"}); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
