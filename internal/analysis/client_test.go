package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joslsmit/ratm-app/internal/models"
)

func TestSuggestPosition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/suggest_position" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-API-Key") != "secret" {
			t.Errorf("missing api key header")
		}

		var req PositionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.CurrentRound != 3 || req.DraftBoard["Round 1"] != "Josh Allen" || req.EcrTypePreference != models.EcrRookie {
			t.Errorf("unexpected request: %+v", req)
		}
		w.Write([]byte(`{"result":"Target RB and WR"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/api/")
	got, err := c.SuggestPosition(context.Background(), "secret", PositionRequest{
		DraftBoard:        map[string]string{"Round 1": "Josh Allen"},
		CurrentRound:      3,
		EcrTypePreference: models.EcrRookie,
	})
	if err != nil {
		t.Fatalf("SuggestPosition() failed: %v", err)
	}
	if string(got) != `"Target RB and WR"` {
		t.Errorf("result = %s", got)
	}
}

func TestEvaluatePickStructuredResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req PickRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.PlayerToPick != "Travis Kelce" {
			t.Errorf("player_to_pick = %q", req.PlayerToPick)
		}
		w.Write([]byte(`{"result":{"confidence":"High","analysis":"GOOD PICK"}}`))
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL).EvaluatePick(context.Background(), "k", PickRequest{PlayerToPick: "Travis Kelce", CurrentRound: 2})
	if err != nil {
		t.Fatalf("EvaluatePick() failed: %v", err)
	}
	var body map[string]string
	if err := json.Unmarshal(got, &body); err != nil || body["confidence"] != "High" {
		t.Errorf("result = %s (%v)", got, err)
	}

	for _, name := range []string{"", "   "} {
		if _, err := NewClient(srv.URL).EvaluatePick(context.Background(), "k", PickRequest{PlayerToPick: name}); !errors.Is(err, ErrMissingPlayer) {
			t.Errorf("EvaluatePick(%q) error = %v, want ErrMissingPlayer", name, err)
		}
	}
}

func TestAnalyzeCompositionAcceptsAnalysisKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req CompositionRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Composition[models.PositionRB] != 2 {
			t.Errorf("composition = %v", req.Composition)
		}
		w.Write([]byte(`{"analysis":"Balanced roster"}`))
	}))
	defer srv.Close()

	comp := models.NewRosterComposition()
	comp[models.PositionRB] = 2
	got, err := NewClient(srv.URL).AnalyzeComposition(context.Background(), "k", CompositionRequest{Composition: comp})
	if err != nil {
		t.Fatalf("AnalyzeComposition() failed: %v", err)
	}
	if string(got) != `"Balanced roster"` {
		t.Errorf("result = %s", got)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"error body", 500, `{"error":"quota exceeded"}`, func(err error) bool {
			var apiErr *APIError
			return errors.As(err, &apiErr) && apiErr.Status == 500 && apiErr.Message == "quota exceeded"
		}},
		{"error with 200", 200, `{"error":"bad key"}`, func(err error) bool {
			var apiErr *APIError
			return errors.As(err, &apiErr) && apiErr.Message == "bad key"
		}},
		{"plain text failure", 502, `upstream down`, func(err error) bool {
			var apiErr *APIError
			return errors.As(err, &apiErr) && apiErr.Message == "upstream down"
		}},
		{"empty", 200, `{}`, func(err error) bool { return errors.Is(err, ErrEmptyResponse) }},
		{"null result", 200, `{"result":null}`, func(err error) bool { return errors.Is(err, ErrEmptyResponse) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).SuggestPosition(context.Background(), "k", PositionRequest{CurrentRound: 1})
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestMissingAPIKey(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	if _, err := c.AnalyzeComposition(context.Background(), " ", CompositionRequest{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("error = %v, want ErrMissingAPIKey", err)
	}
}
