package fuzz

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joslsmit/ratm-app/internal/auth"
	"github.com/joslsmit/ratm-app/internal/board"
	"github.com/joslsmit/ratm-app/internal/handlers"
	"github.com/joslsmit/ratm-app/internal/kv"
	"github.com/joslsmit/ratm-app/internal/logger"
	"github.com/joslsmit/ratm-app/internal/pubsub"
	"github.com/joslsmit/ratm-app/internal/session"
)

func init() {
	// Initialize logger for tests
	logger.Init()
}

func newMux() (*http.ServeMux, *session.Manager) {
	mgr := session.NewManager(kv.NewMemoryStore(), nil, nil)
	mux := http.NewServeMux()
	handlers.NewAPIHandlers(mgr, nil, pubsub.New()).Register(mux, auth.NewMockAuth().RequireAPI)
	return mux, mgr
}

func post(mux *http.ServeMux, path, data string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func checkStatus(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	if w.Code != http.StatusOK && w.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}
}

// FuzzHTTPSetRound fuzzes the HTTP set round endpoint
func FuzzHTTPSetRound(f *testing.F) {
	// Seed corpus with valid examples
	f.Add(`{"round":1,"playerName":"Christian McCaffrey"}`)
	f.Add(`{"round":15,"playerName":"Justin Tucker"}`)
	f.Add(`{"round":16,"playerName":"x"}`)
	f.Add(`{"round":-1,"playerName":""}`)
	f.Add(`{"round":"1"}`)

	f.Fuzz(func(t *testing.T, data string) {
		mux, mgr := newMux()

		w := post(mux, "/api/board/round", data)
		checkStatus(t, w)

		snap := mgr.Get(auth.DevUser.ID).Board.Snapshot()
		for i, slot := range snap {
			if slot.Round != i+1 {
				t.Fatalf("slot %d has round %d", i, slot.Round)
			}
		}
		if snap.Filled() > board.Rounds {
			t.Fatalf("filled = %d", snap.Filled())
		}
	})
}

// FuzzHTTPEditFlow fuzzes typing into a round and confirming the text
func FuzzHTTPEditFlow(f *testing.F) {
	f.Add(3, "jus")
	f.Add(0, "")
	f.Add(15, string(make([]byte, 1000)))

	f.Fuzz(func(t *testing.T, round int, text string) {
		mux, _ := newMux()

		begin, _ := json.Marshal(map[string]interface{}{"round": round})
		checkStatus(t, post(mux, "/api/board/edit/begin", string(begin)))

		input, _ := json.Marshal(map[string]interface{}{"round": round, "text": text})
		checkStatus(t, post(mux, "/api/board/edit/input", string(input)))

		confirm, _ := json.Marshal(map[string]interface{}{"round": round, "playerName": text})
		checkStatus(t, post(mux, "/api/board/edit/confirm", string(confirm)))
	})
}

// FuzzHTTPAddTarget fuzzes the HTTP add target endpoint
func FuzzHTTPAddTarget(f *testing.F) {
	// Seed corpus
	f.Add(`{"playerName":"Justin Jefferson"}`)
	f.Add(`{"playerName":""}`)
	f.Add(`{"playerName":"` + string(make([]byte, 10000)) + `"}`)

	f.Fuzz(func(t *testing.T, data string) {
		mux, mgr := newMux()

		checkStatus(t, post(mux, "/api/targets/add", data))
		checkStatus(t, post(mux, "/api/targets/add", data))

		if n := mgr.Get(auth.DevUser.ID).Targets.Len(); n > 1 {
			t.Fatalf("same name added %d times", n)
		}
	})
}

// FuzzHTTPTheme fuzzes the HTTP theme endpoint
func FuzzHTTPTheme(f *testing.F) {
	f.Add(`{"theme":"dark"}`)
	f.Add(`{"theme":"light"}`)
	f.Add(`{}`)
	f.Add(`{"theme":"neon"}`)

	f.Fuzz(func(t *testing.T, data string) {
		mux, mgr := newMux()

		checkStatus(t, post(mux, "/api/settings/theme", data))

		theme := mgr.Get(auth.DevUser.ID).Settings.Theme()
		if theme != "light" && theme != "dark" {
			t.Fatalf("theme = %q", theme)
		}
	})
}

// FuzzStoredBoard fuzzes decoding of a persisted draft board
func FuzzStoredBoard(f *testing.F) {
	f.Add(`{"1":"Christian McCaffrey","5":"Justin Jefferson"}`)
	f.Add(`{"0":"x","16":"y"," 3 ":" padded "}`)
	f.Add(`[1,2,3]`)
	f.Add(`null`)
	f.Add(`{"1":5}`)

	f.Fuzz(func(t *testing.T, raw string) {
		store := kv.NewMemoryStore()
		store.Set(board.StorageKey, raw)
		p := board.NewPersistence(store)

		snap, err := p.Load()
		for i, slot := range snap {
			if slot.Round != i+1 {
				t.Fatalf("slot %d has round %d", i, slot.Round)
			}
		}
		if err != nil {
			if snap.Filled() != 0 {
				t.Fatalf("corrupt data produced %d picks", snap.Filled())
			}
			return
		}

		if err := p.Save(snap); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
		again, err := p.Load()
		if err != nil {
			t.Fatalf("reload failed: %v", err)
		}
		if again != snap {
			t.Fatalf("round trip changed board: %v != %v", again, snap)
		}
	})
}

// FuzzJSONParsing fuzzes general JSON parsing
func FuzzJSONParsing(f *testing.F) {
	// Seed various JSON structures
	f.Add(`{"key":"value"}`)
	f.Add(`[1,2,3]`)
	f.Add(`null`)
	f.Add(`"string"`)
	f.Add(`123`)
	f.Add(`true`)

	f.Fuzz(func(t *testing.T, data string) {
		var result interface{}
		// Should not panic on any input
		json.Unmarshal([]byte(data), &result)
	})
}
