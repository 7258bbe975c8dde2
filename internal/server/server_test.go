package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"whodunit/internal/config"
	"whodunit/internal/content"
	"whodunit/internal/store"
)

func newTestServer(t *testing.T, cfg config.Config) *httptest.Server {
	t.Helper()
	srv := New(store.NewMemory(), content.Default(), cfg)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postAction(t *testing.T, ts *httptest.Server, action string, payload map[string]any) (*http.Response, map[string]any) {
	t.Helper()
	body, err := json.Marshal(map[string]any{"action": action, "payload": payload})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(ts.URL+"/api/game", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	return resp, decodeBody(t, resp)
}

func getGame(t *testing.T, ts *httptest.Server, gameID string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(ts.URL + "/api/game?gameId=" + gameID)
	if err != nil {
		t.Fatal(err)
	}
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func createSession(t *testing.T, ts *httptest.Server, gameType string) (gameID, pin string) {
	t.Helper()
	resp, body := postAction(t, ts, "CREATE_SESSION", map[string]any{
		"gameType":   gameType,
		"minPlayers": 3,
		"name":       "Host",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d (%v)", http.StatusCreated, resp.StatusCode, body)
	}
	gameID, _ = body["gameId"].(string)
	pin, _ = body["hostPin"].(string)
	if gameID == "" || pin == "" {
		t.Fatalf("expected gameId and hostPin, got %v", body)
	}
	return gameID, pin
}

func TestCreateSessionAPI(t *testing.T) {
	ts := newTestServer(t, config.Default())
	gameID, pin := createSession(t, ts, content.GameTypeMystery)
	if len(gameID) != 6 || len(pin) != 4 {
		t.Fatalf("unexpected identifier shapes: %q / %q", gameID, pin)
	}

	resp, body := getGame(t, ts, gameID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if body["phase"] != "LOBBY" {
		t.Fatalf("expected LOBBY, got %v", body["phase"])
	}
	players, ok := body["players"].([]any)
	if !ok || len(players) != 1 {
		t.Fatalf("expected one player, got %v", body["players"])
	}
	if clues, ok := body["revealedClues"].([]any); !ok || len(clues) != 0 {
		t.Fatalf("expected an empty revealedClues list, got %v", body["revealedClues"])
	}
	if _, ok := body["hostPin"]; ok {
		t.Fatal("the snapshot must not leak the host pin")
	}
}

func TestGetGameNotFound(t *testing.T) {
	ts := newTestServer(t, config.Default())
	resp, body := getGame(t, ts, "ZZZZZZ")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
	if body["error"] == "" {
		t.Fatal("expected an error message")
	}
}

func TestJoinAPI(t *testing.T) {
	ts := newTestServer(t, config.Default())
	gameID, _ := createSession(t, ts, content.GameTypeMystery)

	resp, body := postAction(t, ts, "JOIN", map[string]any{"gameId": gameID, "name": "Ada"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d (%v)", http.StatusOK, resp.StatusCode, body)
	}
	player, ok := body["player"].(map[string]any)
	if !ok {
		t.Fatalf("expected a player, got %v", body)
	}
	if player["isHost"] != false || player["name"] != "Ada" {
		t.Fatalf("unexpected player %v", player)
	}
	if player["characterId"] != nil {
		t.Fatalf("expected a null characterId, got %v", player["characterId"])
	}

	// Same name from the same address is an idempotent rejoin.
	resp2, body2 := postAction(t, ts, "JOIN", map[string]any{"gameId": gameID, "name": "ada"})
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d (%v)", http.StatusOK, resp2.StatusCode, body2)
	}
	player2 := body2["player"].(map[string]any)
	if player2["id"] != player["id"] {
		t.Fatalf("expected the same player id, got %v and %v", player["id"], player2["id"])
	}
}

func TestAdminActionBadPinMutatesNothing(t *testing.T) {
	ts := newTestServer(t, config.Default())
	gameID, pin := createSession(t, ts, content.GameTypeMystery)
	badPin := "0000"
	if badPin == pin {
		badPin = "0001"
	}

	resp, _ := postAction(t, ts, "ADMIN_ACTION", map[string]any{
		"gameId":    gameID,
		"pin":       badPin,
		"subAction": "SET_PHASE",
		"phase":     "INTRO",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, resp.StatusCode)
	}
	_, body := getGame(t, ts, gameID)
	if body["phase"] != "LOBBY" {
		t.Fatalf("a rejected action must not change the phase, got %v", body["phase"])
	}
}

func TestSetPhaseAPI(t *testing.T) {
	ts := newTestServer(t, config.Default())
	gameID, pin := createSession(t, ts, content.GameTypeMystery)

	resp, body := postAction(t, ts, "ADMIN_ACTION", map[string]any{
		"gameId":    gameID,
		"pin":       pin,
		"subAction": "SET_PHASE",
		"phase":     "MURDER",
	})
	if resp.StatusCode != http.StatusOK || body["success"] != true {
		t.Fatalf("expected success, got %d (%v)", resp.StatusCode, body)
	}
	_, snap := getGame(t, ts, gameID)
	if snap["phase"] != "MURDER" {
		t.Fatalf("expected MURDER, got %v", snap["phase"])
	}
}

func TestRevealClueAPIIdempotent(t *testing.T) {
	ts := newTestServer(t, config.Default())
	gameID, pin := createSession(t, ts, content.GameTypeMystery)

	for i := 0; i < 2; i++ {
		resp, body := postAction(t, ts, "ADMIN_ACTION", map[string]any{
			"gameId":    gameID,
			"pin":       pin,
			"subAction": "REVEAL_CLUE",
			"clueId":    "clue-3",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected success, got %d (%v)", resp.StatusCode, body)
		}
	}
	_, snap := getGame(t, ts, gameID)
	clues, _ := snap["revealedClues"].([]any)
	if len(clues) != 1 || clues[0] != "clue-3" {
		t.Fatalf("expected exactly one revealed clue, got %v", snap["revealedClues"])
	}
}

func TestKickAPI(t *testing.T) {
	ts := newTestServer(t, config.Default())
	gameID, pin := createSession(t, ts, content.GameTypeMystery)
	_, body := postAction(t, ts, "JOIN", map[string]any{"gameId": gameID, "name": "Ada"})
	playerID := body["player"].(map[string]any)["id"].(string)

	resp, body := postAction(t, ts, "KICK", map[string]any{
		"gameId":   gameID,
		"pin":      pin,
		"playerId": playerID,
	})
	if resp.StatusCode != http.StatusOK || body["success"] != true {
		t.Fatalf("expected success, got %d (%v)", resp.StatusCode, body)
	}
	_, snap := getGame(t, ts, gameID)
	players, _ := snap["players"].([]any)
	if len(players) != 1 {
		t.Fatalf("expected only the host to remain, got %v", snap["players"])
	}
}

func TestResetAPI(t *testing.T) {
	ts := newTestServer(t, config.Default())
	gameID, pin := createSession(t, ts, content.GameTypeMystery)
	postAction(t, ts, "JOIN", map[string]any{"gameId": gameID, "name": "Ada"})
	postAction(t, ts, "ADMIN_ACTION", map[string]any{
		"gameId": gameID, "pin": pin, "subAction": "REVEAL_CLUE", "clueId": "clue-1",
	})

	resp, body := postAction(t, ts, "ADMIN_ACTION", map[string]any{
		"gameId": gameID, "pin": pin, "subAction": "RESET",
	})
	if resp.StatusCode != http.StatusOK || body["success"] != true {
		t.Fatalf("expected success, got %d (%v)", resp.StatusCode, body)
	}
	_, snap := getGame(t, ts, gameID)
	players, _ := snap["players"].([]any)
	clues, _ := snap["revealedClues"].([]any)
	if snap["phase"] != "LOBBY" || len(players) != 1 || len(clues) != 0 {
		t.Fatalf("expected a clean lobby, got %v", snap)
	}
	if snap["gameId"] != gameID {
		t.Fatal("reset must keep the game id")
	}
}

func TestUnknownAction(t *testing.T) {
	ts := newTestServer(t, config.Default())
	resp, _ := postAction(t, ts, "DANCE", map[string]any{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestCleanupEndpoint(t *testing.T) {
	cfg := config.Default()
	cfg.CleanupSecret = "sweep-secret"
	ts := newTestServer(t, cfg)

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/cleanup", nil)
	req.Header.Set("X-Cleanup-Secret", "wrong")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	decodeBody(t, resp)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodPost, ts.URL+"/api/cleanup", nil)
	req.Header.Set("X-Cleanup-Secret", "sweep-secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	body := decodeBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if body["deleted"] != float64(0) {
		t.Fatalf("expected zero deletions on an empty store, got %v", body["deleted"])
	}
}

func TestCORSHeaders(t *testing.T) {
	ts := newTestServer(t, config.Default())
	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/game", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("expected permissive CORS on the game endpoint")
	}
}

func TestRateLimitedAction(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimitPerMinute = 1
	cfg.RateLimitBurst = 2
	ts := newTestServer(t, cfg)

	var last int
	for i := 0; i < 3; i++ {
		resp, _ := postAction(t, ts, "CREATE_SESSION", map[string]any{
			"gameType": content.GameTypeMystery,
			"name":     "Host",
		})
		last = resp.StatusCode
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected status %d after the burst, got %d", http.StatusTooManyRequests, last)
	}
}
