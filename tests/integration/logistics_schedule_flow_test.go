package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DataflowSolutions/Oncore-sub001/internal/advancing"
	"github.com/DataflowSolutions/Oncore-sub001/internal/auth"
	"github.com/DataflowSolutions/Oncore-sub001/internal/database"
	"github.com/DataflowSolutions/Oncore-sub001/internal/logistics"
	"github.com/DataflowSolutions/Oncore-sub001/internal/schedule"
	"github.com/DataflowSolutions/Oncore-sub001/internal/server"
	"github.com/DataflowSolutions/Oncore-sub001/internal/shows"
)

const (
	signingSecret   = "integration-secret"
	tokenIssuer     = "oncore-auth"
	tokenAudience   = "oncore-api"
	userID          = "tour-manager-1"
	jsonContentType = "application/json"
)

type testEnv struct {
	server *httptest.Server
	token  string
}

func newTestEnv(testContext *testing.T) testEnv {
	testContext.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:oncore_integration_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := database.OpenSQLite(dsn, nil)
	if err != nil {
		testContext.Fatalf("failed to open sqlite: %v", err)
	}

	store, err := schedule.NewStore(db)
	if err != nil {
		testContext.Fatalf("failed to build store: %v", err)
	}
	syncer, err := schedule.NewSyncer(schedule.SyncerConfig{
		Store:      store,
		IDProvider: schedule.NewUUIDProvider(),
		Logger:     zap.NewNop(),
	})
	if err != nil {
		testContext.Fatalf("failed to build syncer: %v", err)
	}
	showsService, err := shows.NewService(shows.ServiceConfig{Database: db})
	if err != nil {
		testContext.Fatalf("failed to build shows service: %v", err)
	}
	logisticsService, err := logistics.NewService(logistics.ServiceConfig{Database: db, Syncer: syncer})
	if err != nil {
		testContext.Fatalf("failed to build logistics service: %v", err)
	}
	advancingService, err := advancing.NewService(advancing.ServiceConfig{Database: db, Syncer: syncer, Shows: showsService})
	if err != nil {
		testContext.Fatalf("failed to build advancing service: %v", err)
	}
	tokenManager, err := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte(signingSecret),
		Issuer:        tokenIssuer,
		Audience:      tokenAudience,
		TokenTTL:      time.Hour,
	})
	if err != nil {
		testContext.Fatalf("failed to build token issuer: %v", err)
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		TokenManager: tokenManager,
		Shows:        showsService,
		Logistics:    logisticsService,
		Advancing:    advancingService,
		Schedule:     store,
		Logger:       zap.NewNop(),
	})
	if err != nil {
		testContext.Fatalf("failed to build handler: %v", err)
	}

	testServer := httptest.NewServer(handler)
	testContext.Cleanup(testServer.Close)

	token, _, err := tokenManager.IssueToken(context.Background(), userID)
	if err != nil {
		testContext.Fatalf("failed to issue token: %v", err)
	}

	return testEnv{server: testServer, token: token}
}

func (e testEnv) do(testContext *testing.T, method, path, body string) (int, map[string]any) {
	testContext.Helper()
	request, err := http.NewRequest(method, e.server.URL+path, strings.NewReader(body))
	if err != nil {
		testContext.Fatalf("failed to build request: %v", err)
	}
	request.Header.Set("Authorization", "Bearer "+e.token)
	if body != "" {
		request.Header.Set("Content-Type", jsonContentType)
	}
	response, err := e.server.Client().Do(request)
	if err != nil {
		testContext.Fatalf("request failed: %v", err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		testContext.Fatalf("failed to read response: %v", err)
	}
	var payload map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			testContext.Fatalf("failed to decode response %q: %v", string(raw), err)
		}
	}
	return response.StatusCode, payload
}

func TestLogisticsToTimelineFlow(testContext *testing.T) {
	env := newTestEnv(testContext)

	// Reject calls without a token before touching any state.
	request, _ := http.NewRequest(http.MethodGet, env.server.URL+"/shows", http.NoBody)
	response, err := env.server.Client().Do(request)
	if err != nil {
		testContext.Fatalf("request failed: %v", err)
	}
	response.Body.Close()
	if response.StatusCode != http.StatusUnauthorized {
		testContext.Fatalf("expected unauthorized without token, got %d", response.StatusCode)
	}

	status, show := env.do(testContext, http.MethodPost, "/shows",
		`{"title":"Austin","date":"2025-10-03","venue":"Moody Theater","timezone":"America/Chicago","doors_at":"2025-10-03T19:00:00-05:00"}`)
	if status != http.StatusOK {
		testContext.Fatalf("expected show save to succeed, got %d: %v", status, show)
	}
	showID := show["id"].(string)

	// A flight with a departure time lands on the schedule as one item.
	status, flight := env.do(testContext, http.MethodPost, "/shows/"+showID+"/flights",
		`{"airline":"United","flight_number":"UA 100","departure_airport":"EWR","arrival_airport":"AUS","direction":"arrival","departs_at":"2025-10-03T10:00:00-04:00","arrives_at":"2025-10-03T12:45:00-05:00"}`)
	if status != http.StatusOK {
		testContext.Fatalf("expected flight save to succeed, got %d: %v", status, flight)
	}
	flightID := flight["id"].(string)

	status, payload := env.do(testContext, http.MethodGet, "/shows/"+showID+"/schedule", "")
	if status != http.StatusOK {
		testContext.Fatalf("expected schedule list to succeed, got %d", status)
	}
	items := payload["items"].([]any)
	if len(items) != 1 {
		testContext.Fatalf("expected one derived item, got %d", len(items))
	}
	derived := items[0].(map[string]any)
	if derived["title"] != "Flight United UA 100" || derived["source"] != "flight" {
		testContext.Fatalf("unexpected derived item: %v", derived)
	}

	// Updating the flight replaces the derived item, never duplicates it.
	status, _ = env.do(testContext, http.MethodPut, "/flights/"+flightID,
		fmt.Sprintf(`{"show_id":%q,"airline":"United","flight_number":"UA 100","departure_airport":"EWR","arrival_airport":"AUS","direction":"arrival","departs_at":"2025-10-03T11:30:00-04:00"}`, showID))
	if status != http.StatusOK {
		testContext.Fatalf("expected flight update to succeed, got %d", status)
	}
	_, payload = env.do(testContext, http.MethodGet, "/shows/"+showID+"/schedule", "")
	items = payload["items"].([]any)
	if len(items) != 1 {
		testContext.Fatalf("expected the derived item to be replaced, got %d items", len(items))
	}

	// The timeline groups doors and the flight into their local slots.
	status, payload = env.do(testContext, http.MethodGet, "/shows/"+showID+"/timeline?date=2025-10-03", "")
	if status != http.StatusOK {
		testContext.Fatalf("expected timeline to succeed, got %d", status)
	}
	slots := payload["slots"].([]any)
	if len(slots) != 2 {
		testContext.Fatalf("expected doors and flight slots, got %v", slots)
	}
	first := slots[0].(map[string]any)
	if first["label"] != "10:30" {
		testContext.Fatalf("expected the flight slot at 10:30 Chicago time, got %v", first["label"])
	}

	// Advancing fields with recognizable times join the schedule additively.
	status, session := env.do(testContext, http.MethodPost, "/sessions", fmt.Sprintf(`{"show_id":%q,"title":"Advance"}`, showID))
	if status != http.StatusOK {
		testContext.Fatalf("expected session save to succeed, got %d", status)
	}
	sessionID := session["id"].(string)

	status, _ = env.do(testContext, http.MethodPut, "/sessions/"+sessionID+"/grids/day_notes",
		`{"party_type":"from_you","rows":[{"id":"row-1","cells":{"soundcheck":"Soundcheck at 16:30"}}]}`)
	if status != http.StatusOK {
		testContext.Fatalf("expected grid save to succeed, got %d", status)
	}
	status, outcome := env.do(testContext, http.MethodPost, "/sessions/"+sessionID+"/schedule-sync", "")
	if status != http.StatusOK {
		testContext.Fatalf("expected session sync to succeed, got %d: %v", status, outcome)
	}
	if outcome["created"] != float64(1) {
		testContext.Fatalf("expected one created item from advancing, got %v", outcome["created"])
	}

	_, payload = env.do(testContext, http.MethodGet, "/shows/"+showID+"/schedule", "")
	if items = payload["items"].([]any); len(items) != 2 {
		testContext.Fatalf("expected flight and advancing items, got %d", len(items))
	}

	// Deleting the flight removes only its own derived item.
	status, _ = env.do(testContext, http.MethodDelete, "/flights/"+flightID, "")
	if status != http.StatusOK {
		testContext.Fatalf("expected flight delete to succeed, got %d", status)
	}
	_, payload = env.do(testContext, http.MethodGet, "/shows/"+showID+"/schedule", "")
	items = payload["items"].([]any)
	if len(items) != 1 {
		testContext.Fatalf("expected only the advancing item to remain, got %d", len(items))
	}
	remaining := items[0].(map[string]any)
	if remaining["source"] != "advancing" {
		testContext.Fatalf("expected the advancing item to survive, got %v", remaining)
	}
}
