package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/shelfclub/bookclub-backend/tests/integration/setup"
	"github.com/stretchr/testify/require"
)

// TestClubLifecycle tests club create, lookup, shame list updates, and the
// delete cascade over /api/club
func TestClubLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	t.Log("=== Starting Test Infrastructure ===")
	infra, err := setup.StartInfra(ctx, t)
	require.NoError(t, err, "infrastructure should start successfully")
	defer func() { _ = infra.Terminate(ctx, t) }()

	t.Log("=== Running Database Migrations ===")
	err = setup.RunMigration(infra.PgURL, t)
	require.NoError(t, err, "migrations should run successfully")

	t.Log("=== Setting Up Test Application ===")
	app, db, _ := setup.SetupTestApp(t, infra.PgURL, infra.RedisURL)
	defer db.Close()

	// Setup: server and two members
	t.Log("=== Setup: Server and Members ===")
	req := setup.CreateJSONRequest(http.MethodPost, "/api/server", []byte(`{"id":"guild-1","name":"Reading Guild"}`))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	req = setup.CreateJSONRequest(http.MethodPost, "/api/member", []byte(`{"id":1,"name":"Alice","user_id":"discord-alice"}`))
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	req = setup.CreateJSONRequest(http.MethodPost, "/api/member", []byte(`{"id":2,"name":"Bob"}`))
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	// Test 1: Create club with nested members, shame list, and active session
	t.Log("=== Test 1: Create Club with Nested Payload ===")
	reqBody := []byte(`{
		"name": "Sci-Fi Circle",
		"discord_channel": "sci-fi",
		"server_id": "guild-1",
		"founded_date": "2024-03-01",
		"members": [1, 2, 99],
		"shame_list": [2],
		"active_session": {
			"book": {"title": "Dune", "author": "Frank Herbert"},
			"due_date": "2024-04-01",
			"discussions": [
				{"title": "Part One", "date": "2024-03-10"},
				{"title": "Part Two", "date": "2024-03-20", "location": "voice-1"}
			]
		}
	}`)
	req = setup.CreateJSONRequest(http.MethodPost, "/api/club", reqBody)
	resp, err = app.Test(req)
	require.NoError(t, err, "create club request should complete")
	require.Equal(t, 200, resp.StatusCode, "create club should return 200")

	result := setup.ParseJSONResponse(t, resp)
	clubId := result["id"].(string)
	require.NotEmpty(t, clubId, "create should return the club id")

	// Unknown member 99 is skipped, not linked
	linkCount := setup.CountRows(t, db, ctx, "SELECT COUNT(*) FROM memberclubs WHERE club_id = $1", clubId)
	require.Equal(t, 2, linkCount, "only the existing members should be linked")

	// Test 2: Get club detail by id
	t.Log("=== Test 2: Get Club Detail by Id ===")
	req = setup.CreateJSONRequest(http.MethodGet, "/api/club?id="+clubId, nil)
	resp, err = app.Test(req)
	require.NoError(t, err, "get club request should complete")
	require.Equal(t, 200, resp.StatusCode, "get club should return 200")

	result = setup.ParseJSONResponse(t, resp)
	require.Equal(t, "Sci-Fi Circle", result["name"])
	require.Len(t, result["members"], 2, "detail should list the two linked members")
	require.Equal(t, []interface{}{float64(2)}, result["shame_list"], "shame list should hold member 2")

	activeSession, ok := result["active_session"].(map[string]interface{})
	require.True(t, ok, "detail should carry the active session")
	book := activeSession["book"].(map[string]interface{})
	require.Equal(t, "Dune", book["title"], "active session should carry the book")
	require.Len(t, activeSession["discussions"], 2, "active session should carry its discussions")
	require.Empty(t, result["past_sessions"], "a single session club has no past sessions")

	// Test 3: Get club by discord channel
	t.Log("=== Test 3: Get Club by Discord Channel ===")
	req = setup.CreateJSONRequest(http.MethodGet, "/api/club?discord_channel=sci-fi&server_id=guild-1", nil)
	resp, err = app.Test(req)
	require.NoError(t, err, "request should complete")
	require.Equal(t, 200, resp.StatusCode, "channel lookup should return 200")

	result = setup.ParseJSONResponse(t, resp)
	require.Equal(t, clubId, result["id"], "channel lookup should resolve the same club")

	// Test 4: Shame list update skips unknown members and is idempotent
	t.Log("=== Test 4: Shame List Update ===")
	reqBody = []byte(`{"id":"` + clubId + `","shame_list":[1,2,77]}`)
	req = setup.CreateJSONRequest(http.MethodPut, "/api/club", reqBody)
	resp, err = app.Test(req)
	require.NoError(t, err, "update request should complete")
	require.Equal(t, 200, resp.StatusCode, "shame list update should return 200")

	result = setup.ParseJSONResponse(t, resp)
	require.Equal(t, false, result["club_updated"], "no club fields were updated")
	require.Equal(t, true, result["shame_list_updated"], "the shame list changed")

	shameCount := setup.CountRows(t, db, ctx, "SELECT COUNT(*) FROM shamelist WHERE club_id = $1", clubId)
	require.Equal(t, 2, shameCount, "unknown member 77 should be skipped")

	// Applying the same target again changes nothing
	req = setup.CreateJSONRequest(http.MethodPut, "/api/club", reqBody)
	resp, err = app.Test(req)
	require.NoError(t, err, "repeat update request should complete")
	require.Equal(t, 200, resp.StatusCode)

	result = setup.ParseJSONResponse(t, resp)
	require.Equal(t, false, result["shame_list_updated"], "repeating the same target should be a no-op")

	// Test 5: Shame list removal
	t.Log("=== Test 5: Shame List Removal ===")
	reqBody = []byte(`{"id":"` + clubId + `","shame_list":[1]}`)
	req = setup.CreateJSONRequest(http.MethodPut, "/api/club", reqBody)
	resp, err = app.Test(req)
	require.NoError(t, err, "removal request should complete")
	require.Equal(t, 200, resp.StatusCode)

	result = setup.ParseJSONResponse(t, resp)
	require.Equal(t, true, result["shame_list_updated"], "removing an entry is a change")

	shameCount = setup.CountRows(t, db, ctx, "SELECT COUNT(*) FROM shamelist WHERE club_id = $1", clubId)
	require.Equal(t, 1, shameCount, "only member 1 should remain shamed")

	// Test 6: Club field update
	t.Log("=== Test 6: Club Field Update ===")
	reqBody = []byte(`{"id":"` + clubId + `","name":"Sci-Fi & Fantasy Circle"}`)
	req = setup.CreateJSONRequest(http.MethodPut, "/api/club", reqBody)
	resp, err = app.Test(req)
	require.NoError(t, err, "update request should complete")
	require.Equal(t, 200, resp.StatusCode)

	result = setup.ParseJSONResponse(t, resp)
	require.Equal(t, true, result["club_updated"], "name update should be reported")

	// Test 7: Delete cascade removes everything the club owns
	t.Log("=== Test 7: Delete Club Cascade ===")
	var sessionId string
	err = db.QueryRow(ctx, "SELECT id FROM sessions WHERE club_id = $1", clubId).Scan(&sessionId)
	require.NoError(t, err, "the club should own a session")

	req = setup.CreateJSONRequest(http.MethodDelete, "/api/club?id="+clubId, nil)
	resp, err = app.Test(req)
	require.NoError(t, err, "delete club request should complete")
	require.Equal(t, 200, resp.StatusCode, "delete club should return 200")

	require.Equal(t, 0, setup.CountRows(t, db, ctx, "SELECT COUNT(*) FROM clubs WHERE id = $1", clubId), "club row should be gone")
	require.Equal(t, 0, setup.CountRows(t, db, ctx, "SELECT COUNT(*) FROM sessions WHERE club_id = $1", clubId), "sessions should be gone")
	require.Equal(t, 0, setup.CountRows(t, db, ctx, "SELECT COUNT(*) FROM discussions WHERE session_id = $1", sessionId), "discussions should be gone")
	require.Equal(t, 0, setup.CountRows(t, db, ctx, "SELECT COUNT(*) FROM shamelist WHERE club_id = $1", clubId), "shame list should be gone")
	require.Equal(t, 0, setup.CountRows(t, db, ctx, "SELECT COUNT(*) FROM memberclubs WHERE club_id = $1", clubId), "member links should be gone")

	// Members themselves survive the club deletion
	require.Equal(t, 2, setup.CountRows(t, db, ctx, "SELECT COUNT(*) FROM members"), "members should survive")

	// Test 8: Delete unknown club
	t.Log("=== Test 8: Delete Unknown Club ===")
	req = setup.CreateJSONRequest(http.MethodDelete, "/api/club?id="+clubId, nil)
	resp, err = app.Test(req)
	require.NoError(t, err, "request should complete")
	require.Equal(t, 404, resp.StatusCode, "second delete should return 404")
}
