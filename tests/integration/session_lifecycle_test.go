package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/shelfclub/bookclub-backend/tests/integration/setup"
	"github.com/stretchr/testify/require"
)

// TestSessionLifecycle tests session create, detail, partial update, and the
// delete cascade over /api/session
func TestSessionLifecycle(t *testing.T) {
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

	// Setup: a club to own the sessions
	t.Log("=== Setup: Club ===")
	req := setup.CreateJSONRequest(http.MethodPost, "/api/club", []byte(`{"id":"club-a","name":"Club A"}`))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	// Test 1: Create session for an unknown club
	t.Log("=== Test 1: Create Session for Unknown Club ===")
	reqBody := []byte(`{"club_id":"nope","book":{"title":"Dune","author":"Frank Herbert"}}`)
	req = setup.CreateJSONRequest(http.MethodPost, "/api/session", reqBody)
	resp, err = app.Test(req)
	require.NoError(t, err, "request should complete")
	require.Equal(t, 404, resp.StatusCode, "unknown club should return 404")

	// Test 2: Create session without a book
	t.Log("=== Test 2: Create Session Without a Book ===")
	reqBody = []byte(`{"club_id":"club-a"}`)
	req = setup.CreateJSONRequest(http.MethodPost, "/api/session", reqBody)
	resp, err = app.Test(req)
	require.NoError(t, err, "request should complete")
	require.Equal(t, 400, resp.StatusCode, "missing book should return 400")

	// Test 3: Create session successfully
	t.Log("=== Test 3: Create Session Successfully ===")
	reqBody = []byte(`{
		"club_id": "club-a",
		"book": {"title": "Dune", "author": "Frank Herbert", "year": 1965},
		"due_date": "2024-04-01",
		"discussions": [
			{"title": "Part One", "date": "2024-03-10"},
			{"title": "Part Two", "date": "2024-03-20"}
		]
	}`)
	req = setup.CreateJSONRequest(http.MethodPost, "/api/session", reqBody)
	resp, err = app.Test(req)
	require.NoError(t, err, "create session request should complete")
	require.Equal(t, 200, resp.StatusCode, "create session should return 200")

	result := setup.ParseJSONResponse(t, resp)
	sessionId := result["id"].(string)
	require.NotEmpty(t, sessionId, "create should return the session id")

	// Test 4: Get session detail
	t.Log("=== Test 4: Get Session Detail ===")
	req = setup.CreateJSONRequest(http.MethodGet, "/api/session?id="+sessionId, nil)
	resp, err = app.Test(req)
	require.NoError(t, err, "get session request should complete")
	require.Equal(t, 200, resp.StatusCode, "get session should return 200")

	result = setup.ParseJSONResponse(t, resp)
	club := result["club"].(map[string]interface{})
	require.Equal(t, "club-a", club["id"], "detail should carry the owning club")
	book := result["book"].(map[string]interface{})
	require.Equal(t, "Dune", book["title"], "detail should carry the book")
	require.Equal(t, float64(1965), book["year"], "detail should carry the book year")
	require.Len(t, result["discussions"], 2, "detail should carry the discussions")

	// Test 5: Active session picks the latest due date
	t.Log("=== Test 5: Active Session Ordering ===")
	reqBody = []byte(`{
		"club_id": "club-a",
		"book": {"title": "Hyperion", "author": "Dan Simmons"},
		"due_date": "2024-05-01"
	}`)
	req = setup.CreateJSONRequest(http.MethodPost, "/api/session", reqBody)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	result = setup.ParseJSONResponse(t, resp)
	secondSessionId := result["id"].(string)

	req = setup.CreateJSONRequest(http.MethodGet, "/api/club?id=club-a", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	result = setup.ParseJSONResponse(t, resp)
	activeSession := result["active_session"].(map[string]interface{})
	require.Equal(t, secondSessionId, activeSession["id"], "the later due date wins")
	pastSessions := result["past_sessions"].([]interface{})
	require.Len(t, pastSessions, 1, "the earlier session becomes a past session")
	firstPast := pastSessions[0].(map[string]interface{})
	require.Equal(t, sessionId, firstPast["id"], "the first session is listed as past")

	// Test 6: Partial update merges the book and upserts discussions
	t.Log("=== Test 6: Partial Session Update ===")
	var existingDiscussionId string
	err = db.QueryRow(ctx, "SELECT id FROM discussions WHERE session_id = $1 ORDER BY date ASC LIMIT 1", sessionId).Scan(&existingDiscussionId)
	require.NoError(t, err, "the session should own discussions")

	reqBody = []byte(`{
		"id": "` + sessionId + `",
		"due_date": "2024-04-15",
		"book": {"page_count": 412},
		"discussions": [
			{"id": "` + existingDiscussionId + `", "location": "voice-2"},
			{"title": "Wrap Up", "date": "2024-04-10"},
			{"title": "No Date"}
		],
		"discussion_ids_to_delete": []
	}`)
	req = setup.CreateJSONRequest(http.MethodPut, "/api/session", reqBody)
	resp, err = app.Test(req)
	require.NoError(t, err, "update request should complete")
	require.Equal(t, 200, resp.StatusCode, "update should return 200")

	result = setup.ParseJSONResponse(t, resp)
	require.Equal(t, true, result["session_updated"], "the due date change should be reported")
	require.Equal(t, true, result["book_updated"], "the book patch should be reported")
	require.Equal(t, true, result["discussions_updated"], "the discussion changes should be reported")

	req = setup.CreateJSONRequest(http.MethodGet, "/api/session?id="+sessionId, nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	result = setup.ParseJSONResponse(t, resp)

	require.Equal(t, "2024-04-15", result["due_date"], "due date should be updated")
	book = result["book"].(map[string]interface{})
	require.Equal(t, "Dune", book["title"], "untouched book fields keep their values")
	require.Equal(t, float64(412), book["page_count"], "patched book field should be written")

	discussions := result["discussions"].([]interface{})
	require.Len(t, discussions, 3, "one insert applied, the dateless one skipped")

	locationPatched := false
	for _, raw := range discussions {
		discussion := raw.(map[string]interface{})
		if discussion["id"] == existingDiscussionId {
			require.Equal(t, "voice-2", discussion["location"], "existing discussion should be patched")
			locationPatched = true
		}
	}
	require.True(t, locationPatched, "the patched discussion should still be listed")

	// Test 7: Discussion deletion by id
	t.Log("=== Test 7: Discussion Deletion ===")
	reqBody = []byte(`{"id":"` + sessionId + `","discussion_ids_to_delete":["` + existingDiscussionId + `"]}`)
	req = setup.CreateJSONRequest(http.MethodPut, "/api/session", reqBody)
	resp, err = app.Test(req)
	require.NoError(t, err, "request should complete")
	require.Equal(t, 200, resp.StatusCode)

	result = setup.ParseJSONResponse(t, resp)
	require.Equal(t, true, result["discussions_updated"], "the deletion should be reported")
	require.Equal(t, 2, setup.CountRows(t, db, ctx, "SELECT COUNT(*) FROM discussions WHERE session_id = $1", sessionId), "one discussion should be removed")

	// Test 8: Update with no fields at all
	t.Log("=== Test 8: Update Session with No Fields ===")
	reqBody = []byte(`{"id":"` + sessionId + `"}`)
	req = setup.CreateJSONRequest(http.MethodPut, "/api/session", reqBody)
	resp, err = app.Test(req)
	require.NoError(t, err, "request should complete")
	require.Equal(t, 400, resp.StatusCode, "an empty update should return 400")

	var dueDate string
	err = db.QueryRow(ctx, "SELECT due_date FROM sessions WHERE id = $1", sessionId).Scan(&dueDate)
	require.NoError(t, err)
	require.Equal(t, "2024-04-15", dueDate, "the stored session should be untouched")

	// Test 9: Delete session removes its discussions and book
	t.Log("=== Test 9: Delete Session Cascade ===")
	var bookId int
	err = db.QueryRow(ctx, "SELECT book_id FROM sessions WHERE id = $1", sessionId).Scan(&bookId)
	require.NoError(t, err, "the session should reference a book")

	req = setup.CreateJSONRequest(http.MethodDelete, "/api/session?id="+sessionId, nil)
	resp, err = app.Test(req)
	require.NoError(t, err, "delete session request should complete")
	require.Equal(t, 200, resp.StatusCode, "delete session should return 200")

	require.Equal(t, 0, setup.CountRows(t, db, ctx, "SELECT COUNT(*) FROM sessions WHERE id = $1", sessionId), "session row should be gone")
	require.Equal(t, 0, setup.CountRows(t, db, ctx, "SELECT COUNT(*) FROM discussions WHERE session_id = $1", sessionId), "discussions should be gone")
	require.Equal(t, 0, setup.CountRows(t, db, ctx, "SELECT COUNT(*) FROM books WHERE id = $1", bookId), "book should be gone")

	// Test 10: Get deleted session
	t.Log("=== Test 10: Get Deleted Session ===")
	req = setup.CreateJSONRequest(http.MethodGet, "/api/session?id="+sessionId, nil)
	resp, err = app.Test(req)
	require.NoError(t, err, "request should complete")
	require.Equal(t, 404, resp.StatusCode, "deleted session should return 404")
}
