package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/shelfclub/bookclub-backend/tests/integration/setup"
	"github.com/stretchr/testify/require"
)

// TestMemberManagement tests member CRUD and the strict club association
// handling over /api/member
func TestMemberManagement(t *testing.T) {
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

	// Setup: two clubs
	t.Log("=== Setup: Clubs ===")
	req := setup.CreateJSONRequest(http.MethodPost, "/api/club", []byte(`{"id":"club-a","name":"Club A"}`))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	req = setup.CreateJSONRequest(http.MethodPost, "/api/club", []byte(`{"id":"club-b","name":"Club B"}`))
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	// Test 1: Create member naming an unknown club rejects everything
	t.Log("=== Test 1: Create Member with Unknown Club ===")
	reqBody := []byte(`{"name":"Alice","clubs":["club-a","club-x"]}`)
	req = setup.CreateJSONRequest(http.MethodPost, "/api/member", reqBody)
	resp, err = app.Test(req)
	require.NoError(t, err, "request should complete")
	require.Equal(t, 400, resp.StatusCode, "unknown club should reject the request")

	result := setup.ParseJSONResponse(t, resp)
	require.Contains(t, setup.ParseErrorMessage(t, result), "club-x", "the missing club id should be named")
	require.Equal(t, 0, setup.CountRows(t, db, ctx, "SELECT COUNT(*) FROM members"), "no member row should be written")
	require.Equal(t, 0, setup.CountRows(t, db, ctx, "SELECT COUNT(*) FROM memberclubs"), "no association should be written")

	// Test 2: Create member with a clubs key holding an empty array
	t.Log("=== Test 2: Create Member with Empty Clubs Array ===")
	reqBody = []byte(`{"name":"Alice","clubs":[]}`)
	req = setup.CreateJSONRequest(http.MethodPost, "/api/member", reqBody)
	resp, err = app.Test(req)
	require.NoError(t, err, "request should complete")
	require.Equal(t, 400, resp.StatusCode, "a present but empty clubs array should reject the request")
	require.Equal(t, 0, setup.CountRows(t, db, ctx, "SELECT COUNT(*) FROM members"), "no member row should be written")

	// Test 3: Create member with valid clubs
	t.Log("=== Test 3: Create Member Successfully ===")
	reqBody = []byte(`{"name":"Alice","user_id":"discord-alice","role":"reader","clubs":["club-a"]}`)
	req = setup.CreateJSONRequest(http.MethodPost, "/api/member", reqBody)
	resp, err = app.Test(req)
	require.NoError(t, err, "create member request should complete")
	require.Equal(t, 200, resp.StatusCode, "create member should return 200")

	result = setup.ParseJSONResponse(t, resp)
	memberId := int(result["id"].(float64))
	require.Equal(t, 1, memberId, "the first member gets id 1")

	// Test 4: Ids are issued as max+1
	t.Log("=== Test 4: Member Id Assignment ===")
	reqBody = []byte(`{"id":10,"name":"Bob"}`)
	req = setup.CreateJSONRequest(http.MethodPost, "/api/member", reqBody)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	reqBody = []byte(`{"name":"Carol"}`)
	req = setup.CreateJSONRequest(http.MethodPost, "/api/member", reqBody)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	result = setup.ParseJSONResponse(t, resp)
	require.Equal(t, float64(11), result["id"], "the next id should follow the highest existing one")

	// Test 5: Get member by user_id
	t.Log("=== Test 5: Get Member by User Id ===")
	req = setup.CreateJSONRequest(http.MethodGet, "/api/member?user_id=discord-alice", nil)
	resp, err = app.Test(req)
	require.NoError(t, err, "request should complete")
	require.Equal(t, 200, resp.StatusCode, "user_id lookup should return 200")

	result = setup.ParseJSONResponse(t, resp)
	require.Equal(t, float64(1), result["id"], "lookup should resolve Alice")
	clubs := result["clubs"].([]interface{})
	require.Len(t, clubs, 1, "Alice belongs to one club")
	firstClub := clubs[0].(map[string]interface{})
	require.Equal(t, "club-a", firstClub["id"], "the club summary should name club-a")

	// Test 6: Update with an unknown club changes no associations
	t.Log("=== Test 6: Update Member with Unknown Club ===")
	reqBody = []byte(`{"id":1,"clubs":["club-a","club-b","club-x"]}`)
	req = setup.CreateJSONRequest(http.MethodPut, "/api/member", reqBody)
	resp, err = app.Test(req)
	require.NoError(t, err, "request should complete")
	require.Equal(t, 400, resp.StatusCode, "unknown club should reject the update")

	require.Equal(t, 1, setup.CountRows(t, db, ctx, "SELECT COUNT(*) FROM memberclubs WHERE member_id = 1"), "associations should be untouched")

	// Test 7: Update fields and associations together
	t.Log("=== Test 7: Update Member Fields and Clubs ===")
	reqBody = []byte(`{"id":1,"points":42,"clubs":["club-b"]}`)
	req = setup.CreateJSONRequest(http.MethodPut, "/api/member", reqBody)
	resp, err = app.Test(req)
	require.NoError(t, err, "update request should complete")
	require.Equal(t, 200, resp.StatusCode, "update should return 200")

	result = setup.ParseJSONResponse(t, resp)
	require.Equal(t, true, result["member_updated"], "the points update should be reported")
	require.Equal(t, true, result["clubs_updated"], "the association change should be reported")

	require.Equal(t, 0, setup.CountRows(t, db, ctx, "SELECT COUNT(*) FROM memberclubs WHERE member_id = 1 AND club_id = 'club-a'"), "club-a link should be removed")
	require.Equal(t, 1, setup.CountRows(t, db, ctx, "SELECT COUNT(*) FROM memberclubs WHERE member_id = 1 AND club_id = 'club-b'"), "club-b link should be added")

	// Test 8: Update with no fields at all
	t.Log("=== Test 8: Update Member with No Fields ===")
	reqBody = []byte(`{"id":1}`)
	req = setup.CreateJSONRequest(http.MethodPut, "/api/member", reqBody)
	resp, err = app.Test(req)
	require.NoError(t, err, "request should complete")
	require.Equal(t, 400, resp.StatusCode, "an empty update should return 400")

	// Test 9: Delete cascade cleans shame list and associations. Member 1 is
	// shamed in club-a without being a member there, so the cached club-a
	// detail has to be dropped too.
	t.Log("=== Test 9: Delete Member Cascade ===")
	_, err = db.Exec(ctx, "INSERT INTO shamelist (club_id, member_id) VALUES ('club-a', 1), ('club-b', 1)")
	require.NoError(t, err, "seeding the shame list should succeed")

	req = setup.CreateJSONRequest(http.MethodGet, "/api/club?id=club-a", nil)
	resp, err = app.Test(req)
	require.NoError(t, err, "warming the club detail cache should complete")
	require.Equal(t, 200, resp.StatusCode)

	result = setup.ParseJSONResponse(t, resp)
	require.Contains(t, result["shame_list"], float64(1), "the warmed detail should list the shamed member")

	req = setup.CreateJSONRequest(http.MethodDelete, "/api/member?id=1", nil)
	resp, err = app.Test(req)
	require.NoError(t, err, "delete member request should complete")
	require.Equal(t, 200, resp.StatusCode, "delete member should return 200")

	require.Equal(t, 0, setup.CountRows(t, db, ctx, "SELECT COUNT(*) FROM members WHERE id = 1"), "member row should be gone")
	require.Equal(t, 0, setup.CountRows(t, db, ctx, "SELECT COUNT(*) FROM shamelist WHERE member_id = 1"), "shame entries should be gone")
	require.Equal(t, 0, setup.CountRows(t, db, ctx, "SELECT COUNT(*) FROM memberclubs WHERE member_id = 1"), "associations should be gone")
	require.Equal(t, 2, setup.CountRows(t, db, ctx, "SELECT COUNT(*) FROM clubs"), "clubs should survive")

	req = setup.CreateJSONRequest(http.MethodGet, "/api/club?id=club-a", nil)
	resp, err = app.Test(req)
	require.NoError(t, err, "request should complete")
	require.Equal(t, 200, resp.StatusCode)

	result = setup.ParseJSONResponse(t, resp)
	require.Empty(t, result["shame_list"], "the shame-only club must not serve the stale cached detail")

	// Test 10: Delete unknown member
	t.Log("=== Test 10: Delete Unknown Member ===")
	req = setup.CreateJSONRequest(http.MethodDelete, "/api/member?id=1", nil)
	resp, err = app.Test(req)
	require.NoError(t, err, "request should complete")
	require.Equal(t, 404, resp.StatusCode, "second delete should return 404")
}
