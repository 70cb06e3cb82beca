package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/shelfclub/bookclub-backend/tests/integration/setup"
	"github.com/stretchr/testify/require"
)

// TestServerManagement tests the /api/server endpoint end to end
func TestServerManagement(t *testing.T) {
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

	// Test 1: Create server with explicit id
	t.Log("=== Test 1: Create Server Successfully ===")
	reqBody := []byte(`{"id":"guild-1","name":"Reading Guild"}`)
	req := setup.CreateJSONRequest(http.MethodPost, "/api/server", reqBody)
	resp, err := app.Test(req)
	require.NoError(t, err, "create server request should complete")
	require.Equal(t, 200, resp.StatusCode, "create server should return 200")

	result := setup.ParseJSONResponse(t, resp)
	require.Equal(t, true, result["success"], "response should report success")
	require.Equal(t, "guild-1", result["id"], "response should echo the server id")

	// Test 2: Create server with duplicate id
	t.Log("=== Test 2: Create Server with Duplicate Id ===")
	req = setup.CreateJSONRequest(http.MethodPost, "/api/server", reqBody)
	resp, err = app.Test(req)
	require.NoError(t, err, "request should complete")
	require.Equal(t, 400, resp.StatusCode, "duplicate server should return 400")

	result = setup.ParseJSONResponse(t, resp)
	require.Equal(t, false, result["success"], "response should report failure")
	require.Equal(t, "Server already exists", setup.ParseErrorMessage(t, result))

	// Test 3: Create server with empty name
	t.Log("=== Test 3: Create Server with Empty Name ===")
	reqBody = []byte(`{"name":""}`)
	req = setup.CreateJSONRequest(http.MethodPost, "/api/server", reqBody)
	resp, err = app.Test(req)
	require.NoError(t, err, "request should complete")
	require.Equal(t, 400, resp.StatusCode, "empty name should return 400")

	// Test 4: Get server detail
	t.Log("=== Test 4: Get Server Detail ===")
	req = setup.CreateJSONRequest(http.MethodGet, "/api/server?id=guild-1", nil)
	resp, err = app.Test(req)
	require.NoError(t, err, "get server request should complete")
	require.Equal(t, 200, resp.StatusCode, "get server should return 200")

	result = setup.ParseJSONResponse(t, resp)
	require.Equal(t, "guild-1", result["id"], "detail should carry the server id")
	require.Equal(t, "Reading Guild", result["name"], "detail should carry the server name")
	require.Empty(t, result["clubs"], "a fresh server should have no clubs")

	// Test 5: Get unknown server
	t.Log("=== Test 5: Get Unknown Server ===")
	req = setup.CreateJSONRequest(http.MethodGet, "/api/server?id=nope", nil)
	resp, err = app.Test(req)
	require.NoError(t, err, "request should complete")
	require.Equal(t, 404, resp.StatusCode, "unknown server should return 404")

	// Test 6: Update server name
	t.Log("=== Test 6: Update Server Name ===")
	reqBody = []byte(`{"id":"guild-1","name":"Renamed Guild"}`)
	req = setup.CreateJSONRequest(http.MethodPut, "/api/server", reqBody)
	resp, err = app.Test(req)
	require.NoError(t, err, "update server request should complete")
	require.Equal(t, 200, resp.StatusCode, "update server should return 200")

	req = setup.CreateJSONRequest(http.MethodGet, "/api/server?id=guild-1", nil)
	resp, err = app.Test(req)
	require.NoError(t, err, "get server request should complete")
	result = setup.ParseJSONResponse(t, resp)
	require.Equal(t, "Renamed Guild", result["name"], "name should be updated")

	// Test 7: Delete blocked while the server owns clubs
	t.Log("=== Test 7: Delete Server Blocked by Clubs ===")
	reqBody = []byte(`{"name":"Blockers","server_id":"guild-1"}`)
	req = setup.CreateJSONRequest(http.MethodPost, "/api/club", reqBody)
	resp, err = app.Test(req)
	require.NoError(t, err, "create club request should complete")
	require.Equal(t, 200, resp.StatusCode, "create club should return 200")

	clubResult := setup.ParseJSONResponse(t, resp)
	clubId := clubResult["id"].(string)

	req = setup.CreateJSONRequest(http.MethodDelete, "/api/server?id=guild-1", nil)
	resp, err = app.Test(req)
	require.NoError(t, err, "delete server request should complete")
	require.Equal(t, 400, resp.StatusCode, "delete with clubs should return 400")

	result = setup.ParseJSONResponse(t, resp)
	require.Equal(t, false, result["success"], "response should report failure")
	require.Equal(t, float64(1), result["clubs_count"], "response should carry the blocking club count")

	// Test 8: Delete succeeds once the clubs are gone
	t.Log("=== Test 8: Delete Server After Club Removal ===")
	req = setup.CreateJSONRequest(http.MethodDelete, "/api/club?id="+clubId, nil)
	resp, err = app.Test(req)
	require.NoError(t, err, "delete club request should complete")
	require.Equal(t, 200, resp.StatusCode, "delete club should return 200")

	req = setup.CreateJSONRequest(http.MethodDelete, "/api/server?id=guild-1", nil)
	resp, err = app.Test(req)
	require.NoError(t, err, "delete server request should complete")
	require.Equal(t, 200, resp.StatusCode, "delete server should return 200")

	count := setup.CountRows(t, db, ctx, "SELECT COUNT(*) FROM servers WHERE id = $1", "guild-1")
	require.Equal(t, 0, count, "server row should be gone")

	// Test 9: Unsupported method
	t.Log("=== Test 9: Unsupported Method ===")
	req = setup.CreateJSONRequest(http.MethodPatch, "/api/server", nil)
	resp, err = app.Test(req)
	require.NoError(t, err, "request should complete")
	require.Equal(t, 405, resp.StatusCode, "PATCH should return 405")
}
