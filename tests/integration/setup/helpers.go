package setup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// TruncateAllTables truncates all tables in correct order (children first, then parents)
func TruncateAllTables(t *testing.T, db *pgxpool.Pool, ctx context.Context) {
	t.Log("Truncating all database tables...")

	tables := []string{
		// Association tables (children first)
		"shamelist",
		"memberclubs",
		"discussions",
		"sessions",
		"books",
		// Entity tables
		"members",
		"clubs",
		"servers",
	}

	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "failed to truncate table %s", table)
	}

	t.Log("All database tables truncated successfully")
}

// CreateJSONRequest creates a test request with JSON body
func CreateJSONRequest(method, url string, jsonBody []byte) *http.Request {
	req := httptest.NewRequest(method, url, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ParseJSONResponse helper to parse JSON response body
func ParseJSONResponse(t *testing.T, resp *http.Response) map[string]interface{} {
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	require.NotEmpty(t, body, "response body should not be empty")

	var result map[string]interface{}
	err = json.Unmarshal(body, &result)
	require.NoError(t, err, "failed to parse JSON response")

	return result
}

// ParseErrorMessage extracts the error message from an error response
func ParseErrorMessage(t *testing.T, result map[string]interface{}) string {
	require.Contains(t, result, "error", "response should contain error field")

	message, ok := result["error"].(string)
	require.True(t, ok, "error field should be a string")

	return message
}

// CountRows returns the number of rows of table matching the condition
func CountRows(t *testing.T, db *pgxpool.Pool, ctx context.Context, query string, args ...interface{}) int {
	var count int
	err := db.QueryRow(ctx, query, args...).Scan(&count)
	require.NoError(t, err, "count query should succeed")
	return count
}

// GenerateRandomString generates a random string of specified length
// Uses lowercase letters and numbers for test data generation
func GenerateRandomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, length)
	for i := range b {
		// #nosec G404 -- Weak randomness is acceptable for non-security test data
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
