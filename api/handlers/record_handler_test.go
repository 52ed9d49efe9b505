package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/nebula-nlsql/internal/domain"
	"github.com/Annany2002/nebula-nlsql/internal/storage"
)

func TestInsertRecord(t *testing.T) {
	env := setupTestServer(t)
	userID, token := env.newUser(t)
	project := env.newProject(t, userID, "inventory")
	path := "/api/v1/projects/" + project.ID + "/insert"

	tests := []struct {
		name       string
		body       any
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}{
		{
			name:       "missing table",
			body:       map[string]any{"insertData": map[string]any{"name": "x"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing insertData",
			body:       map[string]any{"table": "items"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty insertData",
			body:       map[string]any{"table": "items", "insertData": map[string]any{}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid table name",
			body:       map[string]any{"table": "items; drop", "insertData": map[string]any{"name": "x"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown table",
			body:       map[string]any{"table": "nope", "insertData": map[string]any{"name": "x"}},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "no valid columns",
			body:       map[string]any{"table": "items", "insertData": map[string]any{"colour": "red"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing required",
			body:       map[string]any{"table": "items", "insertData": map[string]any{"id": 1}},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, []any{"name"}, body["missing"])
			},
		},
		{
			name:       "invalid date",
			body:       map[string]any{"table": "items", "insertData": map[string]any{"name": "x", "due": "someday"}},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "due", body["column"])
			},
		},
		{
			name:       "zero rows returned",
			body:       map[string]any{"table": "items", "insertData": map[string]any{"name": "Test"}},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Contains(t, body, "row")
				assert.Nil(t, body["row"])
				assert.Equal(t, "items", body["table"])
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, body := env.do(t, http.MethodPost, path, token, tt.body)
			require.Equal(t, tt.wantStatus, res.StatusCode, "body: %v", body)
			assert.NotEmpty(t, body)
			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}
}

func TestInsertRecord_ReturnsRow(t *testing.T) {
	env := setupTestServer(t)
	env.gateway.insertRows = []map[string]any{{"id": int64(7), "name": "Test", "due": "2024-12-25"}}
	userID, token := env.newUser(t)
	project := env.newProject(t, userID, "inventory")

	res, body := env.do(t, http.MethodPost, "/api/v1/projects/"+project.ID+"/insert", token, map[string]any{
		"table":      "items",
		"insertData": map[string]any{"name": "Test", "due": "25:12:2024", "extra": true},
	})
	require.Equal(t, http.StatusOK, res.StatusCode)
	row := body["row"].(map[string]any)
	assert.Equal(t, float64(7), row["id"])

	require.NotEmpty(t, env.gateway.queries)
	assert.Equal(t,
		`INSERT INTO "public"."items" ("name", "due") VALUES ($1, $2::date) RETURNING *`,
		env.gateway.queries[len(env.gateway.queries)-1])
}

func TestInsertRecord_MissingConnectionInfo(t *testing.T) {
	env := setupTestServer(t)
	userID, token := env.newUser(t)
	project := &domain.Project{
		ID:           uuid.NewString(),
		UserID:       userID,
		ProjectName:  "detached",
		DatabaseName: "nl_detached_" + uuid.NewString()[:6],
	}
	require.NoError(t, storage.CreateProject(context.Background(), env.db, project))

	res, body := env.do(t, http.MethodPost, "/api/v1/projects/"+project.ID+"/insert", token, map[string]any{
		"table":      "items",
		"insertData": map[string]any{"name": "x"},
	})
	require.Equal(t, http.StatusBadRequest, res.StatusCode, "body: %v", body)
	assert.Contains(t, body["error"], "connection information is missing")
	assert.Zero(t, env.gateway.connects)
	assert.Empty(t, env.gateway.queries)
}
