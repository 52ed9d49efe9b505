package handlers_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/nebula-nlsql/api"
	"github.com/Annany2002/nebula-nlsql/config"
	"github.com/Annany2002/nebula-nlsql/internal/auth"
	"github.com/Annany2002/nebula-nlsql/internal/domain"
	"github.com/Annany2002/nebula-nlsql/internal/llm"
	"github.com/Annany2002/nebula-nlsql/internal/storage"
)

const testSecret = "test_secret_key_for_integration_tests_1234567890"

// scriptedLLM answers every prompt with the same text or error.
type scriptedLLM struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
}

func (s *scriptedLLM) GenerateText(_ context.Context, _ llm.GenerateRequest) (*llm.GenerateResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &llm.GenerateResponse{Text: s.text}, nil
}

// memoryConn serves a fixed schema. Statements containing "fail" are rejected.
type memoryConn struct {
	schema     []domain.TableSchema
	insertRows []map[string]any
	queries    *[]string
}

func (m *memoryConn) Query(_ context.Context, query string, _ ...any) ([]map[string]any, error) {
	*m.queries = append(*m.queries, query)
	if strings.Contains(query, "fail") {
		return nil, errors.New(`syntax error at or near "fail"`)
	}
	if strings.HasPrefix(query, "INSERT") {
		return m.insertRows, nil
	}
	if strings.HasPrefix(strings.ToUpper(query), "SELECT") {
		return []map[string]any{{"id": int64(1), "name": "first"}}, nil
	}
	return nil, nil
}

func (m *memoryConn) GetSchema(context.Context) ([]domain.TableSchema, error) {
	return m.schema, nil
}

func (m *memoryConn) Close() error { return nil }

type memoryGateway struct {
	mu           sync.Mutex
	schema       []domain.TableSchema
	insertRows   []map[string]any
	provisionErr error
	readyErr     error
	provisioned  int
	connects     int
	queries      []string
}

func (g *memoryGateway) ProvisionDatabase(_ context.Context, userID, projectName string) (*domain.ProvisionedDatabase, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.provisioned++
	if g.provisionErr != nil {
		return nil, g.provisionErr
	}
	name := "nl_" + projectName + "_" + uuid.NewString()[:6]
	return &domain.ProvisionedDatabase{DatabaseName: name, ConnectionString: "postgres://test/" + name}, nil
}

func (g *memoryGateway) WaitForReady(context.Context, string) error {
	return g.readyErr
}

func (g *memoryGateway) Connect(context.Context, string) (domain.ProjectConn, error) {
	g.mu.Lock()
	g.connects++
	g.mu.Unlock()
	return &memoryConn{schema: g.schema, insertRows: g.insertRows, queries: &g.queries}, nil
}

func strPtr(s string) *string { return &s }

var itemsSchema = []domain.TableSchema{{
	Name: "items",
	Columns: []domain.ColumnMetadata{
		{Name: "id", Type: "integer", Nullable: false, Default: strPtr("nextval('items_id_seq'::regclass)")},
		{Name: "name", Type: "text", Nullable: false},
		{Name: "due", Type: "date", Nullable: true},
	},
}}

type testEnv struct {
	server  *httptest.Server
	db      *sql.DB
	llm     *scriptedLLM
	gateway *memoryGateway
}

// testDBSetup creates a temporary SQLite DB and a config pointing at it.
func testDBSetup(t *testing.T) (*sql.DB, *config.Config) {
	t.Helper()
	tempDir := t.TempDir()
	cfg := &config.Config{
		ServerPort:     "0",
		JWTSecret:      testSecret,
		JWTExpiration:  5 * time.Minute,
		MetadataDbDir:  tempDir,
		MetadataDbFile: "test_metadata.db",
		RateLimit:      1000,
		RateWindow:     time.Minute,
	}
	db, err := storage.ConnectMetadataDB(cfg)
	require.NoError(t, err, "Failed to connect to test database")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	})
	return db, cfg
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, cfg := testDBSetup(t)
	env := &testEnv{
		db:      db,
		llm:     &scriptedLLM{},
		gateway: &memoryGateway{schema: itemsSchema},
	}
	router := api.SetupRouter(api.Dependencies{
		MetaDB:  db,
		Cfg:     cfg,
		LLM:     env.llm,
		Gateway: env.gateway,
	})
	env.server = httptest.NewServer(router)
	t.Cleanup(env.server.Close)
	return env
}

// newUser registers a user directly and returns its id and a bearer token.
func (e *testEnv) newUser(t *testing.T) (string, string) {
	t.Helper()
	email := uuid.NewString() + "@example.com"
	userID, err := storage.CreateUser(context.Background(), e.db, uuid.NewString(), "tester", email, "hash")
	require.NoError(t, err)
	token, err := auth.GenerateJWT(userID, testSecret, time.Hour)
	require.NoError(t, err)
	return userID, token
}

// newProject stores a project row owned by userID.
func (e *testEnv) newProject(t *testing.T, userID, name string) *domain.Project {
	t.Helper()
	p := &domain.Project{
		ID:               uuid.NewString(),
		UserID:           userID,
		ProjectName:      name,
		DatabaseName:     "nl_" + name + "_" + uuid.NewString()[:6],
		Description:      "test",
		ConnectionString: "postgres://test/" + name,
		SchemaSQL:        "CREATE TABLE items (\n  id SERIAL PRIMARY KEY,\n  name TEXT NOT NULL\n);",
	}
	require.NoError(t, storage.CreateProject(context.Background(), e.db, p))
	return p
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(res.Body).Decode(&decoded)
	return res, decoded
}
