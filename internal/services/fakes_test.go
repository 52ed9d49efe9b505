package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Annany2002/nebula-nlsql/internal/domain"
	"github.com/Annany2002/nebula-nlsql/internal/llm"
)

// callLog records collaborator calls in order across fakes.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) count(call string) int {
	n := 0
	for _, c := range l.calls {
		if c == call {
			n++
		}
	}
	return n
}

type fakeLLM struct {
	log   *callLog
	text  string
	err   error
	calls int
}

func (f *fakeLLM) GenerateText(_ context.Context, _ llm.GenerateRequest) (*llm.GenerateResponse, error) {
	f.calls++
	f.log.add("llm")
	if f.err != nil {
		return nil, f.err
	}
	return &llm.GenerateResponse{Text: f.text}, nil
}

type queryCall struct {
	query string
	args  []any
}

// fakeConn fails any statement containing a key of failOn.
type fakeConn struct {
	log     *callLog
	rows    []map[string]any
	failOn  map[string]error
	queries []queryCall
	closed  int
}

func (c *fakeConn) Query(_ context.Context, query string, args ...any) ([]map[string]any, error) {
	c.log.add("query")
	c.queries = append(c.queries, queryCall{query: query, args: args})
	for fragment, err := range c.failOn {
		if strings.Contains(query, fragment) {
			return nil, err
		}
	}
	return c.rows, nil
}

func (c *fakeConn) GetSchema(context.Context) ([]domain.TableSchema, error) {
	return nil, nil
}

func (c *fakeConn) Close() error {
	c.log.add("close")
	c.closed++
	return nil
}

type fakeGateway struct {
	log          *callLog
	conn         *fakeConn
	provisionErr error
	readyErr     error
	connectErr   error
}

func (g *fakeGateway) ProvisionDatabase(_ context.Context, userID, projectName string) (*domain.ProvisionedDatabase, error) {
	g.log.add("provision")
	if g.provisionErr != nil {
		return nil, g.provisionErr
	}
	return &domain.ProvisionedDatabase{
		DatabaseName:     "nl_" + userID + "_" + projectName,
		ConnectionString: "postgres://test/nl_" + projectName,
	}, nil
}

func (g *fakeGateway) WaitForReady(context.Context, string) error {
	g.log.add("ready")
	return g.readyErr
}

func (g *fakeGateway) Connect(context.Context, string) (domain.ProjectConn, error) {
	g.log.add("connect")
	if g.connectErr != nil {
		return nil, g.connectErr
	}
	return g.conn, nil
}

type fakeStore struct {
	log      *callLog
	existing *domain.Project
	findErr  error
	created  []*domain.Project
}

func (s *fakeStore) FindProjectByName(context.Context, string, string) (*domain.Project, error) {
	s.log.add("find")
	return s.existing, s.findErr
}

func (s *fakeStore) FindProjectByID(_ context.Context, _, projectID string) (*domain.Project, error) {
	for _, p := range s.created {
		if p.ID == projectID {
			return p, nil
		}
	}
	return nil, errors.New("not found")
}

func (s *fakeStore) CreateProject(_ context.Context, project *domain.Project) error {
	s.log.add("create")
	s.created = append(s.created, project)
	return nil
}

func (s *fakeStore) ListProjects(context.Context, string) ([]domain.Project, error) {
	out := make([]domain.Project, len(s.created))
	for i, p := range s.created {
		out[i] = *p
	}
	return out, nil
}

type fakeHistory struct {
	entries []domain.QueryHistoryEntry
}

func (h *fakeHistory) Log(_ context.Context, entry domain.QueryHistoryEntry) {
	h.entries = append(h.entries, entry)
}
