package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/nebula-nlsql/internal/domain"
)

func strPtr(s string) *string { return &s }

var usersSchema = []domain.TableSchema{{
	Name: "users",
	Columns: []domain.ColumnMetadata{
		{Name: "id", Type: "integer", Nullable: false, Default: strPtr("nextval('users_id_seq'::regclass)"), Constraints: []string{"PRIMARY KEY"}},
		{Name: "email", Type: "text", Nullable: false, Constraints: []string{"UNIQUE"}},
		{Name: "team_id", Type: "integer", Nullable: true, Constraints: []string{"REFERENCES teams(id)"}},
	},
}}

func TestRenderSchemaIncludesConstraints(t *testing.T) {
	got := RenderSchema(usersSchema)
	assert.Contains(t, got, "TABLE users")
	assert.Contains(t, got, "id integer NOT NULL PRIMARY KEY DEFAULT nextval('users_id_seq'::regclass)")
	assert.Contains(t, got, "email text NOT NULL UNIQUE")
	assert.Contains(t, got, "team_id integer REFERENCES teams(id)")
	assert.Equal(t, "(no tables)", RenderSchema(nil))
}

func TestAnalyzeProjectUpdateRequestForcesConfirmation(t *testing.T) {
	client := &fakeLLM{text: `{
		"operations": [{"type": "alter_table", "target": "users", "sql": "ALTER TABLE users ADD COLUMN age INT", "explaination": "adds age", "risk_level": "LOW", "is_idempotent": false}],
		"summary": "add age",
		"requires_confirmation": false,
		"estimated_impact": "none"
	}`}

	analysis, err := AnalyzeProjectUpdateRequest(context.Background(), client, "add an age column", usersSchema, "nl_u_shop")
	require.NoError(t, err)
	assert.True(t, analysis.RequiresConfirmation)
	require.Len(t, analysis.Operations, 1)
	assert.Equal(t, domain.RiskLow, analysis.Operations[0].RiskLevel)
	assert.Equal(t, "adds age", analysis.Operations[0].Explanation)
	assert.Equal(t, "none", analysis.EstimatedImpact)
	assert.Contains(t, client.prompts[0], "nl_u_shop")
	assert.Contains(t, client.prompts[0], "email text NOT NULL UNIQUE")
}

func TestAnalyzeProjectUpdateRequestInvalid(t *testing.T) {
	testCases := map[string]string{
		"not json":           "sure, here you go",
		"missing operations": `{"summary": "x"}`,
		"operations null":    `{"operations": null}`,
		"operation no sql":   `{"operations": [{"type": "alter_table"}]}`,
		"operation no type":  `{"operations": [{"sql": "ALTER TABLE x"}]}`,
	}
	for name, text := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := AnalyzeProjectUpdateRequest(context.Background(), &fakeLLM{text: text}, "x", nil, "db")
			assert.ErrorIs(t, err, ErrInvalidResponseStructure)
		})
	}
}

func TestAnalyzeProjectUpdateRequestUnknownRiskIsHigh(t *testing.T) {
	client := &fakeLLM{text: `{"operations": [{"type": "drop_table", "sql": "DROP TABLE users", "risk_level": "spicy"}]}`}
	analysis, err := AnalyzeProjectUpdateRequest(context.Background(), client, "drop users", usersSchema, "db")
	require.NoError(t, err)
	assert.Equal(t, domain.RiskHigh, analysis.Operations[0].RiskLevel)
}

func TestAnalyzeCreateTableRequest(t *testing.T) {
	client := &fakeLLM{text: "```json\n" + `{"type": "create_table", "target": "teams", "sql": "CREATE TABLE teams (id SERIAL PRIMARY KEY)", "explaination": "teams", "risk_level": "low", "is_idempotent": false}` + "\n```"}
	op, err := AnalyzeCreateTableRequest(context.Background(), client, "a teams table", usersSchema)
	require.NoError(t, err)
	assert.Equal(t, "teams", op.Target)
	assert.Equal(t, "CREATE TABLE teams (id SERIAL PRIMARY KEY)", op.SQL)
}

func TestAnalyzeCreateTableRequestInvalid(t *testing.T) {
	testCases := map[string]string{
		"missing sql":       `{"type": "create_table", "target": "teams"}`,
		"not a create":      `{"type": "create_table", "target": "teams", "sql": "DROP TABLE users"}`,
		"malformed":         `{"type": `,
		"operations object": `{"operations": []}`,
	}
	for name, text := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := AnalyzeCreateTableRequest(context.Background(), &fakeLLM{text: text}, "x", nil)
			assert.ErrorIs(t, err, ErrInvalidResponseStructure)
		})
	}
}

func TestAnalyzeQueryConfirmation(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want bool
	}{
		{
			"read only",
			`{"operations": [{"type": "select", "sql": "SELECT * FROM users", "risk_level": "low"}], "requires_confirmation": false}`,
			false,
		},
		{
			"write",
			`{"operations": [{"type": "delete", "sql": "DELETE FROM users WHERE id = 1", "risk_level": "medium"}], "requires_confirmation": false}`,
			true,
		},
		{
			"high risk read",
			`{"operations": [{"type": "select", "sql": "SELECT * FROM users", "risk_level": "high"}]}`,
			true,
		},
		{
			"model asks for confirmation",
			`{"operations": [{"type": "select", "sql": "SELECT 1", "risk_level": "low"}], "requires_confirmation": true}`,
			true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			analysis, err := AnalyzeQuery(context.Background(), &fakeLLM{text: tc.text}, "q", usersSchema)
			require.NoError(t, err)
			assert.Equal(t, tc.want, analysis.RequiresConfirmation)
		})
	}
}

func TestAnalyzeTransportFailure(t *testing.T) {
	_, err := AnalyzeQuery(context.Background(), &fakeLLM{err: errors.New("down")}, "q", nil)
	assert.ErrorIs(t, err, ErrAnalysisFailed)
}
