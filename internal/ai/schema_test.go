package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferDatabaseSchema(t *testing.T) {
	client := &fakeLLM{text: "```json\n" + `{
		"projectName": "blog",
		"description": "A simple blog",
		"tables": [
			{"name": "users", "columns": [{"name": "id", "type": "SERIAL", "constraints": ["PRIMARY KEY"]}]},
			{"name": "posts", "columns": [
				{"name": "id", "type": "SERIAL", "constraints": ["PRIMARY KEY"]},
				{"name": "user_id", "type": "INTEGER", "references": "users(id)"}
			]}
		]
	}` + "\n```"}

	schema, err := InferDatabaseSchema(context.Background(), client, "a blog with users and posts")
	require.NoError(t, err)
	assert.Equal(t, "blog", schema.ProjectName)
	assert.Equal(t, "A simple blog", schema.Description)
	require.Len(t, schema.Tables, 2)
	assert.Equal(t, "users(id)", schema.Tables[1].Columns[1].References)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "a blog with users and posts")
}

func TestInferDatabaseSchemaEmptyTables(t *testing.T) {
	client := &fakeLLM{text: `{"projectName": "empty", "tables": []}`}
	schema, err := InferDatabaseSchema(context.Background(), client, "nothing yet")
	require.NoError(t, err)
	assert.Empty(t, schema.Tables)
	assert.Empty(t, schema.Description)
}

func TestInferDatabaseSchemaInvalidStructure(t *testing.T) {
	testCases := []struct {
		name string
		text string
	}{
		{"not json", "I think you want a users table"},
		{"missing projectName", `{"tables": []}`},
		{"empty projectName", `{"projectName": "  ", "tables": []}`},
		{"projectName not string", `{"projectName": 5, "tables": []}`},
		{"missing tables", `{"projectName": "x"}`},
		{"tables not array", `{"projectName": "x", "tables": {"users": {}}}`},
		{"tables null", `{"projectName": "x", "tables": null}`},
		{"array response", `[{"projectName": "x"}]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := InferDatabaseSchema(context.Background(), &fakeLLM{text: tc.text}, "x")
			assert.ErrorIs(t, err, ErrInvalidSchemaStructure)
		})
	}
}

func TestInferDatabaseSchemaTransportFailure(t *testing.T) {
	_, err := InferDatabaseSchema(context.Background(), &fakeLLM{err: errors.New("timeout")}, "x")
	assert.ErrorIs(t, err, ErrSchemaInferenceFailed)
	assert.NotErrorIs(t, err, ErrInvalidSchemaStructure)
}
