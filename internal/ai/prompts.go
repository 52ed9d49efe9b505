// internal/ai/prompts.go
package ai

import (
	"fmt"
	"strings"

	"github.com/Annany2002/nebula-nlsql/internal/domain"
)

const unavailable = "Unavailable"

// RenderSchema describes tables for a prompt, one column per line with its
// nullability, default and key constraints inline.
func RenderSchema(tables []domain.TableSchema) string {
	if len(tables) == 0 {
		return "(no tables)"
	}
	var b strings.Builder
	for i, t := range tables {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "TABLE %s\n", t.Name)
		for _, c := range t.Columns {
			fmt.Fprintf(&b, "  - %s %s", c.Name, c.Type)
			if !c.Nullable {
				b.WriteString(" NOT NULL")
			}
			for _, constraint := range c.Constraints {
				b.WriteString(" " + constraint)
			}
			if c.Default != nil {
				b.WriteString(" DEFAULT " + *c.Default)
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

const inferSchemaPrompt = `You are a PostgreSQL database designer. Design a relational schema for the project described below.

Respond with JSON only, no prose, in exactly this shape:
{
  "projectName": "short_snake_case_name",
  "description": "one sentence describing the project",
  "tables": [
    {
      "name": "table_name",
      "columns": [
        {"name": "id", "type": "SERIAL", "constraints": ["PRIMARY KEY"]},
        {"name": "owner_id", "type": "INTEGER", "constraints": ["NOT NULL"], "references": "owners(id)"}
      ]
    }
  ]
}

Rules:
- Use PostgreSQL types.
- Order tables so that referenced tables come before the tables that reference them.
- Use snake_case for every identifier.

Project description:
%s`

const updatePrompt = `You are a PostgreSQL expert helping a user change the schema of the database "%s".

Current schema:
%s

User request:
%s

Respond with JSON only, in exactly this shape:
{
  "operations": [
    {
      "type": "create_table | alter_table | drop_table | create_index | insert | update | delete",
      "target": "affected table",
      "sql": "a single PostgreSQL statement",
      "explaination": "what the statement does",
      "risk_level": "low | medium | high",
      "is_idempotent": true
    }
  ],
  "summary": "one paragraph summary of the plan",
  "requires_confirmation": true,
  "estimated_impact": "what existing data is affected"
}

Respect existing NOT NULL, PRIMARY KEY and REFERENCES constraints. Mark anything that drops or rewrites data as high risk.`

const createTablePrompt = `You are a PostgreSQL expert. Write one CREATE TABLE statement for the request below that fits the existing schema.

Current schema:
%s

User request:
%s

Respond with JSON only, in exactly this shape:
{
  "type": "create_table",
  "target": "new_table_name",
  "sql": "CREATE TABLE ...",
  "explaination": "what the table stores and how it relates to existing tables",
  "risk_level": "low",
  "is_idempotent": false
}`

const queryPrompt = `You are a PostgreSQL expert. Translate the user's request into SQL for the schema below.

Current schema:
%s

User request:
%s

Respond with JSON only, in exactly this shape:
{
  "operations": [
    {
      "type": "select | insert | update | delete | create_table | alter_table | drop_table",
      "target": "main table",
      "sql": "a single PostgreSQL statement",
      "explaination": "what the statement does",
      "risk_level": "low | medium | high",
      "is_idempotent": true
    }
  ],
  "summary": "short summary",
  "requires_confirmation": false,
  "estimated_impact": "rows or tables affected"
}

Use only tables and columns that exist in the schema. Quote identifiers that are reserved words.`

const dbErrorPrompt = `You are a PostgreSQL expert explaining a database error to a non-technical user.

Error:
%s

SQL:
%s

Schema:
%s

Respond with JSON only, in exactly this shape:
{
  "errorType": "short category such as ForeignKeyViolation, NotNullViolation, SyntaxError",
  "summary": "one sentence",
  "userFriendlyExplanation": "plain language explanation and how to fix it",
  "foreignKeyExplanation": "explanation of the relationship involved, or null"
}`

const suggestionsPrompt = `You are helping a user explore their PostgreSQL database.

Schema:
%s

Suggest up to %d short questions the user could ask about this data in plain English.
Respond with a JSON array of strings only.`
