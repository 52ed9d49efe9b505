// internal/cliapp/app.go
package cliapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/Annany2002/nebula-nlsql/config"
	"github.com/Annany2002/nebula-nlsql/internal/ai"
	"github.com/Annany2002/nebula-nlsql/internal/core"
	"github.com/Annany2002/nebula-nlsql/internal/domain"
	"github.com/Annany2002/nebula-nlsql/internal/export"
	"github.com/Annany2002/nebula-nlsql/internal/llm"
	"github.com/Annany2002/nebula-nlsql/internal/logger"
	"github.com/Annany2002/nebula-nlsql/internal/services"
	"github.com/Annany2002/nebula-nlsql/internal/storage"
)

var (
	customLog = logger.NewLogger()
)

// Runtime holds the collaborators the commands use. Tests replace them.
type Runtime struct {
	Stdout     io.Writer
	WorkDir    string
	IsTerminal func() bool
	NewLLM     func(cfg config.LLMConfig) (llm.Client, error)
	Connect    func(ctx context.Context, databaseURL string) (domain.ProjectConn, error)
}

// DefaultRuntime talks to real services and stdout.
func DefaultRuntime() *Runtime {
	wd, _ := os.Getwd()
	return &Runtime{
		Stdout:     os.Stdout,
		WorkDir:    wd,
		IsTerminal: stdoutIsTerminal,
		NewLLM: func(cfg config.LLMConfig) (llm.Client, error) {
			return llm.NewOpenAIClient(cfg)
		},
		Connect: func(ctx context.Context, databaseURL string) (domain.ProjectConn, error) {
			return storage.ConnectProjectDB(ctx, databaseURL)
		},
	}
}

var errNoDatabaseURL = errors.New("a database URL is required (--database-url, NEBULA_DATABASE_URL or database_url in nebula.yaml)")

// NewApp builds the nebula command-line application.
func NewApp(rt *Runtime) *cli.App {
	return &cli.App{
		Name:      "nebula",
		Usage:     "Design and query Postgres databases in plain English",
		Writer:    rt.Stdout,
		ErrWriter: rt.Stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Postgres connection string of the project database",
				EnvVars: []string{"NEBULA_DATABASE_URL"},
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output style: table or json (default: table on a terminal)",
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "LLM API key",
				EnvVars: []string{"LLM_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "model",
				Usage:   "LLM model",
				EnvVars: []string{"LLM_MODEL"},
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "OpenAI-compatible API base URL",
				EnvVars: []string{"LLM_BASE_URL"},
			},
		},
		Commands: []*cli.Command{
			initCommand(rt),
			inferCommand(rt),
			schemaCommand(rt),
			queryCommand(rt),
			exportCommand(rt),
		},
	}
}

// settings merges nebula.yaml with global flags; flags win.
type settings struct {
	databaseURL string
	asTable     bool
	llm         config.LLMConfig
}

func resolve(c *cli.Context, rt *Runtime) (*settings, error) {
	file, err := LoadConfig(rt.WorkDir)
	if err != nil {
		return nil, err
	}

	s := &settings{
		databaseURL: pick(c.String("database-url"), file.DatabaseURL),
		llm: config.LLMConfig{
			APIKey:      pick(c.String("api-key"), file.LLM.APIKey),
			BaseURL:     pick(c.String("base-url"), file.LLM.BaseURL),
			Model:       pick(c.String("model"), file.LLM.Model, "gpt-4o-mini"),
			Temperature: 0.2,
			MaxTokens:   2000,
		},
	}
	if file.LLM.MaxTokens > 0 {
		s.llm.MaxTokens = file.LLM.MaxTokens
	}

	switch output := strings.ToLower(pick(c.String("output"), file.Output)); output {
	case "table":
		s.asTable = true
	case "json":
		s.asTable = false
	case "":
		s.asTable = rt.IsTerminal()
	default:
		return nil, fmt.Errorf("unknown output style %q (want table or json)", output)
	}
	return s, nil
}

func pick(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func (s *settings) connect(c *cli.Context, rt *Runtime) (domain.ProjectConn, error) {
	if s.databaseURL == "" {
		return nil, errNoDatabaseURL
	}
	return rt.Connect(c.Context, s.databaseURL)
}

func initCommand(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a nebula.yaml in the current directory",
		Action: func(c *cli.Context) error {
			s, err := resolve(c, rt)
			if err != nil {
				return err
			}
			cfg := &FileConfig{DatabaseURL: s.databaseURL, Output: c.String("output")}
			cfg.LLM.BaseURL = s.llm.BaseURL
			cfg.LLM.Model = s.llm.Model

			path := filepath.Join(rt.WorkDir, ConfigFileName)
			if err := WriteConfig(path, cfg); err != nil {
				return fmt.Errorf("writing config file: %w", err)
			}
			fmt.Fprintf(rt.Stdout, "Created %s\n", path)
			return nil
		},
	}
}

func inferCommand(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:      "infer",
		Usage:     "Design tables from a project description",
		ArgsUsage: "<description>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "sql", Usage: "Print CREATE TABLE statements instead of the schema"},
			&cli.BoolFlag{Name: "apply", Usage: "Run the statements against --database-url"},
		},
		Action: func(c *cli.Context) error {
			description := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(description) == "" {
				return services.ErrEmptyInput
			}
			s, err := resolve(c, rt)
			if err != nil {
				return err
			}
			client, err := rt.NewLLM(s.llm)
			if err != nil {
				return err
			}

			schema, err := ai.InferDatabaseSchema(c.Context, client, description)
			if err != nil {
				return err
			}
			statements := core.GenerateCreateTableStatements(schema.Tables)

			if c.Bool("apply") {
				conn, err := s.connect(c, rt)
				if err != nil {
					return err
				}
				defer conn.Close()
				result := services.NewBatchExecutor(nil).Execute(c.Context, conn, "", "", core.SplitStatements(statements))
				return renderBatch(rt.Stdout, result.Results, s.asTable)
			}
			if c.Bool("sql") || s.asTable {
				_, err := fmt.Fprintln(rt.Stdout, statements)
				return err
			}
			return writeJSON(rt.Stdout, schema)
		},
	}
}

func schemaCommand(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Show the tables of the project database",
		Action: func(c *cli.Context) error {
			s, err := resolve(c, rt)
			if err != nil {
				return err
			}
			conn, err := s.connect(c, rt)
			if err != nil {
				return err
			}
			defer conn.Close()

			tables, err := conn.GetSchema(c.Context)
			if err != nil {
				return err
			}
			return renderSchema(rt.Stdout, tables, s.asTable)
		},
	}
}

func queryCommand(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "Run SQL, or a plain-English question with --ask",
		ArgsUsage: "<sql | question>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "ask", Usage: "Treat the argument as a question and generate SQL"},
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Run generated statements that need confirmation"},
		},
		Action: func(c *cli.Context) error {
			text := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(text) == "" {
				return services.ErrNoStatements
			}
			s, err := resolve(c, rt)
			if err != nil {
				return err
			}
			conn, err := s.connect(c, rt)
			if err != nil {
				return err
			}
			defer conn.Close()

			statements := core.SplitStatements(text)
			if c.Bool("ask") {
				statements, err = plan(c, rt, s, conn, text)
				if err != nil || statements == nil {
					return err
				}
			}

			result := services.NewBatchExecutor(nil).Execute(c.Context, conn, "", "", statements)
			if err := renderBatch(rt.Stdout, result.Results, s.asTable); err != nil {
				return err
			}
			if result.Failed > 0 {
				return fmt.Errorf("%d of %d statements failed", result.Failed, result.Failed+result.Succeeded)
			}
			return nil
		},
	}
}

// plan asks the analyzer for statements. It returns nil statements when the
// plan needs confirmation that was not given.
func plan(c *cli.Context, rt *Runtime, s *settings, conn domain.ProjectConn, question string) ([]string, error) {
	client, err := rt.NewLLM(s.llm)
	if err != nil {
		return nil, err
	}
	schema, err := conn.GetSchema(c.Context)
	if err != nil {
		return nil, err
	}
	analysis, err := ai.AnalyzeQuery(c.Context, client, question, schema)
	if err != nil {
		return nil, err
	}

	statements := make([]string, 0, len(analysis.Operations))
	for _, op := range analysis.Operations {
		fmt.Fprintf(rt.Stdout, "-- [%s] %s\n%s;\n", op.RiskLevel, op.Explanation, op.SQL)
		statements = append(statements, op.SQL)
	}
	if analysis.RequiresConfirmation && !c.Bool("yes") {
		fmt.Fprintln(rt.Stdout, "These statements modify data. Re-run with --yes to execute them.")
		return nil, nil
	}
	return statements, nil
}

func exportCommand(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Run a query and write the rows as csv, json or xlsx",
		ArgsUsage: "<sql>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "csv", Usage: "csv, json or xlsx"},
			&cli.StringFlag{Name: "file", Usage: "Output file (default: stdout)"},
		},
		Action: func(c *cli.Context) error {
			format, err := export.ParseFormat(c.String("format"))
			if err != nil {
				return err
			}
			query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if query == "" {
				return services.ErrNoStatements
			}
			s, err := resolve(c, rt)
			if err != nil {
				return err
			}
			conn, err := s.connect(c, rt)
			if err != nil {
				return err
			}
			defer conn.Close()

			rows, err := conn.Query(c.Context, query)
			if err != nil {
				return err
			}

			out := rt.Stdout
			if path := c.String("file"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("creating %s: %w", path, err)
				}
				defer f.Close()
				out = f
			}
			if err := export.Write(out, format, nil, rows); err != nil {
				return err
			}
			customLog.Debugf("CLI: exported %d rows as %s", len(rows), format)
			return nil
		},
	}
}
