package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tovald/pdfsmith/internal/config"
	"github.com/tovald/pdfsmith/internal/convert"
	"github.com/tovald/pdfsmith/internal/errors"
	"github.com/tovald/pdfsmith/internal/mcp"
	"github.com/tovald/pdfsmith/internal/ops"
	"github.com/tovald/pdfsmith/internal/publish"
	"github.com/tovald/pdfsmith/internal/web"
)

// newCLIApp creates the CLI application with all commands.
// Running with no command serves the web UI.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "pdfsmith",
		Usage:   "Convert documents to PDF and keep a searchable record",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(db, cfg),
			batchCmd(db, cfg),
			listCmd(db),
			exportCmd(db),
			mcpCmd(db, cfg),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() > 0 {
				return cli.Exit(fmt.Sprintf("unknown command %q\nRun 'pdfsmith --help' for usage.", c.Args().First()), 1)
			}
			return runServe(db, cfg, "127.0.0.1", 5000)
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// newConverter builds the external-tool converter from config.
func newConverter(cfg *config.Config) convert.Converter {
	return convert.NewExecConverter(cfg.PandocPath, cfg.DocxToolPath)
}

// newPublisher builds the git publisher from config.
func newPublisher(cfg *config.Config) publish.Publisher {
	return publish.NewGitPublisher(cfg.GitHubToken, cfg.GitHubRepo, cfg.Branch)
}

// runServe starts the web server and blocks until shutdown.
func runServe(db *sql.DB, cfg *config.Config, bind string, port int) error {
	srv := web.NewServer(db, cfg, newConverter(cfg), newPublisher(cfg), Version, bind, port)
	return web.Run(srv)
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the upload and listing web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Address to bind to"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 5000, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			return runServe(db, cfg, c.String("bind"), c.Int("port"))
		},
	}
}

// batchCmd creates the batch command.
func batchCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "Convert every Markdown file under the batch root, then push once",
		Action: func(c *cli.Context) error {
			output, err := ops.Batch(c.Context, db, cfg, newConverter(cfg), newPublisher(cfg))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List recorded conversions, most recent first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "filter", Aliases: []string{"f"}, Usage: "Case-sensitive substring filter"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(db, ops.ListInput{Filter: c.String("filter")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export conversion records to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: pdfsmith-export-<timestamp>.jsonl)"},
			&cli.StringFlag{Name: "filter", Aliases: []string{"f"}, Usage: "Case-sensitive substring filter"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(db, ops.ExportInput{
				Path:   c.String("path"),
				Filter: c.String("filter"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve MCP tools over stdio",
		Action: func(c *cli.Context) error {
			return mcp.Run(db, cfg, newConverter(cfg), newPublisher(cfg), Version)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if appErr, ok := err.(*errors.Error); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", appErr.Code, appErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
