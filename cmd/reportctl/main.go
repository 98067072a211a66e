package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/reportdex/internal/app"
	"github.com/kailas-cloud/reportdex/internal/config"
	dombatch "github.com/kailas-cloud/reportdex/internal/domain/batch"
	domreport "github.com/kailas-cloud/reportdex/internal/domain/report"
	"github.com/kailas-cloud/reportdex/internal/domain/search/request"
	"github.com/kailas-cloud/reportdex/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/reportdex/internal/logger"
	"github.com/kailas-cloud/reportdex/internal/transport/dto"
	mcpTransport "github.com/kailas-cloud/reportdex/internal/transport/mcp"
	reportuc "github.com/kailas-cloud/reportdex/internal/usecase/report"
	searchuc "github.com/kailas-cloud/reportdex/internal/usecase/search"
	"github.com/kailas-cloud/reportdex/internal/version"
)

// maxLineBytes bounds one JSONL record.
const maxLineBytes = 1 << 20

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "reportctl:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	pageFlags := []cli.Flag{
		&cli.IntFlag{Name: "page", Usage: "Zero-based page number"},
		&cli.IntFlag{Name: "size", Usage: "Page size", Value: request.DefaultPageSize},
	}

	return &cli.App{
		Name:    "reportctl",
		Usage:   "Search and index malware analysis reports",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "Config environment (config/<env>.yaml)",
				EnvVars: []string{"ENV"},
				Value:   "local",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Free-text search; wrap the query in single quotes for an exact phrase",
				ArgsUsage: "<query>",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{Name: "knn", Usage: "Rank by embedding similarity"},
				}, pageFlags...),
				Action: searchCommand,
			},
			{
				Name:      "expr",
				Usage:     "Boolean search: field:value AND|OR|NOT field:value",
				ArgsUsage: "<field:value> <operator> <field:value>",
				Flags:     pageFlags,
				Action:    exprCommand,
			},
			{
				Name:  "index",
				Usage: "Confirm and index reports from a JSONL file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "JSONL file, one report per line (- for stdin)",
						Required: true,
					},
				},
				Action: indexCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Serve search tools over MCP stdio",
				Action: mcpCommand,
			},
		},
	}
}

// setup loads config and wires services. Logs go to stderr so stdout stays machine-readable.
func setup(c *cli.Context) (*app.App, *zap.Logger, error) {
	cfg, err := config.Load(c.String("env"))
	if err != nil {
		return nil, nil, err
	}
	logger, err := logpkg.NewLogger("cli", c.String("log-level"))
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(c.Context, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return a, logger, nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	req, err := request.New(query, c.Int("page"), c.Int("size"), c.Bool("knn"))
	if err != nil {
		return err
	}

	a, _, err := setup(c)
	if err != nil {
		return err
	}
	defer a.Close()

	page, err := a.Search.Search(c.Context, req)
	if err != nil {
		return err
	}
	return writePage(c.App.Writer, page)
}

func exprCommand(c *cli.Context) error {
	operands, err := expressionArgs(c.Args().Slice())
	if err != nil {
		return err
	}

	a, _, err := setup(c)
	if err != nil {
		return err
	}
	defer a.Close()

	page, err := a.Search.SearchExpression(c.Context, operands, c.Int("page"), c.Int("size"))
	if err != nil {
		return err
	}
	return writePage(c.App.Writer, page)
}

// expressionArgs accepts the three operands as separate args or as one quoted string.
func expressionArgs(args []string) ([]string, error) {
	if len(args) == 1 {
		args = searchuc.SplitExpression(args[0])
	}
	if len(args) != 3 {
		return nil, fmt.Errorf("expression needs 3 elements (field:value OP field:value), got %d", len(args))
	}
	return args, nil
}

func indexCommand(c *cli.Context) error {
	in, closeIn, err := openInput(c.String("file"))
	if err != nil {
		return err
	}
	defer closeIn()

	items, err := readReports(in)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return errors.New("no reports in input")
	}

	a, _, err := setup(c)
	if err != nil {
		return err
	}
	defer a.Close()

	var total dombatch.Summary
	for start := 0; start < len(items); start += reportuc.MaxBatchSize {
		end := min(start+reportuc.MaxBatchSize, len(items))
		results := a.Reports.IndexBatch(c.Context, items[start:end])
		for _, r := range results {
			if r.Err() != nil {
				fmt.Fprintf(c.App.ErrWriter, "record %d: %v\n", start+r.Position()+1, r.Err())
			}
		}
		sum := dombatch.Summarize(results)
		total.OK += sum.OK
		total.Failed += sum.Failed
	}

	fmt.Fprintf(c.App.Writer, "indexed %d, failed %d\n", total.OK, total.Failed)
	if total.Failed > 0 {
		return cli.Exit("", 2)
	}
	return nil
}

func mcpCommand(c *cli.Context) error {
	a, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer a.Close()

	return mcpTransport.NewServer(a.Search, logger).Serve()
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}

// readReports parses JSONL; blank lines are skipped.
func readReports(r io.Reader) ([]domreport.Input, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	var items []domreport.Input
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var req dto.ReportRequest
		if err := json.Unmarshal([]byte(text), &req); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		items = append(items, req.Input())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return items, nil
}

func writePage(w io.Writer, page result.Page) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dto.FromPage(page)); err != nil {
		return fmt.Errorf("encode page: %w", err)
	}
	return nil
}
