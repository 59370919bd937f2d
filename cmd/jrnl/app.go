package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/starford/jrnl/internal"
	"github.com/starford/jrnl/internal/apperr"
	"github.com/starford/jrnl/internal/entryio"
	"github.com/starford/jrnl/internal/journal"
	pkgconfig "github.com/starford/jrnl/pkg/config"
)

const defaultConfigPath = "config/config.yaml"

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "jrnl",
		Usage:   "Plain-text journal of dated Markdown entries with a JSON header",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: defaultConfigPath,
				Value:       defaultConfigPath,
				Sources:     cli.EnvVars("JRNL_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Create an empty entry for now",
				ArgsUsage: "<title>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Directory to create the entry in (default: journal.path)"},
				},
				Action: createAction,
			},
			{
				Name:  "list",
				Usage: "List entries in the journal",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "oneline", Usage: "One entry per line"},
					&cli.StringFlag{Name: "tag", Usage: "Only entries with this tag"},
					&cli.StringFlag{Name: "sort", Usage: "date, title or filename", Value: "date"},
				},
				Action: listAction,
			},
			{
				Name:      "show",
				Usage:     "Print a decoded entry",
				ArgsUsage: "<path>",
				Action:    showAction,
			},
			{
				Name:      "check",
				Usage:     "Validate entry files; exits non-zero if any is invalid",
				ArgsUsage: "<path>...",
				Action:    checkAction,
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP API and watch the journal directory",
				Action: serveAction,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: mcpAction,
			},
		},
	}
}

// loadConfig reads the config file named by --config. A missing file at the
// default location falls back to built-in defaults.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	path := cmd.String("config")
	cfg := internal.NewDefaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && path == defaultConfigPath {
		return cfg, cfg.Validate()
	}
	if err := pkgconfig.Load(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
}

func createAction(_ context.Context, cmd *cli.Command) error {
	title := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(title) == "" {
		return cli.Exit("create: a title is required", 2)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dir := cmd.String("path")
	if dir == "" {
		dir = cfg.Journal.Path
	}
	_, path, err := entryio.Create(dir, title, time.Now(), cfg.Journal.SlugMaxLength)
	if err != nil {
		return err
	}
	fmt.Fprintln(out(cmd), path)
	return nil
}

func listAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svcs, err := internal.OpenServices(cfg, internal.NewLogger(os.Stderr, cfg.App.LogLevel))
	if err != nil {
		return err
	}
	defer svcs.Close()

	const page = 200
	w := out(cmd)
	for offset := 0; ; offset += page {
		items, total, err := svcs.Journal.List(ctx, journal.ListParams{
			Limit:  page,
			Offset: offset,
			Tag:    cmd.String("tag"),
			Sort:   cmd.String("sort"),
		})
		if err != nil {
			return err
		}
		for _, it := range items {
			printListItem(w, it, cmd.Bool("oneline"))
		}
		if offset+page >= total {
			return nil
		}
	}
}

var (
	dateColor  = color.New(color.FgCyan).SprintFunc()
	titleColor = color.New(color.Bold).SprintFunc()
	tagColor   = color.New(color.FgYellow).SprintFunc()
	okColor    = color.New(color.FgGreen).SprintFunc()
	badColor   = color.New(color.FgRed).SprintFunc()
)

func printListItem(w io.Writer, it journal.EntryListItem, oneline bool) {
	tags := ""
	if len(it.Tags) > 0 {
		tags = " " + tagColor("#"+strings.Join(it.Tags, " #"))
	}
	if oneline {
		fmt.Fprintf(w, "%s %s%s\n", dateColor(it.Filename), it.Title, tags)
		return
	}
	fmt.Fprintf(w, "%s\n  %s %s%s\n", titleColor(it.Title), dateColor(it.Date), it.Filename, tags)
}

func showAction(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return cli.Exit("show: exactly one path is required", 2)
	}
	rec, err := entryio.Load(cmd.Args().First())
	if err != nil {
		return describe(err)
	}
	h := rec.Header()
	w := out(cmd)
	fmt.Fprintln(w, titleColor(h.Title))
	fmt.Fprintf(w, "%s  %s\n", dateColor(string(h.Date)), h.Filename)
	if len(h.Tags) > 0 {
		fmt.Fprintln(w, tagColor("#"+strings.Join(h.Tags, " #")))
	}
	if body := rec.Body(); body != "" {
		fmt.Fprintf(w, "\n%s\n", body)
	}
	return nil
}

func checkAction(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() == 0 {
		return cli.Exit("check: at least one path is required", 2)
	}
	w := out(cmd)
	failed := 0
	for _, path := range cmd.Args().Slice() {
		if err := checkFile(path); err != nil {
			failed++
			fmt.Fprintf(w, "%s %s: %s\n", badColor("FAIL"), filepath.ToSlash(path), err)
			continue
		}
		fmt.Fprintf(w, "%s %s\n", okColor("ok"), filepath.ToSlash(path))
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d entries invalid", failed, cmd.NArg()), 1)
	}
	return nil
}

// checkFile runs the structural check and then a full decode so that the
// reported error carries its kind.
func checkFile(path string) error {
	ok, err := entryio.Check(path)
	if err != nil {
		return describe(err)
	}
	if !ok {
		return fmt.Errorf("%s: document structure is malformed", apperr.KindFormat)
	}
	if _, err := entryio.Load(path); err != nil {
		return describe(err)
	}
	return nil
}

func describe(err error) error {
	return fmt.Errorf("%s: %w", apperr.KindOf(err), err)
}

func out(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}
