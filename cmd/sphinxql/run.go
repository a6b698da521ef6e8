package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/shipq/sphinxql/cli"
	"github.com/shipq/sphinxql/internal/config"
	"github.com/shipq/sphinxql/internal/initcmd"
	"github.com/shipq/sphinxql/internal/project"
	"github.com/shipq/sphinxql/logging"
	"github.com/shipq/sphinxql/query"
	"github.com/shipq/sphinxql/query/compile"
	"github.com/shipq/sphinxql/searchd"
)

const usage = `sphinxql - Build, compile and run SphinxQL statements

Usage:
  sphinxql <command> [arguments]

Commands:
  init          Write a starter sphinxql.ini
  compile       Print the SQL for a SELECT built from flags (no network)
  query         Run a SELECT built from flags and print rows and SHOW META
  delete        Run a DELETE built from flags
  ping          Check that the configured searchd answers

Options:
  -h, --help    Show this help message

Run 'sphinxql <command> -h' for more information on a specific command.
`

// newRegistry opens the adapters for query, delete and ping.
var newRegistry = searchd.NewRegistry

// run dispatches commands and returns an exit code.
func run(args []string) int {
	return runWithOutput(args, os.Stdout, os.Stderr)
}

// runWithOutput dispatches commands with custom output writers.
func runWithOutput(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stdout, usage)
		return 0
	}

	out := cli.New(stdout, stderr)
	cmd, cmdArgs := args[0], args[1:]

	switch cmd {
	case "help", "--help", "-h":
		fmt.Fprint(stdout, usage)
		return 0

	case "init":
		return initcmd.Run(cmdArgs, initcmd.Options{Stdout: stdout, Stderr: stderr})

	case "compile":
		return runCompile(cmdArgs, out)

	case "query":
		return runQuery(cmdArgs, out)

	case "delete":
		return runDelete(cmdArgs, out)

	case "ping":
		return runPing(cmdArgs, out)

	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", cmd)
		fmt.Fprint(stderr, usage)
		return 1
	}
}

func runCompile(args []string, out *cli.Output) int {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	fs.SetOutput(out.Stderr)
	var sf selectFlags
	sf.register(fs)
	named := fs.Bool("named", false, "use :name placeholders instead of ?")
	precision := fs.Int("float-precision", 0, "decimals for float literals (0 = shortest)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	s, err := sf.build()
	if err != nil {
		return out.Error("build", err)
	}
	for _, w := range sf.warnings() {
		out.Warnf("%s", w)
	}

	var opts []compile.PlatformOption
	if *precision > 0 {
		opts = append(opts, compile.WithFloatPrecision(*precision))
	}
	c := compile.NewCompiler(compile.NewSphinxQL(opts...))

	var drv compile.Driver = compile.Positional
	if *named {
		drv = compile.Named
	}
	res, err := c.Prepare(s, drv)
	if err != nil {
		return out.Error("compile", err)
	}
	literal, err := c.SQLString(s)
	if err != nil {
		return out.Error("compile", err)
	}

	out.Info(res.SQL)
	if len(res.ParamOrder) > 0 {
		out.Info("-- params")
		for i, name := range res.ParamOrder {
			v, err := c.Platform().QuoteValue(res.Params[name])
			if err != nil {
				v = fmt.Sprintf("%v", res.Params[name])
			}
			out.Infof("%d\t%s\t%s", i+1, name, v)
		}
	}
	out.Info("-- literal")
	out.Info(literal)
	return 0
}

// adapterFlags are the connection flags shared by query, delete and ping.
type adapterFlags struct {
	adapter string
	dir     string
	verbose bool
}

func (f *adapterFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.adapter, "adapter", config.DefaultAdapter, "adapter name from sphinxql.ini")
	fs.StringVar(&f.dir, "dir", "", "directory containing sphinxql.ini (default: closest above CWD)")
	fs.BoolVar(&f.verbose, "v", false, "log every statement")
}

// open loads the config and returns the selected adapter with a cleanup
// func.
func (f *adapterFlags) open(out *cli.Output) (*searchd.Adapter, func(), error) {
	dir, err := project.ConfigDir(f.dir, "")
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(out.Stderr, slog.LevelWarn, false)
	if f.verbose {
		logger = logging.New(out.Stderr, slog.LevelDebug, true)
	}
	reg := newRegistry(cfg, searchd.WithLogger(logger))
	a, err := reg.Get(f.adapter)
	if err != nil {
		reg.Close()
		return nil, nil, err
	}
	return a, func() { reg.Close() }, nil
}

func runQuery(args []string, out *cli.Output) int {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.SetOutput(out.Stderr)
	var sf selectFlags
	var af adapterFlags
	sf.register(fs)
	af.register(fs)
	noMeta := fs.Bool("no-meta", false, "skip SHOW META")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	s, err := sf.build()
	if err != nil {
		return out.Error("build", err)
	}
	for _, w := range sf.warnings() {
		out.Warnf("%s", w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, closeAll, err := af.open(out)
	if err != nil {
		return out.Error("open", err)
	}
	defer closeAll()

	sess, err := a.Conn(ctx)
	if err != nil {
		return out.Error("connect", err)
	}
	defer sess.Close()

	rows, err := sess.Query(ctx, s)
	if err != nil {
		return out.Error("query", err)
	}
	if err := printRows(out.Stdout, rows); err != nil {
		return out.Error("query", err)
	}

	if *noMeta {
		return 0
	}
	meta, err := sess.Meta(ctx)
	if err != nil {
		return out.Error("meta", err)
	}
	out.Info("-- meta")
	for _, m := range meta {
		out.Infof("%s\t%s", m.Name, m.Value)
	}
	return 0
}

func runDelete(args []string, out *cli.Output) int {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(out.Stderr)
	var af adapterFlags
	af.register(fs)
	index := fs.String("index", "", "index to delete from")
	var where listFlag
	fs.Var(&where, "where", "raw WHERE condition (repeatable, at least one)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *index == "" {
		return out.Error("-index is required", nil)
	}
	if len(where) == 0 {
		return out.Error("refusing to delete without -where", nil)
	}

	d := query.DeleteFrom(*index)
	for _, w := range where {
		d.Where(w)
	}
	if err := d.Err(); err != nil {
		return out.Error("build", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, closeAll, err := af.open(out)
	if err != nil {
		return out.Error("open", err)
	}
	defer closeAll()

	n, err := a.Exec(ctx, d)
	if err != nil {
		return out.Error("delete", err)
	}
	out.Successf("deleted %d row(s) from %s", n, *index)
	return 0
}

func runPing(args []string, out *cli.Output) int {
	fs := flag.NewFlagSet("ping", flag.ContinueOnError)
	fs.SetOutput(out.Stderr)
	var af adapterFlags
	af.register(fs)
	if err := fs.Parse(args); err != nil {
		return 1
	}

	a, closeAll, err := af.open(out)
	if err != nil {
		return out.Error("open", err)
	}
	defer closeAll()

	if err := a.Ping(context.Background()); err != nil {
		return out.Error("ping", err)
	}
	out.Successf("%s is up", a.Name())
	return 0
}

// printRows writes a header and one tab-separated line per row.
func printRows(w io.Writer, rows *sql.Rows) error {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, c := range columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, c)
	}
	fmt.Fprintln(tw)

	values := make([]sql.RawBytes, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		for i, v := range values {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			if v == nil {
				fmt.Fprint(tw, "NULL")
				continue
			}
			fmt.Fprint(tw, string(v))
		}
		fmt.Fprintln(tw)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return tw.Flush()
}
