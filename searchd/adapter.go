// Package searchd runs compiled statements against a searchd SphinxQL
// listener over the MySQL wire protocol.
package searchd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/shipq/sphinxql/internal/config"
	"github.com/shipq/sphinxql/logging"
	"github.com/shipq/sphinxql/query"
	"github.com/shipq/sphinxql/query/compile"
)

// ExecQuerier wraps the database operations used by Adapter. *sql.DB,
// *sql.Tx and *sql.Conn satisfy it.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Adapter compiles statements and runs them on one searchd connection pool.
type Adapter struct {
	name     string
	conn     ExecQuerier
	compiler *compile.Compiler
	logger   *slog.Logger

	// literal sends every statement with its values inlined and no
	// arguments.
	literal bool
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithCompiler sets the compiler.
func WithCompiler(c *compile.Compiler) Option {
	return func(a *Adapter) {
		if c != nil {
			a.compiler = c
		}
	}
}

// WithLiteral makes the adapter inline every value instead of passing
// arguments to the driver.
func WithLiteral(on bool) Option {
	return func(a *Adapter) { a.literal = on }
}

// WithName sets the name used in log records.
func WithName(name string) Option {
	return func(a *Adapter) { a.name = name }
}

// New wraps conn.
func New(conn ExecQuerier, opts ...Option) *Adapter {
	a := &Adapter{
		name:     config.DefaultAdapter,
		conn:     conn,
		compiler: compile.NewCompiler(nil),
		logger:   logging.Discard,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("adapter", a.name)
	return a
}

// DSN formats cfg as a go-sql-driver/mysql data source name.
func DSN(cfg config.Adapter) (string, error) {
	if cfg.Driver != "" && cfg.Driver != "mysql" {
		return "", fmt.Errorf("searchd: %w %q", config.ErrUnsupportedDriver, cfg.Driver)
	}
	c := mysql.NewConfig()
	c.Net = "tcp"
	c.Addr = cfg.Addr()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Timeout = cfg.Timeout
	c.ReadTimeout = cfg.Timeout
	c.WriteTimeout = cfg.Timeout
	c.InterpolateParams = cfg.InterpolateParams
	if cfg.Charset != "" {
		c.Params = map[string]string{"charset": cfg.Charset}
	}
	return c.FormatDSN(), nil
}

// Open connects to the searchd described by cfg. Without interpolate_params
// the adapter sends literal SQL, since searchd has no server-side prepared
// statements.
func Open(cfg config.Adapter, opts ...Option) (*Adapter, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("searchd: dsn: %w", err)
	}
	connector, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, fmt.Errorf("searchd: connector: %w", err)
	}
	db := sql.OpenDB(connector)

	var platformOpts []compile.PlatformOption
	if cfg.FloatPrecision > 0 {
		platformOpts = append(platformOpts, compile.WithFloatPrecision(cfg.FloatPrecision))
	}
	base := []Option{
		WithName(cfg.Name),
		WithCompiler(compile.NewCompiler(compile.NewSphinxQL(platformOpts...))),
		WithLiteral(!cfg.InterpolateParams),
	}
	return New(db, append(base, opts...)...), nil
}

// Name returns the adapter name.
func (a *Adapter) Name() string { return a.name }

// Compiler returns the compiler used for every statement.
func (a *Adapter) Compiler() *compile.Compiler { return a.compiler }

// SQLString compiles stmt with every value inlined.
func (a *Adapter) SQLString(stmt query.Statement) (string, error) {
	sql, err := a.compiler.SQLString(stmt)
	if err != nil {
		return "", fmt.Errorf("searchd: compile: %w", err)
	}
	return sql, nil
}

// prepare compiles stmt to the SQL and arguments sent to the driver.
func (a *Adapter) prepare(stmt query.Statement) (string, []any, error) {
	if s, ok := stmt.(*query.Select); ok && s != nil {
		if ignored := s.Ignored(); ignored.Any() {
			a.logger.Warn("searchd ignores unsupported select features",
				"ignored", ignored.String(),
			)
		}
	}
	if a.literal {
		sql, err := a.SQLString(stmt)
		return sql, nil, err
	}
	res, err := a.compiler.Prepare(stmt, compile.Positional)
	if err != nil {
		return "", nil, fmt.Errorf("searchd: compile: %w", err)
	}
	return res.SQL, res.Args(), nil
}

// Query runs a SELECT and returns its rows. The caller closes them.
func (a *Adapter) Query(ctx context.Context, s *query.Select) (*sql.Rows, error) {
	sql, args, err := a.prepare(s)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	rows, err := a.conn.QueryContext(ctx, sql, args...)
	a.logStatement(sql, args, start, err)
	if err != nil {
		return nil, fmt.Errorf("searchd: query: %w", err)
	}
	return rows, nil
}

// QueryMaps runs a SELECT and returns every row as a column name to value
// map. Byte values are returned as strings.
func (a *Adapter) QueryMaps(ctx context.Context, s *query.Select) ([]map[string]any, error) {
	rows, err := a.Query(ctx, s)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMaps(rows)
}

func scanMaps(rows *sql.Rows) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("searchd: columns: %w", err)
	}
	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("searchd: scan: %w", err)
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("searchd: rows: %w", err)
	}
	return out, nil
}

// Exec runs a statement that returns no rows and reports the number of
// affected rows.
func (a *Adapter) Exec(ctx context.Context, stmt query.Statement) (int64, error) {
	sql, args, err := a.prepare(stmt)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	res, err := a.conn.ExecContext(ctx, sql, args...)
	a.logStatement(sql, args, start, err)
	if err != nil {
		return 0, fmt.Errorf("searchd: exec: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("searchd: exec: %w", err)
	}
	return n, nil
}

// MetaValue is one row of SHOW META.
type MetaValue struct {
	Name  string
	Value string
}

// Meta returns SHOW META for the last query on the same connection. Run it
// on a *sql.Conn or *sql.Tx adapter when the pool has more than one
// connection.
func (a *Adapter) Meta(ctx context.Context) ([]MetaValue, error) {
	const stmt = "SHOW META"
	start := time.Now()
	rows, err := a.conn.QueryContext(ctx, stmt)
	a.logStatement(stmt, nil, start, err)
	if err != nil {
		return nil, fmt.Errorf("searchd: meta: %w", err)
	}
	defer rows.Close()

	var out []MetaValue
	for rows.Next() {
		var m MetaValue
		if err := rows.Scan(&m.Name, &m.Value); err != nil {
			return nil, fmt.Errorf("searchd: meta: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("searchd: meta: %w", err)
	}
	return out, nil
}

// ErrNotPool is returned by Conn when the adapter does not wrap a *sql.DB.
var ErrNotPool = errors.New("searchd: adapter does not wrap a connection pool")

// Conn returns an adapter pinned to a single pooled connection, so that
// Meta reports on the statement run just before it. Close releases the
// connection back to the pool.
func (a *Adapter) Conn(ctx context.Context) (*Adapter, error) {
	db, ok := a.conn.(*sql.DB)
	if !ok {
		return nil, ErrNotPool
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("searchd: conn: %w", err)
	}
	pinned := *a
	pinned.conn = conn
	return &pinned, nil
}

type pinger interface {
	PingContext(ctx context.Context) error
}

// Ping checks the connection. Connections that cannot ping run SHOW STATUS.
func (a *Adapter) Ping(ctx context.Context) error {
	if p, ok := a.conn.(pinger); ok {
		if err := p.PingContext(ctx); err != nil {
			return fmt.Errorf("searchd: ping: %w", err)
		}
		return nil
	}
	rows, err := a.conn.QueryContext(ctx, "SHOW STATUS")
	if err != nil {
		return fmt.Errorf("searchd: ping: %w", err)
	}
	return rows.Close()
}

// ErrNotCloser is returned by Close when the connection cannot be closed
// by the adapter.
var ErrNotCloser = errors.New("searchd: connection is not closable")

// Close closes the underlying pool.
func (a *Adapter) Close() error {
	c, ok := a.conn.(interface{ Close() error })
	if !ok {
		return ErrNotCloser
	}
	return c.Close()
}

func (a *Adapter) logStatement(sql string, args []any, start time.Time, err error) {
	if err != nil {
		a.logger.Error("searchd statement failed",
			"sql", sql,
			"args", args,
			"error", err,
		)
		return
	}
	a.logger.Debug("searchd statement",
		"sql", sql,
		"args", args,
		"duration_ms", float64(time.Since(start).Nanoseconds())/1e6,
	)
}
