package compile

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shipq/sphinxql/query"
)

// Platform defines how identifiers and values are quoted. The compiler only
// talks to the Platform, so tests can swap in their own.
type Platform interface {
	// Name returns the platform name for debugging/logging.
	Name() string

	// QuoteIdentifier quotes a column, table or alias name.
	QuoteIdentifier(name string) string

	// QuoteValue renders v as a literal.
	QuoteValue(v any) (string, error)

	// QuoteValueList renders vs as a parenthesized literal list.
	QuoteValueList(vs []any) (string, error)

	// FloatAsLiteral reports whether float arguments are always inlined,
	// even when compiling with placeholders.
	FloatAsLiteral() bool
}

// =============================================================================
// SphinxQL Platform
// =============================================================================

// SphinxQLPlatform implements Platform for searchd.
type SphinxQLPlatform struct {
	floatPrecision int
	floatAsLiteral bool
}

// PlatformOption configures a SphinxQLPlatform.
type PlatformOption func(*SphinxQLPlatform)

// WithFloatPrecision renders floats with exactly n decimals. n <= 0 keeps the
// shortest representation that round-trips.
func WithFloatPrecision(n int) PlatformOption {
	return func(p *SphinxQLPlatform) { p.floatPrecision = n }
}

// WithFloatAsLiteral controls whether float arguments bypass placeholders.
// Defaults to true.
func WithFloatAsLiteral(on bool) PlatformOption {
	return func(p *SphinxQLPlatform) { p.floatAsLiteral = on }
}

// NewSphinxQL returns a configured SphinxQL platform.
func NewSphinxQL(opts ...PlatformOption) *SphinxQLPlatform {
	p := &SphinxQLPlatform{floatAsLiteral: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SphinxQL is the default platform.
var SphinxQL Platform = NewSphinxQL()

func (p *SphinxQLPlatform) Name() string { return "sphinxql" }

func (p *SphinxQLPlatform) FloatAsLiteral() bool { return p.floatAsLiteral }

// QuoteIdentifier wraps name in backticks, doubling embedded backticks.
// Dotted names are not split: searchd has no qualified identifiers.
func (p *SphinxQLPlatform) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (p *SphinxQLPlatform) QuoteValue(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return quoteString(x), nil
	case []byte:
		return quoteString(string(x)), nil
	case bool:
		if x {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		return p.formatFloat(x, 64)
	case float32:
		return p.formatFloat(float64(x), 32)
	case decimal.Decimal:
		return p.formatDecimal(x), nil
	case time.Time:
		return strconv.FormatInt(x.Unix(), 10), nil
	case query.Literal:
		return string(x), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return "NULL", nil
		}
		return p.QuoteValue(rv.Elem().Interface())
	case reflect.String:
		return quoteString(rv.String()), nil
	case reflect.Bool:
		return p.QuoteValue(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return p.formatFloat(rv.Float(), 32)
	case reflect.Float64:
		return p.formatFloat(rv.Float(), 64)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return quoteString(string(rv.Bytes())), nil
		}
		return p.QuoteValueList(listValues(rv))
	}
	return "", fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
}

func (p *SphinxQLPlatform) QuoteValueList(vs []any) (string, error) {
	if len(vs) == 0 {
		return "", fmt.Errorf("%w: empty value list", ErrUnsupportedValue)
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		s, err := p.QuoteValue(v)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return "(" + strings.Join(parts, ", ") + ")", nil
}

func (p *SphinxQLPlatform) formatFloat(f float64, bits int) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedValue, f)
	}
	if bits == 32 {
		return p.formatDecimal(decimal.NewFromFloat32(float32(f))), nil
	}
	return p.formatDecimal(decimal.NewFromFloat(f)), nil
}

// formatDecimal always emits a decimal point so searchd parses the literal
// as a float, never as an integer.
func (p *SphinxQLPlatform) formatDecimal(d decimal.Decimal) string {
	if p.floatPrecision > 0 {
		return d.StringFixed(int32(p.floatPrecision))
	}
	s := d.String()
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// quoteString single-quotes s using MySQL backslash escapes.
func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case 0:
			b.WriteString(`\0`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\x1a':
			b.WriteString(`\Z`)
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// isList reports whether v is a slice or array other than []byte.
func isList(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv, false
		}
		return rv, true
	}
	return rv, false
}

func listValues(rv reflect.Value) []any {
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

var _ Platform = (*SphinxQLPlatform)(nil)
