package compile

// Driver formats parameter placeholders for a connection driver.
type Driver interface {
	// Name returns the driver name for debugging/logging.
	Name() string

	// FormatParameterName returns the placeholder token for the named
	// parameter.
	FormatParameterName(name string) string
}

// PositionalDriver emits '?' for every parameter. Values bind in the order
// recorded by Result.ParamOrder.
type PositionalDriver struct{}

func (PositionalDriver) Name() string                      { return "positional" }
func (PositionalDriver) FormatParameterName(string) string { return "?" }

// NamedDriver emits ":name" placeholders.
type NamedDriver struct{}

func (NamedDriver) Name() string                           { return "named" }
func (NamedDriver) FormatParameterName(name string) string { return ":" + name }

var (
	Positional Driver = PositionalDriver{}
	Named      Driver = NamedDriver{}
)
