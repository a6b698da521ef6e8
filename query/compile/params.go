package compile

// ParameterContainer collects named parameters in registration order, which
// is also the order their placeholders appear in the SQL.
type ParameterContainer struct {
	names  []string
	values map[string]any
}

// NewParameterContainer returns an empty container.
func NewParameterContainer() *ParameterContainer {
	return &ParameterContainer{values: make(map[string]any)}
}

// Set registers name. Setting an existing name replaces its value and keeps
// its position.
func (c *ParameterContainer) Set(name string, value any) {
	if _, ok := c.values[name]; !ok {
		c.names = append(c.names, name)
	}
	c.values[name] = value
}

// Get returns the value registered under name.
func (c *ParameterContainer) Get(name string) (any, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Len returns the number of parameters.
func (c *ParameterContainer) Len() int { return len(c.names) }

// Names returns the parameter names in registration order.
func (c *ParameterContainer) Names() []string {
	return append([]string(nil), c.names...)
}

// Map returns a copy of the name to value mapping.
func (c *ParameterContainer) Map() map[string]any {
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Values returns the values in registration order.
func (c *ParameterContainer) Values() []any {
	out := make([]any, len(c.names))
	for i, name := range c.names {
		out[i] = c.values[name]
	}
	return out
}
