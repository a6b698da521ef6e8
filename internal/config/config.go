// Package config loads searchd connection settings from sphinxql.ini.
//
// The [searchd] section configures the default adapter. Every
// [searchd.<name>] section configures an additional named adapter:
//
//	[searchd]
//	url = sphinxql://127.0.0.1:9306
//	timeout = 2s
//
//	[searchd.replica]
//	host = 10.0.0.7
//	float_precision = 4
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shipq/sphinxql/dburl"
)

// ConfigFilename is the name of the config file.
const ConfigFilename = "sphinxql.ini"

// DefaultAdapter names the adapter configured by the [searchd] section.
const DefaultAdapter = "default"

// EnvURL fills the default adapter's url when the file leaves it empty.
const EnvURL = "SPHINXQL_URL"

const sectionPrefix = "searchd"

var (
	// ErrConfigNotFound is returned when sphinxql.ini is not found and
	// SPHINXQL_URL is not set.
	ErrConfigNotFound = errors.New("sphinxql.ini not found")

	// ErrUnsupportedDriver is returned for any driver other than mysql.
	ErrUnsupportedDriver = errors.New("unsupported driver")
)

// Config holds every adapter from sphinxql.ini, in file order.
type Config struct {
	// Dir is the directory sphinxql.ini was read from.
	Dir string

	Adapters []Adapter
}

// Adapter holds the settings of one searchd connection.
type Adapter struct {
	Name     string
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Charset  string

	// Timeout is used for dialing, reading and writing. Zero means none.
	Timeout time.Duration

	// InterpolateParams makes the client inline parameters. searchd has no
	// server-side prepared statements, so this defaults to true.
	InterpolateParams bool

	// FloatPrecision is the number of decimals for float literals. Zero
	// means the shortest exact form.
	FloatPrecision int
}

// DefaultAdapterConfig returns the settings used for keys a section leaves
// out.
func DefaultAdapterConfig(name string) Adapter {
	return Adapter{
		Name:              name,
		Driver:            "mysql",
		Host:              "127.0.0.1",
		Port:              dburl.DefaultPort,
		Charset:           "utf8",
		InterpolateParams: true,
	}
}

// Addr returns host:port.
func (a Adapter) Addr() string {
	return dburl.Endpoint{Host: a.Host, Port: a.Port}.Addr()
}

// Adapter returns the adapter called name.
func (c *Config) Adapter(name string) (Adapter, bool) {
	for _, a := range c.Adapters {
		if a.Name == name {
			return a, true
		}
	}
	return Adapter{}, false
}

// Names returns the adapter names in file order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Adapters))
	for _, a := range c.Adapters {
		names = append(names, a.Name)
	}
	return names
}

// Load reads sphinxql.ini from the given directory (or CWD if empty). When
// the file is missing but SPHINXQL_URL is set, the default adapter is built
// from the environment alone.
func Load(dir string) (*Config, error) {
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	iniPath := filepath.Join(dir, ConfigFilename)
	f, err := ParseFile(iniPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if os.Getenv(EnvURL) == "" {
			return nil, fmt.Errorf("%w in %s\n"+
				"  Hint: Run 'sphinxql init' to create one, or set %s",
				ErrConfigNotFound, dir, EnvURL)
		}
		f = &File{Sections: []Section{{Name: sectionPrefix}}}
	case err != nil:
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFilename, err)
	}

	return FromFile(f, dir)
}

// FromFile builds the configuration from a parsed file.
func FromFile(f *File, dir string) (*Config, error) {
	cfg := &Config{Dir: dir}
	for _, section := range f.Sections {
		name, ok := adapterName(section.Name)
		if !ok {
			continue
		}
		if _, dup := cfg.Adapter(name); dup {
			return nil, fmt.Errorf("%s: adapter %q is configured twice", ConfigFilename, name)
		}
		a, err := parseAdapterSection(section, name)
		if err != nil {
			return nil, err
		}
		cfg.Adapters = append(cfg.Adapters, a)
	}
	return cfg, nil
}

func adapterName(section string) (string, bool) {
	if section == sectionPrefix {
		return DefaultAdapter, true
	}
	name, ok := strings.CutPrefix(section, sectionPrefix+".")
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// parseAdapterSection applies defaults, then the url, then the explicit keys.
func parseAdapterSection(s Section, name string) (Adapter, error) {
	a := DefaultAdapterConfig(name)
	key := func(k string) string { return s.Name + "." + k }

	if v := s.Get("driver"); v != "" {
		d := strings.ToLower(v)
		if d != "mysql" {
			return Adapter{}, fmt.Errorf("%s: %s: %w %q\n"+
				"  Supported drivers: mysql",
				ConfigFilename, key("driver"), ErrUnsupportedDriver, v)
		}
		a.Driver = d
	}

	rawURL := s.Get("url")
	if rawURL == "" && name == DefaultAdapter {
		rawURL = os.Getenv(EnvURL)
	}
	if rawURL != "" {
		e, err := dburl.Parse(rawURL)
		if err != nil {
			return Adapter{}, fmt.Errorf("%s: %s: %w", ConfigFilename, key("url"), err)
		}
		a.Host, a.Port = e.Host, e.Port
		a.User, a.Password = e.User, e.Password
		if v := e.Params.Get("charset"); v != "" {
			a.Charset = v
		}
		if v := e.Params.Get("timeout"); v != "" {
			d, err := parseDuration(v, key("url"))
			if err != nil {
				return Adapter{}, err
			}
			a.Timeout = d
		}
	}

	if v := s.Get("host"); v != "" {
		a.Host = v
	}
	if v := s.Get("port"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 1 || port > 65535 {
			return Adapter{}, fmt.Errorf("%s: invalid port for %s: %q", ConfigFilename, key("port"), v)
		}
		a.Port = port
	}
	if v := s.Get("user"); v != "" {
		a.User = v
	}
	if v := s.Get("password"); v != "" {
		a.Password = v
	}
	if v := s.Get("charset"); v != "" {
		a.Charset = v
	}
	if v := s.Get("timeout"); v != "" {
		d, err := parseDuration(v, key("timeout"))
		if err != nil {
			return Adapter{}, err
		}
		a.Timeout = d
	}
	if v := s.Get("interpolate_params"); v != "" {
		b, err := parseBool(v, key("interpolate_params"))
		if err != nil {
			return Adapter{}, err
		}
		a.InterpolateParams = b
	}
	if v := s.Get("float_precision"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Adapter{}, fmt.Errorf("%s: invalid float_precision for %s: %q (expected a non-negative integer)", ConfigFilename, key("float_precision"), v)
		}
		a.FloatPrecision = n
	}

	return a, nil
}

// parseBool parses a boolean value from a string.
func parseBool(s, key string) (bool, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%s: invalid boolean value for %s: %q (expected true/false/1/0)", ConfigFilename, key, s)
	}
}

func parseDuration(s, key string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s: invalid duration for %s: %q (e.g. 500ms, 2s)", ConfigFilename, key, s)
	}
	return d, nil
}

// Exists checks if sphinxql.ini exists in the given directory.
func Exists(dir string) (bool, error) {
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return false, err
		}
	}

	_, err := os.Stat(filepath.Join(dir, ConfigFilename))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
