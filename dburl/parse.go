// Package dburl parses searchd connection URLs.
package dburl

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// DefaultPort is the searchd SphinxQL listener port.
const DefaultPort = 9306

// Supported URL schemes
const (
	SchemeSphinxQL = "sphinxql"
	SchemeMySQL    = "mysql"
)

var (
	ErrUnknownScheme = errors.New("unknown searchd URL scheme")
	ErrInvalidURL    = errors.New("invalid searchd URL")
)

// Endpoint is a parsed searchd URL.
type Endpoint struct {
	Scheme   string
	Host     string
	Port     int
	User     string
	Password string
	Params   url.Values
}

// Addr returns host:port.
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// Parse parses sphinxql://host:port or mysql://[user[:pass]@]host:port.
// A missing host means 127.0.0.1 and a missing port means DefaultPort.
// Query parameters are kept as-is.
func Parse(raw string) (Endpoint, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case SchemeSphinxQL, SchemeMySQL:
	default:
		return Endpoint{}, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}

	if u.Opaque != "" {
		return Endpoint{}, fmt.Errorf("%w: %q has no host part", ErrInvalidURL, raw)
	}
	if p := strings.Trim(u.Path, "/"); p != "" {
		return Endpoint{}, fmt.Errorf("%w: searchd has no databases, got path %q", ErrInvalidURL, u.Path)
	}

	e := Endpoint{
		Scheme: scheme,
		Host:   u.Hostname(),
		Port:   DefaultPort,
		Params: u.Query(),
	}
	if e.Host == "" {
		e.Host = "127.0.0.1"
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return Endpoint{}, fmt.Errorf("%w: bad port %q", ErrInvalidURL, p)
		}
		e.Port = port
	}
	if u.User != nil {
		e.User = u.User.Username()
		e.Password, _ = u.User.Password()
	}
	return e, nil
}

// IsLocalhost returns true if the URL points to localhost (127.0.0.1, localhost, or ::1).
func IsLocalhost(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "" || host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// Build formats a sphinxql:// URL for host and port.
func Build(host string, port int) string {
	return fmt.Sprintf("%s://%s", SchemeSphinxQL, net.JoinHostPort(host, strconv.Itoa(port)))
}
