// Package dsn parses client DSNs into collector endpoints.
//
// A DSN has the form
//
//	{scheme}://{public_key}[:{secret_key}]@{host}[:{port}]/[{path}/]{project_id}
//
// and yields the envelope endpoint
//
//	{scheme}://{host}[:{port}]/[{path}/]api/{project_id}/envelope/
package dsn

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ProtocolVersion is the collector protocol spoken by envship.
const ProtocolVersion = "7"

var (
	ErrEmpty          = errors.New("dsn: empty")
	ErrInvalidScheme  = errors.New("dsn: scheme must be http or https")
	ErrMissingKey     = errors.New("dsn: missing public key")
	ErrMissingHost    = errors.New("dsn: missing host")
	ErrMissingProject = errors.New("dsn: missing project id")
)

// DSN is a parsed client DSN.
type DSN struct {
	Scheme    string
	PublicKey string
	SecretKey string
	Host      string
	Port      string
	Path      string
	ProjectID string
}

// Parse parses raw into a DSN.
func Parse(raw string) (*DSN, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmpty
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("dsn: parse: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrInvalidScheme
	}
	if u.User == nil || u.User.Username() == "" {
		return nil, ErrMissingKey
	}
	if u.Hostname() == "" {
		return nil, ErrMissingHost
	}

	path := strings.TrimSuffix(u.Path, "/")
	idx := strings.LastIndex(path, "/")
	if idx < 0 || path[idx+1:] == "" {
		return nil, ErrMissingProject
	}

	secret, _ := u.User.Password()

	return &DSN{
		Scheme:    u.Scheme,
		PublicKey: u.User.Username(),
		SecretKey: secret,
		Host:      u.Hostname(),
		Port:      u.Port(),
		Path:      path[:idx],
		ProjectID: path[idx+1:],
	}, nil
}

// Origin returns scheme://host[:port].
func (d *DSN) Origin() string {
	host := d.Host
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if d.Port != "" {
		host += ":" + d.Port
	}
	return d.Scheme + "://" + host
}

// EnvelopeURL returns the endpoint payloads are posted to.
func (d *DSN) EnvelopeURL() string {
	return fmt.Sprintf("%s%s/api/%s/envelope/", d.Origin(), d.Path, d.ProjectID)
}

// AuthHeader returns the X-Sentry-Auth value identifying client.
func (d *DSN) AuthHeader(client string) string {
	parts := []string{
		"sentry_version=" + ProtocolVersion,
		"sentry_client=" + client,
		"sentry_key=" + d.PublicKey,
	}
	if d.SecretKey != "" {
		parts = append(parts, "sentry_secret="+d.SecretKey)
	}
	return "Sentry " + strings.Join(parts, ", ")
}

// String reassembles the DSN.
func (d *DSN) String() string {
	user := d.PublicKey
	if d.SecretKey != "" {
		user += ":" + d.SecretKey
	}
	origin := strings.TrimPrefix(d.Origin(), d.Scheme+"://")
	return fmt.Sprintf("%s://%s@%s%s/%s", d.Scheme, user, origin, d.Path, d.ProjectID)
}
