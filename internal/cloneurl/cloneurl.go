// Package cloneurl parses the constrained clone-URL form the grading
// backend accepts: <scheme>://<host>/<username>/<project>.git
package cloneurl

import (
	"fmt"
	"net/url"
	"strings"
)

// CloneUrl is a URL syntactically constrained to a single username
// segment and a ".git"-suffixed project segment.
type CloneUrl struct {
	raw         string
	username    string
	projectName string
}

// Parse validates and decomposes a clone-URL string. It returns an
// error if the URL does not have exactly two non-empty path segments,
// the second ending in ".git", or if either segment contains whitespace.
func Parse(raw string) (*CloneUrl, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid clone url %q: %w", raw, err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) != 2 {
		return nil, fmt.Errorf("clone url %q must have exactly two path segments", raw)
	}

	username, project := segments[0], segments[1]
	if username == "" || strings.ContainsAny(username, " \t") {
		return nil, fmt.Errorf("clone url %q has an invalid username segment", raw)
	}
	if !strings.HasSuffix(project, ".git") || strings.ContainsAny(project, " \t") {
		return nil, fmt.Errorf("clone url %q has an invalid project segment", raw)
	}

	return &CloneUrl{
		raw:         raw,
		username:    username,
		projectName: strings.TrimSuffix(project, ".git"),
	}, nil
}

// Username returns the clone URL's username path segment.
func (c *CloneUrl) Username() string { return c.username }

// ProjectName returns the trailing path segment with ".git" stripped.
func (c *CloneUrl) ProjectName() string { return c.projectName }

// String returns the original URL text, unchanged.
func (c *CloneUrl) String() string { return c.raw }
