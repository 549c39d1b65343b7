package domain

import "strings"

// Site is one site in the network. The numeric ID is the site handle that
// every per-site platform operation takes explicitly; there is no ambient
// "current site" anywhere in the system.
type Site struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`

	Public   bool `json:"public"`
	Archived bool `json:"archived"`
	Spam     bool `json:"spam"`
	Deleted  bool `json:"deleted"`

	Main bool `json:"main,omitempty"`
}

// Eligible reports whether the site participates in network-wide operations:
// public and not archived, spam, or deleted.
func (s Site) Eligible() bool {
	return s.Public && !s.Archived && !s.Spam && !s.Deleted
}

// Host returns the host portion of the site URL, without scheme or path.
func (s Site) Host() string {
	return siteURLParts(s.URL).host
}

// PathPrefix returns the path portion of the site URL, normalized to have a
// leading slash and no trailing slash. The main site of a path-based network
// returns "".
func (s Site) PathPrefix() string {
	return siteURLParts(s.URL).path
}

// SplitURL splits a URL into lowercased host and path, tolerating a missing
// scheme. The path keeps its leading slash and loses any trailing slash.
func SplitURL(raw string) (host, path string) {
	parts := siteURLParts(raw)
	return parts.host, parts.path
}

type urlParts struct {
	host string
	path string
}

func siteURLParts(raw string) urlParts {
	rest := raw
	if idx := strings.Index(rest, "://"); idx >= 0 {
		rest = rest[idx+3:]
	}
	host := rest
	path := ""
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		host = rest[:idx]
		path = strings.TrimSuffix(rest[idx:], "/")
	}
	return urlParts{host: strings.ToLower(host), path: path}
}
