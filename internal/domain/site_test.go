package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSite_Eligible(t *testing.T) {
	base := Site{ID: 1, URL: "https://example.com", Public: true}
	require.True(t, base.Eligible())

	archived := base
	archived.Archived = true
	require.False(t, archived.Eligible())

	spam := base
	spam.Spam = true
	require.False(t, spam.Eligible())

	deleted := base
	deleted.Deleted = true
	require.False(t, deleted.Eligible())

	private := base
	private.Public = false
	require.False(t, private.Eligible())
}

func TestSite_HostAndPathPrefix(t *testing.T) {
	cases := []struct {
		url  string
		host string
		path string
	}{
		{"https://example.com", "example.com", ""},
		{"https://example.com/", "example.com", ""},
		{"https://Example.COM/blog/", "example.com", "/blog"},
		{"http://docs.example.com/handbook", "docs.example.com", "/handbook"},
		{"example.com/shop", "example.com", "/shop"},
	}
	for _, tc := range cases {
		s := Site{URL: tc.url}
		require.Equal(t, tc.host, s.Host(), "host of %s", tc.url)
		require.Equal(t, tc.path, s.PathPrefix(), "path of %s", tc.url)
	}
}
