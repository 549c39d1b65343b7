package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionSkew(t *testing.T) {
	require.Equal(t, "", versionSkew("1.2.3", "1.2.9"))
	require.Equal(t, "minor", versionSkew("1.2.3", "1.3.0"))
	require.Equal(t, "major", versionSkew("1.2.3", "2.0.0"))
	require.Equal(t, "", versionSkew("0.0.0-dev", "garbage"))
}
