package guid_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/srsradio/client/guid"
)

var shortGuidPattern = regexp.MustCompile(`^[A-Za-z0-9\-_]+$`)

func TestNewShape(t *testing.T) {
	g := guid.New()

	require.Len(t, g, guid.Length)
	require.True(t, shortGuidPattern.MatchString(g), "guid %q contains unexpected characters", g)
}

func TestNewIsUnique(t *testing.T) {
	a := guid.New()
	b := guid.New()

	require.NotEqual(t, a, b)
}

func TestValid(t *testing.T) {
	require.True(t, guid.Valid(guid.New()))
	require.False(t, guid.Valid("too-short"))
	require.False(t, guid.Valid(""))
}
