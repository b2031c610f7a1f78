package maps

import (
	"context"
	"errors"
	"testing"

	appErrors "memocal/internal/pkg/errors"
	"memocal/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBuildsLinks(t *testing.T) {
	l, err := NewLauncher("https://www.google.com/maps/search/", logger.Nop())
	require.NoError(t, err)

	target, err := l.Open(context.Background(), "  Taipei 101 ")
	require.NoError(t, err)
	assert.Equal(t, "Taipei 101", target.Location)
	assert.Equal(t, "https://www.google.com/maps/search/?api=1&query=Taipei+101", target.URL)
	assert.Equal(t, "geo:0,0?q=Taipei+101", target.GeoURI)
}

func TestOpenBlankLocation(t *testing.T) {
	l, err := NewLauncher("https://maps.example.com/search", logger.Nop())
	require.NoError(t, err)

	_, err = l.Open(context.Background(), "   ")
	assert.True(t, errors.Is(err, appErrors.ErrNoMapHandler))
}

func TestNewLauncherRejectsRelativeURL(t *testing.T) {
	_, err := NewLauncher("maps/search", logger.Nop())
	assert.Error(t, err)
}
