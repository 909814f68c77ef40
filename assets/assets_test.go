package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAppIcon(t *testing.T) {
	icon := GetAppIcon()
	require.NotNil(t, icon)
	assert.Equal(t, "checklist.svg", icon.Name())
	assert.Contains(t, string(icon.Content()), "<svg")
}
