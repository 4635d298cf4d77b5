//go:build linux

package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeCommand(t *testing.T) {
	assert.Equal(t, []string{"wtype", "--"}, typeCommand(true))
	assert.Equal(t, "xdotool", typeCommand(false)[0])
	assert.Equal(t, "--", typeCommand(false)[3])
}
