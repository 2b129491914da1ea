package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSteps(t *testing.T) {
	n, err := parseSteps(nil, 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = parseSteps([]string{"3"}, 0)
	assert.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, bad := range []string{"0", "-2", "all"} {
		_, err = parseSteps([]string{bad}, 0)
		assert.Error(t, err, bad)
	}
}
