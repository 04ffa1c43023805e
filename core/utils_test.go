package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Ahmad Fulan", CleanString("  Ahmad Fulan\t"))
	assert.Equal(t, "hamid@markaz.io", CleanString(" Hamid@Markaz.IO ", true))
}

func TestCleanNIS(t *testing.T) {
	assert.Equal(t, "20260042", CleanNIS("20260042"))
	assert.Equal(t, "20260042", CleanNIS(" 2026 0042 "))
	assert.Equal(t, "20260042", CleanNIS("2026-0042"))
}
