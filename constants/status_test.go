package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoardLabel(t *testing.T) {
	assert.Equal(t, "Done", BoardLabel(StatusCompleted))
	assert.Equal(t, "Stuck", BoardLabel(StatusOnHold))
	assert.Equal(t, "Working on it", BoardLabel(StatusPending))
	assert.Equal(t, "Working on it", BoardLabel(StatusInProgress))
	assert.Equal(t, "Working on it", BoardLabel(Status("bogus")))
}

func TestIsStatus(t *testing.T) {
	assert.True(t, IsStatus("Pending"))
	assert.True(t, IsStatus("OnHold"))
	assert.False(t, IsStatus("pending"))
	assert.False(t, IsStatus(""))
}

func TestRegions(t *testing.T) {
	assert.True(t, IsRegion("GA"))
	assert.True(t, IsRegion(" ga "))
	assert.False(t, IsRegion("ZZ"))

	r, ok := NormalizeRegion("tx")
	assert.True(t, ok)
	assert.Equal(t, Region("TX"), r)

	_, ok = NormalizeRegion("XX")
	assert.False(t, ok)
}
