package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkOrder_Title(t *testing.T) {
	w := &WorkOrder{Project: "Oneway 123 Main St", WorkOrderNumber: "914578"}
	assert.Equal(t, "Oneway 123 Main St - WO#914578", w.Title())

	w.Project = ""
	assert.Equal(t, "Work Order - WO#914578", w.Title())
}

func TestUser_PasswordHashNeverMarshals(t *testing.T) {
	u := User{Email: "a@example.com", PasswordHash: "bcrypt-hash"}
	bs, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(bs), "bcrypt-hash")
}
