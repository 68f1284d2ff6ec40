package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const addressBlockText = `Oneway 123 Main St
Suite 4
Brunswick, GA 31520

K3D Work Order: 914578
P.O. #: 454300

Remarks: leave at gate

Ordered By: J. Smith
`

func TestFieldExtractor_AddressBlockLayout(t *testing.T) {
	f := NewFieldExtractor(nil).Extract(addressBlockText)

	assert.Equal(t, "Oneway 123 Main St Suite 4 Brunswick, GA 31520", f.Project)
	assert.Equal(t, "914578", f.WorkOrderNumber)
	assert.Equal(t, "454300", f.PurchaseOrderNumber)
	assert.Equal(t, "GA", f.Region)
	assert.Equal(t, "leave at gate", f.Notes)
	assert.Equal(t, "J. Smith", f.ProjectManager)
}

func TestFieldExtractor_FallbackLayout(t *testing.T) {
	text := "Confirmation for WO/PO Riverside Plaza, WO 778812 PO 991234\n"
	f := NewFieldExtractor(nil).Extract(text)

	assert.Equal(t, "Riverside Plaza", f.Project)
	assert.Equal(t, "778812", f.WorkOrderNumber)
	assert.Equal(t, "991234", f.PurchaseOrderNumber)
}

func TestFieldExtractor_FirstMatchWinsPerField(t *testing.T) {
	// Both the labeled and the bare WO forms are present; the labeled
	// rule is listed first and must win.
	text := "K3D Work Order: 111111\nWO 222222\n"
	f := NewFieldExtractor(nil).Extract(text)
	assert.Equal(t, "111111", f.WorkOrderNumber)
}

func TestFieldExtractor_ShortWONumberIgnoredByFallback(t *testing.T) {
	// The bare-WO fallback requires six or more digits.
	f := NewFieldExtractor(nil).Extract("WO 12345\n")
	assert.Empty(t, f.WorkOrderNumber)
}

func TestFieldExtractor_RegionIsCaseSensitive(t *testing.T) {
	f := NewFieldExtractor(nil).Extract("brunswick, ga 31520\n")
	assert.Empty(t, f.Region)

	f = NewFieldExtractor(nil).Extract("Brunswick, GA 31520\n")
	assert.Equal(t, "GA", f.Region)
}

func TestFieldExtractor_NotesLabelsInOrder(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "remarks paragraph",
			text: "Remarks: call before arrival\ncheck in at office\n\nnext section",
			want: "call before arrival\ncheck in at office",
		},
		{
			name: "instructions paragraph",
			text: "Instructions: use rear entrance\n\nnext section",
			want: "use rear entrance",
		},
		{
			name: "mail body runs to end of text",
			text: "header\nMessage Received in the email: please reschedule\nto next week",
			want: "please reschedule\nto next week",
		},
		{
			name: "remarks wins over mail body",
			text: "Remarks: gate code 4411\n\nMessage Received in the email: ignored",
			want: "gate code 4411",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFieldExtractor(nil).Extract(tt.text)
			assert.Equal(t, tt.want, f.Notes)
		})
	}
}

func TestFieldExtractor_MissingPatternsLeaveFieldsEmpty(t *testing.T) {
	f := NewFieldExtractor(nil).Extract("nothing recognizable in here")
	assert.Equal(t, Fields{}, f)
}

func TestFieldExtractor_FieldsAreIndependent(t *testing.T) {
	// A document with only a work order number still yields that field.
	f := NewFieldExtractor(nil).Extract("K3D Work Order: 555123")
	assert.Equal(t, "555123", f.WorkOrderNumber)
	assert.Empty(t, f.Project)
	assert.Empty(t, f.Region)
}

func TestFieldExtractor_CustomRules(t *testing.T) {
	rules, err := ParseRules([]byte(`{
		"rules": [
			{"field": "project", "pattern": "Site:\\s*([^\\n]+)"},
			{"field": "wo", "pattern": "Job\\s*#(\\d+)"}
		]
	}`))
	require.NoError(t, err)

	f := NewFieldExtractor(rules).Extract("Site: Dockside Warehouse\nJob #42017\n")
	assert.Equal(t, "Dockside Warehouse", f.Project)
	assert.Equal(t, "42017", f.WorkOrderNumber)
}
