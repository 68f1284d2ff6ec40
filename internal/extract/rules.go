package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Field names a slot in Fields that a rule can populate.
type Field string

const (
	FieldProject             Field = "project"
	FieldWorkOrderNumber     Field = "wo"
	FieldPurchaseOrderNumber Field = "po"
	FieldRegion              Field = "state"
	FieldNotes               Field = "notes"
	FieldProjectManager      Field = "pm"
)

// Rule is one (field, pattern, extractor) entry. Rules for the same
// field are tried in order; the first one that yields a non-empty value
// wins. Rules are independent and side-effect free, so supporting a new
// document layout is a data change, not a control-flow change.
type Rule struct {
	Field   Field
	Pattern *regexp.Regexp
	// Extract maps the regexp submatches to the field value. Nil means
	// "first capture group, trimmed".
	Extract func(groups []string) string
}

// FirstGroup trims and returns the first capture group.
func FirstGroup(groups []string) string {
	if len(groups) < 2 {
		return ""
	}
	return strings.TrimSpace(groups[1])
}

// JoinGroups returns an extractor that joins every capture group with
// single spaces, each group trimmed, optionally led by a literal prefix.
func JoinGroups(prefix string) func(groups []string) string {
	return func(groups []string) string {
		parts := make([]string, 0, len(groups))
		if prefix != "" {
			parts = append(parts, prefix)
		}
		for _, g := range groups[1:] {
			g = strings.TrimSpace(g)
			if g != "" {
				parts = append(parts, g)
			}
		}
		return strings.Join(parts, " ")
	}
}

// DefaultRules returns the built-in rule set for the work-order layouts
// we receive today: the vendor address-block format and the plainer
// "WO/PO" confirmation format.
func DefaultRules() []Rule {
	return []Rule{
		// Project: three-line address block anchored on the sender marker,
		// joined with single spaces.
		{
			Field:   FieldProject,
			Pattern: regexp.MustCompile(`(?i)Oneway\s+([^\n]+)\n([^\n]+)\n([^\n]+, [A-Z]{2} \d{5})`),
			Extract: JoinGroups("Oneway"),
		},
		// Fallback: single-line "WO/PO <name>, WO" form.
		{
			Field:   FieldProject,
			Pattern: regexp.MustCompile(`(?i)WO/PO\s+(.+?), WO`),
		},

		{
			Field:   FieldWorkOrderNumber,
			Pattern: regexp.MustCompile(`(?i)K3D Work Order:\s*(\d+)`),
		},
		{
			Field:   FieldWorkOrderNumber,
			Pattern: regexp.MustCompile(`(?i)WO\s*(\d{6,})`),
		},

		{
			Field:   FieldPurchaseOrderNumber,
			Pattern: regexp.MustCompile(`(?i)P\.O\. #:\s*(\d+)`),
		},
		{
			Field:   FieldPurchaseOrderNumber,
			Pattern: regexp.MustCompile(`(?i)PO\s*(\d{6,})`),
		},

		// Region: two uppercase letters immediately before a ZIP code.
		// Deliberately case-sensitive.
		{
			Field:   FieldRegion,
			Pattern: regexp.MustCompile(`([A-Z]{2})\s*\d{5}`),
		},

		// Notes: paragraph after a section label, terminated by a blank
		// line. The trailing mail-body label has no terminator.
		{
			Field:   FieldNotes,
			Pattern: regexp.MustCompile(`(?i)Remarks:\s*([\s\S]*?)\n{2,}`),
		},
		{
			Field:   FieldNotes,
			Pattern: regexp.MustCompile(`(?i)Instructions:\s*([\s\S]*?)\n{2,}`),
		},
		{
			Field:   FieldNotes,
			Pattern: regexp.MustCompile(`(?is)Message Received in the email:(.*)$`),
		},

		{
			Field:   FieldProjectManager,
			Pattern: regexp.MustCompile(`(?i)Ordered By:\s*([^\n]*)`),
		},
	}
}

// ruleSpec is the on-disk shape of one rule.
type ruleSpec struct {
	Field   string `json:"field"`
	Pattern string `json:"pattern"`
	Extract *struct {
		Op     string `json:"op"`
		Prefix string `json:"prefix,omitempty"`
	} `json:"extract,omitempty"`
}

type rulesFile struct {
	Rules []ruleSpec `json:"rules"`
}

// rulesSchema returns the JSON-Schema the rules file must satisfy.
func rulesSchema() map[string]any {
	fieldEnum := []string{
		string(FieldProject), string(FieldWorkOrderNumber),
		string(FieldPurchaseOrderNumber), string(FieldRegion),
		string(FieldNotes), string(FieldProjectManager),
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"rules"},
		"properties": map[string]any{
			"rules": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"field", "pattern"},
					"properties": map[string]any{
						"field":   map[string]any{"type": "string", "enum": fieldEnum},
						"pattern": map[string]any{"type": "string", "minLength": 1},
						"extract": map[string]any{
							"type":                 "object",
							"additionalProperties": false,
							"required":             []string{"op"},
							"properties": map[string]any{
								"op":     map[string]any{"type": "string", "enum": []string{"group", "join"}},
								"prefix": map[string]any{"type": "string"},
							},
						},
					},
				},
			},
		},
	}
}

// LoadRules reads a JSON rules file, validates it against the embedded
// schema, and compiles it into an ordered rule list.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules validates and compiles a JSON rules document.
func ParseRules(data []byte) ([]Rule, error) {
	if err := validateAgainstSchema(rulesSchema(), data); err != nil {
		return nil, err
	}

	var rf rulesFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("unmarshal rules: %w", err)
	}

	rules := make([]Rule, 0, len(rf.Rules))
	for i, spec := range rf.Rules {
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): compile pattern: %w", i, spec.Field, err)
		}
		r := Rule{Field: Field(spec.Field), Pattern: re}
		if spec.Extract != nil && spec.Extract.Op == "join" {
			r.Extract = JoinGroups(spec.Extract.Prefix)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// validateAgainstSchema validates data against schemaMap.
func validateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("rules.schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("rules.schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal rules: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("rules file does not match schema: %w", err)
	}
	return nil
}
