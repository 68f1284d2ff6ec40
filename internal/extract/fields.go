package extract

// FieldExtractor parses raw document text into candidate work-order
// fields by evaluating an ordered rule list. Evaluation is pure: no side
// effects, no errors; a field whose rules all miss stays empty.
type FieldExtractor struct {
	rules []Rule
}

// NewFieldExtractor builds an extractor over the given rules; nil means
// the built-in default set.
func NewFieldExtractor(rules []Rule) *FieldExtractor {
	if rules == nil {
		rules = DefaultRules()
	}
	return &FieldExtractor{rules: rules}
}

// Extract evaluates the rules against rawText. Per field, first match
// wins; fields are independent of one another.
func (e *FieldExtractor) Extract(rawText string) Fields {
	var f Fields
	for _, rule := range e.rules {
		slot := f.slot(rule.Field)
		if slot == nil || *slot != "" {
			continue
		}
		groups := rule.Pattern.FindStringSubmatch(rawText)
		if groups == nil {
			continue
		}
		extract := rule.Extract
		if extract == nil {
			extract = FirstGroup
		}
		*slot = extract(groups)
	}
	return f
}

func (f *Fields) slot(field Field) *string {
	switch field {
	case FieldProject:
		return &f.Project
	case FieldWorkOrderNumber:
		return &f.WorkOrderNumber
	case FieldPurchaseOrderNumber:
		return &f.PurchaseOrderNumber
	case FieldRegion:
		return &f.Region
	case FieldNotes:
		return &f.Notes
	case FieldProjectManager:
		return &f.ProjectManager
	default:
		return nil
	}
}
