package condition

// Criteria is the declarative filter representation handed to a query
// executor (the product store translates it into its native query language).
// It mirrors the condition set one-to-one; no evaluation happens here.
type Criteria struct {
	Relation Logic
	Clauses  []Clause
}

// Clause is one translated condition. Values carries the parsed IN / NOT IN
// list; Value and Value2 are the raw bounds for everything else.
type Clause struct {
	Field    string
	Category Category
	Operator Operator
	Value    string
	Value2   string
	Values   []string
	Exclude  bool
}

// BuildCriteria translates a condition set into executor criteria. Conditions
// with unknown properties or operators are dropped; the caller is expected to
// have validated the set beforehand.
func BuildCriteria(conditions []Condition, logic Logic) Criteria {
	crit := Criteria{Relation: logic}
	if logic != LogicAny {
		crit.Relation = LogicAll
	}

	for _, c := range conditions {
		cat, ok := c.Property.Category()
		if !ok || !c.Operator.Known() || !operatorAllowed(c.Operator, cat) {
			continue
		}

		clause := Clause{
			Field:    string(c.Property),
			Category: cat,
			Operator: c.Operator,
			Value:    c.Value,
			Value2:   c.Value2,
			Exclude:  c.Mode == ModeExclude,
		}
		if c.Operator == OpIn || c.Operator == OpNotIn {
			clause.Values = splitList(c.Value)
		}
		crit.Clauses = append(crit.Clauses, clause)
	}
	return crit
}
