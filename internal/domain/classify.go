package domain

// threshold is one row of a classification table: scores strictly below
// upper get label.
type threshold struct {
	upper float64
	label string
}

func classify(v float64, table []threshold, top string) string {
	for _, t := range table {
		if v < t.upper {
			return t.label
		}
	}
	return top
}
