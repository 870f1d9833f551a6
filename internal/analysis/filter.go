package analysis

// GroupScore returns the first extractable score across a group's question
// entries, scanning in order and returning on the first hit. Nil means the
// group has no usable score anywhere.
func GroupScore(g Group) *int {
	for _, q := range g.Questions {
		if q.Score != nil {
			return q.Score
		}
	}
	return nil
}

// FilterByMinScore keeps groups whose first extractable score is at least
// min. A nil min means no filtering. Groups with no score never pass a
// numeric threshold.
func FilterByMinScore(groups []Group, min *int) []Group {
	if min == nil {
		return groups
	}
	var out []Group
	for _, g := range groups {
		if score := GroupScore(g); score != nil && *score >= *min {
			out = append(out, g)
		}
	}
	return out
}
