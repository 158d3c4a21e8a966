package check

// Annotate sets the Changed flag on each of this run's results by comparing
// fingerprints against the previous run's results, keyed by organization name:
//
//   - no prior result for the organization: Changed=true (first observation of
//     an organization is always reported as a change)
//   - prior result found: Changed when the fingerprints differ
//   - failed fetch: Changed=false regardless of fingerprints, since there is
//     no new content to report
//
// Annotate is a pure function: it does not mutate its inputs and the returned
// slice preserves the order of current.
func Annotate(current, previous []Result) []Result {
	prior := make(map[string]Result, len(previous))
	for _, r := range previous {
		prior[r.OrganizationName] = r
	}

	annotated := make([]Result, len(current))
	for i, cur := range current {
		if cur.Failed() {
			cur.Changed = false
			annotated[i] = cur
			continue
		}

		prev, exists := prior[cur.OrganizationName]
		if !exists {
			cur.Changed = true
		} else {
			cur.Changed = prev.Fingerprint != cur.Fingerprint
		}
		annotated[i] = cur
	}

	return annotated
}
