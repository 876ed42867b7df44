package txconfirm

// isConfirmed reports whether the target confirmation count has been reached.
func isConfirmed(confirmations, required int) bool {
	return confirmations == required
}

// isValidConfirmation reports whether candidate extends the previously
// accepted confirming block: it must be chain-continuous with it and strictly
// taller. A candidate at the same height, or one whose parent hash does not
// match, belongs to a reorganized or disconnected branch and must not count.
//
// Only polling needs this check; a heads feed delivers headers already
// ordered by the provider.
func isValidConfirmation(last, candidate BlockHeader) bool {
	return candidate.ParentHash == last.Hash && candidate.Number.Int() > last.Number.Int()
}

// isTimeoutExceeded reports whether the check budget is spent. The comparison
// is exact equality: checks is incremented in a single place per strategy and
// this predicate runs immediately after every increment, so the budget cannot
// be stepped over.
func isTimeoutExceeded(checks, maxChecks int) bool {
	return checks == maxChecks
}
