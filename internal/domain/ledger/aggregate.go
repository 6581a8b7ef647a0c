package ledger

import "sort"

// Aggregate merges deltas touching the same account into one net adjustment
// per account and drops accounts whose net is exactly zero. The result is
// sorted by account ID so batches of balance writes always run in the same
// order regardless of input order.
func Aggregate(deltas []Delta) []Delta {
	if len(deltas) == 0 {
		return nil
	}

	totals := make(map[string]Delta, len(deltas))
	for _, d := range deltas {
		key := d.AccountID.String()
		agg := totals[key]
		agg.AccountID = d.AccountID
		agg.AmountInCents += d.AmountInCents
		totals[key] = agg
	}

	keys := make([]string, 0, len(totals))
	for key, agg := range totals {
		if agg.AmountInCents == 0 {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]Delta, 0, len(keys))
	for _, key := range keys {
		out = append(out, totals[key])
	}
	return out
}
