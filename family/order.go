package family

import (
	"sort"
	"strconv"

	"github.com/facette/natsort"
)

// NumericSuffix parses ids of the form <letters><digits> ("p12" -> 12).
// Opaque ids such as the randomized "p<hash>-<uuid>" form have no numeric suffix.
func NumericSuffix(id ID) (int, bool) {
	s := string(id)
	i := 0
	for i < len(s) && (s[i] < '0' || s[i] > '9') {
		i++
	}
	if i == len(s) {
		return 0, false
	}
	for _, c := range s[i:] {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// LessID orders ids by ascending numeric suffix. Ids without a suffix sort after
// those with one, in natural order.
func LessID(a, b ID) bool {
	na, okA := NumericSuffix(a)
	nb, okB := NumericSuffix(b)
	switch {
	case okA && okB && na != nb:
		return na < nb
	case okA != okB:
		return okA
	}
	if a == b {
		return false
	}
	return natsort.Compare(string(a), string(b))
}

// SortIDs sorts ids in place with LessID.
func SortIDs(ids []ID) {
	sort.SliceStable(ids, func(i, j int) bool { return LessID(ids[i], ids[j]) })
}

// MaxNumericSuffix returns the largest numeric suffix among the keys of pp, or 0.
func MaxNumericSuffix(pp People) int {
	max := 0
	for id := range pp {
		if n, ok := NumericSuffix(id); ok && n > max {
			max = n
		}
	}
	return max
}
