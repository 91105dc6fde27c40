package imap

import (
	"fmt"
	"sort"
)

// UIDRange is an inclusive contiguous run of message UIDs.
type UIDRange struct {
	Start uint32
	Stop  uint32
}

func (r UIDRange) String() string {
	if r.Stop > r.Start {
		return fmt.Sprintf("%d:%d", r.Start, r.Stop)
	}
	return fmt.Sprintf("%d", r.Start)
}

// CoalesceUIDs sorts the given UIDs ascending and folds them into the
// minimal set of contiguous ranges. A range closes when the next UID is
// not exactly one greater than the current end.
func CoalesceUIDs(uids []uint32) []UIDRange {
	if len(uids) == 0 {
		return nil
	}

	sorted := make([]uint32, len(uids))
	copy(sorted, uids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var ranges []UIDRange
	current := UIDRange{Start: sorted[0], Stop: sorted[0]}
	for _, uid := range sorted[1:] {
		if uid == current.Stop+1 {
			current.Stop = uid
			continue
		}
		ranges = append(ranges, current)
		current = UIDRange{Start: uid, Stop: uid}
	}
	return append(ranges, current)
}
