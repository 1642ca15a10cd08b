package verification

type floorPair struct {
	declared FloorRecord
	verified VerifiedFloor
}

// joinFloors pairs every verified floor with its declared floor. Floors join by
// Key; when any floor on either side has no key the whole join is positional
// and degraded is true. Declared floors left unpaired come back as gaps.
func joinFloors(declared []FloorRecord, verified []VerifiedFloor) (pairs []floorPair, degraded bool, gaps []Gap) {
	keyed := allKeyed(len(declared), func(i int) string { return declared[i].Key }) &&
		allKeyed(len(verified), func(i int) string { return verified[i].Key })

	byKey := make(map[string]int, len(declared))
	if keyed {
		for i, d := range declared {
			byKey[d.Key] = i
		}
	}

	used := make(map[int]bool, len(declared))
	for i, v := range verified {
		idx := -1
		if keyed {
			if j, ok := byKey[v.Key]; ok && !used[j] {
				idx = j
			}
		} else if i < len(declared) {
			idx = i
		}
		p := floorPair{verified: v}
		if idx >= 0 {
			p.declared = declared[idx]
			used[idx] = true
		}
		pairs = append(pairs, p)
	}

	for j, d := range declared {
		if !used[j] {
			gaps = append(gaps, Gap{Kind: SectionFloor, Index: j, Key: d.Key, Name: d.FloorName})
		}
	}
	return pairs, !keyed && len(verified) > 0, gaps
}

// allKeyed reports whether n entries all carry a distinct non-empty key
func allKeyed(n int, key func(int) string) bool {
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		k := key(i)
		if k == "" || seen[k] {
			return false
		}
		seen[k] = true
	}
	return true
}
