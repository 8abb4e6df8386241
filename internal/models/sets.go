package models

import "slices"

// AddID returns set with id appended unless it is already present.
func AddID(set []string, id string) []string {
	if id == "" || slices.Contains(set, id) {
		return set
	}
	return append(set, id)
}

// RemoveID returns set without any occurrence of id.
func RemoveID(set []string, id string) []string {
	return slices.DeleteFunc(slices.Clone(set), func(s string) bool { return s == id })
}

// UniqueIDs drops empty and repeated ids, keeping first-seen order.
func UniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = AddID(out, id)
	}
	return out
}

// DiffIDs reports which ids were removed from before and which were added in after.
func DiffIDs(before, after []string) (removed, added []string) {
	for _, id := range before {
		if !slices.Contains(after, id) {
			removed = append(removed, id)
		}
	}
	for _, id := range after {
		if !slices.Contains(before, id) {
			added = append(added, id)
		}
	}
	return removed, added
}

// SameIDs reports whether a and b hold the same ids regardless of order.
func SameIDs(a, b []string) bool {
	removed, added := DiffIDs(UniqueIDs(a), UniqueIDs(b))
	return len(removed) == 0 && len(added) == 0
}
