package items

import "strings"

// FindEquipment searches by exact ID, then by unique ID prefix.
// Returns the index and true if found, -1 and false otherwise
func FindEquipment(list []Equipment, id string) (int, bool) {
	return find(len(list), func(i int) string { return list[i].ID }, id)
}

// RemoveEquipment removes the item with the given ID and returns it
func RemoveEquipment(list *[]Equipment, id string) (Equipment, bool) {
	i, ok := FindEquipment(*list, id)
	if !ok {
		return Equipment{}, false
	}
	removed := (*list)[i]
	*list = append((*list)[:i:i], (*list)[i+1:]...)
	return removed, true
}

// FindMaterial searches by exact ID, then by unique ID prefix
func FindMaterial(list []Material, id string) (int, bool) {
	return find(len(list), func(i int) string { return list[i].ID }, id)
}

// RemoveMaterial removes the material with the given ID and returns it
func RemoveMaterial(list *[]Material, id string) (Material, bool) {
	i, ok := FindMaterial(*list, id)
	if !ok {
		return Material{}, false
	}
	removed := (*list)[i]
	*list = append((*list)[:i:i], (*list)[i+1:]...)
	return removed, true
}

// CountByQuality tallies materials per tier
func CountByQuality(list []Material) map[Quality]int {
	counts := make(map[Quality]int, len(Qualities))
	for _, m := range list {
		counts[m.Quality]++
	}
	return counts
}

// FirstOfQuality returns the first material of the given tier not in skip
func FirstOfQuality(list []Material, q Quality, skip map[string]bool) (Material, bool) {
	for _, m := range list {
		if m.Quality == q && !skip[m.ID] {
			return m, true
		}
	}
	return Material{}, false
}

func find(n int, idAt func(int) string, id string) (int, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return -1, false
	}
	for i := 0; i < n; i++ {
		if idAt(i) == id {
			return i, true
		}
	}

	// Prefix match only when unambiguous
	match := -1
	for i := 0; i < n; i++ {
		if strings.HasPrefix(idAt(i), id) {
			if match >= 0 {
				return -1, false
			}
			match = i
		}
	}
	return match, match >= 0
}
