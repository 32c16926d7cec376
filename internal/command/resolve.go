package command

import (
	"fmt"
	"strconv"

	"github.com/lawnchairsociety/abyssforge/internal/items"
	"github.com/lawnchairsociety/abyssforge/internal/player"
)

// equipmentRef turns a bag number ("2") into the item's ID. Anything else is
// passed through as an ID or ID prefix.
func equipmentRef(list []items.Equipment, ref string) string {
	if len(ref) <= 3 {
		if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(list) {
			return list[n-1].ID
		}
	}
	return ref
}

// materialRefs resolves forge arguments to material IDs. A quality name
// picks the first unused material of that tier; anything else must match a
// material ID or unique ID prefix. No material is picked twice.
func materialRefs(bag []items.Material, refs []string) ([]string, error) {
	used := make(map[string]bool, len(refs))
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		var m items.Material
		if q, err := items.ParseQuality(ref); err == nil && len(ref) > 1 {
			found, ok := items.FirstOfQuality(bag, q, used)
			if !ok {
				return nil, fmt.Errorf("%w: no %s material left", player.ErrMaterialNotFound, q)
			}
			m = found
		} else {
			i, ok := items.FindMaterial(bag, ref)
			if !ok || used[bag[i].ID] {
				return nil, fmt.Errorf("%w: %s", player.ErrMaterialNotFound, ref)
			}
			m = bag[i]
		}
		used[m.ID] = true
		ids = append(ids, m.ID)
	}
	return ids, nil
}
