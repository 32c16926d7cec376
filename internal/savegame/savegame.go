// Package savegame converts a Player to and from its stored JSON record.
//
// Records written by older builds may lack fields (level, exp, maxExp,
// maxDungeonDepth). Decode starts from the ruleset's fresh player and
// overlays the record, so missing fields keep their starting values.
package savegame

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/lawnchairsociety/abyssforge/internal/player"
	"github.com/lawnchairsociety/abyssforge/internal/rules"
)

var (
	ErrEmpty   = errors.New("savegame: empty record")
	ErrCorrupt = errors.New("savegame: checksum mismatch")
)

// Encode serializes the player record
func Encode(p *player.Player) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode save: %w", err)
	}
	return data, nil
}

// Decode restores a player under r and repairs anything Normalize knows
// how to repair.
func Decode(r *rules.Ruleset, data []byte) (*player.Player, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmpty
	}
	p := player.New(r)
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to decode save: %w", err)
	}
	p.Normalize()
	return p, nil
}

// Checksum is the hex BLAKE2b-256 digest of a record
func Checksum(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Verify checks data against a stored checksum. An empty checksum is
// accepted for records written before checksums existed.
func Verify(data []byte, checksum string) error {
	if checksum == "" {
		return nil
	}
	if Checksum(data) != checksum {
		return ErrCorrupt
	}
	return nil
}
