// Package namefilter keeps offensive and impersonating names out of the
// save slot list.
package namefilter

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the name filter configuration
type Config struct {
	Enabled       bool     `yaml:"enabled"`
	BannedWords   []string `yaml:"banned_words"`   // rejected anywhere in a name
	ReservedSlots []string `yaml:"reserved_slots"` // rejected as the whole name
}

// Result contains the outcome of checking a name
type Result struct {
	Allowed bool
	Reason  string // set when not allowed
}

// NameFilter validates slot names. Matching ignores case, separators and
// common digit-for-letter swaps, so "4dm1n" and "a-d-m-i-n" count as "admin".
type NameFilter struct {
	enabled     bool
	bannedWords []string
	reserved    map[string]bool
}

// DefaultReserved are names that would read as staff in broadcasts
var DefaultReserved = []string{"admin", "server", "system", "moderator", "abyss"}

var leet = strings.NewReplacer("0", "o", "1", "i", "3", "e", "4", "a", "5", "s", "7", "t", "-", "", "_", "")

// Normalize folds a name to the form the filter matches against
func Normalize(name string) string {
	return leet.Replace(strings.ToLower(strings.TrimSpace(name)))
}

// New creates a NameFilter from a Config. A nil config disables the filter.
func New(cfg *Config) *NameFilter {
	if cfg == nil {
		return &NameFilter{reserved: map[string]bool{}}
	}

	nf := &NameFilter{
		enabled:     cfg.Enabled,
		bannedWords: make([]string, 0, len(cfg.BannedWords)),
		reserved:    make(map[string]bool, len(cfg.ReservedSlots)),
	}
	for _, word := range cfg.BannedWords {
		if w := Normalize(word); w != "" {
			nf.bannedWords = append(nf.bannedWords, w)
		}
	}
	for _, name := range cfg.ReservedSlots {
		if n := Normalize(name); n != "" {
			nf.reserved[n] = true
		}
	}
	return nf
}

// Default returns an enabled filter that only protects DefaultReserved
func Default() *NameFilter {
	return New(&Config{Enabled: true, ReservedSlots: DefaultReserved})
}

// LoadConfig loads name filter configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Check validates a slot name against the filter rules
func (nf *NameFilter) Check(name string) Result {
	if nf == nil || !nf.enabled {
		return Result{Allowed: true}
	}

	norm := Normalize(name)
	if nf.reserved[norm] {
		return Result{Reason: "That slot name is reserved."}
	}
	for _, word := range nf.bannedWords {
		if strings.Contains(norm, word) {
			return Result{Reason: "That slot name contains a word that is not allowed."}
		}
	}
	return Result{Allowed: true}
}

// IsEnabled returns whether the filter is enabled
func (nf *NameFilter) IsEnabled() bool {
	return nf != nil && nf.enabled
}

// Counts returns how many banned words and reserved names are loaded
func (nf *NameFilter) Counts() (words, reserved int) {
	if nf == nil {
		return 0, 0
	}
	return len(nf.bannedWords), len(nf.reserved)
}
