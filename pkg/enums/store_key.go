package enums

import (
	"fmt"
	"strings"
)

// StoreKey represents the canonical store_key enum in Postgres. Every cache
// key, scrape target and comparison column is scoped by one of these brands.
type StoreKey string

const (
	StoreKeyAldi        StoreKey = "aldi"
	StoreKeyKroger      StoreKey = "kroger"
	StoreKeySafeway     StoreKey = "safeway"
	StoreKeyMeijer      StoreKey = "meijer"
	StoreKeyTarget      StoreKey = "target"
	StoreKeyTraderJoes  StoreKey = "traderjoes"
	StoreKeyRanch99     StoreKey = "99ranch"
	StoreKeyWalmart     StoreKey = "walmart"
	StoreKeyWholeFoods  StoreKey = "wholefoods"
)

var validStoreKeys = []StoreKey{
	StoreKeyAldi,
	StoreKeyKroger,
	StoreKeySafeway,
	StoreKeyMeijer,
	StoreKeyTarget,
	StoreKeyTraderJoes,
	StoreKeyRanch99,
	StoreKeyWalmart,
	StoreKeyWholeFoods,
}

// storeKeyAliases maps user-facing spellings onto canonical keys.
var storeKeyAliases = map[string]StoreKey{
	"99 ranch":        StoreKeyRanch99,
	"ranch99":         StoreKeyRanch99,
	"ranch 99":        StoreKeyRanch99,
	"99ranch":         StoreKeyRanch99,
	"99 ranch market": StoreKeyRanch99,
	"trader joes":     StoreKeyTraderJoes,
	"trader joe's":    StoreKeyTraderJoes,
	"whole foods":     StoreKeyWholeFoods,
	"whole foods market": StoreKeyWholeFoods,
}

// String implements fmt.Stringer.
func (s StoreKey) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StoreKey.
func (s StoreKey) IsValid() bool {
	for _, candidate := range validStoreKeys {
		if candidate == s {
			return true
		}
	}
	return false
}

// DisplayName returns the user-facing brand name.
func (s StoreKey) DisplayName() string {
	switch s {
	case StoreKeyAldi:
		return "Aldi"
	case StoreKeyKroger:
		return "Kroger"
	case StoreKeySafeway:
		return "Safeway"
	case StoreKeyMeijer:
		return "Meijer"
	case StoreKeyTarget:
		return "Target"
	case StoreKeyTraderJoes:
		return "Trader Joe's"
	case StoreKeyRanch99:
		return "99 Ranch"
	case StoreKeyWalmart:
		return "Walmart"
	case StoreKeyWholeFoods:
		return "Whole Foods"
	}
	return string(s)
}

// AllStoreKeys returns every supported brand in a stable order.
func AllStoreKeys() []StoreKey {
	keys := make([]StoreKey, len(validStoreKeys))
	copy(keys, validStoreKeys)
	return keys
}

// ParseStoreKey converts raw input into a StoreKey, accepting known aliases
// like "99 Ranch" or "ranch99".
func ParseStoreKey(value string) (StoreKey, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validStoreKeys {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	if alias, ok := storeKeyAliases[normalized]; ok {
		return alias, nil
	}
	// Collapse whitespace so "99  ranch" still resolves.
	collapsed := strings.Join(strings.Fields(normalized), " ")
	if alias, ok := storeKeyAliases[collapsed]; ok {
		return alias, nil
	}
	return "", fmt.Errorf("invalid store key %q", value)
}
