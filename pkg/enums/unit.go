package enums

import "strings"

// Unit is the normalized packaging unit attached to a priced offer.
type Unit string

const (
	UnitEach  Unit = "each"
	UnitLb    Unit = "lb"
	UnitOz    Unit = "oz"
	UnitGram  Unit = "g"
	UnitKg    Unit = "kg"
	UnitFlOz  Unit = "fl_oz"
	UnitLiter Unit = "l"
	UnitGal   Unit = "gal"
)

// eachSpellings are the count-style units that all mean "one item".
var eachSpellings = map[string]struct{}{
	"each": {}, "ea": {}, "unit": {}, "piece": {}, "pc": {}, "item": {}, "ct": {}, "count": {},
}

// CanonicalUnit normalizes a raw unit string. Count-style units ("each",
// "ea", "unit", "piece", "item") collapse into UnitEach; everything else is
// lower-cased and trimmed. An empty unit stays empty, meaning unknown.
func CanonicalUnit(raw string) Unit {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return ""
	}
	if _, ok := eachSpellings[normalized]; ok {
		return UnitEach
	}
	switch normalized {
	case "lb", "lbs", "pound", "pounds":
		return UnitLb
	case "oz", "ounce", "ounces":
		return UnitOz
	case "g", "gram", "grams":
		return UnitGram
	case "kg", "kilogram", "kilograms":
		return UnitKg
	case "fl oz", "floz", "fl_oz", "fluid ounce", "fluid ounces":
		return UnitFlOz
	case "l", "liter", "liters", "litre", "litres":
		return UnitLiter
	case "gal", "gallon", "gallons":
		return UnitGal
	}
	return Unit(normalized)
}

// String implements fmt.Stringer.
func (u Unit) String() string {
	return string(u)
}
