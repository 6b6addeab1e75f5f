package compare

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jordanblake/cartcompass-backend/internal/storemeta"
	"github.com/jordanblake/cartcompass-backend/pkg/enums"
)

// Build joins a shopping list against per-store offers and ranks the
// stores. Availability dominates price: a store missing items never
// outranks a store that can fill the whole cart, no matter the totals.
func Build(lines []ShoppingListLine, offers []Offer, stores []storemeta.StoreIdentity) []StoreComparison {
	byStore := indexOffers(offers)

	comparisons := make([]StoreComparison, 0, len(stores))
	for _, meta := range stores {
		comparisons = append(comparisons, buildStore(meta, lines, byStore[meta.StoreKey]))
	}

	applySavings(comparisons)

	sort.SliceStable(comparisons, func(i, j int) bool {
		a, b := comparisons[i], comparisons[j]
		if (a.MissingCount == 0) != (b.MissingCount == 0) {
			return a.MissingCount == 0
		}
		if a.MissingCount != b.MissingCount {
			return a.MissingCount < b.MissingCount
		}
		return a.Total.LessThan(b.Total)
	})
	return comparisons
}

func indexOffers(offers []Offer) map[enums.StoreKey][]Offer {
	byStore := make(map[enums.StoreKey][]Offer)
	for _, o := range offers {
		byStore[o.StoreKey] = append(byStore[o.StoreKey], o)
	}
	return byStore
}

func buildStore(meta storemeta.StoreIdentity, lines []ShoppingListLine, offers []Offer) StoreComparison {
	cmp := comparisonShell(meta)

	for _, line := range lines {
		offer := matchOffer(line, offers)
		if offer == nil {
			cmp.MissingIngredients = append(cmp.MissingIngredients, line.Name)
			continue
		}

		item := priceLine(line, *offer)
		cmp.Items = append(cmp.Items, item)
		cmp.Total = cmp.Total.Add(item.TotalPrice)
	}

	cmp.MissingCount = len(cmp.MissingIngredients)
	return cmp
}

// matchOffer prefers ingredient identity and falls back to the line id
// for offers produced by a direct scrape with no identity attached.
func matchOffer(line ShoppingListLine, offers []Offer) *Offer {
	var byLineID *Offer
	for i := range offers {
		o := &offers[i]
		if line.IngredientID != nil && o.IngredientID != nil && *o.IngredientID == *line.IngredientID {
			return o
		}
		if byLineID == nil && o.LineID != nil && *o.LineID == line.ID {
			byLineID = o
		}
	}
	return byLineID
}

func priceLine(line ShoppingListLine, offer Offer) LineItem {
	item := LineItem{
		LineID:      line.ID,
		Name:        line.Name,
		ProductName: offer.ProductName,
		UnitPrice:   offer.Price,
		ImageURL:    offer.ImageURL,
	}

	requested := math.Max(line.Quantity, 1)
	totalQty := int(math.Ceil(requested))

	lineUnit := enums.CanonicalUnit(line.Unit)
	offerUnit := offer.Unit
	if lineUnit != "" && lineUnit == offerUnit {
		item.PackagesToBuy = totalQty
		item.TotalPrice = offer.Price.Mul(decimal.NewFromInt(int64(totalQty)))
		return item
	}

	// Units unknown or mismatched: surface the raw product price with
	// an honesty flag instead of guessing a conversion.
	item.ConversionError = true
	item.PackagesToBuy = 1
	item.TotalPrice = offer.Price
	return item
}

// applySavings expresses each store's total as a premium over the most
// expensive cart. The priciest store has zero savings.
func applySavings(comparisons []StoreComparison) {
	var maxTotal decimal.Decimal
	for _, c := range comparisons {
		if c.Total.GreaterThan(maxTotal) {
			maxTotal = c.Total
		}
	}
	for i := range comparisons {
		comparisons[i].Savings = maxTotal.Sub(comparisons[i].Total)
	}
}

// OfferFromCacheFields builds a comparison offer carrying ingredient
// identity, for offers sourced from the price cache or a resolved
// scrape.
func OfferFromCacheFields(store enums.StoreKey, ingredientID uuid.UUID, productName string, price decimal.Decimal, unit enums.Unit, imageURL *string) Offer {
	id := ingredientID
	return Offer{
		StoreKey:     store,
		IngredientID: &id,
		ProductName:  productName,
		Price:        price,
		Unit:         unit,
		ImageURL:     imageURL,
	}
}
