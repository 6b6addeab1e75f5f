package scrape

// SelectBest picks the cheapest valid offer. Validity means a positive
// finite price, which ParsePrice has already reduced to IsPositive.
// Ties keep the earliest offer in source order, so repeated selections
// over the same input are stable.
func SelectBest(offers []Offer) *Offer {
	var best *Offer
	for i := range offers {
		offer := &offers[i]
		if !offer.Price.IsPositive() {
			continue
		}
		if best == nil || offer.Price.LessThan(best.Price) {
			best = offer
		}
	}
	return best
}
