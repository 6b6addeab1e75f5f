package storemeta

import (
	"github.com/google/uuid"
	"github.com/jordanblake/cartcompass-backend/pkg/db/models"
	"github.com/jordanblake/cartcompass-backend/pkg/enums"
)

// StoreIdentity describes a scrape target: a normalized store chain,
// optionally pinned to a concrete location near the shopper's zip.
type StoreIdentity struct {
	StoreKey       enums.StoreKey `json:"store_key"`
	DisplayName    string         `json:"display_name"`
	GroceryStoreID *uuid.UUID     `json:"grocery_store_id,omitempty"`
	ZipCode        string         `json:"zip_code"`
	Address        *string        `json:"address,omitempty"`
	Latitude       *float64       `json:"latitude,omitempty"`
	Longitude      *float64       `json:"longitude,omitempty"`
	DistanceMiles  *float64       `json:"distance_miles,omitempty"`
}

func identityFromLocation(key enums.StoreKey, zip string, loc *models.GroceryStore) StoreIdentity {
	id := StoreIdentity{
		StoreKey:    key,
		DisplayName: key.DisplayName(),
		ZipCode:     zip,
	}
	if loc == nil {
		return id
	}
	locID := loc.ID
	id.GroceryStoreID = &locID
	if loc.Address != nil {
		id.Address = loc.Address
	}
	if loc.Geom != nil {
		lat, lng := loc.Geom.Lat, loc.Geom.Lng
		id.Latitude = &lat
		id.Longitude = &lng
	}
	return id
}
