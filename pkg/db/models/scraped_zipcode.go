package models

import "time"

// ScrapedZipcode tracks which zip codes the store importer has covered and
// how many store locations were found there.
type ScrapedZipcode struct {
	ZipCode       string    `gorm:"column:zip_code;primaryKey"`
	LastScrapedAt time.Time `gorm:"column:last_scraped_at"`
	StoreCount    int       `gorm:"column:store_count;not null;default:0"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides GORM's pluralization.
func (ScrapedZipcode) TableName() string { return "scraped_zipcodes" }
