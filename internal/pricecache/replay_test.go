package pricecache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanblake/cartcompass-backend/pkg/db/models"
	"github.com/jordanblake/cartcompass-backend/pkg/enums"
)

func TestRebuildMatchesLedger(t *testing.T) {
	db := setupCacheTestDB(t)
	w, err := NewWriter(db, cacheTestLogger(), nil)
	require.NoError(t, err)

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	eggs, milk := uuid.New(), uuid.New()

	// Three observations for eggs at walmart, one each elsewhere.
	for i, price := range []string{"2.99", "2.49", "2.19"} {
		w.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		w.WriteBatch(context.Background(), []Entry{testEntry(eggs, enums.StoreKeyWalmart, price)})
	}
	w.now = func() time.Time { return base.Add(10 * time.Minute) }
	w.WriteBatch(context.Background(), []Entry{
		testEntry(eggs, enums.StoreKeyTarget, "3.49"),
		testEntry(milk, enums.StoreKeyWalmart, "1.89"),
	})

	var before []models.PriceRecent
	require.NoError(t, db.Order("ingredient_id, store_key").Find(&before).Error)

	// Corrupt the projection, then replay the ledger.
	require.NoError(t, db.Exec("DELETE FROM price_recent").Error)

	rebuilt, err := NewRebuilder(db).Rebuild(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, rebuilt)

	var after []models.PriceRecent
	require.NoError(t, db.Order("ingredient_id, store_key").Find(&after).Error)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].IngredientID, after[i].IngredientID)
		assert.Equal(t, before[i].StoreKey, after[i].StoreKey)
		assert.Equal(t, before[i].ZipCode, after[i].ZipCode)
		assert.Equal(t, before[i].Price.StringFixed(2), after[i].Price.StringFixed(2))
		assert.Equal(t, before[i].ProductName, after[i].ProductName)
	}
}

func TestRebuildEmptyLedger(t *testing.T) {
	db := setupCacheTestDB(t)

	rebuilt, err := NewRebuilder(db).Rebuild(context.Background())
	require.NoError(t, err)
	assert.Zero(t, rebuilt)
}
