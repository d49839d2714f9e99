package cache

import (
	"testing"
	"time"

	"storefront-cache/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	tests := []struct {
		name        string
		got         string
		expectedKey string
	}{
		{name: "product by id", got: ProductKey("P1"), expectedKey: "product:P1"},
		{name: "product by slug", got: ProductSlugKey("p1"), expectedKey: "product:slug:p1"},
		{name: "all products", got: ProductsAllKey(), expectedKey: "products:all"},
		{name: "featured products", got: ProductsFeaturedKey(), expectedKey: "products:featured"},
		{name: "products by category", got: ProductsByCategoryKey("C1"), expectedKey: "products:category:C1"},
		{name: "related products", got: RelatedProductsKey("P1"), expectedKey: "products:related:P1"},
		{name: "category by id", got: CategoryKey("C1"), expectedKey: "category:C1"},
		{name: "category by slug", got: CategorySlugKey("shoes"), expectedKey: "category:slug:shoes"},
		{name: "category tree", got: CategoriesTreeKey(), expectedKey: "categories:tree"},
		{name: "user", got: UserKey("U1"), expectedKey: "user:U1"},
		{name: "session", got: SessionKey("S1"), expectedKey: "session:S1"},
		{name: "reviews", got: ReviewsKey("P1"), expectedKey: "review:product:P1"},
		{name: "inventory", got: InventoryKey("P1"), expectedKey: "inventory:product:P1"},
		{name: "search", got: SearchKey("  Red   Shoes ", 20), expectedKey: "search:red shoes:20"},
		{name: "suggest", got: SearchSuggestKey("RED"), expectedKey: "search:suggest:red"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedKey, tt.got)
		})
	}
}

func TestKeys_Deterministic(t *testing.T) {
	for _, id := range []string{"", "P1", "a:b", "ünïcode"} {
		assert.Equal(t, ProductKey(id), ProductKey(id))
		assert.Equal(t, ProductSlugKey(id), ProductSlugKey(id))
		assert.Equal(t, SearchKey(id, 10), SearchKey(id, 10))
	}
}

func TestHomeDealsKey_RollsOverHourly(t *testing.T) {
	hour := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	atHour := HomeDealsKey(DealKindCombo, hour)
	assert.Equal(t, atHour, HomeDealsKey(DealKindCombo, hour.Add(59*time.Minute+59*time.Second)))
	assert.NotEqual(t, atHour, HomeDealsKey(DealKindCombo, hour.Add(time.Hour)))
	assert.NotEqual(t, atHour, HomeDealsKey(DealKindDiscounted, hour))

	assert.Equal(t, "home:deals:combo:474802", atHour)
	assert.Equal(t, int64(474802), HourBucket(hour))
}

func TestRegions(t *testing.T) {
	assert.Equal(t, "search:*", RegionPattern(RegionSearch))
	assert.Equal(t, "home:deals:*", RegionPattern(RegionHomeDeals))
	assert.Equal(t, "home:deals:combo*", HomeDealsKindPattern(DealKindCombo))
	assert.Equal(t, "category:slug:*", CategorySlugPattern())
	assert.Equal(t, "product:slug:*", ProductSlugPattern())
	assert.True(t, IsRegion("products"))
	assert.False(t, IsRegion("orders"))
	assert.Len(t, Regions(), 10)
}

func TestTiersFromConfig(t *testing.T) {
	assert.Equal(t, DefaultTiers(), TiersFromConfig(config.CacheConfig{}))

	tiers := TiersFromConfig(config.CacheConfig{ShortTTL: time.Minute, VeryLongTTL: -time.Second})
	assert.Equal(t, time.Minute, tiers.Short)
	assert.Equal(t, TTLMedium, tiers.Medium)
	assert.Equal(t, TTLLong, tiers.Long)
	assert.Equal(t, TTLVeryLong, tiers.VeryLong)
}
