package cache

import (
	"strconv"
	"strings"
	"time"

	"storefront-cache/internal/config"
)

// TTL tiers shared by the KV expiry and the local revalidation interval.
const (
	TTLShort    = 5 * time.Minute
	TTLMedium   = 30 * time.Minute
	TTLLong     = time.Hour
	TTLVeryLong = 24 * time.Hour
)

// TTLTiers is the configured set of TTL tiers.
type TTLTiers struct {
	Short    time.Duration
	Medium   time.Duration
	Long     time.Duration
	VeryLong time.Duration
}

// DefaultTiers returns the built-in tiers.
func DefaultTiers() TTLTiers {
	return TTLTiers{Short: TTLShort, Medium: TTLMedium, Long: TTLLong, VeryLong: TTLVeryLong}
}

// TiersFromConfig converts the cache section of the config. Zero or negative
// values fall back to the defaults.
func TiersFromConfig(cfg config.CacheConfig) TTLTiers {
	tiers := DefaultTiers()
	if cfg.ShortTTL > 0 {
		tiers.Short = cfg.ShortTTL
	}
	if cfg.MediumTTL > 0 {
		tiers.Medium = cfg.MediumTTL
	}
	if cfg.LongTTL > 0 {
		tiers.Long = cfg.LongTTL
	}
	if cfg.VeryLongTTL > 0 {
		tiers.VeryLong = cfg.VeryLongTTL
	}
	return tiers
}

// Key regions. Each is the first segment of every key in the family.
const (
	RegionProduct    = "product"
	RegionProducts   = "products"
	RegionCategory   = "category"
	RegionCategories = "categories"
	RegionSearch     = "search"
	RegionUser       = "user"
	RegionSession    = "session"
	RegionReview     = "review"
	RegionInventory  = "inventory"
	RegionHomeDeals  = "home:deals"
)

// Regions lists every key region, in the order the monitor reports them.
func Regions() []string {
	return []string{
		RegionProduct, RegionProducts, RegionCategory, RegionCategories,
		RegionSearch, RegionUser, RegionSession, RegionReview,
		RegionInventory, RegionHomeDeals,
	}
}

// IsRegion reports whether name is a known key region.
func IsRegion(name string) bool {
	for _, r := range Regions() {
		if r == name {
			return true
		}
	}
	return false
}

// RegionPattern returns the glob matching every key of a region.
func RegionPattern(region string) string {
	return region + ":*"
}

// regionTags maps a region to the local tags covering all of its entries.
// Regions tagged only per entity are missing and need a full local purge.
var regionTags = map[string][]string{
	RegionProduct:    {TagProductEntities, TagProductSlugs},
	RegionProducts:   {TagProducts},
	RegionCategory:   {TagCategories, TagCategorySlugs},
	RegionCategories: {TagCategories},
	RegionSearch:     {TagSearch},
	RegionHomeDeals:  {TagHomeDeals},
}

// RegionTags returns the local tags covering region, or nil when none does.
func RegionTags(region string) []string {
	return regionTags[region]
}

func key(parts ...string) string {
	return strings.Join(parts, ":")
}

// Product keys.
func ProductKey(id string) string { return key(RegionProduct, id) }
func ProductSlugKey(slug string) string { return key(RegionProduct, "slug", slug) }
func ProductSlugPattern() string { return key(RegionProduct, "slug", "*") }
func ProductsAllKey() string { return key(RegionProducts, "all") }
func ProductsFeaturedKey() string { return key(RegionProducts, "featured") }
func ProductsByCategoryKey(cid string) string { return key(RegionProducts, "category", cid) }
func RelatedProductsKey(id string) string { return key(RegionProducts, "related", id) }

// Category keys.
func CategoryKey(id string) string { return key(RegionCategory, id) }
func CategorySlugKey(slug string) string { return key(RegionCategory, "slug", slug) }
func CategorySlugPattern() string { return key(RegionCategory, "slug", "*") }
func CategoriesAllKey() string { return key(RegionCategories, "all") }
func CategoriesTreeKey() string { return key(RegionCategories, "tree") }

// SearchKey returns the key of a normalized search with its page size.
func SearchKey(query string, limit int) string {
	return key(RegionSearch, NormalizeQuery(query), strconv.Itoa(limit))
}

// SearchSuggestKey returns the key of the suggestions for a normalized prefix.
func SearchSuggestKey(prefix string) string {
	return key(RegionSearch, "suggest", NormalizeQuery(prefix))
}

// NormalizeQuery lower-cases and trims a query and collapses inner whitespace,
// so equivalent queries share one key.
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// User, session, review and inventory keys.
func UserKey(id string) string { return key(RegionUser, id) }
func SessionKey(id string) string { return key(RegionSession, id) }
func ReviewsKey(productID string) string { return key(RegionReview, "product", productID) }
func InventoryKey(productID string) string { return key(RegionInventory, "product", productID) }

// Home deal kinds.
const (
	DealKindCombo      = "combo"
	DealKindDiscounted = "discounted"
)

// HourBucket is the number of whole hours since the Unix epoch.
func HourBucket(t time.Time) int64 {
	return t.Unix() / 3600
}

// HomeDealsKey returns the deals key of kind for the hour containing now.
// Keys roll over on the hour, so old buckets are never read again.
func HomeDealsKey(kind string, now time.Time) string {
	return key(RegionHomeDeals, kind, strconv.FormatInt(HourBucket(now), 10))
}

// HomeDealsKindPattern matches every bucket of one deal kind.
func HomeDealsKindPattern(kind string) string {
	return key(RegionHomeDeals, kind) + "*"
}

// Local cache tags.
const (
	TagProductEntities = "product-entities"
	TagProductSlugs    = "product-slugs"
	TagProducts        = "products"
	TagCategories      = "categories"
	TagCategorySlugs   = "category-slugs"
	TagSearch          = "search"
	TagHomeDeals       = "home-deals"
	TagComboDeals      = "home-deals:combo"
)

func ProductTag(id string) string { return key(RegionProduct, id) }
func ProductSlugTag(slug string) string { return key(RegionProduct, "slug", slug) }
func CategoryTag(id string) string { return key(RegionCategory, id) }
func UserTag(id string) string { return key(RegionUser, id) }
func ReviewsTag(productID string) string { return key("reviews", productID) }
func InventoryTag(productID string) string { return key(RegionInventory, productID) }
