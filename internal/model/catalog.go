package model

// PriceRecord is one row of the community price index. Only the RAP value
// is consulted; a RAP of zero or below means "no usable price".
type PriceRecord struct {
	Name string
	RAP  int64
}

// BundleSummary is the resolved bundle for an asset. Derived, never stored.
type BundleSummary struct {
	AssetID      int64  `json:"assetId"`
	BundleID     int64  `json:"bundleId"`
	BundleName   string `json:"bundleName"`
	PriceInRobux *int64 `json:"priceInRobux"`
}

// NormalizedItem is the simplified shape returned for a catalog item.
// Prices stay null when neither the catalog nor the price index knows them.
type NormalizedItem struct {
	ID              int64  `json:"id"`
	ItemType        string `json:"itemType"`
	Name            string `json:"name"`
	PriceInRobux    *int64 `json:"priceInRobux"`
	LowestPrice     *int64 `json:"lowestPrice"`
	IsLimited       bool   `json:"isLimited"`
	IsLimitedUnique bool   `json:"isLimitedUnique"`
}

// LimitedPrice is the community RAP lookup result for a single asset.
type LimitedPrice struct {
	AssetID int64  `json:"assetId"`
	RAP     *int64 `json:"rap"`
}
