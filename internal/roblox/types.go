package roblox

// BundleList is the response of GET /v1/assets/{assetId}/bundles.
type BundleList struct {
	Data []Bundle `json:"data"`
}

// Bundle is one entry of a bundle list.
type Bundle struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BundleDetails is the response of GET /v1/bundles/{bundleId}/details.
type BundleDetails struct {
	Product *BundleProduct `json:"product"`
}

// BundleProduct carries the purchasable product of a bundle.
type BundleProduct struct {
	PriceInRobux *int64 `json:"priceInRobux"`
}

// ItemDetailsRequest is the body of POST /v1/catalog/items/details.
type ItemDetailsRequest struct {
	Items []ItemQuery `json:"items"`
}

// ItemQuery identifies one item in a batch details request.
type ItemQuery struct {
	ItemType string `json:"itemType"`
	ID       int64  `json:"id"`
}

// ItemDetailsResponse is the response of POST /v1/catalog/items/details.
type ItemDetailsResponse struct {
	Data []CatalogItem `json:"data"`
}

// CatalogItem is one raw item from the batch details endpoint.
type CatalogItem struct {
	ID       int64        `json:"id"`
	ItemType string       `json:"itemType"`
	Name     string       `json:"name"`
	Product  *ItemProduct `json:"product"`
}

// ItemProduct carries the price and limited flags of a catalog item.
//
// The upstream has been observed emitting the limited flags in both
// PascalCase and camelCase, so both spellings are decoded and OR'ed.
type ItemProduct struct {
	PriceInRobux          *int64 `json:"priceInRobux"`
	LowestPrice           *int64 `json:"lowestPrice"`
	IsLimited             bool   `json:"isLimited"`
	IsLimitedLegacy       bool   `json:"IsLimited"`
	IsLimitedUnique       bool   `json:"isLimitedUnique"`
	IsLimitedUniqueLegacy bool   `json:"IsLimitedUnique"`
}

// Limited reports the limited flag regardless of spelling.
func (p ItemProduct) Limited() bool {
	return p.IsLimited || p.IsLimitedLegacy
}

// LimitedUnique reports the limited-unique flag regardless of spelling.
func (p ItemProduct) LimitedUnique() bool {
	return p.IsLimitedUnique || p.IsLimitedUniqueLegacy
}
