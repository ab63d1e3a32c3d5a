package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"catalog-proxy-api/internal/cache"
	"catalog-proxy-api/internal/model"
	"catalog-proxy-api/internal/roblox"
	"catalog-proxy-api/internal/rolimons"
	"catalog-proxy-api/pkg/apierror"
)

// CatalogService composes the catalog client and price index into the
// proxy's aggregation workflows.
type CatalogService struct {
	roblox      *roblox.Client
	prices      *rolimons.Cache
	bundleCache cache.Cache
	bundleTTL   time.Duration
}

// NewCatalogService creates a catalog service. bundleCache may be nil to
// disable bundle-resolution caching.
func NewCatalogService(robloxClient *roblox.Client, prices *rolimons.Cache, bundleCache cache.Cache, bundleTTL time.Duration) *CatalogService {
	return &CatalogService{
		roblox:      robloxClient,
		prices:      prices,
		bundleCache: bundleCache,
		bundleTTL:   bundleTTL,
	}
}

// ResolveBundle finds a bundle containing the asset and returns its
// price. An asset contained in no bundle is a NotFound, and the details
// endpoint is never called for it.
func (s *CatalogService) ResolveBundle(ctx context.Context, assetID int64) (*model.BundleSummary, error) {
	if s.bundleCache == nil {
		return s.resolveBundle(ctx, assetID)
	}

	key := fmt.Sprintf("bundle:%d", assetID)
	data, err := s.bundleCache.GetOrSet(ctx, key, s.bundleTTL, func() ([]byte, error) {
		summary, err := s.resolveBundle(ctx, assetID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(summary)
	})
	if err != nil {
		return nil, err
	}

	var summary model.BundleSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		// Poisoned cache entry; drop it and resolve directly.
		_ = s.bundleCache.Delete(ctx, key)
		return s.resolveBundle(ctx, assetID)
	}
	return &summary, nil
}

func (s *CatalogService) resolveBundle(ctx context.Context, assetID int64) (*model.BundleSummary, error) {
	list, err := s.roblox.AssetBundles(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if len(list.Data) == 0 {
		return nil, apierror.NotFound("no bundles for this asset")
	}

	// First bundle in upstream order wins. There is no documented
	// tie-break rule, so none is invented here.
	bundle := list.Data[0]

	details, err := s.roblox.BundleDetails(ctx, bundle.ID)
	if err != nil {
		return nil, err
	}

	summary := &model.BundleSummary{
		AssetID:    assetID,
		BundleID:   bundle.ID,
		BundleName: bundle.Name,
	}
	if details.Product != nil {
		summary.PriceInRobux = details.Product.PriceInRobux
	}
	return summary, nil
}

// NormalizeItems fetches batch details for the given asset ids and
// backfills missing limited-item prices from the price index. The
// backfill is best-effort: a price-index failure leaves prices null and
// never aborts normalization of the remaining items.
func (s *CatalogService) NormalizeItems(ctx context.Context, assetIDs []int64) ([]model.NormalizedItem, error) {
	if len(assetIDs) == 0 {
		return []model.NormalizedItem{}, nil
	}

	resp, err := s.roblox.ItemDetails(ctx, assetIDs)
	if err != nil {
		return nil, err
	}

	items := make([]model.NormalizedItem, 0, len(resp.Data))
	for _, raw := range resp.Data {
		item := model.NormalizedItem{
			ID:       raw.ID,
			ItemType: raw.ItemType,
			Name:     raw.Name,
		}

		var product roblox.ItemProduct
		if raw.Product != nil {
			product = *raw.Product
		}
		item.PriceInRobux = product.PriceInRobux
		item.LowestPrice = product.LowestPrice
		item.IsLimited = product.Limited()
		item.IsLimitedUnique = product.LimitedUnique()

		limited := item.IsLimited || item.IsLimitedUnique
		if limited && (item.LowestPrice == nil || *item.LowestPrice <= 0) {
			rap, ok, err := s.prices.PriceFor(ctx, strconv.FormatInt(raw.ID, 10))
			if err != nil {
				log.Printf("[CatalogService] price backfill failed for item %d: %v", raw.ID, err)
			} else if ok {
				price := rap
				item.LowestPrice = &price
				item.PriceInRobux = &price
			}
		}

		items = append(items, item)
	}

	return items, nil
}

// LimitedPrice looks up the community RAP for a single asset. An unknown
// asset yields a null rap, not an error.
func (s *CatalogService) LimitedPrice(ctx context.Context, assetID int64) (*model.LimitedPrice, error) {
	rap, ok, err := s.prices.PriceFor(ctx, strconv.FormatInt(assetID, 10))
	if err != nil {
		return nil, err
	}

	result := &model.LimitedPrice{AssetID: assetID}
	if ok {
		result.RAP = &rap
	}
	return result, nil
}
