package portal

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/scan-io-git/portal-lens/internal/findings"
)

// DefaultOrdering asks the portal for the most severe findings first.
const DefaultOrdering = "-severity"

// Page is one page of a paginated portal listing.
type Page[T any] struct {
	Count      *int `json:"count" validate:"required"`
	PagesCount *int `json:"pages_count" validate:"required"`
	Results    []T  `json:"results" validate:"required,dive"`
}

// Total returns the reported number of items across all pages.
func (p *Page[T]) Total() int {
	if p == nil || p.Count == nil {
		return 0
	}
	return *p.Count
}

// Pages returns the reported number of pages.
func (p *Page[T]) Pages() int {
	if p == nil || p.PagesCount == nil {
		return 0
	}
	return *p.PagesCount
}

// AssetQuery selects assets by type and free-text search.
type AssetQuery struct {
	Type   findings.AssetType
	Search string
	Page   int
}

func (q AssetQuery) Values() url.Values {
	v := url.Values{}
	v.Set("asset_type", strconv.Itoa(int(q.Type)))
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	return v
}

// FindingQuery selects the findings of a set of repository assets.
type FindingQuery struct {
	TriageStatuses []findings.TriageStatus
	Severities     []findings.Severity
	Assets         []string
	Page           int
	SliceIndexes   []int
	Ordering       string
}

func (q FindingQuery) Values() url.Values {
	v := url.Values{}
	if len(q.TriageStatuses) > 0 {
		v.Set("triage_status__in", joinInts(q.TriageStatuses))
	}
	if len(q.Severities) > 0 {
		v.Set("severity__in", joinInts(q.Severities))
	}
	if len(q.Assets) > 0 {
		v.Set("assets__in", encodeAssetMap(findings.AssetRepository, q.Assets))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if len(q.SliceIndexes) > 0 {
		v.Set("slice_indexes", joinInts(q.SliceIndexes))
	}
	if q.Ordering != "" {
		v.Set("ordering", q.Ordering)
	}
	return v
}

func joinInts[T ~int](values []T) string {
	parts := make([]string, len(values))
	for i, value := range values {
		parts[i] = strconv.Itoa(int(value))
	}
	return strings.Join(parts, ",")
}

// encodeAssetMap renders {"<type>": [values...]}, the shape the portal expects for assets__in.
func encodeAssetMap(assetType findings.AssetType, values []string) string {
	b, _ := json.Marshal(map[string][]string{strconv.Itoa(int(assetType)): values})
	return string(b)
}
