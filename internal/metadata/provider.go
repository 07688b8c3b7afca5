// Package metadata resolves scanned library content against external
// catalogs and persists canonical metadata records.
package metadata

import (
	"context"

	"github.com/vmunix/mediad/internal/library"
)

// SearchRequest describes a catalog lookup. Either Query (free text, with an
// optional Year) or ContentID (provider-scoped raw ID, with optional
// season/episode extras) is set.
type SearchRequest struct {
	MediaKind library.MediaKind
	Query     string
	Year      int
	ContentID string
	Season    *int
	Episode   *int
}

// Match is one provider search result paired with existence info against the
// local store. MetadataGID is set iff Exists.
type Match struct {
	RemoteID    string
	Title       string
	Overview    string
	ReleaseDate string
	TitleScore  float64 // similarity against the query, for diagnostics
	Exists      bool
	MetadataGID string
}

// ImportRequest asks a provider to persist catalog content locally.
// ProviderID may be empty, in which case every capable provider is tried.
type ImportRequest struct {
	ProviderID string
	MediaKind  library.MediaKind
	ContentID  string
	Refresh    bool // reuse existing record IDs instead of failing on duplicates
}

// ImportResult is the persisted outcome of one import: the root record plus
// any season/episode children (TV only).
type ImportResult struct {
	Metadata *library.Metadata
	Seasons  []*library.Metadata
	Episodes []*library.Metadata
}

// Provider is a uniform search/import interface over one external catalog.
type Provider interface {
	// ID is the stable provider identifier used in remote IDs.
	ID() string

	// SupportedKinds lists the media kinds this provider can resolve.
	SupportedKinds() []library.MediaKind

	// Search returns candidate matches in provider relevance order.
	Search(ctx context.Context, req SearchRequest) ([]Match, error)

	// Import persists the requested content and returns the stored records.
	Import(ctx context.Context, req ImportRequest) ([]*ImportResult, error)
}
