package metadata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vmunix/mediad/internal/library"
)

// RemoteID is the composite key identifying content within one provider's
// namespace. Wire format:
//
//	provider:kind:id
//	provider:kind:id-season
//	provider:kind:id-season-episode
//
// The kind token is lowercase and "-" is the only extras delimiter. Season
// and episode extras are required because their provider-side numeric IDs
// are only unique within a show.
type RemoteID struct {
	Provider  string
	MediaKind library.MediaKind
	ContentID string
	Season    *int
	Episode   *int
}

// String composes the wire form of the remote ID.
func (r RemoteID) String() string {
	var b strings.Builder
	b.WriteString(r.Provider)
	b.WriteByte(':')
	b.WriteString(strings.ToLower(string(r.MediaKind)))
	b.WriteByte(':')
	b.WriteString(r.ContentID)
	if r.Season != nil {
		fmt.Fprintf(&b, "-%d", *r.Season)
		if r.Episode != nil {
			fmt.Fprintf(&b, "-%d", *r.Episode)
		}
	}
	return b.String()
}

// ParseRemoteID decomposes a composite remote ID.
// Returns ErrInvalidRemoteID for malformed input.
func ParseRemoteID(s string) (RemoteID, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return RemoteID{}, fmt.Errorf("%w: %q", ErrInvalidRemoteID, s)
	}

	rid := RemoteID{
		Provider:  parts[0],
		MediaKind: library.MediaKind(parts[1]),
	}

	extras := strings.Split(parts[2], "-")
	rid.ContentID = extras[0]
	if rid.ContentID == "" {
		return RemoteID{}, fmt.Errorf("%w: %q", ErrInvalidRemoteID, s)
	}

	switch len(extras) {
	case 1:
	case 2, 3:
		season, err := strconv.Atoi(extras[1])
		if err != nil {
			return RemoteID{}, fmt.Errorf("%w: bad season in %q", ErrInvalidRemoteID, s)
		}
		rid.Season = &season
		if len(extras) == 3 {
			episode, err := strconv.Atoi(extras[2])
			if err != nil {
				return RemoteID{}, fmt.Errorf("%w: bad episode in %q", ErrInvalidRemoteID, s)
			}
			rid.Episode = &episode
		}
	default:
		return RemoteID{}, fmt.Errorf("%w: %q", ErrInvalidRemoteID, s)
	}

	return rid, nil
}
