// Package library manages the persisted media graph (links and metadata).
package library

import (
	"strconv"
	"time"
)

// Descriptor classifies a media link as a directory tier or a leaf content type.
type Descriptor string

const (
	DescriptorRootDirectory  Descriptor = "root_directory"
	DescriptorMediaDirectory Descriptor = "media_directory"
	DescriptorChildDirectory Descriptor = "child_directory"
	DescriptorVideo          Descriptor = "video"
	DescriptorAudio          Descriptor = "audio"
	DescriptorSubtitle       Descriptor = "subtitle"
	DescriptorImage          Descriptor = "image"
)

// IsDirectory reports whether the descriptor is one of the directory tiers.
func (d Descriptor) IsDirectory() bool {
	switch d {
	case DescriptorRootDirectory, DescriptorMediaDirectory, DescriptorChildDirectory:
		return true
	}
	return false
}

// MediaKind is the kind of library content a link belongs to.
type MediaKind string

const (
	MediaKindMovie     MediaKind = "movie"
	MediaKindTV        MediaKind = "tv"
	MediaKindMusic     MediaKind = "music"
	MediaKindAudiobook MediaKind = "audiobook"
)

// MediaType distinguishes the hierarchy level of a metadata record.
type MediaType string

const (
	MediaTypeMovie     MediaType = "movie"
	MediaTypeTVShow    MediaType = "tv_show"
	MediaTypeTVSeason  MediaType = "tv_season"
	MediaTypeTVEpisode MediaType = "tv_episode"
)

// MediaLink is one filesystem entity (directory or file) tracked by the library.
// GID is assigned once at creation and never reused; Path is absolute and unique.
type MediaLink struct {
	ID              int64
	GID             string
	Path            string
	Descriptor      Descriptor
	MediaKind       MediaKind
	AddedByUserID   int64
	ParentID        *int64  // nil only for root directories
	MetadataGID     *string // nil until matched by an import processor
	RootMetadataGID *string // top-level show/movie; equals MetadataGID for movies
	AddedAt         time.Time
	UpdatedAt       time.Time
}

// Metadata is one canonical content record (movie, show, season, or episode).
// TMDBID is nil for seasons and episodes because their provider-side numeric
// IDs are not globally unique across shows.
type Metadata struct {
	ID           int64
	GID          string
	TMDBID       *int64
	Title        string
	Overview     string
	ReleaseDate  string // "2024-03-01"
	Index        int    // season or episode number
	ParentIndex  int    // season number, for episodes
	MediaKind    MediaKind
	MediaType    MediaType
	ParentGID    *string // season -> show, episode -> season
	RootGID      *string // always the top-level show or movie
	PosterPath   string
	BackdropPath string
	AddedAt      time.Time
	UpdatedAt    time.Time
}

// Year extracts the year from ReleaseDate.
func (m *Metadata) Year() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(m.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}
