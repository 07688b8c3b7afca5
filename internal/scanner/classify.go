package scanner

import (
	"path/filepath"
	"strings"

	"github.com/vmunix/mediad/internal/library"
)

var videoExtensions = extSet("3gp", "avi", "flv", "m4v", "mkv", "mov", "mp4", "mpeg", "mpg", "ts", "webm", "wmv")

var audioExtensions = extSet("aac", "flac", "m4a", "m4b", "mp3", "oga", "ogg", "opus", "wav", "wma")

var subtitleExtensions = extSet("ass", "idx", "smi", "srt", "ssa", "sub", "vtt")

var imageExtensions = extSet("bmp", "gif", "jpeg", "jpg", "png", "webp")

// kindTables maps a media kind to its leaf classification tables, in lookup
// order. Kinds absent from this map cannot be scanned.
var kindTables = map[library.MediaKind][]table{
	library.MediaKindMovie:     {{videoExtensions, library.DescriptorVideo}, {subtitleExtensions, library.DescriptorSubtitle}, {imageExtensions, library.DescriptorImage}},
	library.MediaKindTV:        {{videoExtensions, library.DescriptorVideo}, {subtitleExtensions, library.DescriptorSubtitle}, {imageExtensions, library.DescriptorImage}},
	library.MediaKindMusic:     {{audioExtensions, library.DescriptorAudio}, {imageExtensions, library.DescriptorImage}},
	library.MediaKindAudiobook: {{audioExtensions, library.DescriptorAudio}, {imageExtensions, library.DescriptorImage}},
}

type table struct {
	exts       map[string]struct{}
	descriptor library.Descriptor
}

func extSet(exts ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		s[e] = struct{}{}
	}
	return s
}

// Classify maps a file name and library kind to a leaf descriptor.
// ok is false for unrecognized extensions or unsupported kinds; callers
// must treat that as "skip", not as an error.
func Classify(name string, kind library.MediaKind) (library.Descriptor, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return "", false
	}
	for _, t := range kindTables[kind] {
		if _, ok := t.exts[ext]; ok {
			return t.descriptor, true
		}
	}
	return "", false
}

// HasClassifier reports whether a media kind has any classification table.
func HasClassifier(kind library.MediaKind) bool {
	_, ok := kindTables[kind]
	return ok
}
