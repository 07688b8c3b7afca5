package scanner

import (
	"testing"

	"github.com/vmunix/mediad/internal/library"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		kind   library.MediaKind
		want   library.Descriptor
		wantOK bool
	}{
		{"Heat.1995.mkv", library.MediaKindMovie, library.DescriptorVideo, true},
		{"Heat.1995.MKV", library.MediaKindMovie, library.DescriptorVideo, true},
		{"Heat.1995.en.srt", library.MediaKindMovie, library.DescriptorSubtitle, true},
		{"poster.jpg", library.MediaKindMovie, library.DescriptorImage, true},
		{"episode.mp4", library.MediaKindTV, library.DescriptorVideo, true},
		{"track01.flac", library.MediaKindMusic, library.DescriptorAudio, true},
		{"cover.png", library.MediaKindMusic, library.DescriptorImage, true},
		{"book.m4b", library.MediaKindAudiobook, library.DescriptorAudio, true},

		// Audio in a movie library is not playable content.
		{"soundtrack.mp3", library.MediaKindMovie, "", false},
		// Video in a music library is not either.
		{"concert.mkv", library.MediaKindMusic, "", false},
		{"notes.txt", library.MediaKindMovie, "", false},
		{"README", library.MediaKindMovie, "", false},
		{"archive.nfo", library.MediaKindTV, "", false},
		{"movie.mkv", library.MediaKind("podcast"), "", false},
	}

	for _, tt := range tests {
		got, ok := Classify(tt.name, tt.kind)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Classify(%q, %s) = (%q, %v), want (%q, %v)",
				tt.name, tt.kind, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestHasClassifier(t *testing.T) {
	for _, kind := range []library.MediaKind{
		library.MediaKindMovie, library.MediaKindTV,
		library.MediaKindMusic, library.MediaKindAudiobook,
	} {
		if !HasClassifier(kind) {
			t.Errorf("HasClassifier(%s) = false, want true", kind)
		}
	}
	if HasClassifier(library.MediaKind("podcast")) {
		t.Error("HasClassifier(podcast) = true, want false")
	}
}
