package title

import "testing"

func TestParseName(t *testing.T) {
	tests := []struct {
		input    string
		want     string
		wantYear int
	}{
		{"Alice in Wonderland (1951)", "Alice in Wonderland", 1951},
		{"Heat (1995).mkv", "Heat", 1995},
		{"Heat (1995)", "Heat", 1995},
		{"Breaking Bad (2008)", "Breaking Bad", 2008},
		{"The Matrix (1999) [1080p]", "The Matrix [1080p]", 1999},
		{"2001 A Space Odyssey (1968)", "2001 A Space Odyssey", 1968},
		{"Blade Runner 2049 (2017)", "Blade Runner 2049", 2017},
		// No bracketed year.
		{"Heat", "Heat", 0},
		{"Heat.1995.mkv", "Heat.1995", 0},
		// Extension stripped even without a year.
		{"Some Movie.mp4", "Some Movie", 0},
		// A year outside the plausible range is not a year.
		{"Cleopatra (1234)", "Cleopatra (1234)", 0},
	}

	for _, tt := range tests {
		got, year := ParseName(tt.input)
		if got != tt.want || year != tt.wantYear {
			t.Errorf("ParseName(%q) = (%q, %d), want (%q, %d)",
				tt.input, got, year, tt.want, tt.wantYear)
		}
	}
}

func TestParseEpisode(t *testing.T) {
	tests := []struct {
		input       string
		wantSeason  int
		wantEpisode int
		wantOK      bool
	}{
		{"Breaking.Bad.S01E01.mkv", 1, 1, true},
		{"breaking bad s01e07.mkv", 1, 7, true},
		{"Show.S2E5.mkv", 2, 5, true},
		{"Show.S01.E03.mkv", 1, 3, true},
		{"Show S01 E03.mkv", 1, 3, true},
		{"Show.S10E123.mkv", 10, 123, true},
		{"Specials.S00E01.mkv", 0, 1, true},
		{"Heat (1995).mkv", 0, 0, false},
		{"Season 01", 0, 0, false},
		{"s01e", 0, 0, false},
	}

	for _, tt := range tests {
		season, episode, ok := ParseEpisode(tt.input)
		if season != tt.wantSeason || episode != tt.wantEpisode || ok != tt.wantOK {
			t.Errorf("ParseEpisode(%q) = (%d, %d, %v), want (%d, %d, %v)",
				tt.input, season, episode, ok, tt.wantSeason, tt.wantEpisode, tt.wantOK)
		}
	}
}

func TestParseSeasonDir(t *testing.T) {
	tests := []struct {
		input      string
		wantSeason int
		wantOK     bool
	}{
		{"Season 01", 1, true},
		{"Season 1", 1, true},
		{"season 12", 12, true},
		{"Season.03", 3, true},
		{"Season_4", 4, true},
		{"Specials", 0, true},
		{"specials", 0, true},
		{"Season 0", 0, true},
		{"Extras", 0, false},
		{"Season", 0, false},
		{"My Season 1 Favorites", 0, false},
	}

	for _, tt := range tests {
		season, ok := ParseSeasonDir(tt.input)
		if season != tt.wantSeason || ok != tt.wantOK {
			t.Errorf("ParseSeasonDir(%q) = (%d, %v), want (%d, %v)",
				tt.input, season, ok, tt.wantSeason, tt.wantOK)
		}
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"The Matrix", "matrix"},
		{"A Beautiful Mind", "beautiful mind"},
		{"An American Werewolf in London", "american werewolf in london"},
		{"Léon: The Professional", "leon professional"},
		{"Spider-Man", "spider man"},
		{"Fast & Furious", "fast and furious"},
		{"Don't Look Up", "dont look up"},
		{"Mr. Robot", "mr robot"},
		{"WALL·E", "walle"},
		{"  Heat  ", "heat"},
	}

	for _, tt := range tests {
		if got := CleanTitle(tt.input); got != tt.want {
			t.Errorf("CleanTitle(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestScore(t *testing.T) {
	if s := Score("Heat", "Heat"); s < 0.999 {
		t.Errorf("Score(identical) = %f, want ~1.0", s)
	}
	if s := Score("The Matrix", "Matrix"); s < 0.999 {
		t.Errorf("Score should ignore leading articles, got %f", s)
	}

	close := Score("Alien", "Aliens")
	far := Score("Alien", "Toy Story")
	if close <= far {
		t.Errorf("Score(Alien, Aliens)=%f should exceed Score(Alien, Toy Story)=%f", close, far)
	}
}

func TestExactMatch(t *testing.T) {
	if !ExactMatch("Heat", "heat") {
		t.Error("ExactMatch should ignore case")
	}
	if !ExactMatch(" Heat ", "Heat") {
		t.Error("ExactMatch should ignore surrounding whitespace")
	}
	if ExactMatch("Heat", "Heat 2") {
		t.Error("different titles should not match")
	}
}
