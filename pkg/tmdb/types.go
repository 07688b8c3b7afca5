// Package tmdb provides a client for The Movie Database API.
package tmdb

import "strconv"

const imageBaseURL = "https://image.tmdb.org/t/p/"

// Movie represents TMDB movie metadata.
type Movie struct {
	ID           int64   `json:"id"`
	IMDBID       string  `json:"imdb_id,omitempty"` // e.g., "tt0133093"
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"` // "2024-03-01"
	PosterPath   string  `json:"poster_path"`  // "/abc123.jpg"
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Runtime      int     `json:"runtime"` // minutes
	Genres       []Genre `json:"genres"`
}

// Genre represents a content genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TVShow represents TMDB series metadata, including its season summaries.
type TVShow struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Overview     string   `json:"overview"`
	FirstAirDate string   `json:"first_air_date"`
	PosterPath   string   `json:"poster_path"`
	BackdropPath string   `json:"backdrop_path"`
	VoteAverage  float64  `json:"vote_average"`
	Genres       []Genre  `json:"genres"`
	Seasons      []Season `json:"seasons"`
}

// Season represents one season of a series. Episodes are populated only by
// GetSeason; the season summaries embedded in TVShow carry an empty slice.
type Season struct {
	ID           int64     `json:"id"`
	SeasonNumber int       `json:"season_number"`
	Name         string    `json:"name"`
	Overview     string    `json:"overview"`
	AirDate      string    `json:"air_date"`
	PosterPath   string    `json:"poster_path"`
	Episodes     []Episode `json:"episodes"`
}

// Episode represents a single episode of a season.
type Episode struct {
	ID            int64  `json:"id"`
	EpisodeNumber int    `json:"episode_number"`
	SeasonNumber  int    `json:"season_number"`
	Name          string `json:"name"`
	Overview      string `json:"overview"`
	AirDate       string `json:"air_date"`
	StillPath     string `json:"still_path"`
}

// movieSearchPage is one page of movie search results.
type movieSearchPage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// tvSearchPage is one page of series search results.
type tvSearchPage struct {
	Page         int      `json:"page"`
	Results      []TVShow `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// Year extracts the year from ReleaseDate.
func (m *Movie) Year() int {
	return yearOf(m.ReleaseDate)
}

// Year extracts the year from FirstAirDate.
func (s *TVShow) Year() int {
	return yearOf(s.FirstAirDate)
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// ImageURL returns the full URL for a TMDB image path.
// Size can be: w92, w154, w185, w342, w500, w780, original
func ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	return imageBaseURL + size + path
}
