package models

import (
	"encoding/json"
	"strconv"
)

// Download link qualities accepted by the admin forms.
const (
	Quality480p  = "480p"
	Quality720p  = "720p"
	Quality1080p = "1080p"
	Quality4K    = "4K"
)

// DownloadLink is a single download option for a movie or episode.
type DownloadLink struct {
	Quality string `json:"quality"`
	URL     string `json:"url"`
	Size    string `json:"size,omitempty"`
}

// FilterLinks drops links without a URL. Links with an empty url are never
// persisted; a title is only download-capable if at least one link survives.
func FilterLinks(links []DownloadLink) []DownloadLink {
	filtered := make([]DownloadLink, 0, len(links))
	for _, link := range links {
		if link.URL != "" {
			filtered = append(filtered, link)
		}
	}
	return filtered
}

// Episode is one entry of a series download set. Episode numbers are unique
// within a series but not required to be contiguous.
type Episode struct {
	EpisodeNumber int            `json:"episodeNumber"`
	EpisodeName   string         `json:"episodeName"`
	Links         []DownloadLink `json:"links"`
}

// FindEpisode returns the episode with the given number, independent of the
// stored order of the slice.
func FindEpisode(episodes []Episode, number int) (*Episode, bool) {
	for i := range episodes {
		if episodes[i].EpisodeNumber == number {
			return &episodes[i], true
		}
	}
	return nil, false
}

// TitleID is an opaque title identifier: either a provider-assigned integer
// or a locally generated string with a "custom" prefix. Numeric ids marshal
// as JSON numbers so external titles keep their provider wire shape.
type TitleID string

// MarshalJSON implements json.Marshaler.
func (id TitleID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.Atoi(string(id)); err == nil && id != "" {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON implements json.Unmarshaler, accepting both forms.
func (id *TitleID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = TitleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = TitleID(n.String())
	return nil
}

// CustomMovie is an admin-curated movie document in the customMovies
// collection. Field names follow the document shape the frontend reads.
type CustomMovie struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Overview     string         `json:"overview"`
	ReleaseDate  string         `json:"release_date"`
	PosterPath   string         `json:"poster_path"`
	BackdropPath string         `json:"backdrop_path"`
	VoteAverage  float64        `json:"vote_average"`
	IsCustom     bool           `json:"isCustom"`
	Links        []DownloadLink `json:"links"`
	CreatedAt    int64          `json:"createdAt"`
	UpdatedAt    int64          `json:"updatedAt"`
}

// CustomSeries is an admin-curated series document in the customSeries
// collection.
type CustomSeries struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Overview     string    `json:"overview"`
	ReleaseDate  string    `json:"release_date"`
	PosterPath   string    `json:"poster_path"`
	BackdropPath string    `json:"backdrop_path"`
	VoteAverage  float64   `json:"vote_average"`
	TotalSeasons int       `json:"total_seasons"`
	IsCustom     bool      `json:"isCustom"`
	Episodes     []Episode `json:"episodes"`
	CreatedAt    int64     `json:"createdAt"`
	UpdatedAt    int64     `json:"updatedAt"`
}

// MovieDownload is an admin-pushed link document keyed by a provider movie
// id, stored in the movies collection.
type MovieDownload struct {
	MovieID   TitleID        `json:"movieId"`
	Title     string         `json:"title"`
	Links     []DownloadLink `json:"links"`
	CreatedAt int64          `json:"createdAt"`
	UpdatedAt int64          `json:"updatedAt"`
}

// SeriesDownload is an admin-pushed episode-link document keyed by a
// provider series id, stored in the series collection.
type SeriesDownload struct {
	SeriesID  TitleID   `json:"seriesId"`
	Title     string    `json:"title"`
	Episodes  []Episode `json:"episodes"`
	CreatedAt int64     `json:"createdAt"`
	UpdatedAt int64     `json:"updatedAt"`
}

// ExternalTitle is a provider-owned catalog entry as it appears in discover
// and search pages. Not persisted locally.
type ExternalTitle struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	GenreIDs     []int   `json:"genre_ids,omitempty"`
	VoteAverage  float64 `json:"vote_average"`
}

// ExternalPage is one provider result page.
type ExternalPage struct {
	Page         int             `json:"page"`
	Results      []ExternalTitle `json:"results"`
	TotalPages   int             `json:"total_pages"`
	TotalResults int             `json:"total_results"`
}

// ExternalDetail carries the extended fields of a single provider title.
type ExternalDetail struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	Overview     string   `json:"overview"`
	PosterPath   string   `json:"poster_path"`
	BackdropPath string   `json:"backdrop_path"`
	ReleaseDate  string   `json:"release_date"`
	Runtime      int      `json:"runtime"`
	Budget       int64    `json:"budget"`
	Tagline      string   `json:"tagline"`
	Status       string   `json:"status"`
	Genres       []string `json:"genres"`
	VoteAverage  float64  `json:"vote_average"`
	VoteCount    int      `json:"vote_count"`
}

// SearchResult is one entry of the aggregated search response. External and
// custom hits share this card shape; the isCustom/isSeries tags tell the
// detail page which store the id addresses.
type SearchResult struct {
	ID           TitleID `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	IsCustom     bool    `json:"isCustom,omitempty"`
	IsSeries     bool    `json:"isSeries,omitempty"`
}

// SearchResponse is the aggregated search payload. Field names are contract:
// the frontend reads results and total_results.
type SearchResponse struct {
	Results      []SearchResult `json:"results"`
	TotalResults int            `json:"total_results"`
}

// Title kinds for the TitleDetail union tag.
const (
	KindExternal     = "external"
	KindCustomMovie  = "custom_movie"
	KindCustomSeries = "custom_series"
)

// DownloadsRef points a detail payload at the download-link endpoint that
// can resolve its links or episodes.
type DownloadsRef struct {
	Type string  `json:"type"` // "movie" or "series"
	ID   TitleID `json:"id"`
}

// TitleDetail is the normalized detail shape shared by all three title
// variants, discriminated by Kind. Runtime and Genres are absent for
// custom titles.
type TitleDetail struct {
	Kind         string        `json:"kind"`
	ID           TitleID       `json:"id"`
	Title        string        `json:"title"`
	Overview     string        `json:"overview"`
	ReleaseDate  string        `json:"release_date"`
	PosterPath   string        `json:"poster_path"`
	BackdropPath string        `json:"backdrop_path"`
	VoteAverage  float64       `json:"vote_average"`
	Runtime      int           `json:"runtime,omitempty"`
	Budget       int64         `json:"budget,omitempty"`
	Tagline      string        `json:"tagline,omitempty"`
	Status       string        `json:"status,omitempty"`
	Genres       []string      `json:"genres,omitempty"`
	VoteCount    int           `json:"vote_count,omitempty"`
	TotalSeasons int           `json:"total_seasons,omitempty"`
	IsCustom     bool          `json:"isCustom"`
	IsSeries     bool          `json:"isSeries"`
	Downloads    *DownloadsRef `json:"downloads_ref,omitempty"`
}
