package model

import "fmt"

// AutoPlaylistType discriminates the contexts an automatic playlist can
// be built from.
type AutoPlaylistType string

const (
	AutoPlaylistMain      AutoPlaylistType = "MAIN"
	AutoPlaylistSearch    AutoPlaylistType = "SEARCH"
	AutoPlaylistArtist    AutoPlaylistType = "ARTIST"
	AutoPlaylistFollowing AutoPlaylistType = "FOLLOWING"
	AutoPlaylistLiked     AutoPlaylistType = "LIKED"
	AutoPlaylistCart      AutoPlaylistType = "CART"
)

// AutoPlaylistRequest asks the server for the track-id list of a page
// context. It is a tagged union discriminated by Type; each variant
// carries exactly the query parameters it needs and nothing else.
// FOLLOWING, LIKED and CART derive everything from the authenticated
// user.
type AutoPlaylistRequest struct {
	Type AutoPlaylistType `json:"type"`

	// MAIN
	Category string `json:"category,omitempty"`

	// SEARCH
	Query string `json:"query,omitempty"`

	// ARTIST
	ArtistID   int64 `json:"artistId,omitempty"`
	PublicOnly bool  `json:"publicOnly,omitempty"`
}

// Validate rejects requests whose fields do not match their variant.
func (r AutoPlaylistRequest) Validate() error {
	switch r.Type {
	case AutoPlaylistMain:
		if r.Query != "" || r.ArtistID != 0 {
			return fmt.Errorf("MAIN request carries foreign fields")
		}
	case AutoPlaylistSearch:
		if r.Query == "" {
			return fmt.Errorf("SEARCH request requires a query")
		}
		if r.Category != "" || r.ArtistID != 0 {
			return fmt.Errorf("SEARCH request carries foreign fields")
		}
	case AutoPlaylistArtist:
		if r.ArtistID <= 0 {
			return fmt.Errorf("ARTIST request requires a positive artistId")
		}
		if r.Category != "" || r.Query != "" {
			return fmt.Errorf("ARTIST request carries foreign fields")
		}
	case AutoPlaylistFollowing, AutoPlaylistLiked, AutoPlaylistCart:
		if r.Category != "" || r.Query != "" || r.ArtistID != 0 {
			return fmt.Errorf("%s request carries foreign fields", r.Type)
		}
	default:
		return fmt.Errorf("unknown auto playlist type %q", r.Type)
	}
	return nil
}
