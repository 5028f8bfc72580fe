package model

// DragType discriminates what a drag payload carries.
type DragType string

const (
	DragProduct DragType = "PRODUCT"
	DragArtist  DragType = "ARTIST"
)

// DragPayload travels with a drag-and-drop transaction. It preserves the
// context a card was dragged out of — which automatic playlist it came
// from and at which position — so a drop target can reconstruct "play
// this list from that position" instead of just "play this one track".
// The drag layer itself holds no playlist state.
type DragPayload struct {
	Type      DragType          `json:"type"`
	ProductID int64             `json:"productId,omitempty"`
	ArtistID  int64             `json:"artistId,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`

	// Index is the card's position within the originating list,
	// or -1 when unknown.
	Index int `json:"index"`

	// PlaylistConfig is the auto-playlist request that produced the
	// originating list, when there was one.
	PlaylistConfig *AutoPlaylistRequest `json:"playlistConfig,omitempty"`
}
