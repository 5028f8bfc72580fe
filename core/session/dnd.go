package session

import (
	"context"
	"fmt"

	"hbcplayer/model"
)

// DropTarget names where a drag payload landed.
type DropTarget string

const (
	DropTargetCart     DropTarget = "cart"
	DropTargetPlaylist DropTarget = "playlist"
)

// Cart is the cart collaborator a product can be dropped into.
type Cart interface {
	Add(ctx context.Context, productID int64) error
}

// DropDispatcher routes drag payloads to the session operation they
// imply. The drag layer holds no playlist state of its own; the payload
// carries the originating list context so "play from this list at this
// position" survives the drag.
type DropDispatcher struct {
	sync         *SyncService
	orchestrator *Orchestrator
	cart         Cart
}

// NewDropDispatcher wires a dispatcher. cart may be nil when the client
// has no cart surface.
func NewDropDispatcher(syncSvc *SyncService, orchestrator *Orchestrator, cart Cart) *DropDispatcher {
	return &DropDispatcher{sync: syncSvc, orchestrator: orchestrator, cart: cart}
}

// HandleDrop dispatches a payload dropped onto a target.
func (d *DropDispatcher) HandleDrop(ctx context.Context, payload model.DragPayload, target DropTarget) error {
	switch target {
	case DropTargetCart:
		if payload.Type != model.DragProduct {
			return fmt.Errorf("only products can be dropped into the cart")
		}
		if d.cart == nil {
			return fmt.Errorf("no cart available")
		}
		return d.cart.Add(ctx, payload.ProductID)

	case DropTargetPlaylist:
		switch payload.Type {
		case model.DragProduct:
			// A card dragged out of a rendered auto list replays that
			// list from the card's position; a bare product is just
			// appended to the queue.
			if payload.PlaylistConfig != nil && payload.Index >= 0 {
				return d.orchestrator.PlayFromList(ctx, *payload.PlaylistConfig, payload.Index)
			}
			d.sync.AddTrack(ctx, payload.ProductID)
			return nil
		case model.DragArtist:
			return d.orchestrator.PlayFromList(ctx, model.AutoPlaylistRequest{
				Type:       model.AutoPlaylistArtist,
				ArtistID:   payload.ArtistID,
				PublicOnly: true,
			}, 0)
		default:
			return fmt.Errorf("unknown drag payload type %q", payload.Type)
		}

	default:
		return fmt.Errorf("unknown drop target %q", target)
	}
}
