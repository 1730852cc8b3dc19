// package session caches numbered references to the most recent listing
// results, so follow-up commands can say "play 3" instead of pasting a URI.
package session

import (
	"fmt"

	"github.com/strumcli/strum/internal/api"
	"github.com/strumcli/strum/internal/shared"
)

// SlotCap is the maximum number of entries a slot retains from a listing.
const SlotCap = 10

// Kind names one of the independent reference slots.
//
// Slots are deliberately independent: listing devices must not change what
// "2" means for the last search.
type Kind string

const (
	KindSearch    Kind = "search"
	KindDevices   Kind = "devices"
	KindPlaylists Kind = "playlists"
	KindAlbums    Kind = "albums"
)

// listCommand maps each slot to the command that populates it, for
// out-of-range guidance messages.
var listCommand = map[Kind]string{
	KindSearch:    "search",
	KindDevices:   "devices",
	KindPlaylists: "playlists",
	KindAlbums:    "albums",
}

// Item is one numbered result: enough identity to issue a follow-up call
// and enough text to echo what was chosen.
type Item struct {
	ID    string
	URI   string
	Label string
	// Context carries a secondary line (artist, device type, owner).
	Context string
	// Track holds the full track payload for history recording, when the
	// item came from a track search.
	Track *api.Track
}

// Table holds the four reference slots for one interactive session.
//
// It lives in memory only and is owned by the command dispatcher; process
// exit is the only thing that clears it.
type Table struct {
	slots map[Kind][]Item
}

// NewTable creates an empty reference table.
func NewTable() *Table {
	return &Table{slots: make(map[Kind][]Item)}
}

// Set replaces the slot's contents wholesale with up to [SlotCap] items.
// Other slots are untouched.
func (t *Table) Set(kind Kind, items []Item) {
	if len(items) > SlotCap {
		items = items[:SlotCap]
	}
	replaced := make([]Item, len(items))
	copy(replaced, items)
	t.slots[kind] = replaced
}

// Len returns the number of items currently held in the slot.
func (t *Table) Len(kind Kind) int {
	return len(t.slots[kind])
}

// Resolve maps a 1-based user-supplied index to the item it names.
//
// An index outside [1, len] is a normal user error carrying
// [shared.ErrOutOfRange] and guidance to re-run the listing command.
func (t *Table) Resolve(kind Kind, index int) (Item, error) {
	slot := t.slots[kind]

	if len(slot) == 0 {
		return Item{}, fmt.Errorf("%w: no recent results, run '%s' first", shared.ErrOutOfRange, listCommand[kind])
	}

	if index < 1 || index > len(slot) {
		return Item{}, fmt.Errorf("%w: %d is not between 1 and %d, run '%s' to refresh the list", shared.ErrOutOfRange, index, len(slot), listCommand[kind])
	}

	return slot[index-1], nil
}
