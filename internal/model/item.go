package model

import (
	"encoding/json"
	"fmt"
)

// ItemType discriminates the concrete type of an Item.
type ItemType string

// Item type discriminants. These values appear verbatim in the "type"
// field of serialized items.
const (
	ItemTypeBook  ItemType = "book"
	ItemTypeQuote ItemType = "quote"
)

// Item is the tagged union of all record types a run can produce.
//
// Design decision: We use a small interface with an explicit discriminant
// rather than a struct with optional fields because:
//  1. Aggregation code can type-switch without reflection
//  2. Each concrete type keeps only the fields that apply to it
//  3. The discriminant makes the JSON form self-describing
type Item interface {
	// ItemType returns the discriminant for this item.
	ItemType() ItemType

	// ItemID returns the globally unique identifier for this item.
	ItemID() string
}

// ItemList is a JSON-round-trippable slice of Items.
//
// Marshaling works out of the box because each concrete type carries its
// own "type" field. Unmarshaling peeks at the discriminant of each element
// before decoding into the matching concrete type.
type ItemList []Item

// UnmarshalJSON decodes a heterogeneous item array by discriminant.
func (l *ItemList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}

	items := make(ItemList, 0, len(raws))
	for i, raw := range raws {
		var probe struct {
			Type ItemType `json:"type"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}

		switch probe.Type {
		case ItemTypeBook:
			var book BookItem
			if err := json.Unmarshal(raw, &book); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			items = append(items, book)
		case ItemTypeQuote:
			var quote QuoteItem
			if err := json.Unmarshal(raw, &quote); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			items = append(items, quote)
		default:
			return fmt.Errorf("item %d: unknown item type %q", i, probe.Type)
		}
	}

	*l = items
	return nil
}
