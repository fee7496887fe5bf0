package models

import (
	"fmt"
	"strings"
	"time"
)

// Item is the closed set of purchasable catalog items. The kind travels
// inside the invoice payload and is parsed back at confirmation time, so
// product resolution never relies on free-text sniffing.
type Item string

const (
	ItemPremium   Item = "premium"
	ItemStarsPack Item = "stars_pack"
)

// payloadPrefix namespaces invoice payloads produced by this backend.
const payloadPrefix = "humo"

// CatalogEntry is a priced catalog item. Amount is in whole stars.
type CatalogEntry struct {
	Item   Item
	Label  string
	Amount int
}

var catalog = map[Item]CatalogEntry{
	ItemPremium:   {Item: ItemPremium, Label: "Premium Monthly", Amount: 150},
	ItemStarsPack: {Item: ItemStarsPack, Label: "100 Stars Pack", Amount: 100},
}

// ParseItem validates an item key against the catalog.
func ParseItem(s string) (Item, bool) {
	entry, ok := catalog[Item(s)]
	return entry.Item, ok
}

// PriceFor returns the catalog entry for the item.
func PriceFor(item Item) (CatalogEntry, bool) {
	entry, ok := catalog[item]
	return entry, ok
}

// EncodePayload builds the invoice correlation token:
// humo:<item>:<userID>:<unix>. Downstream it is opaque except for the
// item segment.
func EncodePayload(item Item, userID int64, ts time.Time) string {
	return fmt.Sprintf("%s:%s:%d:%d", payloadPrefix, item, userID, ts.Unix())
}

// ItemFromPayload extracts the typed item kind from a confirmation
// payload. Payloads without a recognizable item fall back to the
// stars-credit branch at the caller.
func ItemFromPayload(payload string) (Item, bool) {
	parts := strings.Split(payload, ":")
	if len(parts) < 2 || parts[0] != payloadPrefix {
		return "", false
	}
	return ParseItem(parts[1])
}

// HasPayloadPrefix reports whether the payload was minted by this
// backend. Used as the pre-checkout liveness gate; it is not a security
// check.
func HasPayloadPrefix(payload string) bool {
	return strings.HasPrefix(payload, payloadPrefix+":")
}
