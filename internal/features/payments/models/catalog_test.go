package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadRoundTrip(t *testing.T) {
	ts := time.Unix(1748779200, 0)

	payload := EncodePayload(ItemPremium, 42, ts)
	assert.Equal(t, "humo:premium:42:1748779200", payload)

	item, ok := ItemFromPayload(payload)
	require.True(t, ok)
	assert.Equal(t, ItemPremium, item)
}

func TestItemFromPayloadRejectsForeignPayloads(t *testing.T) {
	for _, payload := range []string{
		"",
		"premium",
		"other:premium:42:1",
		"humo:subscription:42:1",
	} {
		_, ok := ItemFromPayload(payload)
		assert.False(t, ok, payload)
	}
}

func TestHasPayloadPrefix(t *testing.T) {
	assert.True(t, HasPayloadPrefix("humo:premium:42:1"))
	assert.False(t, HasPayloadPrefix("humongous:42"))
	assert.False(t, HasPayloadPrefix("humo"))
}

func TestCatalogPrices(t *testing.T) {
	premium, ok := PriceFor(ItemPremium)
	require.True(t, ok)
	assert.Equal(t, 150, premium.Amount)

	pack, ok := PriceFor(ItemStarsPack)
	require.True(t, ok)
	assert.Equal(t, 100, pack.Amount)

	_, ok = PriceFor(Item("subscription"))
	assert.False(t, ok)
}
