package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var shirt = Product{ID: 5, Name: "Gym Shirt", PriceCents: 3000}

func TestAddMergesOnSameKey(t *testing.T) {
	var c Cart
	c.Add(shirt, 2, "M", "red")
	c.Add(shirt, 1, "M", "red")

	assert.Len(t, c.Lines, 1)
	assert.Equal(t, 3, c.Lines[0].Qty)
	assert.Equal(t, 9000, c.TotalCents())
}

func TestAddDifferentVariantIsDistinctLine(t *testing.T) {
	var c Cart
	c.Add(shirt, 1, "M", "red")
	c.Add(shirt, 1, "L", "red")
	c.Add(shirt, 1, "M", "black")

	assert.Len(t, c.Lines, 3)
	assert.Equal(t, 3, c.ItemCount())
}

func TestAddSnapshotsPrice(t *testing.T) {
	var c Cart
	c.Add(shirt, 1, "", "")

	later := shirt
	later.PriceCents = 9999
	// harga katalog berubah, line lama tidak ikut
	assert.Equal(t, 3000, c.Lines[0].PriceCents)
	c.Add(later, 1, "XL", "")
	assert.Equal(t, 3000+9999, c.TotalCents())
}

func TestUpdateQtyTargetsOnlyKeyedLine(t *testing.T) {
	var c Cart
	c.Add(shirt, 2, "M", "red")
	c.Add(shirt, 2, "L", "red")

	c.UpdateQty(LineKey{ProductID: 5, Size: "M", Color: "red"}, 7)

	assert.Equal(t, 7, c.Lines[0].Qty)
	assert.Equal(t, 2, c.Lines[1].Qty, "varian lain tidak boleh ikut berubah")
}

func TestUpdateQtyZeroRemovesLine(t *testing.T) {
	var c Cart
	c.Add(shirt, 2, "M", "red")
	c.UpdateQty(LineKey{ProductID: 5, Size: "M", Color: "red"}, 0)

	assert.Empty(t, c.Lines)
	assert.Equal(t, 0, c.TotalCents())
	assert.Equal(t, 0, c.ItemCount())
}

func TestRemoveDropsAllVariants(t *testing.T) {
	var c Cart
	c.Add(shirt, 1, "M", "red")
	c.Add(shirt, 1, "L", "red")
	c.Add(Product{ID: 9, Name: "Bottle", PriceCents: 500}, 1, "", "")

	c.Remove(5)

	assert.Len(t, c.Lines, 1)
	assert.Equal(t, int64(9), c.Lines[0].ProductID)
}

func TestClearAndEmptyTotals(t *testing.T) {
	var c Cart
	c.Add(shirt, 3, "", "")
	c.Clear()

	assert.Empty(t, c.Lines)
	assert.Equal(t, 0, c.TotalCents())
	assert.Equal(t, 0, c.ItemCount())
}

func TestAddIgnoresNonPositiveQty(t *testing.T) {
	var c Cart
	c.Add(shirt, 0, "", "")
	c.Add(shirt, -2, "", "")
	assert.Empty(t, c.Lines)
}
