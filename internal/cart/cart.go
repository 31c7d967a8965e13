package cart

// Product adalah snapshot katalog yang dibawa masuk ke cart.
// Harga di-snapshot saat add; perubahan harga katalog setelah itu tidak ikut.
type Product struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	PriceCents int    `json:"price_cents"`
	ImageURL   string `json:"image_url,omitempty"`
}

// Line identity = (product_id, size, color). Dua line dengan product sama
// tapi size/color beda adalah entry terpisah.
type Line struct {
	ProductID  int64  `json:"product_id"`
	Name       string `json:"name"`
	PriceCents int    `json:"price_cents"`
	ImageURL   string `json:"image_url,omitempty"`
	Qty        int    `json:"qty"`
	Size       string `json:"size,omitempty"`
	Color      string `json:"color,omitempty"`
}

type LineKey struct {
	ProductID int64
	Size      string
	Color     string
}

func (l Line) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Size: l.Size, Color: l.Color}
}

// Cart milik satu session browser; semua mutasi lewat method di bawah
// lalu di-persist utuh via Storage.
type Cart struct {
	Lines []Line `json:"lines"`
}

// Add merge ke line existing kalau key-nya sama, kalau tidak append line baru
// dengan harga snapshot. Stok tidak dicek di sini.
func (c *Cart) Add(p Product, qty int, size, color string) {
	if qty <= 0 {
		return
	}
	key := LineKey{ProductID: p.ID, Size: size, Color: color}
	for i := range c.Lines {
		if c.Lines[i].Key() == key {
			c.Lines[i].Qty += qty
			return
		}
	}
	c.Lines = append(c.Lines, Line{
		ProductID:  p.ID,
		Name:       p.Name,
		PriceCents: p.PriceCents,
		ImageURL:   p.ImageURL,
		Qty:        qty,
		Size:       size,
		Color:      color,
	})
}

// UpdateQty butuh key lengkap (product_id, size, color) supaya tidak ambigu
// saat satu product punya beberapa varian di cart. Qty <= 0 berarti remove.
func (c *Cart) UpdateQty(key LineKey, qty int) {
	if qty <= 0 {
		c.removeKey(key)
		return
	}
	for i := range c.Lines {
		if c.Lines[i].Key() == key {
			c.Lines[i].Qty = qty
			return
		}
	}
}

// Remove buang semua line utk product tsb, varian apapun.
func (c *Cart) Remove(productID int64) {
	out := c.Lines[:0]
	for _, l := range c.Lines {
		if l.ProductID != productID {
			out = append(out, l)
		}
	}
	c.Lines = out
}

func (c *Cart) removeKey(key LineKey) {
	out := c.Lines[:0]
	for _, l := range c.Lines {
		if l.Key() != key {
			out = append(out, l)
		}
	}
	c.Lines = out
}

func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) TotalCents() int {
	total := 0
	for _, l := range c.Lines {
		total += l.PriceCents * l.Qty
	}
	return total
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Qty
	}
	return n
}
