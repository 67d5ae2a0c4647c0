package terminal

// CartLine is one row of the sale. Identity is the server-assigned item id;
// product id is kept to detect rescans of an item already in the cart.
type CartLine struct {
	ItemID    ID
	ProductID ID
	Name      string
	Price     Amount
	Quantity  int
	Total     Amount
}

// Cart is the in-memory sale model. Rendering is a projection of this model
// through Display; the screen is never read back as a source of truth.
type Cart struct {
	lines []CartLine
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) Lines() []CartLine { return c.lines }

func (c *Cart) ByItem(itemID ID) *CartLine {
	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			return &c.lines[i]
		}
	}
	return nil
}

func (c *Cart) ByProduct(productID ID) *CartLine {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return &c.lines[i]
		}
	}
	return nil
}

func (c *Cart) remove(itemID ID) {
	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// applyScan mirrors the server's add-or-increment: a rescan of a product
// already in the cart syncs its existing row instead of inserting a second.
func (s *Session) applyScan(res *ScanResult) {
	line := CartLine{
		ItemID:    res.ItemID,
		ProductID: res.Product.ID,
		Name:      res.Product.Name,
		Price:     res.Product.Price,
		Quantity:  res.Product.Quantity,
		Total:     res.Product.Total,
	}

	if existing := s.cart.ByProduct(line.ProductID); existing != nil {
		*existing = line
	} else {
		s.cart.lines = append(s.cart.lines, line)
	}

	s.display.UpsertLine(line)
	s.applyTotals(res.Totals)
}

// applyTotals refreshes the summary from the server response and keeps the
// empty state and completion button in step with the cart.
func (s *Session) applyTotals(t Totals) {
	s.totals = t
	s.display.SetTotals(t.Subtotal.Display(), t.Total.Display())
	if s.cart.Len() == 0 {
		s.display.ShowEmptyState()
	}
	s.display.SetCompleteEnabled(s.cart.Len() > 0)
}
