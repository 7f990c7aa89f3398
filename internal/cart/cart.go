package cart

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// ChosenOption is one selected add-on choice, price delta captured at the
// moment of selection.
type ChosenOption struct {
	Group      string          `json:"group"`
	Name       string          `json:"name"`
	PriceDelta decimal.Decimal `json:"price_delta"`
}

// ProductRef snapshots the sellable product at add time. Line items keep
// this copy so catalog refreshes never reprice a cart in progress.
type ProductRef struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// LineItem is one cart slot: a product, a quantity, an optional note and the
// chosen options. Two slots are the same only when product and option
// multiset match exactly.
type LineItem struct {
	Key      string         `json:"key"`
	Product  ProductRef     `json:"product"`
	Quantity int            `json:"quantity"`
	Note     string         `json:"note,omitempty"`
	Options  []ChosenOption `json:"options,omitempty"`
}

// UnitTotal is the per-unit price including option deltas.
func (li LineItem) UnitTotal() decimal.Decimal {
	total := li.Product.UnitPrice
	for _, opt := range li.Options {
		total = total.Add(opt.PriceDelta)
	}
	return total
}

// LineTotal is UnitTotal multiplied by the quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitTotal().Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Totals is the deterministic money summary of a cart.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// Cart holds an ordered sequence of line items for one table session. The
// order is append order; the terminal numbers items for the cashier.
type Cart struct {
	items []*LineItem
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// SlotKey fingerprints a product plus its chosen-option multiset. Identical
// selections always map to the same key regardless of selection order.
func SlotKey(productID int64, options []ChosenOption) string {
	canonical := make([]string, 0, len(options))
	for _, opt := range options {
		canonical = append(canonical, opt.Group+"\x00"+opt.Name+"\x00"+opt.PriceDelta.String())
	}
	sort.Strings(canonical)

	h := fnv.New64a()
	h.Write([]byte(strconv.FormatInt(productID, 10)))
	for _, entry := range canonical {
		h.Write([]byte{0x1f})
		h.Write([]byte(entry))
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// Add merges into an existing slot when product and options match exactly,
// otherwise appends a new slot with quantity 1. Returns the affected slot.
func (c *Cart) Add(product ProductRef, options []ChosenOption) *LineItem {
	key := SlotKey(product.ID, options)
	for _, item := range c.items {
		if item.Key == key {
			item.Quantity++
			return item
		}
	}
	item := &LineItem{
		Key:      key,
		Product:  product,
		Quantity: 1,
		Options:  append([]ChosenOption(nil), options...),
	}
	c.items = append(c.items, item)
	return item
}

// SetQuantity sets the slot's quantity; zero or less removes the slot.
// Reports whether the slot existed.
func (c *Cart) SetQuantity(key string, quantity int) bool {
	if quantity <= 0 {
		return c.Remove(key)
	}
	for _, item := range c.items {
		if item.Key == key {
			item.Quantity = quantity
			return true
		}
	}
	return false
}

// Remove drops the slot; removing an absent key is a no-op.
func (c *Cart) Remove(key string) bool {
	for i, item := range c.items {
		if item.Key == key {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// SetNote attaches free text to a slot; the empty string clears it.
func (c *Cart) SetNote(key, note string) bool {
	for _, item := range c.items {
		if item.Key == key {
			item.Note = note
			return true
		}
	}
	return false
}

// Clear empties the cart unconditionally.
func (c *Cart) Clear() {
	c.items = nil
}

// Empty reports whether checkout is possible.
func (c *Cart) Empty() bool {
	return len(c.items) == 0
}

// Items returns a copy of the slots in display order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, *item)
	}
	return out
}

// Totals recomputes the money summary from current state. Nothing is cached;
// the displayed total can never drift from the slots.
func (c *Cart) Totals(taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range c.items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	tax := subtotal.Mul(taxRate)
	return Totals{
		Subtotal:   subtotal,
		Tax:        tax,
		GrandTotal: subtotal.Add(tax),
	}
}
