package cart

import (
	"testing"

	"github.com/shopspring/decimal"
)

func snap(id, name, price string) ProductSnapshot {
	return ProductSnapshot{ProductID: id, Name: name, Price: price, PharmacyName: "MediTrack Pharmacy"}
}

func TestCartAddItemMergesByProductID(t *testing.T) {
	t.Parallel()

	c := NewCart()
	if _, err := c.AddItem(snap("p1", "Biogesic 500mg", "₱123.45"), 1); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := c.AddItem(snap("p1", "Biogesic 500mg", "₱123.45"), 1); err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(c.Items) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(c.Items))
	}
	if c.Items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", c.Items[0].Quantity)
	}
	if got, want := c.TotalPrice().StringFixed(2), "246.90"; got != want {
		t.Fatalf("expected total %s, got %s", want, got)
	}
}

func TestCartAddItemRejectsBadInput(t *testing.T) {
	t.Parallel()

	c := NewCart()
	if _, err := c.AddItem(snap("p1", "Biogesic", "₱10.00"), 0); err == nil {
		t.Fatal("expected error for zero quantity")
	}
	if _, err := c.AddItem(snap("p1", "Biogesic", "₱10.00"), -3); err == nil {
		t.Fatal("expected error for negative quantity")
	}
	if _, err := c.AddItem(snap("", "Biogesic", "₱10.00"), 1); err == nil {
		t.Fatal("expected error for missing product id")
	}
	if len(c.Items) != 0 {
		t.Fatalf("rejected adds must not mutate the cart, got %d lines", len(c.Items))
	}
}

func TestCartAddItemFallsBackToZeroOnMalformedPrice(t *testing.T) {
	t.Parallel()

	c := NewCart()
	item, err := c.AddItem(snap("p1", "Mystery Med", "price on request"), 2)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !item.UnitPrice.Equal(decimal.Zero) {
		t.Fatalf("expected zero unit price, got %s", item.UnitPrice)
	}
	if !c.TotalPrice().Equal(decimal.Zero) {
		t.Fatalf("expected zero total, got %s", c.TotalPrice())
	}
}

func TestCartQuantityAdjustments(t *testing.T) {
	t.Parallel()

	c := NewCart()
	if _, err := c.AddItem(snap("p1", "Neozep", "₱8.50"), 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	if item := c.IncrementQuantity("p1"); item == nil || item.Quantity != 2 {
		t.Fatalf("expected quantity 2 after increment, got %+v", item)
	}
	if item := c.DecrementQuantity("p1"); item == nil || item.Quantity != 1 {
		t.Fatalf("expected quantity 1 after decrement, got %+v", item)
	}
	// Decrement floors at one; dropping the line is an explicit remove.
	if item := c.DecrementQuantity("p1"); item == nil || item.Quantity != 1 {
		t.Fatalf("expected floor at 1, got %+v", item)
	}

	if item := c.IncrementQuantity("ghost"); item != nil {
		t.Fatalf("increment of unknown id must be a no-op, got %+v", item)
	}
	if item := c.DecrementQuantity("ghost"); item != nil {
		t.Fatalf("decrement of unknown id must be a no-op, got %+v", item)
	}
}

func TestCartRemoveItemIsIdempotent(t *testing.T) {
	t.Parallel()

	c := NewCart()
	if _, err := c.AddItem(snap("p1", "Neozep", "₱8.50"), 3); err != nil {
		t.Fatalf("add: %v", err)
	}

	if !c.RemoveItem("p1") {
		t.Fatal("expected removal of existing line")
	}
	if c.RemoveItem("p1") {
		t.Fatal("second removal must report absent")
	}
	if len(c.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(c.Items))
	}
}

func TestCartTotalAcrossLines(t *testing.T) {
	t.Parallel()

	c := NewCart()
	if _, err := c.AddItem(snap("p1", "Biogesic", "₱10.00"), 2); err != nil {
		t.Fatalf("add p1: %v", err)
	}
	if _, err := c.AddItem(snap("p2", "Neozep", "₱5.00"), 1); err != nil {
		t.Fatalf("add p2: %v", err)
	}

	if got, want := c.TotalPrice().StringFixed(2), "25.00"; got != want {
		t.Fatalf("expected total %s, got %s", want, got)
	}
}

func TestCartCloneIsIndependent(t *testing.T) {
	t.Parallel()

	c := NewCart()
	if _, err := c.AddItem(snap("p1", "Biogesic", "₱10.00"), 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	dup := c.Clone()
	dup.Items[0].Quantity = 99
	if c.Items[0].Quantity != 1 {
		t.Fatalf("clone mutation leaked into original, quantity %d", c.Items[0].Quantity)
	}
}
