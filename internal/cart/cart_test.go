package cart

import "testing"

func TestIncreaseDecrease(t *testing.T) {
	c := New()

	c.Increase(1)
	c.Increase(1)
	c.Increase(2)
	if got := c.Quantity(1); got != 2 {
		t.Errorf("expected quantity 2, got %d", got)
	}
	if got := c.Quantity(2); got != 1 {
		t.Errorf("expected quantity 1, got %d", got)
	}

	c.Decrease(1)
	if got := c.Quantity(1); got != 1 {
		t.Errorf("expected quantity 1 after decrease, got %d", got)
	}
}

func TestDecreaseRemovesAtZero(t *testing.T) {
	c := New()

	c.Increase(1)
	c.Decrease(1)

	if _, present := c.Items()[1]; present {
		t.Error("product must be absent after its quantity reaches zero")
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cart, got %d entries", c.Len())
	}
}

func TestDecreaseAbsentIsNoop(t *testing.T) {
	c := New()

	c.Decrease(42)
	if c.Len() != 0 {
		t.Error("decreasing an absent product must not create an entry")
	}
	if got := c.Quantity(42); got != 0 {
		t.Errorf("expected quantity 0, got %d", got)
	}
}

func TestQuantityNeverNegative(t *testing.T) {
	c := New()

	// Arbitrary interleaving; quantities must stay non-negative and
	// zero-quantity keys must never be observable.
	ops := []struct {
		id  int64
		inc bool
	}{
		{1, true}, {1, false}, {1, false}, {2, true}, {1, true},
		{2, false}, {2, false}, {1, false}, {1, false},
	}
	for _, op := range ops {
		if op.inc {
			c.Increase(op.id)
		} else {
			c.Decrease(op.id)
		}
		for id, qty := range c.Items() {
			if qty <= 0 {
				t.Fatalf("product %d stored with quantity %d", id, qty)
			}
		}
	}
}

func TestLines(t *testing.T) {
	c := New()
	c.Increase(7)
	c.Increase(3)
	c.Increase(3)

	lines := c.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].ProductID != 3 || lines[0].Quantity != 2 {
		t.Errorf("unexpected first line: %+v", lines[0])
	}
	if lines[1].ProductID != 7 || lines[1].Quantity != 1 {
		t.Errorf("unexpected second line: %+v", lines[1])
	}
}

func TestClear(t *testing.T) {
	c := New()
	c.Increase(1)
	c.Increase(2)

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected empty cart after clear, got %d entries", c.Len())
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	c := New()
	c.Increase(1)

	items := c.Items()
	items[1] = 99
	if got := c.Quantity(1); got != 1 {
		t.Errorf("mutating the Items copy must not affect the cart, got %d", got)
	}
}
