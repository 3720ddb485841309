package shell

import "testing"

func TestUnreadCounterNotifiesOnChange(t *testing.T) {
	c := NewUnreadCounter()
	var seen []int64
	unsubscribe := c.Subscribe(func(n int64) { seen = append(seen, n) })

	c.Set(3)
	c.Set(3)
	c.Set(-1)
	if got := c.Get(); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
	if len(seen) != 2 || seen[0] != 3 || seen[1] != 0 {
		t.Fatalf("unexpected notifications %v", seen)
	}

	unsubscribe()
	unsubscribe()
	c.Set(7)
	if len(seen) != 2 {
		t.Fatalf("expected no notification after unsubscribe, got %v", seen)
	}
	if c.Get() != 7 {
		t.Fatalf("expected 7, got %d", c.Get())
	}
}

func TestUnreadCounterUnsubscribeIsPerSubscriber(t *testing.T) {
	c := NewUnreadCounter()
	counts := make([]int, 2)
	subscribe := func(i int) func() {
		return c.Subscribe(func(int64) { counts[i]++ })
	}
	first := subscribe(0)
	subscribe(1)

	first()
	c.Set(5)
	if counts[0] != 0 || counts[1] != 1 {
		t.Fatalf("unexpected delivery counts %v", counts)
	}
}
