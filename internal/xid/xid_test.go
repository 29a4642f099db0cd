package xid

import "testing"

func TestAllocLookupFree(t *testing.T) {
	tab := New(0)
	id, err := tab.Alloc(Window, "w")
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if id == 0 {
		t.Fatalf("Alloc returned zero id")
	}
	k, v, ok := tab.Lookup(id)
	if !ok || k != Window || v != "w" {
		t.Errorf("Lookup(%#x) = %v, %v, %v; want window, w, true", id, k, v, ok)
	}
	if err := tab.Free(id); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if _, _, ok := tab.Lookup(id); ok {
		t.Errorf("Lookup after Free succeeded")
	}
	if err := tab.Free(id); err != ErrStale {
		t.Errorf("second Free = %v; want %v", err, ErrStale)
	}
}

func TestReusedSlotHasNewGeneration(t *testing.T) {
	tab := New(0)
	a, _ := tab.Alloc(Pixmap, 1)
	tab.Free(a)
	b, _ := tab.Alloc(Pixmap, 2)
	if a == b {
		t.Fatalf("reused slot returned the same id %#x", a)
	}
	if a&indexMask != b&indexMask {
		t.Errorf("slot not reused: %#x, %#x", a, b)
	}
	if _, _, ok := tab.Lookup(a); ok {
		t.Errorf("stale id %#x still resolves", a)
	}
	if _, v, _ := tab.Lookup(b); v != 2 {
		t.Errorf("Lookup(%#x) = %v; want 2", b, v)
	}
}

func TestExhaustion(t *testing.T) {
	tab := New(2)
	if _, err := tab.Alloc(GC, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := tab.Alloc(GC, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := tab.Alloc(GC, nil); err != ErrExhausted {
		t.Errorf("Alloc on full table = %v; want %v", err, ErrExhausted)
	}
	if tab.Len() != 2 {
		t.Errorf("Len = %d; want 2", tab.Len())
	}
}

func TestAllocNoneKind(t *testing.T) {
	if _, err := New(0).Alloc(None, nil); err == nil {
		t.Errorf("Alloc(None) succeeded")
	}
}
