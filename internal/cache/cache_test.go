package cache

import "testing"

func TestGetSet(t *testing.T) {
	c := New()
	key := c.GenerateKey("sq", "Teksti i lajmit")

	if _, ok := c.Get(key); ok {
		t.Fatalf("empty cache returned a value")
	}
	c.Set(key, "Përmbledhje")
	if v, ok := c.Get(key); !ok || v != "Përmbledhje" {
		t.Fatalf("Get = %q, %v", v, ok)
	}

	stats := c.GetStats()
	if stats["hits"] != 1 || stats["misses"] != 1 || stats["items"] != 1 {
		t.Fatalf("unexpected stats: %v", stats)
	}
}

func TestGenerateKeySeparatesParts(t *testing.T) {
	c := New()
	if c.GenerateKey("ab", "c") == c.GenerateKey("a", "bc") {
		t.Fatalf("keys must depend on part boundaries")
	}
	if c.GenerateKey("sq", "x") != c.GenerateKey("sq", "x") {
		t.Fatalf("keys must be deterministic")
	}
}
