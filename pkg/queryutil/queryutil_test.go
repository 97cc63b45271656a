package queryutil

import "testing"

func TestGetWithLeadingMarker(t *testing.T) {
	v, ok := Get([]byte("?a=1&b=2"), "b")
	if !ok || v != "2" {
		t.Errorf("Get(b) = (%q, %v), want (2, true)", v, ok)
	}
}

func TestGetWithoutLeadingMarker(t *testing.T) {
	v, ok := Get([]byte("a=1&b=2"), "a")
	if !ok || v != "1" {
		t.Errorf("Get(a) = (%q, %v), want (1, true)", v, ok)
	}
}

func TestGetMissingKey(t *testing.T) {
	_, ok := Get([]byte("a=1"), "missing")
	if ok {
		t.Errorf("ok = true, want false for a key that was never present")
	}
}

func TestGetEmptyQuery(t *testing.T) {
	_, ok := Get(nil, "a")
	if ok {
		t.Errorf("ok = true, want false for an empty query")
	}
}

func TestGetPercentDecoded(t *testing.T) {
	v, ok := Get([]byte("?name=hello%20world"), "name")
	if !ok || v != "hello world" {
		t.Errorf("Get(name) = (%q, %v), want (\"hello world\", true)", v, ok)
	}
}

func TestValues(t *testing.T) {
	vs, err := Values([]byte("?a=1&a=2&b=3"))
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	if got := vs["a"]; len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Errorf("a = %v, want [1 2]", got)
	}
	if got := vs.Get("b"); got != "3" {
		t.Errorf("b = %q, want 3", got)
	}
}
