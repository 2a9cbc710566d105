package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	t.Setenv("ENVUTIL_D", "750ms")
	if got := Duration("ENVUTIL_D", time.Second); got != 750*time.Millisecond {
		t.Fatalf("duration: got %v", got)
	}
	t.Setenv("ENVUTIL_D", "3")
	if got := Duration("ENVUTIL_D", time.Second); got != 3*time.Second {
		t.Fatalf("bare seconds: got %v", got)
	}
	t.Setenv("ENVUTIL_D", "soon")
	if got := Duration("ENVUTIL_D", time.Second); got != time.Second {
		t.Fatalf("fallback: got %v", got)
	}
}

func TestBoolAndList(t *testing.T) {
	t.Setenv("ENVUTIL_B", "off")
	if Bool("ENVUTIL_B", true) {
		t.Fatalf("expected false")
	}
	t.Setenv("ENVUTIL_L", " a, ,b ")
	got := List("ENVUTIL_L", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("list: got %#v", got)
	}
}
