package config

import "testing"

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	d := Load("")
	if d.Tuning.Kind.String() != "Legacy" {
		t.Errorf("Kind = %s, want Legacy", d.Tuning.Kind.String())
	}
	if d.Tuning.Delta != 0.01 {
		t.Errorf("Delta = %g, want 0.01", d.Tuning.Delta)
	}
	if d.NThreads != 1 {
		t.Errorf("NThreads = %d, want 1", d.NThreads)
	}
}

func TestLoadNonexistentPathDoesNotPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Load panicked on a nonexistent confPath: %v", r)
		}
	}()
	Load("/nonexistent/path/for/grtrace/config/test")
}
