package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Capacity != 10_000 || c.TimeIndex != "heap" || c.Duration != 30*time.Second {
		t.Fatalf("unexpected defaults %+v", c)
	}
}

func TestLoad_EnvAndFlags(t *testing.T) {
	t.Setenv("TCACHE_CAPACITY", "42")
	t.Setenv("TCACHE_TIME_INDEX", "btree")
	t.Setenv("TCACHE_FIXED_VALUES", "true")

	c, err := Load([]string{"-capacity", "7", "-duration", "2s"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Capacity != 7 {
		t.Fatalf("flag should override env, got capacity %d", c.Capacity)
	}
	if c.TimeIndex != "btree" || !c.FixedValues || c.Duration != 2*time.Second {
		t.Fatalf("env not applied: %+v", c)
	}
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load([]string{"-capacity", "0", "-read-ratio", "0.9", "-remove-ratio", "0.5", "-time-index", "list"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"capacity", "remove-ratio", "time index"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q should mention %q", err, want)
		}
	}
}
