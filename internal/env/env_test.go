package env

import (
	"sort"
	"strings"
	"testing"
)

func TestMergeOverrides(t *testing.T) {
	e := New()
	e.Set("JAVA_OPTS", "-Dbase=1")
	e.Set("PATH", "/usr/local/bin")

	got := e.Merge([]string{"JAVA_OPTS=-Doverride=1", "EXTRA=yes"})
	m := toMap(got)
	if m["JAVA_OPTS"] != "-Doverride=1" {
		t.Fatalf("extra did not win: %q", m["JAVA_OPTS"])
	}
	if m["PATH"] != "/usr/local/bin" || m["EXTRA"] != "yes" {
		t.Fatalf("merge = %v", m)
	}
}

func TestMergeDoesNotLeakOSEnv(t *testing.T) {
	t.Setenv("WARDEN_TEST_LEAK", "secret")
	e := New()
	for _, kv := range e.Merge(nil) {
		if strings.HasPrefix(kv, "WARDEN_TEST_LEAK=") {
			t.Fatalf("os environment leaked without FromOS: %s", kv)
		}
	}

	e.FromOS()
	m := toMap(e.Merge(nil))
	if m["WARDEN_TEST_LEAK"] != "secret" {
		t.Fatalf("FromOS base missing: %v", m["WARDEN_TEST_LEAK"])
	}
}

func TestMergeExpansion(t *testing.T) {
	e := New()
	e.Set("BASE", "/srv/server")
	e.Set("WORLD_DIR", "${BASE}/world")

	m := toMap(e.Merge([]string{"LOG_DIR=${BASE}/logs"}))
	if m["WORLD_DIR"] != "/srv/server/world" {
		t.Fatalf("WORLD_DIR = %q", m["WORLD_DIR"])
	}
	if m["LOG_DIR"] != "/srv/server/logs" {
		t.Fatalf("LOG_DIR = %q", m["LOG_DIR"])
	}
}

func TestMergeIgnoresMalformedEntries(t *testing.T) {
	e := New()
	got := e.Merge([]string{"NOEQUALS", "=novalue", "OK=1"})
	m := toMap(got)
	if len(m) != 1 || m["OK"] != "1" {
		sort.Strings(got)
		t.Fatalf("merge = %v", got)
	}
}

func toMap(kvs []string) map[string]string {
	m := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			m[kv[:i]] = kv[i+1:]
		}
	}
	return m
}
