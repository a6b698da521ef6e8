package config

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	t.Run("empty file", func(t *testing.T) {
		f, err := Parse(strings.NewReader(""))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(f.Sections) != 0 {
			t.Errorf("expected empty sections, got %d", len(f.Sections))
		}
	})

	t.Run("ignores comments and keys before any section", func(t *testing.T) {
		ini := "orphan = 1\n# comment\n; comment\n[searchd]\n\nhost = a\n"
		f, err := Parse(strings.NewReader(ini))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(f.Sections) != 1 || len(f.Sections[0].Values) != 1 {
			t.Fatalf("expected one section with one key, got %+v", f.Sections)
		}
		if got := f.Get("searchd", "host"); got != "a" {
			t.Errorf("got %q, want %q", got, "a")
		}
	})

	t.Run("trims whitespace and keeps equals signs in values", func(t *testing.T) {
		ini := "[ Searchd ]\n  URL  =  sphinxql://h:1?charset=utf8  \n"
		f, err := Parse(strings.NewReader(ini))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := f.Get("searchd", "url"); got != "sphinxql://h:1?charset=utf8" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("last value wins", func(t *testing.T) {
		f, err := Parse(strings.NewReader("[s]\nk = 1\nk = 2\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := f.Get("s", "k"); got != "2" {
			t.Errorf("got %q, want %q", got, "2")
		}
		if !f.Section("s").HasKey("K") {
			t.Error("expected HasKey to be case-insensitive")
		}
	})

	t.Run("missing section or key", func(t *testing.T) {
		f, _ := Parse(strings.NewReader("[s]\nk = 1\n"))
		if f.Get("other", "k") != "" || f.Get("s", "missing") != "" {
			t.Error("expected empty strings")
		}
		if f.Section("other") != nil {
			t.Error("expected nil section")
		}
	})
}

func TestSectionsWithPrefix(t *testing.T) {
	f, _ := Parse(strings.NewReader("[searchd]\n[searchd.a]\n[other]\n[searchd.b]\n"))
	var names []string
	for _, s := range f.SectionsWithPrefix("SEARCHD.") {
		names = append(names, s.Name)
	}
	if want := []string{"searchd.a", "searchd.b"}; !reflect.DeepEqual(names, want) {
		t.Errorf("got %v, want %v", names, want)
	}
}

func TestSetAndWrite(t *testing.T) {
	f := &File{}
	f.Set("searchd", "url", "sphinxql://127.0.0.1:9306")
	f.Set("searchd", "timeout", "1s")
	f.Set("SEARCHD", "URL", "sphinxql://h:9306")
	f.Set("searchd.replica", "host", "Replica.Local")

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "[searchd]\nurl = sphinxql://h:9306\ntimeout = 1s\n\n[searchd.replica]\nhost = Replica.Local\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}

	back, err := Parse(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(back, f) {
		t.Errorf("round trip mismatch: %+v vs %+v", back, f)
	}
}
