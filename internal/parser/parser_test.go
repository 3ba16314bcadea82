package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := []byte(`---
title: Solaris
author: Stanisław Lem
year: 1961
media-type: book
One Liner: an ocean that thinks
---

First paragraph.

Second paragraph.
`)
	res, err := Parse(input)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"title":      "Solaris",
		"author":     "Stanisław Lem",
		"year":       "1961",
		"media_type": "book",
		"one_liner":  "an ocean that thinks",
		"notes":      "First paragraph.\n\nSecond paragraph.",
	}
	if diff := cmp.Diff(want, res.Fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	if len(res.Ignored) != 0 {
		t.Errorf("ignored = %v", res.Ignored)
	}
}

func TestParse_NoFrontmatterUsesHeading(t *testing.T) {
	res, err := Parse([]byte("intro line\n# Stalker\nthe zone\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"title": "Stalker",
		"notes": "intro line\nthe zone",
	}
	if diff := cmp.Diff(want, res.Fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_FrontmatterTitleWinsOverHeading(t *testing.T) {
	res, err := Parse([]byte("---\ntitle: From FM\n---\n# From H1\nbody"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Fields["title"] != "From FM" {
		t.Errorf("title = %q", res.Fields["title"])
	}
	if res.Fields["notes"] != "# From H1\nbody" {
		t.Errorf("notes = %q", res.Fields["notes"])
	}
}

func TestParse_IgnoredKeysAndLists(t *testing.T) {
	res, err := Parse([]byte("---\ntitle: Watchmen\nauthor:\n  - Moore\n  - Gibbons\ntags: [comics]\ncreated: 2025-01-15\n---\n"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Fields["author"] != "Moore, Gibbons" {
		t.Errorf("author = %q", res.Fields["author"])
	}
	if diff := cmp.Diff([]string{"created", "tags"}, res.Ignored); diff != "" {
		t.Errorf("ignored mismatch (-want +got):\n%s", diff)
	}
	if _, ok := res.Fields["notes"]; ok {
		t.Error("empty body should not set notes")
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("---\ntitle: [broken\n---\nBody")); err == nil {
		t.Fatal("expected error for invalid frontmatter")
	}
}

func TestParse_NestedMappingRejected(t *testing.T) {
	if _, err := Parse([]byte("---\nauthor:\n  first: Ursula\n---\n")); err == nil {
		t.Fatal("expected error for nested mapping")
	}
}

func TestParse_UnclosedFrontmatterIsBody(t *testing.T) {
	res, err := Parse([]byte("---\ntitle: nope"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Fields["notes"] != "---\ntitle: nope" {
		t.Errorf("notes = %q", res.Fields["notes"])
	}
}

func TestNormalizeKey(t *testing.T) {
	cases := map[string]string{
		"Title":       "title",
		"media-type":  "media_type",
		" One Liner ": "one_liner",
		"one_liner":   "one_liner",
	}
	for in, want := range cases {
		if got := normalizeKey(in); got != want {
			t.Errorf("normalizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}
