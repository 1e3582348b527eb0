package models

import (
	"reflect"
	"testing"
)

func TestTruthy(t *testing.T) {
	cases := []struct {
		in   any
		want bool
	}{
		{"true", true},
		{" YES ", true},
		{"1", true},
		{"True", true},
		{"false", false},
		{"no", false},
		{"0", false},
		{"", false},
		{"y", false},
		{true, true},
		{false, false},
		{2, true},
		{0, false},
		{0.5, true},
		{nil, false},
	}
	for _, c := range cases {
		if got := Truthy(c.in); got != c.want {
			t.Errorf("Truthy(%#v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSplitTags_TrimsAndKeepsDuplicates(t *testing.T) {
	got := SplitTags(" go, ,news,go ,")
	want := []string{"go", "news", "go"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitTags = %v, want %v", got, want)
	}
	if got := SplitTags(""); len(got) != 0 {
		t.Errorf("SplitTags(\"\") = %v, want empty", got)
	}
}

func TestFrontMatter_SetGetExtra(t *testing.T) {
	var fm FrontMatter
	fm.Set("Title", "First")
	fm.Set("Title", "Second")
	fm.Set("Mood", "sleepy")

	if fm.Title != "Second" {
		t.Errorf("Title = %q, want overwrite", fm.Title)
	}
	if v, ok := fm.Get("Mood"); !ok || v != "sleepy" {
		t.Errorf("Get(Mood) = %q, %v", v, ok)
	}
	if _, ok := fm.Get("Author"); ok {
		t.Error("Author should be absent")
	}
	if fm.Len() != 2 {
		t.Errorf("Len = %d, want 2", fm.Len())
	}
	want := map[string]string{"Title": "Second", "Mood": "sleepy"}
	if !reflect.DeepEqual(fm.Map(), want) {
		t.Errorf("Map = %v, want %v", fm.Map(), want)
	}
}

func TestFrontMatter_HasEmptyValue(t *testing.T) {
	var fm FrontMatter
	fm.Set("Hidden", "")
	if !fm.Has("Hidden") {
		t.Error("Hidden should be present")
	}
	if fm.Has("Draft") {
		t.Error("Draft should be absent")
	}
}
