package domain

import (
	"reflect"
	"testing"
)

func TestExtractTags(t *testing.T) {
	tests := []struct {
		in    string
		title string
		tags  []string
	}{
		{"go #work #focus", "go", []string{"#work", "#focus"}},
		{"##", "", []string{"##"}},
		{"  read   a   book  #leisure ", "read a book", []string{"#leisure"}},
		{"#a x #a", "x", []string{"#a", "#a"}},
		{"no tags here", "no tags here", []string{}},
		{"#", "", []string{"#"}},
		{"", "", []string{}},
	}
	for _, tc := range tests {
		title, tags := ExtractTags(tc.in)
		if title != tc.title {
			t.Fatalf("%q: want title %q, got %q", tc.in, tc.title, title)
		}
		if !reflect.DeepEqual(tags, tc.tags) {
			t.Fatalf("%q: want tags %v, got %v", tc.in, tc.tags, tags)
		}
	}
}

func TestEventApply(t *testing.T) {
	var e Event
	e.Apply("coffee #break")
	if e.Title != "coffee" || e.Payload.Title != "coffee" || e.Payload.Text != "coffee #break" {
		t.Fatalf("unexpected event: %+v", e)
	}
	if !HasTag(e.Payload.Tags, "#break") {
		t.Fatalf("want #break in %v", e.Payload.Tags)
	}
}
