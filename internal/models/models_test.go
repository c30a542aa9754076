package models

import (
	"encoding/json"
	"testing"
)

func TestFilterLinks(t *testing.T) {
	links := []DownloadLink{
		{Quality: Quality480p, URL: ""},
		{Quality: Quality720p, URL: "http://x"},
	}

	filtered := FilterLinks(links)
	if len(filtered) != 1 {
		t.Fatalf("expected 1 link after filtering, got %d", len(filtered))
	}
	if filtered[0].URL != "http://x" {
		t.Fatalf("unexpected link kept: %+v", filtered[0])
	}

	// Idempotent: filtering again changes nothing.
	if again := FilterLinks(filtered); len(again) != 1 {
		t.Fatalf("expected filtering to be idempotent, got %d links", len(again))
	}
}

func TestFindEpisodeIgnoresStorageOrder(t *testing.T) {
	episodes := []Episode{
		{EpisodeNumber: 3, EpisodeName: "Three"},
		{EpisodeNumber: 1, EpisodeName: "One"},
	}

	ep, ok := FindEpisode(episodes, 1)
	if !ok {
		t.Fatal("expected to find episode 1")
	}
	if ep.EpisodeNumber != 1 || ep.EpisodeName != "One" {
		t.Fatalf("wrong episode returned: %+v", ep)
	}

	if _, ok := FindEpisode(episodes, 2); ok {
		t.Fatal("expected no episode 2")
	}
}

func TestTitleIDMarshal(t *testing.T) {
	tests := map[TitleID]string{
		"603":      `603`,
		"custom_1": `"custom_1"`,
	}
	for id, expect := range tests {
		data, err := json.Marshal(id)
		if err != nil {
			t.Fatalf("marshal %q: %v", id, err)
		}
		if string(data) != expect {
			t.Fatalf("marshal %q = %s, want %s", id, data, expect)
		}
	}
}

func TestTitleIDUnmarshal(t *testing.T) {
	var id TitleID
	if err := json.Unmarshal([]byte(`603`), &id); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if id != "603" {
		t.Fatalf("unmarshal number = %q, want 603", id)
	}
	if err := json.Unmarshal([]byte(`"custom_1"`), &id); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if id != "custom_1" {
		t.Fatalf("unmarshal string = %q, want custom_1", id)
	}
}
