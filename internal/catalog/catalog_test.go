package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault_ElevenStationsWithUniqueIDs(t *testing.T) {
	c := Default()
	if c.Len() != 11 {
		t.Fatalf("Len() = %d, want 11", c.Len())
	}
	for i, s := range c.All() {
		got, ok := c.IndexOf(s.ID)
		if !ok || got != i {
			t.Fatalf("IndexOf(%d) = %d,%v, want %d,true", s.ID, got, ok, i)
		}
	}
}

func TestNew_RejectsInvalidStations(t *testing.T) {
	cases := []struct {
		name     string
		stations []Station
	}{
		{"missing name", []Station{{ID: 1, URL: "http://a"}}},
		{"missing url", []Station{{ID: 1, Name: "A"}}},
		{"duplicate id", []Station{{ID: 1, Name: "A", URL: "http://a"}, {ID: 1, Name: "B", URL: "http://b"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.stations)
			if !errors.Is(err, ErrInvalidStation) {
				t.Fatalf("New() error = %v, want ErrInvalidStation", err)
			}
		})
	}
}

func TestSearch_CaseInsensitiveNameOrGenre(t *testing.T) {
	c, err := New([]Station{
		{ID: 1, Name: "Jazz Cafe", Genre: "Jazz", URL: "http://1"},
		{ID: 2, Name: "Smooth FM", Genre: "Smooth JAZZ", URL: "http://2"},
		{ID: 3, Name: "Rock Radio", Genre: "Rock", URL: "http://3"},
		{ID: 4, Name: "jazzy beats", Genre: "Lofi", URL: "http://4"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got := c.Search("jazz")
	var ids []int
	for _, s := range got {
		ids = append(ids, s.ID)
	}
	want := []int{1, 2, 4}
	if len(ids) != len(want) {
		t.Fatalf("Search(jazz) ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("Search(jazz) ids = %v, want %v", ids, want)
		}
	}

	if all := c.Search("   "); len(all) != 4 {
		t.Fatalf("Search(blank) returned %d stations, want 4", len(all))
	}
	if none := c.Search("polka"); len(none) != 0 {
		t.Fatalf("Search(polka) = %v, want none", none)
	}
}

func TestSearch_MatchesExactlyOnDefaultCatalog(t *testing.T) {
	c := Default()
	got := c.Search("JAZZ")
	for _, s := range got {
		if !strings.Contains(strings.ToLower(s.Name+" "+s.Genre), "jazz") {
			t.Fatalf("Search returned non-matching station %q", s.Name)
		}
	}
	for _, s := range c.All() {
		matches := strings.Contains(strings.ToLower(s.Name), "jazz") || strings.Contains(strings.ToLower(s.Genre), "jazz")
		found := false
		for _, g := range got {
			if g.ID == s.ID {
				found = true
			}
		}
		if matches != found {
			t.Fatalf("station %q match=%v found=%v", s.Name, matches, found)
		}
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	c := Default()
	all := c.All()
	all[0].Name = "changed"
	if c.At(0).Name == "changed" {
		t.Fatalf("All() must not expose internal storage")
	}
}

func TestParseRGB(t *testing.T) {
	c, err := ParseRGB("#D32F2F")
	if err != nil {
		t.Fatalf("ParseRGB: %v", err)
	}
	if c != (RGB{R: 0xd3, G: 0x2f, B: 0x2f}) {
		t.Fatalf("ParseRGB = %+v", c)
	}
	if c.Hex() != "#d32f2f" {
		t.Fatalf("Hex() = %q, want #d32f2f", c.Hex())
	}
	if _, err := ParseRGB("red"); err == nil {
		t.Fatalf("ParseRGB(red) returned nil error")
	}
}

func TestLoad_RoundTripsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.yaml")
	data, err := Marshal(Default().All()[:2])
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if c.At(0).Color != MustRGB("#e17055") {
		t.Fatalf("Color = %v, want #e17055", c.At(0).Color)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil || !strings.Contains(err.Error(), "read catalog") {
		t.Fatalf("Load(missing) error = %v, want read catalog", err)
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("stations: []\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(empty); err == nil {
		t.Fatalf("Load(empty) returned nil error")
	}

	badColor := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(badColor, []byte("stations:\n  - id: 1\n    name: A\n    url: http://a\n    color: nope\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(badColor); err == nil || !strings.Contains(err.Error(), "parse catalog") {
		t.Fatalf("Load(bad color) error = %v, want parse catalog", err)
	}
}

func TestGroupByCategory_PinnedFirstThenAlphabetical(t *testing.T) {
	stations := []Station{
		{ID: 1, Name: "a", Category: "International"},
		{ID: 2, Name: "b", Category: "Italian"},
		{ID: 3, Name: "c", Category: ""},
		{ID: 4, Name: "d", Category: "Italian"},
		{ID: 5, Name: "e", Category: "Brazilian"},
	}
	groups := GroupByCategory(stations, []string{"italian"})

	var names []string
	for _, g := range groups {
		names = append(names, g.Category)
	}
	want := []string{"Italian", "Brazilian", "International", "Other"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("categories = %v, want %v", names, want)
	}
	if len(groups[0].Stations) != 2 || groups[0].Stations[0].ID != 2 || groups[0].Stations[1].ID != 4 {
		t.Fatalf("Italian group = %+v, want ids 2,4 in order", groups[0].Stations)
	}
}
