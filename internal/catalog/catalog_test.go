package catalog

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

const sampleYAML = `
wine:
  name: Вино
  strength: 12
  subtypes: [Червоне, Біле]
  default_volume: 150
beer:
  name: Пиво
  strength: 5
  subtypes: [Світле, Темне]
  default_volume: 500
`

func TestUnmarshalKeepsOrder(t *testing.T) {
	t.Parallel()

	var c Catalog
	if err := yaml.Unmarshal([]byte(sampleYAML), &c); err != nil {
		t.Fatalf("unmarshal catalog: %v", err)
	}

	cats := c.Categories()
	if len(cats) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(cats))
	}
	if cats[0].ID != "wine" || cats[1].ID != "beer" {
		t.Fatalf("unexpected order: %s, %s", cats[0].ID, cats[1].ID)
	}

	beer, ok := c.Lookup("beer")
	if !ok {
		t.Fatal("expected beer to be found")
	}
	if beer.Strength != 5 || beer.DefaultVolume != 500 {
		t.Fatalf("unexpected beer: %+v", beer)
	}
	if sub, ok := beer.Subtype(1); !ok || sub != "Темне" {
		t.Fatalf("unexpected subtype: %q %v", sub, ok)
	}
	if _, ok := beer.Subtype(2); ok {
		t.Fatal("expected out of range subtype to be rejected")
	}
	if !beer.IsPreset(1000) || beer.IsPreset(750) {
		t.Fatalf("unexpected presets: %v", beer.VolumePresets())
	}
}

func TestUnmarshalRejectsInvalid(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"strength": "x:\n  name: X\n  strength: 120\n  subtypes: [a]\n  default_volume: 10\n",
		"volume":   "x:\n  name: X\n  strength: 20\n  subtypes: [a]\n  default_volume: 0\n",
		"subtypes": "x:\n  name: X\n  strength: 20\n  subtypes: []\n  default_volume: 10\n",
		"colon":    "\"a:b\":\n  name: X\n  strength: 20\n  subtypes: [a]\n  default_volume: 10\n",
	}
	for name, doc := range cases {
		var c Catalog
		if err := yaml.Unmarshal([]byte(doc), &c); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestNameFallsBackToID(t *testing.T) {
	t.Parallel()

	c := MustNew(Category{ID: "rum", Name: "Ром", Strength: 40, Subtypes: []string{"Білий"}, DefaultVolume: 50})
	if got := c.Name("rum"); got != "Ром" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := c.Name("gone"); !strings.EqualFold(got, "gone") {
		t.Fatalf("unexpected fallback %q", got)
	}
}
