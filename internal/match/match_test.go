package match

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatches_CaseInsensitiveContainment(t *testing.T) {
	cases := []struct {
		word, keyword string
		want          bool
	}{
		{"frihetens", "frihet", true},
		{"Frihetens", "FRIHET", true},
		{"rätten", "rätt", true},
		{"RÄTTEN", "rätt", true},
		{"annat", "rätt", false},
		{"frihet", "frihetens", false},
		{"ord", "", false},
		{"", "ord", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Matches(c.word, c.keyword), "Matches(%q, %q)", c.word, c.keyword)
	}
}

func TestMatches_AgreesWithLowercaseContains(t *testing.T) {
	words := []string{"Ärofullt", "plikten,", "död.", "Straffas", "x"}
	keywords := []string{"ärofullt", "PLIKT", "död", "straff", "y"}
	for _, w := range words {
		for _, k := range keywords {
			want := strings.Contains(strings.ToLower(w), strings.ToLower(k))
			assert.Equal(t, want, Matches(w, k), "%q/%q", w, k)
		}
	}
}

func TestFirstMatch_UsesKeywordOrder(t *testing.T) {
	kw, ok := FirstMatch("frihetsrätt", []string{"rätt", "frihet"})
	assert.True(t, ok)
	assert.Equal(t, "rätt", kw)

	_, ok = FirstMatch("annat", []string{"rätt", "frihet"})
	assert.False(t, ok)
}

func TestCountMatches_DistinctKeywords(t *testing.T) {
	text := "Frihet och rätt, frihet igen"
	assert.Equal(t, 2, CountMatches(text, []string{"frihet", "rätt", "plikt"}))
	assert.Equal(t, 1, CountMatches(text, []string{"frihet", "Frihet"}))
	assert.Equal(t, 0, CountMatches(text, nil))
}

func TestMatched_PreservesOrder(t *testing.T) {
	got := Matched("arbetarna kräver lön", []string{"lön", "plikt", "arbet"})
	assert.Equal(t, []string{"lön", "arbet"}, got)
}

func TestMatchesAny(t *testing.T) {
	assert.True(t, MatchesAny("berikat", []string{"död", "berika"}))
	assert.False(t, MatchesAny("berikat", nil))
}

func TestFirstPhrase(t *testing.T) {
	phrase, ok := FirstPhrase("Jag tycker att det var dåligt", []string{"jag tycker", "dåligt"})
	assert.True(t, ok)
	assert.Equal(t, "jag tycker", phrase)
}
