package itinerary

import (
	"encoding/json"
	"math/rand"
	"testing"
	"testing/quick"
)

// TestCleanIdempotent проверяет, что повторная очистка ничего не меняет.
func TestCleanIdempotent(t *testing.T) {
	property := func(s string) bool {
		once := Clean(s)
		return Clean(once) == once
	}

	if err := quick.Check(property, &quick.Config{MaxCount: 2000}); err != nil {
		t.Fatalf("clean is not idempotent: %v", err)
	}
}

// TestCleanIdempotentTrickyInputs проверяет идемпотентность на пограничных строках.
func TestCleanIdempotentTrickyInputs(t *testing.T) {
	inputs := []string{
		"",
		"``` ```json",
		"`**``",
		"*`**`*",
		"# # ## heading\n#",
		"# title",
		"[1,, ]",
		"{a: 'b',}",
		"{ 'key' : 'value' , }",
		"{'it's': 'x'}",
		"```",
		"“quoted” ‘single’",
		"{a : 1}",
		"line\v\fbreak\r\n# x",
		"```json\n[{\"day\": 1,}]\n```",
		"*** ****",
		"['a','b','c']",
		"[ 'x' , 'y' ]",
		"{'k': ['v', 'it's']}",
		"#,\n}",
		" #, ]",
		"#**, ]***#**1",
		"{ #, a: 'b' ,\n## }",
	}

	for _, in := range inputs {
		once := Clean(in)
		if twice := Clean(once); twice != once {
			t.Fatalf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

// TestCleanRepairsJSON проверяет исправление типичных дефектов.
func TestCleanRepairsJSON(t *testing.T) {
	raw := "```json\n**Plan**\n{\n  day1: {\n    'morning': {activity: 'Galle Fort', cost: 20,},\n  },\n}\n```"

	cleaned := Clean(raw)

	var decoded map[string]any
	if err := json.Unmarshal([]byte(cleaned), &decoded); err == nil {
		t.Fatalf("expected heading text to remain invalid JSON, got %v", decoded)
	}

	span, _, ok := firstSpan(cleaned, 0)
	if !ok {
		t.Fatalf("expected balanced span in %q", cleaned)
	}
	if err := json.Unmarshal([]byte(span), &decoded); err != nil {
		t.Fatalf("expected valid JSON span, got %v for %q", err, span)
	}

	morning := decoded["day1"].(map[string]any)["morning"].(map[string]any)
	if morning["activity"] != "Galle Fort" {
		t.Fatalf("unexpected activity: %v", morning["activity"])
	}
}

// TestCleanQuotesListValues проверяет замену одинарных кавычек в массивах.
func TestCleanQuotesListValues(t *testing.T) {
	got := Clean("{activities: ['Tea tour','Lake walk', 'Dinner'],}")
	want := `{"activities": ["Tea tour","Lake walk", "Dinner"]}`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

// TestCleanCollapsesWhitespace проверяет схлопывание пробелов.
func TestCleanCollapsesWhitespace(t *testing.T) {
	got := Clean("  [ 1,\n\n\t2 ,\n] ")
	if got != "[ 1, 2 ]" {
		t.Fatalf("unexpected result %q", got)
	}
}

// TestCleanHeadingAfterComma проверяет заголовок, открывшийся после
// удаления висячей запятой.
func TestCleanHeadingAfterComma(t *testing.T) {
	cases := map[string]string{
		"#,\n}": "}",
		" #, ]":  "]",
	}
	for in, want := range cases {
		if got := Clean(in); got != want {
			t.Fatalf("Clean(%q): expected %q, got %q", in, want, got)
		}
	}
}

// TestCleanIdempotentJSONAlphabet проверяет идемпотентность на случайных
// строках из символов разметки и JSON.
func TestCleanIdempotentJSONAlphabet(t *testing.T) {
	alphabet := []rune("{}[],:'\"#`* \n1ab")
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 20000; i++ {
		runes := make([]rune, rng.Intn(14))
		for j := range runes {
			runes[j] = alphabet[rng.Intn(len(alphabet))]
		}
		in := string(runes)

		once := Clean(in)
		if twice := Clean(once); twice != once {
			t.Fatalf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
