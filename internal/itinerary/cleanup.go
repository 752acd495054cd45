package itinerary

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// wsClass совпадает с unicode.IsSpace, чтобы регулярные выражения и
// strings.Fields видели одни и те же пробелы.
const wsClass = `[\p{Z}\t\n\x0B\f\r\x{85}]`

var (
	fencePattern       = regexp.MustCompile("(?i)```(?:json)?")
	bareKeyPattern     = regexp.MustCompile(`([{,]` + wsClass + `*)([A-Za-z_][A-Za-z0-9_]*)(` + wsClass + `*):`)
	singleKeyPattern   = regexp.MustCompile(`([{,]` + wsClass + `*)'([^'"]*)'(` + wsClass + `*):`)
	singleValuePattern = regexp.MustCompile(`:` + wsClass + `*'([^']*)'`)
	listValuePattern   = regexp.MustCompile(`([\[,]` + wsClass + `*)'([^'"]*)'(` + wsClass + `*[,\]}])`)
	typographicQuotes  = strings.NewReplacer("“", `"`, "”", `"`, "„", `"`, "‘", "'", "’", "'")
)

// Clean чинит типичные дефекты JSON в ответах модели. Проходы повторяются,
// пока текст меняется, поэтому Clean(Clean(x)) == Clean(x) для любой строки.
func Clean(raw string) string {
	text := raw
	for {
		next := cleanPass(text)
		if next == text {
			return text
		}
		text = next
	}
}

// cleanPass делает один проход: удаление одного дефекта может открыть
// другой, например заголовок после удаленной запятой.
func cleanPass(raw string) string {
	text := norm.NFC.String(raw)
	text = typographicQuotes.Replace(text)
	text = stripMarkup(text)
	text = stripHeadings(text)
	text = dropTrailingCommas(text)
	text = singleKeyPattern.ReplaceAllString(text, `$1"$2"$3:`)
	text = bareKeyPattern.ReplaceAllString(text, `$1"$2"$3:`)
	text = singleValuePattern.ReplaceAllString(text, `: "$1"`)
	text = replaceUntilStable(listValuePattern, text, `$1"$2"$3`)
	text = strings.Join(strings.Fields(text), " ")
	return norm.NFC.String(text)
}

func stripMarkup(text string) string {
	for {
		next := fencePattern.ReplaceAllString(text, "")
		next = strings.ReplaceAll(next, "**", "")
		if next == text {
			return text
		}
		text = next
	}
}

// replaceUntilStable повторяет замену, пока текст меняется: соседние
// совпадения делят разделитель.
func replaceUntilStable(pattern *regexp.Regexp, text, replacement string) string {
	for {
		next := pattern.ReplaceAllString(text, replacement)
		if next == text {
			return text
		}
		text = next
	}
}

func stripHeadings(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = stripHeading(line)
	}
	return strings.Join(lines, "\n")
}

func stripHeading(line string) string {
	rest := strings.TrimLeftFunc(line, unicode.IsSpace)
	stripped := false
	for {
		hashes := 0
		for hashes < len(rest) && rest[hashes] == '#' {
			hashes++
		}
		if hashes == 0 || hashes > 6 {
			break
		}
		after := rest[hashes:]
		if after != "" {
			r, _ := utf8.DecodeRuneInString(after)
			if !unicode.IsSpace(r) {
				break
			}
		}
		rest = strings.TrimLeftFunc(after, unicode.IsSpace)
		stripped = true
	}
	if !stripped {
		return line
	}
	return rest
}

// dropTrailingCommas убирает запятые, за которыми (через пробелы и другие
// запятые) идет закрывающая скобка.
func dropTrailingCommas(text string) string {
	if !strings.Contains(text, ",") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for i, r := range text {
		if r == ',' && closesAfter(text[i+1:]) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func closesAfter(rest string) bool {
	for _, r := range rest {
		switch {
		case r == ',' || unicode.IsSpace(r):
			continue
		case r == '}' || r == ']':
			return true
		default:
			return false
		}
	}
	return false
}
