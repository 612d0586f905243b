package genai

import (
	"regexp"
	"strings"
)

var (
	// text-showing operators inside uncompressed content streams: (..) Tj and [(..) ..] TJ
	tjOperator  = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)\s*Tj`)
	tjArray     = regexp.MustCompile(`\[((?:[^\]])*)\]\s*TJ`)
	arrayString = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)`)
	escapes     = strings.NewReplacer(`\(`, "(", `\)`, ")", `\\`, `\`, `\n`, " ", `\r`, " ", `\t`, " ")
)

// MaxPDFTextRunes caps how much extracted text is sent to the model
const MaxPDFTextRunes = 12000

// ExtractPDFText is a best-effort scrape of literal strings drawn by text operators.
// Compressed streams yield nothing; callers treat an empty result as "no text found".
func ExtractPDFText(data []byte) string {
	src := string(data)
	var parts []string

	for _, m := range tjOperator.FindAllStringSubmatch(src, -1) {
		parts = append(parts, escapes.Replace(m[1]))
	}
	for _, m := range tjArray.FindAllStringSubmatch(src, -1) {
		var sb strings.Builder
		for _, s := range arrayString.FindAllStringSubmatch(m[1], -1) {
			sb.WriteString(escapes.Replace(s[1]))
		}
		parts = append(parts, sb.String())
	}

	text := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	if r := []rune(text); len(r) > MaxPDFTextRunes {
		text = string(r[:MaxPDFTextRunes])
	}
	return text
}
