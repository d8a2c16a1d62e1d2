package service

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripDiacritics folds accented letters to their base form so Vietnamese
// hospital names acronym cleanly (Bệnh viện Chợ Rẫy -> BVCR).
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	// NFD does not decompose the Vietnamese D-with-stroke.
	out = strings.ReplaceAll(out, "đ", "d")
	out = strings.ReplaceAll(out, "Đ", "D")
	return out
}

// Acronym uppercases the first letter of each whitespace-delimited token,
// diacritics stripped.
func Acronym(name string) string {
	var b strings.Builder
	for _, tok := range strings.Fields(stripDiacritics(name)) {
		r := []rune(tok)[0]
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// GenerateCode derives the default tender code from the created date and the
// hospital acronym. The user can still override the value before saving.
func GenerateCode(createdDate time.Time, hospitalName string) string {
	acr := Acronym(hospitalName)
	if acr == "" {
		return ""
	}
	return createdDate.Format("20060102") + "-" + acr
}
