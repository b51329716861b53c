package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// normalizeDocumentType folds case and strips diacritics so that
// "Comprovante de Residência" matches "comprovante de residencia".
func normalizeDocumentType(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
