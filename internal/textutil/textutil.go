package textutil

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

// ShortenName сокращает ФИО до «Фамилия И.О.»:
// «Пак Анджелика Владимировна» -> «Пак А.В.»
func ShortenName(fullName string) string {
	parts := strings.Fields(strings.TrimSpace(fullName))
	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 1 {
		return parts[0]
	}
	var b strings.Builder
	b.WriteString(parts[0])
	b.WriteByte(' ')
	for _, p := range parts[1:min(3, len(parts))] {
		r := []rune(p)
		b.WriteRune(unicode.ToUpper(r[0]))
		b.WriteByte('.')
	}
	return b.String()
}

var (
	phoneStrip = regexp.MustCompile(`[^\d+]`)
	phoneFull  = regexp.MustCompile(`^\+?\d{10,15}$`)
	dateShape  = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)
)

// стоп-слова: «телефона нет»
var phoneStopWords = map[string]struct{}{
	"нет": {}, "не знаю": {}, "отсутствует": {}, "-": {}, "no": {}, "none": {}, ".": {},
}

// NormalizePhone чистит и валидирует номер: "8 (777) 123-45-67" ->
// "+77771234567". Возврат ("", true) — номера нет (стоп-слово),
// ("", false) — ввод невалиден.
func NormalizePhone(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	if _, ok := phoneStopWords[strings.ToLower(text)]; ok {
		return "", true
	}

	clean := phoneStrip.ReplaceAllString(text, "")
	switch {
	case strings.HasPrefix(clean, "8") && len(clean) == 11:
		clean = "+7" + clean[1:]
	case len(clean) == 10 && !strings.HasPrefix(clean, "+"):
		clean = "+7" + clean
	}
	if !phoneFull.MatchString(clean) {
		return "", false
	}
	return clean, true
}

// ValidateDate принимает DD.MM.YYYY, проверяет календарную корректность
// (30.02 не пройдёт) и разумность года. Возвращает исходную строку.
func ValidateDate(s string, now time.Time) (string, bool) {
	s = strings.TrimSpace(s)
	if !dateShape.MatchString(s) {
		return "", false
	}
	d, err := time.Parse("02.01.2006", s)
	if err != nil {
		return "", false
	}
	if d.Year() < 1950 || d.Year() > now.Year() {
		return "", false
	}
	return s, true
}
