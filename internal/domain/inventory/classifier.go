package inventory

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Classification metadatos informativos derivados del nombre de un ítem.
type Classification struct {
	Grade    string
	Category string
}

// DefaultCategory categoría cuando ninguna palabra clave coincide.
const DefaultCategory = "General"

var (
	gradeAfter  = regexp.MustCompile(`\b(?:grade|grado|gr\.?)\s*(\d{1,2})\b`)
	gradeBefore = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th|o|°)?\s+(?:grade|grado)\b`)
	preK        = regexp.MustCompile(`\bpre-?k(?:inder)?\b`)
	kinder      = regexp.MustCompile(`\b(?:kindergarten|kinder|transicion)\b`)
)

// subjectKeywords orden de evaluación: la primera coincidencia gana.
var subjectKeywords = []struct {
	category string
	words    []string
}{
	{"Mathematics", []string{"math", "mathematics", "matematicas", "algebra", "geometry", "geometria", "arithmetic"}},
	{"Science", []string{"science", "ciencias", "biology", "biologia", "chemistry", "quimica", "physics", "fisica"}},
	{"Reading", []string{"reading", "reader", "phonics", "lectura", "lectoescritura"}},
	{"Language Arts", []string{"english", "grammar", "writing", "spelling", "ingles", "lenguaje", "espanol"}},
	{"Social Studies", []string{"history", "historia", "geography", "geografia", "social"}},
	{"Art", []string{"art", "arte", "drawing", "dibujo"}},
	{"Music", []string{"music", "musica"}},
}

// Classify deriva grado y categoría del nombre. Nunca falla: si no reconoce nada
// devuelve grado vacío y DefaultCategory.
func Classify(name string) Classification {
	text := foldText(name)
	c := Classification{Category: DefaultCategory}

	switch {
	case preK.MatchString(text):
		c.Grade = "Pre-K"
	case kinder.MatchString(text):
		c.Grade = "K"
	default:
		if m := gradeAfter.FindStringSubmatch(text); m != nil {
			c.Grade = gradeLabel(m[1])
		} else if m := gradeBefore.FindStringSubmatch(text); m != nil {
			c.Grade = gradeLabel(m[1])
		}
	}

	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, sk := range subjectKeywords {
		if containsAny(words, sk.words) {
			c.Category = sk.category
			break
		}
	}
	return c
}

func gradeLabel(num string) string {
	n, err := strconv.Atoi(num)
	if err != nil || n < 1 || n > 12 {
		return ""
	}
	return "Grade " + strconv.Itoa(n)
}

func containsAny(words, keys []string) bool {
	for _, w := range words {
		for _, k := range keys {
			if w == k {
				return true
			}
		}
	}
	return false
}

// foldText minúsculas sin acentos para comparar palabras clave en inglés y español.
func foldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
