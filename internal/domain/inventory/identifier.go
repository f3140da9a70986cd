package inventory

import (
	"strconv"
	"strings"
	"time"
)

const maxSlugLen = 40

// GenerateItemCode deriva el código de un ítem manual: nombre normalizado + sufijo de tiempo en base 36.
// Mismo nombre y mismo instante producen el mismo código; la unicidad la garantiza la base.
func GenerateItemCode(name string, at time.Time) string {
	slug := Slug(name)
	if slug == "" {
		slug = "ITEM"
	}
	suffix := strings.ToUpper(strconv.FormatInt(at.UnixMilli(), 36))
	return slug + "-" + suffix
}

// Slug quita acentos, pasa a mayúsculas y reemplaza todo lo que no sea letra o dígito por guiones.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToUpper(foldText(s)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if b.Len() > 0 && !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if len(out) > maxSlugLen {
		out = strings.TrimRight(out[:maxSlugLen], "-")
	}
	return out
}
