package billing

import (
	"regexp"
	"strings"
)

var serviceTagRe = regexp.MustCompile(`^\[(.*?)\]`)

// ParseServiceTag extrae "Grooming" de "[Grooming] corte de verano".
// Sin tag (o tag vacío) devuelve ok=false.
func ParseServiceTag(complaint string) (name string, ok bool) {
	m := serviceTagRe.FindStringSubmatch(strings.TrimSpace(complaint))
	if m == nil {
		return "", false
	}
	name = strings.TrimSpace(m[1])
	return name, name != ""
}
