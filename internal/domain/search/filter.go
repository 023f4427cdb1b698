package search

import "strings"

// ListClause renders an exact-match list filter in the index engine's
// grammar: field:=["v1","v2"]. Values are quoted and escaped.
func ListClause(field string, values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + escapeValue(v) + `"`
	}
	return field + ":=[" + strings.Join(quoted, ",") + "]"
}

func escapeValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `"`, `\"`)
}
