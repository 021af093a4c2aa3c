package service

import (
	"strconv"
	"strings"

	"github.com/udistrital/auditoria_mid/internal/cloudwatch"
	"github.com/udistrital/auditoria_mid/internal/model"
)

// Audit lines are written by the APIs' logging middleware; the marker
// distinguishes them from unrelated noise in the same log group.
const auditMarker = "middleware"

// Insights regex patterns delimit with slashes; every metacharacter in a
// caller-supplied criterion must be neutralized before interpolation.
var insightsEscaper = strings.NewReplacer(
	`\`, `\\`, `/`, `\/`, `.`, `\.`, `*`, `\*`, `+`, `\+`, `?`, `\?`,
	`(`, `\(`, `)`, `\)`, `[`, `\[`, `]`, `\]`, `{`, `\{`, `}`, `\}`,
	`^`, `\^`, `$`, `\$`, `|`, `\|`,
)

func escapePattern(s string) string {
	return insightsEscaper.Replace(s)
}

// BuildQuery assembles the Logs Insights query for a filter request: the
// fixed audit marker plus one conjunctive like-clause per non-empty
// criterion, sorted by timestamp descending and capped at the row limit.
// Clause order is stable for a given request, so the same filters always
// produce the same query string.
func BuildQuery(req *model.FilterRequest) string {
	var b strings.Builder
	b.WriteString("fields @timestamp, @message\n")
	b.WriteString("| filter @message like /" + auditMarker + "/\n")

	clauses := []struct {
		label string
		value string
	}{
		{"method: ", req.TipoLog},
		{"", req.CodigoResponsable},
		{"", req.PalabraClave},
		{"app_name: ", req.ApiConsumen},
		{"end_point: ", req.Endpoint},
		{"ip_user: ", req.DireccionIp},
	}
	for _, c := range clauses {
		if c.value == "" {
			continue
		}
		b.WriteString("and @message like /" + escapePattern(c.label+c.value) + "/\n")
	}

	b.WriteString("| sort @timestamp desc\n")
	b.WriteString("| limit " + strconv.Itoa(cloudwatch.MaxResultRows))
	return b.String()
}
