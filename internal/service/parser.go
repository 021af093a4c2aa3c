package service

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Log lines are free text and not contractually stable, so everything in
// this file degrades instead of failing: a missing label leaves its field
// unset and a malformed segment yields a descriptive string, never an
// error.

// ANSI stripping is bounded; above this size the line is used as-is.
const maxStripLen = 10000

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripANSI removes terminal color escapes before any pattern matching.
func StripANSI(line string) string {
	if len(line) > maxStripLen {
		return line
	}
	return ansiEscape.ReplaceAllString(line, "")
}

// One independent rule per field: the first occurrence of the labeled
// token wins. Keeping this a table lets each rule be tested in isolation.
type fieldRule struct {
	name string
	re   *regexp.Regexp
}

var fieldRules = []fieldRule{
	{"apiConsumen", regexp.MustCompile(`app_name:\s([^\s,]+)`)},
	{"api", regexp.MustCompile(`host:\s([^\s,]+)`)},
	{"endpoint", regexp.MustCompile(`end_point:\s([^\s,]+)`)},
	{"metodo", regexp.MustCompile(`method:\s([^\s,]+)`)},
	{"fecha", regexp.MustCompile(`date:\s([^\s,]+)`)},
	{"direccionAccion", regexp.MustCompile(`ip_user:\s([^\s,]+)`)},
	{"userAgent", regexp.MustCompile(`user_agent:\s([^\s,]+)`)},
	{"usuario", regexp.MustCompile(`\b, user:\s([^\s,]+)`)},
	{"data", regexp.MustCompile(`data:\s({.*})`)},
	{"tipoLog", regexp.MustCompile(`\[([a-zA-Z0-9._-]+)\.\w+:`)},
	{"sqlOrm", regexp.MustCompile(`sql_orm:\s\{(.*?)\},\s+ip_user:`)},
}

// ParsedLine is the outcome of running the rule table over one log line.
type ParsedLine struct {
	Fields map[string]string
	// Clean is the ANSI-stripped original message.
	Clean string
}

// Field returns the extracted value or the fallback when the label was
// absent from the line.
func (p *ParsedLine) Field(name, fallback string) string {
	if v, ok := p.Fields[name]; ok {
		return v
	}
	return fallback
}

// ParseLogLine extracts all known fields from one raw log line.
func ParseLogLine(raw string) *ParsedLine {
	clean := StripANSI(raw)
	fields := make(map[string]string, len(fieldRules))
	for _, rule := range fieldRules {
		if m := rule.re.FindStringSubmatch(clean); m != nil {
			fields[rule.name] = m[1]
		}
	}
	return &ParsedLine{Fields: fields, Clean: clean}
}

// ConvertDate rewrites the logged UTC instant into the display format.
// Unparseable input yields an empty string.
func ConvertDate(dateStr string) string {
	t, err := time.Parse("2006-01-02T15:04:05Z", dateStr)
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

// BuildRequestSummary encodes the "request performed" envelope shown to
// auditors. The data blob is embedded as JSON when it is syntactically
// valid and kept as raw text otherwise.
func BuildRequestSummary(endpoint, api, metodo, usuario, data string) string {
	payload := map[string]any{
		"endpoint": endpoint,
		"api":      api,
		"metodo":   metodo,
		"usuario":  usuario,
	}
	if data != "" && json.Valid([]byte(data)) {
		payload["data"] = json.RawMessage(data)
	} else {
		payload["data"] = data
	}
	out, err := json.MarshalIndent(payload, "", "    ")
	if err != nil {
		return ""
	}
	return string(out)
}

var (
	statementRe = regexp.MustCompile(`\[(.*?)\] - (.+)`)
	backtickRe  = regexp.MustCompile("`([^`]*)`")
)

// ReconstructStatement rebuilds the parameterized data-mutation statement
// from the sql_orm segment: a bracketed template followed by a dash and a
// value list. Positional placeholders ($1, $2, ...) are substituted in
// order. POST values are comma-separated, the remaining write methods log
// them backtick-quoted.
func ReconstructStatement(metodo, segment string) string {
	method := strings.ToUpper(metodo)
	switch method {
	case "POST", "PUT", "GET", "DELETE":
	default:
		return segment
	}

	m := statementRe.FindStringSubmatch(segment)
	if m == nil {
		return fmt.Sprintf("El formato del log %s no es válido: %s", method, segment)
	}

	statement := m[1]
	var values []string
	if method == "POST" {
		values = strings.Split(m[2], ", ")
	} else {
		for _, q := range backtickRe.FindAllStringSubmatch(m[2], -1) {
			values = append(values, q[1])
		}
	}
	for i, v := range values {
		statement = strings.ReplaceAll(statement, fmt.Sprintf("$%d", i+1), strings.TrimSpace(v))
	}
	return statement
}

// ExtractError pulls tipoError and mensajeError out of the embedded
// response payload when the logged call reported Success == false. Lines
// without an error payload yield "N/A" for both. The main pipeline does
// not consume this yet; the audit frontend still renders the raw message.
func ExtractError(line string) (tipoError, mensajeError string) {
	tipoError, mensajeError = "N/A", "N/A"

	dataIdx := strings.Index(line, "data: {")
	if dataIdx < 0 {
		return tipoError, mensajeError
	}
	jsonStart := strings.Index(line[dataIdx:], "{") + dataIdx
	jsonEnd := strings.LastIndex(line, "}}")
	if jsonEnd < jsonStart {
		return tipoError, mensajeError
	}
	blob := line[jsonStart : jsonEnd+2]

	var payload map[string]any
	if err := json.Unmarshal([]byte(blob), &payload); err != nil {
		// Some writers emit one brace too many; retry without it.
		if cut := strings.LastIndex(blob, "}"); cut > 0 {
			if err := json.Unmarshal([]byte(blob[:cut]), &payload); err != nil {
				return tipoError, mensajeError
			}
		} else {
			return tipoError, mensajeError
		}
	}

	inner, ok := payload["json"].(map[string]any)
	if !ok {
		return tipoError, mensajeError
	}
	if success, ok := inner["Success"].(bool); !ok || success {
		return tipoError, mensajeError
	}

	status := stringOr(inner["Status"], "N/A")
	switch status {
	case "500":
		tipoError = "500 Internal Server Error"
	case "400":
		tipoError = "400 Bad Request"
	default:
		tipoError = status
	}
	mensajeError = fmt.Sprintf("Mensaje de error: %s\nEndpoint: %s\nTipo de error: %s",
		stringOr(inner["Data"], "N/A"), stringOr(inner["Message"], "N/A"), tipoError)
	return tipoError, mensajeError
}

func stringOr(v any, fallback string) string {
	if v == nil {
		return fallback
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
