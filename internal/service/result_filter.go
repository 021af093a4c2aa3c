package service

import (
	"strings"

	"github.com/udistrital/auditoria_mid/internal/model"
)

// The Insights query already narrows by raw substring, but it cannot
// express case-insensitive or field-scoped matches, so the predicates are
// re-applied in memory over the parsed records.

type auditEntry struct {
	record model.LogRecord
	fields map[string]string
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// matchesFilters applies the secondary predicates: case-insensitive
// substring on method, consuming API and endpoint, exact match on IP.
func matchesFilters(e auditEntry, req *model.FilterRequest) bool {
	if req.TipoLog != "" && !containsFold(e.fields["metodo"], req.TipoLog) {
		return false
	}
	if req.ApiConsumen != "" && !containsFold(e.fields["apiConsumen"], req.ApiConsumen) {
		return false
	}
	if req.Endpoint != "" && !containsFold(e.fields["endpoint"], req.Endpoint) {
		return false
	}
	if req.DireccionIp != "" && e.fields["direccionAccion"] != req.DireccionIp {
		return false
	}
	return true
}

func applyResultFilter(entries []auditEntry, req *model.FilterRequest) []model.LogRecord {
	records := make([]model.LogRecord, 0, len(entries))
	for _, e := range entries {
		if matchesFilters(e, req) {
			records = append(records, e.record)
		}
	}
	return records
}
