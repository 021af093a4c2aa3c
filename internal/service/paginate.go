package service

import (
	"github.com/udistrital/auditoria_mid/internal/model"
)

const (
	defaultPageSize = 5000
	maxPageSize     = 10000
)

// paginate slices records to [offset, offset+limit) and computes the
// pagination metadata. Page and limit are clamped to safe bounds before
// use; a page past the end yields an empty slice, not an error.
func paginate(records []model.LogRecord, page, limit int) ([]model.LogRecord, model.Pagination) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	total := len(records)
	pages := (total + limit - 1) / limit

	offset := (page - 1) * limit
	end := offset + limit
	if offset > total {
		offset = total
	}
	if end > total {
		end = total
	}

	return records[offset:end], model.Pagination{
		Pagina:  page,
		Limite:  limit,
		Total:   total,
		Paginas: pages,
	}
}
