package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/udistrital/auditoria_mid/internal/model"
	"github.com/udistrital/auditoria_mid/internal/service"
)

type stubSearcher struct {
	resp *model.APIResponse
	err  error
	got  *model.FilterRequest
}

func (s *stubSearcher) Search(ctx context.Context, req *model.FilterRequest) (*model.APIResponse, error) {
	s.got = req
	return s.resp, s.err
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func validQuery() url.Values {
	return url.Values{
		"nombreApi":   {"polux_crud"},
		"entornoApi":  {"SANDBOX"},
		"fechaInicio": {"2024-08-01"},
		"horaInicio":  {"13:30"},
		"fechaFin":    {"2024-08-01"},
		"horaFin":     {"14:30"},
		"tipoLog":     {"GET"},
		"pagina":      {"1"},
		"limite":      {"20"},
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) model.APIResponse {
	t.Helper()
	var envelope model.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestGetFilteredSuccess(t *testing.T) {
	stub := &stubSearcher{resp: model.SuccessResponse(
		make([]model.LogRecord, 5),
		model.Pagination{Pagina: 1, Limite: 20, Total: 5, Paginas: 1},
	)}
	h := NewAuditHandler(stub, false, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/auditoria?"+validQuery().Encode(), nil)
	rec := httptest.NewRecorder()
	h.GetFiltered(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, 200, envelope.Code)
	assert.Len(t, envelope.Data, 5)
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 1, envelope.Pagination.Paginas)

	require.NotNil(t, stub.got)
	assert.Equal(t, "polux_crud", stub.got.NombreApi)
	assert.Equal(t, 20, stub.got.Limite)
}

func TestGetFilteredMissingRequiredField(t *testing.T) {
	q := validQuery()
	q.Del("horaInicio")
	stub := &stubSearcher{}
	h := NewAuditHandler(stub, false, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/auditoria?"+q.Encode(), nil)
	rec := httptest.NewRecorder()
	h.GetFiltered(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, 400, envelope.Code)
	assert.Contains(t, envelope.Error, "HoraInicio")
	// The service must never run for an invalid request.
	assert.Nil(t, stub.got)
}

func TestGetFilteredMalformedTime(t *testing.T) {
	q := validQuery()
	q.Set("horaInicio", "13h30")

	h := NewAuditHandler(&stubSearcher{}, false, discardLogger())
	req := httptest.NewRequest(http.MethodGet, "/v1/auditoria?"+q.Encode(), nil)
	rec := httptest.NewRecorder()
	h.GetFiltered(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeEnvelope(t, rec).Error, "HoraInicio")
}

func TestGetFilteredNonIntegerPage(t *testing.T) {
	q := validQuery()
	q.Set("pagina", "uno")

	h := NewAuditHandler(&stubSearcher{}, false, discardLogger())
	req := httptest.NewRequest(http.MethodGet, "/v1/auditoria?"+q.Encode(), nil)
	rec := httptest.NewRecorder()
	h.GetFiltered(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeEnvelope(t, rec).Error, "pagina")
}

func TestPostBuscarLog(t *testing.T) {
	stub := &stubSearcher{resp: model.NotFoundResponse()}
	h := NewAuditHandler(stub, false, discardLogger())

	body, err := json.Marshal(map[string]any{
		"nombreApi":   "polux_crud",
		"entornoApi":  "PRODUCTION",
		"fechaInicio": "2024-08-01",
		"horaInicio":  "13:30",
		"fechaFin":    "2024-08-01",
		"horaFin":     "14:30",
		"tipoLog":     "POST",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/auditoria/buscarLog", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.PostBuscarLog(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, 404, envelope.Code)
	assert.Empty(t, envelope.Data)

	require.NotNil(t, stub.got)
	assert.Equal(t, "PRODUCTION", stub.got.EntornoApi)
}

func TestPostBuscarLogInvalidJSON(t *testing.T) {
	h := NewAuditHandler(&stubSearcher{}, false, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/auditoria/buscarLog", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.PostBuscarLog(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchErrorMapping(t *testing.T) {
	testCases := []struct {
		name          string
		err           error
		includeDetail bool
		wantCode      int
		wantDetail    bool
	}{{
		name:     "invalid time range is a 400",
		err:      fmt.Errorf("%w: fechaInicio", service.ErrInvalidTimeRange),
		wantCode: http.StatusBadRequest,
	}, {
		name:          "internal error with detail in dev",
		err:           errors.New("backend exploded"),
		includeDetail: true,
		wantCode:      http.StatusInternalServerError,
		wantDetail:    true,
	}, {
		name:     "internal error hides detail in prod",
		err:      errors.New("backend exploded"),
		wantCode: http.StatusInternalServerError,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewAuditHandler(&stubSearcher{err: tc.err}, tc.includeDetail, discardLogger())

			req := httptest.NewRequest(http.MethodGet, "/v1/auditoria?"+validQuery().Encode(), nil)
			rec := httptest.NewRecorder()
			h.GetFiltered(rec, req)

			assert.Equal(t, tc.wantCode, rec.Code)
			envelope := decodeEnvelope(t, rec)
			if tc.wantCode == http.StatusInternalServerError {
				if tc.wantDetail {
					assert.Contains(t, envelope.Error, "backend exploded")
				} else {
					assert.Empty(t, envelope.Error)
				}
			}
		})
	}
}
