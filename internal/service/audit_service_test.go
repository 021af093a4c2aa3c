package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/udistrital/auditoria_mid/internal/cloudwatch"
	"github.com/udistrital/auditoria_mid/internal/model"
)

type fakeRunner struct {
	result   *cloudwatch.Result
	err      error
	logGroup string
	query    string
}

func (f *fakeRunner) Run(ctx context.Context, logGroup, queryString string, start, end int64) (*cloudwatch.Result, error) {
	f.logGroup = logGroup
	f.query = queryString
	return f.result, f.err
}

type fakeResolver struct {
	identity Identity
	calls    int
}

func (f *fakeResolver) Resolve(ctx context.Context, userID string, hasUser bool) Identity {
	f.calls++
	return f.identity
}

func messageRow(message string) []types.ResultField {
	return []types.ResultField{
		{Field: aws.String("@timestamp"), Value: aws.String("2024-08-01 14:30:00.000")},
		{Field: aws.String("@message"), Value: aws.String(message)},
	}
}

func sampleRows(n int) [][]types.ResultField {
	rows := make([][]types.ResultField, n)
	for i := range rows {
		rows[i] = messageRow(fmt.Sprintf(
			`[polux_crud.middleware: audit] app_name: polux_front, end_point: /v1/trabajo_grado/%d, `+
				`method: GET, date: 2024-08-01T14:30:0%dZ, sql_orm: {consulta}, ip_user: 10.20.30.40, `+
				`user_agent: curl/8.0, user: jdoe, data: {"id": %d}`, i, i, i))
	}
	return rows
}

func newTestService(runner *fakeRunner, resolver *fakeResolver) *AuditService {
	return NewAuditService(runner, resolver, discardLogger())
}

func searchRequest() *model.FilterRequest {
	return &model.FilterRequest{
		NombreApi:   "polux_crud",
		EntornoApi:  "SANDBOX",
		FechaInicio: "2024-08-01",
		HoraInicio:  "13:30",
		FechaFin:    "2024-08-01",
		HoraFin:     "14:30",
		TipoLog:     "GET",
		Pagina:      1,
		Limite:      20,
	}
}

func TestSearchEndToEnd(t *testing.T) {
	runner := &fakeRunner{result: &cloudwatch.Result{Status: cloudwatch.StatusComplete, Rows: sampleRows(5)}}
	resolver := &fakeResolver{identity: Identity{
		Outcome:  IdentityResolved,
		Roles:    "ESTUDIANTE",
		Document: "1012345678",
		Name:     "Juana Doe",
	}}

	resp, err := newTestService(runner, resolver).Search(context.Background(), searchRequest())
	require.NoError(t, err)

	assert.Equal(t, 200, resp.Code)
	assert.Len(t, resp.Data, 5)
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, 1, resp.Pagination.Paginas)
	assert.Equal(t, 5, resp.Pagination.Total)

	// One enrichment per matching row.
	assert.Equal(t, 5, resolver.calls)

	// The sandbox environment maps to the test log group.
	assert.Equal(t, "/ecs/polux_crud_test", runner.logGroup)
	assert.Contains(t, runner.query, "| sort @timestamp desc")

	first := resp.Data[0]
	assert.Equal(t, "polux_crud", first.TipoLog)
	assert.Equal(t, "2024-08-01 14:30:00", first.Fecha)
	assert.Equal(t, "jdoe@udistrital.edu.co", first.RolResponsable)
	assert.Equal(t, "Juana Doe", first.NombreResponsable)
	assert.Equal(t, "1012345678", first.DocumentoResponsable)
	assert.Equal(t, "ESTUDIANTE", first.Rol)
	assert.Equal(t, "10.20.30.40", first.DireccionAccion)
	assert.Equal(t, "polux_front", first.ApisConsumen)
	assert.Equal(t, "N/A", first.TipoError)
	assert.NotEmpty(t, first.MensajeError)
}

func TestSearchProductionLogGroup(t *testing.T) {
	runner := &fakeRunner{result: &cloudwatch.Result{Status: cloudwatch.StatusComplete, Rows: sampleRows(1)}}
	req := searchRequest()
	req.EntornoApi = "PRODUCTION"

	_, err := newTestService(runner, &fakeResolver{}).Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "/ecs/polux_crud_prod", runner.logGroup)
}

func TestSearchNoUsableResult(t *testing.T) {
	testCases := []struct {
		name   string
		result *cloudwatch.Result
	}{
		{"zero rows", &cloudwatch.Result{Status: cloudwatch.StatusComplete}},
		{"failed", &cloudwatch.Result{Status: cloudwatch.StatusFailed}},
		{"cancelled", &cloudwatch.Result{Status: cloudwatch.StatusCancelled}},
		{"timed out", &cloudwatch.Result{Status: cloudwatch.StatusTimedOut}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			runner := &fakeRunner{result: tc.result}
			resp, err := newTestService(runner, &fakeResolver{}).Search(context.Background(), searchRequest())
			require.NoError(t, err)

			assert.Equal(t, 404, resp.Code)
			assert.Empty(t, resp.Data)
			assert.Equal(t, &model.Pagination{}, resp.Pagination)
		})
	}
}

func TestSearchInvalidTimeRange(t *testing.T) {
	req := searchRequest()
	req.HoraInicio = "25:99"

	_, err := newTestService(&fakeRunner{}, &fakeResolver{}).Search(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestSearchBackendErrorPropagates(t *testing.T) {
	backendErr := errors.New("throttled past the retry budget")
	runner := &fakeRunner{err: backendErr}

	_, err := newTestService(runner, &fakeResolver{}).Search(context.Background(), searchRequest())
	assert.ErrorIs(t, err, backendErr)
}

func TestSearchSecondaryFilter(t *testing.T) {
	rows := [][]types.ResultField{
		messageRow(`[a.middleware: x] app_name: polux_front, end_point: /v1/foo, method: GET, ip_user: 1.1.1.1, user_agent: c, user: jdoe, data: {}`),
		messageRow(`[a.middleware: x] app_name: otro_front, end_point: /v1/bar, method: POST, ip_user: 2.2.2.2, user_agent: c, user: jdoe, data: {}`),
	}
	runner := &fakeRunner{result: &cloudwatch.Result{Status: cloudwatch.StatusComplete, Rows: rows}}

	req := searchRequest()
	req.TipoLog = ""
	req.ApiConsumen = "POLUX" // case-insensitive substring
	req.DireccionIp = "1.1.1.1"

	resp, err := newTestService(runner, &fakeResolver{}).Search(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "1.1.1.1", resp.Data[0].DireccionAccion)
}

func TestSearchAllRowsFilteredOut(t *testing.T) {
	runner := &fakeRunner{result: &cloudwatch.Result{Status: cloudwatch.StatusComplete, Rows: sampleRows(3)}}

	req := searchRequest()
	req.DireccionIp = "9.9.9.9"

	resp, err := newTestService(runner, &fakeResolver{}).Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.Code)
}
