package service

import (
	"context"
	"log"
	"strings"

	"github.com/udistrital/auditoria_mid/internal/cloudwatch"
	"github.com/udistrital/auditoria_mid/internal/model"
)

// QueryRunner drives one asynchronous backend query to completion.
// *cloudwatch.Executor satisfies it; tests substitute a fake.
type QueryRunner interface {
	Run(ctx context.Context, logGroup, queryString string, start, end int64) (*cloudwatch.Result, error)
}

// AuditService is the retrieval and enrichment pipeline behind the audit
// endpoints. One request is handled synchronously end to end; the only
// shared state lives in the external services.
type AuditService struct {
	runner   QueryRunner
	resolver IdentityResolver
	logger   *log.Logger
}

func NewAuditService(runner QueryRunner, resolver IdentityResolver, logger *log.Logger) *AuditService {
	return &AuditService{
		runner:   runner,
		resolver: resolver,
		logger:   logger,
	}
}

// Search runs the full pipeline for one filter request: build the query,
// convert the time range, execute, parse and enrich every row, apply the
// in-memory predicates and paginate. A query that fails, is cancelled,
// times out or matches nothing yields the 404 envelope; malformed time
// bounds yield ErrInvalidTimeRange; anything else is an internal error.
func (s *AuditService) Search(ctx context.Context, req *model.FilterRequest) (*model.APIResponse, error) {
	start, end, err := ConvertTimeRange(req.StartTime(), req.EndTime())
	if err != nil {
		return nil, err
	}

	logGroup := cloudwatch.LogGroupName(req.NombreApi, req.EntornoApi)
	query := BuildQuery(req)

	result, err := s.runner.Run(ctx, logGroup, query, start, end)
	if err != nil {
		return nil, err
	}
	if result.Status != cloudwatch.StatusComplete {
		// TimedOut is terminal "no usable result" and is surfaced exactly
		// like Failed/Cancelled, never retried.
		s.logger.Printf("query %s on %s ended %s after %s", result.QueryID, logGroup, result.Status, result.Elapsed)
		return model.NotFoundResponse(), nil
	}
	if len(result.Rows) == 0 {
		return model.NotFoundResponse(), nil
	}

	entries := make([]auditEntry, 0, len(result.Rows))
	for _, row := range result.Rows {
		message, ok := cloudwatch.MessageField(row, "@message")
		if !ok {
			continue
		}
		entries = append(entries, s.buildEntry(ctx, message))
	}

	records := applyResultFilter(entries, req)
	if len(records) == 0 {
		return model.NotFoundResponse(), nil
	}

	pageRecords, pagination := paginate(records, req.Pagina, req.Limite)
	return model.SuccessResponse(pageRecords, pagination), nil
}

// buildEntry parses one line and enriches it into a LogRecord, keeping
// the parsed fields alongside for the secondary filter.
func (s *AuditService) buildEntry(ctx context.Context, message string) auditEntry {
	parsed := ParseLogLine(message)

	userID, hasUser := SynthesizeUserID(strings.TrimSpace(parsed.Field("usuario", "")))
	identity := s.resolver.Resolve(ctx, userID, hasUser)

	record := model.LogRecord{
		TipoLog:           parsed.Field("tipoLog", ""),
		Fecha:             ConvertDate(parsed.Field("fecha", "")),
		RolResponsable:    userID,
		DireccionAccion:   parsed.Field("direccionAccion", "N/A"),
		ApisConsumen:      parsed.Field("apiConsumen", "N/A"),
		PeticionRealizada: BuildRequestSummary(parsed.Field("endpoint", ""), parsed.Field("api", ""), parsed.Field("metodo", ""), userID, parsed.Field("data", "")),
		EventoBD:          ReconstructStatement(parsed.Field("metodo", ""), parsed.Field("sqlOrm", "")),
		TipoError:         "N/A",
		MensajeError:      parsed.Clean,
	}

	switch identity.Outcome {
	case IdentityResolved:
		record.Rol = identity.Roles
		record.DocumentoResponsable = identity.Document
		record.NombreResponsable = identity.Name
	case IdentityLookupError:
		record.Rol = ErrorObtenerRoles
		record.DocumentoResponsable = ErrorObtenerDocumento
		record.NombreResponsable = ErrorObtenerNombre
	default: // IdentityNotRegistered, IdentityNoUser
		record.Rol = RolNoEncontrado
		record.DocumentoResponsable = DocumentoNoEncontrado
		record.NombreResponsable = NombreNoEncontrado
	}

	return auditEntry{record: record, fields: parsed.Fields}
}
