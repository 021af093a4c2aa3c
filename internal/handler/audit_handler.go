package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/udistrital/auditoria_mid/internal/model"
	"github.com/udistrital/auditoria_mid/internal/service"
)

// AuditSearcher is the contract the handler needs from the service layer.
type AuditSearcher interface {
	Search(ctx context.Context, req *model.FilterRequest) (*model.APIResponse, error)
}

type AuditHandler struct {
	service AuditSearcher
	// includeDetail gates diagnostic detail in 500 envelopes; only dev
	// deployments expose it.
	includeDetail bool
	logger        *log.Logger
}

func NewAuditHandler(s AuditSearcher, includeDetail bool, logger *log.Logger) *AuditHandler {
	return &AuditHandler{
		service:       s,
		includeDetail: includeDetail,
		logger:        logger,
	}
}

// GetFiltered handles GET /v1/auditoria with FilterRequest fields as
// query-string parameters.
func (h *AuditHandler) GetFiltered(w http.ResponseWriter, r *http.Request) {
	req, err := filterRequestFromQuery(r)
	if err != nil {
		respondWithEnvelope(w, model.BadRequestResponse(err.Error()))
		return
	}
	h.search(w, r, req)
}

// PostBuscarLog handles POST /v1/auditoria/buscarLog with a JSON body
// mirroring FilterRequest.
func (h *AuditHandler) PostBuscarLog(w http.ResponseWriter, r *http.Request) {
	var req model.FilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithEnvelope(w, model.BadRequestResponse("Invalid JSON format"))
		return
	}
	h.search(w, r, &req)
}

func (h *AuditHandler) search(w http.ResponseWriter, r *http.Request, req *model.FilterRequest) {
	if err := validate.Struct(req); err != nil {
		respondWithEnvelope(w, model.BadRequestResponse(ValidationError(err)))
		return
	}

	resp, err := h.service.Search(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTimeRange) || errors.Is(err, service.ErrInvalidInput) {
			respondWithEnvelope(w, model.BadRequestResponse(err.Error()))
			return
		}
		h.logger.Printf("ERROR: %v", err)
		respondWithEnvelope(w, model.InternalErrorResponse(err.Error(), h.includeDetail))
		return
	}

	respondWithEnvelope(w, resp)
}

func filterRequestFromQuery(r *http.Request) (*model.FilterRequest, error) {
	q := r.URL.Query()

	pagina, err := intParam(q.Get("pagina"))
	if err != nil {
		return nil, errors.New("Field 'pagina' must be an integer")
	}
	limite, err := intParam(q.Get("limite"))
	if err != nil {
		return nil, errors.New("Field 'limite' must be an integer")
	}

	return &model.FilterRequest{
		NombreApi:         q.Get("nombreApi"),
		EntornoApi:        q.Get("entornoApi"),
		FechaInicio:       q.Get("fechaInicio"),
		HoraInicio:        q.Get("horaInicio"),
		FechaFin:          q.Get("fechaFin"),
		HoraFin:           q.Get("horaFin"),
		TipoLog:           q.Get("tipoLog"),
		CodigoResponsable: q.Get("codigoResponsable"),
		PalabraClave:      q.Get("palabraClave"),
		ApiConsumen:       q.Get("apiConsumen"),
		Endpoint:          q.Get("endpoint"),
		DireccionIp:       q.Get("direccionIp"),
		Pagina:            pagina,
		Limite:            limite,
	}, nil
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
