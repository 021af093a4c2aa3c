package model

// Pagination describes how a result set was sliced.
// Paginas is always ceil(Total/Limite).
type Pagination struct {
	Pagina  int `json:"pagina"`
	Limite  int `json:"limite"`
	Total   int `json:"total"`
	Paginas int `json:"paginas"`
}

// APIResponse is the envelope every endpoint returns. Code mirrors the
// HTTP status so clients reading only the body see the same outcome.
type APIResponse struct {
	Status     string      `json:"Status"`
	Code       int         `json:"Code"`
	Data       []LogRecord `json:"Data"`
	Pagination *Pagination `json:"Pagination,omitempty"`
	Error      string      `json:"Error,omitempty"`
}

const (
	statusSuccess    = "Successful request"
	statusNotFound   = "No logs found or query failed"
	statusBadRequest = "Bad Request"
	statusInternal   = "Internal Error"
)

// SuccessResponse builds the 200 envelope for a paginated result set.
func SuccessResponse(records []LogRecord, pagination Pagination) *APIResponse {
	if records == nil {
		records = []LogRecord{}
	}
	return &APIResponse{
		Status:     statusSuccess,
		Code:       200,
		Data:       records,
		Pagination: &pagination,
	}
}

// NotFoundResponse builds the 404 envelope used when the backend query
// completed with zero rows, failed, was cancelled, or timed out locally.
func NotFoundResponse() *APIResponse {
	return &APIResponse{
		Status:     statusNotFound,
		Code:       404,
		Data:       []LogRecord{},
		Pagination: &Pagination{},
	}
}

// BadRequestResponse builds the 400 envelope naming the offending field.
func BadRequestResponse(message string) *APIResponse {
	return &APIResponse{
		Status: statusBadRequest,
		Code:   400,
		Data:   []LogRecord{},
		Error:  message,
	}
}

// InternalErrorResponse builds the 500 envelope. The diagnostic detail is
// included only when the deployment runs in dev mode.
func InternalErrorResponse(detail string, includeDetail bool) *APIResponse {
	resp := &APIResponse{
		Status: statusInternal,
		Code:   500,
		Data:   []LogRecord{},
	}
	if includeDetail {
		resp.Error = detail
	}
	return resp
}
