package model

// FilterRequest carries the caller-supplied search criteria for one audit
// query. It arrives either as query-string parameters (GET) or as a JSON
// body (POST) and is immutable for the duration of the request.
type FilterRequest struct {
	NombreApi  string `json:"nombreApi" validate:"required"`
	EntornoApi string `json:"entornoApi" validate:"required"`

	// Local Bogotá wall-clock bounds, split in date and time parts the way
	// the frontend sends them.
	FechaInicio string `json:"fechaInicio" validate:"required,datetime=2006-01-02"`
	HoraInicio  string `json:"horaInicio" validate:"required,datetime=15:04"`
	FechaFin    string `json:"fechaFin" validate:"required,datetime=2006-01-02"`
	HoraFin     string `json:"horaFin" validate:"required,datetime=15:04"`

	// Optional narrowing criteria. Empty means "do not filter on this".
	TipoLog           string `json:"tipoLog"`
	CodigoResponsable string `json:"codigoResponsable"`
	PalabraClave      string `json:"palabraClave"`
	ApiConsumen       string `json:"apiConsumen"`
	Endpoint          string `json:"endpoint"`
	DireccionIp       string `json:"direccionIp"`

	Pagina int `json:"pagina" validate:"omitempty,gte=1"`
	Limite int `json:"limite" validate:"omitempty,gte=1,lte=10000"`
}

// StartTime returns the combined local start bound ("YYYY-MM-DD HH:MM").
func (f *FilterRequest) StartTime() string {
	return f.FechaInicio + " " + f.HoraInicio
}

// EndTime returns the combined local end bound ("YYYY-MM-DD HH:MM").
func (f *FilterRequest) EndTime() string {
	return f.FechaFin + " " + f.HoraFin
}
