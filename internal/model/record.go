package model

// LogRecord is one parsed and enriched audit event as returned to callers.
// Field names keep the Spanish JSON contract the consuming frontends
// already depend on. A record is never mutated after construction.
type LogRecord struct {
	TipoLog              string `json:"tipoLog"`
	Fecha                string `json:"fecha"`
	RolResponsable       string `json:"rolResponsable"`
	NombreResponsable    string `json:"nombreResponsable"`
	DocumentoResponsable string `json:"documentoResponsable"`
	DireccionAccion      string `json:"direccionAccion"`
	Rol                  string `json:"rol"`
	ApisConsumen         string `json:"apisConsumen"`
	PeticionRealizada    string `json:"peticionRealizada"`
	EventoBD             string `json:"eventoBD"`
	TipoError            string `json:"tipoError"`
	MensajeError         string `json:"mensajeError"`
}
