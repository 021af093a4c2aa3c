package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/udistrital/auditoria_mid/internal/config"
)

// Sentinel strings surfaced to callers when identity data is missing or
// unresolvable. Enrichment is best-effort: these stand in for nulls, and
// a failed lookup never aborts the batch.
const (
	SinUsuario            = "Error WSO2 - Sin usuario"
	RolNoEncontrado       = "Rol no encontrado"
	DocumentoNoEncontrado = "Documento no encontrado"
	NombreNoEncontrado    = "Nombre no encontrado"
	ErrorObtenerRoles     = "Error al obtener roles"
	ErrorObtenerDocumento = "Error al obtener documento"
	ErrorObtenerNombre    = "Error al obtener nombre"
)

const userDomain = "udistrital.edu.co"

// The WSO2 gateway writes these placeholders when it could not establish
// the caller.
var placeholderUsers = map[string]bool{
	"":           true,
	"N/A":        true,
	"Error":      true,
	"Error WSO2": true,
	SinUsuario:   true,
}

// SynthesizeUserID turns the parsed usuario token into the email-shaped
// identifier the role service expects. ok is false when the line carried
// no usable user, in which case the SinUsuario sentinel is returned.
func SynthesizeUserID(usuario string) (id string, ok bool) {
	if placeholderUsers[usuario] {
		return SinUsuario, false
	}
	return usuario + "@" + userDomain, true
}

// IdentityOutcome is the closed set of enrichment results.
type IdentityOutcome int

const (
	// IdentityResolved means the role lookup succeeded; Roles, Document
	// and Name are populated.
	IdentityResolved IdentityOutcome = iota
	// IdentityNotRegistered means the role service answered that the user
	// does not exist.
	IdentityNotRegistered
	// IdentityLookupError means a lookup failed in transport or returned
	// something unexpected.
	IdentityLookupError
	// IdentityNoUser means the log line carried no usable user at all.
	IdentityNoUser
)

// Identity is the enrichment result for one user identifier.
type Identity struct {
	Outcome  IdentityOutcome
	Roles    string
	Document string
	Name     string
}

// IdentityResolver resolves a synthesized user identifier into role and
// display-name information.
type IdentityResolver interface {
	Resolve(ctx context.Context, userID string, hasUser bool) Identity
}

// The gateway gives every account this role; it says nothing about the
// person and is excluded from the joined role list.
const excludedRole = "Internal/everyone"

const lookupTimeout = 10 * time.Second

type roleLookup struct {
	registered bool
	roles      string
	document   string
}

// IdentityEnricher resolves identities through the role service and the
// person-record service. Both upstreams sit behind a circuit breaker so a
// dead service degrades to sentinels immediately instead of costing a
// timeout per record.
type IdentityEnricher struct {
	roleURL     string
	personURL   string
	httpClient  *http.Client
	roleBreaker *gobreaker.CircuitBreaker[roleLookup]
	nameBreaker *gobreaker.CircuitBreaker[string]
	logger      *log.Logger
}

func NewIdentityEnricher(cfg config.ServicesConfig, logger *log.Logger) *IdentityEnricher {
	transport := &http.Transport{
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	breakerSettings := func(name string) gobreaker.Settings {
		return gobreaker.Settings{
			Name:    name,
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Printf("circuit breaker %s: %s -> %s", name, from, to)
			},
		}
	}

	return &IdentityEnricher{
		roleURL:     cfg.AuditoriaMidURL + "/v1/token/userRol",
		personURL:   cfg.TercerosCrudURL + "/v1/datos_identificacion",
		httpClient:  &http.Client{Transport: transport, Timeout: lookupTimeout},
		roleBreaker: gobreaker.NewCircuitBreaker[roleLookup](breakerSettings("userRol")),
		nameBreaker: gobreaker.NewCircuitBreaker[string](breakerSettings("datosIdentificacion")),
		logger:      logger,
	}
}

// Resolve performs the two sequential lookups for one identifier. It
// never returns an error: every failure mode maps to a sentinel outcome.
func (e *IdentityEnricher) Resolve(ctx context.Context, userID string, hasUser bool) Identity {
	if !hasUser {
		return Identity{Outcome: IdentityNoUser}
	}

	role, err := e.roleBreaker.Execute(func() (roleLookup, error) {
		return e.lookupRole(ctx, userID)
	})
	if err != nil {
		e.logger.Printf("role lookup for %s degraded: %v", userID, err)
		return Identity{Outcome: IdentityLookupError}
	}
	if !role.registered {
		return Identity{Outcome: IdentityNotRegistered}
	}

	name, err := e.nameBreaker.Execute(func() (string, error) {
		return e.lookupName(ctx, role.document)
	})
	if err != nil {
		e.logger.Printf("name lookup for document %s degraded: %v", role.document, err)
		name = ErrorObtenerNombre
	}

	return Identity{
		Outcome:  IdentityResolved,
		Roles:    role.roles,
		Document: role.document,
		Name:     name,
	}
}

// lookupRole POSTs the identifier to the role service. A structured
// "unregistered user" response is a valid answer, not a breaker failure.
func (e *IdentityEnricher) lookupRole(ctx context.Context, userID string) (roleLookup, error) {
	body, err := json.Marshal(map[string]string{"user": userID})
	if err != nil {
		return roleLookup{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.roleURL, bytes.NewReader(body))
	if err != nil {
		return roleLookup{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return roleLookup{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Role      []string       `json:"role"`
		Documento string         `json:"documento"`
		System    map[string]any `json:"System"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return roleLookup{}, fmt.Errorf("decoding userRol response: %w", err)
	}

	if resp.StatusCode == http.StatusBadRequest {
		if _, ok := payload.System["Error"]; ok {
			return roleLookup{registered: false}, nil
		}
	}
	if resp.StatusCode != http.StatusOK {
		return roleLookup{}, fmt.Errorf("userRol responded %d", resp.StatusCode)
	}

	var roles []string
	for _, r := range payload.Role {
		if r != excludedRole {
			roles = append(roles, r)
		}
	}
	return roleLookup{
		registered: true,
		roles:      strings.Join(roles, ", "),
		document:   payload.Documento,
	}, nil
}

// lookupName fetches the person's identification record by document
// number. Absence of a record maps to NombreNoEncontrado.
func (e *IdentityEnricher) lookupName(ctx context.Context, documento string) (string, error) {
	url := fmt.Sprintf("%s?query=numero:%s", e.personURL, documento)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("datos_identificacion responded %d", resp.StatusCode)
	}

	var records []struct {
		TerceroId struct {
			NombreCompleto string `json:"NombreCompleto"`
		} `json:"TerceroId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return "", fmt.Errorf("decoding datos_identificacion response: %w", err)
	}

	if len(records) == 0 || records[0].TerceroId.NombreCompleto == "" {
		return NombreNoEncontrado, nil
	}
	return records[0].TerceroId.NombreCompleto, nil
}
