package intent

import (
	"context"
	"regexp"
	"strings"

	"inmochat_backend/platform/logger"
)

// Rejection reasons surfaced in metadata for diagnostics.
const (
	ReasonTooShort       = "message too short"
	ReasonOffTopic       = "off-topic indicators without real-estate keywords"
	ReasonTestPattern    = "test pattern detected"
	ReasonKeywordMatch   = "real-estate keywords present"
	ReasonModelAccepted  = "accepted by classification model"
	ReasonModelRejected  = "rejected by classification model"
	ReasonModelUnreached = "classification model unreachable, rejected"
)

var realEstateKeywords = []string{
	// property kinds
	"casa", "departamento", "apartamento", "oficina", "local", "terreno", "lote",
	"vivienda", "inmueble", "propiedad", "piso", "duplex", "penthouse",
	// transactions
	"comprar", "vender", "alquilar", "arrendar", "rentar", "compra", "venta", "alquiler",
	// features
	"dormitorio", "habitacion", "habitación", "baño", "bano", "cocina", "sala",
	"garage", "jardin", "m2", "metros", "superficie", "piscina", "gimnasio", "ascensor",
	// location
	"ubicacion", "ubicación", "direccion", "zona", "distrito", "barrio", "cerca",
	// money
	"precio", "costo", "presupuesto", "financiamiento", "credito", "hipoteca",
	"soles", "dolares", "dólares",
	// services
	"agente", "inmobiliaria", "visita", "mostrar", "recomendar", "buscar", "busco",
}

var offTopicIndicators = []string{
	"test", "testing", "prueba", "debug", "sql", "api", "endpoint", "json",
	"clima", "tiempo", "noticias", "deportes", "musica", "pelicula", "receta",
	"chiste", "matematica", "formula", "ecuacion", "politica", "religion",
	"filosofia", "capital",
}

var testPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(test|testing)\b`),
	regexp.MustCompile(`\b(que tal|como estas|how are you)\b`),
	regexp.MustCompile(`\b(clima|tiempo|weather)\b`),
	regexp.MustCompile(`\b(chiste|joke)\b`),
}

var greetingWords = []string{"hola", "hello", "hi", "buenos", "buenas"}

// Escalator produces a binary in-domain verdict for input the keyword
// lists cannot decide. Backed by a classification model.
type Escalator interface {
	IsInDomain(ctx context.Context, text string) (bool, error)
}

// Validator gates every utterance before any extraction or search work.
// Cheap keyword checks decide the obvious cases; ambiguous input
// escalates to the classification collaborator. On collaborator failure
// the validator fails closed.
type Validator struct {
	escalator Escalator
	log       *logger.Logger
}

// NewValidator creates a Validator. The escalator may be nil, in which
// case ambiguous input is rejected outright.
func NewValidator(escalator Escalator, log *logger.Logger) *Validator {
	return &Validator{escalator: escalator, log: log}
}

// Validate classifies text as in-domain or not, returning the verdict
// and a reason.
func (v *Validator) Validate(ctx context.Context, text string) (bool, string) {
	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) < 3 {
		return false, ReasonTooShort
	}

	lower := strings.ToLower(trimmed)

	hasKeywords := containsAny(lower, realEstateKeywords)
	hasOffTopic := containsAny(lower, offTopicIndicators)

	if hasOffTopic && !hasKeywords {
		return false, ReasonOffTopic
	}

	for _, p := range testPatterns {
		if !hasKeywords && p.MatchString(lower) {
			return false, ReasonTestPattern
		}
	}

	if hasKeywords {
		return true, ReasonKeywordMatch
	}

	// Bare greetings open most conversations; accept them without a
	// model round-trip.
	if containsAny(lower, greetingWords) {
		return true, ReasonKeywordMatch
	}

	if v.escalator == nil {
		return false, ReasonModelUnreached
	}

	ok, err := v.escalator.IsInDomain(ctx, trimmed)
	if err != nil {
		if v.log != nil {
			v.log.CollaboratorError("domain_validator", err)
		}
		return false, ReasonModelUnreached
	}
	if ok {
		return true, ReasonModelAccepted
	}
	return false, ReasonModelRejected
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
