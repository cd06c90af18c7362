// Package agent hosts the ADK-backed listing advisor that writes the
// free-form detail blurbs for the property-details stage.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/adk/tool"
	"google.golang.org/genai"

	"inmochat_backend/internal/chat/domain"
	"inmochat_backend/internal/properties/repository"
	"inmochat_backend/platform/logger"
)

const advisorInstruction = `Eres un agente inmobiliario experto y amigable que escribe en español.
Cuando el usuario te pida detalles sobre una propiedad, usa la herramienta FetchListing con la referencia indicada para obtener la ficha completa antes de responder.
Tu respuesta debe incluir:
- Características destacadas
- Posibles ventajas de la ubicación
- Sugerencias sobre a quién podría convenir esta propiedad
- Preguntas que podrías hacer para ayudar mejor al cliente
Mantén un tono conversacional, amigable y profesional. Máximo 200 palabras.`

// ListingAdvisor elaborates listing details through an LLM agent that
// can pull the full catalog record for the listing it describes.
type ListingAdvisor struct {
	agent          agent.Agent
	runner         *runner.Runner
	sessionService session.Service
	appName        string
	log            *logger.Logger
}

// NewListingAdvisor builds the advisor agent against the Gemini API.
func NewListingAdvisor(ctx context.Context, apiKey, model string, repo *repository.Repository, log *logger.Logger) (*ListingAdvisor, error) {
	m, err := gemini.NewModel(ctx, model, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create advisor model: %w", err)
	}

	fetchTool, err := newFetchListingTool(repo)
	if err != nil {
		return nil, fmt.Errorf("build FetchListing tool: %w", err)
	}

	adkAgent, err := llmagent.New(llmagent.Config{
		Name:        "ListingAdvisor",
		Model:       m,
		Description: "Writes engaging detail summaries for real estate listings.",
		Instruction: advisorInstruction,
		Tools:       []tool.Tool{fetchTool},
	})
	if err != nil {
		return nil, fmt.Errorf("create advisor agent: %w", err)
	}

	sessionService := session.InMemoryService()
	appName := "listing_advisor"
	r, err := runner.New(runner.Config{
		AppName:        appName,
		Agent:          adkAgent,
		SessionService: sessionService,
	})
	if err != nil {
		return nil, fmt.Errorf("create advisor runner: %w", err)
	}

	return &ListingAdvisor{
		agent:          adkAgent,
		runner:         r,
		sessionService: sessionService,
		appName:        appName,
		log:            log,
	}, nil
}

// Elaborate writes the detail blurb for one recommended listing.
func (a *ListingAdvisor) Elaborate(ctx context.Context, property domain.Property, userName string) (string, error) {
	userID := "advisor-" + property.ID
	sessionID := uuid.NewString()

	if _, err := a.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   a.appName,
		UserID:    userID,
		SessionID: sessionID,
	}); err != nil {
		return "", fmt.Errorf("create advisor session: %w", err)
	}
	defer func() {
		deleteReq := &session.DeleteRequest{
			AppName:   a.appName,
			UserID:    userID,
			SessionID: sessionID,
		}
		if err := a.sessionService.Delete(context.WithoutCancel(ctx), deleteReq); err != nil && a.log != nil {
			a.log.CollaboratorError("listing_advisor", fmt.Errorf("delete session %s: %w", sessionID, err))
		}
	}()

	name := userName
	if name == "" {
		name = "el cliente"
	}
	message := &genai.Content{
		Role: "user",
		Parts: []*genai.Part{{
			Text: fmt.Sprintf("El usuario %s quiere más detalles sobre esta propiedad (referencia %s):\n\n%s", name, property.ID, property.Text),
		}},
	}

	var output strings.Builder
	runConfig := agent.RunConfig{StreamingMode: agent.StreamingModeNone}
	for event, err := range a.runner.Run(ctx, userID, sessionID, message, runConfig) {
		if err != nil {
			return "", fmt.Errorf("advisor run: %w", err)
		}
		if event.Content != nil {
			for _, part := range event.Content.Parts {
				output.WriteString(part.Text)
			}
		}
	}

	return strings.TrimSpace(output.String()), nil
}
