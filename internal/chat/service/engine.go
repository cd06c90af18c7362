// Package service orchestrates multi-turn conversations: it gates input,
// routes each turn through the stage dispatcher, and persists both
// sides of the exchange with a full state snapshot.
package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"inmochat_backend/internal/chat/domain"
	"inmochat_backend/internal/chat/stages"
	"inmochat_backend/platform/logger"
)

// Validator gates utterances before any stage work.
type Validator interface {
	Validate(ctx context.Context, text string) (valid bool, reason string)
}

// Store is the append-only conversation log.
type Store interface {
	Append(ctx context.Context, conversationKey string, msgs ...domain.Message) error
	FetchLast(ctx context.Context, conversationKey string, n int) ([]domain.Message, error)
	BeginTurn(ctx context.Context, conversationKey string) (int64, error)
}

// Dispatcher routes one pass of a turn to its stage handler.
type Dispatcher interface {
	Dispatch(ctx context.Context, st stages.State) stages.Outcome
	HandleConfirmation(ctx context.Context, st stages.State) stages.Outcome
}

// TurnInput is one user utterance addressed to a conversation.
type TurnInput struct {
	UserID   string
	ConvID   string
	Message  string
	UserName string
}

// TurnResult is the assistant's reply plus the stage the conversation
// landed on.
type TurnResult struct {
	ConversationKey string
	Stage           domain.Stage
	Text            string
	Properties      []domain.Property
	Lead            domain.Lead
}

// Engine processes turns. One turn per conversation runs at a time;
// turns on different conversations run concurrently.
type Engine struct {
	validator  Validator
	store      Store
	dispatcher Dispatcher
	maxPasses  int
	log        *logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine creates an Engine. maxPasses bounds the dispatch loop of a
// single turn; values below 1 are raised to 1.
func NewEngine(validator Validator, store Store, dispatcher Dispatcher, maxPasses int, log *logger.Logger) *Engine {
	if maxPasses < 1 {
		maxPasses = 1
	}
	return &Engine{
		validator:  validator,
		store:      store,
		dispatcher: dispatcher,
		maxPasses:  maxPasses,
		log:        log,
		locks:      make(map[string]*sync.Mutex),
	}
}

func (e *Engine) lockConversation(key string) func() {
	e.mu.Lock()
	l, ok := e.locks[key]
	if !ok {
		l = &sync.Mutex{}
		e.locks[key] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// ProcessTurn runs one full turn: load state, gate, dispatch, persist.
// Persistence failures degrade to a lost turn, never a failed request.
func (e *Engine) ProcessTurn(ctx context.Context, in TurnInput) (TurnResult, error) {
	key := domain.ConversationKeyFor(in.UserID, in.ConvID)
	unlock := e.lockConversation(key)
	defer unlock()

	started := time.Now()

	turn, err := e.store.BeginTurn(ctx, key)
	if err != nil && e.log != nil {
		e.log.PersistenceError(key, err)
	}

	meta, transcript := e.loadState(ctx, key)
	if err == nil && e.log != nil && turn > 1 && int((turn-1)*2) != meta.ConversationLength {
		// A previous turn was accepted but its messages never landed.
		e.log.PersistenceError(key, fmt.Errorf("turn marker %d does not match stored length %d", turn, meta.ConversationLength))
	}

	userName := in.UserName
	if userName == "" {
		userName = meta.UserName
	}

	// Utterances are gated only in open conversation. Menu stages read
	// replies against their own choice sets, where "A" is an answer,
	// not an off-topic fragment.
	gate := !meta.AwaitingConfirmation && domain.ResumeStage(meta.Stage) == domain.StageExtract
	if gate {
		valid, reason := e.validator.Validate(ctx, in.Message)
		if !valid {
			return e.reject(ctx, key, in.Message, userName, reason, meta), nil
		}
	}

	st := stages.State{
		Message:         in.Message,
		UserName:        userName,
		Stage:           meta.Stage,
		Lead:            meta.Lead,
		Recommendations: meta.LastRecommendations,
		RefineTarget:    meta.RefineTarget,
		UserTranscript:  userTranscript(transcript, in.Message),
	}

	var out stages.Outcome
	passes := 1
	if meta.AwaitingConfirmation && meta.Stage == domain.StageRecommend {
		out = e.dispatcher.HandleConfirmation(ctx, st)
	} else {
		for {
			out = e.dispatcher.Dispatch(ctx, st)
			if !out.Reenter || passes >= e.maxPasses {
				break
			}
			passes++
			st.Stage = out.Stage
		}
	}

	if len(out.Recommendations) == 0 {
		out.AwaitConfirmation = false
	}
	if meta.ConversationLength == 0 {
		out.Text = greet(userName, out.Text)
	}

	newMeta := domain.Metadata{
		Stage:                out.Stage,
		AwaitingConfirmation: out.AwaitConfirmation,
		Lead:                 out.Lead,
		LastRecommendations:  out.Recommendations,
		ConversationLength:   meta.ConversationLength + 2,
		UserName:             userName,
		RefineTarget:         out.RefineTarget,
	}
	if out.SelectedProperty != "" {
		newMeta.Extra = map[string]any{"selected_property": out.SelectedProperty}
	}

	e.persistTurn(ctx, key, in.Message, out, newMeta)

	if e.log != nil {
		e.log.TurnProcessed(key, string(out.Stage), passes, float64(time.Since(started).Milliseconds()))
	}

	return TurnResult{
		ConversationKey: key,
		Stage:           out.Stage,
		Text:            out.Text,
		Properties:      out.Properties,
		Lead:            out.Lead,
	}, nil
}

// loadState reads the latest snapshot and the transcript window. Any
// read failure degrades to a fresh conversation.
func (e *Engine) loadState(ctx context.Context, key string) (domain.Metadata, []domain.Message) {
	last, err := e.store.FetchLast(ctx, key, 1)
	if err != nil {
		if e.log != nil {
			e.log.PersistenceError(key, err)
		}
		return domain.Metadata{}, nil
	}
	if len(last) == 0 {
		return domain.Metadata{}, nil
	}

	meta := last[len(last)-1].Metadata
	if meta.ConversationLength <= 0 {
		return meta, nil
	}

	transcript, err := e.store.FetchLast(ctx, key, meta.ConversationLength)
	if err != nil {
		if e.log != nil {
			e.log.PersistenceError(key, err)
		}
		return meta, nil
	}
	return meta, transcript
}

func (e *Engine) reject(ctx context.Context, key, message, userName, reason string, meta domain.Metadata) TurnResult {
	text := rejectionMessage(userName)
	newMeta := domain.Metadata{
		Stage:              domain.StageRejection,
		Lead:               meta.Lead,
		ConversationLength: meta.ConversationLength + 2,
		UserName:           userName,
		RejectionReason:    reason,
	}

	e.persistTurn(ctx, key, message, stages.Outcome{Stage: domain.StageRejection, Text: text, Lead: meta.Lead}, newMeta)

	return TurnResult{
		ConversationKey: key,
		Stage:           domain.StageRejection,
		Text:            text,
		Lead:            meta.Lead,
	}
}

// persistTurn appends the user utterance and the assistant reply, both
// stamped with the new snapshot. Failures are logged and swallowed;
// the computed reply still goes back to the user.
func (e *Engine) persistTurn(ctx context.Context, key, message string, out stages.Outcome, meta domain.Metadata) {
	now := time.Now().UTC()

	userMsg := domain.Message{
		ID:          uuid.NewString(),
		SortKey:     sortKey(now, 0),
		Role:        domain.RoleUser,
		ContentType: domain.ContentText,
		Content:     domain.Content{Text: message},
		Metadata:    meta,
		CreatedAt:   now,
	}

	assistantMsg := domain.Message{
		ID:        uuid.NewString(),
		SortKey:   sortKey(now, 1),
		Role:      domain.RoleAssistant,
		Metadata:  meta,
		CreatedAt: now,
	}
	if len(out.Properties) > 0 {
		assistantMsg.ContentType = domain.ContentPropertyList
		assistantMsg.Content = domain.Content{Text: out.Text, Properties: out.Properties}
	} else {
		assistantMsg.ContentType = domain.ContentText
		assistantMsg.Content = domain.Content{Text: out.Text}
	}

	if err := e.store.Append(ctx, key, userMsg, assistantMsg); err != nil && e.log != nil {
		e.log.PersistenceError(key, err)
	}
}

func sortKey(t time.Time, seq int) string {
	return fmt.Sprintf("MSG#%s#%d", t.Format(time.RFC3339Nano), seq)
}

// userTranscript joins every user utterance so far, current message
// last, one per line. Assistant turns are excluded; extraction only
// trusts what the user said.
func userTranscript(history []domain.Message, current string) string {
	var lines []string
	for _, m := range history {
		if m.Role == domain.RoleUser {
			if text := m.TranscriptText(); text != "" {
				lines = append(lines, text)
			}
		}
	}
	lines = append(lines, current)
	return strings.Join(lines, "\n")
}

func rejectionMessage(userName string) string {
	name := ""
	if userName != "" {
		name = " " + userName
	}
	return fmt.Sprintf("Hola%s, soy un asistente especializado en bienes raíces. ¿Te gustaría que te ayude a encontrar una propiedad?", name)
}

var agentNames = []string{"Carlos", "Sofía", "Andrés", "Valentina", "Mateo", "Isabella"}

var greetingTemplates = []string{
	"¡Hola! Soy %s, tu agente inmobiliario virtual. Me da mucho gusto conocerte",
	"¡Qué tal! Mi nombre es %s y seré tu asistente para encontrar la propiedad perfecta",
	"¡Hola! Soy %s, especialista en bienes raíces. Estoy aquí para ayudarte",
	"¡Bienvenido! Me llamo %s y me especializo en ayudar a encontrar propiedades ideales",
}

var personalGreetingTemplates = []string{
	"¡Hola %[1]s! Soy %[2]s, tu agente inmobiliario virtual. Es un placer conocerte",
	"¡Qué tal %[1]s! Mi nombre es %[2]s y seré tu asistente personal para encontrar tu propiedad ideal",
	"¡Hola %[1]s! Soy %[2]s, especialista en bienes raíces. Estoy aquí para ayudarte en todo lo que necesites",
	"¡Bienvenido %[1]s! Me llamo %[2]s y me especializo en conectar personas con sus hogares perfectos",
}

var genericGreetingPrefixes = []string{"¡Hola! ", "Hola, ", "Hola ", "¡Hola, "}

var introQuestions = []string{
	"¿Qué tipo de propiedad estás buscando?",
	"¿En qué zona te gustaría vivir?",
	"¿Estás buscando para comprar o alquilar?",
	"Cuéntame, ¿qué características debe tener tu propiedad ideal?",
}

// greet prefixes the first reply of a conversation with a persona
// introduction from a randomly chosen agent name. A generic greeting
// already at the start of the reply is dropped so the user is not
// greeted twice.
func greet(userName, text string) string {
	agent := agentNames[rand.Intn(len(agentNames))]

	var greeting string
	if userName != "" {
		greeting = fmt.Sprintf(personalGreetingTemplates[rand.Intn(len(personalGreetingTemplates))], userName, agent)
	} else {
		greeting = fmt.Sprintf(greetingTemplates[rand.Intn(len(greetingTemplates))], agent)
	}

	if text == "" {
		return greeting + ". " + introQuestions[rand.Intn(len(introQuestions))]
	}
	for _, prefix := range genericGreetingPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			break
		}
	}
	return greeting + ". " + text
}
