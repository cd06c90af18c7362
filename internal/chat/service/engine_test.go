package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"inmochat_backend/internal/chat/domain"
	"inmochat_backend/internal/chat/intent"
	"inmochat_backend/internal/chat/stages"
)

type fakeStore struct {
	messages  map[string][]domain.Message
	turns     map[string]int64
	appendErr error
	fetchErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		messages: make(map[string][]domain.Message),
		turns:    make(map[string]int64),
	}
}

func (f *fakeStore) Append(ctx context.Context, key string, msgs ...domain.Message) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.messages[key] = append(f.messages[key], msgs...)
	return nil
}

func (f *fakeStore) FetchLast(ctx context.Context, key string, n int) ([]domain.Message, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	msgs := f.messages[key]
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	return msgs, nil
}

func (f *fakeStore) BeginTurn(ctx context.Context, key string) (int64, error) {
	f.turns[key]++
	return f.turns[key], nil
}

type allowAllValidator struct{}

func (allowAllValidator) Validate(ctx context.Context, text string) (bool, string) {
	return true, "ok"
}

// scriptedExtractor returns one scripted lead per extraction call.
type scriptedExtractor struct {
	leads []domain.Lead
	calls int
}

func (s *scriptedExtractor) Extract(ctx context.Context, transcript string) (domain.Lead, error) {
	i := s.calls
	if i >= len(s.leads) {
		i = len(s.leads) - 1
	}
	s.calls++
	return s.leads[i], nil
}

func (s *scriptedExtractor) ExtractField(ctx context.Context, field, text string) (domain.Lead, error) {
	return domain.Lead{}, errors.New("not scripted")
}

func (s *scriptedExtractor) Question(ctx context.Context, missing []string, transcript string) (string, error) {
	return "¿Me cuentas más sobre lo que buscas?", nil
}

type fixedSearcher struct{ props []domain.Property }

func (s fixedSearcher) Search(ctx context.Context, lead domain.Lead, limit int) ([]domain.Property, error) {
	return s.props, nil
}

func TestFullSearchScenario(t *testing.T) {
	extractor := &scriptedExtractor{leads: []domain.Lead{
		{},
		{Location: "Lima", PropertyTypes: []string{"departamento"}},
		{Location: "Lima, Los Olivos"},
		{Transaction: domain.TransactionRent, Budget: intPtr(1500)},
	}}
	searcher := fixedSearcher{props: []domain.Property{{ID: "p1", Text: "Departamento 2 dorm, Los Olivos", Score: 0.9}}}
	dispatcher := stages.NewDispatcher(extractor, searcher, nil, 5, nil)
	store := newFakeStore()
	engine := NewEngine(allowAllValidator{}, store, dispatcher, 5, nil)

	turns := []string{
		"Hola",
		"Busco un departamento en Lima",
		"En Los Olivos",
		"Para alquilar, máximo 1500 soles",
		"A",
	}
	wantStages := []domain.Stage{
		domain.StageExtract,
		domain.StageExtract,
		domain.StageExtract,
		domain.StageRecommend,
		domain.StageDisplayProperties,
	}

	var last TurnResult
	for i, msg := range turns {
		res, err := engine.ProcessTurn(context.Background(), TurnInput{UserID: "u1", ConvID: "c1", Message: msg, UserName: "Luis"})
		if err != nil {
			t.Fatalf("turn %d: %v", i+1, err)
		}
		if res.Stage != wantStages[i] {
			t.Fatalf("turn %d stage = %q, want %q", i+1, res.Stage, wantStages[i])
		}
		last = res
	}

	if len(last.Properties) != 1 || last.Properties[0].ID != "p1" {
		t.Errorf("final turn should return the property payload, got %+v", last.Properties)
	}

	lead := last.Lead
	if lead.Location != "Lima, Los Olivos" {
		t.Errorf("lead location = %q", lead.Location)
	}
	if len(lead.PropertyTypes) != 1 || lead.PropertyTypes[0] != "departamento" {
		t.Errorf("lead property types = %v", lead.PropertyTypes)
	}
	if lead.Transaction != domain.TransactionRent {
		t.Errorf("lead transaction = %q", lead.Transaction)
	}
	if lead.Budget == nil || *lead.Budget != 1500 {
		t.Errorf("lead budget = %v", lead.Budget)
	}

	key := domain.ConversationKeyFor("u1", "c1")
	msgs := store.messages[key]
	if len(msgs) != 10 {
		t.Fatalf("stored %d messages, want 10", len(msgs))
	}
	for i, m := range msgs {
		wantLen := (i/2 + 1) * 2
		if m.Metadata.ConversationLength != wantLen {
			t.Errorf("message %d conversation_length = %d, want %d", i, m.Metadata.ConversationLength, wantLen)
		}
	}

	// The display turn persists the listing payload, not just prose.
	displayMsg := msgs[len(msgs)-1]
	if displayMsg.ContentType != domain.ContentPropertyList {
		t.Errorf("final assistant message content type = %q", displayMsg.ContentType)
	}
	if len(displayMsg.Content.Properties) != 1 {
		t.Errorf("final assistant message carries %d properties", len(displayMsg.Content.Properties))
	}
}

func TestOffTopicFirstTurnRejected(t *testing.T) {
	validator := intent.NewValidator(nil, nil)
	dispatcher := &countingDispatcher{}
	store := newFakeStore()
	engine := NewEngine(validator, store, dispatcher, 5, nil)

	res, err := engine.ProcessTurn(context.Background(), TurnInput{UserID: "u1", ConvID: "c1", Message: "¿Cuál es la capital de Francia?"})
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}

	if res.Stage != domain.StageRejection {
		t.Errorf("stage = %q, want rejection", res.Stage)
	}
	if res.Lead.Complete() || res.Lead.Location != "" {
		t.Errorf("rejection must not collect criteria: %+v", res.Lead)
	}
	if dispatcher.calls != 0 {
		t.Errorf("dispatcher called %d times on rejected input", dispatcher.calls)
	}
	if !strings.Contains(res.Text, "bienes raíces") {
		t.Errorf("rejection text = %q", res.Text)
	}

	msgs := store.messages[domain.ConversationKeyFor("u1", "c1")]
	if len(msgs) != 2 {
		t.Fatalf("rejection should still append both messages, got %d", len(msgs))
	}
	if msgs[1].Metadata.Stage != domain.StageRejection || msgs[1].Metadata.RejectionReason == "" {
		t.Errorf("rejection metadata = %+v", msgs[1].Metadata)
	}
	if msgs[1].Metadata.ConversationLength != 2 {
		t.Errorf("conversation_length = %d, want 2", msgs[1].Metadata.ConversationLength)
	}
}

func TestRejectedConversationResumes(t *testing.T) {
	validator := intent.NewValidator(nil, nil)
	extractor := &scriptedExtractor{leads: []domain.Lead{{Location: "Lima"}}}
	dispatcher := stages.NewDispatcher(extractor, fixedSearcher{}, nil, 5, nil)
	store := newFakeStore()
	engine := NewEngine(validator, store, dispatcher, 5, nil)

	in := TurnInput{UserID: "u1", ConvID: "c1", Message: "háblame de deportes"}
	if res, _ := engine.ProcessTurn(context.Background(), in); res.Stage != domain.StageRejection {
		t.Fatalf("setup: expected rejection, got %q", res.Stage)
	}

	in.Message = "busco departamento en Lima"
	res, err := engine.ProcessTurn(context.Background(), in)
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if res.Stage != domain.StageExtract {
		t.Errorf("stage after rejection = %q, want extract", res.Stage)
	}
	if res.Lead.Location != "Lima" {
		t.Errorf("lead = %+v", res.Lead)
	}
}

// countingDispatcher re-enters forever to exercise the pass bound.
type countingDispatcher struct {
	calls int
}

func (c *countingDispatcher) Dispatch(ctx context.Context, st stages.State) stages.Outcome {
	c.calls++
	return stages.Outcome{Stage: domain.StageExtract, Reenter: true, Text: "looping"}
}

func (c *countingDispatcher) HandleConfirmation(ctx context.Context, st stages.State) stages.Outcome {
	c.calls++
	return stages.Outcome{Stage: domain.StageExtract}
}

func TestDispatchLoopBounded(t *testing.T) {
	dispatcher := &countingDispatcher{}
	engine := NewEngine(allowAllValidator{}, newFakeStore(), dispatcher, 5, nil)

	res, err := engine.ProcessTurn(context.Background(), TurnInput{UserID: "u1", ConvID: "c1", Message: "busco casa en Lima"})
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if dispatcher.calls != 5 {
		t.Errorf("dispatcher ran %d passes, want 5", dispatcher.calls)
	}
	if res.Text == "" {
		t.Error("bounded loop must still produce a reply")
	}
}

func TestPersistenceFailureStillAnswers(t *testing.T) {
	extractor := &scriptedExtractor{leads: []domain.Lead{{Location: "Lima"}}}
	dispatcher := stages.NewDispatcher(extractor, fixedSearcher{}, nil, 5, nil)

	store := newFakeStore()
	store.appendErr = errors.New("redis down")
	engine := NewEngine(allowAllValidator{}, store, dispatcher, 5, nil)

	res, err := engine.ProcessTurn(context.Background(), TurnInput{UserID: "u1", ConvID: "c1", Message: "busco departamento en Lima"})
	if err != nil {
		t.Fatalf("persistence failure escalated to the caller: %v", err)
	}
	if res.Text == "" {
		t.Error("expected a reply despite the append failure")
	}

	store.fetchErr = errors.New("redis down")
	res, err = engine.ProcessTurn(context.Background(), TurnInput{UserID: "u1", ConvID: "c1", Message: "busco departamento en Lima"})
	if err != nil || res.Text == "" {
		t.Errorf("load failure should degrade to a fresh conversation, got (%q, %v)", res.Text, err)
	}
}

func TestFirstTurnGreeting(t *testing.T) {
	extractor := &scriptedExtractor{leads: []domain.Lead{{}}}
	dispatcher := stages.NewDispatcher(extractor, fixedSearcher{}, nil, 5, nil)
	store := newFakeStore()
	engine := NewEngine(allowAllValidator{}, store, dispatcher, 5, nil)

	res, err := engine.ProcessTurn(context.Background(), TurnInput{UserID: "u1", ConvID: "c1", Message: "Hola, busco casa"})
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}

	found := false
	for _, name := range agentNames {
		if strings.Contains(res.Text, name) {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("first reply should introduce an agent persona: %q", res.Text)
	}
	if !strings.HasSuffix(res.Text, "¿Me cuentas más sobre lo que buscas?") {
		t.Errorf("greeting should prefix the handler reply: %q", res.Text)
	}

	// Second turn gets no extra greeting.
	res, err = engine.ProcessTurn(context.Background(), TurnInput{UserID: "u1", ConvID: "c1", Message: "un departamento en Lima"})
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if strings.Contains(res.Text, "agente inmobiliario virtual") {
		t.Errorf("second reply should not introduce the persona again: %q", res.Text)
	}
}

func TestGreetStripsGenericPrefix(t *testing.T) {
	text := greet("", "¡Hola! ¿Qué tipo de propiedad buscas?")
	if strings.Count(text, "¡Hola! ¿") != 0 {
		t.Errorf("generic greeting not stripped: %q", text)
	}
	if !strings.HasSuffix(text, "¿Qué tipo de propiedad buscas?") {
		t.Errorf("question lost while greeting: %q", text)
	}
}

func TestUserNameSticky(t *testing.T) {
	extractor := &scriptedExtractor{leads: []domain.Lead{{}}}
	dispatcher := stages.NewDispatcher(extractor, fixedSearcher{}, nil, 5, nil)
	store := newFakeStore()
	engine := NewEngine(allowAllValidator{}, store, dispatcher, 5, nil)

	if _, err := engine.ProcessTurn(context.Background(), TurnInput{UserID: "u1", ConvID: "c1", Message: "hola, busco casa", UserName: "Luis"}); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.ProcessTurn(context.Background(), TurnInput{UserID: "u1", ConvID: "c1", Message: "en Lima por favor"}); err != nil {
		t.Fatal(err)
	}

	msgs := store.messages[domain.ConversationKeyFor("u1", "c1")]
	if got := msgs[len(msgs)-1].Metadata.UserName; got != "Luis" {
		t.Errorf("user name not carried forward: %q", got)
	}
}

func intPtr(n int) *int { return &n }
