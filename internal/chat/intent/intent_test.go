package intent

import (
	"context"
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		text string
		want Intent
	}{
		{"sí", Affirmative},
		{"Si, claro", Affirmative},
		{"¡Dale!", Affirmative},
		{"ok", Affirmative},
		{"no", Negative},
		{"No, cancela eso", Negative},
		{"negativo", Negative},
		{"tal vez mañana", Unknown},
		{"", Unknown},
		{"quiero verlas", Unknown},
	}

	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			if got := Classify(tc.text); got != tc.want {
				t.Errorf("Classify(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

type stubEscalator struct {
	verdict bool
	err     error
	called  bool
}

func (s *stubEscalator) IsInDomain(ctx context.Context, text string) (bool, error) {
	s.called = true
	return s.verdict, s.err
}

func TestValidateKeywordPaths(t *testing.T) {
	esc := &stubEscalator{}
	v := NewValidator(esc, nil)

	cases := []struct {
		name       string
		text       string
		wantValid  bool
		wantReason string
	}{
		{"too short", "A", false, ReasonTooShort},
		{"real estate keywords", "busco departamento en Lima", true, ReasonKeywordMatch},
		{"transaction keyword", "para alquiler", true, ReasonKeywordMatch},
		{"rooms and budget", "3 dormitorios 2 baños, presupuesto 1500 soles", true, ReasonKeywordMatch},
		{"off topic", "¿Cuál es la capital de Francia?", false, ReasonOffTopic},
		{"test pattern", "esto es un testing rapido", false, ReasonOffTopic},
		{"greeting", "Hola", true, ReasonKeywordMatch},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			esc.called = false
			valid, reason := v.Validate(context.Background(), tc.text)
			if valid != tc.wantValid || reason != tc.wantReason {
				t.Errorf("Validate(%q) = (%v, %q), want (%v, %q)", tc.text, valid, reason, tc.wantValid, tc.wantReason)
			}
			if esc.called {
				t.Errorf("escalator called for keyword-decidable input %q", tc.text)
			}
		})
	}
}

func TestValidateEscalation(t *testing.T) {
	ambiguous := "me interesa conocer opciones por esa avenida"

	accepted := NewValidator(&stubEscalator{verdict: true}, nil)
	if valid, reason := accepted.Validate(context.Background(), ambiguous); !valid || reason != ReasonModelAccepted {
		t.Errorf("accepting escalator: got (%v, %q)", valid, reason)
	}

	rejected := NewValidator(&stubEscalator{verdict: false}, nil)
	if valid, reason := rejected.Validate(context.Background(), ambiguous); valid || reason != ReasonModelRejected {
		t.Errorf("rejecting escalator: got (%v, %q)", valid, reason)
	}
}

func TestValidateFailsClosed(t *testing.T) {
	ambiguous := "me interesa conocer opciones por esa avenida"

	failing := NewValidator(&stubEscalator{err: errors.New("timeout")}, nil)
	if valid, reason := failing.Validate(context.Background(), ambiguous); valid || reason != ReasonModelUnreached {
		t.Errorf("failing escalator: got (%v, %q)", valid, reason)
	}

	missing := NewValidator(nil, nil)
	if valid, reason := missing.Validate(context.Background(), ambiguous); valid || reason != ReasonModelUnreached {
		t.Errorf("nil escalator: got (%v, %q)", valid, reason)
	}
}
