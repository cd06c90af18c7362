package domain

import (
	"reflect"
	"testing"
)

func intPtr(n int) *int { return &n }

func TestMergePreservesExistingFields(t *testing.T) {
	stored := Lead{
		Location:      "Lima",
		PropertyTypes: []string{"departamento"},
	}

	merged := stored.Merge(Lead{Budget: intPtr(1500)})

	if merged.Location != "Lima" {
		t.Errorf("location lost on merge: got %q", merged.Location)
	}
	if !reflect.DeepEqual(merged.PropertyTypes, []string{"departamento"}) {
		t.Errorf("property types lost on merge: got %v", merged.PropertyTypes)
	}
	if merged.Budget == nil || *merged.Budget != 1500 {
		t.Errorf("budget not merged: got %v", merged.Budget)
	}
}

func TestMergeEmptyIncomingIsNoop(t *testing.T) {
	stored := Lead{
		Location:      "Arequipa",
		PropertyTypes: []string{"casa"},
		Transaction:   TransactionBuy,
		Budget:        intPtr(90000),
	}

	merged := stored.Merge(Lead{})

	if !reflect.DeepEqual(merged, stored) {
		t.Errorf("empty merge changed lead: got %+v want %+v", merged, stored)
	}
}

func TestMergeOverwritesWithNewValues(t *testing.T) {
	stored := Lead{Location: "Lima", Transaction: TransactionRent}

	merged := stored.Merge(Lead{Location: "Miraflores"})

	if merged.Location != "Miraflores" {
		t.Errorf("location not overwritten: got %q", merged.Location)
	}
	if merged.Transaction != TransactionRent {
		t.Errorf("unrelated field changed: got %q", merged.Transaction)
	}
}

func TestMergeFieldTouchesOnlyTarget(t *testing.T) {
	stored := Lead{
		Location:      "Lima",
		PropertyTypes: []string{"departamento"},
		Transaction:   TransactionRent,
		Budget:        intPtr(1200),
	}
	incoming := Lead{
		Location: "Cusco",
		Budget:   intPtr(2000),
	}

	merged := stored.MergeField(FieldBudget, incoming)

	if merged.Budget == nil || *merged.Budget != 2000 {
		t.Errorf("target field not updated: got %v", merged.Budget)
	}
	if merged.Location != "Lima" {
		t.Errorf("non-target field overwritten: got %q", merged.Location)
	}
}

func TestMergeFieldIgnoresEmptyTargetValue(t *testing.T) {
	stored := Lead{Location: "Lima"}

	merged := stored.MergeField(FieldLocation, Lead{})

	if merged.Location != "Lima" {
		t.Errorf("empty target value erased field: got %q", merged.Location)
	}
}

func TestComplete(t *testing.T) {
	cases := []struct {
		name string
		lead Lead
		want bool
	}{
		{"empty", Lead{}, false},
		{"location only", Lead{Location: "Lima"}, false},
		{
			"missing transaction",
			Lead{Location: "Lima", PropertyTypes: []string{"departamento"}},
			false,
		},
		{
			"all required",
			Lead{Location: "Lima", PropertyTypes: []string{"departamento"}, Transaction: TransactionRent},
			true,
		},
		{
			"empty property type list",
			Lead{Location: "Lima", PropertyTypes: []string{}, Transaction: TransactionRent},
			false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.lead.Complete(); got != tc.want {
				t.Errorf("Complete() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMissingFields(t *testing.T) {
	lead := Lead{PropertyTypes: []string{"casa"}}
	got := lead.MissingFields()
	want := []string{FieldLocation, FieldTransaction}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MissingFields() = %v, want %v", got, want)
	}
}

func TestApplyInference(t *testing.T) {
	cases := []struct {
		name            string
		lead            Lead
		wantTypes       []string
		wantTransaction string
	}{
		{
			name:            "rooms imply apartment",
			lead:            Lead{Bedrooms: intPtr(3)},
			wantTypes:       []string{"departamento"},
			wantTransaction: "",
		},
		{
			name:            "low budget implies rent",
			lead:            Lead{Budget: intPtr(1500)},
			wantTypes:       nil,
			wantTransaction: TransactionRent,
		},
		{
			name:            "high budget implies purchase",
			lead:            Lead{Budget: intPtr(120000)},
			wantTypes:       nil,
			wantTransaction: TransactionBuy,
		},
		{
			name:            "mid budget stays unknown",
			lead:            Lead{Budget: intPtr(10000)},
			wantTypes:       nil,
			wantTransaction: "",
		},
		{
			name:            "explicit values untouched",
			lead:            Lead{PropertyTypes: []string{"casa"}, Transaction: TransactionBuy, Budget: intPtr(1000)},
			wantTypes:       []string{"casa"},
			wantTransaction: TransactionBuy,
		},
		{
			name:            "location plus budget imply apartment",
			lead:            Lead{Location: "Lima", Budget: intPtr(1500)},
			wantTypes:       []string{"departamento"},
			wantTransaction: TransactionRent,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.lead.ApplyInference()
			if !reflect.DeepEqual(got.PropertyTypes, tc.wantTypes) {
				t.Errorf("PropertyTypes = %v, want %v", got.PropertyTypes, tc.wantTypes)
			}
			if got.Transaction != tc.wantTransaction {
				t.Errorf("Transaction = %q, want %q", got.Transaction, tc.wantTransaction)
			}
		})
	}
}

func TestDescription(t *testing.T) {
	lead := Lead{
		Location:      "Lima, Los Olivos",
		PropertyTypes: []string{"departamento"},
		Transaction:   TransactionRent,
		Bedrooms:      intPtr(3),
	}

	got := lead.Description()
	want := "ubicacion: Lima, Los Olivos, tipo: departamento, transaccion: alquiler, dormitorios: 3"
	if got != want {
		t.Errorf("Description() = %q, want %q", got, want)
	}
}
