package bootorder

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		name  string
		order Order
		want  Order
	}{
		{
			name:  "shell first",
			order: Order{"X:Shell", "Y:PXE", "Z:Disk", "W:Other"},
			want:  Order{"Y:PXE", "Z:Disk", "X:Shell", "W:Other"},
		},
		{
			name:  "unclassified entries keep relative order",
			order: Order{"U1", "C:Shell", "U2", "B:Disk", "U3", "A:PXE", "U4"},
			want:  Order{"A:PXE", "B:Disk", "C:Shell", "U1", "U2", "U3", "U4"},
		},
		{
			name:  "repeated unclassified descriptors are kept",
			order: Order{"dup", "B:Disk", "dup", "A:PXE", "C:Shell"},
			want:  Order{"A:PXE", "B:Disk", "C:Shell", "dup", "dup"},
		},
		{
			name:  "already compliant",
			order: Order{"A:PXE", "U1", "B:Disk", "C:Shell"},
			want:  Order{"A:PXE", "U1", "B:Disk", "C:Shell"},
		},
	}

	rules := exampleRules(t)
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			positions, err := Classify(tt.order, rules)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}

			got := Plan(tt.order, positions)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Plan() diff = %s", diff)
			}
		})
	}
}

func TestPlanProperties(t *testing.T) {
	rules := exampleRules(t)
	base := Order{"A:PXE", "B:Disk", "C:Shell", "U1", "U2", "U1"}

	for _, order := range permutations(base) {
		positions, err := Classify(order, rules)
		if err != nil {
			t.Fatalf("unexpected error for %v: %s", order, err)
		}

		planned := Plan(order, positions)

		replanned, err := Classify(planned, rules)
		if err != nil {
			t.Fatalf("planned order %v does not classify: %s", planned, err)
		}
		if !IsOrdered(replanned) {
			t.Errorf("planned order %v is not ordered", planned)
		}

		if diff := cmp.Diff(sorted(order), sorted(planned)); diff != "" {
			t.Errorf("plan of %v changed the entry multiset: %s", order, diff)
		}

		if IsOrdered(positions) && !planned.Equal(order) {
			t.Errorf("compliant order %v was rearranged to %v", order, planned)
		}
	}
}

func TestPlanDoesNotModifyInput(t *testing.T) {
	order := Order{"X:Shell", "Y:PXE", "Z:Disk", "W:Other"}
	before := order.Clone()

	positions, err := Classify(order, exampleRules(t))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	_ = Plan(order, positions)

	if !order.Equal(before) {
		t.Errorf("input order changed to %v", order)
	}
}

func TestDiff(t *testing.T) {
	current := Order{"X:Shell", "Y:PXE", "Z:Disk", "W:Other"}
	planned := Order{"Y:PXE", "Z:Disk", "X:Shell", "W:Other"}

	var got []string
	for _, line := range Diff(current, planned) {
		got = append(got, line.String())
	}

	want := []string{
		"X:Shell ===> Y:PXE",
		"Y:PXE ===> Z:Disk",
		"Z:Disk ===> X:Shell",
		"W:Other",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Diff() diff = %s", diff)
	}
}

func sorted(o Order) []string {
	s := o.Strings()
	sort.Strings(s)
	return s
}

func permutations(o Order) []Order {
	if len(o) <= 1 {
		return []Order{o.Clone()}
	}

	var res []Order
	for i := range o {
		rest := make(Order, 0, len(o)-1)
		rest = append(rest, o[:i]...)
		rest = append(rest, o[i+1:]...)
		for _, p := range permutations(rest) {
			res = append(res, append(Order{o[i]}, p...))
		}
	}
	return res
}
