package ecs

import (
	"errors"
	"testing"

	"github.com/milk9111/platformer/ecs/component"
)

func TestSparseWorldEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, CreateEntity(w))
			}
			if len(Entities(w)) != c.create {
				t.Fatalf("expected %d entities, got %d", c.create, len(Entities(w)))
			}
			if c.destroyIndex >= 0 {
				if !DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return true for alive entity")
				}
				if IsAlive(w, ents[c.destroyIndex]) {
					t.Fatalf("entity should not be alive after destruction")
				}
			}
		})
	}
}

func toSet(ents []Entity) map[Entity]struct{} {
	m := make(map[Entity]struct{}, len(ents))
	for _, e := range ents {
		m[e] = struct{}{}
	}
	return m
}

func intPtr(i int) *int {
	return &i
}

func stringPtr(s string) *string {
	return &s
}

func float64Ptr(f float64) *float64 {
	return &f
}

func TestSparseWorldComponentsAndQueries(t *testing.T) {
	t.Run("component_table", func(t *testing.T) {
		w := NewWorld()

		h1 := component.NewComponent[int]()
		h2 := component.NewComponent[string]()
		h3 := component.NewComponent[float64]()

		e1 := CreateEntity(w)
		e2 := CreateEntity(w)

		tests := []struct {
			name     string
			setup    func() error
			check    func(t *testing.T)
			teardown func() bool
		}{
			{
				name:  "add_int_to_e1",
				setup: func() error { return Add(w, e1, h1, intPtr(10)) },
				check: func(t *testing.T) {
					v, ok := Get(w, e1, h1)
					if !ok || *v != 10 {
						t.Fatalf("expected 10, got %v ok=%v", v, ok)
					}
				},
				teardown: func() bool { return Remove(w, e1, h1) },
			},
			{
				name: "add_str_to_e1_and_e2",
				setup: func() error {
					if err := Add(w, e1, h2, stringPtr("a")); err != nil {
						return err
					}
					return Add(w, e2, h2, stringPtr("b"))
				},
				check: func(t *testing.T) {
					if !Has(w, e1, h2) || !Has(w, e2, h2) {
						t.Fatalf("expected both entities to have string component")
					}
				},
				teardown: func() bool { return Remove(w, e1, h2) },
			},
			{
				name:  "add_float_and_remove",
				setup: func() error { return Add(w, e1, h3, float64Ptr(1.23)) },
				check: func(t *testing.T) {
					if _, ok := Get(w, e1, h3); !ok {
						t.Fatalf("expected float present")
					}
				},
				teardown: func() bool { return Remove(w, e1, h3) },
			},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				if err := tc.setup(); err != nil {
					t.Fatalf("setup failed: %v", err)
				}
				tc.check(t)
				if !tc.teardown() {
					t.Fatalf("teardown failed for %s", tc.name)
				}
			})
		}
	})
}

func TestForEach(t *testing.T) {
	t.Run("basic", func(t *testing.T) {
		w := NewWorld()
		h := component.NewComponent[int]()

		e1 := CreateEntity(w)
		e2 := CreateEntity(w)
		e3 := CreateEntity(w)

		if err := Add(w, e1, h, intPtr(1)); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if err := Add(w, e3, h, intPtr(3)); err != nil {
			t.Fatalf("add failed: %v", err)
		}

		var ents []Entity
		ForEach(w, h.Kind(), func(e Entity, _ *int) { ents = append(ents, e) })
		set := toSet(ents)

		if _, ok := set[e1]; !ok {
			t.Fatalf("expected e1 in ForEach result")
		}
		if _, ok := set[e3]; !ok {
			t.Fatalf("expected e3 in ForEach result")
		}
		if _, ok := set[e2]; ok {
			t.Fatalf("did not expect e2 in ForEach result")
		}
	})
}

// TestForEachIntersections covers ForEach3 and ForEach4 over one fixture:
// e1 has a, e2 has a b c d, e3 has a b c, e4 has c d, e5 has everything but
// is destroyed before the query.
func TestForEachIntersections(t *testing.T) {
	w := NewWorld()
	ka := component.NewComponent[int]()
	kb := component.NewComponent[int]()
	kc := component.NewComponent[int]()
	kd := component.NewComponent[int]()
	unused := component.NewComponent[int]()

	layout := [][]component.ComponentHandle[int]{
		{ka},
		{ka, kb, kc, kd},
		{ka, kb, kc},
		{kc, kd},
		{ka, kb, kc, kd},
	}
	ents := make([]Entity, len(layout))
	for i, handles := range layout {
		ents[i] = CreateEntity(w)
		for j, h := range handles {
			if err := Add(w, ents[i], h, intPtr(10*i+j)); err != nil {
				t.Fatal(err)
			}
		}
	}
	if !DestroyEntity(w, ents[4]) {
		t.Fatal("failed to destroy entity")
	}

	collect3 := func(a, b, c component.ComponentHandle[int]) []Entity {
		var res []Entity
		ForEach3(w, a.Kind(), b.Kind(), c.Kind(), func(e Entity, _, _, _ *int) { res = append(res, e) })
		return res
	}
	collect4 := func(a, b, c, d component.ComponentHandle[int]) []Entity {
		var res []Entity
		ForEach4(w, a.Kind(), b.Kind(), c.Kind(), d.Kind(), func(e Entity, _, _, _, _ *int) { res = append(res, e) })
		return res
	}

	cases := []struct {
		name string
		got  []Entity
		want []Entity
	}{
		{"three_of_four", collect3(ka, kb, kc), []Entity{ents[1], ents[2]}},
		{"three_order_independent", collect3(kc, kb, ka), []Entity{ents[1], ents[2]}},
		{"three_tail", collect3(kb, kc, kd), []Entity{ents[1]}},
		{"three_missing_store", collect3(ka, kb, unused), nil},
		{"four", collect4(ka, kb, kc, kd), []Entity{ents[1]}},
		{"four_missing_store", collect4(ka, kb, kc, unused), nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if len(tc.got) != len(tc.want) {
				t.Fatalf("got %v, want %v", tc.got, tc.want)
			}
			seen := make(map[Entity]bool, len(tc.got))
			for _, e := range tc.got {
				seen[e] = true
			}
			for _, e := range tc.want {
				if !seen[e] {
					t.Fatalf("missing %v in %v", e, tc.got)
				}
			}
		})
	}
}

func TestForEach4PassesComponents(t *testing.T) {
	w := NewWorld()
	e := CreateEntity(w)
	ka := component.NewComponent[int]()
	kb := component.NewComponent[string]()
	kc := component.NewComponent[float64]()
	kd := component.NewComponent[bool]()

	a, b, c, d := 7, "seven", 7.5, true
	if err := Add(w, e, ka, &a); err != nil {
		t.Fatal(err)
	}
	if err := Add(w, e, kb, &b); err != nil {
		t.Fatal(err)
	}
	if err := Add(w, e, kc, &c); err != nil {
		t.Fatal(err)
	}
	if err := Add(w, e, kd, &d); err != nil {
		t.Fatal(err)
	}

	calls := 0
	ForEach4(w, ka.Kind(), kb.Kind(), kc.Kind(), kd.Kind(), func(got Entity, pa *int, pb *string, pc *float64, pd *bool) {
		calls++
		if got != e || *pa != 7 || *pb != "seven" || *pc != 7.5 || !*pd {
			t.Fatalf("unexpected values %v %d %q %v %v", got, *pa, *pb, *pc, *pd)
		}
		*pa = 8
	})
	if calls != 1 {
		t.Fatalf("expected one call, got %d", calls)
	}
	if got, _ := Get(w, e, ka); *got != 8 {
		t.Fatalf("expected write through pointer, got %d", *got)
	}
}

func TestAddRejectsDeadAndNil(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()
	e := CreateEntity(w)

	if err := Add[int](w, e, h, nil); !errors.Is(err, ErrNilComponent) {
		t.Fatalf("expected ErrNilComponent, got %v", err)
	}
	DestroyEntity(w, e)
	if err := Add(w, e, h, intPtr(1)); !errors.Is(err, ErrEntityNotAlive) {
		t.Fatalf("expected ErrEntityNotAlive, got %v", err)
	}
	if DestroyEntity(w, e) {
		t.Fatalf("destroying a dead entity should report false")
	}
}

func TestRecycledSlotDoesNotInheritComponents(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()

	old := CreateEntity(w)
	if err := Add(w, old, h, intPtr(1)); err != nil {
		t.Fatal(err)
	}
	DestroyEntity(w, old)

	fresh := CreateEntity(w)
	if fresh.id() != old.id() {
		t.Fatalf("expected slot reuse, got %v after %v", fresh, old)
	}
	if fresh == old {
		t.Fatalf("expected a new generation")
	}
	if Has(w, fresh, h) {
		t.Fatalf("recycled entity inherited a component")
	}
	if _, ok := Get(w, old, h); ok {
		t.Fatalf("stale handle still resolves")
	}
}

func TestQueryAndFirst(t *testing.T) {
	w := NewWorld()
	hi := component.NewComponent[int]()
	hs := component.NewComponent[string]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)
	if err := Add(w, e1, hi, intPtr(1)); err != nil {
		t.Fatal(err)
	}
	if err := Add(w, e2, hi, intPtr(2)); err != nil {
		t.Fatal(err)
	}
	if err := Add(w, e2, hs, stringPtr("b")); err != nil {
		t.Fatal(err)
	}

	got := w.Query(hi.Kind(), hs.Kind())
	if len(got) != 1 || got[0] != e2 {
		t.Fatalf("expected [e2], got %v", got)
	}
	if e, ok := w.First(hs.Kind()); !ok || e != e2 {
		t.Fatalf("expected e2 first, got %v ok=%v", e, ok)
	}
	if _, ok := First(w, component.NewComponent[float64]().Kind()); ok {
		t.Fatalf("expected no entity for an unused kind")
	}

	var seen []Entity
	ForEach2(w, hi.Kind(), hs.Kind(), func(e Entity, v *int, s *string) {
		*v += 10
		seen = append(seen, e)
	})
	if len(seen) != 1 {
		t.Fatalf("expected one match, got %v", seen)
	}
	if v, _ := Get(w, e2, hi); *v != 12 {
		t.Fatalf("expected in-place mutation, got %d", *v)
	}
}

func TestForEachAllowsRemovalDuringIteration(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()
	for i := 0; i < 5; i++ {
		if err := Add(w, CreateEntity(w), h, intPtr(i)); err != nil {
			t.Fatal(err)
		}
	}

	visited := 0
	ForEach(w, h.Kind(), func(e Entity, _ *int) {
		visited++
		DestroyEntity(w, e)
	})
	if visited != 5 {
		t.Fatalf("expected 5 visits, got %d", visited)
	}
	if n := len(Entities(w)); n != 0 {
		t.Fatalf("expected no live entities, got %d", n)
	}
}
