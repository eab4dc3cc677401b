package task

import "testing"

func TestRegistryInstallAndLookup(t *testing.T) {
	r := NewRegistry()
	decl := &Declaration{Label: "RULE objs/a.o", Targets: []string{"objs/a.o"}}
	if err := r.Install(decl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok := r.Lookup("objs/a.o")
	if !ok || got != decl {
		t.Fatalf("expected to find installed declaration")
	}

	if _, ok := r.Lookup("objs/b.o"); ok {
		t.Fatalf("did not expect to find unregistered target")
	}
}

func TestRegistryRejectsDuplicateTarget(t *testing.T) {
	r := NewRegistry()
	if err := r.Install(&Declaration{Label: "first", Targets: []string{"objs/a.o"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := r.Install(&Declaration{Label: "second", Targets: []string{"objs/a.o"}})
	if err == nil {
		t.Fatalf("expected an error installing a second owner for the same target")
	}
}

func TestRegistryManyTargetsOneTask(t *testing.T) {
	r := NewRegistry()
	decl := &Declaration{Label: "RULE multi", Targets: []string{":test", "objs/a.o"}}
	if err := r.Install(decl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, _ := r.Lookup(":test")
	b, _ := r.Lookup("objs/a.o")
	if a != decl || b != decl {
		t.Fatalf("expected both targets to resolve to the same declaration")
	}
}

func TestRegistryRunStatePerID(t *testing.T) {
	r := NewRegistry()
	d1 := &Declaration{Label: "one", Targets: []string{"objs/a.o"}}
	d2 := &Declaration{Label: "two", Targets: []string{"objs/b.o"}}
	if err := r.Install(d1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Install(d2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.RunState(d1.ID) == r.RunState(d2.ID) {
		t.Fatalf("expected distinct run-states per declaration")
	}
}
