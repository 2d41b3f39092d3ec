package engage

import (
	"reflect"
	"testing"
)

func TestDeriveInterestsFromEvent(t *testing.T) {
	got := DeriveInterests(nil, "AI Conference", "Explore the future of AI")
	// "ai", "the", "of" are too short or stop words.
	want := []string{"conference", "explore", "future"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDeriveInterestsUnionsExisting(t *testing.T) {
	got := DeriveInterests([]string{"golang", "Future"}, "Data Summit", "")
	want := []string{"data", "future", "golang", "summit"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDeriveInterestsStableOrdering(t *testing.T) {
	a := DeriveInterests([]string{"zeta", "alpha"}, "Kubernetes Deep Dive", "scaling workloads")
	b := DeriveInterests([]string{"alpha", "zeta"}, "Deep Dive Kubernetes", "workloads scaling")
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("ordering not stable: %v vs %v", a, b)
	}
}

func TestDeriveInterestsDropsShortAndStopTokens(t *testing.T) {
	got := DeriveInterests(nil, "The Go Event", "will be all about you and me")
	if len(got) != 0 {
		t.Fatalf("expected no interests, got %v", got)
	}
}

func TestJoinInterests(t *testing.T) {
	if got := JoinInterests([]string{"a1b", "c2d"}); got != "a1b,c2d" {
		t.Fatalf("unexpected join %q", got)
	}
	if got := JoinInterests(nil); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
