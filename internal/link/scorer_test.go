package link

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/memweave/memweave/internal/item"
)

func TestDirectEdge_EitherDirection(t *testing.T) {
	s := NewScorer(Options{})

	a := item.Item{ID: "a", RelatedIDs: []string{"b"}}
	b := item.Item{ID: "b"}

	e := s.DirectEdge(a, b)
	if e == nil {
		t.Fatal("expected direct edge")
	}
	if e.Type != EdgeDirect || e.Weight != 3 {
		t.Errorf("got type=%s weight=%f, want direct/3", e.Type, e.Weight)
	}

	// Declared on the target side instead.
	if s.DirectEdge(b, a) == nil {
		t.Error("expected direct edge when target declares source")
	}

	if s.DirectEdge(item.Item{ID: "x"}, item.Item{ID: "y"}) != nil {
		t.Error("expected no edge without declared relation")
	}
}

func TestTagEdge_WeightAndLabel(t *testing.T) {
	s := NewScorer(Options{})

	a := item.Item{ID: "a", Tags: []string{"react", "bug", "frontend"}}
	b := item.Item{ID: "b", Tags: []string{"bug", "react", "backend"}}

	e := s.TagEdge(a, b)
	if e == nil {
		t.Fatal("expected tag edge")
	}
	if e.Weight != 2 {
		t.Errorf("weight: got %f, want 2", e.Weight)
	}
	// Label is capped at the first two shared tags, sorted.
	if !reflect.DeepEqual(e.MatchedTerms, []string{"bug", "react"}) {
		t.Errorf("matched terms: got %v", e.MatchedTerms)
	}
}

func TestTagEdge_Symmetric(t *testing.T) {
	s := NewScorer(Options{})

	a := item.Item{ID: "a", Tags: []string{"react", "bug", "perf"}}
	b := item.Item{ID: "b", Tags: []string{"perf", "bug"}}

	ab := s.TagEdge(a, b)
	ba := s.TagEdge(b, a)
	if ab == nil || ba == nil {
		t.Fatal("expected edges in both directions")
	}
	if ab.Weight != ba.Weight {
		t.Errorf("weights differ: %f vs %f", ab.Weight, ba.Weight)
	}
	if !reflect.DeepEqual(ab.MatchedTerms, ba.MatchedTerms) {
		t.Errorf("shared tags differ: %v vs %v", ab.MatchedTerms, ba.MatchedTerms)
	}
}

func TestTagEdge_IgnoresBookkeepingTags(t *testing.T) {
	s := NewScorer(Options{})

	a := item.Item{ID: "a", Tags: []string{"title:same"}}
	b := item.Item{ID: "b", Tags: []string{"title:same"}}
	if s.TagEdge(a, b) != nil {
		t.Error("bookkeeping tags must not produce edges")
	}
}

func TestContentEdge_SpecScenario(t *testing.T) {
	s := NewScorer(Options{})

	// Source tokenizes to {alpha, beta, gamma, delta}; target contains
	// three of them: similarity 0.75, weight round(7.5) = 8.
	a := item.Item{ID: "a", Content: "alpha beta gamma delta"}
	b := item.Item{ID: "b", Content: "alpha beta gamma unrelated words here"}

	e := s.ContentEdge(a, b)
	if e == nil {
		t.Fatal("expected content edge")
	}
	if e.Weight != 8 {
		t.Errorf("weight: got %f, want 8", e.Weight)
	}
	if len(e.MatchedTerms) != 3 {
		t.Errorf("matched terms: got %v", e.MatchedTerms)
	}
}

func TestContentEdge_ThresholdIsStrict(t *testing.T) {
	s := NewScorer(Options{})

	// 20 source tokens, 3 shared: similarity is exactly 0.15; below the
	// strict > threshold, so no edge.
	var words []string
	for i := 0; i < 20; i++ {
		words = append(words, fmt.Sprintf("word%02d", i))
	}
	a := item.Item{ID: "a", Content: strings.Join(words, " ")}
	b := item.Item{ID: "b", Content: "word00 word01 word02"}

	if e := s.ContentEdge(a, b); e != nil {
		t.Errorf("similarity of exactly 0.15 must not produce an edge, got weight %f", e.Weight)
	}
}

func TestContentEdge_MinSharedWordsIsStrict(t *testing.T) {
	s := NewScorer(Options{})

	// Similarity 0.5 but only two shared words; below the strict > 2 gate.
	a := item.Item{ID: "a", Content: "alpha beta gamma delta"}
	b := item.Item{ID: "b", Content: "alpha beta nothing else matches"}

	if s.ContentEdge(a, b) != nil {
		t.Error("two shared words must not produce an edge at any similarity")
	}
}

func TestContentEdge_EmptySource(t *testing.T) {
	s := NewScorer(Options{})
	if s.ContentEdge(item.Item{ID: "a"}, item.Item{ID: "b", Content: "alpha beta gamma"}) != nil {
		t.Error("empty source must not produce an edge")
	}
}

func TestTemporalEdge_Window(t *testing.T) {
	s := NewScorer(Options{})
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		delta time.Duration
		want  bool
	}{
		{"90 minutes apart", 90 * time.Minute, true},
		{"just inside window", 2*time.Hour - time.Second, true},
		{"exactly at window", 2 * time.Hour, false},
		{"outside window", 3 * time.Hour, false},
		{"identical timestamps", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := item.Item{ID: "a", CreatedAt: base}
			b := item.Item{ID: "b", CreatedAt: base.Add(tt.delta)}
			got := s.TemporalEdge(a, b) != nil
			if got != tt.want {
				t.Errorf("delta %v: got edge=%v, want %v", tt.delta, got, tt.want)
			}
			// Symmetric in sign.
			got = s.TemporalEdge(b, a) != nil
			if got != tt.want {
				t.Errorf("delta -%v: got edge=%v, want %v", tt.delta, got, tt.want)
			}
		})
	}
}

func TestTemporalEdge_WeightIsBinary(t *testing.T) {
	s := NewScorer(Options{})
	base := time.Now()

	near := s.TemporalEdge(
		item.Item{ID: "a", CreatedAt: base},
		item.Item{ID: "b", CreatedAt: base.Add(time.Minute)},
	)
	far := s.TemporalEdge(
		item.Item{ID: "a", CreatedAt: base},
		item.Item{ID: "b", CreatedAt: base.Add(119 * time.Minute)},
	)
	if near == nil || far == nil {
		t.Fatal("expected edges inside the window")
	}
	if near.Weight != 1 || far.Weight != 1 {
		t.Errorf("temporal weight must be 1 regardless of distance: %f, %f", near.Weight, far.Weight)
	}
}
