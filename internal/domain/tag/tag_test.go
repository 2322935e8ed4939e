package tag

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/askdex/internal/domain"
	"github.com/kailas-cloud/askdex/internal/domain/category"
)

func TestNewGlossaryEntry_Valid(t *testing.T) {
	g, err := NewGlossaryEntry("投資", "投資理財", category.Finance)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Term() != "投資" || g.Tag() != "投資理財" || g.Category() != category.Finance {
		t.Errorf("entry = %+v", g)
	}
}

func TestNewGlossaryEntry_Invalid(t *testing.T) {
	if _, err := NewGlossaryEntry("", "tag", ""); err == nil {
		t.Error("expected error for empty term")
	}
	if _, err := NewGlossaryEntry("term", "", ""); err == nil {
		t.Error("expected error for empty tag")
	}
	_, err := NewGlossaryEntry("term", "tag", "sports")
	if !errors.Is(err, domain.ErrInvalidCategory) {
		t.Errorf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestNewBucket(t *testing.T) {
	b, err := NewBucket("career", []string{"工作", "job"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Tag() != "career" || len(b.Keywords()) != 2 {
		t.Errorf("bucket = %+v", b)
	}

	if _, err := NewBucket("", []string{"x"}); err == nil {
		t.Error("expected error for empty tag")
	}
	if _, err := NewBucket("career", nil); err == nil {
		t.Error("expected error for empty keywords")
	}
}

func TestNewDictionary_DedupesVocabulary(t *testing.T) {
	d := NewDictionary([]string{"a", "", "b", "a", "c", "b"}, nil, nil)
	vocab := d.Vocabulary()
	if len(vocab) != 3 || vocab[0] != "a" || vocab[1] != "b" || vocab[2] != "c" {
		t.Errorf("Vocabulary() = %v", vocab)
	}
}

func TestDictionary_Merge(t *testing.T) {
	base := NewDictionary([]string{"a"}, []GlossaryEntry{{term: "t1", tag: "g1"}}, nil)
	extra := NewDictionary([]string{"b", "a"}, []GlossaryEntry{{term: "t2", tag: "g2"}},
		[]Bucket{{tag: "bk", keywords: []string{"k"}}})

	m := base.Merge(extra)
	if got := m.Vocabulary(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("merged vocabulary = %v", got)
	}
	if got := m.Glossary(); len(got) != 2 || got[0].Term() != "t1" || got[1].Term() != "t2" {
		t.Errorf("merged glossary = %v", got)
	}
	if got := m.Buckets(); len(got) != 1 {
		t.Errorf("merged buckets = %v", got)
	}
	// merge must not mutate the base
	if len(base.Vocabulary()) != 1 {
		t.Error("merge mutated receiver")
	}
}

func TestDictionary_IsEmpty(t *testing.T) {
	if !NewDictionary(nil, nil, nil).IsEmpty() {
		t.Error("expected empty dictionary")
	}
	if DefaultDictionary().IsEmpty() {
		t.Error("default dictionary must not be empty")
	}
}

func TestDefaultDictionary_CoversFinanceScenario(t *testing.T) {
	d := DefaultDictionary()

	hasVocab := func(v string) bool {
		for _, x := range d.Vocabulary() {
			if x == v {
				return true
			}
		}
		return false
	}
	if !hasVocab("投資理財") || !hasVocab("股票分析") {
		t.Error("default vocabulary must carry the core finance tags")
	}

	var invest, stock bool
	for _, g := range d.Glossary() {
		if g.Term() == "投資" && g.Tag() == "投資理財" {
			invest = true
		}
		if g.Term() == "股票" && g.Tag() == "股票分析" {
			stock = true
		}
	}
	if !invest || !stock {
		t.Error("default glossary must map 投資→投資理財 and 股票→股票分析")
	}
}
