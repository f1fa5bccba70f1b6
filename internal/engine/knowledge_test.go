package engine

import (
	"context"
	"errors"
	"testing"
)

// mockSearcher Mock 文章搜索
type mockSearcher struct {
	hits []*ArticleHit
	err  error
}

func (m *mockSearcher) SearchPublished(ctx context.Context, tenantID, query string, limit int) ([]*ArticleHit, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hits, nil
}

func TestKnowledgeMatch(t *testing.T) {
	tests := []struct {
		name     string
		searcher *mockSearcher
		wantOK   bool
		intent   string
		conf     float64
	}{
		{
			name:     "hit maps score to confidence",
			searcher: &mockSearcher{hits: []*ArticleHit{{Intent: "leave.policy", Score: 6}}},
			wantOK:   true,
			intent:   "leave.policy",
			conf:     0.6,
		},
		{
			name:     "high score capped",
			searcher: &mockSearcher{hits: []*ArticleHit{{Intent: "payroll.schedule", Score: 42}}},
			wantOK:   true,
			intent:   "payroll.schedule",
			conf:     KnowledgeConfidenceCap,
		},
		{
			name:     "no hits",
			searcher: &mockSearcher{},
			wantOK:   false,
		},
		{
			name:     "hit without intent skipped",
			searcher: &mockSearcher{hits: []*ArticleHit{{Title: "orphan", Score: 9}}},
			wantOK:   false,
		},
		{
			name:     "search error swallowed",
			searcher: &mockSearcher{err: errors.New("es down")},
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewKnowledgeMatcher(tt.searcher)
			got, ok := m.Match(context.Background(), "tenant-a", "what is the leave policy")
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Name != tt.intent {
				t.Errorf("intent = %q, want %q", got.Name, tt.intent)
			}
			if diff := got.Confidence - tt.conf; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("confidence = %v, want %v", got.Confidence, tt.conf)
			}
			if got.Source != "knowledge" {
				t.Errorf("source = %q, want knowledge", got.Source)
			}
		})
	}
}

func TestKnowledgeMatchNilSearcher(t *testing.T) {
	m := NewKnowledgeMatcher(nil)
	if _, ok := m.Match(context.Background(), "tenant-a", "anything"); ok {
		t.Error("nil searcher should not contribute a candidate")
	}
}
