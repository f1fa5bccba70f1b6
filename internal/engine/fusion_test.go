package engine

import (
	"context"
	"testing"
)

func TestFuse(t *testing.T) {
	ctx := context.Background()
	base := DetectedIntent{Name: "leave.apply", Confidence: 0.65, Source: "pattern"}

	t.Run("strictly higher replaces", func(t *testing.T) {
		got := Fuse(ctx, base, func(ctx context.Context) (DetectedIntent, bool) {
			return DetectedIntent{Name: "policy.remote_work", Confidence: 0.8, Source: "trainable"}, true
		})
		if got.Name != "policy.remote_work" || got.Confidence != 0.8 {
			t.Errorf("got %+v, want policy.remote_work at 0.8", got)
		}
	})

	t.Run("equal keeps earlier result", func(t *testing.T) {
		got := Fuse(ctx, base, func(ctx context.Context) (DetectedIntent, bool) {
			return DetectedIntent{Name: "other", Confidence: 0.65}, true
		})
		if got.Name != "leave.apply" {
			t.Errorf("tie should keep existing result, got %q", got.Name)
		}
	})

	t.Run("lower is ignored", func(t *testing.T) {
		got := Fuse(ctx, base, func(ctx context.Context) (DetectedIntent, bool) {
			return DetectedIntent{Name: "other", Confidence: 0.3}, true
		})
		if got.Name != "leave.apply" {
			t.Errorf("lower candidate should be ignored, got %q", got.Name)
		}
	})

	t.Run("non-contributing source skipped", func(t *testing.T) {
		got := Fuse(ctx, base, func(ctx context.Context) (DetectedIntent, bool) {
			return DetectedIntent{}, false
		})
		if got.Name != "leave.apply" {
			t.Errorf("got %q, want leave.apply", got.Name)
		}
	})

	t.Run("extracted entities survive replacement", func(t *testing.T) {
		withEntities := base
		withEntities.Entities = map[string]any{"leave_type": "sick leave"}
		got := Fuse(ctx, withEntities, func(ctx context.Context) (DetectedIntent, bool) {
			return DetectedIntent{Name: "policy.sick", Confidence: 0.9, Source: "knowledge"}, true
		})
		if got.Name != "policy.sick" {
			t.Fatalf("got %q, want policy.sick", got.Name)
		}
		if got.Entities["leave_type"] != "sick leave" {
			t.Errorf("entities should survive replacement, got %v", got.Entities)
		}
	})

	t.Run("later sources fold over earlier winners", func(t *testing.T) {
		got := Fuse(ctx, base,
			func(ctx context.Context) (DetectedIntent, bool) {
				return DetectedIntent{Name: "first", Confidence: 0.7}, true
			},
			func(ctx context.Context) (DetectedIntent, bool) {
				return DetectedIntent{Name: "second", Confidence: 0.75}, true
			},
		)
		if got.Name != "second" || got.Confidence != 0.75 {
			t.Errorf("got %+v, want second at 0.75", got)
		}
	})
}
