package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRule_ComputeStructuralID(t *testing.T) {
	rule := Rule{ID: "log.error", Label: "error", Pattern: `\bERROR\b`}

	structuralID := rule.ComputeStructuralID()

	// Should be SHA-1 hex (40 chars)
	assert.Len(t, structuralID, 40)

	// Same pattern should produce same ID
	other := Rule{ID: "different.id", Label: "other", Pattern: `\bERROR\b`}
	assert.Equal(t, structuralID, other.ComputeStructuralID())

	// Different pattern should produce different ID
	changed := Rule{ID: "log.error", Label: "error", Pattern: `\bERR\b`}
	assert.NotEqual(t, structuralID, changed.ComputeStructuralID())
}

func TestRule_ComputeStructuralID_NamedGroups(t *testing.T) {
	named := Rule{Pattern: `status=(?P<code>\d{3})`}
	plain := Rule{Pattern: `status=(\d{3})`}
	assert.Equal(t, plain.ComputeStructuralID(), named.ComputeStructuralID())
}

func TestRule_WalkAndCount(t *testing.T) {
	root := &Rule{
		ID: "root",
		Children: []*Rule{
			{ID: "a", Children: []*Rule{{ID: "a1"}, {ID: "a2"}}},
			{ID: "b"},
		},
	}

	var order []string
	var depths []int
	root.Walk(func(r *Rule, depth int) bool {
		order = append(order, r.ID)
		depths = append(depths, depth)
		return true
	})
	assert.Equal(t, []string{"root", "a", "a1", "a2", "b"}, order)
	assert.Equal(t, []int{0, 1, 2, 2, 1}, depths)
	assert.Equal(t, 5, root.Count())

	order = nil
	root.Walk(func(r *Rule, depth int) bool {
		order = append(order, r.ID)
		return r.ID != "a"
	})
	assert.Equal(t, []string{"root", "a", "b"}, order)
}

func TestHit_Position(t *testing.T) {
	hit := Hit{
		RuleID: "log.error",
		Path:   []string{"levels", "error"},
		Cursor: Cursor{Line: 2, Offset: 5},
		Line:   []byte("INFO ERROR z"),
	}
	assert.Equal(t, "error", hit.Label())
	assert.Equal(t, SourcePoint{Line: 3, Column: 6}, hit.Position())
	assert.Equal(t, "2:5", hit.Cursor.String())
}
