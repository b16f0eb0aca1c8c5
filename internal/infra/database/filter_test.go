package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildFilter_Empty(t *testing.T) {
	p := BuildFilter("tenant_a", Filter{}, 0)
	assert.Empty(t, p.SQL)
	assert.Empty(t, p.Args)
}

func TestBuildFilter_PlaceholderNumberingChains(t *testing.T) {
	p := BuildFilter("tenant_a", Filter{Source: "WEBSITE", Status: "NEW", TeacherID: 7}, 2)

	assert.Contains(t, p.SQL, "$3")
	assert.Contains(t, p.SQL, "$4")
	assert.Contains(t, p.SQL, "$5")
	assert.NotContains(t, p.SQL, "$2")
	assert.Equal(t, []interface{}{"WEBSITE", "NEW", int64(7)}, p.Args)
}

func TestBuildFilter_KeywordSearchesFollowUpContent(t *testing.T) {
	p := BuildFilter("tenant_a", Filter{Keyword: "piano"}, 0)

	assert.Contains(t, p.SQL, "ILIKE")
	assert.Contains(t, p.SQL, "EXISTS")
	assert.Contains(t, p.SQL, "tenant_a.followups")
	assert.Len(t, p.Args, 4)
	assert.Equal(t, "%piano%", p.Args[0])
}

func TestScopePredicate_Unrestricted(t *testing.T) {
	p := ScopePredicate(false, 3, 0)
	assert.Empty(t, p.SQL)
	assert.Empty(t, p.Args)
}

func TestScopePredicate_Restricted(t *testing.T) {
	p := ScopePredicate(true, 3, 4)
	assert.Contains(t, p.SQL, "l.assigned_teacher_id = $5")
	assert.Equal(t, []interface{}{int64(3)}, p.Args)
}
