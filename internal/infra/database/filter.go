package database

import (
	"fmt"
	"strings"
)

// Filter carries the optional list filters. Zero values add no condition,
// so an empty filter matches every row in scope.
type Filter struct {
	Source    string
	Status    string
	TeacherID int64
	Keyword   string
}

// Predicate is a SQL fragment (beginning with " AND ...", or empty) plus its
// bound arguments. Placeholders continue positionally from the caller's
// argument count.
type Predicate struct {
	SQL  string
	Args []interface{}
}

// BuildFilter renders the filter against the list join: l = leads,
// cf = current follow-up. The keyword condition fans out over name, phone,
// follow-up content and remark; the content match uses EXISTS over the full
// ledger so the one-to-many join cannot duplicate lead rows. Only the
// validated tenant schema reaches the query text.
func BuildFilter(schema string, f Filter, argOffset int) Predicate {
	var conds []string
	var args []interface{}
	next := func() int { return argOffset + len(args) + 1 }

	if f.Source != "" {
		conds = append(conds, fmt.Sprintf("l.source_channel = $%d", next()))
		args = append(args, f.Source)
	}
	if f.Status != "" {
		conds = append(conds, fmt.Sprintf("COALESCE(cf.result, 'NEW') = $%d", next()))
		args = append(args, f.Status)
	}
	if f.TeacherID != 0 {
		conds = append(conds, fmt.Sprintf("l.assigned_teacher_id = $%d", next()))
		args = append(args, f.TeacherID)
	}
	if f.Keyword != "" {
		n := next()
		conds = append(conds, fmt.Sprintf(
			"(l.name ILIKE $%d OR l.phone ILIKE $%d OR l.remark ILIKE $%d OR "+
				"EXISTS (SELECT 1 FROM %s.followups kf WHERE kf.lead_id = l.id AND kf.deleted_at IS NULL AND kf.content ILIKE $%d))",
			n, n+1, n+2, schema, n+3))
		like := "%" + f.Keyword + "%"
		args = append(args, like, like, like, like)
	}

	if len(conds) == 0 {
		return Predicate{}
	}
	return Predicate{SQL: " AND " + strings.Join(conds, " AND "), Args: args}
}

// ScopePredicate renders the caller's visibility restriction. Unrestricted
// callers get an empty predicate.
func ScopePredicate(restricted bool, staffID int64, argOffset int) Predicate {
	if !restricted {
		return Predicate{}
	}
	return Predicate{
		SQL:  fmt.Sprintf(" AND l.assigned_teacher_id = $%d", argOffset+1),
		Args: []interface{}{staffID},
	}
}
