package review

import (
	"fmt"
	"strings"
	"time"
)

// Change pairs a stored row with the client version that should replace it.
type Change[T any] struct {
	Current T
	Desired T
}

// Plan lists the writes that turn the stored collection into the client one.
// Apply order is Deletes, Updates, Inserts.
type Plan[T any] struct {
	Deletes []T
	Updates []Change[T]
	Inserts []T
}

func (p Plan[T]) Len() int {
	return len(p.Deletes) + len(p.Updates) + len(p.Inserts)
}

func (p Plan[T]) IsEmpty() bool {
	return p.Len() == 0
}

// Matcher tells Diff how to pair client items with stored rows.
type Matcher[T any, K comparable] struct {
	// Key returns the identity of an item and false when it has none yet.
	Key func(T) (K, bool)
	// Fallback optionally pairs an identity-less client item with an
	// unmatched stored row, so a retried save does not duplicate rows.
	Fallback func(stored, client T) bool
	// Equal reports whether applying client over stored would change nothing.
	Equal func(stored, client T) bool
}

// Diff computes the minimal plan. Keyed client items are paired first and the
// rest go through Fallback afterwards, so a fallback match never steals a row
// that a keyed item refers to. A client item left unpaired is inserted.
func Diff[T any, K comparable](stored, client []T, m Matcher[T, K]) Plan[T] {
	var plan Plan[T]

	index := make(map[K]int, len(stored))
	for i, s := range stored {
		if k, ok := m.Key(s); ok {
			index[k] = i
		}
	}
	matched := make([]bool, len(stored))
	paired := make([]int, len(client))
	for i := range paired {
		paired[i] = -1
	}

	for ci, c := range client {
		k, ok := m.Key(c)
		if !ok {
			continue
		}
		if si, found := index[k]; found && !matched[si] {
			matched[si] = true
			paired[ci] = si
		}
	}

	if m.Fallback != nil {
		for ci, c := range client {
			if paired[ci] >= 0 {
				continue
			}
			for si, s := range stored {
				if !matched[si] && m.Fallback(s, c) {
					matched[si] = true
					paired[ci] = si
					break
				}
			}
		}
	}

	for si, s := range stored {
		if !matched[si] {
			plan.Deletes = append(plan.Deletes, s)
		}
	}
	for ci, c := range client {
		si := paired[ci]
		if si < 0 {
			plan.Inserts = append(plan.Inserts, c)
			continue
		}
		if m.Equal == nil || !m.Equal(stored[si], c) {
			plan.Updates = append(plan.Updates, Change[T]{Current: stored[si], Desired: c})
		}
	}

	return plan
}

// KPIMatcher pairs KPIs by id, falling back to the trimmed description for
// KPIs the client has not persisted yet. Ratings are compared as well, so
// callers that must not touch ratings copy the stored value first.
func KPIMatcher() Matcher[KPI, string] {
	return Matcher[KPI, string]{
		Key: func(k KPI) (string, bool) {
			return k.ID, k.ID != ""
		},
		Fallback: func(stored, client KPI) bool {
			return client.HasDescription() &&
				strings.TrimSpace(stored.Description) == strings.TrimSpace(client.Description)
		},
		Equal: kpiEqual,
	}
}

func kpiEqual(a, b KPI) bool {
	return strings.TrimSpace(a.Description) == strings.TrimSpace(b.Description) &&
		sameDate(a.Deadline, b.Deadline) &&
		a.Weight == b.Weight &&
		sameInt(a.CompletionPercentage, b.CompletionPercentage) &&
		a.Position == b.Position &&
		a.SupervisorRating.Valid == b.SupervisorRating.Valid &&
		(!a.SupervisorRating.Valid || a.SupervisorRating.Decimal.Equal(b.SupervisorRating.Decimal))
}

// EmployeeKPIMatcher is KPIMatcher for writes that must leave ratings alone:
// a rating difference alone never produces an update.
func EmployeeKPIMatcher() Matcher[KPI, string] {
	m := KPIMatcher()
	m.Equal = func(stored, client KPI) bool {
		client.SupervisorRating = stored.SupervisorRating
		return kpiEqual(stored, client)
	}
	return m
}

// SkillMatcher pairs skill evaluations by skill name.
func SkillMatcher() Matcher[SkillEvaluation, string] {
	return Matcher[SkillEvaluation, string]{
		Key: func(s SkillEvaluation) (string, bool) {
			name := strings.TrimSpace(s.SkillName)
			return name, name != ""
		},
		Equal: func(a, b SkillEvaluation) bool {
			return a.Level == b.Level
		},
	}
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// ItemFailure describes one reconciliation write that did not go through.
type ItemFailure struct {
	Operation string `json:"operation"`
	Item      string `json:"item"`
	Error     string `json:"error"`
}

// SaveResult is the outcome of applying a plan item by item.
type SaveResult struct {
	Saved    int           `json:"saved"`
	Total    int           `json:"total"`
	Failures []ItemFailure `json:"failures,omitempty"`
}

func (r SaveResult) Partial() bool {
	return len(r.Failures) > 0
}

func (r SaveResult) Summary() string {
	return fmt.Sprintf("%d of %d saved", r.Saved, r.Total)
}
