package ledger

import "carteira/internal/core"

// TagIndex is a lookup structure over the tag forest. All walks are
// bounded by the total tag count, so persisted cycles terminate
// instead of hanging.
type TagIndex struct {
	byID     map[int64]core.Tag
	children map[int64][]int64
}

func NewTagIndex(tags []core.Tag) *TagIndex {
	idx := &TagIndex{
		byID:     make(map[int64]core.Tag, len(tags)),
		children: make(map[int64][]int64),
	}
	for _, t := range tags {
		idx.byID[t.ID] = t
		if t.ParentID != nil {
			idx.children[*t.ParentID] = append(idx.children[*t.ParentID], t.ID)
		}
	}
	return idx
}

// Get returns the tag by id.
func (idx *TagIndex) Get(id int64) (core.Tag, bool) {
	t, ok := idx.byID[id]
	return t, ok
}

// Descendants returns id plus every tag below it, depth-first. A
// visited set guards against cycles; a tag with no children yields a
// set of size one.
func (idx *TagIndex) Descendants(id int64) []int64 {
	if _, ok := idx.byID[id]; !ok {
		return nil
	}
	visited := map[int64]bool{id: true}
	out := []int64{id}
	stack := append([]int64(nil), idx.children[id]...)
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[next] {
			continue
		}
		visited[next] = true
		out = append(out, next)
		stack = append(stack, idx.children[next]...)
	}
	return out
}

// RootOf walks up the parent chain from id and returns the grouping
// root: the first tag with no parent, a missing or inactive parent, or
// a parent typed income (income tags never serve as expense-budget
// roots). A detected cycle stops the walk at the current node; the
// second return is false only when id itself cannot be resolved.
func (idx *TagIndex) RootOf(id int64) (core.Tag, bool) {
	current, ok := idx.byID[id]
	if !ok {
		return core.Tag{}, false
	}
	visited := make(map[int64]bool, len(idx.byID))
	for steps := 0; steps <= len(idx.byID); steps++ {
		if current.ParentID == nil {
			return current, true
		}
		if visited[current.ID] {
			// Data-integrity cycle: treat the current node as root.
			return current, true
		}
		visited[current.ID] = true

		parent, ok := idx.byID[*current.ParentID]
		if !ok || !parent.Active || parent.Type == core.IncomeTag {
			return current, true
		}
		current = parent
	}
	return current, true
}
