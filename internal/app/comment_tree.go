package app

import "cyberlearn-service/internal/domain"

// BuildCommentTree turns a flat, creation-ordered comment list into a nested
// reply tree. A comment whose parent id is missing from the list is promoted
// to a root instead of being dropped. Appends happen in input order, so root
// order and reply order both mirror the input; no re-sorting is done.
// O(n) time and space.
func BuildCommentTree(flat []domain.Comment) []*domain.Comment {
	nodes := make(map[string]*domain.Comment, len(flat))
	ordered := make([]*domain.Comment, 0, len(flat))
	for i := range flat {
		c := flat[i]
		c.Replies = []*domain.Comment{}
		nodes[c.ID] = &c
		ordered = append(ordered, &c)
	}

	roots := make([]*domain.Comment, 0, len(flat))
	for _, c := range ordered {
		if c.ParentID == "" {
			roots = append(roots, c)
			continue
		}
		parent, ok := nodes[c.ParentID]
		if !ok {
			// orphaned reply: the parent was never stored or belongs to
			// another blog; keep the comment visible at the top level
			roots = append(roots, c)
			continue
		}
		parent.Replies = append(parent.Replies, c)
	}
	return roots
}
