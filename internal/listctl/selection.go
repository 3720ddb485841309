package listctl

import "sort"

// Selection tracks chosen row ids. Picked ids are tied to the visible page;
// scoped ids came from a scope select and survive page loads.
type Selection struct {
	picked map[string]struct{}
	scoped map[string]struct{}
}

func newSelection() Selection {
	return Selection{picked: map[string]struct{}{}, scoped: map[string]struct{}{}}
}

func (s Selection) Has(id string) bool {
	if _, ok := s.picked[id]; ok {
		return true
	}
	_, ok := s.scoped[id]
	return ok
}

// IDs returns the selected ids in sorted order.
func (s Selection) IDs() []string {
	seen := make(map[string]struct{}, len(s.picked)+len(s.scoped))
	out := make([]string, 0, len(s.picked)+len(s.scoped))
	for _, set := range []map[string]struct{}{s.picked, s.scoped} {
		for id := range set {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func (s *Selection) pick(id string) {
	s.picked[id] = struct{}{}
}

func (s *Selection) drop(id string) {
	delete(s.picked, id)
	delete(s.scoped, id)
}

func (s *Selection) clear() {
	s.picked = map[string]struct{}{}
	s.scoped = map[string]struct{}{}
}

// replaceScoped discards the current selection and selects ids.
func (s *Selection) replaceScoped(ids []string) {
	s.clear()
	for _, id := range ids {
		s.scoped[id] = struct{}{}
	}
}

// prune drops picked ids that are not in visible.
func (s *Selection) prune(visible map[string]struct{}) {
	for id := range s.picked {
		if _, ok := visible[id]; !ok {
			delete(s.picked, id)
		}
	}
}
