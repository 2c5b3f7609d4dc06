package physics

// updateNeighbors proposes the ordinary body under the cursor as a neighbor
// to every other ordinary body and to every minion, then advances the cursor.
func (w *World) updateNeighbors() {
	if w.cursor >= len(w.ordinary) {
		w.cursor = 0
	}
	if len(w.ordinary) == 0 {
		return
	}

	candidate := &w.bodies[w.ordinary[w.cursor]]
	for _, i := range w.ordinary {
		target := &w.bodies[i]
		if target == candidate {
			continue
		}
		w.offerNeighbor(target, candidate)
	}
	for _, i := range w.minions {
		w.offerNeighbor(&w.bodies[i], candidate)
	}
	w.cursor++
}

// offerNeighbor refreshes candidate's cached distance if target already tracks
// it. Otherwise the candidate takes an empty slot, or evicts the farthest
// tracked neighbor when that one is farther than the candidate.
func (w *World) offerNeighbor(target, candidate *Body) {
	distance := distanceXZ2(target.Position, candidate.Position)

	empty, farthest := -1, -1
	farthestDistance := 0.0
	for i := range target.neighbors {
		n := &target.neighbors[i]
		if _, ok := w.Resolve(n.Handle); !ok {
			if empty < 0 {
				empty = i
			}
			continue
		}
		if n.Handle.Matches(candidate.handle) {
			n.Distance = distance
			return
		}
		if farthest < 0 || n.Distance > farthestDistance {
			farthest = i
			farthestDistance = n.Distance
		}
	}

	slot := empty
	if slot < 0 {
		if farthest < 0 || farthestDistance <= distance {
			return
		}
		slot = farthest
	}
	target.neighbors[slot] = Neighbor{Handle: candidate.handle, Distance: distance}
}

// CursorNeighbors returns the live neighbor handles of the body the cursor
// will propose next. Intended for debug overlays.
func (w *World) CursorNeighbors() (Handle, []Handle) {
	if len(w.ordinary) == 0 {
		return Handle{}, nil
	}
	cursor := w.cursor
	if cursor >= len(w.ordinary) {
		cursor = 0
	}
	b := &w.bodies[w.ordinary[cursor]]
	out := make([]Handle, 0, len(b.neighbors))
	for _, n := range b.neighbors {
		if _, ok := w.Resolve(n.Handle); ok {
			out = append(out, n.Handle)
		}
	}
	return b.handle, out
}
