package physics

import "github.com/zeusync/zeuphys/internal/core/observability/log"

// rebuildIndex splits active slots into the important, minion and ordinary
// lists, each in slot order. Only runs when the pool topology changed.
func (w *World) rebuildIndex() {
	w.important = w.important[:0]
	w.minions = w.minions[:0]
	w.ordinary = w.ordinary[:0]
	for i := range w.bodies {
		b := &w.bodies[i]
		switch {
		case !b.active:
			w.classes[i] = ClassNone
		case b.IsImportant:
			w.important = append(w.important, i)
			w.classes[i] = ClassImportant
		case b.IsMinion:
			w.minions = append(w.minions, i)
			w.classes[i] = ClassMinion
		default:
			w.ordinary = append(w.ordinary, i)
			w.classes[i] = ClassOrdinary
		}
	}
	w.dirty = false
	w.logger.Debug("body index rebuilt",
		log.Int("important", len(w.important)),
		log.Int("minions", len(w.minions)),
		log.Int("ordinary", len(w.ordinary)),
	)
}

// Class is the processing class a body was assigned at the last rebuild.
type Class uint8

const (
	ClassNone Class = iota
	ClassImportant
	ClassMinion
	ClassOrdinary
)

func (c Class) String() string {
	switch c {
	case ClassImportant:
		return "important"
	case ClassMinion:
		return "minion"
	case ClassOrdinary:
		return "ordinary"
	default:
		return "none"
	}
}

// ClassOf reports the class of the body behind h as of the last rebuild.
func (w *World) ClassOf(h Handle) Class {
	if _, ok := w.Resolve(h); !ok {
		return ClassNone
	}
	return w.classes[h.ID]
}
