package family

// Delete removes personID after detaching every edge that references it:
// child lists naming it, spouse links pointing back, and father/mother fields of
// its children. The whole store is scanned so one-sided references are detached
// too. Children and the spouse are kept. Deleting an unknown id is a no-op; the
// result reports whether a record was removed.
func (e *Engine) Delete(personID ID) bool {
	if !e.store.Has(personID) {
		return false
	}

	for id, other := range e.store.people {
		if id == personID {
			continue
		}
		if other.HasChild(personID) {
			other.removeChild(personID)
		}
		if other.SpouseID == personID {
			other.SpouseID = ""
		}
		if other.FatherID == personID {
			other.FatherID = ""
		}
		if other.MotherID == personID {
			other.MotherID = ""
		}
	}

	e.store.remove(personID)
	return true
}
