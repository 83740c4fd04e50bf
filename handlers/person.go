package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/camden-git/familytreebackend/family"
	"github.com/camden-git/familytreebackend/services"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type PersonHandler struct {
	Service *services.FamilyService
	Log     *logrus.Logger
}

func personID(r *http.Request) family.ID {
	return family.ID(chi.URLParam(r, "person_id"))
}

func decodeFields(w http.ResponseWriter, r *http.Request) (family.Fields, bool) {
	var f family.Fields
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_request", "Invalid request body: "+err.Error())
		return family.Fields{}, false
	}
	return f, true
}

// respondPerson writes p, or the mapped error when err is set.
func (ph *PersonHandler) respondPerson(w http.ResponseWriter, status int, p *family.Person, err error) {
	if err != nil {
		WriteServiceError(w, ph.Log, err)
		return
	}
	writeJSON(w, status, p)
}

func (ph *PersonHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ph.Service.People())
}

func (ph *PersonHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	p, err := ph.Service.Get(personID(r))
	ph.respondPerson(w, http.StatusOK, p, err)
}

// CreatePerson adds a parentless person who heads a new family.
func (ph *PersonHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	f, ok := decodeFields(w, r)
	if !ok {
		return
	}
	p, err := ph.Service.CreateRoot(f)
	ph.respondPerson(w, http.StatusCreated, p, err)
}

func (ph *PersonHandler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	f, ok := decodeFields(w, r)
	if !ok {
		return
	}
	p, err := ph.Service.Edit(personID(r), f)
	ph.respondPerson(w, http.StatusOK, p, err)
}

// DeletePerson always succeeds; deleting an unknown id reports deleted=false.
func (ph *PersonHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ph.Service.Delete(personID(r)))
}

func (ph *PersonHandler) AddChild(w http.ResponseWriter, r *http.Request) {
	f, ok := decodeFields(w, r)
	if !ok {
		return
	}
	p, err := ph.Service.AddChild(personID(r), f)
	ph.respondPerson(w, http.StatusCreated, p, err)
}

func (ph *PersonHandler) AddParent(w http.ResponseWriter, r *http.Request) {
	f, ok := decodeFields(w, r)
	if !ok {
		return
	}
	p, err := ph.Service.AddParent(personID(r), f)
	ph.respondPerson(w, http.StatusCreated, p, err)
}

func (ph *PersonHandler) LinkParent(w http.ResponseWriter, r *http.Request) {
	p, err := ph.Service.LinkParent(personID(r), family.ID(chi.URLParam(r, "parent_id")))
	ph.respondPerson(w, http.StatusOK, p, err)
}

func (ph *PersonHandler) AddSpouse(w http.ResponseWriter, r *http.Request) {
	f, ok := decodeFields(w, r)
	if !ok {
		return
	}
	p, err := ph.Service.AddSpouse(personID(r), f)
	ph.respondPerson(w, http.StatusCreated, p, err)
}

func (ph *PersonHandler) LinkSpouse(w http.ResponseWriter, r *http.Request) {
	p, err := ph.Service.LinkSpouse(personID(r), family.ID(chi.URLParam(r, "spouse_id")))
	ph.respondPerson(w, http.StatusOK, p, err)
}

func (ph *PersonHandler) UnlinkSpouse(w http.ResponseWriter, r *http.Request) {
	p, err := ph.Service.UnlinkSpouse(personID(r))
	ph.respondPerson(w, http.StatusOK, p, err)
}

func (ph *PersonHandler) MakeFamilyRoot(w http.ResponseWriter, r *http.Request) {
	id := personID(r)
	members, err := ph.Service.MakeFamilyRoot(id)
	if err != nil {
		WriteServiceError(w, ph.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"personId": id, "members": members})
}

func (ph *PersonHandler) RemoveFamilyRoot(w http.ResponseWriter, r *http.Request) {
	p, err := ph.Service.RemoveFamilyRoot(personID(r))
	ph.respondPerson(w, http.StatusOK, p, err)
}

func (ph *PersonHandler) DescendantCount(w http.ResponseWriter, r *http.Request) {
	id := personID(r)
	count, err := ph.Service.DescendantCount(id)
	if err != nil {
		WriteServiceError(w, ph.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"personId": id, "count": count})
}

// PathToTarget returns an empty path when the target is not below the person.
func (ph *PersonHandler) PathToTarget(w http.ResponseWriter, r *http.Request) {
	path := ph.Service.PathToTarget(personID(r), family.ID(chi.URLParam(r, "target_id")))
	writeJSON(w, http.StatusOK, map[string]interface{}{"path": path})
}

func (ph *PersonHandler) Label(w http.ResponseWriter, r *http.Request) {
	label, err := ph.Service.FamilyLabel(personID(r))
	if err != nil {
		WriteServiceError(w, ph.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		family.Label
		Text string `json:"text"`
	}{label, label.String()})
}

// Navigate answers which tree to render to show the person: ?mode=family (default)
// or ?mode=ancestors.
func (ph *PersonHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	nav, err := ph.Service.Navigate(personID(r), r.URL.Query().Get("mode"))
	if err != nil {
		WriteServiceError(w, ph.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, nav)
}
