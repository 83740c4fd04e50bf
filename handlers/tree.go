package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/camden-git/familytreebackend/family"
	"github.com/camden-git/familytreebackend/services"
	"github.com/camden-git/familytreebackend/tree"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const defaultSearchLimit = 20

type TreeHandler struct {
	Service *services.FamilyService
	Log     *logrus.Logger
}

// ListFamilies returns every family head with its descendant count, largest first.
func (th *TreeHandler) ListFamilies(w http.ResponseWriter, r *http.Request) {
	heads := th.Service.RootFamilies()
	if heads == nil {
		heads = []family.FamilyHead{}
	}
	writeJSON(w, http.StatusOK, heads)
}

// GetTree renders the visible tree.
// Query: expanded=a,b,c marks open nodes; target=id forces the path to id open.
// Without a root id the largest family is used.
func (th *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	var expanded []family.ID
	for _, id := range strings.Split(r.URL.Query().Get("expanded"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			expanded = append(expanded, family.ID(id))
		}
	}
	rootID := family.ID(chi.URLParam(r, "root_id"))
	targetID := family.ID(r.URL.Query().Get("target"))

	node, err := th.Service.Tree(rootID, tree.NewExpansion(expanded...), targetID)
	if err != nil {
		WriteServiceError(w, th.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

type searchResult struct {
	*family.Person
	Label string `json:"label"`
}

// Search matches names and dates; each hit carries its family label.
func (th *TreeHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteAPIError(w, http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	people := th.Service.Search(r.URL.Query().Get("q"), limit)
	results := make([]searchResult, 0, len(people))
	for _, p := range people {
		label, err := th.Service.FamilyLabel(p.ID)
		if err != nil {
			continue // deleted since the search ran
		}
		results = append(results, searchResult{Person: p, Label: label.String()})
	}
	writeJSON(w, http.StatusOK, results)
}
