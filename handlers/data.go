package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/camden-git/familytreebackend/services"
	"github.com/camden-git/familytreebackend/storage"
	"github.com/sirupsen/logrus"
)

const maxImportBytes = 32 << 20

type DataHandler struct {
	Service *services.FamilyService
	Log     *logrus.Logger
	Now     func() time.Time
}

func (dh *DataHandler) now() time.Time {
	if dh.Now != nil {
		return dh.Now()
	}
	return time.Now()
}

// Export downloads the tree as family-tree-YYYY-MM-DD.json.
func (dh *DataHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := dh.Service.Export(&buf); err != nil {
		WriteServiceError(w, dh.Log, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", storage.ExportFileName(dh.now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Import replaces the tree with the uploaded document.
func (dh *DataHandler) Import(w http.ResponseWriter, r *http.Request) {
	count, err := dh.Service.Import(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		WriteServiceError(w, dh.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": count})
}

// Clear deletes all saved and in-memory data.
func (dh *DataHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := dh.Service.Clear(); err != nil {
		WriteServiceError(w, dh.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
