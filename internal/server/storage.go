package server

//
// The /api/storage handler
//

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/wirescope/wirescope/internal/kvstore"
	"github.com/wirescope/wirescope/internal/netxlite"
)

// maxStorageValueSize is the maximum acceptable body of a PUT request.
const maxStorageValueSize = 1 << 22

// storageValue is the body of GET and PUT requests for a single key.
type storageValue struct {
	Value string `json:"value"`
}

// storageKeys is the body of the response listing a store.
type storageKeys struct {
	Keys []string `json:"keys"`
}

// storageError is the body of failed storage responses.
type storageError struct {
	Error string `json:"error"`
}

// StorageHandler exposes a [kvstore.Store] over HTTP.
type StorageHandler struct {
	// Store is the MANDATORY store.
	Store kvstore.Store
}

// Register registers the storage routes on the given mux.
func (h *StorageHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/storage/{store}/{key}", h.getItem)
	mux.HandleFunc("PUT /api/storage/{store}/{key}", h.setItem)
	mux.HandleFunc("DELETE /api/storage/{store}/{key}", h.removeItem)
	mux.HandleFunc("GET /api/storage/{store}", h.listKeys)
	mux.HandleFunc("DELETE /api/storage/{store}", h.clearStore)
}

// getItem handles GET and HEAD for a single key.
func (h *StorageHandler) getItem(w http.ResponseWriter, req *http.Request) {
	store, key := req.PathValue("store"), req.PathValue("key")
	if req.Method == http.MethodHead {
		found, err := h.Store.Has(store, key)
		if err != nil {
			h.fail(w, req, err)
			return
		}
		status := http.StatusOK
		if !found {
			status = http.StatusNotFound
		}
		h.count(req, status)
		w.WriteHeader(status)
		return
	}
	value, err := h.Store.Get(store, key)
	if err != nil {
		h.fail(w, req, err)
		return
	}
	h.count(req, http.StatusOK)
	writeJSON(w, http.StatusOK, &storageValue{Value: value})
}

func (h *StorageHandler) setItem(w http.ResponseWriter, req *http.Request) {
	data, err := netxlite.ReadAllContext(req.Context(), http.MaxBytesReader(w, req.Body, maxStorageValueSize))
	if err != nil {
		h.reply(w, req, http.StatusBadRequest, err)
		return
	}
	var sv storageValue
	if err := json.Unmarshal(data, &sv); err != nil {
		h.reply(w, req, http.StatusBadRequest, err)
		return
	}
	if err := h.Store.Set(req.PathValue("store"), req.PathValue("key"), sv.Value); err != nil {
		h.fail(w, req, err)
		return
	}
	h.count(req, http.StatusNoContent)
	w.WriteHeader(http.StatusNoContent)
}

func (h *StorageHandler) removeItem(w http.ResponseWriter, req *http.Request) {
	if err := h.Store.Remove(req.PathValue("store"), req.PathValue("key")); err != nil {
		h.fail(w, req, err)
		return
	}
	h.count(req, http.StatusNoContent)
	w.WriteHeader(http.StatusNoContent)
}

func (h *StorageHandler) listKeys(w http.ResponseWriter, req *http.Request) {
	keys, err := h.Store.Keys(req.PathValue("store"))
	if err != nil {
		h.fail(w, req, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	h.count(req, http.StatusOK)
	writeJSON(w, http.StatusOK, &storageKeys{Keys: keys})
}

func (h *StorageHandler) clearStore(w http.ResponseWriter, req *http.Request) {
	if err := h.Store.Clear(req.PathValue("store")); err != nil {
		h.fail(w, req, err)
		return
	}
	h.count(req, http.StatusNoContent)
	w.WriteHeader(http.StatusNoContent)
}

// fail maps a store error to the proper status code.
func (h *StorageHandler) fail(w http.ResponseWriter, req *http.Request, err error) {
	switch {
	case errors.Is(err, kvstore.ErrNoSuchKey):
		h.reply(w, req, http.StatusNotFound, err)
	case errors.Is(err, kvstore.ErrInvalidName):
		h.reply(w, req, http.StatusBadRequest, err)
	default:
		requestLogger(req.Context()).Warnf("storage: %s %s: %s", req.Method, req.URL.Path, err.Error())
		h.reply(w, req, http.StatusInternalServerError, err)
	}
}

func (h *StorageHandler) reply(w http.ResponseWriter, req *http.Request, status int, err error) {
	h.count(req, status)
	writeJSON(w, status, &storageError{Error: err.Error()})
}

func (h *StorageHandler) count(req *http.Request, status int) {
	metricStorageRequestsCount.WithLabelValues(req.Method, strconv.Itoa(status)).Inc()
}
