// internal/api/http/affixes.go
package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/gearscore/internal/affixdb"
)

const (
	defaultSuggestLimit = 10
	suggestMaxEdit      = 2
)

// GET /affixes
func ListAffixesHandler(store *affixdb.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, store.Snapshot())
	}
}

// GET /affixes/{classID}
func GetClassHandler(store *affixdb.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := lookupClass(w, r, store)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// GET /affixes/{classID}/suggest?q=&kind=base|temper|aspect&limit=
func SuggestHandler(store *affixdb.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := lookupClass(w, r, store)
		if !ok {
			return
		}
		q := r.URL.Query()
		kind := affixdb.Kind(strings.ToLower(q.Get("kind")))
		switch kind {
		case "":
			kind = affixdb.KindBase
		case affixdb.KindBase, affixdb.KindTemper, affixdb.KindAspect:
		default:
			http.Error(w, "kind must be base, temper or aspect", http.StatusBadRequest)
			return
		}
		limit := defaultSuggestLimit
		if s := q.Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = n
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"kind":        kind,
			"suggestions": e.Suggest(kind, q.Get("q"), limit, suggestMaxEdit),
		})
	}
}

func lookupClass(w http.ResponseWriter, r *http.Request, store *affixdb.Store) (affixdb.ClassEntry, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "classID"))
	e, err := store.Class(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return e, false
	}
	return e, true
}
