// internal/api/http/routes.go
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/gearscore/internal/affixdb"
	"github.com/mind-engage/gearscore/internal/grading"
	"github.com/mind-engage/gearscore/internal/grading/ocr"
	"github.com/mind-engage/gearscore/internal/storage"
)

// Deps are the collaborators the handlers need.
type Deps struct {
	Scorer         grading.Scorer
	Extractor      ocr.DropExtractor
	Blobs          storage.BlobStore
	Affixes        *affixdb.Store
	MaxUploadBytes int64
}

// Mount registers every API route on r.
func Mount(r chi.Router, d Deps) {
	maxBytes := d.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}

	r.Post("/calculate", CalculateHandler(d.Scorer))
	r.Post("/calculate/image", CalculateImageHandler(d.Scorer, d.Extractor, d.Blobs, maxBytes))
	r.Post("/ocr", OCRHandler(d.Extractor, d.Blobs, maxBytes))
	r.Get("/masterwork", MasterworkHandler())

	r.Route("/affixes", func(ar chi.Router) {
		ar.Get("/", ListAffixesHandler(d.Affixes))
		ar.Get("/{classID}", GetClassHandler(d.Affixes))
		ar.Get("/{classID}/suggest", SuggestHandler(d.Affixes))
	})
	r.Route("/uploads", func(ur chi.Router) {
		MountUploads(ur, d.Blobs)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
}
