// internal/api/http/ocr.go
package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/gearscore/internal/grading"
	"github.com/mind-engage/gearscore/internal/grading/ocr"
	"github.com/mind-engage/gearscore/internal/logger"
	"github.com/mind-engage/gearscore/internal/storage"
)

type ocrResp struct {
	UploadKey string `json:"upload_key"`
	ocr.DropExtraction
}

type imageCalculateResp struct {
	UploadKey string        `json:"upload_key"`
	Drop      grading.Drop  `json:"drop"`
	Result    calculateResp `json:"result"`
}

// upload is a screenshot read from a multipart request and already persisted.
type upload struct {
	key  string
	mime string
	data []byte
}

// POST /ocr
func OCRHandler(ex ocr.DropExtractor, bs storage.BlobStore, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		up, ok := readUpload(w, r, bs, maxBytes)
		if !ok {
			return
		}
		d, err := ex.ExtractDrop(r.Context(), bytes.NewReader(up.data), up.mime)
		if err != nil {
			writeExtractError(w, up.key, err)
			return
		}
		writeJSON(w, http.StatusOK, ocrResp{UploadKey: up.key, DropExtraction: d})
	}
}

// POST /calculate/image
//
// Form fields: "file" (screenshot) and "target" (JSON with target_base,
// target_temper and target_aspect). The drop is read off the screenshot.
func CalculateImageHandler(scorer grading.Scorer, ex ocr.DropExtractor, bs storage.BlobStore, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
			return
		}
		var target grading.Target
		if err := json.Unmarshal([]byte(r.FormValue("target")), &target); err != nil {
			http.Error(w, "target must be JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		up, ok := readUpload(w, r, bs, maxBytes)
		if !ok {
			return
		}
		d, err := ex.ExtractDrop(r.Context(), bytes.NewReader(up.data), up.mime)
		if err != nil {
			writeExtractError(w, up.key, err)
			return
		}
		drop := d.Drop()
		res := scorer.Evaluate(grading.GearEvaluationRequest{Target: target, Drop: drop})
		writeJSON(w, http.StatusOK, imageCalculateResp{
			UploadKey: up.key,
			Drop:      drop,
			Result:    newCalculateResp(res),
		})
	}
}

func readUpload(w http.ResponseWriter, r *http.Request, bs storage.BlobStore, maxBytes int64) (upload, bool) {
	if r.MultipartForm == nil {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file required", http.StatusBadRequest)
		return upload{}, false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		http.Error(w, "read upload: "+err.Error(), http.StatusBadRequest)
		return upload{}, false
	}
	if len(data) == 0 {
		http.Error(w, "empty file", http.StatusBadRequest)
		return upload{}, false
	}

	mt := hdr.Header.Get("Content-Type")
	if mt == "" || mt == "application/octet-stream" {
		mt = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mt, "image/") {
		http.Error(w, "file must be an image, got "+mt, http.StatusUnsupportedMediaType)
		return upload{}, false
	}

	key := "uploads/" + time.Now().UTC().Format("20060102") + "/" + uuid.NewString() + uploadExt(hdr.Filename, mt)
	if key, err = bs.Put(key, bytes.NewReader(data)); err != nil {
		http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
		return upload{}, false
	}
	return upload{key: key, mime: mt, data: data}, true
}

func uploadExt(filename, mt string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" && len(ext) <= 5 {
		return ext
	}
	if exts, _ := mime.ExtensionsByType(mt); len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}

// writeExtractError never lets a failed or malformed extraction through as data.
func writeExtractError(w http.ResponseWriter, key string, err error) {
	logger.Warnf("[ocr] extraction failed for %s: %v", key, err)
	switch {
	case errors.Is(err, ocr.ErrInvalidRecord):
		http.Error(w, "圖片辨識結果格式錯誤，請重試: "+err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ocr.ErrRecognition):
		http.Error(w, "圖片辨識失敗，請重試: "+err.Error(), http.StatusBadGateway)
	default:
		http.Error(w, "圖片辨識失敗，請重試", http.StatusInternalServerError)
	}
}
