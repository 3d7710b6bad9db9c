package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/mind-engage/gearscore/internal/affixdb"
	"github.com/mind-engage/gearscore/internal/grading"
	"github.com/mind-engage/gearscore/internal/grading/ocr"
	"github.com/mind-engage/gearscore/internal/storage"
)

/* ---------------- in-memory fake extractor ---------------- */

type fakeExtractor struct {
	drop    ocr.DropExtraction
	err     error
	gotMime string
	gotData []byte
}

func (f *fakeExtractor) ExtractDrop(_ context.Context, r io.Reader, mimeType string) (ocr.DropExtraction, error) {
	f.gotMime = mimeType
	f.gotData, _ = io.ReadAll(r)
	return f.drop, f.err
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n-not-really-a-png")

func ptr(v float64) *float64 { return &v }

func newTestServer(t *testing.T, ex ocr.DropExtractor) (*httptest.Server, storage.BlobStore) {
	t.Helper()
	dir := t.TempDir()
	bs, err := storage.NewFSStore(filepath.Join(dir, "blobs"))
	require.NoError(t, err)
	store, err := affixdb.Open(filepath.Join(dir, "affixes.json"))
	require.NoError(t, err)
	_, err = store.Merge(affixdb.DB{
		"Necromancer": {Label: "死靈法師", Icon: "💀", Base: []string{"智力", "最大生命"}, Temper: []string{"【攻擊】召喚傷害"}},
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	Mount(r, Deps{
		Scorer:         grading.NewScorer(),
		Extractor:      ex,
		Blobs:          bs,
		Affixes:        store,
		MaxUploadBytes: 1 << 20,
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, bs
}

func multipartBody(t *testing.T, fields map[string]string, filename string, data []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if data != nil {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestCalculate(t *testing.T) {
	srv, _ := newTestServer(t, &fakeExtractor{})

	body := `{
		"target_base": [{"name": "Intelligence", "isGA": false, "min": 100, "max": null}, {"name": ""}],
		"target_temper": [],
		"target_aspect": {"name": ""},
		"drop_base": [{"name": "Intelligence", "value": 150}],
		"drop_temper": [],
		"drop_aspect": {"name": ""},
		"drop_item_power": 700
	}`
	resp, err := http.Post(srv.URL+"/calculate", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	out := readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode, out)

	assert.Equal(t, int64(75), gjson.Get(out, "score").Int())
	assert.Equal(t, "near-graduate", gjson.Get(out, "tier").String())
	assert.Equal(t, "✨ 準畢業", gjson.Get(out, "tierLabel").String())
	assert.Equal(t, "text-blue-400", gjson.Get(out, "tierColor").String())
	assert.Equal(t, "bg-blue-600", gjson.Get(out, "barColor").String())
	assert.False(t, gjson.Get(out, "isBrick").Bool())
	assert.Equal(t, int64(2), gjson.Get(out, "log.#").Int())
	assert.Equal(t, "pass", gjson.Get(out, "log.0.severity").String())
	assert.Equal(t, "power", gjson.Get(out, "log.1.category").String())
	assert.Equal(t, "✅ [基底] Intelligence +150: 達標", gjson.Get(out, "matched_affixes.0").String())
	assert.Equal(t, int64(20), gjson.Get(out, "tally.totalWeight").Int())
}

func TestCalculateEmptyLogIsArray(t *testing.T) {
	srv, _ := newTestServer(t, &fakeExtractor{})
	resp, err := http.Post(srv.URL+"/calculate", "application/json", strings.NewReader(`{"drop_item_power": 800}`))
	require.NoError(t, err)
	out := readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, gjson.Get(out, "matched_affixes").IsArray())
	assert.True(t, gjson.Get(out, "log").IsArray())
	assert.Equal(t, "🗑️ 垃圾", gjson.Get(out, "tierLabel").String())
}

func TestCalculateBadJSON(t *testing.T) {
	srv, _ := newTestServer(t, &fakeExtractor{})
	resp, err := http.Post(srv.URL+"/calculate", "application/json", strings.NewReader(`{"drop_item_power": "high"`))
	require.NoError(t, err)
	_ = readBody(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOCR(t *testing.T) {
	ex := &fakeExtractor{drop: ocr.DropExtraction{
		ItemPower:   925,
		BaseAffixes: []ocr.ExtractedAffix{{Name: "智力", Value: ptr(150), IsGA: true}},
		Aspect:      ocr.ExtractedAffix{Name: "刀鋒大師", Value: ptr(18)},
	}}
	srv, bs := newTestServer(t, ex)

	body, ct := multipartBody(t, nil, "shot.png", pngBytes)
	resp, err := http.Post(srv.URL+"/ocr", ct, body)
	require.NoError(t, err)
	out := readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode, out)

	assert.Equal(t, int64(925), gjson.Get(out, "item_power").Int())
	assert.Equal(t, "智力", gjson.Get(out, "base_affixes.0.name").String())
	assert.True(t, gjson.Get(out, "base_affixes.0.isGA").Bool())
	assert.Equal(t, "image/png", ex.gotMime)
	assert.Equal(t, pngBytes, ex.gotData)

	key := gjson.Get(out, "upload_key").String()
	require.True(t, strings.HasPrefix(key, "uploads/"), key)
	assert.True(t, strings.HasSuffix(key, ".png"), key)
	rc, err := bs.Get(key)
	require.NoError(t, err)
	stored, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, pngBytes, stored)

	resp, err = http.Get(srv.URL + "/" + key)
	require.NoError(t, err)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, string(pngBytes), readBody(t, resp))

	resp, err = http.Get(srv.URL + "/uploads/../affixes.json")
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEqual(t, http.StatusOK, resp.StatusCode)
}

func TestOCRErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"recognition", fmt.Errorf("%w: status=503", ocr.ErrRecognition), http.StatusBadGateway},
		{"invalid", fmt.Errorf("%w: missing field", ocr.ErrInvalidRecord), http.StatusUnprocessableEntity},
		{"other", io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv, _ := newTestServer(t, &fakeExtractor{err: c.err, drop: ocr.DropExtraction{ItemPower: 1}})
			body, ct := multipartBody(t, nil, "shot.png", pngBytes)
			resp, err := http.Post(srv.URL+"/ocr", ct, body)
			require.NoError(t, err)
			out := readBody(t, resp)
			assert.Equal(t, c.status, resp.StatusCode)
			assert.NotContains(t, out, "item_power")
		})
	}
}

func TestOCRRejectsMissingOrNonImage(t *testing.T) {
	srv, _ := newTestServer(t, &fakeExtractor{})

	body, ct := multipartBody(t, map[string]string{"x": "y"}, "", nil)
	resp, err := http.Post(srv.URL+"/ocr", ct, body)
	require.NoError(t, err)
	_ = readBody(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body, ct = multipartBody(t, nil, "notes.txt", []byte("just some text"))
	resp, err = http.Post(srv.URL+"/ocr", ct, body)
	require.NoError(t, err)
	_ = readBody(t, resp)
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestCalculateImage(t *testing.T) {
	ex := &fakeExtractor{drop: ocr.DropExtraction{
		ItemPower:   800,
		BaseAffixes: []ocr.ExtractedAffix{{Name: "智力", Value: ptr(150)}},
	}}
	srv, _ := newTestServer(t, ex)

	target, err := json.Marshal(grading.Target{
		Base:   []grading.AffixRequirement{{Name: "智力", Min: ptr(100)}},
		Temper: []grading.AffixRequirement{{Name: "【攻擊】召喚傷害"}},
	})
	require.NoError(t, err)
	body, ct := multipartBody(t, map[string]string{"target": string(target)}, "shot.png", pngBytes)
	resp, err := http.Post(srv.URL+"/calculate/image", ct, body)
	require.NoError(t, err)
	out := readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode, out)

	// the screenshot shows no tempers, so both slots are empty and nothing is bricked.
	assert.Equal(t, int64(2), gjson.Get(out, "drop.drop_temper.#").Int())
	assert.Equal(t, int64(100), gjson.Get(out, "result.score").Int())
	assert.Equal(t, "perfect", gjson.Get(out, "result.tier").String())
	assert.Equal(t, "ℹ️ [回火] 【攻擊】召喚傷害: 尚未回火", gjson.Get(out, "result.matched_affixes.1").String())
}

func TestCalculateImageBadTarget(t *testing.T) {
	ex := &fakeExtractor{}
	srv, _ := newTestServer(t, ex)
	body, ct := multipartBody(t, map[string]string{"target": "{nope"}, "shot.png", pngBytes)
	resp, err := http.Post(srv.URL+"/calculate/image", ct, body)
	require.NoError(t, err)
	_ = readBody(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Nil(t, ex.gotData, "extractor must not be called")
}

func TestAffixes(t *testing.T) {
	srv, _ := newTestServer(t, &fakeExtractor{})

	resp, err := http.Get(srv.URL + "/affixes")
	require.NoError(t, err)
	out := readBody(t, resp)
	assert.Equal(t, "死靈法師", gjson.Get(out, "Necromancer.label").String())

	resp, err = http.Get(srv.URL + "/affixes/Necromancer")
	require.NoError(t, err)
	out = readBody(t, resp)
	assert.Equal(t, "💀", gjson.Get(out, "icon").String())

	resp, err = http.Get(srv.URL + "/affixes/Druid")
	require.NoError(t, err)
	_ = readBody(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/affixes/Necromancer/suggest?q=" + url.QueryEscape("生命"))
	require.NoError(t, err)
	out = readBody(t, resp)
	assert.Equal(t, "最大生命", gjson.Get(out, "suggestions.0").String())

	resp, err = http.Get(srv.URL + "/affixes/Necromancer/suggest?kind=temper&q=" + url.QueryEscape("召喚"))
	require.NoError(t, err)
	out = readBody(t, resp)
	assert.Equal(t, "【攻擊】召喚傷害", gjson.Get(out, "suggestions.0").String())

	resp, err = http.Get(srv.URL + "/affixes/Necromancer/suggest?kind=weapon")
	require.NoError(t, err)
	_ = readBody(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMasterwork(t *testing.T) {
	srv, _ := newTestServer(t, &fakeExtractor{})

	resp, err := http.Get(srv.URL + "/masterwork?value=100&rank=2")
	require.NoError(t, err)
	out := readBody(t, resp)
	assert.Equal(t, 175.0, gjson.Get(out, "masterworked").Float())
	assert.Equal(t, 1.75, gjson.Get(out, "multiplier").Float())

	for _, q := range []string{"value=x&rank=1", "value=1&rank=7", "value=1"} {
		resp, err := http.Get(srv.URL + "/masterwork?" + q)
		require.NoError(t, err)
		_ = readBody(t, resp)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestHealthProbes(t *testing.T) {
	srv, _ := newTestServer(t, &fakeExtractor{})
	for _, p := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(srv.URL + p)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, p)
	}
}
