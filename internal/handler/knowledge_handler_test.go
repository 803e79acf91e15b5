package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaf-care-go/internal/model"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w, _ := env.do(t, http.MethodGet, "/api/v1/plant/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), "植物养护AI助手后端运行正常")
}

func TestKnowledgeEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.do(t, http.MethodGet, "/api/v1/plant/knowledge", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Knowledge []model.KnowledgePreview `json:"knowledge"`
	}
	decode(t, resp.Data, &list)
	assert.Len(t, list.Knowledge, 4)

	w, resp = env.do(t, http.MethodGet, "/api/v1/plant/knowledge/"+url.PathEscape("病虫害防治"), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var article model.KnowledgeArticle
	decode(t, resp.Data, &article)
	assert.Equal(t, "植物常见病虫害防治方法", article.Title)

	w, _ = env.do(t, http.MethodGet, "/api/v1/plant/knowledge/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp = env.do(t, http.MethodGet, "/api/v1/plant/knowledge/search?q="+url.QueryEscape("绿萝"), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var hits struct {
		Knowledge []model.KnowledgePreview `json:"knowledge"`
	}
	decode(t, resp.Data, &hits)
	var ids []string
	for _, h := range hits.Knowledge {
		ids = append(ids, h.ID)
	}
	assert.Contains(t, ids, "绿萝养护技巧")
	assert.NotContains(t, ids, "病虫害防治")
}

func imageRequest(t *testing.T, bearer, filename, contentType string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plant/analyze-image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+bearer)
	return req
}

func TestAnalyzeImage(t *testing.T) {
	env := newTestEnv(t)
	alice := env.login(t, "alice")

	w, resp := env.serve(t, imageRequest(t, alice, "leaf.png", "image/png", []byte("\x89PNG")))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var data struct {
		Success  bool                `json:"success"`
		Analysis model.ImageAnalysis `json:"analysis"`
	}
	decode(t, resp.Data, &data)
	assert.True(t, data.Success)
	assert.Equal(t, "良好", data.Analysis.Health)
	assert.True(t, strings.HasPrefix(data.Analysis.ImageURL, "http://minio.local/uploads/"))
	assert.Len(t, env.store.objects, 1)

	w, _ = env.serve(t, imageRequest(t, alice, "notes.txt", "text/plain", []byte("hello")))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plant/analyze-image", nil)
	req.Header.Set("Authorization", "Bearer "+alice)
	w, _ = env.serve(t, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
