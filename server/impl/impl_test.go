package impl

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinmeme-project/coinmeme/pkg/layout"
	"github.com/coinmeme-project/coinmeme/pkg/memedb"
	"github.com/coinmeme-project/coinmeme/server/impl/caption"
	"github.com/coinmeme-project/coinmeme/server/impl/font"
	"github.com/coinmeme-project/coinmeme/server/impl/render"
)

type fakeChatClient struct {
	response string
}

func (f *fakeChatClient) ChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (string, error) {
	return f.response, nil
}

type recordingStorage struct {
	bucket string
	object string
	data   []byte
}

func (r *recordingStorage) SaveBytes(_ context.Context, bucketName, objectName string, data []byte) error {
	r.bucket = bucketName
	r.object = objectName
	r.data = data
	return nil
}

func testTemplates() []memedb.Template {
	return []memedb.Template{{
		Name:        "drake",
		Explanation: "Rejecting one thing, approving another",
		Schema: map[string]memedb.FieldSpec{
			"top_text":    {Description: "what drake rejects"},
			"bottom_text": {Description: "what drake approves"},
		},
		BoundingBoxes: map[string]layout.Box{
			"top_text":    {X: 0.75, Y: 0.25, Width: 0.45, Height: 0.4},
			"bottom_text": {X: 0.75, Y: 0.75, Width: 0.45, Height: 0.4},
		},
	}}
}

func newTestServer(t *testing.T, captionResponse string, archive Storage) *server {
	t.Helper()

	imageDir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 120, 120))
	for y := 0; y < 120; y++ {
		for x := 0; x < 120; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buffer bytes.Buffer
	require.NoError(t, jpeg.Encode(&buffer, img, nil))
	require.NoError(t, os.WriteFile(filepath.Join(imageDir, "drake.jpg"), buffer.Bytes(), 0o644))

	fonts, err := font.New("")
	require.NoError(t, err)

	briefs := []memedb.Brief{{Search: "dogecoin", Explanation: "to the moon"}}
	s := New(
		caption.New(&fakeChatClient{response: captionResponse}, "", 0),
		render.New(fonts, nil),
		testTemplates(),
		briefs,
		imageDir,
		archive,
	)
	s.now = func() time.Time { return time.Unix(1700000000, 0) }
	return s
}

func TestHandleGenerate(t *testing.T) {
	s := newTestServer(t, `{"top_text": "this", "bottom_text": "that"}`, Storage{})
	handler := s.Routes("", "")

	body := `{"topic": "dogecoin", "template": "drake"}`
	request := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	var response GenerateResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, map[string]string{"top_text": "this", "bottom_text": "that"}, response.Captions)
	assert.True(t, strings.HasPrefix(response.UriImage, "data:image/png;base64,"))
}

func TestHandleGenerateArchivesToStorage(t *testing.T) {
	archive := &recordingStorage{}
	s := newTestServer(t, `{"top_text": "a", "bottom_text": "b"}`, Storage{
		Client:       archive,
		OutputBucket: "meme-archive",
	})
	handler := s.Routes("", "")

	body := `{"topic": "dogecoin", "template": "drake"}`
	request := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "meme-archive", archive.bucket)
	assert.Equal(t, "meme-1700000000-drake.png", archive.object)
	assert.NotEmpty(t, archive.data)
}

func TestHandleGenerateValidation(t *testing.T) {
	s := newTestServer(t, `{}`, Storage{})
	handler := s.Routes("", "")

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "malformed json", body: `{"topic":`, wantStatus: http.StatusBadRequest},
		{name: "missing topic", body: `{"template": "drake"}`, wantStatus: http.StatusBadRequest},
		{name: "missing template", body: `{"topic": "dogecoin"}`, wantStatus: http.StatusBadRequest},
		{name: "unknown template", body: `{"topic": "dogecoin", "template": "nope"}`, wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(tt.body))
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)
			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

func TestHandleTemplatesHidesBoxes(t *testing.T) {
	s := newTestServer(t, `{}`, Storage{})
	handler := s.Routes("", "")

	request := httptest.NewRequest(http.MethodGet, "/api/templates", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	var summaries []TemplateSummary
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "drake", summaries[0].Name)
	assert.Equal(t, map[string]string{
		"top_text":    "what drake rejects",
		"bottom_text": "what drake approves",
	}, summaries[0].Fields)
	assert.NotContains(t, recorder.Body.String(), "bounding_boxes")
}

func TestHandleBriefs(t *testing.T) {
	s := newTestServer(t, `{}`, Storage{})
	handler := s.Routes("", "")

	request := httptest.NewRequest(http.MethodGet, "/api/briefs", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	var briefs []memedb.Brief
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&briefs))
	require.Len(t, briefs, 1)
	assert.Equal(t, "dogecoin", briefs[0].Search)
}

func TestAPIRequiresBearerToken(t *testing.T) {
	s := newTestServer(t, `{}`, Storage{})
	handler := s.Routes("secret", "")

	request := httptest.NewRequest(http.MethodGet, "/api/templates", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	request = httptest.NewRequest(http.MethodGet, "/api/templates", nil)
	request.Header.Set("Authorization", "Bearer secret")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
}
