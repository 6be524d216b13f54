package controller

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigernone/corpusqa/internal/dto"
	"github.com/tigernone/corpusqa/internal/pkg/serverutils"
)

type stubIngestService struct {
	lastReq     dto.UploadCorpusRequest
	lastReplace bool
}

func (s *stubIngestService) Upload(_ context.Context, req dto.UploadCorpusRequest, replace bool) (*dto.UploadCorpusResponse, error) {
	s.lastReq = req
	s.lastReplace = replace
	return &dto.UploadCorpusResponse{DocumentID: "doc-1", Name: req.Name, SentenceCount: 2, Replaced: replace}, nil
}

func (s *stubIngestService) Stats(_ context.Context) (*dto.CorpusStatsResponse, error) {
	return &dto.CorpusStatsResponse{}, nil
}

func (s *stubIngestService) Clear(_ context.Context) error {
	return nil
}

func newCorpusTestApp(s *stubIngestService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewCorpusController(s).RegisterRoutes(app.Group("/api"))
	return app
}

func TestCorpusUpload(t *testing.T) {
	t.Run("json body", func(t *testing.T) {
		stub := &stubIngestService{}
		app := newCorpusTestApp(stub)

		body := `{"name":"kjv","text":"In the beginning God created the heaven and the earth.","mode":"auto"}`
		req := httptest.NewRequest(fiber.MethodPost, "/api/corpus/v1/upload", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		res, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)
		assert.Equal(t, "kjv", stub.lastReq.Name)
		assert.False(t, stub.lastReplace)
	})

	t.Run("multipart txt file", func(t *testing.T) {
		stub := &stubIngestService{}
		app := newCorpusTestApp(stub)

		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		fw, err := w.CreateFormFile("file", "kjv.txt")
		require.NoError(t, err)
		_, err = fw.Write([]byte("And God said, Let there be light: and there was light.\n"))
		require.NoError(t, err)
		require.NoError(t, w.WriteField("mode", "line"))
		require.NoError(t, w.Close())

		req := httptest.NewRequest(fiber.MethodPost, "/api/corpus/v1/upload", &buf)
		req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())

		res, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)
		assert.Equal(t, "kjv.txt", stub.lastReq.Name, "file name stands in when no name field is sent")
		assert.Equal(t, "line", stub.lastReq.Mode)
		assert.Contains(t, stub.lastReq.Text, "Let there be light")
	})

	t.Run("invalid body rejected", func(t *testing.T) {
		stub := &stubIngestService{}
		app := newCorpusTestApp(stub)

		req := httptest.NewRequest(fiber.MethodPost, "/api/corpus/v1/upload", strings.NewReader(`{"name":"kjv","text":"short"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		res, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
	})

	t.Run("replace flag reaches the service", func(t *testing.T) {
		stub := &stubIngestService{}
		app := newCorpusTestApp(stub)

		body := `{"name":"kjv","text":"In the beginning God created the heaven and the earth."}`
		req := httptest.NewRequest(fiber.MethodPost, "/api/corpus/v1/replace", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		res, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)
		assert.True(t, stub.lastReplace)
	})
}
