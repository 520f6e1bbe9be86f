package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/goliatone/go-cropadvice/internal/config"
	"github.com/goliatone/go-cropadvice/pkg/prompt"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Classifier.Mode = config.ModeStatic
	return cfg
}

func testApp(t *testing.T, cfg *config.Config) *app {
	t.Helper()
	return &app{
		cfg:    cfg,
		logger: zap.NewNop(),
		in:     strings.NewReader(""),
		out:    &bytes.Buffer{},
		errOut: &bytes.Buffer{},
		prompt: &prompt.Scripted{},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *server {
	t.Helper()
	srv, cleanup, err := testApp(t, cfg).newServer(context.Background(), true)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return srv
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for x := 0; x < 4; x++ {
		for y := 0; y < 3; y++ {
			img.Set(x, y, color.RGBA{G: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// uploadRequest builds a multipart crop/file form. Empty filename skips the
// file part.
func uploadRequest(t *testing.T, target, crop, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if crop != "" {
		require.NoError(t, writer.WriteField("crop", crop))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func serveRequest(t *testing.T, handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}
