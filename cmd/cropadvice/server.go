package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-cropadvice/pkg/advice"
	"github.com/goliatone/go-cropadvice/pkg/classifier"
	"github.com/goliatone/go-cropadvice/pkg/contract"
	"github.com/goliatone/go-cropadvice/pkg/history"
	"github.com/goliatone/go-cropadvice/pkg/model"
	"github.com/goliatone/go-cropadvice/pkg/orchestrator"
	"github.com/goliatone/go-cropadvice/pkg/render"
	"github.com/goliatone/go-cropadvice/pkg/renderers/blockjson"
	"github.com/goliatone/go-cropadvice/pkg/renderers/vanilla"
)

const (
	requestIDHeader = "X-Request-ID"
	// multipart framing on top of the image itself
	formOverheadBytes = 1 << 20
	maxJSONBodyBytes  = 1 << 20
)

type ctxKey int

const requestIDKey ctxKey = iota

// server holds the HTTP handlers. history is nil when disabled.
type server struct {
	orch           *orchestrator.Orchestrator
	page           *vanilla.Renderer
	catalogue      *model.Catalogue
	history        *history.Store
	logger         *zap.Logger
	maxUploadBytes int64
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/predict", s.handlePredict)
	mux.HandleFunc("POST /api/blocks", s.handleBlocks)
	mux.HandleFunc("POST /api/render", s.handleRender)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/history/{id}", s.handleHistoryEntry)
	mux.HandleFunc("GET /api/openapi.yaml", s.handleContract)
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(vanilla.AssetsFS())))
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return s.withRequestID(mux)
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (s *server) handleContract(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(contract.Raw())
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.writeUploadPage(w, r, http.StatusOK, "", r.URL.Query().Get("crop"))
}

func (s *server) writeUploadPage(w http.ResponseWriter, r *http.Request, status int, message, selected string) {
	cfg, err := s.themeConfig(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	body, err := s.page.RenderUpload(r.Context(), vanilla.UploadPage{
		Crops:          s.catalogue.Names(),
		Selected:       model.NormalizeCropName(selected),
		Error:          message,
		MaxUploadBytes: s.maxUploadBytes,
		Theme:          cfg,
	})
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", s.page.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	upload, status, err := s.readUpload(w, r)
	if err != nil {
		s.writeUploadPage(w, r, status, uploadMessage(err), upload.crop)
		return
	}

	cfg, err := s.themeConfig(r)
	if err != nil {
		s.writeUploadPage(w, r, http.StatusBadRequest, err.Error(), upload.crop)
		return
	}

	outcome, err := s.orch.Analyze(r.Context(), orchestrator.AnalyzeRequest{
		Crop:        upload.crop,
		Filename:    upload.filename,
		ContentType: upload.image.ContentType,
		Image:       bytes.NewReader(upload.data),
		Renderer:    vanilla.Name,
		RenderOptions: render.RenderOptions{
			ImageURL: dataURL(upload.image.ContentType, upload.data),
			BackURL:  "/",
			Theme:    cfg,
		},
		RequestID: requestID(r.Context()),
	})
	if err != nil {
		status := analyzeStatus(err)
		s.logFailure(r, status, err)
		s.writeUploadPage(w, r, status, "The analysis failed: "+err.Error(), upload.crop)
		return
	}

	w.Header().Set("Content-Type", outcome.ContentType)
	_, _ = w.Write(outcome.Output)
}

func (s *server) handlePredict(w http.ResponseWriter, r *http.Request) {
	upload, status, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, r, status, err)
		return
	}

	outcome, err := s.orch.Analyze(r.Context(), orchestrator.AnalyzeRequest{
		Crop:        upload.crop,
		Filename:    upload.filename,
		ContentType: upload.image.ContentType,
		Image:       bytes.NewReader(upload.data),
		Renderer:    blockjson.Name,
		RequestID:   requestID(r.Context()),
	})
	if err != nil {
		s.writeError(w, r, analyzeStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", outcome.ContentType)
	_, _ = w.Write(outcome.Output)
}

type blocksRequest struct {
	Advice string `json:"advice"`
}

func (s *server) handleBlocks(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	if err != nil {
		s.writeError(w, r, bodyStatus(err), fmt.Errorf("read body: %w", err))
		return
	}

	text := string(body)
	if isJSON(r) {
		var req blocksRequest
		if err := json.Unmarshal(body, &req); err != nil {
			s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
			return
		}
		text = req.Advice
	}

	blocks := advice.Parse(text)
	writeJSON(w, http.StatusOK, map[string]any{
		"blocks": blocks,
		"kinds":  advice.Kinds(blocks),
	})
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	var result model.ClassificationResult
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	if err := decoder.Decode(&result); err != nil {
		s.writeError(w, r, bodyStatus(err), fmt.Errorf("decode result: %w", err))
		return
	}

	cfg, err := s.themeConfig(r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	query := r.URL.Query()
	outcome, err := s.orch.Render(r.Context(), orchestrator.RenderRequest{
		Result:   result,
		Renderer: strings.TrimSpace(query.Get("renderer")),
		RenderOptions: render.RenderOptions{
			Title:   query.Get("title"),
			BackURL: "/",
			Theme:   cfg,
		},
	})
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, render.ErrUnknownRenderer):
			status = http.StatusBadRequest
		case errors.Is(err, model.ErrUnknownCrop), errors.Is(err, model.ErrUnknownDisease):
			status = http.StatusUnprocessableEntity
		}
		s.writeError(w, r, status, err)
		return
	}

	w.Header().Set("Content-Type", outcome.ContentType)
	_, _ = w.Write(outcome.Output)
}

func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.NotFound(w, r)
		return
	}

	limit := history.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("limit must be a positive integer"))
			return
		}
		limit = n
	}

	entries, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"analyses": entries})
}

func (s *server) handleHistoryEntry(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.NotFound(w, r)
		return
	}
	entry, err := s.history.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, history.ErrNotFound) {
		s.writeError(w, r, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type upload struct {
	crop     string
	filename string
	image    classifier.ImageInfo
	data     []byte
}

// readUpload parses the crop/file form shared by /analyze and /api/predict.
// The returned status applies when err is non-nil.
func (s *server) readUpload(w http.ResponseWriter, r *http.Request) (upload, int, error) {
	var out upload

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+formOverheadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return out, http.StatusBadRequest, fmt.Errorf("expected a multipart form: %w", err)
		}
		return out, bodyStatus(err), fmt.Errorf("read form: %w", err)
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	out.crop = r.FormValue("crop")
	crop, ok := s.catalogue.Lookup(out.crop)
	if !ok {
		if strings.TrimSpace(out.crop) == "" {
			return out, http.StatusBadRequest, classifier.ErrMissingCrop
		}
		return out, http.StatusBadRequest, fmt.Errorf("%w: %q", model.ErrUnknownCrop, out.crop)
	}
	out.crop = crop.Name

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return out, http.StatusBadRequest, classifier.ErrMissingImage
		}
		return out, http.StatusBadRequest, fmt.Errorf("read file: %w", err)
	}
	defer file.Close()

	info, data, err := classifier.ValidateImage(file, s.maxUploadBytes)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, classifier.ErrImageTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		return out, status, err
	}
	out.filename = uploadFilename(header)
	out.image = info
	out.data = data
	return out, 0, nil
}

func uploadFilename(header *multipart.FileHeader) string {
	if header == nil {
		return ""
	}
	return header.Filename
}

func (s *server) themeConfig(r *http.Request) (*theme.RendererConfig, error) {
	return s.orch.ThemeConfig("", strings.TrimSpace(r.URL.Query().Get("variant")))
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.logFailure(r, status, err)
	writeJSON(w, status, map[string]string{
		"error":      err.Error(),
		"request_id": requestID(r.Context()),
	})
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.logFailure(r, status, err)
	http.Error(w, http.StatusText(status), status)
}

func (s *server) logFailure(r *http.Request, status int, err error) {
	log := s.logger.Warn
	if status >= http.StatusInternalServerError {
		log = s.logger.Error
	}
	log("request failed",
		zap.Error(err),
		zap.Int("status", status),
		zap.String("path", r.URL.Path),
		zap.String("request_id", requestID(r.Context())),
	)
}

func analyzeStatus(err error) int {
	switch {
	case errors.Is(err, orchestrator.ErrClassify),
		errors.Is(err, model.ErrUnknownCrop),
		errors.Is(err, model.ErrUnknownDisease):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func bodyStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func uploadMessage(err error) string {
	switch {
	case errors.Is(err, classifier.ErrMissingCrop):
		return "Please choose a crop."
	case errors.Is(err, model.ErrUnknownCrop):
		return "That crop is not supported."
	case errors.Is(err, classifier.ErrMissingImage):
		return "Please choose an image to upload."
	case errors.Is(err, classifier.ErrImageTooLarge):
		return "The image is too large."
	case errors.Is(err, classifier.ErrUnsupportedImage):
		return "The file is not a JPEG, PNG, GIF or WebP image."
	default:
		return "The upload could not be read."
	}
}

// isJSON reports whether the request declares a JSON body. Plain advice text
// is never sniffed, since it may itself start with a brace.
func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func dataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// statusRecorder captures the status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withRequestID assigns every request an id, echoes it in X-Request-ID and
// logs the outcome.
func (s *server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		started := time.Now()
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))

		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(started)),
			zap.String("request_id", id),
		)
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
