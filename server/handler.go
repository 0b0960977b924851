// Package server exposes the translation pipeline over HTTP.
//
// A client posts a multipart form with a "file" part holding a .properties
// document and a "language" field naming the target language. The response
// body is the translated document, offered as an attachment named
// messages_<lang>.properties.
package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/minios-linux/proptrans/config"
	"github.com/minios-linux/proptrans/langmeta"
	"github.com/minios-linux/proptrans/propfile"
	"github.com/minios-linux/proptrans/translate"
)

const (
	// MaxFileSize is the largest accepted upload.
	MaxFileSize = 5 << 20
	// maxBodySize leaves room for multipart framing around the file.
	maxBodySize = MaxFileSize + 1<<20
	// FailuresHeader carries the number of entries left untranslated.
	FailuresHeader = "X-Translation-Failures"
)

var (
	errMethod            = errors.New("invalid request method")
	errMissingFields     = errors.New("missing file or language")
	errTooLarge          = errors.New("file too large")
	errUnsupportedLang   = errors.New("unsupported language")
	errTranslationFailed = errors.New("translation service error")
)

// responseMessages holds the response body for each request error.
var responseMessages = map[error]string{
	errMethod:            "Invalid request method. Use POST.",
	errMissingFields:     "File and language parameters are required.",
	errTooLarge:          "File too large. Maximum size is 5MB.",
	errTranslationFailed: "Translation service error",
}

// internalMessage is the body for errors without an entry in responseMessages.
const internalMessage = "Internal server error"

// errorStatus maps request errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, errMethod):
		return http.StatusMethodNotAllowed
	case errors.Is(err, errMissingFields), errors.Is(err, errUnsupportedLang):
		return http.StatusBadRequest
	case errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// responseMessage returns the body sent to the client for err. Error
// details stay in the log.
func responseMessage(err error) string {
	var unsupported *unsupportedLanguageError
	if errors.As(err, &unsupported) {
		return unsupported.message()
	}
	for sentinel, msg := range responseMessages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	return internalMessage
}

// unsupportedLanguageError keeps the raw code for the response message.
type unsupportedLanguageError struct {
	raw string
}

func (e *unsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language code %q", e.raw)
}

func (e *unsupportedLanguageError) Unwrap() error {
	return errUnsupportedLang
}

func (e *unsupportedLanguageError) message() string {
	return fmt.Sprintf("Unsupported language code: %s. Supported languages: %s", e.raw, langmeta.SupportedList())
}

// Handler serves translation requests.
type Handler struct {
	translator translate.Translator
	logger     *slog.Logger
	batchSize  int
}

// NewHandler creates a Handler backed by tr.
func NewHandler(tr translate.Translator, logger *slog.Logger, cfg config.TranslateConfig) *Handler {
	return &Handler{translator: tr, logger: logger, batchSize: cfg.BatchSize}
}

// request is a validated translation request.
type request struct {
	data     []byte
	filename string
	lang     string
}

// ServeHTTP validates the upload, translates it and returns the document.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := h.readRequest(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	log := h.logger.With(
		slog.String("request_id", RequestIDFromContext(ctx)),
		slog.String("language", req.lang),
	)

	// A document without translatable entries is returned as uploaded,
	// without contacting the backend.
	f := propfile.Parse(req.data)
	if len(translate.Units(f)) > 0 {
		if err := translate.Probe(ctx, h.translator, req.lang); err != nil {
			h.writeError(w, r, fmt.Errorf("%w: %v", errTranslationFailed, err))
			return
		}
	}

	res := translate.TranslateFile(ctx, h.translator, f, translate.Options{
		Language:  req.lang,
		BatchSize: h.batchSize,
		OnLog: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
		OnError: func(format string, args ...any) {
			log.Warn(fmt.Sprintf(format, args...))
		},
	})

	log.Info("translation finished",
		slog.String("file", req.filename),
		slog.Int("entries", res.Entries),
		slog.Int("translated", res.Translated),
		slog.Int("skipped", res.Skipped),
		slog.Int("failed", res.Failed),
	)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, config.OutputName(req.lang)))
	if res.Failed > 0 {
		w.Header().Set(FailuresHeader, strconv.Itoa(res.Failed))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, res.Text)
}

// readRequest validates method, fields, size and language, in that order.
// Nothing is parsed as .properties until all checks pass.
func (h *Handler) readRequest(w http.ResponseWriter, r *http.Request) (*request, error) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		return nil, errMethod
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := r.ParseMultipartForm(MaxFileSize); err != nil {
		if isBodyTooLarge(err) {
			return nil, errTooLarge
		}
		return nil, errMissingFields
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	values := r.MultipartForm.Value["language"]
	if len(files) == 0 || len(values) == 0 || values[0] == "" {
		return nil, errMissingFields
	}

	fh := files[0]
	if fh.Size > MaxFileSize {
		return nil, errTooLarge
	}

	raw := values[0]
	lang := langmeta.Normalize(raw)
	if !langmeta.IsSupported(lang) {
		return nil, &unsupportedLanguageError{raw: raw}
	}

	data, err := readPart(fh)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	return &request{data: data, filename: fh.Filename, lang: lang}, nil
}

// isBodyTooLarge reports whether err came from the MaxBytesReader limit.
// Some multipart read paths drop the wrapped error and keep only its text.
func isBodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large")
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	level := slog.LevelInfo
	if status >= 500 {
		level = slog.LevelError
	}
	h.logger.LogAttrs(r.Context(), level, "request rejected",
		slog.Int("status", status),
		slog.String("error", err.Error()),
		slog.String("request_id", RequestIDFromContext(r.Context())),
	)
	writeText(w, status, responseMessage(err))
}

// writeText writes msg as a plain-text body without a trailing newline.
func writeText(w http.ResponseWriter, status int, msg string) {
	h := w.Header()
	h.Del("Content-Length")
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}
