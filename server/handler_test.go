package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/minios-linux/proptrans/config"
	"github.com/minios-linux/proptrans/translate"
)

// recordingTranslator translates through a dictionary and records every call.
type recordingTranslator struct {
	mu    sync.Mutex
	dict  map[string]string
	fail  map[string]bool
	texts []string
	langs []string
}

func (r *recordingTranslator) Translate(_ context.Context, text, lang string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	r.langs = append(r.langs, lang)
	if r.fail[text] {
		return "", errors.New("backend unavailable")
	}
	if out, ok := r.dict[text]; ok {
		return out, nil
	}
	if text == translate.ProbeText {
		return "ok", nil
	}
	return text, nil
}

func (r *recordingTranslator) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.texts)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler(tr translate.Translator) *Handler {
	return NewHandler(tr, discardLogger(), config.TranslateConfig{BatchSize: translate.DefaultBatchSize})
}

// multipartBody builds a form with an optional file part and optional
// language field.
func multipartBody(t *testing.T, file *string, lang *string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if file != nil {
		fw, err := mw.CreateFormFile("file", "messages.properties")
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := io.WriteString(fw, *file); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if lang != nil {
		if err := mw.WriteField("language", *lang); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func postForm(t *testing.T, h http.Handler, file, lang string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, &file, &lang)
	req := httptest.NewRequest(http.MethodPost, "/translate", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func ptr(s string) *string { return &s }

func TestHandler_RejectsNonPost(t *testing.T) {
	tr := &recordingTranslator{}
	rec := httptest.NewRecorder()
	newTestHandler(tr).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/translate", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if got := rec.Body.String(); got != "Invalid request method. Use POST." {
		t.Errorf("body = %q", got)
	}
	if tr.calls() != 0 {
		t.Errorf("translator called %d times", tr.calls())
	}
}

func TestHandler_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		file *string
		lang *string
	}{
		{"both missing", nil, nil},
		{"no file", nil, ptr("fr")},
		{"no language", ptr("a=b"), nil},
		{"empty language", ptr("a=b"), ptr("")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := &recordingTranslator{}
			body, ct := multipartBody(t, tc.file, tc.lang)
			req := httptest.NewRequest(http.MethodPost, "/translate", body)
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()
			newTestHandler(tr).ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if got := rec.Body.String(); got != "File and language parameters are required." {
				t.Errorf("body = %q", got)
			}
			if tr.calls() != 0 {
				t.Errorf("translator called %d times", tr.calls())
			}
		})
	}

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/translate", strings.NewReader("file=a&language=fr"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		newTestHandler(&recordingTranslator{}).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandler_FileTooLarge(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"body over limit", 6 << 20},
		{"file just over limit", MaxFileSize + 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := &recordingTranslator{}
			rec := postForm(t, newTestHandler(tr), strings.Repeat("x", tc.size), "fr")

			if rec.Code != http.StatusRequestEntityTooLarge {
				t.Fatalf("status = %d, want 413", rec.Code)
			}
			if got := rec.Body.String(); got != "File too large. Maximum size is 5MB." {
				t.Errorf("body = %q", got)
			}
			if tr.calls() != 0 {
				t.Errorf("translator called %d times", tr.calls())
			}
		})
	}
}

func TestHandler_AcceptsFileAtLimit(t *testing.T) {
	tr := &recordingTranslator{}
	rec := postForm(t, newTestHandler(tr), "# "+strings.Repeat("x", MaxFileSize-2), "fr")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHandler_UnsupportedLanguage(t *testing.T) {
	for _, lang := range []string{"invalid-lang", "xx-yy"} {
		t.Run(lang, func(t *testing.T) {
			tr := &recordingTranslator{}
			rec := postForm(t, newTestHandler(tr), "test=Test", lang)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			body := rec.Body.String()
			if !strings.HasPrefix(body, "Unsupported language code: "+lang+". Supported languages: ") {
				t.Errorf("body = %q", body)
			}
			if !strings.Contains(body, "de, el, en") {
				t.Errorf("body does not list supported languages: %q", body)
			}
			if tr.calls() != 0 {
				t.Errorf("translator called %d times", tr.calls())
			}
		})
	}
}

func TestHandler_BackendUnavailable(t *testing.T) {
	tr := &recordingTranslator{fail: map[string]bool{translate.ProbeText: true}}
	rec := postForm(t, newTestHandler(tr), "test=Test", "fr")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := rec.Body.String(); got != "Translation service error" {
		t.Errorf("body = %q", got)
	}
	if strings.Contains(rec.Body.String(), "backend unavailable") {
		t.Errorf("backend detail leaked into the body: %q", rec.Body.String())
	}
	if tr.calls() != 1 {
		t.Errorf("calls = %d, want only the availability check", tr.calls())
	}
}

func TestHandler_NormalizesLanguageAndPreservesFormatting(t *testing.T) {
	tr := &recordingTranslator{dict: map[string]string{
		"Hello":   "Bonjour",
		"Goodbye": "Au revoir",
	}}
	rec := postForm(t, newTestHandler(tr), "# Heading\r\n\r\n greeting=Hello\r\nfarewell = Goodbye\r\n", "FR-ca")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %q", rec.Code, rec.Body.String())
	}
	if got, want := rec.Body.String(), "# Heading\r\n\r\n greeting=Bonjour\r\nfarewell = Au revoir\r\n"; got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="messages_fr.properties"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/plain; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get(FailuresHeader); got != "" {
		t.Errorf("%s = %q, want absent", FailuresHeader, got)
	}
	if tr.texts[0] != translate.ProbeText {
		t.Errorf("first call = %q, want the availability check", tr.texts[0])
	}
	if len(tr.langs) != 3 {
		t.Errorf("calls = %d, want 3", len(tr.langs))
	}
	for i, lang := range tr.langs {
		if lang != "fr" {
			t.Errorf("call %d target = %q, want fr", i, lang)
		}
	}
}

func TestHandler_Scenarios(t *testing.T) {
	dict := map[string]string{
		"Hi":    "Salut",
		"Bye":   "Au revoir",
		"Hello": "Bonjour",
		"One":   "Un",
		"Three": "Trois",
		"Hello " + translate.Delimiter + "World": "Bonjour " + translate.Delimiter + "Monde",
	}

	tests := []struct {
		name      string
		input     string
		lang      string
		fail      string
		want      string
		failures  string
		wantCalls int
	}{
		{
			name:      "single entry",
			input:     "key=Hello",
			lang:      "fr",
			want:      "key=Bonjour",
			wantCalls: 2,
		},
		{
			name:      "colon and whitespace separators",
			input:     "colon:Hi\nspace\tBye\n",
			lang:      "fr",
			want:      "colon:Salut\nspace\tAu revoir\n",
			wantCalls: 3,
		},
		{
			name:      "multi-line continuation",
			input:     "multi=Hello \\\n  World\n",
			lang:      "fr",
			want:      "multi=Bonjour \\\n  Monde\n",
			wantCalls: 2,
		},
		{
			name:      "comments only",
			input:     "# one\n! two\n\n",
			lang:      "fr",
			want:      "# one\n! two\n\n",
			wantCalls: 0,
		},
		{
			name:      "one failure among many",
			input:     "a=One\nb=Two\nc=Three\n",
			lang:      "PT-br",
			fail:      "Two",
			want:      "a=Un\nb=Two\nc=Trois\n",
			failures:  "1",
			wantCalls: 4,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := &recordingTranslator{dict: dict, fail: map[string]bool{tc.fail: tc.fail != ""}}
			rec := postForm(t, newTestHandler(tr), tc.input, tc.lang)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %q", rec.Code, rec.Body.String())
			}
			if got := rec.Body.String(); got != tc.want {
				t.Errorf("body = %q, want %q", got, tc.want)
			}
			if got := rec.Header().Get(FailuresHeader); got != tc.failures {
				t.Errorf("%s = %q, want %q", FailuresHeader, got, tc.failures)
			}
			if tr.calls() != tc.wantCalls {
				t.Errorf("calls = %d, want %d", tr.calls(), tc.wantCalls)
			}
		})
	}
}

func TestHandler_LanguageInFilename(t *testing.T) {
	rec := postForm(t, newTestHandler(&recordingTranslator{}), "a=b", "PT-br")
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="messages_pt.properties"` {
		t.Errorf("Content-Disposition = %q", got)
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errMethod, http.StatusMethodNotAllowed},
		{errMissingFields, http.StatusBadRequest},
		{&unsupportedLanguageError{raw: "zz"}, http.StatusBadRequest},
		{errTooLarge, http.StatusRequestEntityTooLarge},
		{errTranslationFailed, http.StatusInternalServerError},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := errorStatus(tc.err); got != tc.want {
			t.Errorf("errorStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestHandler_NothingToTranslate(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty file", ""},
		{"comments and blanks", "# header\r\n\r\n! note\r\n"},
		{"empty values", "a=\nb:\n"},
		{"delimiter in value", "k=a" + translate.Delimiter + "b\n"},
		{"marker text in value", "k=__PH_0__ {x}\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Every call fails, so any contact with the backend would be a 500.
			tr := &recordingTranslator{fail: map[string]bool{translate.ProbeText: true}}
			rec := postForm(t, newTestHandler(tr), tc.input, "fr")

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %q", rec.Code, rec.Body.String())
			}
			if got := rec.Body.String(); got != tc.input {
				t.Errorf("body = %q, want input unchanged", got)
			}
			if tr.calls() != 0 {
				t.Errorf("calls = %d, want 0", tr.calls())
			}
			if got := rec.Header().Get(FailuresHeader); got != "" {
				t.Errorf("%s = %q, want absent", FailuresHeader, got)
			}
		})
	}
}

func TestResponseMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"method", errMethod, "Invalid request method. Use POST."},
		{"missing fields", errMissingFields, "File and language parameters are required."},
		{"too large", errTooLarge, "File too large. Maximum size is 5MB."},
		{"wrapped backend error", fmt.Errorf("%w: %v", errTranslationFailed, errors.New("dial tcp: refused")), "Translation service error"},
		{"unexpected", errors.New("reading upload: EOF"), internalMessage},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := responseMessage(tc.err); got != tc.want {
				t.Errorf("responseMessage(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}

	t.Run("unsupported language", func(t *testing.T) {
		err := &unsupportedLanguageError{raw: "zz"}
		got := responseMessage(fmt.Errorf("validating: %w", err))
		if !strings.HasPrefix(got, "Unsupported language code: zz. Supported languages: ") {
			t.Errorf("responseMessage = %q", got)
		}
		if !errors.Is(err, errUnsupportedLang) {
			t.Error("unsupportedLanguageError does not unwrap to errUnsupportedLang")
		}
	})
}

func TestSentinelErrorText(t *testing.T) {
	for _, err := range []error{errMethod, errMissingFields, errTooLarge, errUnsupportedLang, errTranslationFailed} {
		msg := err.Error()
		if msg != strings.ToLower(msg) || strings.HasSuffix(msg, ".") {
			t.Errorf("error text %q should be lowercase without trailing punctuation", msg)
		}
	}
}
