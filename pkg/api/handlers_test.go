package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/schardosin/docqa/pkg/client"
	"github.com/schardosin/docqa/pkg/document"
	"github.com/schardosin/docqa/pkg/knowledge"
)

type fakeResponder struct {
	answer string
	err    error
	got    string
}

func (f *fakeResponder) GenerateResponse(ctx context.Context, query string, kb *knowledge.Base) (string, error) {
	f.got = query
	return f.answer, f.err
}

type testServer struct {
	router    *mux.Router
	store     *knowledge.Store
	responder *fakeResponder
	kbDir     string
	uploadDir string
}

func newTestServer(t *testing.T, maxUpload int64) *testServer {
	t.Helper()
	dir := t.TempDir()
	kbDir := filepath.Join(dir, "knowledge_base")
	uploadDir := filepath.Join(dir, "uploads")

	store, err := knowledge.NewStore(kbDir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	responder := &fakeResponder{answer: "Forty-two."}
	h, err := NewHandler(document.NewProcessor(20, 5), store, responder, uploadDir, maxUpload)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	router := mux.NewRouter()
	h.RegisterRoutes(router)
	return &testServer{router: router, store: store, responder: responder, kbDir: kbDir, uploadDir: uploadDir}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write([]byte(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

const bookText = "The answer to life the universe and everything is forty-two according to the book"

func TestUploadHandler(t *testing.T) {
	s := newTestServer(t, 1<<20)

	rec := s.do(uploadRequest(t, "file", "my guide.txt", bookText))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp UploadResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Filename != "my_guide.txt" {
		t.Errorf("filename = %q", resp.Filename)
	}
	if resp.Chunks == 0 {
		t.Error("expected chunks")
	}
	if resp.Preview != bookText {
		t.Errorf("preview = %q", resp.Preview)
	}

	kb := s.store.Current()
	if kb == nil || kb.Filename != "my_guide.txt" || kb.TotalChunks != resp.Chunks {
		t.Fatalf("current = %+v", kb)
	}
	if _, err := os.Stat(filepath.Join(s.kbDir, "my_guide_kb.json")); err != nil {
		t.Errorf("knowledge base file missing: %v", err)
	}
	entries, _ := os.ReadDir(s.uploadDir)
	if len(entries) != 0 {
		t.Errorf("upload dir should be empty, has %d entries", len(entries))
	}
}

func TestUploadHandlerErrors(t *testing.T) {
	tests := []struct {
		name          string
		field         string
		filename      string
		content       string
		expectedCode  int
		expectedError string
	}{
		{
			name:          "wrong field",
			field:         "document",
			filename:      "a.txt",
			content:       bookText,
			expectedCode:  http.StatusBadRequest,
			expectedError: "No file provided",
		},
		{
			name:          "unsupported type",
			field:         "file",
			filename:      "a.docx",
			content:       bookText,
			expectedCode:  http.StatusBadRequest,
			expectedError: "Invalid file type. Only PDF, TXT, MD and HTML allowed",
		},
		{
			name:          "too short",
			field:         "file",
			filename:      "a.md",
			content:       "  tiny ",
			expectedCode:  http.StatusBadRequest,
			expectedError: "Could not extract text from file or file is too short",
		},
		{
			name:          "broken pdf",
			field:         "file",
			filename:      "a.pdf",
			content:       "not really a pdf",
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Error processing file: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, 1<<20)
			rec := s.do(uploadRequest(t, tt.field, tt.filename, tt.content))
			if rec.Code != tt.expectedCode {
				t.Fatalf("status = %d, expected %d", rec.Code, tt.expectedCode)
			}
			if msg := decodeError(t, rec); !strings.HasPrefix(msg, tt.expectedError) {
				t.Errorf("error = %q, expected prefix %q", msg, tt.expectedError)
			}
			if s.store.Current() != nil {
				t.Error("failed upload must not set a knowledge base")
			}
		})
	}
}

func TestUploadHandlerTooLarge(t *testing.T) {
	s := newTestServer(t, 1024)
	rec := s.do(uploadRequest(t, "file", "big.txt", strings.Repeat("word ", 1000)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d", rec.Code)
	}
}

func chatRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestChatHandler(t *testing.T) {
	s := newTestServer(t, 1<<20)

	rec := s.do(chatRequest(`{"message":"hi"}`))
	if rec.Code != http.StatusBadRequest || decodeError(t, rec) != "No document uploaded. Please upload a document first." {
		t.Fatalf("chat without document: %d", rec.Code)
	}

	if rec := s.do(uploadRequest(t, "file", "book.txt", bookText)); rec.Code != http.StatusOK {
		t.Fatalf("upload failed: %d", rec.Code)
	}

	tests := []struct {
		name          string
		body          string
		expectedError string
	}{
		{name: "missing message", body: `{}`, expectedError: "No message provided"},
		{name: "invalid json", body: `{`, expectedError: "No message provided"},
		{name: "blank message", body: `{"message":"   "}`, expectedError: "Message cannot be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(chatRequest(tt.body))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rec.Code)
			}
			if msg := decodeError(t, rec); msg != tt.expectedError {
				t.Errorf("error = %q", msg)
			}
		})
	}

	rec = s.do(chatRequest(`{"message":"what is the answer?"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp ChatResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Response != "Forty-two." || resp.Source != "book.txt" {
		t.Errorf("response = %+v", resp)
	}
	if s.responder.got != "what is the answer?" {
		t.Errorf("responder got %q", s.responder.got)
	}

	s.responder.err = errors.New("model offline")
	rec = s.do(chatRequest(`{"message":"again"}`))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "Error generating response: model offline" {
		t.Errorf("error = %q", msg)
	}
}

func TestStatusAndReset(t *testing.T) {
	s := newTestServer(t, 1<<20)

	status := func() StatusResponse {
		rec := s.do(httptest.NewRequest(http.MethodGet, "/status", nil))
		var st StatusResponse
		json.NewDecoder(rec.Body).Decode(&st)
		return st
	}

	if st := status(); st.HasDocument {
		t.Fatalf("fresh server reports a document: %+v", st)
	}

	s.do(uploadRequest(t, "file", "book.txt", bookText))
	if st := status(); !st.HasDocument || st.Filename != "book.txt" || st.Chunks == 0 {
		t.Fatalf("status after upload = %+v", st)
	}

	rec := s.do(httptest.NewRequest(http.MethodPost, "/reset", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Knowledge base reset successfully") {
		t.Fatalf("reset: %d %s", rec.Code, rec.Body.String())
	}
	if st := status(); st.HasDocument {
		t.Errorf("status after reset = %+v", st)
	}
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, 1<<20)

	rec := s.do(httptest.NewRequest(http.MethodOptions, "/chat", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q", got)
	}

	rec = s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("health: %d %v", rec.Code, rec.Header())
	}
}

// TestClientRoundTrip drives the HTTP client against the real handlers
func TestClientRoundTrip(t *testing.T) {
	s := newTestServer(t, 1<<20)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "book.txt")
	if err := os.WriteFile(path, []byte(bookText), 0644); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	c := client.New(srv.URL)

	if err := c.Health(ctx); err != nil {
		t.Fatalf("health: %v", err)
	}

	if _, err := c.Chat(ctx, "hello"); !client.IsAPIError(err) {
		t.Fatalf("chat before upload err = %v", err)
	}

	up, err := c.Upload(ctx, path)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if up.Filename != "book.txt" {
		t.Errorf("upload filename = %q", up.Filename)
	}

	reply, err := c.Chat(ctx, "what is the answer?")
	if err != nil || reply.Response != "Forty-two." {
		t.Fatalf("chat = %+v, %v", reply, err)
	}

	st, err := c.Status(ctx)
	if err != nil || !st.HasDocument || st.Chunks != up.Chunks {
		t.Fatalf("status = %+v, %v", st, err)
	}

	if err := c.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if st, _ := c.Status(ctx); st.HasDocument {
		t.Error("document still present after reset")
	}
}

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"report.pdf", "report.pdf"},
		{"my cool notes.md", "my_cool_notes.md"},
		{"../../etc/passwd.txt", "etc_passwd.txt"},
		{"a/b.txt", "a_b.txt"},
		{`C:\Users\me\file.txt`, "C_Users_me_file.txt"},
		{"résumé.html", "resume.html"},
		{"..", ""},
		{"$$$", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SecureFilename(tt.in); got != tt.expected {
				t.Errorf("SecureFilename(%q) = %q, expected %q", tt.in, got, tt.expected)
			}
		})
	}
}
