package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/localhelper/internal/apperr"
	"github.com/hyperifyio/localhelper/internal/proxy"
)

type fetchPageRequest struct {
	URL string `json:"url"`
}

// Title and Content are always present so the front-end can read them
// without checking for error first.
type fetchPageResponse struct {
	Error   string `json:"error,omitempty"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (s *Server) handleFetchPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST, OPTIONS")
		return
	}
	logger := zerolog.Ctx(r.Context())

	var req fetchPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		logBoundaryError(logger, "fetch-page", err)
		writeJSON(w, http.StatusOK, fetchPageResponse{Error: "invalid JSON"})
		return
	}
	page, err := s.Pages.FetchPage(r.Context(), req.URL)
	if err != nil {
		logBoundaryError(logger, "fetch-page", err)
		writeJSON(w, http.StatusOK, fetchPageResponse{Error: apperr.Message(err)})
		return
	}
	writeJSON(w, http.StatusOK, fetchPageResponse{Title: page.Title, Content: page.Content})
}

type parseDocResponse struct {
	Error    string `json:"error,omitempty"`
	Text     string `json:"text"`
	Filename string `json:"filename,omitempty"`
}

func (s *Server) handleParseDoc(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST, OPTIONS")
		return
	}
	logger := zerolog.Ctx(r.Context())
	fail := func(err error) {
		logBoundaryError(logger, "parse-doc", err)
		writeJSON(w, http.StatusOK, parseDocResponse{Error: apperr.Message(err)})
	}

	if !strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data") {
		fail(apperr.Errorf(apperr.EINPUT, "upload the file as multipart/form-data"))
		return
	}
	limit := s.maxUpload()
	if r.ContentLength > limit {
		fail(apperr.Errorf(apperr.EINPUT, "file too large, limit is %d bytes", limit))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			fail(apperr.Errorf(apperr.EINPUT, "file too large, limit is %d bytes", limit))
			return
		}
		fail(apperr.Wrap(apperr.EINPUT, err, "parse request failed"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	fh := uploadedFile(r.MultipartForm)
	if fh == nil {
		fail(apperr.Errorf(apperr.EINPUT, "no file received, upload it in the field named file"))
		return
	}
	data, err := readUpload(fh)
	if err != nil {
		fail(apperr.Wrap(apperr.EINPUT, err, "read file failed"))
		return
	}
	res, err := s.Docs.Parse(fh.Filename, data)
	if err != nil {
		fail(err)
		return
	}
	writeJSON(w, http.StatusOK, parseDocResponse{Text: res.Text, Filename: res.Filename})
}

// uploadedFile prefers the "file" field and otherwise takes the first file
// part by field name.
func uploadedFile(form *multipart.Form) *multipart.FileHeader {
	if form == nil {
		return nil
	}
	if fhs := form.File["file"]; len(fhs) > 0 {
		return fhs[0]
	}
	keys := make([]string, 0, len(form.File))
	for k := range form.File {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if fhs := form.File[k]; len(fhs) > 0 {
			return fhs[0]
		}
	}
	return nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST, OPTIONS")
		return
	}
	logger := zerolog.Ctx(r.Context())

	var req proxy.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		err = apperr.Wrap(apperr.EINPUT, err, "invalid JSON")
		logBoundaryError(logger, "proxy", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: apperr.Message(err)})
		return
	}
	resp, err := s.Proxy.Forward(r.Context(), req)
	if err != nil {
		logBoundaryError(logger, "proxy", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: apperr.Message(err)})
		return
	}
	ct := resp.ContentType
	if ct == "" {
		ct = "application/json"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(resp.Body)
}

type configResponse struct {
	UseAI *string     `json:"useAI"`
	Debug configDebug `json:"debug"`
}

type configDebug struct {
	EnvHasUseAI     bool `json:"envHasUSE_AI"`
	EnvHasDashScope bool `json:"envHasDASHSCOPE_API_KEY"`
	EnvHasOpenAI    bool `json:"envHasOPENAI_API_KEY"`
	EnvHasZhipu     bool `json:"envHasZHIPU_API_KEY"`
}

// handleConfig tells the front-end which provider has a server-side key
// without revealing the key.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		methodNotAllowed(w, "GET, POST, OPTIONS")
		return
	}
	out := configResponse{
		Debug: configDebug{
			EnvHasUseAI:     strings.TrimSpace(s.UseAI) != "",
			EnvHasDashScope: s.Keys.Qwen != "",
			EnvHasOpenAI:    s.Keys.OpenAI != "",
			EnvHasZhipu:     s.Keys.Zhipu != "",
		},
	}
	if p := s.Keys.Effective(s.UseAI); p != "" {
		out.UseAI = &p
	}
	writeJSON(w, http.StatusOK, out)
}
