package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/matzehuels/dotpipe/pkg/errors"
)

type errorResponse struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
	Stderr    string      `json:"stderr,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	resp := errorResponse{
		Code:      errors.GetCode(err),
		Message:   errors.UserMessage(err),
		RequestID: RequestID(r.Context()),
	}
	if resp.Code == "" {
		resp.Code = errors.ErrCodeInternal
	}

	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	var perr *errors.ProcessError
	if stderrors.As(err, &perr) {
		resp.Stderr = strings.TrimSpace(string(perr.Stderr))
	}
	writeJSON(w, status, resp)
}

func errNotFound(r *http.Request) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path)
}

// contentTypes maps output formats to media types. Formats not listed are
// served as application/octet-stream.
var contentTypes = map[string]string{
	"svg":   "image/svg+xml",
	"svgz":  "image/svg+xml",
	"png":   "image/png",
	"gif":   "image/gif",
	"jpg":   "image/jpeg",
	"jpeg":  "image/jpeg",
	"jpe":   "image/jpeg",
	"bmp":   "image/bmp",
	"tif":   "image/tiff",
	"tiff":  "image/tiff",
	"webp":  "image/webp",
	"ico":   "image/x-icon",
	"pdf":   "application/pdf",
	"ps":    "application/postscript",
	"eps":   "application/postscript",
	"json":  "application/json",
	"json0": "application/json",
	"dot":   "text/vnd.graphviz",
	"gv":    "text/vnd.graphviz",
	"canon": "text/vnd.graphviz",
	"xdot":  "text/vnd.graphviz",
	"plain": "text/plain; charset=utf-8",
	"map":   "text/plain; charset=utf-8",
	"cmapx": "text/html; charset=utf-8",
	"imap":  "text/plain; charset=utf-8",
}

// contentType returns the media type for a format.
func contentType(format string) string {
	if ct, ok := contentTypes[format]; ok {
		return ct
	}
	switch {
	case strings.HasPrefix(format, "xdot"), strings.HasPrefix(format, "dot_"):
		return "text/vnd.graphviz"
	case strings.HasPrefix(format, "plain"):
		return "text/plain; charset=utf-8"
	case strings.HasPrefix(format, "svg"):
		return "image/svg+xml"
	}
	return "application/octet-stream"
}
