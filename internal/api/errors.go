package api

import (
	"log/slog"
	"net/http"

	"github.com/starford/jrnl/internal/apperr"
)

var kindStatus = map[apperr.Kind]int{
	apperr.KindNotFound:        http.StatusNotFound,
	apperr.KindInvalidFileType: http.StatusUnsupportedMediaType,
	apperr.KindFormat:          http.StatusUnprocessableEntity,
	apperr.KindParse:           http.StatusBadRequest,
	apperr.KindAlreadyExists:   http.StatusConflict,
	apperr.KindConflict:        http.StatusPreconditionFailed,
}

// writeError maps err to a status code by its apperr kind. Unknown errors
// are logged and reported as 500 without detail.
func writeError(w http.ResponseWriter, op string, err error) {
	kind := apperr.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, status, errResponse{Error: err.Error(), Kind: kind.String()})
}
