package requests

import (
	"encoding/json"
	"net/http"

	"github.com/andrewbenington/group-mix/constants"
	"github.com/andrewbenington/group-mix/errs"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Kind  errs.Kind `json:"kind"`
	Error string    `json:"error"`
}

var kindStatus = map[errs.Kind]int{
	errs.KindMissingRoom:         http.StatusBadRequest,
	errs.KindInvalidRoom:         http.StatusBadRequest,
	errs.KindAuthExpired:         http.StatusUnauthorized,
	errs.KindInvalidGrant:        http.StatusUnauthorized,
	errs.KindInsufficientMembers: http.StatusConflict,
	errs.KindAlreadyMerged:       http.StatusConflict,
	errs.KindStoreIO:             http.StatusServiceUnavailable,
	errs.KindRemoteTimeout:       http.StatusGatewayTimeout,
	errs.KindRemote:              http.StatusBadGateway,
	errs.KindInternal:            http.StatusInternalServerError,
}

var kindMessage = map[errs.Kind]string{
	errs.KindMissingRoom:         constants.ErrorMissingRoom,
	errs.KindInvalidRoom:         constants.ErrorInvalidRoom,
	errs.KindAuthExpired:         constants.ErrorNotAuthenticated,
	errs.KindInvalidGrant:        constants.ErrorInvalidGrant,
	errs.KindInsufficientMembers: constants.ErrorInsufficientMembers,
	errs.KindAlreadyMerged:       constants.ErrorAlreadyMerged,
	errs.KindStoreIO:             constants.ErrorStorage,
	errs.KindRemoteTimeout:       constants.ErrorRemoteTimeout,
	errs.KindRemote:              constants.ErrorRemote,
	errs.KindInternal:            constants.ErrorInternal,
}

// StatusOf returns the HTTP status used for err.
func StatusOf(err error) int {
	return kindStatus[errs.KindOf(err)]
}

// RespondWithError writes a user-facing message for err. Internal details
// are logged, never returned.
func RespondWithError(w http.ResponseWriter, err error) {
	kind := errs.KindOf(err)
	status := kindStatus[kind]
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed", zap.String("kind", string(kind)), zap.Error(err))
	}
	respondError(w, status, kind, kindMessage[kind])
}

func RespondBadRequest(w http.ResponseWriter) {
	respondError(w, http.StatusBadRequest, "", constants.ErrorBadRequest)
}

func RespondNotFound(w http.ResponseWriter) {
	respondError(w, http.StatusNotFound, "", constants.ErrorNotFound)
}

func RespondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, kind errs.Kind, message string) {
	RespondJSON(w, status, ErrorResponse{Kind: kind, Error: message})
}
