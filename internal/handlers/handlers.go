package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func SendJSON(w http.ResponseWriter, v any) (int, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	w.Header().Add("Content-Type", "application/json")
	return w.Write(payload)
}

func sendJSONOrLog(w http.ResponseWriter, logger *slog.Logger, v any) {
	_, err := SendJSON(w, v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error(
			"unable to send response",
			slog.Any("response", v),
			slog.Any("error", err),
		)
	}
}

// sendCreated replies 201 with v as JSON.
func sendCreated(w http.ResponseWriter, logger *slog.Logger, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		internalError(w, logger, "unable to encode response", slog.Any("error", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if _, err := w.Write(payload); err != nil {
		logger.Warn("unable to send response", slog.Any("error", err))
	}
}

// sendError replies with status and {"error": err}.
func sendError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(wrapError(err)); err != nil {
		logger.Error("unable to send error", slog.Any("error", err))
	}
}

// internalError logs msg with args and replies with a bare 500.
func internalError(w http.ResponseWriter, logger *slog.Logger, msg string, args ...any) {
	w.WriteHeader(http.StatusInternalServerError)
	logger.Error(msg, args...)
}

func wrapError(err error) map[string]string {
	return map[string]string{
		"error": err.Error(),
	}
}
