// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package api

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/chatstat/internal/logging"
	"github.com/tomtom215/chatstat/internal/storage"
)

// DownloadFile serves an artifact through a signed link of the embedded
// storage backend. The S3 backend presigns against the bucket instead, so
// the route answers 404 there.
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	if h.downloads == nil {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Not found", nil, nil)
		return
	}

	key := chi.URLParam(r, "*")
	q := r.URL.Query()
	data, info, err := h.downloads.Download(r.Context(), key, q.Get("expires"), q.Get("signature"))
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrLinkExpired):
		respondError(w, r, http.StatusGone, ErrCodeLinkExpired, "Download link has expired", nil, nil)
		return
	case errors.Is(err, storage.ErrSignatureInvalid):
		respondError(w, r, http.StatusForbidden, ErrCodeForbidden, "Invalid download link", nil, nil)
		return
	default:
		respondFailure(w, r, err)
		return
	}

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(key)))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("File download interrupted")
	}
}
