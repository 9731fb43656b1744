package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"crowdfund/internal/domain"
)

type documentUploadRequest struct {
	Kind domain.DocumentKind `json:"kind"`
	Data string              `json:"data"`
}

func (a *App) DocumentsUpload(w http.ResponseWriter, r *http.Request) {
	var req documentUploadRequest
	if !a.decode(w, r, &req) {
		return
	}
	doc, err := a.Review.UploadDocument(r.Context(), a.actor(r), req.Kind, req.Data)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, toDocuments([]domain.VerificationDocument{*doc})[0])
}

// DocumentsDownload serves a stored verification document to its owner or
// an admin.
func (a *App) DocumentsDownload(w http.ResponseWriter, r *http.Request) {
	doc, data, err := a.Review.Document(r.Context(), a.actor(r), chi.URLParam(r, "userID"), chi.URLParam(r, "docID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", doc.MIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%s-%s", doc.Kind, doc.ID))
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
