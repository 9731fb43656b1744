package handlers

import (
	"net/http"
	"strings"
)

type faqAskRequest struct {
	Question string `json:"question"`
}

func (a *App) FAQAsk(w http.ResponseWriter, r *http.Request) {
	var req faqAskRequest
	if !a.decode(w, r, &req) {
		return
	}
	q := strings.TrimSpace(req.Question)
	if q == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "question required")
		return
	}
	if len(q) > 500 {
		q = q[:500]
	}
	a.json(w, http.StatusOK, a.FAQ.Ask(q))
}

func (a *App) FAQList(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, list(a.FAQ.Entries(), 0, 0))
}
