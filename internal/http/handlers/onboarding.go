package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"crowdfund/internal/domain"
	"crowdfund/internal/middleware"
	"crowdfund/internal/onboarding"
)

func (a *App) OnboardingStart(w http.ResponseWriter, r *http.Request) {
	var req onboarding.AccountInput
	if !a.decode(w, r, &req) {
		return
	}
	sess, err := a.Onboarding.Start(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, toSession(sess))
}

func (a *App) OnboardingGet(w http.ResponseWriter, r *http.Request) {
	sess, err := a.Onboarding.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toSession(sess))
}

func (a *App) OnboardingSubmit(w http.ResponseWriter, r *http.Request) {
	var payload json.RawMessage
	if !a.decode(w, r, &payload) {
		return
	}
	step := domain.OnboardingStep(chi.URLParam(r, "step"))
	sess, err := a.Onboarding.Submit(r.Context(), chi.URLParam(r, "id"), step, payload)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toSession(sess))
}

func (a *App) OnboardingBack(w http.ResponseWriter, r *http.Request) {
	sess, err := a.Onboarding.Back(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toSession(sess))
}

// OnboardingComplete creates the account and signs the new user in.
func (a *App) OnboardingComplete(w http.ResponseWriter, r *http.Request) {
	u, err := a.Onboarding.Complete(r.Context(), chi.URLParam(r, "id"), middleware.LocaleFromContext(r.Context()))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	sess, err := a.Auth.Issue(u)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, toSessionResponse(sess))
}
