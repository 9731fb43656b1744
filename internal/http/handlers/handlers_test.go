package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"crowdfund/internal/domain"
	"crowdfund/internal/middleware"
	"crowdfund/internal/onboarding"
)

func request(method, target, body string, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	return req
}

func as(req *http.Request, userID string, role domain.UserRole) *http.Request {
	return req.WithContext(middleware.ContextWithUser(req.Context(), userID, role))
}

type envelope struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return env
}

func TestFailMapsDomainErrors(t *testing.T) {
	app, _ := newTestApp()
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrNotFound, http.StatusNotFound, "not_found"},
		{domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
		{domain.ErrNotVerified, http.StatusForbidden, "not_verified"},
		{domain.ErrDuplicateEmail, http.StatusConflict, "duplicate_email"},
		{domain.ErrCampaignNotActive, http.StatusConflict, "campaign_not_active"},
		{domain.ErrExpenseExceedsRaised, http.StatusConflict, "expense_exceeds_raised"},
		{fmt.Errorf("wrapped: %w", domain.ErrInvalidTransition), http.StatusConflict, "invalid_transition"},
		{onboarding.ErrSessionExpired, http.StatusGone, "session_expired"},
		{&domain.ValidationError{Fields: map[string]string{"email": "is required"}}, http.StatusUnprocessableEntity, "validation_failed"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		app.fail(rr, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
		if rr.Code != tc.status {
			t.Fatalf("%v: status = %d, want %d", tc.err, rr.Code, tc.status)
		}
		if env := decodeError(t, rr); env.Error.Code != tc.code {
			t.Fatalf("%v: code = %q, want %q", tc.err, env.Error.Code, tc.code)
		}
	}
}

func TestAuthLoginIssuesToken(t *testing.T) {
	app, _ := newTestApp()
	rr := httptest.NewRecorder()
	app.AuthLogin(rr, request(http.MethodPost, "/v1/auth/login", `{"email":"ngo@example.org","password":"Str0ng!pass"}`, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"user"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	claims, err := middleware.ParseToken(testTokens, resp.Token)
	if err != nil {
		t.Fatalf("ParseToken() error: %v", err)
	}
	if claims.Subject != ngoUserID || resp.User.Role != "ngo" {
		t.Fatalf("unexpected session %+v / %+v", claims, resp.User)
	}

	rr = httptest.NewRecorder()
	app.AuthLogin(rr, request(http.MethodPost, "/v1/auth/login", `{"email":"ngo@example.org","password":"nope"}`, nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d", rr.Code)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	app, _ := newTestApp()
	rr := httptest.NewRecorder()
	app.AuthLogin(rr, request(http.MethodPost, "/v1/auth/login", `{"email":"a@b.c","password":"x","admin":true}`, nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestCampaignsGetHidesPending(t *testing.T) {
	app, _ := newTestApp()

	rr := httptest.NewRecorder()
	app.CampaignsGet(rr, request(http.MethodGet, "/v1/campaigns/"+pendingID, "", map[string]string{"id": pendingID}))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("anonymous status = %d, want 404", rr.Code)
	}

	rr = httptest.NewRecorder()
	req := as(request(http.MethodGet, "/v1/campaigns/"+pendingID, "", map[string]string{"id": pendingID}), ngoUserID, domain.UserRoleNGO)
	app.CampaignsGet(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("owner status = %d, want 200", rr.Code)
	}
}

func TestCampaignsListDefaultsToActive(t *testing.T) {
	app, _ := newTestApp()
	rr := httptest.NewRecorder()
	app.CampaignsList(rr, request(http.MethodGet, "/v1/campaigns", "", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp struct {
		Items []struct {
			ID            string `json:"id"`
			RaisedDisplay string `json:"raised_display"`
		} `json:"items"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].ID != activeID {
		t.Fatalf("items = %+v", resp.Items)
	}
	if resp.Items[0].RaisedDisplay != "₹0.00" {
		t.Fatalf("raised_display = %q", resp.Items[0].RaisedDisplay)
	}
}

func TestDonationsCreate(t *testing.T) {
	app, s := newTestApp()
	body := `{"amount":100000,"message":"for the well","anonymous":true}`
	req := as(request(http.MethodPost, "/v1/campaigns/"+activeID+"/donations", body, map[string]string{"id": activeID}), donorUserID, domain.UserRoleDonor)
	rr := httptest.NewRecorder()
	app.DonationsCreate(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		GoalReached bool `json:"goal_reached"`
		Donation    struct {
			DonorID *string `json:"donor_id"`
		} `json:"donation"`
		Campaign struct {
			Status string `json:"status"`
		} `json:"campaign"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.GoalReached || resp.Campaign.Status != "completed" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Donation.DonorID == nil || *resp.Donation.DonorID != donorUserID {
		t.Fatalf("donor should see their own id on an anonymous donation")
	}

	// Anonymous donations are hidden from other viewers.
	rr = httptest.NewRecorder()
	app.DonationsList(rr, request(http.MethodGet, "/v1/campaigns/"+activeID+"/donations", "", map[string]string{"id": activeID}))
	if strings.Contains(rr.Body.String(), donorUserID) {
		t.Fatalf("donor id leaked: %s", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	req = as(request(http.MethodPost, "/x", `{"amount":5}`, map[string]string{"id": activeID}), donorUserID, domain.UserRoleDonor)
	app.DonationsCreate(rr, req)
	if rr.Code != http.StatusConflict || s.campaigns[activeID].RaisedAmount != 100000 {
		t.Fatalf("donation to completed campaign status = %d", rr.Code)
	}
}

func TestDonationsCreateValidation(t *testing.T) {
	app, _ := newTestApp()
	rr := httptest.NewRecorder()
	app.DonationsCreate(rr, request(http.MethodPost, "/x", `{"amount":0}`, map[string]string{"id": activeID}))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rr.Code)
	}
	if env := decodeError(t, rr); env.Error.Fields["amount"] == "" {
		t.Fatalf("expected amount field error, got %+v", env)
	}
}

func TestFAQAsk(t *testing.T) {
	app, _ := newTestApp()
	rr := httptest.NewRecorder()
	app.FAQAsk(rr, request(http.MethodPost, "/v1/faq/ask", `{"question":"Which documents do I need for verification?"}`, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var res struct {
		Matched bool   `json:"matched"`
		EntryID string `json:"entry_id"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Matched || res.EntryID != "verification-documents" {
		t.Fatalf("unexpected answer %+v", res)
	}

	rr = httptest.NewRecorder()
	app.FAQAsk(rr, request(http.MethodPost, "/v1/faq/ask", `{"question":"   "}`, nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("blank question status = %d", rr.Code)
	}
}

func TestContactCreateAndAdminList(t *testing.T) {
	app, _ := newTestApp()
	body := `{"name":"Meera","email":"meera@example.com","subject":"Hello","message":"How do I become a volunteer?"}`
	rr := httptest.NewRecorder()
	app.ContactCreate(rr, request(http.MethodPost, "/v1/contact", body, nil))
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	app.AdminContactList(rr, as(request(http.MethodGet, "/v1/admin/contact", "", nil), donorUserID, domain.UserRoleDonor))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("donor status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	app.AdminContactList(rr, as(request(http.MethodGet, "/v1/admin/contact", "", nil), "admin", domain.UserRoleAdmin))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "meera@example.com") {
		t.Fatalf("admin list status = %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestStatsSummary(t *testing.T) {
	app, _ := newTestApp()
	rr := httptest.NewRecorder()
	app.StatsSummary(rr, request(http.MethodGet, "/v1/stats", "", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp statsResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TotalRaised != 123450 || resp.TotalRaisedDisplay != "₹1,234.50" || resp.ActiveCampaigns != 4 {
		t.Fatalf("stats = %+v", resp)
	}
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealth(t *testing.T) {
	app, _ := newTestApp()
	rr := httptest.NewRecorder()
	app.Health(rr, request(http.MethodGet, "/v1/healthz", "", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	app.DB = failingPinger{}
	rr = httptest.NewRecorder()
	app.Health(rr, request(http.MethodGet, "/v1/healthz", "", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
}

func TestOpenAPIIsValidJSON(t *testing.T) {
	app, _ := newTestApp()
	rr := httptest.NewRecorder()
	app.OpenAPIJSON(rr, request(http.MethodGet, "/v1/openapi.json", "", nil))
	var doc map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("openapi.json: %v", err)
	}
	if _, ok := doc["paths"].(map[string]any)["/v1/campaigns/{id}/donations"]; !ok {
		t.Fatal("donations path missing from openapi document")
	}
}
