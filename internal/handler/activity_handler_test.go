package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/clubroster/internal/model"
)

// --- モック定義 ---

// mockDirectoryService はDirectoryServiceのモック実装。
type mockDirectoryService struct {
	listFn       func() map[string]model.ActivitySnapshot
	signUpFn     func(activityName, participant string) (*model.Confirmation, error)
	unregisterFn func(activityName, participant string) (*model.Confirmation, error)
}

func (m *mockDirectoryService) List() map[string]model.ActivitySnapshot {
	if m.listFn != nil {
		return m.listFn()
	}
	return map[string]model.ActivitySnapshot{}
}

func (m *mockDirectoryService) SignUp(activityName, participant string) (*model.Confirmation, error) {
	if m.signUpFn != nil {
		return m.signUpFn(activityName, participant)
	}
	return &model.Confirmation{Activity: activityName, Participant: participant}, nil
}

func (m *mockDirectoryService) Unregister(activityName, participant string) (*model.Confirmation, error) {
	if m.unregisterFn != nil {
		return m.unregisterFn(activityName, participant)
	}
	return &model.Confirmation{Activity: activityName, Participant: participant}, nil
}

// newRequestWithName はchiのルートコンテキストにnameパラメータを設定したリクエストを返す。
func newRequestWithName(method, target, name string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("name", name)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// decodeErrorResponse はエラーレスポンスボディをデコードする。
func decodeErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return body
}

// --- GET /activities ---

func TestActivityHandler_ListActivities_Success(t *testing.T) {
	svc := &mockDirectoryService{
		listFn: func() map[string]model.ActivitySnapshot {
			return map[string]model.ActivitySnapshot{
				"Chess Club": {
					Description:     "Chess",
					Schedule:        "Fridays",
					MaxParticipants: 12,
					Participants:    []string{"a@x.edu"},
				},
			}
		},
	}

	h := NewActivityHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/activities", nil)
	w := httptest.NewRecorder()

	h.ListActivities(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}

	var result map[string]map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	chess, ok := result["Chess Club"]
	if !ok {
		t.Fatal("Chess Club missing from response")
	}
	if chess["description"] != "Chess" {
		t.Errorf("description = %v, want %q", chess["description"], "Chess")
	}
	if chess["schedule"] != "Fridays" {
		t.Errorf("schedule = %v, want %q", chess["schedule"], "Fridays")
	}
	if int(chess["max_participants"].(float64)) != 12 {
		t.Errorf("max_participants = %v, want 12", chess["max_participants"])
	}
	participants, ok := chess["participants"].([]interface{})
	if !ok || len(participants) != 1 || participants[0] != "a@x.edu" {
		t.Errorf("participants = %v, want [a@x.edu]", chess["participants"])
	}
}

func TestActivityHandler_ListActivities_EmptyDirectory(t *testing.T) {
	h := NewActivityHandler(&mockDirectoryService{})

	req := httptest.NewRequest(http.MethodGet, "/activities", nil)
	w := httptest.NewRecorder()

	h.ListActivities(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("result length = %d, want 0", len(result))
	}
}

// --- POST /activities/{name}/signup ---

func TestActivityHandler_SignUp_Success(t *testing.T) {
	svc := &mockDirectoryService{
		signUpFn: func(activityName, participant string) (*model.Confirmation, error) {
			if activityName != "Chess Club" {
				t.Errorf("activityName = %q, want %q", activityName, "Chess Club")
			}
			if participant != "test@mergington.edu" {
				t.Errorf("participant = %q, want %q", participant, "test@mergington.edu")
			}
			return &model.Confirmation{Activity: activityName, Participant: participant}, nil
		},
	}

	h := NewActivityHandler(svc)

	req := newRequestWithName(http.MethodPost, "/activities/Chess%20Club/signup?email=test@mergington.edu", "Chess Club")
	w := httptest.NewRecorder()

	h.SignUp(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	// メッセージには参加者と活動名の両方を含む
	if !strings.Contains(body["message"], "test@mergington.edu") {
		t.Errorf("message = %q, want participant email included", body["message"])
	}
	if !strings.Contains(body["message"], "Chess Club") {
		t.Errorf("message = %q, want activity name included", body["message"])
	}
}

func TestActivityHandler_SignUp_EncodedActivityName(t *testing.T) {
	var gotName string
	svc := &mockDirectoryService{
		signUpFn: func(activityName, participant string) (*model.Confirmation, error) {
			gotName = activityName
			return &model.Confirmation{Activity: activityName, Participant: participant}, nil
		},
	}

	h := NewActivityHandler(svc)

	// chiがRawPathベースでルーティングした場合、URLParamはエンコードされたまま返る
	req := newRequestWithName(http.MethodPost, "/activities/Chess%20Club/signup?email=a@x.edu", "Chess%20Club")
	w := httptest.NewRecorder()

	h.SignUp(w, req)

	if gotName != "Chess Club" {
		t.Errorf("activityName = %q, want decoded %q", gotName, "Chess Club")
	}
}

func TestActivityHandler_SignUp_MissingEmail_ReturnsBadRequest(t *testing.T) {
	called := false
	svc := &mockDirectoryService{
		signUpFn: func(activityName, participant string) (*model.Confirmation, error) {
			called = true
			return nil, nil
		},
	}

	h := NewActivityHandler(svc)

	req := newRequestWithName(http.MethodPost, "/activities/Chess%20Club/signup", "Chess Club")
	w := httptest.NewRecorder()

	h.SignUp(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
	if called {
		t.Error("service should not be called when email is missing")
	}

	body := decodeErrorResponse(t, w)
	if body["code"] != model.ErrCodeMissingEmail {
		t.Errorf("code = %v, want %q", body["code"], model.ErrCodeMissingEmail)
	}
}

func TestActivityHandler_SignUp_ActivityNotFound_Returns404(t *testing.T) {
	svc := &mockDirectoryService{
		signUpFn: func(activityName, participant string) (*model.Confirmation, error) {
			return nil, model.NewActivityNotFoundError(activityName)
		},
	}

	h := NewActivityHandler(svc)

	req := newRequestWithName(http.MethodPost, "/activities/Nonexistent/signup?email=a@x.edu", "Nonexistent")
	w := httptest.NewRecorder()

	h.SignUp(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}

	body := decodeErrorResponse(t, w)
	if !strings.Contains(body["message"].(string), "Activity not found") {
		t.Errorf("message = %v, want phrase %q", body["message"], "Activity not found")
	}
}

func TestActivityHandler_SignUp_AlreadyRegistered_Returns400(t *testing.T) {
	svc := &mockDirectoryService{
		signUpFn: func(activityName, participant string) (*model.Confirmation, error) {
			return nil, model.NewAlreadyRegisteredError(participant, activityName)
		},
	}

	h := NewActivityHandler(svc)

	req := newRequestWithName(http.MethodPost, "/activities/Chess%20Club/signup?email=a@x.edu", "Chess Club")
	w := httptest.NewRecorder()

	h.SignUp(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}

	body := decodeErrorResponse(t, w)
	if !strings.Contains(body["message"].(string), "already signed up") {
		t.Errorf("message = %v, want phrase %q", body["message"], "already signed up")
	}
}

func TestActivityHandler_SignUp_ActivityFull_Returns400(t *testing.T) {
	svc := &mockDirectoryService{
		signUpFn: func(activityName, participant string) (*model.Confirmation, error) {
			return nil, model.NewActivityFullError(activityName, 12)
		},
	}

	h := NewActivityHandler(svc)

	req := newRequestWithName(http.MethodPost, "/activities/Chess%20Club/signup?email=a@x.edu", "Chess Club")
	w := httptest.NewRecorder()

	h.SignUp(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}

	body := decodeErrorResponse(t, w)
	if body["code"] != model.ErrCodeActivityFull {
		t.Errorf("code = %v, want %q", body["code"], model.ErrCodeActivityFull)
	}
}

func TestActivityHandler_SignUp_UnexpectedError_Returns500(t *testing.T) {
	svc := &mockDirectoryService{
		signUpFn: func(activityName, participant string) (*model.Confirmation, error) {
			return nil, errors.New("unexpected failure")
		},
	}

	h := NewActivityHandler(svc)

	req := newRequestWithName(http.MethodPost, "/activities/Chess%20Club/signup?email=a@x.edu", "Chess Club")
	w := httptest.NewRecorder()

	h.SignUp(w, req)

	if w.Result().StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusInternalServerError)
	}
}

// --- DELETE /activities/{name}/unregister ---

func TestActivityHandler_Unregister_Success(t *testing.T) {
	svc := &mockDirectoryService{
		unregisterFn: func(activityName, participant string) (*model.Confirmation, error) {
			return &model.Confirmation{Activity: activityName, Participant: participant}, nil
		},
	}

	h := NewActivityHandler(svc)

	req := newRequestWithName(http.MethodDelete, "/activities/Art%20Class/unregister?email=a@x.edu", "Art Class")
	w := httptest.NewRecorder()

	h.Unregister(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !strings.Contains(body["message"], "Unregistered") {
		t.Errorf("message = %q, want phrase %q", body["message"], "Unregistered")
	}
}

func TestActivityHandler_Unregister_MissingEmail_ReturnsBadRequest(t *testing.T) {
	h := NewActivityHandler(&mockDirectoryService{})

	req := newRequestWithName(http.MethodDelete, "/activities/Art%20Class/unregister", "Art Class")
	w := httptest.NewRecorder()

	h.Unregister(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestActivityHandler_Unregister_ActivityNotFound_Returns404(t *testing.T) {
	svc := &mockDirectoryService{
		unregisterFn: func(activityName, participant string) (*model.Confirmation, error) {
			return nil, model.NewActivityNotFoundError(activityName)
		},
	}

	h := NewActivityHandler(svc)

	req := newRequestWithName(http.MethodDelete, "/activities/Nonexistent/unregister?email=a@x.edu", "Nonexistent")
	w := httptest.NewRecorder()

	h.Unregister(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
}

func TestActivityHandler_Unregister_ParticipantNotFound_Returns404(t *testing.T) {
	svc := &mockDirectoryService{
		unregisterFn: func(activityName, participant string) (*model.Confirmation, error) {
			return nil, model.NewParticipantNotFoundError(participant, activityName)
		},
	}

	h := NewActivityHandler(svc)

	req := newRequestWithName(http.MethodDelete, "/activities/Chess%20Club/unregister?email=ghost@x.edu", "Chess Club")
	w := httptest.NewRecorder()

	h.Unregister(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}

	body := decodeErrorResponse(t, w)
	if !strings.Contains(body["message"].(string), "Participant not found") {
		t.Errorf("message = %v, want phrase %q", body["message"], "Participant not found")
	}
}
