// Package handler はディレクトリの操作結果をHTTPレスポンスに変換する。
// ステータスコードとルーティングの知識はこのパッケージに閉じる。
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/clubroster/internal/model"
)

// DirectoryService は活動ハンドラーが必要とするディレクトリ操作のインターフェース。
type DirectoryService interface {
	// List は全活動のスナップショットを返す。失敗しない。
	List() map[string]model.ActivitySnapshot
	// SignUp は参加者を活動の名簿に登録する。
	SignUp(activityName, participant string) (*model.Confirmation, error)
	// Unregister は参加者を活動の名簿から削除する。
	Unregister(activityName, participant string) (*model.Confirmation, error)
}

// ActivityHandler は活動ディレクトリのHTTPハンドラー。
type ActivityHandler struct {
	service DirectoryService
}

// NewActivityHandler はActivityHandlerを生成する。
func NewActivityHandler(service DirectoryService) *ActivityHandler {
	return &ActivityHandler{
		service: service,
	}
}

// messageResponse は登録・登録解除成功時のAPIレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// apiErrorResponse はAPIエラーレスポンスの統一フォーマット。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// ListActivities は全活動とその名簿のスナップショットを返す。
// GET /activities
func (h *ActivityHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	snapshot := h.service.List()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
}

// SignUp は参加者を活動に登録する。
// POST /activities/{name}/signup?email=
func (h *ActivityHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	name := activityNameFromRequest(r)

	email := r.URL.Query().Get("email")
	if email == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingEmailError())
		return
	}

	conf, err := h.service.SignUp(name, email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messageResponse{
		Message: fmt.Sprintf("Signed up %s for %s", conf.Participant, conf.Activity),
	})
}

// Unregister は参加者を活動から登録解除する。
// DELETE /activities/{name}/unregister?email=
func (h *ActivityHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	name := activityNameFromRequest(r)

	email := r.URL.Query().Get("email")
	if email == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingEmailError())
		return
	}

	conf, err := h.service.Unregister(name, email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messageResponse{
		Message: fmt.Sprintf("Unregistered %s from %s", conf.Participant, conf.Activity),
	})
}

// --- ヘルパー関数 ---

// activityNameFromRequest はURLパスパラメータから活動名を取り出す。
// 活動名はスペースを含むためパーセントエンコードされて届く。
// chiはRawPathベースでルーティングする場合エンコードされたまま
// パラメータを返すため、ここでデコードする。
func activityNameFromRequest(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	name, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return name
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はディレクトリから返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "An internal error occurred.",
		Category: "system",
		Action:   "Please wait a moment and try again.",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeActivityNotFound, model.ErrCodeParticipantNotFound:
		return http.StatusNotFound
	case model.ErrCodeAlreadyRegistered, model.ErrCodeActivityFull, model.ErrCodeMissingEmail:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
