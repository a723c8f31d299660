package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: activity, validation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeActivityNotFound    = "ACTIVITY_NOT_FOUND"
	ErrCodeAlreadyRegistered   = "ALREADY_REGISTERED"
	ErrCodeParticipantNotFound = "PARTICIPANT_NOT_FOUND"
	ErrCodeActivityFull        = "ACTIVITY_FULL"
	ErrCodeMissingEmail        = "MISSING_EMAIL"
)

// NewActivityNotFoundError は指定された活動が存在しない場合のエラーを生成する。
func NewActivityNotFoundError(name string) *APIError {
	return &APIError{
		Code:     ErrCodeActivityNotFound,
		Message:  fmt.Sprintf("Activity not found: %s", name),
		Category: "activity",
		Action:   "Check the activity name against the activity list.",
	}
}

// NewAlreadyRegisteredError は参加者が既に名簿に載っている活動へ
// 再度登録しようとした場合のエラーを生成する。
func NewAlreadyRegisteredError(email, activity string) *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyRegistered,
		Message:  fmt.Sprintf("%s is already signed up for %s", email, activity),
		Category: "activity",
		Action:   "Each participant can sign up for an activity only once.",
	}
}

// NewParticipantNotFoundError は名簿に存在しない参加者を
// 登録解除しようとした場合のエラーを生成する。
func NewParticipantNotFoundError(email, activity string) *APIError {
	return &APIError{
		Code:     ErrCodeParticipantNotFound,
		Message:  fmt.Sprintf("Participant not found in %s: %s", activity, email),
		Category: "activity",
		Action:   "Only participants currently on the roster can be unregistered.",
	}
}

// NewActivityFullError は定員に達した活動への登録エラーを生成する。
func NewActivityFullError(activity string, max int) *APIError {
	return &APIError{
		Code:     ErrCodeActivityFull,
		Message:  fmt.Sprintf("%s is full (%d participants max)", activity, max),
		Category: "activity",
		Action:   "Choose another activity or wait for a spot to open.",
	}
}

// NewMissingEmailError はemailクエリパラメータが欠けている場合のエラーを生成する。
func NewMissingEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingEmail,
		Message:  "Missing required query parameter: email",
		Category: "validation",
		Action:   "Provide the participant email address in the email query parameter.",
	}
}
