// Package model はドメインモデルを定義する。
package model

// Activity は課外活動1件を表す。
// Nameがディレクトリ内の一意キーとなり、初期化後は不変。
// Participantsは参加者のメールアドレスを登録順に保持する。
type Activity struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
	Participants    []string
}

// Clone はActivityのディープコピーを返す。
// Participantsスライスも複製するため、呼び出し側が返り値を
// 変更しても元のActivityには影響しない。
func (a *Activity) Clone() Activity {
	c := *a
	c.Participants = make([]string, len(a.Participants))
	copy(c.Participants, a.Participants)
	return c
}

// ActivitySnapshot はList操作が返す読み取り専用ビュー。
// ディレクトリ内部の状態とは独立したコピーであり、
// APIレスポンスにそのままシリアライズされる。
type ActivitySnapshot struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// Confirmation は登録・登録解除が成功したことを表す確認値。
// 呼び出し側（HTTPハンドラー）がメッセージを組み立てるために使う。
type Confirmation struct {
	Activity    string
	Participant string
}
