// Package directory は課外活動ディレクトリの中核状態を管理する。
//
// Directoryは活動名から活動レコードへのマッピングを保持し、
// 一覧取得・参加登録・登録解除の3操作を提供する。
// 活動の集合は起動時のシードで固定され、プロセス稼働中に
// 増減しない。変化するのは各活動の参加者名簿のみ。
package directory

import (
	"fmt"
	"sync"

	"github.com/hitoshi/clubroster/internal/model"
)

// MetricsRecorder はディレクトリ操作のメトリクス記録インターフェース。
// 実装はinternal/metricsが提供する。nilの場合は記録しない。
type MetricsRecorder interface {
	RecordSignUp(activity string)
	RecordSignUpRejected(activity, reason string)
	RecordUnregister(activity string)
	RecordUnregisterRejected(activity, reason string)
	SetRosterSize(activity string, size int)
}

// TextSanitizer はシードの自由記述フィールドをサニタイズする
// インターフェース。実装はinternal/securityが提供する。
type TextSanitizer interface {
	SanitizeText(raw string) string
}

// Config はDirectory構築時のオプションを保持する。
type Config struct {
	// EnforceCapacity がtrueの場合、定員に達した活動への
	// 登録はActivityFullで拒否される。
	EnforceCapacity bool
	// Metrics は操作メトリクスの記録先。nil可。
	Metrics MetricsRecorder
	// Sanitizer はシードのdescription/scheduleに適用される。nil可。
	Sanitizer TextSanitizer
}

// Directory は活動名→活動レコードの正準マッピング。
// 全操作を単一のRWMutexで直列化する。活動数は少数で書き込みも
// 低頻度のため、粗粒度ロックで十分（活動単位のロックは不要）。
type Directory struct {
	mu         sync.RWMutex
	activities map[string]*model.Activity
	order      []string // シード順を保持した活動名の一覧

	enforceCapacity bool
	metrics         MetricsRecorder
}

// New はシードからDirectoryを構築する。
// シードに重複した活動名、空の活動名、または正でない定員が
// 含まれる場合はエラーを返す。シード内の参加者重複も拒否する。
func New(seed []model.Activity, cfg Config) (*Directory, error) {
	d := &Directory{
		activities:      make(map[string]*model.Activity, len(seed)),
		order:           make([]string, 0, len(seed)),
		enforceCapacity: cfg.EnforceCapacity,
		metrics:         cfg.Metrics,
	}

	for _, a := range seed {
		if a.Name == "" {
			return nil, fmt.Errorf("activity name cannot be empty")
		}
		if a.MaxParticipants <= 0 {
			return nil, fmt.Errorf("activity %q: max_participants must be positive, got %d", a.Name, a.MaxParticipants)
		}
		if _, exists := d.activities[a.Name]; exists {
			return nil, fmt.Errorf("duplicate activity name in seed: %q", a.Name)
		}

		rec := a.Clone()
		if cfg.Sanitizer != nil {
			rec.Description = cfg.Sanitizer.SanitizeText(rec.Description)
			rec.Schedule = cfg.Sanitizer.SanitizeText(rec.Schedule)
		}

		seen := make(map[string]struct{}, len(rec.Participants))
		for _, p := range rec.Participants {
			if _, dup := seen[p]; dup {
				return nil, fmt.Errorf("activity %q: duplicate participant in seed: %q", a.Name, p)
			}
			seen[p] = struct{}{}
		}

		d.activities[rec.Name] = &rec
		d.order = append(d.order, rec.Name)
		d.recordRosterSize(rec.Name, len(rec.Participants))
	}

	return d, nil
}

// List は全活動のスナップショットを返す。副作用はなく、失敗しない。
// 返り値は内部状態のディープコピーであり、呼び出し側が変更しても
// ディレクトリは影響を受けない。
func (d *Directory) List() map[string]model.ActivitySnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	snapshot := make(map[string]model.ActivitySnapshot, len(d.activities))
	for name, a := range d.activities {
		participants := make([]string, len(a.Participants))
		copy(participants, a.Participants)
		snapshot[name] = model.ActivitySnapshot{
			Description:     a.Description,
			Schedule:        a.Schedule,
			MaxParticipants: a.MaxParticipants,
			Participants:    participants,
		}
	}
	return snapshot
}

// Names はシード順の活動名一覧のコピーを返す。
func (d *Directory) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, len(d.order))
	copy(names, d.order)
	return names
}

// SignUp は参加者を活動の名簿に登録する。
// 存在チェック・重複チェック・挿入は書き込みロック下で
// 単一の原子的操作として行われる。
func (d *Directory) SignUp(activityName, participant string) (*model.Confirmation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, exists := d.activities[activityName]
	if !exists {
		d.recordSignUpRejected(activityName, "activity_not_found")
		return nil, model.NewActivityNotFoundError(activityName)
	}

	if contains(a.Participants, participant) {
		d.recordSignUpRejected(activityName, "already_registered")
		return nil, model.NewAlreadyRegisteredError(participant, activityName)
	}

	if d.enforceCapacity && len(a.Participants) >= a.MaxParticipants {
		d.recordSignUpRejected(activityName, "activity_full")
		return nil, model.NewActivityFullError(activityName, a.MaxParticipants)
	}

	a.Participants = append(a.Participants, participant)
	d.recordSignUp(activityName)
	d.recordRosterSize(activityName, len(a.Participants))

	return &model.Confirmation{
		Activity:    activityName,
		Participant: participant,
	}, nil
}

// Unregister は参加者を活動の名簿から削除する。
// 残りの参加者の相対順序は維持される。
func (d *Directory) Unregister(activityName, participant string) (*model.Confirmation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, exists := d.activities[activityName]
	if !exists {
		d.recordUnregisterRejected(activityName, "activity_not_found")
		return nil, model.NewActivityNotFoundError(activityName)
	}

	idx := indexOf(a.Participants, participant)
	if idx < 0 {
		d.recordUnregisterRejected(activityName, "participant_not_found")
		return nil, model.NewParticipantNotFoundError(participant, activityName)
	}

	a.Participants = append(a.Participants[:idx], a.Participants[idx+1:]...)
	d.recordUnregister(activityName)
	d.recordRosterSize(activityName, len(a.Participants))

	return &model.Confirmation{
		Activity:    activityName,
		Participant: participant,
	}, nil
}

// --- メトリクス記録ヘルパー（recorder未設定の場合は何もしない） ---

func (d *Directory) recordSignUp(activity string) {
	if d.metrics != nil {
		d.metrics.RecordSignUp(activity)
	}
}

func (d *Directory) recordSignUpRejected(activity, reason string) {
	if d.metrics != nil {
		d.metrics.RecordSignUpRejected(activity, reason)
	}
}

func (d *Directory) recordUnregister(activity string) {
	if d.metrics != nil {
		d.metrics.RecordUnregister(activity)
	}
}

func (d *Directory) recordUnregisterRejected(activity, reason string) {
	if d.metrics != nil {
		d.metrics.RecordUnregisterRejected(activity, reason)
	}
}

func (d *Directory) recordRosterSize(activity string, size int) {
	if d.metrics != nil {
		d.metrics.SetRosterSize(activity, size)
	}
}

func contains(list []string, s string) bool {
	return indexOf(list, s) >= 0
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
