// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService はシードファイル由来の自由記述テキスト
// （活動の説明・スケジュール）をサニタイズし、Web UIにそのまま
// 表示してもXSSにならないことを保証する。bluemondayの
// StrictPolicyを使用し、HTMLタグを一切許可しない。
package security

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService はプレーンテキストサニタイズのインターフェースを定義する。
// シード読み込み時、ディレクトリ構築前に使用される。
type TextSanitizerService interface {
	// SanitizeText は入力からすべてのHTMLタグを除去した
	// プレーンテキストを返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeText(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicy（許可タグなし）を使用するため、scriptタグはもちろん
// 装飾タグも含めてすべてのマークアップが除去される。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeText は入力からすべてのHTMLタグを除去したプレーンテキストを返す。
// bluemondayはタグ除去後にエンティティをエスケープした状態で返すため、
// プレーンテキストとして扱えるようアンエスケープして返す。
func (s *textSanitizer) SanitizeText(raw string) string {
	return html.UnescapeString(s.policy.Sanitize(raw))
}
