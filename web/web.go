// Package web はバイナリに埋め込まれた静的アセットを提供する。
// 単一バイナリでの配布を前提とし、外部のファイル配置に依存しない。
package web

import "embed"

// Assets は/static配下で配信されるUIアセット一式。
//
//go:embed static
var Assets embed.FS
