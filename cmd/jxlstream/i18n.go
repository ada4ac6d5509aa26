// Package main provides localization for the jxlstream CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Decode and encode JXS images incrementally.": "JXS画像をインクリメンタルにデコード・エンコードします。",

		// Version command
		"jxlstream version %s":       "jxlstream バージョン %s",
		"Decoder library version %s": "デコーダーライブラリ バージョン %s",

		// Runtime messages
		"Output saved to %s":            "出力を %s に保存しました",
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",

		// Info command
		"Signature: %s":                     "シグネチャ: %s",
		"Boxes: %d":                         "ボックス数: %d",
		"to end":                            "終端まで",
		"Dimensions: %dx%d":                 "サイズ: %dx%d",
		"Bits per sample: %d (exponent %d)": "サンプルあたりのビット数: %d (指数部 %d)",
		"Channels: %d color, %d extra":      "チャンネル: カラー %d, 追加 %d",
		"Orientation: %d":                   "向き: %d",
		"Color space: %s, transfer %s":      "色空間: %s, 伝達関数 %s",

		// Summary output
		"Summary saved to %s":         "サマリーを %s に保存しました",
		"Failed to write summary: %s": "サマリーの書き込みに失敗しました: %s",

		// Summary content
		"Decode Summary": "デコードサマリー",
		"Generated":      "生成日時",
		"Item":           "項目",
		"Value":          "値",
		"Yes":            "はい",
		"No":             "いいえ",
		"Generated by":   "生成:",

		// Input section
		"Input":     "入力",
		"Path":      "パス",
		"Size":      "サイズ",
		"Container": "コンテナ",
		"Chunks":    "チャンク",

		// Image section
		"Image":             "画像",
		"Dimensions":        "寸法",
		"Bits per Sample":   "サンプルあたりのビット数",
		"Channels":          "チャンネル",
		"Orientation":       "向き",
		"Color Space":       "色空間",
		"Transfer Function": "伝達関数",

		// Decoding section
		"Decoding":     "デコード",
		"Groups":       "グループ",
		"Workers":      "ワーカー数",
		"Pixel Format": "ピクセル形式",
		"Duration":     "処理時間",
		"Events":       "イベント",

		// Output section
		"Output":    "出力",
		"Format":    "形式",
		"File Size": "ファイルサイズ",
	})
}
