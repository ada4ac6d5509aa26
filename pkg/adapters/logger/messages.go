package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Starting pipeline":                "パイプラインを開始します",
		"Pipeline completed successfully":  "パイプラインが正常に完了しました",
		"Decoding %s":                      "%s をデコード中",
		"Decoded %dx%d image in %d groups": "%dx%d の画像を %d グループでデコードしました",
		"Encoding %s":                      "%s をエンコード中",
		"Encoded %dx%d image: %d bytes":    "%dx%d の画像をエンコードしました: %d バイト",

		// Decoder component
		"State %s -> %s":                                        "状態遷移 %s -> %s",
		"Header parsed: %dx%d, %d bits, %d channels, %d groups": "ヘッダー解析完了: %dx%d, %d ビット, %d チャンネル, %d グループ",
		"Table of contents: %d groups, %d bytes":                "目次: %d グループ, %d バイト",
		"Decoding batch of %d groups":                           "%d グループを一括デコード中",
		"Box %s: %d bytes":                                      "ボックス %s: %d バイト",
		"Output buffer bound: %d bytes, stride %d":              "出力バッファを設定: %d バイト, ストライド %d",

		// Decode stage
		"Decoding %s in chunks of %d bytes":            "%s を %d バイト単位でデコード中",
		"Basic info: %dx%d, %d bits, container %t":     "基本情報: %dx%d, %d ビット, コンテナ %t",
		"Decoded %d groups from %d bytes in %d chunks": "%d グループをデコードしました (%d バイト, %d チャンク)",

		// Export stage
		"Scaling %dx%d to %dx%d": "%dx%d を %dx%d に縮小中",
		"Exported %s: %d bytes":  "%s を書き出しました: %d バイト",

		// Encode stage
		"Encoding %dx%d, %d bits, %d channels, %d groups": "%dx%d, %d ビット, %d チャンネル, %d グループでエンコード中",

		// Errors and warnings
		"Failed to decode: %s":            "デコードに失敗しました: %s",
		"Failed to encode: %s":            "エンコードに失敗しました: %s",
		"Failed to export image: %s":      "画像の書き出しに失敗しました: %s",
		"Failed to write output: %s":      "出力の書き込みに失敗しました: %s",
		"Failed to save debug output: %s": "デバッグ出力の保存に失敗しました: %s",
	})
}
