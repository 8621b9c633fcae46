package apperr

// Advise returns a short, user-facing remediation hint for a given error.
// It mirrors the Python original's error_recovery_advisor.py: a pure
// mapping from failure category to a next-step suggestion, shown alongside
// the HTTP error response so the desktop shell doesn't need its own
// hardcoded copy of this mapping.
func Advise(err error) string {
	switch KindOf(err) {
	case KindDevice:
		return "キャプチャ機器または録画機器の接続を確認してください。"
	case KindAuthentication:
		return "YouTube の認証情報を再設定してください。"
	case KindConfiguration:
		return "設定ファイルの必須項目を確認してください。"
	case KindConflict, KindRuleViolation:
		return "現在進行中の録画・処理が完了してから再試行してください。"
	case KindRecording:
		return "録画機器の状態を確認し、必要であれば再起動してください。"
	case KindValidation:
		return "入力内容を確認してください。"
	case KindNotFound:
		return "対象のアセットが見つかりません。一覧を再読み込みしてください。"
	default:
		return "予期しないエラーが発生しました。ログを確認してください。"
	}
}
