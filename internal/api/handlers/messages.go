package handlers

import "resume-chatbot/internal/service"

type messageKey int

const (
	msgEmptyMessage messageKey = iota
	msgServiceUnavailable
	msgQuotaExceeded
	msgModelMisconfigured
	msgServerError
)

// userMessages holds the single user-facing string per error class, per
// widget language. Korean is the default.
var userMessages = map[string]map[messageKey]string{
	service.LanguageKo: {
		msgEmptyMessage:       "메시지가 필요합니다.",
		msgServiceUnavailable: "서비스를 일시적으로 사용할 수 없습니다. 잠시 후 다시 시도해주세요.",
		msgQuotaExceeded:      "API 할당량이 초과되었습니다. 잠시 후 다시 시도해주세요.",
		msgModelMisconfigured: "AI 모델을 찾을 수 없습니다. 설정을 확인해주세요.",
		msgServerError:        "서버 오류가 발생했습니다.",
	},
	service.LanguageJa: {
		msgEmptyMessage:       "メッセージが必要です。",
		msgServiceUnavailable: "サービスを一時的に利用できません。しばらくしてからもう一度お試しください。",
		msgQuotaExceeded:      "API利用上限を超えました。しばらくしてからもう一度お試しください。",
		msgModelMisconfigured: "AIモデルが見つかりません。設定を確認してください。",
		msgServerError:        "サーバーエラーが発生しました。",
	},
}

func userMessage(language string, key messageKey) string {
	if msgs, ok := userMessages[language]; ok {
		if msg, ok := msgs[key]; ok {
			return msg
		}
	}
	return userMessages[service.LanguageKo][key]
}
