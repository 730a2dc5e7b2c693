package service

import (
	"fmt"
	"strings"
	"unicode"

	"resume-chatbot/internal/models"
)

const (
	// LanguageKo is the primary answer language of the knowledge base.
	LanguageKo = "ko"
	// LanguageJa is the optional localized answer language.
	LanguageJa = "ja"

	// NoAnswerKeyword is the literal token the generation prompt instructs
	// the model to emit when the supplied context cannot answer the
	// question. Callers strip it from the visible reply and treat its
	// presence as a retrieval failure.
	NoAnswerKeyword = "NO_ANSWER"

	// emptyContextPlaceholder is what the prompt receives when retrieval
	// produced nothing. It is part of the prompt contract, distinct from
	// the user-facing NO_ANSWER sentinel.
	emptyContextPlaceholder = "관련 정보를 찾을 수 없습니다."
)

// RAGService composes retrieved knowledge entries into the context block
// and the final prompt consumed by the answer generator.
type RAGService struct{}

func NewRAGService() *RAGService {
	return &RAGService{}
}

// BuildContext renders the accepted entries in retrieval order, blank-line
// separated. Each entry contributes its question and Korean answer; the
// Japanese answer is added only when the query itself is Japanese.
// An empty entry set yields the fixed placeholder regardless of language.
func (s *RAGService) BuildContext(entries []models.KnowledgeEntry, language string) string {
	if len(entries) == 0 {
		return emptyContextPlaceholder
	}

	useJa := language == LanguageJa

	blocks := make([]string, 0, len(entries))
	for i, entry := range entries {
		var b strings.Builder
		fmt.Fprintf(&b, "**질문 %d**: %s\n", i+1, entry.Question)
		fmt.Fprintf(&b, "**답변 %d**: %s", i+1, entry.AnswerKo)
		if useJa && entry.AnswerJa != "" {
			fmt.Fprintf(&b, "\n**回答 %d**: %s", i+1, entry.AnswerJa)
		}
		blocks = append(blocks, b.String())
	}

	return strings.Join(blocks, "\n\n")
}

// BuildPrompt wraps the context block and the user question with the
// grounding instructions, including the NO_ANSWER contract.
func (s *RAGService) BuildPrompt(contextText, message, language string) string {
	var b strings.Builder

	b.WriteString("다음은 사용자 질문과 관련된 정보입니다. 이 정보만을 근거로 답변해주세요:\n\n")
	b.WriteString(contextText)
	b.WriteString("\n\n")

	if language == LanguageJa {
		b.WriteString("사용자가 일본어로 질문했으므로 일본어로 답변해주세요. ")
	}
	b.WriteString("위의 정보로 답변할 수 없다면 답변에 ")
	b.WriteString(NoAnswerKeyword)
	b.WriteString(" 키워드를 포함해주세요.\n\n")
	fmt.Fprintf(&b, "**사용자 질문**: %s", message)

	return b.String()
}

// noAnswerReplies are the user-facing replies shown when the model has
// nothing to say beyond the sentinel. A blank reply must never reach the
// widget.
var noAnswerReplies = map[string]string{
	LanguageKo: "죄송합니다. 해당 질문에 대한 답변을 준비하지 못했습니다. 다른 질문을 해주세요!",
	LanguageJa: "申し訳ございません。その質問に対する回答を準備できませんでした。他の質問をしてください！",
}

// NoAnswerReply returns the localized could-not-find-answer reply.
func NoAnswerReply(language string) string {
	if reply, ok := noAnswerReplies[language]; ok {
		return reply
	}
	return noAnswerReplies[LanguageKo]
}

// DetectLanguage returns LanguageJa when the message contains any kana
// code point, else LanguageKo. This is a script heuristic, not a language
// classifier: kanji-only input is shared with Chinese and does not count.
func DetectLanguage(message string) string {
	for _, r := range message {
		if unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) {
			return LanguageJa
		}
	}
	return LanguageKo
}
