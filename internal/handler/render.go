package handler

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/fujioka8700/Eitan/internal/domain"
	"github.com/fujioka8700/Eitan/internal/session"
)

// flashcardText renders the current flashcard. The back of the card is
// shown only after a flip; learned state is the tracker's, not the
// session's.
func flashcardText(item session.Item, idx, total, remainingMs int, direction domain.Direction, learned bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📖 カード %d/%d", idx+1, total)
	if learned {
		b.WriteString("  ✅ 覚えた")
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "❓ %s\n", item.Word.Prompt(direction))
	if item.Revealed {
		fmt.Fprintf(&b, "💡 %s\n", item.Word.Answer(direction))
	}

	fmt.Fprintf(&b, "\n⏳ 残り %d秒", (remainingMs+999)/1000)
	return b.String()
}

// flashcardMarkup returns the card controls
func flashcardMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(btnFlip),
		markup.Row(btnPrev, btnNext),
		markup.Row(btnLearned),
		markup.Row(btnMainMenu),
	)
	return markup
}

// quizText renders the current quiz question, or its review once the
// item is settled
func quizText(item session.Item, idx, total, remainingMs int, direction domain.Direction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✏️ 第%d問/%d\n\n", idx+1, total)
	fmt.Fprintf(&b, "❓ %s\n", item.Word.Prompt(direction))

	if !item.Answered {
		fmt.Fprintf(&b, "\n⏳ 残り %d秒", (remainingMs+999)/1000)
		return b.String()
	}

	correct := item.Word.Answer(direction)
	if item.SelectedAnswer == correct {
		b.WriteString("\n⭕ 正解！")
	} else if item.SelectedAnswer == "" {
		fmt.Fprintf(&b, "\n⌛ 時間切れ\n💡 正解: %s", correct)
	} else {
		fmt.Fprintf(&b, "\n❌ 不正解\n💡 正解: %s", correct)
	}
	return b.String()
}

// quizMarkup lays out the four option buttons. After the answer the
// options disappear and only the escape hatch remains.
func quizMarkup(options []string, answered bool) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	if answered {
		markup.Inline(markup.Row(btnMainMenu))
		return markup
	}

	rows := make([]tele.Row, 0, len(options)+1)
	for i, option := range options {
		btn := markup.Data(fmt.Sprintf("%d. %s", i+1, option), "opt_"+strconv.Itoa(i))
		rows = append(rows, markup.Row(btn))
	}
	rows = append(rows, markup.Row(btnMainMenu))
	markup.Inline(rows...)
	return markup
}

// resultsText renders the end-of-run summary
func resultsText(sess *session.Session, learnedCount int) string {
	var b strings.Builder

	if sess.Mode() == domain.ModeQuiz {
		correct, total := sess.Score()
		fmt.Fprintf(&b, "🏁 クイズ終了！\n\n🎯 成績: %d/%d\n\n", correct, total)
		words := sess.Words()
		for i, record := range sess.Records() {
			mark := "❌"
			if record.IsCorrect {
				mark = "⭕"
			}
			prompt := ""
			if i < len(words) {
				prompt = words[i].Prompt(sess.Direction())
			}
			fmt.Fprintf(&b, "%s %s — %s\n", mark, prompt, record.CorrectAnswer)
		}
		return b.String()
	}

	total := sess.Len()
	fmt.Fprintf(&b, "🏁 フラッシュカード終了！\n\n📖 %d枚のカードを学習しました\n", total)
	fmt.Fprintf(&b, "✅ 覚えた単語: %d\n", learnedCount)
	return b.String()
}

// resultsMarkup returns the results screen controls
func resultsMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(btnRestart),
		markup.Row(btnMainMenu),
	)
	return markup
}

// historyText renders the learning history, most recently studied first
func historyText(records []domain.LearningRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 学習履歴 (%d語)\n\n", len(records))
	for _, r := range records {
		fmt.Fprintf(&b, "%s — %s\n", r.English, r.Japanese)
		fmt.Fprintf(&b, "  ⭕ %d  ❌ %d  📖 %d  🕐 %s\n",
			r.CorrectCount, r.MistakeCount, r.FlashcardLearnedCount, r.LastStudiedDisplay())
	}
	return b.String()
}

// directionMarkup asks for the prompt/answer orientation
func directionMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("🇬🇧 英語 → 日本語", "dir_enja")),
		markup.Row(markup.Data("🇯🇵 日本語 → 英語", "dir_jaen")),
		markup.Row(btnMainMenu),
	)
	return markup
}

// levelMarkup asks for the grade filter
func levelMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("すべて", "level_"+domain.LevelAll)),
		markup.Row(
			markup.Data("中1", "level_"+domain.LevelChuu1),
			markup.Data("中2", "level_"+domain.LevelChuu2),
			markup.Data("中3", "level_"+domain.LevelChuu3),
		),
		markup.Row(btnMainMenu),
	)
	return markup
}

// countMarkup asks how many words to study
func countMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(
			markup.Data("5語", "count_5"),
			markup.Data("10語", "count_10"),
			markup.Data("20語", "count_20"),
		),
		markup.Row(btnMainMenu),
	)
	return markup
}
