package telegram

import (
	"fmt"
	"strings"

	"github.com/aliskhannn/times-table-bot/internal/domain/entities"
	"github.com/aliskhannn/times-table-bot/internal/service"
)

// renderQuestion renders the current question with its mode.
func renderQuestion(st entities.QuizState) string {
	return fmt.Sprintf("%s\n\n%s", bold(st.Mode.Title()+" Mode"), md(st.QuestionText()))
}

// renderFeedback renders the outcome of an accepted answer followed by the score.
func renderFeedback(res service.SubmitResult) string {
	var line string
	switch res.Feedback {
	case entities.FeedbackCorrect:
		line = bold(msgCorrect)
	case entities.FeedbackTryAgain:
		line = bold(msgTryAgain)
	case entities.FeedbackIncorrect:
		line = bold(fmt.Sprintf(msgWrong, res.Expected))
	default:
		return renderStats(res.State)
	}

	return line + "\n\n" + renderStats(res.State)
}

// renderStats renders the tallies and streaks of a session.
func renderStats(st entities.QuizState) string {
	var sb strings.Builder

	sb.WriteString(bold(msgStatsHeader))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf(msgStatsCorrect, st.CorrectCount)))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf(msgStatsWrong, st.WrongCount)))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf(msgStatsStreak, st.CurrentStreak)))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf(msgStatsBestStreak, st.HighestStreak)))

	return sb.String()
}

func renderCelebration(st entities.QuizState) string {
	return bold(fmt.Sprintf(msgCelebration, st.CorrectCount))
}
