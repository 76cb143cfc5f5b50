package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rs/xid"
	"github.com/slotherinee/instgbot/common/utils/strutil"
	"github.com/slotherinee/instgbot/config"
	"github.com/slotherinee/instgbot/core"
	"github.com/slotherinee/instgbot/pkg/consts/tglimit"
)

// Notifier relays failure reports to the configured admins. Expected
// conditions (oversized payloads, unreachable recipients) never reach it:
// the delivery layer filters them before escalating.
type Notifier struct {
	msg core.Messenger
}

var _ core.Notifier = (*Notifier)(nil)

func NewNotifier(msg core.Messenger) *Notifier {
	return &Notifier{msg: msg}
}

var contextTitles = map[string]string{
	"youtube mp4 check":         "🔍 YouTube не вернул ссылку на видео",
	"snapsave download":         "📱 Ошибка скачивания из соцсетей",
	"threads download":          "🧵 Ошибка скачивания из Threads",
	"telegram stories download": "📖 Ошибка скачивания сторис",
	"media check":               "📁 Не найдены медиафайлы в ответе",
	"single video":              "🎬 Ошибка обработки одного видео",
	"single photo":              "📸 Ошибка обработки одного фото",
	"sendMediaGroup videos":     "🎥📦 Ошибка отправки группы видео",
	"sendMediaGroup photos":     "📸📦 Ошибка отправки группы фото",
	"main message handler":      "⚙️ Общая ошибка обработки сообщения",
}

func (n *Notifier) NotifyError(ctx context.Context, errContext string, chatID int64, username, request string, err error) {
	logger := log.FromContext(ctx)
	reportID := xid.New().String()
	logger.Error("Escalating error to admins",
		"id", reportID, "context", errContext, "chat_id", chatID, "err", err)

	admins := config.C().Bot.Admins
	if len(admins) == 0 {
		return
	}

	title, ok := contextTitles[errContext]
	if !ok {
		title = "❌ Ошибка: " + errContext
	}
	user := fmt.Sprintf("ID: %d", chatID)
	if username != "" {
		user = "@" + username
	}
	lines := []string{
		fmt.Sprintf("🚨 У пользователя %s произошла ошибка", user),
		"",
		title,
		"",
		"🔍 Детали ошибки:",
		err.Error(),
		"",
		fmt.Sprintf("👤 Chat ID: %d", chatID),
	}
	if request != "" {
		lines = append(lines, fmt.Sprintf("💬 Запрос: %s", request))
	}
	lines = append(lines,
		fmt.Sprintf("🆔 Report: %s", reportID),
		fmt.Sprintf("⏰ Время: %s", time.Now().Format("02.01.2006 15:04:05")),
	)
	report := strings.Join(lines, "\n")

	for _, admin := range admins {
		for _, chunk := range strutil.SplitMessage(report, tglimit.MaxMessageLength) {
			if _, sendErr := n.msg.SendText(ctx, admin, chunk); sendErr != nil {
				logger.Warn("Failed to send error report to admin", "admin", admin, "err", sendErr)
			}
		}
	}
}
