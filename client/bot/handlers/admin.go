package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/charmbracelet/log"
	"github.com/slotherinee/instgbot/common/i18n"
	"github.com/slotherinee/instgbot/common/i18n/i18nk"
	"github.com/slotherinee/instgbot/common/utils/strutil"
	"github.com/slotherinee/instgbot/common/utils/tgutil"
	"github.com/slotherinee/instgbot/database"
	"github.com/slotherinee/instgbot/pkg/consts/tglimit"
)

const adminHelpText = `Команды администратора:
/stats — общая статистика
/users [n] — последние активные пользователи
/top [n] — топ по загрузкам
/errors [n] — последние ошибки
/platforms — статистика по платформам
/announce <текст> — рассылка подписчикам
/announcecount — число подписчиков рассылки`

func handleAdminHelpCmd(ctx *ext.Context, update *ext.Update) error {
	ctx.Reply(update, ext.ReplyTextString(adminHelpText), nil)
	return dispatcher.EndGroups
}

func handleStatsCmd(ctx *ext.Context, update *ext.Update) error {
	stats, err := database.GetStats(ctx)
	if err != nil {
		return replyQueryError(ctx, update, err)
	}
	text := fmt.Sprintf(`📊 Статистика бота

👥 Пользователей: %d
📥 Успешных загрузок: %d
❌ Ошибок: %d
🔥 Активны за 24ч: %d`,
		stats.TotalUsers, stats.TotalDownloads, stats.TotalErrors, stats.ActiveUsers24h)
	ctx.Reply(update, ext.ReplyTextString(text), nil)
	return dispatcher.EndGroups
}

func handleUsersCmd(ctx *ext.Context, update *ext.Update) error {
	users, err := database.GetUsers(ctx, limitArg(update, 10))
	if err != nil {
		return replyQueryError(ctx, update, err)
	}
	lines := make([]string, 0, len(users)+1)
	lines = append(lines, "👥 Пользователи:")
	for i, u := range users {
		lines = append(lines, fmt.Sprintf("%d. %s — %d загрузок, активность %s",
			i+1, displayName(u), u.DownloadCount, u.LastActivity.Format("02.01.2006 15:04")))
	}
	replyChunked(ctx, update, strings.Join(lines, "\n"))
	return dispatcher.EndGroups
}

func handleTopCmd(ctx *ext.Context, update *ext.Update) error {
	users, err := database.GetTopUsers(ctx, limitArg(update, 10))
	if err != nil {
		return replyQueryError(ctx, update, err)
	}
	lines := make([]string, 0, len(users)+1)
	lines = append(lines, "🏆 Топ по загрузкам:")
	for i, u := range users {
		lines = append(lines, fmt.Sprintf("%d. %s — %d", i+1, displayName(u), u.DownloadCount))
	}
	replyChunked(ctx, update, strings.Join(lines, "\n"))
	return dispatcher.EndGroups
}

func handleErrorsCmd(ctx *ext.Context, update *ext.Update) error {
	errs, err := database.GetRecentErrors(ctx, limitArg(update, 10))
	if err != nil {
		return replyQueryError(ctx, update, err)
	}
	lines := make([]string, 0, len(errs)+1)
	lines = append(lines, "🚨 Последние ошибки:")
	for _, e := range errs {
		lines = append(lines, fmt.Sprintf("[%s] %s: %s",
			e.CreatedAt.Format("02.01 15:04"), e.Context, truncate(e.Message, 200)))
	}
	replyChunked(ctx, update, strings.Join(lines, "\n"))
	return dispatcher.EndGroups
}

func handlePlatformsCmd(ctx *ext.Context, update *ext.Update) error {
	stats, err := database.GetPlatformStats(ctx)
	if err != nil {
		return replyQueryError(ctx, update, err)
	}
	lines := make([]string, 0, len(stats)+1)
	lines = append(lines, "📈 Платформы:")
	for _, s := range stats {
		lines = append(lines, fmt.Sprintf("%s — %d запросов, %d успешных (%.1f%%)",
			s.Platform, s.TotalRequests, s.SuccessfulDownloads, s.SuccessRate))
	}
	replyChunked(ctx, update, strings.Join(lines, "\n"))
	return dispatcher.EndGroups
}

func handleAnnounceCountCmd(ctx *ext.Context, update *ext.Update) error {
	subs, err := database.GetNewsletterSubscribers(ctx)
	if err != nil {
		return replyQueryError(ctx, update, err)
	}
	ctx.Reply(update, ext.ReplyTextString(fmt.Sprintf("📬 Подписчиков рассылки: %d", len(subs))), nil)
	return dispatcher.EndGroups
}

// handleAnnounceCmd broadcasts to newsletter subscribers. Unreachable
// recipients are counted as failures but never retried or reported per-user.
func handleAnnounceCmd(ctx *ext.Context, update *ext.Update) error {
	parts := strings.SplitN(update.EffectiveMessage.Text, " ", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgAnnounceUsage)), nil)
		return dispatcher.EndGroups
	}
	subs, err := database.GetNewsletterSubscribers(ctx)
	if err != nil {
		return replyQueryError(ctx, update, err)
	}
	logger := log.FromContext(ctx)
	text := strings.TrimSpace(parts[1])
	var sent, failed int
	for _, u := range subs {
		if _, err := deps.Messenger.SendText(ctx, u.ChatID, text); err != nil {
			failed++
			if tgutil.ClassifySendError(err) != tgutil.SendErrUnreachable {
				logger.Warnf("announce to %d: %s", u.ChatID, err)
			}
			continue
		}
		sent++
		time.Sleep(100 * time.Millisecond)
	}
	ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgAnnounceDone, map[string]any{
		"Sent":   sent,
		"Failed": failed,
	})), nil)
	return dispatcher.EndGroups
}

func limitArg(update *ext.Update, def int) int {
	args := strings.Fields(update.EffectiveMessage.Text)
	if len(args) < 2 {
		return def
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func displayName(u database.User) string {
	if u.Username != "" {
		return "@" + u.Username
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return fmt.Sprintf("ID %d", u.ChatID)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "…"
}

func replyChunked(ctx *ext.Context, update *ext.Update, text string) {
	for _, chunk := range strutil.SplitMessage(text, tglimit.MaxMessageLength) {
		ctx.Reply(update, ext.ReplyTextString(chunk), nil)
	}
}

func replyQueryError(ctx *ext.Context, update *ext.Update, err error) error {
	log.FromContext(ctx).Errorf("admin report query: %s", err)
	ctx.Reply(update, ext.ReplyTextString("Не удалось получить данные: "+err.Error()), nil)
	return dispatcher.EndGroups
}
