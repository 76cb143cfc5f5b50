package i18nk

type Key string

const (
	BotMsgCmdStart      Key = "BotMsgCmdStart"
	BotMsgCmdHelp       Key = "BotMsgCmdHelp"
	BotMsgCmdNewsletter Key = "BotMsgCmdNewsletter"
	BotMsgCmdFeat       Key = "BotMsgCmdFeat"

	BotMsgStart   Key = "BotMsgStart"
	BotMsgHelp    Key = "BotMsgHelp"
	BotMsgLoading Key = "BotMsgLoading"

	BotMsgRateLimited   Key = "BotMsgRateLimited"
	BotMsgStoryCooldown Key = "BotMsgStoryCooldown"

	BotMsgTooLarge Key = "BotMsgTooLarge"

	BotMsgDownloadFailed  Key = "BotMsgDownloadFailed"
	BotMsgStoryNotFound   Key = "BotMsgStoryNotFound"
	BotMsgStoriesDisabled Key = "BotMsgStoriesDisabled"
	BotMsgUnknownInput    Key = "BotMsgUnknownInput"

	BotMsgNewsletterOn  Key = "BotMsgNewsletterOn"
	BotMsgNewsletterOff Key = "BotMsgNewsletterOff"

	BotMsgFeatUsage  Key = "BotMsgFeatUsage"
	BotMsgFeatThanks Key = "BotMsgFeatThanks"

	BotMsgAnnounceUsage Key = "BotMsgAnnounceUsage"
	BotMsgAnnounceDone  Key = "BotMsgAnnounceDone"
)
