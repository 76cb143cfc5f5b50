package tgutil

import (
	"strings"

	"github.com/gotd/td/tgerr"
)

// SendErrorKind is the closed taxonomy of transport send failures. Raw
// transport errors are classified exactly once, at the boundary where they
// are first observed; the rest of the code never re-parses error text.
type SendErrorKind int

const (
	SendErrOther SendErrorKind = iota
	// SendErrUnreachable: the recipient blocked the bot, deleted their
	// account or the chat is otherwise gone. Expected churn, never escalated.
	SendErrUnreachable
	// SendErrTooLarge: the transport rejected the payload for its size.
	SendErrTooLarge
)

var unreachableRPCCodes = []string{
	"USER_IS_BLOCKED",
	"USER_DEACTIVATED",
	"USER_DEACTIVATED_BAN",
	"INPUT_USER_DEACTIVATED",
	"PEER_ID_INVALID",
	"CHAT_WRITE_FORBIDDEN",
}

var unreachableSubstrings = []string{
	"bot was blocked by the user",
	"user is deactivated",
	"chat not found",
	"403 Forbidden",
}

var tooLargeRPCCodes = []string{
	"PHOTO_INVALID_DIMENSIONS",
	"FILE_PARTS_INVALID",
	"MEDIA_INVALID",
}

var tooLargeSubstrings = []string{
	"413 Request Entity Too Large",
	"Request Entity Too Large",
}

// ClassifySendError maps a raw transport error into the closed taxonomy.
func ClassifySendError(err error) SendErrorKind {
	if err == nil {
		return SendErrOther
	}
	if tgerr.Is(err, unreachableRPCCodes...) {
		return SendErrUnreachable
	}
	if tgerr.Is(err, tooLargeRPCCodes...) {
		return SendErrTooLarge
	}
	msg := err.Error()
	for _, s := range unreachableSubstrings {
		if strings.Contains(msg, s) {
			return SendErrUnreachable
		}
	}
	for _, s := range tooLargeSubstrings {
		if strings.Contains(msg, s) {
			return SendErrTooLarge
		}
	}
	return SendErrOther
}
