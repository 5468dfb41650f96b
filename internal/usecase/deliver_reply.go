package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

// MaxMessagesPerReply is the platform limit on messages in one reply or push.
const MaxMessagesPerReply = 5

// DeliverReplyInput contains the parameters for delivering a reply.
type DeliverReplyInput struct {
	Reply      *domain.Reply
	UserID     string
	ReplyToken string
}

// DeliverReply is the use case for sending a reply to the user.
// The reply token is tried first; a push to the user is the fallback when the
// token is missing or rejected (for example because it expired while the
// assistant was answering).
type DeliverReply struct {
	messenger domain.Messenger
	log       domain.Logger
}

// NewDeliverReply creates a new DeliverReply use case.
func NewDeliverReply(messenger domain.Messenger, log domain.Logger) *DeliverReply {
	return &DeliverReply{
		messenger: messenger,
		log:       orNop(log),
	}
}

// Execute sends the reply. A nil or empty reply sends nothing.
func (uc *DeliverReply) Execute(ctx context.Context, in DeliverReplyInput) error {
	if in.Reply == nil || len(in.Reply.Messages) == 0 {
		return nil
	}
	msgs := in.Reply.Messages
	if len(msgs) > MaxMessagesPerReply {
		msgs = msgs[:MaxMessagesPerReply]
	}

	var replyErr error
	if in.ReplyToken != "" {
		replyErr = uc.messenger.Reply(ctx, in.ReplyToken, msgs)
		if replyErr == nil {
			return nil
		}
		uc.log.Warn(in.UserID, "deliver", "reply failed, falling back to push: "+replyErr.Error())
	}

	if in.UserID == "" {
		return fmt.Errorf("deliver reply: no reply token or user: %w", domain.ErrExternalUnavailable)
	}
	if err := uc.messenger.Push(ctx, in.UserID, msgs); err != nil {
		return fmt.Errorf("deliver reply: %w: %w", domain.ErrExternalUnavailable, errors.Join(replyErr, err))
	}
	return nil
}
