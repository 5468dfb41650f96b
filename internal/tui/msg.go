package tui

import "github.com/xiaowang-jiji/taskbot/internal/domain"

// Msg is the interface for all chat TUI messages.
//
//sumtype:decl
type Msg interface {
	sealed()
}

// MsgReply is sent when the dispatcher has answered an input.
type MsgReply struct {
	Reply *domain.Reply // nil when the event gets no answer
}

func (MsgReply) sealed() {}
