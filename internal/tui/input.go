package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

// Input parsing errors.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrNoSuchRow      = errors.New("no such row on the card")
	ErrNeedRow        = errors.New("command needs a row number")
)

// InputKind is what a line typed into the chat turns into.
type InputKind int

const (
	InputText     InputKind = iota // Free text sent as a chat message
	InputPostback                  // A card control tap
	InputFollow                    // Simulated "add friend"
	InputQuit
)

// Input is a parsed chat line.
// Fields are ordered to minimize memory padding.
type Input struct {
	Text     string
	Postback domain.PostbackData
	Kind     InputKind
}

// ParseInput turns a typed line into a chat input.
// Lines starting with "/" are commands; rows maps card row numbers
// (1-based) to task ids for /done and /fav.
func ParseInput(line string, rows []int64) (Input, error) {
	if !strings.HasPrefix(line, "/") {
		return Input{Kind: InputText, Text: line}, nil
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/done", "/fav":
		if len(fields) != 2 {
			return Input{}, fmt.Errorf("%w: %s N", ErrNeedRow, fields[0])
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 || n > len(rows) {
			return Input{}, fmt.Errorf("%w: %s", ErrNoSuchRow, fields[1])
		}
		action := domain.ActionComplete
		if fields[0] == "/fav" {
			action = domain.ActionFavorite
		}
		return Input{Kind: InputPostback, Postback: domain.PostbackData{Action: action, TaskID: rows[n-1]}}, nil
	case "/list":
		return Input{Kind: InputPostback, Postback: domain.PostbackData{Action: domain.ActionList}}, nil
	case "/follow":
		return Input{Kind: InputFollow}, nil
	case "/quit":
		return Input{Kind: InputQuit}, nil
	default:
		return Input{}, fmt.Errorf("%w: %s", ErrUnknownCommand, fields[0])
	}
}

// Event builds the chat event for the input.
func (in Input) Event(base domain.EventBase) domain.Event {
	switch in.Kind {
	case InputPostback:
		return domain.Postback{Data: in.Postback, EventBase: base}
	case InputFollow:
		return domain.Follow{EventBase: base}
	default:
		return domain.TextMessage{Text: in.Text, EventBase: base}
	}
}
