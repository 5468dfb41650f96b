package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

// Card is the terminal rendering of one outbound message.
// Fields are ordered to minimize memory padding.
type Card struct {
	Title string   // Card header, empty for text messages
	Lines []string // Body lines in display order
	Chips []string // Quick reply labels
	Rows  []int64  // Task id per numbered row, in row order
}

// CardOf flattens a message into terminal lines.
// Horizontal boxes become one line; separators are dropped.
func CardOf(msg domain.Message) Card {
	var c Card
	if msg.QuickReply != nil {
		for _, item := range msg.QuickReply.Items {
			c.Chips = append(c.Chips, item.Action.Label)
		}
	}

	if !msg.IsCard() {
		c.Lines = strings.Split(msg.Text, "\n")
		return c
	}
	if msg.Contents == nil {
		c.Lines = []string{msg.AltText}
		return c
	}

	if h := msg.Contents.Header; h != nil {
		c.Title = strings.Join(texts(*h), " ")
	}
	if b := msg.Contents.Body; b != nil {
		for _, comp := range b.Contents {
			c.addComponent(comp)
		}
	}
	return c
}

func (c *Card) addComponent(comp domain.Component) {
	switch comp.Type {
	case "text":
		c.Lines = append(c.Lines, comp.Text)
	case "box":
		parts := texts(comp)
		if len(parts) > 0 {
			c.Lines = append(c.Lines, strings.Join(parts, "  "))
		}
		for _, child := range comp.Contents {
			if id, ok := completeTarget(child.Action); ok {
				c.Rows = append(c.Rows, id)
			}
		}
	}
}

// texts collects the text of every text component under comp, depth first.
func texts(comp domain.Component) []string {
	if comp.Type == "text" {
		return []string{comp.Text}
	}
	var out []string
	for _, child := range comp.Contents {
		out = append(out, texts(child)...)
	}
	return out
}

// completeTarget returns the task id of a completion toggle.
func completeTarget(action *domain.CardAction) (int64, bool) {
	if action == nil || action.Type != "postback" {
		return 0, false
	}
	data, err := domain.ParsePostback(action.Data)
	if err != nil || data.Action != domain.ActionComplete {
		return 0, false
	}
	return data.TaskID, true
}

// ChipLine renders quick reply labels as bracketed chips that fit width.
// Chips that do not fit are dropped; width <= 0 means unlimited.
func ChipLine(chips []string, width int) string {
	var b strings.Builder
	used := 0
	for _, chip := range chips {
		s := "[" + chip + "]"
		w := runewidth.StringWidth(s)
		if used > 0 {
			w++
		}
		if width > 0 && used+w > width {
			break
		}
		if used > 0 {
			b.WriteString(" ")
		}
		b.WriteString(s)
		used += w
	}
	return b.String()
}
