package domain

// MessageType is the kind of an outbound message.
type MessageType string

const (
	MessageText MessageType = "text"
	MessageFlex MessageType = "flex"
)

// Message is an outbound chat message: plain text or a Flex card.
// The JSON shape follows the LINE Messaging API message object.
type Message struct {
	Contents   *Bubble     `json:"contents,omitempty"`   // flex only
	QuickReply *QuickReply `json:"quickReply,omitempty"` // suggestion chips
	Type       MessageType `json:"type"`
	Text       string      `json:"text,omitempty"`    // text only
	AltText    string      `json:"altText,omitempty"` // flex only
}

// TextMessageOf builds a plain text message.
func TextMessageOf(text string) Message {
	return Message{Type: MessageText, Text: text}
}

// IsCard reports whether the message is a Flex card.
func (m Message) IsCard() bool {
	return m.Type == MessageFlex
}

// Bubble is a single Flex card container.
type Bubble struct {
	Header *Component `json:"header,omitempty"`
	Body   *Component `json:"body,omitempty"`
	Footer *Component `json:"footer,omitempty"`
	Type   string     `json:"type"` // always "bubble"
	Size   string     `json:"size,omitempty"`
}

// Component is a Flex box, text or separator. Only the fields relevant to
// the component type are set.
type Component struct {
	Action          *CardAction `json:"action,omitempty"`
	Flex            *int        `json:"flex,omitempty"`
	Type            string      `json:"type"`
	Layout          string      `json:"layout,omitempty"`
	Text            string      `json:"text,omitempty"`
	Size            string      `json:"size,omitempty"`
	Weight          string      `json:"weight,omitempty"`
	Color           string      `json:"color,omitempty"`
	Align           string      `json:"align,omitempty"`
	Decoration      string      `json:"decoration,omitempty"`
	Margin          string      `json:"margin,omitempty"`
	Spacing         string      `json:"spacing,omitempty"`
	PaddingAll      string      `json:"paddingAll,omitempty"`
	BackgroundColor string      `json:"backgroundColor,omitempty"`
	AlignItems      string      `json:"alignItems,omitempty"`
	Contents        []Component `json:"contents,omitempty"`
	Wrap            bool        `json:"wrap,omitempty"`
}

// CardAction is the tap action of a component or quick reply chip.
type CardAction struct {
	Type        string `json:"type"` // "postback", "uri" or "message"
	Label       string `json:"label,omitempty"`
	Data        string `json:"data,omitempty"`
	DisplayText string `json:"displayText,omitempty"`
	URI         string `json:"uri,omitempty"`
	Text        string `json:"text,omitempty"`
}

// QuickReply holds suggestion chips shown under a message.
type QuickReply struct {
	Items []QuickReplyItem `json:"items"`
}

// QuickReplyItem is one suggestion chip.
type QuickReplyItem struct {
	Type   string     `json:"type"` // always "action"
	Action CardAction `json:"action"`
}

// Reply is the set of messages produced for one inbound event.
type Reply struct {
	Messages []Message
}

// NewReply builds a reply from messages.
func NewReply(msgs ...Message) *Reply {
	return &Reply{Messages: msgs}
}

// TextReply builds a single plain-text reply.
func TextReply(text string) *Reply {
	return NewReply(TextMessageOf(text))
}
