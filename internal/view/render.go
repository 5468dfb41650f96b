// Package view renders task lists into LINE Flex cards.
// Every function here is pure: identical inputs give identical output.
package view

import (
	"cmp"
	"fmt"
	"net/url"
	"slices"
	"strconv"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

const (
	// LabelBudget is the number of characters of task text shown in a row.
	LabelBudget = 12

	// MaxQuickReplies is the platform limit on suggestion chips.
	MaxQuickReplies = 13

	// maxChipLabel is the platform limit on a quick reply label.
	maxChipLabel = 20

	ellipsis = "…"
)

// Card colors.
const (
	colorHeader    = "#CD853F"
	colorBody      = "#FFF8DC"
	colorText      = "#333333"
	colorDone      = "#999999"
	colorControl   = "#000000"
	colorFavorite  = "#F4B400"
	colorSeparator = "#C0C0C0"
	colorFooterSep = "#E0E0E0"
	colorLink      = "#4169E1"
	colorWhite     = "#FFFFFF"
)

// Links are the browser surface URLs shown on the card.
type Links struct {
	EditURL      string // Row tap target; taskId is appended
	RecordsURL   string // "All records" footer link
	FavoritesURL string // "Favorites" footer link
}

// Render builds the task list card.
func Render(tasks []domain.Task, tags []domain.Tag, links Links) domain.Message {
	total := len(tasks)
	completed := domain.CompletedCount(tasks)
	title := fmt.Sprintf(textHeader, total)

	body := make([]domain.Component, 0, 2*total+5)
	if total == 0 {
		body = append(body, domain.Component{
			Type:  "text",
			Text:  textEmpty,
			Size:  "sm",
			Color: colorDone,
			Align: "center",
		})
	}
	for i, task := range tasks {
		if i > 0 {
			body = append(body, domain.Component{Type: "separator", Margin: "xs", Color: colorSeparator})
		}
		body = append(body, row(i, task, links.EditURL))
	}
	body = append(body, footer(completed, total-completed, links)...)

	return domain.Message{
		Type:    domain.MessageFlex,
		AltText: title,
		Contents: &domain.Bubble{
			Type: "bubble",
			Size: "kilo",
			Header: &domain.Component{
				Type:            "box",
				Layout:          "vertical",
				PaddingAll:      "md",
				BackgroundColor: colorHeader,
				Contents: []domain.Component{{
					Type:   "text",
					Text:   title,
					Color:  colorWhite,
					Size:   "md",
					Weight: "bold",
					Align:  "center",
				}},
			},
			Body: &domain.Component{
				Type:            "box",
				Layout:          "vertical",
				PaddingAll:      "lg",
				BackgroundColor: colorBody,
				Contents:        body,
			},
		},
		QuickReply: QuickReplies(tags),
	}
}

// row renders one task: label, favorite toggle, completion toggle.
func row(index int, task domain.Task, editURL string) domain.Component {
	labelColor, decoration := colorText, "none"
	if task.Completed {
		labelColor, decoration = colorDone, "line-through"
	}

	label := domain.Component{
		Type:       "text",
		Text:       fmt.Sprintf("%d. %s", index+1, Truncate(task.Text, LabelBudget)),
		Size:       "sm",
		Color:      labelColor,
		Flex:       intPtr(1),
		Wrap:       true,
		Decoration: decoration,
		Margin:     "none",
	}
	if editURL != "" {
		label.Action = &domain.CardAction{Type: "uri", URI: withTaskID(editURL, task.ID)}
	}

	return domain.Component{
		Type:       "box",
		Layout:     "horizontal",
		Spacing:    "sm",
		PaddingAll: "md",
		AlignItems: "center",
		Contents: []domain.Component{
			label,
			{
				Type:   "text",
				Text:   FavoriteGlyph(task.Favorited),
				Size:   "lg",
				Color:  colorFavorite,
				Flex:   intPtr(0),
				Align:  "center",
				Action: postback(domain.ActionFavorite, task.ID),
			},
			{
				Type:   "text",
				Text:   CompletionGlyph(task.Completed),
				Size:   "lg",
				Color:  colorControl,
				Flex:   intPtr(0),
				Align:  "center",
				Action: postback(domain.ActionComplete, task.ID),
			},
		},
	}
}

func footer(completed, pending int, links Links) []domain.Component {
	out := []domain.Component{
		{Type: "separator", Margin: "md", Color: colorFooterSep},
		{
			Type:   "text",
			Text:   fmt.Sprintf(textSummary, completed, pending),
			Size:   "xs",
			Color:  colorDone,
			Align:  "center",
			Margin: "md",
		},
	}
	if links.RecordsURL == "" && links.FavoritesURL == "" {
		return out
	}

	out = append(out, domain.Component{Type: "separator", Margin: "md", Color: colorFooterSep})
	var linkRow []domain.Component
	for _, l := range []struct{ text, uri string }{
		{textRecords, links.RecordsURL},
		{textFavorites, links.FavoritesURL},
	} {
		if l.uri == "" {
			continue
		}
		linkRow = append(linkRow, domain.Component{
			Type:   "text",
			Text:   l.text,
			Size:   "sm",
			Color:  colorLink,
			Align:  "center",
			Flex:   intPtr(1),
			Action: &domain.CardAction{Type: "uri", URI: l.uri},
		})
	}
	return append(out, domain.Component{
		Type:     "box",
		Layout:   "horizontal",
		Margin:   "md",
		Contents: linkRow,
	})
}

// QuickReplies turns tags into suggestion chips: active tags only, ordered by
// SortOrder, capped at MaxQuickReplies. The default tag set is used when no
// active tag is left.
func QuickReplies(tags []domain.Tag) *domain.QuickReply {
	active := ActiveTags(tags)
	if len(active) == 0 {
		active = domain.DefaultTags()
	}
	if len(active) > MaxQuickReplies {
		active = active[:MaxQuickReplies]
	}

	items := make([]domain.QuickReplyItem, 0, len(active))
	for _, tag := range active {
		items = append(items, domain.QuickReplyItem{
			Type: "action",
			Action: domain.CardAction{
				Type:  "message",
				Label: Truncate(tag.Name, maxChipLabel),
				Text:  tag.Name,
			},
		})
	}
	return &domain.QuickReply{Items: items}
}

// ActiveTags returns the active tags sorted by SortOrder. The input is not modified.
func ActiveTags(tags []domain.Tag) []domain.Tag {
	active := make([]domain.Tag, 0, len(tags))
	for _, tag := range tags {
		if tag.IsActive && tag.Name != "" {
			active = append(active, tag)
		}
	}
	slices.SortStableFunc(active, func(a, b domain.Tag) int {
		return cmp.Compare(a.SortOrder, b.SortOrder)
	})
	return active
}

// Truncate shortens s to at most budget characters, ending in an ellipsis
// when something was cut.
func Truncate(s string, budget int) string {
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	return string(runes[:budget-1]) + ellipsis
}

// FavoriteGlyph returns ★ for favorited tasks and ☆ otherwise.
func FavoriteGlyph(favorited bool) string {
	if favorited {
		return "★"
	}
	return "☆"
}

// CompletionGlyph returns ☑ for completed tasks and □ otherwise.
func CompletionGlyph(completed bool) string {
	if completed {
		return "☑"
	}
	return "□"
}

func postback(action domain.Action, taskID int64) *domain.CardAction {
	return &domain.CardAction{
		Type: "postback",
		Data: domain.PostbackData{Action: action, TaskID: taskID}.Encode(),
	}
}

func withTaskID(rawURL string, taskID int64) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set("taskId", strconv.FormatInt(taskID, 10))
	u.RawQuery = q.Encode()
	return u.String()
}

func intPtr(v int) *int {
	return &v
}
