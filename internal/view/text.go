package view

import (
	"fmt"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

// Card text.
const (
	textHeader    = "總共 %d 件事要做"
	textSummary   = "已完成 %d 件，待完成 %d 件"
	textEmpty     = "目前沒有待辦事項"
	textRecords   = "📚 全部記錄"
	textFavorites = "⭐ 我的收藏"
)

// Reply text.
const (
	TextWelcome       = "歡迎使用小汪記記！直接傳訊息給我就會記成待辦事項，問問題我也會回答喔。"
	TextApology       = "抱歉，處理您的訊息時發生錯誤，請稍後再試。"
	TextTaskNotFound  = "找不到這個任務，可能已經被刪除了。"
	TextAlreadyFaved  = "這個任務已經在最愛裡了。"
	TextSyncRejected  = "同步資料格式錯誤，任務清單維持不變。"
	TextAssistantDown = "AI 助理暫時無法回答，請稍後再試。"
	TextEmptyMessage  = "訊息是空的，請輸入要記錄的內容。"
	TextInvalidAction = "這個按鈕已經失效了，請重新開啟清單。"
)

// CompletedText confirms a completed task.
func CompletedText(task domain.Task) string {
	return fmt.Sprintf("✅ 已完成：%s", task.Text)
}

// TagPrompt is the reply to a favorite action: a plain text question with the
// user's tags offered as chips.
func TagPrompt(task domain.Task, tags []domain.Tag) domain.Message {
	msg := domain.TextMessageOf(fmt.Sprintf("⭐ 已加入最愛：%s\n要幫它加上哪個標籤呢？", task.Text))
	msg.QuickReply = QuickReplies(tags)
	return msg
}
