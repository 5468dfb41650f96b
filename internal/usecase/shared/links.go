package shared

import (
	"net/url"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
	"github.com/xiaowang-jiji/taskbot/internal/view"
)

// TicketParam is the query parameter carrying a view ticket.
const TicketParam = "ticket"

// BuildLinks returns the browser surface links for a user's card. Each link
// carries a fresh view ticket; links are left bare when no ticket can be issued.
func BuildLinks(cfg domain.LinksConfig, ticketer domain.Ticketer, userID string, log domain.Logger) view.Links {
	var ticket string
	if ticketer != nil {
		t, err := ticketer.Issue(userID)
		if err != nil {
			log.Warn(userID, "ticket", "issue ticket failed: "+err.Error())
		} else {
			ticket = t
		}
	}
	return view.Links{
		EditURL:      withTicket(cfg.EditURL, ticket),
		RecordsURL:   withTicket(cfg.RecordsURL, ticket),
		FavoritesURL: withTicket(cfg.FavoritesURL, ticket),
	}
}

func withTicket(rawURL, ticket string) string {
	if rawURL == "" || ticket == "" {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set(TicketParam, ticket)
	u.RawQuery = q.Encode()
	return u.String()
}
