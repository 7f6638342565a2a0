package notify

import (
	"strings"

	"localdink/internal/database"
)

// TemplateData carries the resolved display values substituted into
// notification copy. Unused fields render as empty strings.
type TemplateData struct {
	InviterName string
	PlayerName  string
	MatchType   string
	Date        string
	Time        string
	CourtName   string
	Link        string
}

type template struct {
	Title string
	Body  string
	SMS   string
}

var templates = map[database.NotificationType]template{
	database.NotificationTypeInviteSent: {
		Title: "You're invited to play",
		Body:  "{inviter} invited you to a {match_type} game on {date} at {time}, {court}. Tap to respond.",
		SMS:   "LocalDink: {inviter} invited you to {match_type} on {date} at {time}, {court}. RSVP: {link}",
	},
	database.NotificationTypeInviteAccepted: {
		Title: "{player} is in",
		Body:  "{player} accepted your invite for {date} at {time}, {court}.",
		SMS:   "LocalDink: {player} accepted your invite for {date} at {time}.",
	},
	database.NotificationTypeInviteDeclined: {
		Title: "{player} can't make it",
		Body:  "{player} declined your invite for {date} at {time}, {court}.",
		SMS:   "LocalDink: {player} declined your invite for {date} at {time}.",
	},
	database.NotificationTypeInviteExpired: {
		Title: "Invite expired",
		Body:  "Your invite to {player} for {date} at {time} expired without a response.",
		SMS:   "LocalDink: your invite to {player} for {date} at {time} expired.",
	},
	database.NotificationTypeReminder: {
		Title: "Game coming up",
		Body:  "Reminder: {match_type} on {date} at {time}, {court}.",
		SMS:   "LocalDink reminder: {match_type} on {date} at {time}, {court}.",
	},
	database.NotificationTypeSessionChanged: {
		Title: "Game details changed",
		Body:  "Your {match_type} game moved to {date} at {time}, {court}. Check the updated details.",
		SMS:   "LocalDink: your game moved to {date} at {time}, {court}.",
	},
	database.NotificationTypeSessionCancelled: {
		Title: "Game cancelled",
		Body:  "The {match_type} game on {date} at {time}, {court} was cancelled.",
		SMS:   "LocalDink: the game on {date} at {time} was cancelled.",
	},
	database.NotificationTypeSpotAvailable: {
		Title: "A spot opened up",
		Body:  "A spot opened in the {match_type} game on {date} at {time}, {court}. First to accept gets it.",
		SMS:   "LocalDink: a spot opened for {date} at {time}, {court}. RSVP: {link}",
	},
}

// confirmationTemplates carry the copy for events addressed to the player
// whose own response (or missed deadline) triggered them.
var confirmationTemplates = map[database.NotificationType]template{
	database.NotificationTypeInviteAccepted: {
		Title: "You're in",
		Body:  "You accepted the {match_type} game on {date} at {time}, {court}.",
		SMS:   "LocalDink: you're in for {match_type} on {date} at {time}, {court}.",
	},
	database.NotificationTypeInviteExpired: {
		Title: "Invite expired",
		Body:  "Your invite to the {match_type} game on {date} at {time} expired before you responded.",
		SMS:   "LocalDink: your invite for {date} at {time} expired.",
	},
}

func lookup(t database.NotificationType, confirmation bool) (template, bool) {
	if confirmation {
		if tpl, ok := confirmationTemplates[t]; ok {
			return tpl, true
		}
	}
	tpl, ok := templates[t]
	return tpl, ok
}

// RenderInApp returns the title and body for the in-app document.
func RenderInApp(t database.NotificationType, data TemplateData, confirmation bool) (string, string) {
	tpl, ok := lookup(t, confirmation)
	if !ok {
		return string(t), ""
	}
	r := replacer(data)
	return r.Replace(tpl.Title), r.Replace(tpl.Body)
}

// RenderSMS returns the short copy used for the SMS channel.
func RenderSMS(t database.NotificationType, data TemplateData, confirmation bool) string {
	tpl, ok := lookup(t, confirmation)
	if !ok {
		return string(t)
	}
	return replacer(data).Replace(tpl.SMS)
}

func replacer(data TemplateData) *strings.Replacer {
	return strings.NewReplacer(
		"{inviter}", data.InviterName,
		"{player}", data.PlayerName,
		"{match_type}", data.MatchType,
		"{date}", data.Date,
		"{time}", data.Time,
		"{court}", data.CourtName,
		"{link}", data.Link,
	)
}
