package notify

import (
	"testing"

	"localdink/internal/database"

	"github.com/stretchr/testify/assert"
)

func TestRenderInAppSubstitutesPlaceholders(t *testing.T) {
	data := TemplateData{
		InviterName: "Sam",
		MatchType:   "doubles",
		Date:        "Mon, Jun 1",
		Time:        "10:00 AM",
		CourtName:   "Riverside Park",
	}

	title, body := RenderInApp(database.NotificationTypeInviteSent, data, false)
	assert.Equal(t, "You're invited to play", title)
	assert.Equal(t, "Sam invited you to a doubles game on Mon, Jun 1 at 10:00 AM, Riverside Park. Tap to respond.", body)
}

func TestRenderConfirmationVariant(t *testing.T) {
	data := TemplateData{PlayerName: "Kai", MatchType: "singles", Date: "Mon, Jun 1", Time: "10:00 AM", CourtName: "Riverside Park"}

	// Organizer copy names the responding player.
	title, body := RenderInApp(database.NotificationTypeInviteAccepted, data, false)
	assert.Equal(t, "Kai is in", title)
	assert.Contains(t, body, "Kai accepted your invite")

	// The responding player gets copy addressed to them.
	title, body = RenderInApp(database.NotificationTypeInviteAccepted, data, true)
	assert.Equal(t, "You're in", title)
	assert.Contains(t, body, "You accepted the singles game")
}

func TestRenderConfirmationFallsBackWithoutVariant(t *testing.T) {
	// Types without dedicated confirmation copy use the regular template.
	title, _ := RenderInApp(database.NotificationTypeSessionCancelled, TemplateData{}, true)
	assert.Equal(t, "Game cancelled", title)
}

func TestRenderSMSIsShorterThanInApp(t *testing.T) {
	data := TemplateData{InviterName: "Sam", MatchType: "doubles", Date: "Jun 1", Time: "10:00 AM", CourtName: "Riverside Park", Link: "/sessions/abc"}

	_, body := RenderInApp(database.NotificationTypeInviteSent, data, false)
	sms := RenderSMS(database.NotificationTypeInviteSent, data, false)
	assert.NotEmpty(t, sms)
	assert.NotEqual(t, body, sms)
	assert.Contains(t, sms, "LocalDink")
}
