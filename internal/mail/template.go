package mail

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/mcardoso/planner/backend/internal/domain"
	"github.com/mcardoso/planner/backend/internal/notify"
)

// dateLayout is the long-form date used in subjects and bodies,
// e.g. "August 31, 2026".
const dateLayout = "January 2, 2006"

type templateData struct {
	Destination      string
	StartDate        string
	EndDate          string
	ConfirmationLink string
}

var ownerBody = template.Must(template.New("owner_confirmation").Parse(strings.TrimSpace(`
<div>
  <p>You requested the creation of a trip to <strong>{{.Destination}}</strong> from <strong>{{.StartDate}}</strong> to <strong>{{.EndDate}}</strong>.</p>
  <p>To confirm your trip, click the link below:</p>
  <p><a href="{{.ConfirmationLink}}">Confirm trip</a></p>
</div>
`)))

var inviteeBody = template.Must(template.New("invitee_confirmation").Parse(strings.TrimSpace(`
<div>
  <p>You have been invited on a trip to <strong>{{.Destination}}</strong> from <strong>{{.StartDate}}</strong> to <strong>{{.EndDate}}</strong>.</p>
  <p>To confirm your spot on the trip, click the link below:</p>
  <p><a href="{{.ConfirmationLink}}">Confirm trip</a></p>
</div>
`)))

// OwnerConfirmation renders the email asking the trip owner to confirm the
// trip they just created. confirmationURL points at the trip confirm endpoint.
func OwnerConfirmation(trip domain.Trip, owner domain.Participant, confirmationURL string) (notify.Email, error) {
	html, err := render(ownerBody, trip, confirmationURL)
	if err != nil {
		return notify.Email{}, fmt.Errorf("mail.OwnerConfirmation: %w", err)
	}
	return notify.Email{
		RecipientName: owner.Name,
		RecipientAddr: owner.Email,
		Subject:       fmt.Sprintf("Confirm your trip to %s", trip.Destination),
		HTML:          html,
	}, nil
}

// InviteeConfirmation renders the email asking an invitee to confirm their
// spot once the trip itself has been confirmed. confirmationURL points at the
// invitee's personal participant confirm endpoint.
func InviteeConfirmation(trip domain.Trip, invitee domain.Participant, confirmationURL string) (notify.Email, error) {
	html, err := render(inviteeBody, trip, confirmationURL)
	if err != nil {
		return notify.Email{}, fmt.Errorf("mail.InviteeConfirmation: %w", err)
	}
	return notify.Email{
		RecipientName: invitee.Name,
		RecipientAddr: invitee.Email,
		Subject: fmt.Sprintf("Confirm your spot on the trip to %s on %s",
			trip.Destination, formatDate(trip.StartsAt)),
		HTML: html,
	}, nil
}

func render(tmpl *template.Template, trip domain.Trip, confirmationURL string) (string, error) {
	var b strings.Builder
	err := tmpl.Execute(&b, templateData{
		Destination:      trip.Destination,
		StartDate:        formatDate(trip.StartsAt),
		EndDate:          formatDate(trip.EndsAt),
		ConfirmationLink: confirmationURL,
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}
