package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/phillip/event-listing-go/models"
)

// email request payload for ZeptoMail API
type emailRequest struct {
	From     emailWithName `json:"from"`
	To       []toRecipient `json:"to"`
	Subject  string        `json:"subject"`
	HtmlBody string        `json:"htmlbody"`
}

type toRecipient struct {
	Email emailWithName `json:"email_address"`
}

type emailWithName struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

// Mailer sends HTML email through the ZeptoMail HTTP API.
type Mailer struct {
	APIURL   string
	APIKey   string
	From     string
	FromName string
	Client   *http.Client
}

func NewMailer(apiURL, apiKey, from, fromName string, timeout time.Duration) (*Mailer, error) {
	if apiURL == "" || apiKey == "" || from == "" {
		return nil, fmt.Errorf("missing required email config")
	}
	return &Mailer{
		APIURL:   apiURL,
		APIKey:   apiKey,
		From:     from,
		FromName: fromName,
		Client:   &http.Client{Timeout: timeout},
	}, nil
}

// SendEmail sends an HTML email to a single recipient.
func (m *Mailer) SendEmail(ctx context.Context, to, subject, body string) error {
	payload := emailRequest{
		From:     emailWithName{Address: m.From, Name: m.FromName},
		To:       []toRecipient{{Email: emailWithName{Address: to}}},
		Subject:  subject,
		HtmlBody: body,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.APIURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", m.APIKey)

	resp, err := m.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("zeptomail API error: %s", resp.Status)
	}
	return nil
}

// BookingConfirmed emails the booker a confirmation for ev.
func (m *Mailer) BookingConfirmed(ctx context.Context, b *models.Booking, ev *models.Event) error {
	subject := fmt.Sprintf("You're booked: %s", ev.Title)
	body := fmt.Sprintf(
		"<p>Thanks for booking <strong>%s</strong>.</p>"+
			"<p>%s at %s<br>%s, %s</p>"+
			"<p>Booking reference: %s</p>",
		html.EscapeString(ev.Title),
		html.EscapeString(displayDate(ev.Date)),
		html.EscapeString(ev.Time),
		html.EscapeString(ev.Venue),
		html.EscapeString(ev.Location),
		b.ID.Hex(),
	)
	return m.SendEmail(ctx, b.Email, subject, body)
}

// displayDate renders a stored ISO date as e.g. "Saturday, 1 March 2025".
func displayDate(iso string) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return iso
	}
	return t.Format("Monday, 2 January 2006")
}
