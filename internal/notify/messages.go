package notify

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/serenityspa/spa-platform/internal/events"
	"github.com/serenityspa/spa-platform/internal/spa"
)

// Renderer turns booking events into the emails the spa sends. Identity
// details (name, address, phone) come from the spa profile.
type Renderer struct {
	profile *spa.Profile
	baseURL string
}

// RendererOption customizes message rendering.
type RendererOption func(*Renderer)

// WithBaseURL adds a public link to each confirmation so clients can review
// their booking. Empty means no link.
func WithBaseURL(baseURL string) RendererOption {
	return func(r *Renderer) { r.baseURL = strings.TrimRight(baseURL, "/") }
}

// NewRenderer creates a message renderer for the given spa profile.
func NewRenderer(profile *spa.Profile, opts ...RendererOption) *Renderer {
	if profile == nil {
		profile = spa.DefaultProfile()
	}
	r := &Renderer{profile: profile}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) bookingURL(bookingID string) string {
	if r.baseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/bookings/%s", r.baseURL, bookingID)
}

func (r *Renderer) formatWhen(t time.Time) string {
	return t.In(r.profile.Location()).Format("Monday, January 2, 2006 at 3:04 PM")
}

// ClientConfirmation renders the confirmation email sent to the client.
func (r *Renderer) ClientConfirmation(evt events.BookingConfirmedV1) EmailMessage {
	when := r.formatWhen(evt.ScheduledFor)

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", evt.ClientName)
	fmt.Fprintf(&b, "Your appointment at %s is confirmed.\n\n", r.profile.Name)
	fmt.Fprintf(&b, "Service: %s\n", evt.ServiceName)
	fmt.Fprintf(&b, "When: %s\n", when)
	fmt.Fprintf(&b, "Duration: %d minutes\n", evt.DurationMinutes)
	fmt.Fprintf(&b, "Price: $%.2f\n", evt.Price)
	fmt.Fprintf(&b, "Confirmation code: %s\n\n", evt.ConfirmationCode)
	if evt.Note != "" {
		fmt.Fprintf(&b, "Your requests: %s\n\n", evt.Note)
	}
	link := r.bookingURL(evt.BookingID)
	if link != "" {
		fmt.Fprintf(&b, "Review your booking: %s\n\n", link)
	}
	fmt.Fprintf(&b, "Please arrive 10 minutes early. To cancel or reschedule, call us at %s and have your confirmation code ready.\n\n", r.profile.Phone)
	fmt.Fprintf(&b, "%s\n%s\n", r.profile.Name, r.profile.Address)

	var h strings.Builder
	// Client-supplied fields are escaped; the rest comes from the profile
	// and the catalog.
	fmt.Fprintf(&h, "<p>Dear %s,</p>\n", html.EscapeString(evt.ClientName))
	fmt.Fprintf(&h, "<p>Your appointment at <strong>%s</strong> is confirmed.</p>\n<ul>\n", r.profile.Name)
	fmt.Fprintf(&h, "<li><strong>Service:</strong> %s</li>\n", evt.ServiceName)
	fmt.Fprintf(&h, "<li><strong>When:</strong> %s</li>\n", when)
	fmt.Fprintf(&h, "<li><strong>Duration:</strong> %d minutes</li>\n", evt.DurationMinutes)
	fmt.Fprintf(&h, "<li><strong>Price:</strong> $%.2f</li>\n", evt.Price)
	fmt.Fprintf(&h, "<li><strong>Confirmation code:</strong> %s</li>\n</ul>\n", evt.ConfirmationCode)
	if evt.Note != "" {
		fmt.Fprintf(&h, "<p><strong>Your requests:</strong> %s</p>\n", html.EscapeString(evt.Note))
	}
	if link != "" {
		fmt.Fprintf(&h, "<p><a href=%q>Review your booking</a></p>\n", link)
	}
	fmt.Fprintf(&h, "<p>Please arrive 10 minutes early. To cancel or reschedule, call us at %s and have your confirmation code ready.</p>\n", r.profile.Phone)
	fmt.Fprintf(&h, "<p>%s<br/>%s</p>", r.profile.Name, r.profile.Address)

	return EmailMessage{
		To:      evt.ClientEmail,
		ToName:  evt.ClientName,
		Subject: fmt.Sprintf("Appointment Confirmed - %s", evt.ServiceName),
		Body:    b.String(),
		HTML:    h.String(),
	}
}

// ManagerAlert renders the new-booking alert sent to the spa manager.
func (r *Renderer) ManagerAlert(evt events.BookingConfirmedV1) EmailMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "New booking at %s.\n\n", r.profile.Name)
	fmt.Fprintf(&b, "Client: %s\n", evt.ClientName)
	if evt.ClientEmail != "" {
		fmt.Fprintf(&b, "Email: %s\n", evt.ClientEmail)
	}
	if evt.ClientPhone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", evt.ClientPhone)
	}
	fmt.Fprintf(&b, "Service: %s (%d min, $%.2f)\n", evt.ServiceName, evt.DurationMinutes, evt.Price)
	fmt.Fprintf(&b, "When: %s\n", r.formatWhen(evt.ScheduledFor))
	fmt.Fprintf(&b, "Confirmation code: %s\n", evt.ConfirmationCode)
	if evt.Note != "" {
		fmt.Fprintf(&b, "Special requests: %s\n", evt.Note)
	}

	return EmailMessage{
		To:      r.profile.ManagerEmail,
		Subject: fmt.Sprintf("New Booking: %s on %s", evt.ServiceName, evt.ScheduledFor.In(r.profile.Location()).Format("Jan 2")),
		Body:    b.String(),
	}
}

// ClientCancellation renders the cancellation notice sent to the client.
func (r *Renderer) ClientCancellation(evt events.BookingCancelledV1) EmailMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", evt.ClientName)
	fmt.Fprintf(&b, "Your %s appointment at %s scheduled for %s has been cancelled.\n\n",
		evt.ServiceName, r.profile.Name, r.formatWhen(evt.ScheduledFor))
	fmt.Fprintf(&b, "We hope to see you again soon. Call us at %s to rebook.\n\n%s\n", r.profile.Phone, r.profile.Name)

	return EmailMessage{
		To:      evt.ClientEmail,
		ToName:  evt.ClientName,
		Subject: fmt.Sprintf("Appointment Cancelled - %s", evt.ServiceName),
		Body:    b.String(),
	}
}

// ManagerCancellationAlert renders the cancellation alert for the manager.
func (r *Renderer) ManagerCancellationAlert(evt events.BookingCancelledV1) EmailMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "Booking cancelled at %s.\n\n", r.profile.Name)
	fmt.Fprintf(&b, "Client: %s\n", evt.ClientName)
	fmt.Fprintf(&b, "Service: %s\n", evt.ServiceName)
	fmt.Fprintf(&b, "Was scheduled for: %s\n", r.formatWhen(evt.ScheduledFor))

	return EmailMessage{
		To:      r.profile.ManagerEmail,
		Subject: fmt.Sprintf("Booking Cancelled: %s on %s", evt.ServiceName, evt.ScheduledFor.In(r.profile.Location()).Format("Jan 2")),
		Body:    b.String(),
	}
}
