package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/serenityspa/spa-platform/internal/schedule"
	"github.com/serenityspa/spa-platform/internal/spa"
)

func TestClientConfirmationShowsBookedWallTime(t *testing.T) {
	profile := spa.DefaultProfile()
	renderer := NewRenderer(profile)

	// A 14:00 booking anchored in the spa's own location must read back as
	// 2:00 PM, whatever that location's UTC offset is.
	date := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	evt := confirmedEvent()
	evt.ScheduledFor = schedule.MustTimeOfDay("14:00").AtIn(date, profile.Location())

	msg := renderer.ClientConfirmation(evt)
	assert.Contains(t, msg.Body, "Monday, March 2, 2026 at 2:00 PM")
	assert.Contains(t, msg.HTML, "2:00 PM")

	alert := renderer.ManagerAlert(evt)
	assert.Contains(t, alert.Body, "Monday, March 2, 2026 at 2:00 PM")
}

func TestClientConfirmationEscapesClientFields(t *testing.T) {
	renderer := NewRenderer(spa.DefaultProfile())

	evt := confirmedEvent()
	evt.ClientName = `Mallory <script>alert(1)</script>`
	evt.Note = `<img src=x onerror=alert(1)>`

	msg := renderer.ClientConfirmation(evt)
	assert.NotContains(t, msg.HTML, "<script>")
	assert.NotContains(t, msg.HTML, "<img")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
	assert.Contains(t, msg.HTML, "&lt;img src=x onerror=alert(1)&gt;")
	// Plain text carries the fields as-is.
	assert.Contains(t, msg.Body, evt.Note)
}

func TestClientConfirmationBookingLink(t *testing.T) {
	evt := confirmedEvent()

	withLink := NewRenderer(spa.DefaultProfile(), WithBaseURL("https://book.example.com/"))
	msg := withLink.ClientConfirmation(evt)
	assert.Contains(t, msg.Body, "https://book.example.com/bookings/bk-1")
	assert.Contains(t, msg.HTML, `<a href="https://book.example.com/bookings/bk-1"`)

	withoutLink := NewRenderer(spa.DefaultProfile())
	plain := withoutLink.ClientConfirmation(evt)
	assert.False(t, strings.Contains(plain.Body, "/bookings/"), "no link without a base URL")
}
