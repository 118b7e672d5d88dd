package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nekogravitycat/pitch-booking-backend/internal/events"
)

const (
	startText = "Assalomu alaykum! Chim Bron tizimiga xush kelibsiz.\n\n" +
		"Quyidagi tugmani bosib maydonlarni bron qilishingiz mumkin:"
	startButton = "⚽ Chim Bronni ochish"
	adminText   = "Admin paneliga kirish:"
	adminButton = "🔐 Admin panelni ochish"
	helpText    = "Buyruqlar:\n" +
		"/start - maydonlarni bron qilish\n" +
		"/admin - admin paneli\n" +
		"/help - yordam"
	unknownText = "Noma'lum buyruq. /help ni bosing."
)

// AdminLoginURL is the admin sign-in page of the web app.
func AdminLoginURL(webAppURL string) string {
	return strings.TrimRight(webAppURL, "/") + "/admin/login"
}

// NewBookingText is sent to the admin chat when a customer submits a request.
func NewBookingText(ev events.BookingEvent) string {
	var sb strings.Builder
	sb.WriteString("🆕 Yangi bron so'rovi\n\n")
	fmt.Fprintf(&sb, "🏟 %s\n", ev.FieldName)
	fmt.Fprintf(&sb, "📅 %s, %s – %s\n", ev.Date, ev.StartTime, ev.EndTime)
	fmt.Fprintf(&sb, "👤 %s\n", ev.CustomerName)
	fmt.Fprintf(&sb, "📞 %s\n", ev.CustomerPhone)
	if ev.TeamName != "" {
		fmt.Fprintf(&sb, "👥 %s\n", ev.TeamName)
	}
	if ev.TelegramUsername != "" {
		fmt.Fprintf(&sb, "✈️ @%s\n", ev.TelegramUsername)
	}
	fmt.Fprintf(&sb, "💰 %s so'm", FormatPrice(ev.Price))
	return sb.String()
}

// ConfirmedText is sent to the customer when staff accept the request.
func ConfirmedText(ev events.BookingEvent) string {
	return fmt.Sprintf(
		"✅ Broningiz tasdiqlandi!\n\n🏟 %s\n📅 %s, %s – %s\n💰 %s so'm",
		ev.FieldName, ev.Date, ev.StartTime, ev.EndTime, FormatPrice(ev.Price),
	)
}

// CancelledText is sent to the customer when the booking is cancelled.
func CancelledText(ev events.BookingEvent) string {
	return fmt.Sprintf(
		"❌ Broningiz bekor qilindi.\n\n🏟 %s\n📅 %s, %s – %s",
		ev.FieldName, ev.Date, ev.StartTime, ev.EndTime,
	)
}

// FormatPrice groups thousands with spaces: 300000 -> "300 000".
func FormatPrice(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ' ')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
