package bot

import "github.com/kelseyhightower/envconfig"

type Config struct {
	BotToken        string `envconfig:"BOT_TOKEN" required:"true"`
	WebAppURL       string `envconfig:"WEBAPP_URL" default:"https://example.com"`
	AdminChatID     int64  `envconfig:"ADMIN_CHAT_ID"`
	RabbitURL       string `envconfig:"RABBIT_URL"`
	BookingExchange string `envconfig:"BOOKING_EXCHANGE" default:"booking.exchange"`
	BookingQueue    string `envconfig:"BOOKING_QUEUE" default:"bot.booking.q"`
	Debug           bool   `envconfig:"BOT_DEBUG" default:"false"`
	AppEnv          string `envconfig:"APP_ENV" default:"dev"`
}

func LoadConfig() (Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	return c, err
}
