package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	BotToken    string `env:"BOT_TOKEN,required"`
	OwnerID     int64  `env:"OWNER_ID"`
	WebhookPort int    `env:"WEBHOOK_PORT" envDefault:"3000"`
	HealthPort  int    `env:"HEALTH_PORT" envDefault:"8080"`

	// Upstream downloader APIs
	VredenBaseURL    string        `env:"VREDEN_BASE_URL" envDefault:"https://api.vreden.my.id"`
	TikwmBaseURL     string        `env:"TIKWM_BASE_URL" envDefault:"https://www.tikwm.com"`
	FerdevBaseURL    string        `env:"FERDEV_BASE_URL" envDefault:"https://api.ferdev.my.id"`
	FerdevAPIKey     string        `env:"FERDEV_API_KEY"`
	TikTokTimeout    time.Duration `env:"TIKTOK_TIMEOUT" envDefault:"20s"`
	InstagramTimeout time.Duration `env:"INSTAGRAM_TIMEOUT" envDefault:"30s"`
	FacebookTimeout  time.Duration `env:"FACEBOOK_TIMEOUT" envDefault:"20s"`
	TwitterTimeout   time.Duration `env:"TWITTER_TIMEOUT" envDefault:"25s"`
	DouyinTimeout    time.Duration `env:"DOUYIN_TIMEOUT" envDefault:"25s"`

	// Media re-hosting
	RehostEnabled  bool          `env:"REHOST_ENABLED" envDefault:"true"`
	RehostEndpoint string        `env:"REHOST_ENDPOINT" envDefault:"https://uguu.se/upload"`
	RehostTimeout  time.Duration `env:"REHOST_TIMEOUT" envDefault:"90s"`
	RehostMaxBytes int64         `env:"REHOST_MAX_BYTES" envDefault:"134217728"`
	RehostRPS      float64       `env:"REHOST_RPS" envDefault:"2"`

	// URL shortening for unwieldy button links
	ShortenerEnabled  bool          `env:"SHORTENER_ENABLED" envDefault:"false"`
	ShortenerEndpoint string        `env:"SHORTENER_ENDPOINT" envDefault:"https://tinyurl.com/api-create.php"`
	ShortenerTimeout  time.Duration `env:"SHORTENER_TIMEOUT" envDefault:"10s"`

	// Delivery presentation
	ButtonColumns   int `env:"BUTTON_COLUMNS" envDefault:"2"`
	MaxAlbumButtons int `env:"MAX_ALBUM_BUTTONS" envDefault:"5"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
