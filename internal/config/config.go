package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
		// Публичный адрес приложения для ссылок в письмах
		PublicURL string `yaml:"public_url"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
	} `yaml:"email"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // в минутах
	} `yaml:"jwt"`

	Storage struct {
		Type      string `yaml:"type"`       // local, cloudflare_r2
		BasePath  string `yaml:"base_path"`  // For local storage
		BaseURL   string `yaml:"base_url"`   // Public URL base
		Bucket    string `yaml:"bucket"`     // For R2
		AccessKey string `yaml:"access_key"` // For R2
		SecretKey string `yaml:"secret_key"` // For R2
		Endpoint  string `yaml:"endpoint"`   // For R2
	} `yaml:"storage"`

	Upload struct {
		MaxSize      int64    `yaml:"max_size"`      // Max file size in bytes
		AllowedTypes []string `yaml:"allowed_types"` // Allowed MIME types
	} `yaml:"upload"`

	Vision struct {
		APIKey    string `yaml:"api_key"`
		Model     string `yaml:"model"`      // например "gpt-4o"
		MaxTokens int    `yaml:"max_tokens"` // бюджет ответа модели
	} `yaml:"vision"`

	Stripe struct {
		SecretKey     string `yaml:"secret_key"`
		WebhookSecret string `yaml:"webhook_secret"`
		SuccessURL    string `yaml:"success_url"`
		CancelURL     string `yaml:"cancel_url"`
	} `yaml:"stripe"`

	Pricing struct {
		// Ставки за м² по видам работ, отдельно стены и потолки
		WallPrepRate       float64 `yaml:"wall_prep_rate"`
		WallPrimerRate     float64 `yaml:"wall_primer_rate"`
		WallPaintRate      float64 `yaml:"wall_paint_rate"`
		CeilingPrepRate    float64 `yaml:"ceiling_prep_rate"`
		CeilingPrimerRate  float64 `yaml:"ceiling_primer_rate"`
		CeilingPaintRate   float64 `yaml:"ceiling_paint_rate"`
		SecondCoatDiscount float64 `yaml:"second_coat_discount"` // множитель для второго слоя
		VATRate            float64 `yaml:"vat_rate"`
		Currency           string  `yaml:"currency"`
	} `yaml:"pricing"`
}

var AppConfig *Config

func LoadConfig() {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		log.Println("Загрузка из config.yaml")

		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		applyDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	log.Println("Загрузка конфигурации из переменных окружения (режим теста)")

	cfg.Database.DSN = dbURL
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.TTL = 60

	cfg.Email.SMTPHost = "smtp.test.com"
	cfg.Email.SMTPPort = 587
	cfg.Email.FromEmail = "test@paintquote.app"
	cfg.Email.FromName = "PaintQuote"

	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = "./uploads"
	cfg.Storage.BaseURL = "/api/v1/files"

	cfg.Upload.MaxSize = 10 * 1024 * 1024 // 10MB
	cfg.Upload.AllowedTypes = []string{
		"image/jpeg", "image/png", "image/webp", "application/pdf",
	}

	cfg.Vision.APIKey = os.Getenv("OPENAI_API_KEY")

	applyDefaults(&cfg)
	AppConfig = &cfg
}

// applyDefaults заполняет осмысленные значения для опциональных секций
func applyDefaults(cfg *Config) {
	if cfg.Vision.Model == "" {
		cfg.Vision.Model = "gpt-4o"
	}
	if cfg.Vision.MaxTokens == 0 {
		cfg.Vision.MaxTokens = 1500
	}
	if cfg.Upload.MaxSize == 0 {
		cfg.Upload.MaxSize = 10 * 1024 * 1024
	}
	if len(cfg.Upload.AllowedTypes) == 0 {
		cfg.Upload.AllowedTypes = []string{"image/jpeg", "image/png", "image/webp", "application/pdf"}
	}

	p := &cfg.Pricing
	if p.WallPrepRate == 0 {
		p.WallPrepRate = 4.50
	}
	if p.WallPrimerRate == 0 {
		p.WallPrimerRate = 3.25
	}
	if p.WallPaintRate == 0 {
		p.WallPaintRate = 6.75
	}
	if p.CeilingPrepRate == 0 {
		p.CeilingPrepRate = 5.00
	}
	if p.CeilingPrimerRate == 0 {
		p.CeilingPrimerRate = 3.75
	}
	if p.CeilingPaintRate == 0 {
		p.CeilingPaintRate = 7.50
	}
	if p.SecondCoatDiscount == 0 {
		p.SecondCoatDiscount = 0.8
	}
	if p.VATRate == 0 {
		p.VATRate = 0.21
	}
	if p.Currency == "" {
		p.Currency = "EUR"
	}
	if cfg.Server.PublicURL == "" {
		cfg.Server.PublicURL = "http://localhost:8080"
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
