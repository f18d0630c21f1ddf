package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration, read once at startup.
type Config struct {
	HTTPAddress string

	// Shift-management site.
	ServiceName   string
	SiteBaseURL   string
	SiteHomeURL   string
	AdminUsername string
	AdminPassword string
	AdminTOTPKey  string
	SessionsDir   string

	// Language model endpoint (OpenAI-style chat completions).
	ChatBaseURL    string
	ChatAPIKey     string
	ChatModel      string
	ReasonerModel  string
	WebhookAuthKey string

	// Speech.
	AssemblyAIKey     string
	DeepgramKey       string
	DeepgramVoiceID   string
	ElevenLabsKey     string
	ElevenLabsVoiceID string
	OutputDevice      string

	// Outgoing mail.
	SMTPHost       string
	SMTPPort       int
	SenderEmail    string
	CollectorEmail string
	EmailPassword  string
	EmailSubject   string

	// Live-agent transfer.
	TwilioAccountSID string
	TwilioAuthToken  string
	LiveAgentNumber  string

	// Failure screenshot uploads.
	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string

	// Fixed reference date for deterministic date reasoning, zero when unset.
	TodayOverride time.Time
}

// Load reads environment variables and returns Config with sane defaults.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	addr := os.Getenv("HTTP_ADDRESS")
	if addr == "" {
		addr = ":8080"
	}

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "hahs_vic3495"
	}

	siteBase := os.Getenv("SITE_BASE_URL")
	if siteBase == "" {
		log.Println("Warning: SITE_BASE_URL not set - shift lookups will not work")
	}
	siteHome := os.Getenv("SITE_HOME_URL")
	if siteHome == "" && siteBase != "" {
		siteHome = siteBase + "/home"
	}

	adminUser := os.Getenv("ADMIN_USERNAME")
	adminPass := os.Getenv("ADMIN_PASSWORD")
	if adminUser == "" || adminPass == "" {
		log.Println("Warning: ADMIN_USERNAME/ADMIN_PASSWORD not set - site login will not work")
	}
	totpKey := os.Getenv("ADMIN_TOTP_SECRET")
	if totpKey == "" {
		log.Println("Warning: ADMIN_TOTP_SECRET not set - 2FA login will not work")
	}

	sessionsDir := os.Getenv("SESSIONS_DIR")
	if sessionsDir == "" {
		sessionsDir = ".sessions"
	}

	chatBase := os.Getenv("CHAT_BASE_URL")
	if chatBase == "" {
		chatBase = "http://localhost:11434/v1"
	}
	chatKey := os.Getenv("CHAT_API_KEY")
	chatModel := os.Getenv("CHAT_MODEL_ID")
	if chatModel == "" {
		chatModel = "llama3.1:8b"
	}
	reasonerModel := os.Getenv("REASONER_MODEL_ID")
	if reasonerModel == "" {
		reasonerModel = "llama3.2:3b"
	}

	assemblyAIKey := os.Getenv("ASSEMBLYAI_API_KEY")
	if assemblyAIKey == "" {
		log.Println("Warning: ASSEMBLYAI_API_KEY not set - transcription will not work")
	}
	deepgramKey := os.Getenv("DEEPGRAM_API_KEY")
	elevenKey := os.Getenv("ELEVENLABS_API_KEY")
	if deepgramKey == "" && elevenKey == "" {
		log.Println("Warning: neither DEEPGRAM_API_KEY nor ELEVENLABS_API_KEY set - TTS will not work")
	}

	smtpHost := os.Getenv("SMTP_SERVER")
	if smtpHost == "" {
		smtpHost = "smtp.gmail.com"
	}
	smtpPort := 465
	if v := os.Getenv("SMTP_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("Warning: invalid SMTP_PORT %q, using 465", v)
		} else {
			smtpPort = p
		}
	}
	sender := os.Getenv("SENDER_EMAIL")
	collector := os.Getenv("COLLECTOR_EMAIL")
	emailPass := os.Getenv("EMAIL_APP_PASSWORD")
	if sender == "" || collector == "" || emailPass == "" {
		log.Println("Warning: SENDER_EMAIL/COLLECTOR_EMAIL/EMAIL_APP_PASSWORD not set - cancellation emails will not send")
	}
	subject := os.Getenv("EMAIL_SUBJECT")
	if subject == "" {
		subject = "SHIFT CANCELLATION REQUEST"
	}

	var todayOverride time.Time
	if v := os.Getenv("TEST_DATE"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			log.Printf("Warning: invalid TEST_DATE %q, ignoring", v)
		} else {
			todayOverride = t
			log.Printf("config: TEST_DATE override active: %s", t.Format("2006-01-02"))
		}
	}

	log.Printf("config: HTTP_ADDRESS=%s service=%s chat=%s reasoner=%s", addr, service, chatModel, reasonerModel)
	return Config{
		HTTPAddress:       addr,
		ServiceName:       service,
		SiteBaseURL:       siteBase,
		SiteHomeURL:       siteHome,
		AdminUsername:     adminUser,
		AdminPassword:     adminPass,
		AdminTOTPKey:      totpKey,
		SessionsDir:       sessionsDir,
		ChatBaseURL:       chatBase,
		ChatAPIKey:        chatKey,
		ChatModel:         chatModel,
		ReasonerModel:     reasonerModel,
		WebhookAuthKey:    os.Getenv("WEBHOOK_AUTH_TOKEN"),
		AssemblyAIKey:     assemblyAIKey,
		DeepgramKey:       deepgramKey,
		DeepgramVoiceID:   os.Getenv("DEEPGRAM_VOICE_ID"),
		ElevenLabsKey:     elevenKey,
		ElevenLabsVoiceID: os.Getenv("ELEVENLABS_VOICE_ID"),
		OutputDevice:      os.Getenv("OUTPUT_DEVICE"),
		SMTPHost:          smtpHost,
		SMTPPort:          smtpPort,
		SenderEmail:       sender,
		CollectorEmail:    collector,
		EmailPassword:     emailPass,
		EmailSubject:      subject,
		TwilioAccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		LiveAgentNumber:   os.Getenv("LIVE_AGENT_NUMBER"),
		SupabaseURL:       os.Getenv("SUPABASE_URL"),
		SupabaseKey:       os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		SupabaseBucket:    os.Getenv("SUPABASE_BUCKET"),
		TodayOverride:     todayOverride,
	}
}
