package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/solpercival/Thoth/internal/audio"
	"github.com/solpercival/Thoth/internal/config"
	"github.com/solpercival/Thoth/internal/convo"
	"github.com/solpercival/Thoth/internal/datereason"
	"github.com/solpercival/Thoth/internal/httpserver"
	"github.com/solpercival/Thoth/internal/infra/storage"
	"github.com/solpercival/Thoth/internal/llm"
	"github.com/solpercival/Thoth/internal/mail"
	"github.com/solpercival/Thoth/internal/session"
	"github.com/solpercival/Thoth/internal/transcript"
	"github.com/solpercival/Thoth/internal/tts"
	"github.com/solpercival/Thoth/internal/usecase"
	"github.com/solpercival/Thoth/internal/workflow"
)

func main() {
	// Include sub-second precision in all log timestamps
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cfg := config.Load()

	cookies := workflow.NewCookieStore(cfg.SessionsDir)
	mailer := mail.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SenderEmail, cfg.EmailPassword, cfg.CollectorEmail)

	var uploader workflow.Uploader
	if cfg.SupabaseURL != "" && cfg.SupabaseKey != "" {
		up, err := storage.NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket)
		if err != nil {
			log.Printf("Warning: screenshot storage unavailable: %v", err)
		} else {
			uploader = up
		}
	}

	var transfer convo.AgentTransfer
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.LiveAgentNumber != "" {
		transfer = usecase.NewLiveAgentTransfer(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.LiveAgentNumber)
	} else {
		log.Println("Warning: Twilio credentials not set - live-agent transfer disabled")
	}

	wfConfig := workflow.Config{
		Service:    cfg.ServiceName,
		BaseURL:    cfg.SiteBaseURL,
		HomeURL:    cfg.SiteHomeURL,
		Username:   cfg.AdminUsername,
		Password:   cfg.AdminPassword,
		TOTPSecret: cfg.AdminTOTPKey,
		Subject:    cfg.EmailSubject,
	}
	newBrowser := func(ctx context.Context) (workflow.BrowserSession, error) {
		return workflow.NewChromeSession(ctx, true)
	}

	factory := func(callID, callerPhone string) (*session.Session, error) {
		chat := llm.NewChat(llm.NewClient(cfg.ChatBaseURL, cfg.ChatAPIKey, cfg.ChatModel), convo.SystemPrompt)
		reasoner := datereason.New(llm.NewClient(cfg.ChatBaseURL, cfg.ChatAPIKey, cfg.ReasonerModel), cfg.TodayOverride)
		shifts := workflow.New(wfConfig, newBrowser, reasoner, cookies, mailer, uploader)
		core := convo.New(chat, shifts, transfer, callID, callerPhone)

		transcriber := transcript.NewService(cfg.AssemblyAIKey, 0)
		var streamer tts.Streamer = tts.NewClient(cfg.DeepgramKey, cfg.DeepgramVoiceID)
		if cfg.DeepgramKey == "" && cfg.ElevenLabsKey != "" {
			streamer = tts.NewElevenLabsClient(cfg.ElevenLabsKey, cfg.ElevenLabsVoiceID)
		}
		speaker := tts.NewSpeaker(streamer, audio.NewSink(cfg.OutputDevice))
		return session.New(callID, callerPhone, transcriber, speaker, core), nil
	}

	manager := session.NewManager(factory)
	srv := httpserver.New(manager, cfg.WebhookAuthKey)

	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s", cfg.HTTPAddress)
		serverErrors <- srv.Start(cfg.HTTPAddress)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-sigChan:
		log.Printf("shutdown signal received: %v", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
	manager.StopAll()
}
