package mail

import (
	"context"
	"fmt"
	"log"
	"strings"

	gomail "github.com/wneessen/go-mail"
)

// Sender delivers notification emails over SMTP. Port 465 uses implicit
// TLS, anything else negotiates STARTTLS.
type Sender struct {
	Host      string
	Port      int
	From      string
	Password  string
	Collector string
}

func NewSender(host string, port int, from, password, collector string) *Sender {
	return &Sender{
		Host:      host,
		Port:      port,
		From:      from,
		Password:  password,
		Collector: collector,
	}
}

func (s *Sender) Send(ctx context.Context, subject, body string) error {
	if s.From == "" || s.Collector == "" || s.Password == "" {
		return fmt.Errorf("mail: sender not configured")
	}
	// App passwords are often pasted with display spaces.
	password := strings.ReplaceAll(s.Password, " ", "")

	opts := []gomail.Option{
		gomail.WithPort(s.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.From),
		gomail.WithPassword(password),
	}
	if s.Port == 465 {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	}

	client, err := gomail.NewClient(s.Host, opts...)
	if err != nil {
		return fmt.Errorf("mail: create client: %w", err)
	}

	msg := gomail.NewMsg()
	if err := msg.From(s.From); err != nil {
		return fmt.Errorf("mail: from address: %w", err)
	}
	if err := msg.To(s.Collector); err != nil {
		return fmt.Errorf("mail: to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	log.Printf("[mail] sent %q to %s", subject, s.Collector)
	return nil
}
