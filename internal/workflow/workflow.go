package workflow

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/solpercival/Thoth/internal/datereason"
	"github.com/solpercival/Thoth/internal/mail"
)

// Mailer delivers the cancellation notification.
type Mailer interface {
	Send(ctx context.Context, subject, body string) error
}

// Uploader receives login-failure screenshots.
type Uploader interface {
	Upload(key, contentType string, data []byte) error
}

// Config identifies the target site and its admin credentials.
type Config struct {
	Service    string
	BaseURL    string
	HomeURL    string
	Username   string
	Password   string
	TOTPSecret string
	Subject    string
}

const mailTimeout = 15 * time.Second

// Workflow composes login, staff lookup, date reasoning and the filtered
// shift search into one run against the shift-management site.
type Workflow struct {
	cfg        Config
	newBrowser BrowserFactory
	reasoner   *datereason.Reasoner
	cookies    *CookieStore
	mailer     Mailer
	uploader   Uploader
}

func New(cfg Config, newBrowser BrowserFactory, reasoner *datereason.Reasoner, cookies *CookieStore, mailer Mailer, uploader Uploader) *Workflow {
	if cfg.Subject == "" {
		cfg.Subject = "SHIFT CANCELLATION REQUEST"
	}
	return &Workflow{
		cfg:        cfg,
		newBrowser: newBrowser,
		reasoner:   reasoner,
		cookies:    cookies,
		mailer:     mailer,
		uploader:   uploader,
	}
}

func (w *Workflow) today() time.Time { return w.reasoner.Today() }

// Lookup runs the full phone -> staff -> dates -> shifts pipeline. Each
// step fails fast; the browser lives only for the duration of the run.
func (w *Workflow) Lookup(ctx context.Context, callerPhone, utterance string) (Result, error) {
	if callerPhone == "" {
		return Result{}, fmt.Errorf("%w: no caller phone", ErrStaffNotFound)
	}

	b, err := w.newBrowser(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("open browser: %w", err)
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.Printf("[workflow] browser close: %v", err)
		}
	}()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := w.login(ctx, b); err != nil {
		return Result{}, err
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	staff, err := w.lookupStaffByPhone(ctx, b, callerPhone)
	if err != nil {
		return Result{}, err
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	dates := w.reasoner.ReasonDates(ctx, utterance)
	log.Printf("[workflow] reasoned interval: %s to %s (intent=%s)",
		dates.Start.Format("2006-01-02"), dates.End.Format("2006-01-02"), dates.Intent)

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	all, err := w.searchShifts(ctx, b, staff.FullName, dates.Start, dates.End)
	if err != nil {
		return Result{}, err
	}

	filtered := filterByInterval(all, dates.Start, dates.End)
	log.Printf("[workflow] %d of %d shifts inside interval", len(filtered), len(all))

	return Result{
		Staff:          staff,
		Dates:          dates,
		AllShifts:      all,
		FilteredShifts: filtered,
	}, nil
}

// SubmitCancellation composes and sends the cancellation notification
// email. The site itself is not mutated; the email is the submission.
func (w *Workflow) SubmitCancellation(ctx context.Context, staff Staff, shift Shift, reason string) error {
	body := mail.FormatCancellation(mail.Cancellation{
		StaffName:  staff.FullName,
		StaffID:    staff.ID,
		StaffEmail: staff.Email,
		Shifts: []mail.ShiftLine{{
			Client: shift.ClientName,
			Time:   shift.Time,
			Date:   shift.RawDate,
		}},
		Reason: reason,
	})

	sendCtx, cancel := context.WithTimeout(ctx, mailTimeout)
	defer cancel()
	if err := w.mailer.Send(sendCtx, w.cfg.Subject, body); err != nil {
		return fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	log.Printf("[workflow] cancellation submitted for shift %s (%s)", shift.ID, staff.FullName)
	return nil
}
