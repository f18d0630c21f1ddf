package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	selLoginEmail    = `input[id='email'][type='email']`
	selLoginPassword = `input[id='password'][type='password']`
	selLoginSubmit   = `button[type='submit']`
	selOTPInput      = `input[id='one_time_password']`
	selOTPSubmit     = `#check_otp`
)

const loginWaitTimeout = 15 * time.Second

// login authenticates the browser session. A cached cookie session is
// probed first by navigating to the landing URL; on redirect back to the
// login page the cache is discarded and a fresh form login runs.
func (w *Workflow) login(ctx context.Context, b BrowserSession) error {
	if ok, err := w.tryCachedSession(ctx, b); err != nil {
		return err
	} else if ok {
		log.Printf("[workflow] reusing cached session for %s", w.cfg.Service)
		return nil
	}

	log.Printf("[workflow] logging into %s", w.cfg.Service)
	if err := b.Navigate(ctx, w.cfg.BaseURL+"/login"); err != nil {
		return navErr(err)
	}
	if err := b.Fill(ctx, selLoginEmail, w.cfg.Username); err != nil {
		return navErr(err)
	}
	if err := b.Fill(ctx, selLoginPassword, w.cfg.Password); err != nil {
		return navErr(err)
	}
	if err := b.Click(ctx, selLoginSubmit); err != nil {
		return navErr(err)
	}

	if w.cfg.TOTPSecret != "" {
		if err := b.WaitVisible(ctx, selOTPInput); err != nil {
			return navErr(err)
		}
		code, err := TOTPCode(w.cfg.TOTPSecret, time.Now())
		if err != nil {
			return fmt.Errorf("%w: %v", ErrAuthFailed, err)
		}
		if err := b.Fill(ctx, selOTPInput, code); err != nil {
			return navErr(err)
		}
		if err := b.Click(ctx, selOTPSubmit); err != nil {
			return navErr(err)
		}
	}

	url, err := w.waitForURL(ctx, b, "/home")
	if err != nil || onLoginPage(url) {
		w.captureLoginFailure(ctx, b)
		return fmt.Errorf("%w: landed on %q", ErrAuthFailed, url)
	}

	cookies, err := b.Cookies(ctx)
	if err == nil && len(cookies) > 0 {
		if err := w.cookies.Save(w.cfg.Service, cookies); err != nil {
			log.Printf("[workflow] failed to save session cookies: %v", err)
		}
	}
	return nil
}

func (w *Workflow) tryCachedSession(ctx context.Context, b BrowserSession) (bool, error) {
	cached, err := w.cookies.Load(w.cfg.Service)
	if err != nil {
		log.Printf("[workflow] cookie store unreadable, ignoring: %v", err)
		return false, nil
	}
	if len(cached) == 0 {
		return false, nil
	}
	if err := b.SetCookies(ctx, cached); err != nil {
		return false, navErr(err)
	}
	if err := b.Navigate(ctx, w.cfg.HomeURL); err != nil {
		return false, navErr(err)
	}
	url, err := b.CurrentURL(ctx)
	if err != nil {
		return false, navErr(err)
	}
	if onLoginPage(url) {
		log.Printf("[workflow] cached session for %s expired", w.cfg.Service)
		if err := w.cookies.Discard(w.cfg.Service); err != nil {
			log.Printf("[workflow] failed to discard stale cookies: %v", err)
		}
		return false, nil
	}
	return true, nil
}

// waitForURL polls until the current URL contains the fragment.
func (w *Workflow) waitForURL(ctx context.Context, b BrowserSession, fragment string) (string, error) {
	deadline := time.Now().Add(loginWaitTimeout)
	var last string
	for {
		url, err := b.CurrentURL(ctx)
		if err != nil {
			return "", navErr(err)
		}
		last = url
		if strings.Contains(url, fragment) {
			return url, nil
		}
		if time.Now().After(deadline) {
			return last, fmt.Errorf("%w: waiting for %q, at %q", ErrNavigationTimeout, fragment, last)
		}
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func (w *Workflow) captureLoginFailure(ctx context.Context, b BrowserSession) {
	if w.uploader == nil {
		return
	}
	shot, err := b.Screenshot(ctx)
	if err != nil {
		log.Printf("[workflow] login failure screenshot failed: %v", err)
		return
	}
	key := fmt.Sprintf("login_failure_%s_%s.png", w.cfg.Service, uuid.NewString())
	if err := w.uploader.Upload(key, "image/png", shot); err != nil {
		log.Printf("[workflow] screenshot upload failed: %v", err)
		return
	}
	log.Printf("[workflow] login failure screenshot uploaded: %s", key)
}

func onLoginPage(url string) bool {
	return strings.Contains(strings.ToLower(url), "login")
}

func navErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrNavigationTimeout, err)
	}
	return err
}
