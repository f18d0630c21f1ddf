package workflow

import "context"

// Cookie is a browser cookie, serializable for the on-disk session store.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
}

// Row is one table row: cell texts in document order plus the row's
// data-href attribute when present.
type Row struct {
	Cells []string `json:"cells"`
	Href  string   `json:"href"`
}

// BrowserSession drives one authenticated browser against the
// shift-management site. Implementations must honor context deadlines on
// every call.
type BrowserSession interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
	WaitVisible(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, value string) error
	Click(ctx context.Context, selector string) error
	Rows(ctx context.Context, selector string) ([]Row, error)
	Screenshot(ctx context.Context) ([]byte, error)
	Cookies(ctx context.Context) ([]Cookie, error)
	SetCookies(ctx context.Context, cookies []Cookie) error
	Close() error
}

// BrowserFactory opens a fresh BrowserSession for one lookup run.
type BrowserFactory func(ctx context.Context) (BrowserSession, error)
