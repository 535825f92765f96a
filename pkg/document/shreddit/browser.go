// Package shreddit implements the document.Probe and document.Highlighter
// capabilities over a live thread page driven through Playwright.
//
// All queries run as single JavaScript evaluations against the page, so each
// snapshot is internally consistent even while the page keeps mutating.
// Reveals are fire-and-forget clicks; their effect is observed only by the
// next query.
package shreddit

import (
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/threadvoice/pkg/logging"
)

// Default values for browser operations.
const (
	DefaultTimeout        = 30000.0 // 30 seconds in milliseconds
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)

// BrowserOptions configures the browser session hosting the thread page.
type BrowserOptions struct {
	// Headless controls whether the browser runs without a visible window.
	Headless bool

	// Viewport sets the initial viewport size.
	Viewport *Viewport

	// Timeout sets the default timeout for page operations (milliseconds).
	Timeout float64
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// Browser owns the Playwright instance and the single page the probe reads.
type Browser struct {
	mu         sync.Mutex
	pw         *playwright.Playwright
	browser    playwright.Browser
	context    playwright.BrowserContext
	page       playwright.Page
	currentURL string
	log        *logging.Logger
}

// Launch installs and starts Playwright, launches Chromium, and opens one
// page. Callers must Close the returned Browser.
func Launch(opts BrowserOptions, log *logging.Logger) (*Browser, error) {
	// Run Playwright quietly; driver output would pollute the host TUI.
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	if opts.Viewport == nil {
		opts.Viewport = &Viewport{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		}
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(opts.Timeout)

	return &Browser{
		pw:         pw,
		browser:    browser,
		context:    context,
		page:       page,
		currentURL: "about:blank",
		log:        log,
	}, nil
}

// Navigate loads the thread URL and waits for the DOM to be ready.
func (b *Browser) Navigate(url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	waitUntil := playwright.WaitUntilStateDomcontentloaded
	if _, err := b.page.Goto(url, playwright.PageGotoOptions{WaitUntil: waitUntil}); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	b.currentURL = b.page.URL()

	if b.log != nil {
		b.log.Infof("navigated to %s", b.currentURL)
	}
	return nil
}

// Page returns the live page for the probe.
func (b *Browser) Page() playwright.Page {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page
}

// CurrentURL returns the page's last known URL.
func (b *Browser) CurrentURL() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentURL
}

// Close tears down the page, context, browser, and Playwright itself.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Ignore per-resource errors, continue cleanup.
	if b.page != nil {
		_ = b.page.Close()
	}
	if b.context != nil {
		_ = b.context.Close()
	}
	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.pw != nil {
		if err := b.pw.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
	}
	return nil
}
