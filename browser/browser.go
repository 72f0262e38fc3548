// Package browser defines the headless-browser collaborator consumed by the
// scrape engine, and provides the production implementation on go-rod. The
// engine depends only on the interfaces here; tests substitute fakes.
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Wait condition kinds understood by Session.Navigate.
const (
	WaitLoad    = "load"
	WaitStable  = "stable"
	WaitElement = "element"
)

// WaitCondition describes when a navigation is considered complete.
type WaitCondition struct {
	// Kind is one of WaitLoad, WaitStable, WaitElement.
	Kind string

	// Locator is the element to wait for when Kind is WaitElement.
	Locator string
}

// ParseWait resolves a profile wait string ("load", "stable",
// "element:<name>") against the profile's named locators.
func ParseWait(wait string, locators map[string]string) (WaitCondition, error) {
	switch {
	case wait == "" || wait == WaitStable:
		return WaitCondition{Kind: WaitStable}, nil
	case wait == WaitLoad:
		return WaitCondition{Kind: WaitLoad}, nil
	case strings.HasPrefix(wait, "element:"):
		name := strings.TrimPrefix(wait, "element:")
		locator, ok := locators[name]
		if !ok {
			return WaitCondition{}, fmt.Errorf("wait condition references unknown locator %q", name)
		}
		return WaitCondition{Kind: WaitElement, Locator: locator}, nil
	default:
		return WaitCondition{}, fmt.Errorf("unknown wait condition %q", wait)
	}
}

// OpenOptions parameterizes one session.
type OpenOptions struct {
	// Stealth enables anti-bot-detection evasions.
	Stealth bool

	// Headers are extra HTTP headers applied to every request in the
	// session.
	Headers map[string]string
}

// Driver opens exclusive browser sessions. One session is owned by exactly
// one in-flight attempt.
type Driver interface {
	OpenSession(ctx context.Context, opts OpenOptions) (Session, error)
}

// Session is one exclusive browser tab. Implementations must tolerate Close
// being the only call that is guaranteed to happen.
type Session interface {
	// Navigate opens the URL and blocks until the wait condition holds or
	// the timeout elapses.
	Navigate(ctx context.Context, url string, wait WaitCondition, timeout time.Duration) error

	// Locate finds an element. A missing element is (nil, nil), not an
	// error; errors mean the query itself failed.
	Locate(ctx context.Context, locator string) (Element, error)

	// WaitVisible blocks until the locator matches at least one element.
	WaitVisible(ctx context.Context, locator string, timeout time.Duration) error

	// WaitStable blocks until the document stops mutating.
	WaitStable(ctx context.Context, timeout time.Duration) error

	// Close releases the session. Must be called exactly once.
	Close() error
}

// Element is a handle to one located element.
type Element interface {
	// Text returns the rendered text content.
	Text() (string, error)

	// HTML returns the element's outer HTML, for block-level extraction.
	HTML() (string, error)

	// Input types text into the element (form fields).
	Input(text string) error

	// Click performs a left click.
	Click() error
}
