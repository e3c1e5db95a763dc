// Package browser drives a headless Chrome instance for page scans.
package browser

import "context"

// Session is one live browser tab. A session belongs to a single scan
// and is never shared across requests.
type Session interface {
	// Navigate loads url and returns the final location after redirects.
	Navigate(ctx context.Context, url string) (string, error)

	// Title returns the document title of the current page.
	Title(ctx context.Context) (string, error)

	// Location returns the current page URL.
	Location(ctx context.Context) (string, error)

	// HTML returns the serialized HTML of the current page.
	HTML(ctx context.Context) (string, error)

	// Evaluate runs a JavaScript expression in the page, awaiting any
	// returned promise. The resolved value is decoded into out when out
	// is non-nil.
	Evaluate(ctx context.Context, expr string, out any) error

	// Click dispatches a click on the first element matching the selector.
	Click(ctx context.Context, selector string) error

	// SetValue sets the value of the first element matching the selector.
	SetValue(ctx context.Context, selector, value string) error

	// WaitVisible blocks until an element matching the selector is visible.
	WaitVisible(ctx context.Context, selector string) error

	// Close terminates the browser process. Safe to call more than once;
	// only the first call does the work.
	Close() error
}
