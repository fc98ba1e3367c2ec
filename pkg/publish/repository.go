// Package publish decides create-vs-update against the remote network
// repository and pushes assembled network documents, retrying transient
// failures with bounded backoff.
package publish

import (
	"context"
	"errors"
	"fmt"

	"github.com/netpublish/sifloader/pkg/network"
)

// Handle identifies a network held by the remote repository. It is used
// only to decide create-vs-update and is never mutated locally.
type Handle struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Repository is the remote network store. Implementations are external
// collaborators; create and update are assumed atomic per call.
type Repository interface {
	FindNetworksByName(ctx context.Context, name, owner string) ([]Handle, error)
	CreateNetwork(ctx context.Context, doc *network.Document) (Handle, error)
	UpdateNetwork(ctx context.Context, h Handle, doc *network.Document) (Handle, error)
}

// AmbiguousTargetError reports more than one remote network matching the
// document's name. No write is attempted in that case.
type AmbiguousTargetError struct {
	Name  string
	Count int
}

// Error implements the error interface.
func (e *AmbiguousTargetError) Error() string {
	return fmt.Sprintf("found %d networks named %q, refusing to guess which to overwrite", e.Count, e.Name)
}

// PublishError reports a document that could not be published after
// exhausting retries.
type PublishError struct {
	Name     string
	Attempts int
	Cause    error
}

// Error implements the error interface.
func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %q failed after %d attempt(s): %v", e.Name, e.Attempts, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *PublishError) Unwrap() error {
	return e.Cause
}

// TransientError marks a repository failure worth retrying: service
// hiccups, timeouts, 5xx responses.
type TransientError struct {
	Err error
}

// Error implements the error interface.
func (e *TransientError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err should be retried. Timeouts count as
// transient; cancellation does not.
func IsTransient(err error) bool {
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
