// Package service implements the Connect RPC handlers declared in pkg/api.
package service

import (
	"context"
	"errors"
	"log/slog"
	"runtime"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/cache"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/storage"
)

var (
	// ErrNotMember is returned when the caller is not in the group.
	ErrNotMember = errors.New("not a member of this group")
	// ErrNotCreator is returned when an action is reserved for the group's creator.
	ErrNotCreator = errors.New("only the group creator can do this")
	// ErrNotParticipant is returned when the caller has no stake in an expense.
	ErrNotParticipant = errors.New("not a participant in this expense")
	// ErrNotExpenseOwner is returned when an action is reserved for an
	// expense's creator or payer.
	ErrNotExpenseOwner = errors.New("only the expense creator or payer can do this")
)

// Deps bundles what the services share.
type Deps struct {
	Store   storage.Store
	Users   cache.UserCache
	Metrics *metrics.Metrics
	Logger  *slog.Logger

	// LookupConcurrency bounds parallel store reads within one request.
	// Zero means GOMAXPROCS.
	LookupConcurrency int
}

func (d Deps) withDefaults() Deps {
	if d.Users == nil {
		d.Users = cache.NewPassthrough(d.Store)
	}
	if d.Metrics == nil {
		d.Metrics = metrics.Default()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.LookupConcurrency <= 0 {
		d.LookupConcurrency = runtime.GOMAXPROCS(0)
	}
	return d
}

// callerID returns the authenticated user, or an Unauthenticated error.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

func invalidArgument(msg string) error {
	return connect.NewError(connect.CodeInvalidArgument, errors.New(msg))
}

// toConnectError maps domain errors onto Connect codes. Errors that already
// carry a code pass through unchanged.
func toConnectError(err error) error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return err
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, ErrNotMember), errors.Is(err, ErrNotCreator), errors.Is(err, ErrNotParticipant), errors.Is(err, ErrNotExpenseOwner):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
