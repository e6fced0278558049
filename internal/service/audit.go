package service

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// UnknownUser is shown for audit entries whose actor is missing from the user directory.
const UnknownUser = "unknown user"

// AuditService is the read and maintenance side of the audit log used by the HTTP layer.
type AuditService interface {
	ListFor(ctx context.Context, requester model.Identity) ([]model.AuditLogView, error)
	Clear(ctx context.Context) error
}

var _ AuditService = (*AuditLog)(nil)

// AuditLog records mutating actions. Appends are best effort: a failed write is logged and
// counted but never returned, so it cannot fail the operation it describes.
type AuditLog struct {
	repo     repository.AuditLogRepository
	users    repository.UserDirectory
	logger   *zap.Logger
	failures prometheus.Counter
	now      func() time.Time
	newID    func() string
}

// NewAuditLog constructs an AuditLog. The append failure counter is registered on reg
// when reg is not nil.
func NewAuditLog(repo repository.AuditLogRepository, users repository.UserDirectory, logger *zap.Logger, reg prometheus.Registerer) (*AuditLog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "docvault_audit_append_failures_total",
		Help: "Audit log entries that could not be persisted.",
	})
	if reg != nil {
		if err := reg.Register(failures); err != nil {
			return nil, err
		}
	}
	return &AuditLog{
		repo:     repo,
		users:    users,
		logger:   logger.With(zap.String("component", "audit")),
		failures: failures,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}, nil
}

// Append records action for userID.
func (a *AuditLog) Append(ctx context.Context, userID, action string) {
	entry := &model.AuditLogEntry{
		ID:        a.newID(),
		UserID:    userID,
		Action:    action,
		Timestamp: a.now(),
	}
	if err := a.repo.Append(ctx, entry); err != nil {
		a.failures.Inc()
		a.logger.Error("audit append failed",
			zap.String("user_id", userID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

// ListFor returns the entries visible to requester, newest first. Admins see every entry;
// everyone else sees only their own. An empty filter means every entry, so an anonymous
// requester is rejected before the repository is asked.
func (a *AuditLog) ListFor(ctx context.Context, requester model.Identity) ([]model.AuditLogView, error) {
	if err := requireCaller(requester); err != nil {
		return nil, err
	}
	filter := requester.UserID
	if requester.IsAdmin() {
		filter = ""
	}
	entries, err := a.repo.List(ctx, filter)
	if err != nil {
		return nil, translate(err, "failed to load audit log")
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if !slices.Contains(ids, e.UserID) {
			ids = append(ids, e.UserID)
		}
	}
	users, err := a.users.FindByIDs(ctx, ids)
	if err != nil {
		a.logger.Warn("user directory lookup failed", zap.Error(err))
		users = nil
	}

	views := make([]model.AuditLogView, 0, len(entries))
	for _, e := range entries {
		name := UnknownUser
		if u, ok := users[e.UserID]; ok && u.Username != "" {
			name = u.Username
		}
		views = append(views, model.AuditLogView{AuditLogEntry: e, Username: name})
	}
	slices.SortStableFunc(views, func(x, y model.AuditLogView) int {
		return y.Timestamp.Compare(x.Timestamp)
	})
	return views, nil
}

// Clear truncates the log.
func (a *AuditLog) Clear(ctx context.Context) error {
	if err := a.repo.Clear(ctx); err != nil {
		return translate(err, "failed to clear audit log")
	}
	return nil
}
