// Package session owns the client session lifecycle: restore-on-boot, login,
// logout, the managed-context scope and proactive token-expiry detection.
// SessionService is an explicit, constructed object with init and teardown;
// it is injected into whatever UI layer consumes it rather than living as
// ambient global state.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"eduadmin-client/authapi"
	"eduadmin-client/cache"
	"eduadmin-client/events"
	"eduadmin-client/models"
	"eduadmin-client/rbac"
	"eduadmin-client/scope"
	"eduadmin-client/storage"
	"eduadmin-client/token"
	"eduadmin-client/utils"
	"eduadmin-client/utils/logger"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron"
)

// ErrNotAuthenticated is returned by operations that require a live session.
var ErrNotAuthenticated = errors.New("not authenticated")

// SessionService is the single source of truth for "who is logged in" and
// which managed context their requests are scoped to.
type SessionService struct {
	config   *models.Config
	logger   logger.Logger
	api      authapi.Client
	tokens   storage.TokenStore
	store    storage.KeyValueStore
	queries  cache.Invalidator
	expired  *events.SessionExpiredBus
	validate *validator.Validate

	mu         sync.RWMutex
	user       *models.User
	token      string
	managed    models.ManagedContext
	evaluator  *rbac.Evaluator
	generation uint64
	cronJob    *cron.Cron
	announce   func(context.Context) error

	unsubscribe func()
	closed      bool
}

// NewSessionService wires the service to its collaborators and subscribes it
// to the session-expired broadcast. Call Restore to pick up a persisted
// session, and Close on teardown.
func NewSessionService(
	cfg *models.Config,
	log logger.Logger,
	api authapi.Client,
	tokens storage.TokenStore,
	store storage.KeyValueStore,
	queries cache.Invalidator,
	expired *events.SessionExpiredBus,
) *SessionService {
	s := &SessionService{
		config:    cfg,
		logger:    log,
		api:       api,
		tokens:    tokens,
		store:     store,
		queries:   queries,
		expired:   expired,
		validate:  validator.New(),
		evaluator: rbac.NewEvaluator(nil),
	}

	s.unsubscribe = expired.Subscribe(s.onSessionExpired)
	return s
}

// Restore re-establishes the session from persisted state. A missing,
// malformed or expired token degrades to "not authenticated": partial state
// is cleared, nothing is published and no error is returned for that case.
func (s *SessionService) Restore(ctx context.Context) error {
	tokenString, err := s.tokens.GetToken()
	if err != nil {
		return err
	}
	if tokenString == "" {
		s.clearAll(ctx)
		return nil
	}

	claims, err := token.Decode(tokenString)
	if err != nil {
		s.logger.Warnf("Stored token is malformed (%v), clearing session", err)
		s.clearAll(ctx)
		return nil
	}
	if claims.Expired() {
		s.logger.Info("Stored token has expired, clearing session")
		s.clearAll(ctx)
		return nil
	}

	user, found, err := s.loadUser(ctx)
	if err != nil || !found {
		if err != nil {
			s.logger.Warnf("Failed to load stored user snapshot: %v", err)
		}
		s.clearAll(ctx)
		return nil
	}

	// The token payload is fresher than the stored snapshot; its role wins.
	if claims.Role != "" && rbac.NormalizeRole(claims.Role) != user.Role {
		user.OriginalRole = claims.Role
		user.Role = rbac.NormalizeRole(claims.Role)
		s.persistUser(ctx, user)
	}

	managed := s.resolveContext(ctx, user)

	s.publish(user, tokenString, managed)
	s.persistContext(ctx, managed)

	s.logger.Infof("Session restored for user %s (role: %s)", user.ID, user.Role)
	return nil
}

// Login exchanges credentials for a session. Credential rejections and
// transport failures both come back as a failed LoginResult with a
// user-facing message; the prior session, if any, is left untouched. A
// logout racing the exchange wins: the late result is discarded.
func (s *SessionService) Login(ctx context.Context, username, password string) *models.LoginResult {
	creds := models.Credentials{Username: username, Password: password}
	if err := s.validate.Struct(creds); err != nil {
		return &models.LoginResult{Success: false, Message: "Username and password are required"}
	}

	s.mu.RLock()
	issuedFor := s.generation
	s.mu.RUnlock()

	result, err := s.api.Login(ctx, creds)
	if err != nil {
		s.logger.Errorf("Credential exchange failed: %v", err)
		return &models.LoginResult{Success: false, Message: "Unable to reach the server, please try again"}
	}
	if !result.Success {
		return result
	}

	claims, err := token.Decode(result.Token)
	if err != nil {
		s.logger.Errorf("Server returned an undecodable token: %v", err)
		return &models.LoginResult{Success: false, Message: "Received an invalid session token"}
	}
	if claims.Expired() {
		return &models.LoginResult{Success: false, Message: "Received an already expired session token"}
	}

	user := buildUser(result.User, claims)
	managed := s.resolveContext(ctx, user)

	s.mu.Lock()
	if s.generation != issuedFor || s.closed {
		s.mu.Unlock()
		s.logger.Warn("Discarding login result: session was terminated while the exchange was in flight")
		return &models.LoginResult{Success: false, Message: "Session was signed out during login"}
	}
	s.setSessionLocked(user, result.Token, managed)
	snapshot := user.Clone()
	s.mu.Unlock()

	if err := s.tokens.SetToken(result.Token); err != nil {
		s.logger.Warnf("Failed to persist token: %v", err)
	}
	s.persistUser(ctx, snapshot)
	s.persistContext(ctx, managed)

	s.logger.Infof("User %s logged in (role: %s)", snapshot.ID, snapshot.Role)
	result.User = snapshot
	return result
}

// Logout tears the session down: cached query data is invalidated, persisted
// artifacts are cleared and the empty session is published. It is idempotent
// and never fails; it is also the terminal state for any in-flight login or
// context sync issued before it ran.
func (s *SessionService) Logout() {
	s.mu.Lock()
	wasAuthenticated := s.user != nil
	s.generation++
	s.user = nil
	s.token = ""
	s.managed = models.ManagedContext{}
	s.evaluator = rbac.NewEvaluator(nil)
	s.stopMonitorLocked()
	s.mu.Unlock()

	s.queries.InvalidateAll()

	ctx := context.Background()
	if err := s.tokens.ClearToken(); err != nil {
		s.logger.Warnf("Failed to clear stored token: %v", err)
	}
	for _, key := range []string{storage.KeyUser, storage.KeyContext, storage.KeyLastSelection} {
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Warnf("Failed to clear %s: %v", key, err)
		}
	}

	if wasAuthenticated {
		s.logger.Info("Session logged out")
	}
}

// SetManagedContext merges the patch over the current context, invalidates
// every cached query, persists the result and, unless suppressed, notifies
// the server. A failed server sync does not roll the local change back; the
// error is returned for the caller to surface.
func (s *SessionService) SetManagedContext(ctx context.Context, patch models.ContextPatch, skipServerUpdate bool) (models.ManagedContext, error) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return models.ManagedContext{}, ErrNotAuthenticated
	}

	tokenString := s.token
	merged := scope.Merge(s.user, s.managed, patch)

	// Stale data must be unreachable before anyone can observe the new scope.
	s.queries.InvalidateAll()

	s.managed = merged
	applyActiveScope(s.user, merged)
	snapshot := s.user.Clone()
	s.mu.Unlock()

	s.persistContext(ctx, merged)
	s.persistUser(ctx, snapshot)

	if skipServerUpdate {
		return merged, nil
	}

	if err := s.api.NotifyContext(ctx, tokenString, merged); err != nil {
		s.logger.Warnf("Context server sync failed (local change kept): %v", err)
		return merged, err
	}

	return merged, nil
}

// RefreshAccessToken exchanges the current token for a fresh one and rearms
// the expiry monitor. On failure the session is left untouched.
func (s *SessionService) RefreshAccessToken(ctx context.Context) error {
	s.mu.RLock()
	current := s.token
	issuedFor := s.generation
	s.mu.RUnlock()

	if current == "" {
		return ErrNotAuthenticated
	}

	renewed, err := s.api.Renew(ctx, current)
	if err != nil {
		return err
	}

	claims, err := token.Decode(renewed)
	if err != nil {
		return err
	}
	if claims.Expired() {
		return errors.New("renewed token is already expired")
	}

	s.mu.Lock()
	if s.generation != issuedFor || s.closed {
		s.mu.Unlock()
		s.logger.Warn("Discarding renewed token: session was terminated during renewal")
		return ErrNotAuthenticated
	}
	s.token = renewed
	s.startMonitorLocked(renewed)
	s.mu.Unlock()

	if err := s.tokens.SetToken(renewed); err != nil {
		s.logger.Warnf("Failed to persist renewed token: %v", err)
	}

	return nil
}

// IsAuthenticated reports whether a session is live.
func (s *SessionService) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// User returns a copy of the current user snapshot, nil when logged out. The
// copy is independent: the service keeps mutating its internal record when
// the managed context changes, and callers may hold the result across that.
func (s *SessionService) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

// ManagedContext returns the active scope.
func (s *SessionService) ManagedContext() models.ManagedContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.managed
}

// HasPermission checks an explicit permission grant on the current user.
func (s *SessionService) HasPermission(key string) bool {
	return s.currentEvaluator().HasPermission(key)
}

// HasAnyPermission checks whether any of the keys is granted.
func (s *SessionService) HasAnyPermission(keys ...string) bool {
	return s.currentEvaluator().HasAnyPermission(keys...)
}

// HasAllPermissions checks whether every key is granted.
func (s *SessionService) HasAllPermissions(keys ...string) bool {
	return s.currentEvaluator().HasAllPermissions(keys...)
}

// HasRole checks role containment under the inheritance table.
func (s *SessionService) HasRole(role string) bool {
	return s.currentEvaluator().HasRole(role)
}

// HasDataScope checks data-scope membership.
func (s *SessionService) HasDataScope(dataScope string) bool {
	return s.currentEvaluator().HasDataScope(dataScope)
}

// SetExpiryAnnouncer wires a remote fan-out for locally detected expiry, so
// a forced logout here reaches every process sharing the session store. The
// announcer is called only from the monitor's detection path, never from the
// broadcast handler, so a remote signal cannot echo back out.
func (s *SessionService) SetExpiryAnnouncer(announce func(context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.announce = announce
}

// Close stops the monitor and unsubscribes from the expiry broadcast. The
// session itself is left as-is; call Logout first to clear it.
func (s *SessionService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopMonitorLocked()
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

func (s *SessionService) currentEvaluator() *rbac.Evaluator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.evaluator
}

// onSessionExpired reacts to the broadcast the same way as a locally detected
// expiry. Logout is idempotent, so duplicate signals are harmless.
func (s *SessionService) onSessionExpired() {
	s.logger.Warn("Session expired signal received, forcing logout")
	s.Logout()
}

// publish installs a session snapshot and arms the monitor.
func (s *SessionService) publish(user *models.User, tokenString string, managed models.ManagedContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setSessionLocked(user, tokenString, managed)
}

func (s *SessionService) setSessionLocked(user *models.User, tokenString string, managed models.ManagedContext) {
	s.user = user
	s.token = tokenString
	s.managed = managed
	applyActiveScope(user, managed)
	s.evaluator = rbac.NewEvaluator(user)
	s.startMonitorLocked(tokenString)
}

// clearAll drops persisted artifacts without publishing anything; used on
// failed restore where there is no session to tear down.
func (s *SessionService) clearAll(ctx context.Context) {
	if err := s.tokens.ClearToken(); err != nil {
		s.logger.Warnf("Failed to clear stored token: %v", err)
	}
	for _, key := range []string{storage.KeyUser, storage.KeyContext, storage.KeyLastSelection} {
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Warnf("Failed to clear %s: %v", key, err)
		}
	}
}

// resolveContext computes the scope for a session start from the persisted
// context cache and the user's defaults.
func (s *SessionService) resolveContext(ctx context.Context, user *models.User) models.ManagedContext {
	var stored models.ManagedContext
	if raw, found, err := s.store.Get(ctx, storage.KeyContext); err == nil && found {
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			s.logger.Warnf("Stored context is corrupt, ignoring: %v", err)
			stored = models.ManagedContext{}
		}
	}

	return scope.ResolveInitial(user, stored, s.config.DefaultSchoolCode)
}

// persistContext writes the context and its last-selection mirror. Storage
// failures are logged and swallowed; in-memory state stays authoritative.
func (s *SessionService) persistContext(ctx context.Context, managed models.ManagedContext) {
	raw, err := json.Marshal(managed)
	if err == nil {
		err = s.store.Set(ctx, storage.KeyContext, string(raw))
	}
	if err != nil {
		s.logger.Warnf("Failed to persist context: %v", err)
	}

	if record, ok := scope.LastSelectionFor(managed); ok {
		raw, err := json.Marshal(record)
		if err == nil {
			err = s.store.Set(ctx, storage.KeyLastSelection, string(raw))
		}
		if err != nil {
			s.logger.Warnf("Failed to persist last selection: %v", err)
		}
	}
}

func (s *SessionService) persistUser(ctx context.Context, user *models.User) {
	raw, err := json.Marshal(user)
	if err == nil {
		err = s.store.Set(ctx, storage.KeyUser, string(raw))
	}
	if err != nil {
		s.logger.Warnf("Failed to persist user snapshot: %v", err)
	}
}

func (s *SessionService) loadUser(ctx context.Context) (*models.User, bool, error) {
	raw, found, err := s.store.Get(ctx, storage.KeyUser)
	if err != nil || !found {
		return nil, false, err
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, false, err
	}
	if user.Permissions == nil {
		user.Permissions = make(map[string]bool)
	}

	return &user, true, nil
}

// applyActiveScope mirrors the context into the user's active-scope fields.
func applyActiveScope(user *models.User, managed models.ManagedContext) {
	if user == nil {
		return
	}
	user.ActiveSchoolID = managed.SchoolID
	user.ActiveBranchID = managed.BranchID
	user.ActiveCourseID = managed.CourseID
}

// buildUser merges the server profile with token claims, filling missing
// fields deterministically.
func buildUser(profile *models.User, claims *token.Claims) *models.User {
	user := &models.User{}
	if profile != nil {
		copied := *profile
		user = &copied
	}

	if user.ID == "" {
		user.ID = claims.UserID
	}

	// Token role wins over the profile's; keep the issued value for audit.
	issuedRole := claims.Role
	if issuedRole == "" {
		issuedRole = user.Role
	}
	user.OriginalRole = issuedRole
	user.Role = rbac.NormalizeRole(issuedRole)

	if user.Username == "" {
		user.Username = utils.EmailLocalPart(user.Email)
	}
	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}
	if user.Permissions == nil {
		user.Permissions = make(map[string]bool)
	}

	return user
}
