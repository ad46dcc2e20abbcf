package session

import (
	"errors"
	"strings"

	"inkwell/internal/identity"
	"inkwell/internal/models"
	"inkwell/internal/store"

	"github.com/rs/zerolog"
)

// ErrNotConfigured is surfaced when login is attempted with placeholder
// backend credentials.
var ErrNotConfigured = errors.New("the auth backend is not configured, set BACKEND_URL and BACKEND_ANON_KEY in your environment")

// IdentityAPI is the slice of the identity client the manager uses.
type IdentityAPI interface {
	SignUp(email, password string, metadata map[string]interface{}) (*identity.User, error)
	SignIn(email, password string) (*identity.Session, error)
	SignOut(token string) error
	User(token string) (*identity.User, error)
	UpdateUser(token string, metadata map[string]interface{}) (*identity.User, error)
}

// UserDirectory is the slice of the store's user directory the manager uses.
// Nil-able: when the article store is down the manager runs on auth metadata
// alone.
type UserDirectory interface {
	Get(id string) (*models.User, error)
	Upsert(user *models.User) error
	UpdateProfile(id, name, username, profilePic string) error
	SetRole(id, role string) error
}

// Session is an authenticated user plus the bearer token that proves it.
type Session struct {
	Token string      `json:"-"`
	User  models.User `json:"user"`
}

// IsAdmin reports whether the session's resolved role is admin.
func (s *Session) IsAdmin() bool {
	return s != nil && s.User.Role == "admin"
}

// RegisterInput carries the sign-up fields.
type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// Manager wraps the identity provider: login, register, logout, and
// per-request session resolution. Roles come from the persisted user record
// first, auth metadata second, "user" last — and role resolution never
// blocks a successful authentication.
type Manager struct {
	identity   IdentityAPI
	users      UserDirectory
	log        zerolog.Logger
	configured bool
}

func NewManager(identityClient IdentityAPI, users UserDirectory, configured bool, log zerolog.Logger) *Manager {
	return &Manager{
		identity:   identityClient,
		users:      users,
		log:        log,
		configured: configured,
	}
}

// Login authenticates and resolves the user's role. The returned error is
// already user-facing.
func (m *Manager) Login(email, password string) (*Session, error) {
	if !m.configured {
		return nil, ErrNotConfigured
	}

	authSession, err := m.identity.SignIn(email, password)
	if err != nil {
		m.log.Warn().Err(err).Str("email", email).Msg("login failed")
		return nil, errors.New(FriendlyMessage(err))
	}

	user := m.resolveUser(&authSession.User)

	// Keep the directory row in step with the provider. Not critical for
	// the login itself.
	if m.users != nil {
		if err := m.users.Upsert(&user); err != nil {
			m.log.Warn().Err(err).Str("user_id", user.ID).Msg("user directory upsert failed")
		}
	}

	return &Session{Token: authSession.AccessToken, User: user}, nil
}

// Register creates a new account with the default role. The role stamp into
// the users table is best-effort, mirroring the provider-side default.
func (m *Manager) Register(in RegisterInput) error {
	if !m.configured {
		return ErrNotConfigured
	}

	metadata := map[string]interface{}{
		"name":     in.Name,
		"username": in.Username,
		"role":     "user",
	}
	user, err := m.identity.SignUp(in.Email, in.Password, metadata)
	if err != nil {
		m.log.Warn().Err(err).Str("email", in.Email).Msg("registration failed")
		return errors.New(FriendlyMessage(err))
	}

	// The provider may hold the account unconfirmed; only stamp the role
	// once there is a user id to stamp it on.
	if user != nil && user.ID != "" && m.users != nil {
		if err := m.users.SetRole(user.ID, "user"); err != nil {
			m.log.Warn().Err(err).Str("user_id", user.ID).Msg("could not stamp default role")
		}
	}
	return nil
}

// Logout revokes the token best-effort. The caller clears its cookie state
// regardless of the outcome here.
func (m *Manager) Logout(token string) {
	if token == "" || !m.configured {
		return
	}
	if err := m.identity.SignOut(token); err != nil {
		m.log.Warn().Err(err).Msg("sign-out failed")
	}
}

// CurrentUser resolves the session behind a token, or nil when the token is
// empty, expired, or the provider cannot be reached.
func (m *Manager) CurrentUser(token string) *Session {
	if token == "" || !m.configured {
		return nil
	}

	user, err := m.identity.User(token)
	if err != nil {
		m.log.Debug().Err(err).Msg("session lookup failed")
		return nil
	}
	if user == nil {
		return nil
	}

	return &Session{Token: token, User: m.resolveUser(user)}
}

// UpdateProfile applies a profile edit to the user directory and mirrors it
// into the provider's auth metadata. The directory write is authoritative
// and propagates failures; the metadata mirror is best-effort.
func (m *Manager) UpdateProfile(sess *Session, name, username, avatarURL string) (*Session, error) {
	if m.users != nil {
		if err := m.users.UpdateProfile(sess.User.ID, name, username, avatarURL); err != nil {
			return nil, errors.New(FriendlyMessage(err))
		}
	}

	metadata := map[string]interface{}{}
	if name != "" {
		metadata["name"] = name
	}
	if username != "" {
		metadata["username"] = username
	}
	if avatarURL != "" {
		metadata["profile_pic"] = avatarURL
	}
	if len(metadata) > 0 {
		if _, err := m.identity.UpdateUser(sess.Token, metadata); err != nil {
			m.log.Warn().Err(err).Str("user_id", sess.User.ID).Msg("auth metadata update failed")
		}
	}

	refreshed := m.CurrentUser(sess.Token)
	if refreshed == nil {
		// Provider hiccup after a successful write; return the local view.
		updated := sess.User
		if name != "" {
			updated.Name = name
		}
		if username != "" {
			updated.Username = username
		}
		if avatarURL != "" {
			updated.ProfilePic = avatarURL
		}
		return &Session{Token: sess.Token, User: updated}, nil
	}
	return refreshed, nil
}

// resolveUser merges the persisted user record over the provider's auth
// metadata. Directory failures degrade to metadata, metadata gaps degrade to
// derived defaults; this never fails.
func (m *Manager) resolveUser(iu *identity.User) models.User {
	user := models.User{
		ID:         iu.ID,
		Email:      iu.Email,
		Name:       iu.MetaString("name"),
		Username:   iu.MetaString("username"),
		Role:       iu.MetaString("role"),
		ProfilePic: iu.MetaString("profile_pic"),
	}

	if m.users != nil {
		record, err := m.users.Get(iu.ID)
		if err != nil {
			m.log.Warn().Err(err).Str("user_id", iu.ID).Msg("user record lookup failed, using auth metadata")
		} else if record != nil {
			if record.Role != "" {
				user.Role = record.Role
			}
			if record.Name != "" {
				user.Name = record.Name
			}
			if record.Username != "" {
				user.Username = record.Username
			}
			if record.ProfilePic != "" {
				user.ProfilePic = record.ProfilePic
			}
		}
	}

	if user.Role == "" {
		user.Role = "user"
	}
	local := emailLocal(iu.Email)
	if user.Name == "" {
		user.Name = local
	}
	if user.Username == "" {
		user.Username = local
	}
	return user
}

func emailLocal(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}

// FriendlyMessage rewrites classified backend failures into user-facing
// messages. Unrecognized errors pass their message through verbatim.
func FriendlyMessage(err error) string {
	if err == nil {
		return ""
	}

	switch identity.KindOf(err) {
	case identity.KindInvalidCredentials:
		return "Invalid email or password."
	case identity.KindEmailNotConfirmed:
		return "Please check your email and confirm your account."
	case identity.KindRateLimited:
		return "Too many attempts. Please try again later."
	case identity.KindUserExists:
		return "An account with this email already exists."
	case identity.KindWeakPassword:
		return "Password must be at least 6 characters long."
	case identity.KindInvalidEmail:
		return "Please enter a valid email address."
	case identity.KindUnavailable:
		return "Auth service unreachable. Check network or backend URL."
	}

	switch store.Classify(err) {
	case store.KindNotConfigured:
		return ErrNotConfigured.Error()
	case store.KindPermissionDenied:
		return "Permission denied: check your database policies and user permissions."
	case store.KindSchemaMissing:
		return "Database table missing: please ensure all required tables exist."
	case store.KindUnavailable:
		return "The database is unreachable. Please try again later."
	case store.KindConflict:
		return "Username or email already exists. Please try a different one."
	}

	return err.Error()
}
