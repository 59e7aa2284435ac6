package identity

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	model "boykot-backend/internal/models"
	"boykot-backend/internal/session"
	"boykot-backend/internal/store"
)

var (
	// ErrInvalidCredentials hides whether the username exists or the password
	// was wrong. Surfaced to the user as "credentials not found".
	ErrInvalidCredentials = errors.New("credentials not found")

	// ErrUsernameTaken is the conflict raised when a chosen username already
	// has a credential record. Surfaced as a field-level error.
	ErrUsernameTaken = errors.New("username already taken")
)

// DefaultExperienceLevel is assigned to every freshly registered profile.
const DefaultExperienceLevel = "beginner"

// Resolver maps a chosen username/password pair onto a durable account bound
// to an underlying anonymous session identity. It is the only place where
// username-to-account binding logic lives.
type Resolver struct {
	store    store.Store
	sessions *session.Manager
}

func NewResolver(st store.Store, sessions *session.Manager) *Resolver {
	return &Resolver{store: st, sessions: sessions}
}

// RegisterInput carries everything a registration needs. SessionToken is
// optional: when the client already holds an anonymous session, registration
// claims that identity instead of minting a new one.
type RegisterInput struct {
	Username        string
	Password        string
	PasswordConfirm string
	AvatarID        string
	SessionToken    string
}

// ProfileUpdate is a partial profile mutation; nil fields are left untouched.
type ProfileUpdate struct {
	Nickname *string
	AvatarID *string
}

// CheckUsernameAvailable reports whether username is free. Invalid input is
// rejected locally without a remote call. Store failures propagate to the
// caller; deciding to treat them as "available" is a UI-path policy
// (see AvailabilityChecker), never a registration-path one.
func (r *Resolver) CheckUsernameAvailable(ctx context.Context, username string) (bool, error) {
	username = NormalizeUsername(username)
	if err := ValidateUsername(username); err != nil {
		return false, err
	}

	var existing []model.Credential
	_, err := r.store.ListMany(ctx, store.CollUserCredentials, store.Query{
		Filters: []store.Filter{{Field: "username", Op: store.OpEq, Value: username}},
		Page:    store.Page{Size: 1},
	}, &existing)
	if err != nil {
		return false, fmt.Errorf("availability check: %w", err)
	}
	return len(existing) == 0, nil
}

// Register validates the chosen credentials, re-checks availability to narrow
// the time-of-check-to-time-of-use gap, binds an anonymous session identity
// and writes the credential, profile, settings and leaderboard records in one
// transaction. All four records share the session's user id as primary key.
func (r *Resolver) Register(ctx context.Context, in RegisterInput) (model.Account, error) {
	username := NormalizeUsername(in.Username)
	if err := ValidateUsername(username); err != nil {
		return model.Account{}, err
	}
	if err := ValidatePassword(in.Password, in.PasswordConfirm); err != nil {
		return model.Account{}, err
	}

	available, err := r.CheckUsernameAvailable(ctx, username)
	if err != nil {
		return model.Account{}, err
	}
	if !available {
		return model.Account{}, ErrUsernameTaken
	}

	var sess session.Session
	if in.SessionToken != "" {
		sess, err = r.sessions.Resolve(ctx, in.SessionToken)
		if err != nil {
			return model.Account{}, err
		}
	} else {
		sess, err = r.sessions.Begin(ctx)
		if err != nil {
			return model.Account{}, fmt.Errorf("begin session: %w", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.Account{}, fmt.Errorf("hash password: %w", err)
	}

	account := model.Account{UserID: sess.UserID, Username: username}

	err = r.store.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := r.store.Create(ctx, store.CollUserCredentials, sess.UserID, model.Credential{
			UserID:   sess.UserID,
			Username: username,
			Password: string(hash),
		}); err != nil {
			return err
		}

		if _, err := r.store.Create(ctx, store.CollUserProfiles, sess.UserID, model.Profile{
			ID:              sess.UserID,
			Nickname:        username,
			AvatarID:        in.AvatarID,
			ExperienceLevel: DefaultExperienceLevel,
		}); err != nil {
			return err
		}

		if _, err := r.store.Create(ctx, store.CollUserSettings, sess.UserID, model.Settings{
			ID:                sess.UserID,
			Notifications:     model.NotificationSettings{Enabled: true},
			ShowOnLeaderboard: true,
			Nickname:          username,
			Avatar:            model.AvatarRef{ID: in.AvatarID},
		}); err != nil {
			return err
		}

		if _, err := r.store.Create(ctx, store.CollLeaderboard, sess.UserID, model.LeaderboardEntry{
			UserID:       sess.UserID,
			Nickname:     username,
			AvatarID:     in.AvatarID,
			Achievements: []string{},
		}); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return model.Account{}, fmt.Errorf("register %q: %w", username, err)
	}

	sess, err = r.sessions.Claim(ctx, sess.Token)
	if err != nil {
		return model.Account{}, err
	}
	account.Token = sess.Token

	if err := r.loadAccount(ctx, &account); err != nil {
		return model.Account{}, err
	}
	return account, nil
}

// Login verifies the password for username and issues a fresh claimed session.
func (r *Resolver) Login(ctx context.Context, username, password string) (model.Account, error) {
	username = NormalizeUsername(username)
	if username == "" || password == "" {
		return model.Account{}, ErrInvalidCredentials
	}

	var creds []model.Credential
	_, err := r.store.ListMany(ctx, store.CollUserCredentials, store.Query{
		Filters: []store.Filter{{Field: "username", Op: store.OpEq, Value: username}},
		Page:    store.Page{Size: 1},
	}, &creds)
	if err != nil {
		return model.Account{}, fmt.Errorf("login lookup: %w", err)
	}
	if len(creds) == 0 {
		return model.Account{}, ErrInvalidCredentials
	}
	cred := creds[0]

	if bcrypt.CompareHashAndPassword([]byte(cred.Password), []byte(password)) != nil {
		return model.Account{}, ErrInvalidCredentials
	}

	sess, err := r.sessions.Issue(ctx, cred.UserID)
	if err != nil {
		return model.Account{}, fmt.Errorf("issue session: %w", err)
	}

	account := model.Account{UserID: cred.UserID, Username: cred.Username, Token: sess.Token}
	if err := r.loadAccount(ctx, &account); err != nil {
		return model.Account{}, err
	}
	return account, nil
}

// Logout invalidates the session behind token. Device-local state is the
// client's responsibility.
func (r *Resolver) Logout(ctx context.Context, token string) error {
	return r.sessions.Invalidate(ctx, token)
}

// Account loads the account owned by userID, without issuing a session.
func (r *Resolver) Account(ctx context.Context, userID string) (model.Account, error) {
	var cred model.Credential
	if err := r.store.GetOne(ctx, store.CollUserCredentials, userID, &cred); err != nil {
		return model.Account{}, err
	}
	account := model.Account{UserID: userID, Username: cred.Username}
	if err := r.loadAccount(ctx, &account); err != nil {
		return model.Account{}, err
	}
	return account, nil
}

// UpdateProfile applies a partial profile change. A nickname change re-runs
// the availability check against the new value, then propagates the nickname
// to the credential, profile, settings and leaderboard records so the
// duplicated field stays consistent everywhere.
func (r *Resolver) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) error {
	var cred model.Credential
	if err := r.store.GetOne(ctx, store.CollUserCredentials, userID, &cred); err != nil {
		return err
	}

	profilePatch := map[string]interface{}{}
	settingsPatch := map[string]interface{}{}
	leaderboardPatch := map[string]interface{}{}
	credentialPatch := map[string]interface{}{}

	if upd.Nickname != nil {
		nickname := NormalizeUsername(*upd.Nickname)
		if nickname != cred.Username {
			available, err := r.CheckUsernameAvailable(ctx, nickname)
			if err != nil {
				return err
			}
			if !available {
				return ErrUsernameTaken
			}
			credentialPatch["username"] = nickname
			profilePatch["nickname"] = nickname
			settingsPatch["nickname"] = nickname
			leaderboardPatch["nickname"] = nickname
		}
	}

	if upd.AvatarID != nil {
		profilePatch["avatarId"] = *upd.AvatarID
		settingsPatch["avatar.id"] = *upd.AvatarID
		leaderboardPatch["avatarId"] = *upd.AvatarID
	}

	if len(profilePatch) == 0 && len(credentialPatch) == 0 {
		return nil
	}

	return r.store.WithTransaction(ctx, func(ctx context.Context) error {
		if len(credentialPatch) > 0 {
			if err := r.store.Update(ctx, store.CollUserCredentials, userID, credentialPatch, nil); err != nil {
				return err
			}
		}
		if len(profilePatch) > 0 {
			if err := r.store.Update(ctx, store.CollUserProfiles, userID, profilePatch, nil); err != nil {
				return err
			}
		}
		if len(settingsPatch) > 0 {
			if err := r.store.Update(ctx, store.CollUserSettings, userID, settingsPatch, nil); err != nil {
				return err
			}
		}
		if len(leaderboardPatch) > 0 {
			if err := r.store.Update(ctx, store.CollLeaderboard, userID, leaderboardPatch, nil); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Resolver) loadAccount(ctx context.Context, account *model.Account) error {
	if err := r.store.GetOne(ctx, store.CollUserProfiles, account.UserID, &account.Profile); err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if err := r.store.GetOne(ctx, store.CollUserSettings, account.UserID, &account.Settings); err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	return nil
}
