package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "boykot-backend/internal/models"
	"boykot-backend/internal/session"
	"boykot-backend/internal/store"
)

// countingStore records how many remote calls the resolver makes, so tests can
// assert that invalid input is rejected before any remote traffic.
type countingStore struct {
	store.Store
	listCalls int
}

func (c *countingStore) ListMany(ctx context.Context, collection string, q store.Query, dest interface{}) (string, error) {
	c.listCalls++
	return c.Store.ListMany(ctx, collection, q, dest)
}

// failingStore simulates an unreachable backend for every query.
type failingStore struct {
	store.Store
}

func (f *failingStore) ListMany(ctx context.Context, collection string, q store.Query, dest interface{}) (string, error) {
	return "", &store.NetworkError{Op: "listMany", Err: errors.New("connection refused")}
}

func newTestResolver(t *testing.T) (*Resolver, *store.Memory, *session.Manager) {
	t.Helper()
	st := store.NewMemory()
	sessions := session.NewManager(session.NewMemoryStore(), time.Hour)
	return NewResolver(st, sessions), st, sessions
}

func register(t *testing.T, r *Resolver, username, password string) model.Account {
	t.Helper()
	account, err := r.Register(context.Background(), RegisterInput{
		Username:        username,
		Password:        password,
		PasswordConfirm: password,
	})
	require.NoError(t, err)
	return account
}

func TestCheckUsernameAvailable(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestResolver(t)
	register(t, r, "gezgin", "supersecret")

	available, err := r.CheckUsernameAvailable(ctx, "gezgin")
	require.NoError(t, err)
	assert.False(t, available)

	available, err = r.CheckUsernameAvailable(ctx, "baskasi")
	require.NoError(t, err)
	assert.True(t, available)

	// case-sensitive: the upper-cased variant is a different username
	available, err = r.CheckUsernameAvailable(ctx, "Gezgin")
	require.NoError(t, err)
	assert.True(t, available)
}

func TestCheckUsernameAvailableIsIdempotent(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestResolver(t)

	for i := 0; i < 3; i++ {
		available, err := r.CheckUsernameAvailable(ctx, "gezgin")
		require.NoError(t, err)
		assert.True(t, available, "repeated checks must not reserve the name")
	}
}

func TestCheckUsernameRejectsInvalidInputLocally(t *testing.T) {
	ctx := context.Background()
	st := &countingStore{Store: store.NewMemory()}
	sessions := session.NewManager(session.NewMemoryStore(), time.Hour)
	r := NewResolver(st, sessions)

	for _, username := range []string{"ab", "", "gez gin", "gez.gin", "uzunbirkullaniciadi123"} {
		available, err := r.CheckUsernameAvailable(ctx, username)
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr, "username %q", username)
		assert.False(t, available)
	}
	assert.Zero(t, st.listCalls, "invalid usernames must never reach the store")
}

func TestCheckUsernameAvailableFailsClosed(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(&failingStore{Store: store.NewMemory()}, session.NewManager(session.NewMemoryStore(), time.Hour))

	available, err := r.CheckUsernameAvailable(ctx, "gezgin")
	assert.False(t, available)
	var netErr *store.NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestRegisterAndLoginRoundTrip(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestResolver(t)

	account, err := r.Register(ctx, RegisterInput{
		Username:        "gezgin",
		Password:        "supersecret",
		PasswordConfirm: "supersecret",
		AvatarID:        "avatar-3",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, account.UserID)
	assert.NotEmpty(t, account.Token)
	assert.Equal(t, "gezgin", account.Username)
	assert.Equal(t, "gezgin", account.Profile.Nickname, "nickname defaults to the username")
	assert.Equal(t, "avatar-3", account.Profile.AvatarID)
	assert.Equal(t, DefaultExperienceLevel, account.Profile.ExperienceLevel)
	assert.True(t, account.Settings.Notifications.Enabled)
	assert.True(t, account.Settings.ShowOnLeaderboard)

	logged, err := r.Login(ctx, "gezgin", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, account.UserID, logged.UserID)
	assert.Equal(t, "gezgin", logged.Profile.Nickname)
	assert.Equal(t, "avatar-3", logged.Profile.AvatarID)
	assert.NotEqual(t, account.Token, logged.Token, "login issues a fresh session")
}

func TestRegisterStoresHashedPassword(t *testing.T) {
	ctx := context.Background()
	r, st, _ := newTestResolver(t)
	account := register(t, r, "gezgin", "supersecret")

	var cred model.Credential
	require.NoError(t, st.GetOne(ctx, store.CollUserCredentials, account.UserID, &cred))
	assert.NotEqual(t, "supersecret", cred.Password, "plaintext must never hit the store")
	assert.NotEmpty(t, cred.Password)
}

func TestRegisterCreatesAllFourRecords(t *testing.T) {
	ctx := context.Background()
	r, st, _ := newTestResolver(t)
	account := register(t, r, "gezgin", "supersecret")

	var cred model.Credential
	require.NoError(t, st.GetOne(ctx, store.CollUserCredentials, account.UserID, &cred))
	var profile model.Profile
	require.NoError(t, st.GetOne(ctx, store.CollUserProfiles, account.UserID, &profile))
	var settings model.Settings
	require.NoError(t, st.GetOne(ctx, store.CollUserSettings, account.UserID, &settings))
	var entry model.LeaderboardEntry
	require.NoError(t, st.GetOne(ctx, store.CollLeaderboard, account.UserID, &entry))

	assert.Equal(t, "gezgin", entry.Nickname)
	assert.Zero(t, entry.AllTimeScore)
}

func TestRegisterClaimsExistingSession(t *testing.T) {
	ctx := context.Background()
	r, _, sessions := newTestResolver(t)

	anon, err := sessions.Begin(ctx)
	require.NoError(t, err)
	assert.False(t, anon.Claimed)

	account, err := r.Register(ctx, RegisterInput{
		Username:        "gezgin",
		Password:        "supersecret",
		PasswordConfirm: "supersecret",
		SessionToken:    anon.Token,
	})
	require.NoError(t, err)
	assert.Equal(t, anon.UserID, account.UserID, "registration binds the anonymous identity")

	claimed, err := sessions.Resolve(ctx, anon.Token)
	require.NoError(t, err)
	assert.True(t, claimed.Claimed)
}

func TestRegisterValidationShortCircuits(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		input RegisterInput
		field string
	}{
		{
			name:  "short username",
			input: RegisterInput{Username: "ab", Password: "supersecret", PasswordConfirm: "supersecret"},
			field: "username",
		},
		{
			name:  "bad charset",
			input: RegisterInput{Username: "gez gin", Password: "supersecret", PasswordConfirm: "supersecret"},
			field: "username",
		},
		{
			name:  "short password",
			input: RegisterInput{Username: "gezgin", Password: "1234567", PasswordConfirm: "1234567"},
			field: "password",
		},
		{
			name:  "password mismatch",
			input: RegisterInput{Username: "gezgin", Password: "supersecret", PasswordConfirm: "supersecres"},
			field: "passwordConfirm",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &countingStore{Store: store.NewMemory()}
			r := NewResolver(st, session.NewManager(session.NewMemoryStore(), time.Hour))

			_, err := r.Register(ctx, tt.input)
			var vErr *ValidationError
			if assert.ErrorAs(t, err, &vErr) {
				assert.Equal(t, tt.field, vErr.Field)
			}
			assert.Zero(t, st.listCalls, "validation failures must not reach the store")
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestResolver(t)
	register(t, r, "gezgin", "firstsecret")

	_, err := r.Register(ctx, RegisterInput{
		Username:        "gezgin",
		Password:        "secondsecret",
		PasswordConfirm: "secondsecret",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	// the first account is untouched: its password still works, the new one does not
	_, err = r.Login(ctx, "gezgin", "firstsecret")
	assert.NoError(t, err)
	_, err = r.Login(ctx, "gezgin", "secondsecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterFailsClosedOnStoreError(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(&failingStore{Store: store.NewMemory()}, session.NewManager(session.NewMemoryStore(), time.Hour))

	_, err := r.Register(ctx, RegisterInput{
		Username:        "gezgin",
		Password:        "supersecret",
		PasswordConfirm: "supersecret",
	})
	var netErr *store.NetworkError
	assert.ErrorAs(t, err, &netErr, "registration must not proceed when availability is unknown")
}

func TestLoginRejectsWrongCredentials(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestResolver(t)
	register(t, r, "gezgin", "supersecret")

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "wrong password", username: "gezgin", password: "wrongsecret"},
		{name: "unknown username", username: "baskasi", password: "supersecret"},
		{name: "wrong case", username: "Gezgin", password: "supersecret"},
		{name: "empty password", username: "gezgin", password: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Login(ctx, tt.username, tt.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestLoginDoesNotApplyRegistrationPasswordRules(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestResolver(t)
	register(t, r, "gezgin", "supersecret")

	// A short password is simply a non-match, not a validation error.
	_, err := r.Login(ctx, "gezgin", "short")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	var vErr *ValidationError
	assert.False(t, errors.As(err, &vErr))
}

func TestLogoutInvalidatesSession(t *testing.T) {
	ctx := context.Background()
	r, _, sessions := newTestResolver(t)
	account := register(t, r, "gezgin", "supersecret")

	require.NoError(t, r.Logout(ctx, account.Token))

	_, err := sessions.Resolve(ctx, account.Token)
	assert.ErrorIs(t, err, session.ErrUnknownSession)
}

func TestUpdateProfileNicknamePropagates(t *testing.T) {
	ctx := context.Background()
	r, st, _ := newTestResolver(t)
	account := register(t, r, "eski_isim", "supersecret")

	newName := "yeni_isim"
	require.NoError(t, r.UpdateProfile(ctx, account.UserID, ProfileUpdate{Nickname: &newName}))

	var cred model.Credential
	require.NoError(t, st.GetOne(ctx, store.CollUserCredentials, account.UserID, &cred))
	assert.Equal(t, "yeni_isim", cred.Username)

	var profile model.Profile
	require.NoError(t, st.GetOne(ctx, store.CollUserProfiles, account.UserID, &profile))
	assert.Equal(t, "yeni_isim", profile.Nickname)

	var settings model.Settings
	require.NoError(t, st.GetOne(ctx, store.CollUserSettings, account.UserID, &settings))
	assert.Equal(t, "yeni_isim", settings.Nickname)

	var entry model.LeaderboardEntry
	require.NoError(t, st.GetOne(ctx, store.CollLeaderboard, account.UserID, &entry))
	assert.Equal(t, "yeni_isim", entry.Nickname)

	// availability flips: the old name frees up, the new one is taken
	available, err := r.CheckUsernameAvailable(ctx, "eski_isim")
	require.NoError(t, err)
	assert.True(t, available)
	available, err = r.CheckUsernameAvailable(ctx, "yeni_isim")
	require.NoError(t, err)
	assert.False(t, available)
}

func TestUpdateProfileNicknameConflict(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestResolver(t)
	register(t, r, "gezgin", "supersecret")
	other := register(t, r, "baskasi", "supersecret")

	taken := "gezgin"
	err := r.UpdateProfile(ctx, other.UserID, ProfileUpdate{Nickname: &taken})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUpdateProfileSameNicknameIsNoop(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestResolver(t)
	account := register(t, r, "gezgin", "supersecret")

	same := "gezgin"
	require.NoError(t, r.UpdateProfile(ctx, account.UserID, ProfileUpdate{Nickname: &same}))

	// still logged in under the same name
	_, err := r.Login(ctx, "gezgin", "supersecret")
	assert.NoError(t, err)
}

func TestUpdateProfileAvatar(t *testing.T) {
	ctx := context.Background()
	r, st, _ := newTestResolver(t)
	account := register(t, r, "gezgin", "supersecret")

	avatar := "avatar-7"
	require.NoError(t, r.UpdateProfile(ctx, account.UserID, ProfileUpdate{AvatarID: &avatar}))

	var profile model.Profile
	require.NoError(t, st.GetOne(ctx, store.CollUserProfiles, account.UserID, &profile))
	assert.Equal(t, "avatar-7", profile.AvatarID)

	var settings model.Settings
	require.NoError(t, st.GetOne(ctx, store.CollUserSettings, account.UserID, &settings))
	assert.Equal(t, "avatar-7", settings.Avatar.ID)

	var entry model.LeaderboardEntry
	require.NoError(t, st.GetOne(ctx, store.CollLeaderboard, account.UserID, &entry))
	assert.Equal(t, "avatar-7", entry.AvatarID)
}

func TestAccountLoadsProfileAndSettings(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestResolver(t)
	account := register(t, r, "gezgin", "supersecret")

	loaded, err := r.Account(ctx, account.UserID)
	require.NoError(t, err)
	assert.Equal(t, "gezgin", loaded.Username)
	assert.Equal(t, "gezgin", loaded.Profile.Nickname)

	_, err = r.Account(ctx, "missing-user")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
