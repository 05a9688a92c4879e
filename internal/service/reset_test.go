package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mkowalski/todo-api/internal/model"
	"mkowalski/todo-api/pkg/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type captureMailer struct {
	calls    int
	sendTo   string
	resetURL string
	fail     bool
}

func (m *captureMailer) SendResetMail(sendTo, resetURL string) error {
	m.calls++
	m.sendTo = sendTo
	m.resetURL = resetURL

	if m.fail {
		return errors.New("smtp unreachable")
	}

	return nil
}

func (m *captureMailer) token(t *testing.T) string {
	t.Helper()

	i := strings.LastIndex(m.resetURL, "/")
	require.Greater(t, i, 0, "no token in reset URL %q", m.resetURL)

	return m.resetURL[i+1:]
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.User{}, model.Todo{}))

	return db
}

func testArgon() *security.ArgonHash {
	return &security.ArgonHash{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func newTestManager(t *testing.T) (*ResetManager, *captureMailer, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	mailer := &captureMailer{}

	rm := &ResetManager{
		db:       db,
		argon:    testArgon(),
		mailer:   mailer,
		lifetime: time.Hour,
		resetURL: "http://localhost:5173/reset-password/",
		now:      time.Now,
	}

	return rm, mailer, db
}

func seedUser(t *testing.T, db *gorm.DB, email, password string) model.User {
	t.Helper()

	hash, err := testArgon().GenerateFromPassword(password)
	require.NoError(t, err)

	user := model.User{
		ID:           "user-" + email,
		Username:     strings.SplitN(email, "@", 2)[0],
		Email:        email,
		PasswordHash: hash,
	}
	require.NoError(t, db.Create(&user).Error)

	return user
}

func TestRequestUnknownEmail(t *testing.T) {
	rm, mailer, _ := newTestManager(t)

	rm.Request(context.Background(), "nobody@example.com")

	assert.Zero(t, mailer.calls, "no mail must leave for unknown accounts")
}

func TestRequestStoresOnlyTheHash(t *testing.T) {
	rm, mailer, db := newTestManager(t)
	seedUser(t, db, "alice@example.com", "secret1")

	before := time.Now()
	rm.Request(context.Background(), "alice@example.com")

	require.Equal(t, 1, mailer.calls)
	assert.Equal(t, "alice@example.com", mailer.sendTo)

	token := mailer.token(t)

	var user model.User
	require.NoError(t, db.Where("email = ?", "alice@example.com").First(&user).Error)

	require.NotNil(t, user.ResetTokenHash)
	require.NotNil(t, user.ResetTokenExpiresAt)
	assert.NotEqual(t, token, *user.ResetTokenHash)
	assert.Equal(t, security.HashResetToken(token), *user.ResetTokenHash)

	assert.WithinDuration(t, before.Add(time.Hour), *user.ResetTokenExpiresAt, 5*time.Second)
}

func TestConsumeIsSingleUse(t *testing.T) {
	rm, mailer, db := newTestManager(t)
	seedUser(t, db, "alice@example.com", "secret1")

	rm.Request(context.Background(), "alice@example.com")
	token := mailer.token(t)

	require.NoError(t, rm.Consume(context.Background(), token, "newpass1"))

	var user model.User
	require.NoError(t, db.Where("email = ?", "alice@example.com").First(&user).Error)

	ok, err := testArgon().VerifyPasswd("newpass1", user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Nil(t, user.ResetTokenHash)
	assert.Nil(t, user.ResetTokenExpiresAt)

	// The same plaintext token must never work twice
	err = rm.Consume(context.Background(), token, "evilpass1")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestConsumeUnknownToken(t *testing.T) {
	rm, _, db := newTestManager(t)
	seedUser(t, db, "alice@example.com", "secret1")

	err := rm.Consume(context.Background(), "deadbeef", "newpass1")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestConsumeExpiry(t *testing.T) {
	rm, mailer, db := newTestManager(t)
	seedUser(t, db, "alice@example.com", "secret1")

	issuedAt := time.Now()
	rm.now = func() time.Time { return issuedAt }

	rm.Request(context.Background(), "alice@example.com")
	token := mailer.token(t)

	// Just inside the window
	rm.now = func() time.Time { return issuedAt.Add(59 * time.Minute) }
	require.NoError(t, rm.Consume(context.Background(), token, "newpass1"))

	// Fresh token, redeemed too late
	rm.now = func() time.Time { return issuedAt }
	rm.Request(context.Background(), "alice@example.com")
	token = mailer.token(t)

	rm.now = func() time.Time { return issuedAt.Add(61 * time.Minute) }
	err := rm.Consume(context.Background(), token, "newpass2")
	assert.ErrorIs(t, err, ErrResetTokenExpired)

	// The stale token is cleared as a side effect of being detected
	var user model.User
	require.NoError(t, db.Where("email = ?", "alice@example.com").First(&user).Error)
	assert.Nil(t, user.ResetTokenHash)
	assert.Nil(t, user.ResetTokenExpiresAt)

	// And it stays dead: a retry is now an unknown token
	err = rm.Consume(context.Background(), token, "newpass2")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestRerequestInvalidatesPreviousToken(t *testing.T) {
	rm, mailer, _ := newTestManager(t)
	db := rm.db
	seedUser(t, db, "alice@example.com", "secret1")

	rm.Request(context.Background(), "alice@example.com")
	first := mailer.token(t)

	rm.Request(context.Background(), "alice@example.com")
	second := mailer.token(t)

	require.NotEqual(t, first, second)

	err := rm.Consume(context.Background(), first, "newpass1")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)

	require.NoError(t, rm.Consume(context.Background(), second, "newpass1"))
}

func TestRequestSwallowsMailFailure(t *testing.T) {
	rm, mailer, db := newTestManager(t)
	mailer.fail = true
	seedUser(t, db, "alice@example.com", "secret1")

	// Must not panic or surface anything, the requester always sees success
	rm.Request(context.Background(), "alice@example.com")

	require.Equal(t, 1, mailer.calls)
}
