package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	memorycache "taskapp/internal/adapter/cache/memory"
	"taskapp/internal/adapter/database/sqlite"
	"taskapp/internal/adapter/database/sqlite/repository"
	"taskapp/internal/adapter/imaging"
	"taskapp/internal/core/domain"
	"taskapp/internal/core/port"
	tel "taskapp/internal/core/telemetry"
	"taskapp/pkg/test"
)

type recordingNotifier struct {
	welcomes []string
	goodbyes []string
}

func (n *recordingNotifier) SendWelcome(ctx context.Context, email, name string) {
	n.welcomes = append(n.welcomes, email)
}

func (n *recordingNotifier) SendGoodbye(ctx context.Context, email, name string) {
	n.goodbyes = append(n.goodbyes, email)
}

type failingTaskRepo struct{}

func (failingTaskRepo) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	return domain.Task{}, errors.New("task store down")
}

func (failingTaskRepo) CountByOwner(ctx context.Context, ownerID int) (int, error) {
	return 0, errors.New("task store down")
}

func (failingTaskRepo) DeleteAllByOwner(ctx context.Context, ownerID int) error {
	return errors.New("task store down")
}

type AccountServiceSuite struct {
	suite.Suite
	DB       *sql.DB
	Users    port.UserRepository
	Tasks    port.TaskRepository
	Tokens   *TokenService
	Notifier *recordingNotifier
	Service  *AccountService
}

func (s *AccountServiceSuite) SetupTest() {
	s.DB = test.InitTestDB()

	db := sqlite.Wrap(s.DB)

	s.Users = repository.NewUserRepository(db, nil)
	s.Tasks = repository.NewTaskRepository(db, nil)
	s.Tokens = NewTokenService(s.Users, "test-secret")
	s.Notifier = &recordingNotifier{}

	s.Service = NewAccountService(
		s.Users,
		s.Tasks,
		s.Tokens,
		imaging.NewTranscoder(),
		s.Notifier,
		memorycache.NewCache(),
		tel.NewNoOpProbe(),
	)
}

func (s *AccountServiceSuite) TearDownTest() {
	s.DB.Close()
}

func TestAccountServiceSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceSuite))
}

func (s *AccountServiceSuite) signUp(email string) (domain.User, string) {
	user, token, err := s.Service.SignUp(context.Background(), "Mike", email, "red12345", 30)

	s.Require().NoError(err)

	return user, token
}

func rawUpdates(pairs map[string]any) map[string]json.RawMessage {
	updates := make(map[string]json.RawMessage, len(pairs))

	for field, value := range pairs {
		encoded, _ := json.Marshal(value)
		updates[field] = encoded
	}

	return updates
}

func testPNG(width, height int) []byte {
	var buf bytes.Buffer

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	png.Encode(&buf, img)

	return buf.Bytes()
}

func (s *AccountServiceSuite) TestSignUpSuccess() {
	user, token := s.signUp("mike@example.com")

	s.NotEmpty(user.ID)
	s.NotEmpty(user.UUID)
	s.NotEmpty(token)
	s.Equal("mike@example.com", user.Email)
	s.NotEqual("red12345", user.EncryptedPassword)
	s.True(user.HasToken(token))
	s.Equal([]string{"mike@example.com"}, s.Notifier.welcomes)
}

func (s *AccountServiceSuite) TestSignUpNormalizesEmail() {
	user, _ := s.signUp("  Mike@Example.COM ")

	s.Equal("mike@example.com", user.Email)
}

func (s *AccountServiceSuite) TestSignUpRejectsShortPassword() {
	_, _, err := s.Service.SignUp(context.Background(), "Mike", "mike@example.com", "short1", 30)

	s.True(domain.IsValidation(err))
	s.Empty(s.Notifier.welcomes)
}

func (s *AccountServiceSuite) TestSignUpRejectsPasswordContainingPassword() {
	_, _, err := s.Service.SignUp(context.Background(), "Mike", "mike@example.com", "Password123", 30)

	s.True(domain.IsValidation(err))
}

func (s *AccountServiceSuite) TestSignUpCollectsAllViolations() {
	_, _, err := s.Service.SignUp(context.Background(), "", "bad-email", "bad", -1)

	var validationErr *domain.ValidationError

	s.ErrorAs(err, &validationErr)
	s.Len(validationErr.Violations, 4)
}

func (s *AccountServiceSuite) TestSignUpRejectsDuplicateEmail() {
	s.signUp("mike@example.com")

	_, _, err := s.Service.SignUp(context.Background(), "Other", "mike@example.com", "red12345", 25)

	var validationErr *domain.ValidationError

	s.ErrorAs(err, &validationErr)
	s.Equal("email", validationErr.Violations[0].Field)
}

func (s *AccountServiceSuite) TestLoginSuccess() {
	s.signUp("mike@example.com")

	user, token, err := s.Service.Login(context.Background(), "mike@example.com", "red12345")

	s.NoError(err)
	s.NotEmpty(token)
	s.Equal("mike@example.com", user.Email)
}

func (s *AccountServiceSuite) TestLoginFailuresAreIndistinguishable() {
	s.signUp("mike@example.com")

	_, _, unknownErr := s.Service.Login(context.Background(), "nobody@example.com", "red12345")
	_, _, wrongErr := s.Service.Login(context.Background(), "mike@example.com", "wrong-pass")

	s.ErrorIs(unknownErr, domain.ErrUnableToLogin)
	s.ErrorIs(wrongErr, domain.ErrUnableToLogin)
	s.Equal(unknownErr.Error(), wrongErr.Error())
}

func (s *AccountServiceSuite) TestLogoutRevokesOnlyCurrentSession() {
	ctx := context.Background()
	user, first := s.signUp("mike@example.com")

	_, second, err := s.Service.Login(ctx, "mike@example.com", "red12345")
	s.NoError(err)

	stored, err := s.Users.GetByUUID(ctx, user.UUID.String())
	s.NoError(err)

	s.NoError(s.Service.Logout(ctx, stored, first))

	stored, err = s.Users.GetByUUID(ctx, user.UUID.String())
	s.NoError(err)
	s.False(stored.HasToken(first))
	s.True(stored.HasToken(second))
}

func (s *AccountServiceSuite) TestLogoutAllRevokesEverySession() {
	ctx := context.Background()
	user, _ := s.signUp("mike@example.com")

	s.Service.Login(ctx, "mike@example.com", "red12345")

	s.NoError(s.Service.LogoutAll(ctx, user))

	stored, err := s.Users.GetByUUID(ctx, user.UUID.String())
	s.NoError(err)
	s.Empty(stored.Tokens)
}

func (s *AccountServiceSuite) TestUpdateAllowedFields() {
	ctx := context.Background()
	user, _ := s.signUp("mike@example.com")

	updated, err := s.Service.Update(ctx, user, rawUpdates(map[string]any{
		"name": "Michael",
		"age":  31,
	}))

	s.NoError(err)
	s.Equal("Michael", updated.Name)
	s.Equal(31, updated.Age)
	s.Equal("mike@example.com", updated.Email)
}

func (s *AccountServiceSuite) TestUpdatePasswordRehashes() {
	ctx := context.Background()
	user, _ := s.signUp("mike@example.com")

	_, err := s.Service.Update(ctx, user, rawUpdates(map[string]any{
		"password": "blue67890",
	}))

	s.NoError(err)

	_, _, err = s.Service.Login(ctx, "mike@example.com", "blue67890")
	s.NoError(err)

	_, _, err = s.Service.Login(ctx, "mike@example.com", "red12345")
	s.ErrorIs(err, domain.ErrUnableToLogin)
}

func (s *AccountServiceSuite) TestUpdateRejectsUnknownFieldsWholesale() {
	ctx := context.Background()
	user, _ := s.signUp("mike@example.com")

	_, err := s.Service.Update(ctx, user, rawUpdates(map[string]any{
		"name":     "Michael",
		"location": "Lisbon",
	}))

	var validationErr *domain.ValidationError

	s.ErrorAs(err, &validationErr)
	s.Equal("Invalid updates!", validationErr.Violations[0].Message)

	// The allowed field must not have been applied.
	stored, err := s.Users.GetByUUID(ctx, user.UUID.String())
	s.NoError(err)
	s.Equal("Mike", stored.Name)
}

func (s *AccountServiceSuite) TestUpdateRejectsBadPasswordPolicy() {
	ctx := context.Background()
	user, _ := s.signUp("mike@example.com")

	_, err := s.Service.Update(ctx, user, rawUpdates(map[string]any{
		"password": "password1",
	}))

	s.True(domain.IsValidation(err))
}

func (s *AccountServiceSuite) TestDeleteCascadesOwnedTasks() {
	ctx := context.Background()
	user, _ := s.signUp("mike@example.com")
	other, _ := s.signUp("jane@example.com")

	now := time.Now()

	for _, title := range []string{"one", "two"} {
		_, err := s.Tasks.Create(ctx, domain.Task{
			OwnerID: user.ID, Title: title, CreatedAt: now, UpdatedAt: now,
		})
		s.Require().NoError(err)
	}

	_, err := s.Tasks.Create(ctx, domain.Task{
		OwnerID: other.ID, Title: "keep", CreatedAt: now, UpdatedAt: now,
	})
	s.Require().NoError(err)

	s.NoError(s.Service.Delete(ctx, user))

	_, err = s.Users.GetByUUID(ctx, user.UUID.String())
	s.Error(err)

	count, err := s.Tasks.CountByOwner(ctx, user.ID)
	s.NoError(err)
	s.Zero(count)

	count, err = s.Tasks.CountByOwner(ctx, other.ID)
	s.NoError(err)
	s.Equal(1, count)

	s.Equal([]string{"mike@example.com"}, s.Notifier.goodbyes)
}

func (s *AccountServiceSuite) TestDeleteAbortsWhenCascadeFails() {
	ctx := context.Background()
	user, _ := s.signUp("mike@example.com")

	broken := NewAccountService(
		s.Users,
		failingTaskRepo{},
		s.Tokens,
		imaging.NewTranscoder(),
		s.Notifier,
		memorycache.NewCache(),
		tel.NewNoOpProbe(),
	)

	err := broken.Delete(ctx, user)

	var depErr *domain.DependencyError

	s.ErrorAs(err, &depErr)
	s.Equal("task store", depErr.Dependency)

	// The account survives an aborted cascade.
	_, err = s.Users.GetByUUID(ctx, user.UUID.String())
	s.NoError(err)
}

func (s *AccountServiceSuite) TestDeleteKeepsTasksWhenAccountDeleteFails() {
	ctx := context.Background()
	user, _ := s.signUp("mike@example.com")

	now := time.Now()

	_, err := s.Tasks.Create(ctx, domain.Task{
		OwnerID: user.ID, Title: "chore", CreatedAt: now, UpdatedAt: now,
	})
	s.Require().NoError(err)

	_, err = s.DB.Exec(`CREATE TRIGGER block_user_delete BEFORE DELETE ON users
		BEGIN SELECT RAISE(ABORT, 'users table locked down'); END`)
	s.Require().NoError(err)

	s.Error(s.Service.Delete(ctx, user))

	// The failed delete must leave the account and its tasks together.
	_, err = s.Users.GetByUUID(ctx, user.UUID.String())
	s.NoError(err)

	count, err := s.Tasks.CountByOwner(ctx, user.ID)
	s.NoError(err)
	s.Equal(1, count)
}

func (s *AccountServiceSuite) TestAvatarLifecycle() {
	ctx := context.Background()
	user, _ := s.signUp("mike@example.com")

	s.NoError(s.Service.SetAvatar(ctx, user, testPNG(400, 300)))

	data, err := s.Service.AvatarByUUID(ctx, user.UUID.String())
	s.NoError(err)

	img, format, err := image.Decode(bytes.NewReader(data))
	s.NoError(err)
	s.Equal("png", format)
	s.Equal(250, img.Bounds().Dx())
	s.Equal(250, img.Bounds().Dy())

	s.NoError(s.Service.RemoveAvatar(ctx, user))

	_, err = s.Service.AvatarByUUID(ctx, user.UUID.String())
	s.True(domain.IsNotFound(err))
}

func (s *AccountServiceSuite) TestAvatarRejectsNonImage() {
	ctx := context.Background()
	user, _ := s.signUp("mike@example.com")

	err := s.Service.SetAvatar(ctx, user, []byte("plain text, not an image"))

	s.True(domain.IsValidation(err))
}

func (s *AccountServiceSuite) TestAvatarByUUIDUnknownAccount() {
	_, err := s.Service.AvatarByUUID(context.Background(), "3f2e9a70-0000-0000-0000-000000000000")

	s.True(domain.IsNotFound(err))
}
