package service

import (
	"testing"
	"time"

	"trainingdesk/internal/apperr"
	"trainingdesk/internal/auth"
	"trainingdesk/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerRequest(username, role string) RegisterRequest {
	return RegisterRequest{
		Username:        username,
		Email:           username + "@example.com",
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Sex:             "female",
		Role:            role,
		Password:        "correct-horse",
		PasswordConfirm: "correct-horse",
	}
}

func TestRegisterAnonymousTrainee(t *testing.T) {
	f := newFixture(t)
	svc := f.userService()

	res, err := svc.Register(f.ctx, nil, registerRequest("ada", ""))
	require.NoError(t, err)
	assert.Equal(t, string(model.RoleTrainee), res.User.Role)
	assert.Equal(t, "Ada Lovelace", res.User.FullName)

	actor, err := auth.NewTokens("test-secret", time.Hour).Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, actor.ID)
	assert.Equal(t, model.RoleTrainee, actor.Role)

	stored, err := f.users.GetByUsername(f.ctx, "ada")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", stored.Password)
	assert.Equal(t, int64(1), f.auditCount(t, model.ActionRegisterUser))
}

func TestRegisterRoleRules(t *testing.T) {
	f := newFixture(t)
	svc := f.userService()
	admin := f.actor(t, model.RoleAdmin)
	staff := f.actor(t, model.RoleStaff)

	_, err := svc.Register(f.ctx, nil, registerRequest("anon-staff", "staff"))
	assertKind(t, apperr.KindForbidden, err)

	_, err = svc.Register(f.ctx, &staff, registerRequest("new-staff", "staff"))
	assertKind(t, apperr.KindForbidden, err)

	res, err := svc.Register(f.ctx, &admin, registerRequest("new-staff", "staff"))
	require.NoError(t, err)
	assert.Equal(t, "staff", res.User.Role)

	res, err = svc.Register(f.ctx, &staff, registerRequest("new-trainer", "Trainer"))
	require.NoError(t, err)
	assert.Equal(t, "trainer", res.User.Role)

	_, err = svc.Register(f.ctx, &admin, registerRequest("wizard", "wizard"))
	assertKind(t, apperr.KindValidation, err)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	svc := f.userService()

	req := registerRequest("ada", "")
	req.PasswordConfirm = "something-else"
	_, err := svc.Register(f.ctx, nil, req)
	assertKind(t, apperr.KindValidation, err)

	req = registerRequest("ada", "")
	req.Password, req.PasswordConfirm = "short", "short"
	_, err = svc.Register(f.ctx, nil, req)
	assertKind(t, apperr.KindValidation, err)

	_, err = svc.Register(f.ctx, nil, registerRequest("ada", ""))
	require.NoError(t, err)
	_, err = svc.Register(f.ctx, nil, registerRequest("ada", ""))
	assertKind(t, apperr.KindConflict, err)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	svc := f.userService()
	_, err := svc.Register(f.ctx, nil, registerRequest("ada", ""))
	require.NoError(t, err)

	res, err := svc.Login(f.ctx, LoginRequest{Username: "ada", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	_, err = svc.Login(f.ctx, LoginRequest{Username: "ada", Password: "wrong-horse"})
	assertKind(t, apperr.KindUnauthorized, err)

	_, err = svc.Login(f.ctx, LoginRequest{Username: "nobody", Password: "correct-horse"})
	assertKind(t, apperr.KindUnauthorized, err)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	svc := f.userService()
	me := f.actor(t, model.RoleTrainer)
	other := f.actor(t, model.RoleTrainer)
	otherUser, err := f.users.GetByID(f.ctx, other.ID)
	require.NoError(t, err)

	phone := "0123456789"
	res, err := svc.UpdateProfile(f.ctx, me, UpdateProfileRequest{PhoneNumber: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, res.PhoneNumber)

	_, err = svc.UpdateProfile(f.ctx, me, UpdateProfileRequest{Email: &otherUser.Email})
	assertKind(t, apperr.KindConflict, err)
}

func TestListByRole(t *testing.T) {
	f := newFixture(t)
	svc := f.userService()
	staff := f.actor(t, model.RoleStaff)
	admin := f.actor(t, model.RoleAdmin)
	trainee := f.actor(t, model.RoleTrainee)
	f.actor(t, model.RoleTrainer)

	_, err := svc.ListByRole(f.ctx, staff, model.RoleStaff, 1, 10)
	assertKind(t, apperr.KindForbidden, err)

	page, err := svc.ListByRole(f.ctx, admin, model.RoleStaff, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	_, err = svc.ListByRole(f.ctx, trainee, model.RoleTrainer, 1, 10)
	assertKind(t, apperr.KindForbidden, err)

	page, err = svc.ListByRole(f.ctx, trainee, model.RoleTrainee, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	_, err = svc.ListByRole(f.ctx, admin, model.RoleAdmin, 1, 10)
	assertKind(t, apperr.KindValidation, err)

}
