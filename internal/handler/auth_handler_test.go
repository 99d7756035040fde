package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/georgemichailidhs/meet2rent-sub001/internal/model"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/database"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/jwtutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterAndLogin(t *testing.T) {
	resetDB(t)

	email := fmt.Sprintf("newuser-%d@example.com", time.Now().UnixNano())

	c, rec := newJSONContext(t, http.MethodPost, "/auth/register", map[string]interface{}{
		"email":      email,
		"password":   "s3cret-pass",
		"first_name": "Eleni",
		"last_name":  "Georgiou",
		"role":       model.RoleTenant,
	}, nil)
	require.NoError(t, Register(c))
	assertStatus(t, rec, http.StatusCreated)

	body := decodeBody(t, rec)
	token, ok := body["token"].(string)
	require.True(t, ok)

	claims, err := jwtutil.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, email, claims.Email)
	assert.Equal(t, model.RoleTenant, claims.Role)

	// Password is stored hashed
	var user model.User
	require.NoError(t, database.GetDB().First(&user, "email = ?", email).Error)
	assert.NotEqual(t, "s3cret-pass", user.Password)

	c, rec = newJSONContext(t, http.MethodPost, "/auth/login", map[string]interface{}{
		"email":    email,
		"password": "s3cret-pass",
	}, nil)
	require.NoError(t, Login(c))
	assertStatus(t, rec, http.StatusOK)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	resetDB(t)

	c, rec := newJSONContext(t, http.MethodPost, "/auth/register", map[string]interface{}{
		"email":    "agent@example.com",
		"password": "s3cret-pass",
		"role":     "agent",
	}, nil)
	require.NoError(t, Register(c))
	assertStatus(t, rec, http.StatusBadRequest)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	resetDB(t)
	existing := createTestUser(t, model.RoleTenant)

	c, rec := newJSONContext(t, http.MethodPost, "/auth/register", map[string]interface{}{
		"email":    existing.Email,
		"password": "s3cret-pass",
		"role":     model.RoleTenant,
	}, nil)
	require.NoError(t, Register(c))
	assertStatus(t, rec, http.StatusConflict)
}

func TestLoginWrongPassword(t *testing.T) {
	resetDB(t)

	hashed, err := bcrypt.GenerateFromPassword([]byte("right-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &model.User{
		Email:    fmt.Sprintf("login-%d@example.com", time.Now().UnixNano()),
		Password: string(hashed),
		Role:     model.RoleTenant,
	}
	require.NoError(t, database.GetDB().Create(user).Error)

	c, rec := newJSONContext(t, http.MethodPost, "/auth/login", map[string]interface{}{
		"email":    user.Email,
		"password": "wrong-pass",
	}, nil)
	require.NoError(t, Login(c))
	assertStatus(t, rec, http.StatusUnauthorized)
}
