package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/01moynul/gotogro-members/internal/models"
	"github.com/gin-gonic/gin"
)

// --- User Registration ---

// RegisterUserInput is separate from models.User because we never accept an
// 'id' or 'role' from the client.
type RegisterUserInput struct {
	Username        string `json:"username" binding:"required,max=150"`
	Email           string `json:"email" binding:"required,email"`
	FirstName       string `json:"firstName" binding:"required,max=30"`
	LastName        string `json:"lastName" binding:"required,max=30"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// Register is the handler for POST /v1/register.
// The user and its profile are created in the same transaction.
func (h *Handlers) Register(c *gin.Context) {
	var input RegisterUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Password != input.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The two password fields must match."})
		return
	}
	if err := models.ValidatePassword(input.Password, input.Username, input.Email, input.FirstName, input.LastName); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var password models.Password
	if err := password.Set(input.Password); err != nil {
		h.serverError(c, err, "Failed to hash password")
		return
	}

	now := time.Now()
	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: password.Hash,
		Role:         models.RoleMember,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	tx, err := h.DB.BeginTx(c, nil)
	if err != nil {
		h.serverError(c, err, "Failed to start transaction")
		return
	}
	defer tx.Rollback() // Safety net

	var taken int
	if err := tx.QueryRowContext(c, "SELECT COUNT(*) FROM users WHERE username = ?", user.Username).Scan(&taken); err != nil {
		h.serverError(c, err, "Failed to check username")
		return
	}
	if taken > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "A user with that username already exists."})
		return
	}

	result, err := tx.ExecContext(c, `
		INSERT INTO users (username, email, first_name, last_name, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.FirstName, user.LastName, user.PasswordHash, user.Role, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		h.serverError(c, err, "Failed to create user")
		return
	}
	if user.ID, err = result.LastInsertId(); err != nil {
		h.serverError(c, err, "Failed to get new user ID")
		return
	}

	if _, err := tx.ExecContext(c,
		"INSERT INTO profiles (user_id, first_name, last_name) VALUES (?, ?, ?)",
		user.ID, user.FirstName, user.LastName); err != nil {
		h.serverError(c, err, "Failed to create profile")
		return
	}

	if err := tx.Commit(); err != nil {
		h.serverError(c, err, "Failed to commit registration")
		return
	}

	// The new member is logged in straight away.
	token, err := h.Tokens.GenerateToken(user.ID)
	if err != nil {
		h.serverError(c, err, "Failed to generate token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created for " + user.Username + ".",
		"user":    user,
		"token":   token,
	})
}

// --- Login ---

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login is the handler for POST /v1/login
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var userID int64
	var password models.Password
	err := h.DB.QueryRowContext(c, "SELECT id, password_hash FROM users WHERE username = ?", input.Username).
		Scan(&userID, &password.Hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		h.serverError(c, err, "Failed to look up user")
		return
	}

	match, err := password.Matches(input.Password)
	if err != nil {
		h.serverError(c, err, "Failed to verify password")
		return
	}
	if !match {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	token, err := h.Tokens.GenerateToken(userID)
	if err != nil {
		h.serverError(c, err, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// --- Profile ---

func (h *Handlers) loadUser(c *gin.Context, q Querier, userID int64) (*models.User, *models.Profile, error) {
	var u models.User
	var p models.Profile
	err := q.QueryRowContext(c, `
		SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.password_hash, u.role, u.created_at, u.updated_at,
		       p.user_id, p.first_name, p.last_name, p.address, p.phone_number, p.preferences
		FROM users u
		JOIN profiles p ON p.user_id = u.id
		WHERE u.id = ?`, userID).Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt,
		&p.UserID, &p.FirstName, &p.LastName, &p.Address, &p.PhoneNumber, &p.Preferences,
	)
	if err != nil {
		return nil, nil, err
	}
	return &u, &p, nil
}

// GetProfile is the handler for GET /v1/profile
func (h *Handlers) GetProfile(c *gin.Context) {
	user, profile, err := h.loadUser(c, h.DB, currentUserID(c))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		h.serverError(c, err, "Failed to load profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "profile": profile})
}

type UpdateProfileInput struct {
	Username    string `json:"username" binding:"required,max=150"`
	Email       string `json:"email" binding:"required,email"`
	FirstName   string `json:"firstName" binding:"required,max=30"`
	LastName    string `json:"lastName" binding:"required,max=30"`
	Address     string `json:"address" binding:"max=255"`
	PhoneNumber string `json:"phoneNumber" binding:"max=15"`
	Preferences string `json:"preferences" binding:"max=100"`
}

// UpdateProfile is the handler for PUT /v1/profile.
// The profile's names always mirror the user's names.
func (h *Handlers) UpdateProfile(c *gin.Context) {
	userID := currentUserID(c)

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.DB.BeginTx(c, nil)
	if err != nil {
		h.serverError(c, err, "Failed to start transaction")
		return
	}
	defer tx.Rollback()

	var taken int
	if err := tx.QueryRowContext(c, "SELECT COUNT(*) FROM users WHERE username = ? AND id <> ?", input.Username, userID).Scan(&taken); err != nil {
		h.serverError(c, err, "Failed to check username")
		return
	}
	if taken > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "A user with that username already exists."})
		return
	}

	if _, err := tx.ExecContext(c, `
		UPDATE users SET username = ?, email = ?, first_name = ?, last_name = ?, updated_at = ?
		WHERE id = ?`,
		input.Username, input.Email, input.FirstName, input.LastName, time.Now(), userID); err != nil {
		h.serverError(c, err, "Failed to update user")
		return
	}

	result, err := tx.ExecContext(c, `
		UPDATE profiles SET first_name = ?, last_name = ?, address = ?, phone_number = ?, preferences = ?
		WHERE user_id = ?`,
		input.FirstName, input.LastName, input.Address, input.PhoneNumber, input.Preferences, userID)
	if err != nil {
		h.serverError(c, err, "Failed to update profile")
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	user, profile, err := h.loadUser(c, tx, userID)
	if err != nil {
		h.serverError(c, err, "Failed to reload profile")
		return
	}

	if err := tx.Commit(); err != nil {
		h.serverError(c, err, "Failed to commit profile update")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Your profile has been updated successfully!",
		"user":    user,
		"profile": profile,
	})
}

type ChangePasswordInput struct {
	OldPassword     string `json:"oldPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// ChangePassword is the handler for POST /v1/profile/password
func (h *Handlers) ChangePassword(c *gin.Context) {
	userID := currentUserID(c)

	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, _, err := h.loadUser(c, h.DB, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.serverError(c, err, "Failed to load user")
		return
	}

	current := models.Password{Hash: user.PasswordHash}
	match, err := current.Matches(input.OldPassword)
	if err != nil {
		h.serverError(c, err, "Failed to verify password")
		return
	}
	if !match {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your old password was entered incorrectly."})
		return
	}
	if input.NewPassword != input.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The two password fields must match."})
		return
	}
	if err := models.ValidatePassword(input.NewPassword, user.Username, user.Email, user.FirstName, user.LastName); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var next models.Password
	if err := next.Set(input.NewPassword); err != nil {
		h.serverError(c, err, "Failed to hash password")
		return
	}
	if _, err := h.DB.ExecContext(c, "UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?", next.Hash, time.Now(), userID); err != nil {
		h.serverError(c, err, "Failed to update password")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Your password has been successfully updated."})
}

// DeleteProfile is the handler for DELETE /v1/profile.
// It removes the account together with its sales, transactions and profile.
func (h *Handlers) DeleteProfile(c *gin.Context) {
	if err := h.Sales.RemoveMember(c.Request.Context(), currentUserID(c)); err != nil {
		h.respondSalesError(c, err, "Failed to delete profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Your profile has been deleted successfully."})
}
