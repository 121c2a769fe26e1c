// Package models defines the records persisted by the user directory.
package models

import "time"

// Roles a user may carry. Only stored, never enforced.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account in the directory. Password always holds a hash.
// ResetPasswordToken and ResetPasswordExpires are either both set or both
// nil; use SetResetToken and ClearResetToken to change them.
type User struct {
	ID                   string     `db:"id" bson:"_id"`
	FirstName            string     `db:"first_name" bson:"firstName"`
	LastName             string     `db:"last_name" bson:"lastName"`
	Email                string     `db:"email" bson:"email"`
	Role                 string     `db:"role" bson:"role"`
	Password             string     `db:"password" bson:"password"`
	Avatar               *string    `db:"avatar" bson:"avatar,omitempty"`
	ResetPasswordToken   *string    `db:"reset_password_token" bson:"resetPasswordToken,omitempty"`
	ResetPasswordExpires *time.Time `db:"reset_password_expires" bson:"resetPasswordExpires,omitempty"`
	CreatedAt            time.Time  `db:"created_at" bson:"createdAt"`
	UpdatedAt            time.Time  `db:"updated_at" bson:"updatedAt"`
}

// SetResetToken arms a password reset.
func (u *User) SetResetToken(token string, expires time.Time) {
	u.ResetPasswordToken = &token
	u.ResetPasswordExpires = &expires
}

// ClearResetToken disarms any pending reset.
func (u *User) ClearResetToken() {
	u.ResetPasswordToken = nil
	u.ResetPasswordExpires = nil
}

// HasValidReset reports whether token matches the pending reset and its
// expiry is strictly after now.
func (u *User) HasValidReset(token string, now time.Time) bool {
	if u.ResetPasswordToken == nil || u.ResetPasswordExpires == nil {
		return false
	}
	return *u.ResetPasswordToken == token && u.ResetPasswordExpires.After(now)
}

// ResetState captures the reset fields so they can be restored later.
type ResetState struct {
	Token   *string
	Expires *time.Time
}

// ResetState returns a copy of the current reset fields.
func (u *User) ResetState() ResetState {
	s := ResetState{}
	if u.ResetPasswordToken != nil {
		t := *u.ResetPasswordToken
		s.Token = &t
	}
	if u.ResetPasswordExpires != nil {
		e := *u.ResetPasswordExpires
		s.Expires = &e
	}
	return s
}

// RestoreReset puts back reset fields captured by ResetState.
func (u *User) RestoreReset(s ResetState) {
	if s.Token == nil || s.Expires == nil {
		u.ClearResetToken()
		return
	}
	u.SetResetToken(*s.Token, *s.Expires)
}

// Clone returns a deep copy, so stored records are never aliased by callers.
func (u *User) Clone() *User {
	c := *u
	if u.Avatar != nil {
		a := *u.Avatar
		c.Avatar = &a
	}
	s := u.ResetState()
	c.ResetPasswordToken, c.ResetPasswordExpires = s.Token, s.Expires
	return &c
}

// PublicUser is the view of a user safe to return to clients.
type PublicUser struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Avatar    *string   `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public strips credentials and reset state.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}
