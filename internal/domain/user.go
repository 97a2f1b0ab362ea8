package domain

import "time"

// User roles.
const (
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// User account statuses. Teachers start as pending until an admin acts.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type User struct {
	UserID    string    `json:"id" dynamodbav:"user_id"`
	Name      string    `json:"name" dynamodbav:"name"`
	Email     string    `json:"email" dynamodbav:"email"`
	Role      string    `json:"role" dynamodbav:"role"`
	Status    string    `json:"status" dynamodbav:"status"`
	FCMToken  string    `json:"fcm_token,omitempty" dynamodbav:"fcm_token"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,oneof=teacher admin student"`
	FCMToken string `json:"fcm_token"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

type RegisterPushTokenRequest struct {
	FCMToken string `json:"fcm_token" validate:"required"`
}
