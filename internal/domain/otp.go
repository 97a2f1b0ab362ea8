package domain

// EmailOtp is a one-time passcode bound to an email address.
// PK: email — one active code per address, a new request overwrites the old one.
// ExpiresAt is a Unix timestamp also used as DynamoDB TTL.
type EmailOtp struct {
	Email     string `json:"email" dynamodbav:"email"`
	Code      string `json:"code" dynamodbav:"code"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}
