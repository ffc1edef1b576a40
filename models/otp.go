package models

import "time"

// OTPPurpose says what an OTP authorizes
type OTPPurpose string

const (
	OTPPurposePasswordReset     OTPPurpose = "password_reset"
	OTPPurposeEmailVerification OTPPurpose = "email_verification"
)

// OTP is a short-lived one-time password record. The store removes the
// record automatically once TTL passes, independent of application logic.
type OTP struct {
	ID        string     `json:"id" dynamodbav:"id"`
	Email     string     `json:"email" dynamodbav:"email"`
	Code      string     `json:"-" dynamodbav:"otp"` // 6-digit numeric string
	Purpose   OTPPurpose `json:"purpose" dynamodbav:"purpose"`
	ExpiresAt time.Time  `json:"expires_at" dynamodbav:"expires_at"`
	IsUsed    bool       `json:"is_used" dynamodbav:"is_used"`
	Attempts  int        `json:"attempts" dynamodbav:"attempts"`
	CreatedAt time.Time  `json:"created_at" dynamodbav:"created_at"`

	// DynamoDB TTL attribute, epoch seconds
	TTL int64 `json:"-" dynamodbav:"ttl"`
}

// MaxOTPAttempts is the default verification attempt budget per record,
// used when no budget is configured.
const MaxOTPAttempts = 3

// IsValid reports whether the record can still authorize its purpose under
// the given attempt budget.
func (o *OTP) IsValid(now time.Time, maxAttempts int) bool {
	return !o.IsUsed && o.ExpiresAt.After(now) && o.Attempts < maxAttempts
}
