package model

import "time"

type SubscriptionTier string

const (
	TierFree SubscriptionTier = "free"
	TierPro  SubscriptionTier = "pro"
)

// GuestUserID scopes history recorded without an authenticated identity.
const GuestUserID = "guest"

type QuizUsage struct {
	Count   int       `json:"count"`
	ResetAt time.Time `json:"resetAt"`
}

type User struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Email              string           `json:"email"`
	Avatar             string           `json:"avatar"`
	CreatedAt          time.Time        `json:"createdAt"`
	SubscriptionTier   SubscriptionTier `json:"subscriptionTier,omitempty"`
	SubscriptionExpiry *time.Time       `json:"subscriptionExpiry,omitempty"`
	QuizUsage          *QuizUsage       `json:"quizUsage,omitempty"`
}

func (u *User) IsPro() bool {
	return u != nil && u.SubscriptionTier == TierPro
}

// Clone returns a deep copy so session state never aliases stored records.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.SubscriptionExpiry != nil {
		exp := *u.SubscriptionExpiry
		c.SubscriptionExpiry = &exp
	}
	if u.QuizUsage != nil {
		usage := *u.QuizUsage
		c.QuizUsage = &usage
	}
	return &c
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// UpgradePlan is a purchasable pro subscription length.
type UpgradePlan string

const (
	PlanMonthly  UpgradePlan = "monthly"
	PlanAnnually UpgradePlan = "annually"
)

func (p UpgradePlan) Duration() time.Duration {
	if p == PlanAnnually {
		return 365 * 24 * time.Hour
	}
	return 30 * 24 * time.Hour
}

func (p UpgradePlan) Valid() bool {
	return p == PlanMonthly || p == PlanAnnually
}
