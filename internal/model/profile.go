package model

// UserProfile mirrors the identity provider's account. It is never written by BudgetBolt.
type UserProfile struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
}
