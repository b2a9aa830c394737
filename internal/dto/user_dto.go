package dto

type CreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	// ReferralCode is another user's code; when valid it links the new
	// user's referred_by to that user.
	ReferralCode string `json:"referral_code,omitempty"`
}

type UpdateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

type PatchUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

type LinkReferralRequest struct {
	ReferralCode string `json:"referral_code"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
}

type FriendshipStatusResponse struct {
	AreFriends bool `json:"are_friends"`
}

type ReferralStatsResponse struct {
	TotalReferrals int64  `json:"total_referrals"`
	ReferralCode   string `json:"referral_code"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
