package identity

import (
	"encoding/json"
	"time"
)

// ============================================================================
// Response Envelope
// ============================================================================

// envelope is the JSON envelope every service response is wrapped in.
type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Message    string          `json:"message,omitempty"`
	Error      *apiError       `json:"error,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

// apiError is the server-side error shape inside the envelope.
type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Pagination describes the page window of a list response.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ============================================================================
// User Types
// ============================================================================

// User is the identity record owned by the service. The client holds a
// cached copy, replaced wholesale on every successful fetch or update.
type User struct {
	ID          string          `json:"id"`
	Email       string          `json:"email"`
	DisplayName string          `json:"displayName,omitempty"`
	PhotoURL    string          `json:"photoURL,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	Role        Role            `json:"role"`
	Permissions []Permission    `json:"permissions,omitempty"`
	IsActive    bool            `json:"isActive"`
	Metadata    UserMetadata    `json:"metadata"`
	Preferences UserPreferences `json:"preferences"`
	CustomData  map[string]any  `json:"customData,omitempty"`
}

// UserMetadata carries server-maintained account bookkeeping.
type UserMetadata struct {
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
	LoginCount    int        `json:"loginCount"`
	EmailVerified bool       `json:"emailVerified"`
	PhoneVerified bool       `json:"phoneVerified"`
}

// UserPreferences holds per-user settings.
type UserPreferences struct {
	Language      string                  `json:"language,omitempty"`
	Timezone      string                  `json:"timezone,omitempty"`
	Notifications NotificationPreferences `json:"notifications"`
}

// NotificationPreferences toggles notification channels.
type NotificationPreferences struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
	SMS   bool `json:"sms"`
}

// HasPermission reports whether the user holds the given permission.
// Membership only; permissions have no hierarchy.
func (u *User) HasPermission(p Permission) bool {
	for _, have := range u.Permissions {
		if have == p {
			return true
		}
	}
	return false
}

// ============================================================================
// Request Types
// ============================================================================

// RegisterData is the input to Register. Validated client-side before any
// network call.
type RegisterData struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// ProfileUpdate is a partial profile change. Nil fields are omitted from
// the request; the server's response is the new canonical User.
type ProfileUpdate struct {
	DisplayName *string          `json:"displayName,omitempty"`
	PhotoURL    *string          `json:"photoURL,omitempty"`
	Phone       *string          `json:"phone,omitempty"`
	Preferences *UserPreferences `json:"preferences,omitempty"`
	CustomData  map[string]any   `json:"customData,omitempty"`
}

// UserUpdate is the admin variant of ProfileUpdate; it can additionally
// activate or deactivate the account.
type UserUpdate struct {
	ProfileUpdate
	IsActive *bool `json:"isActive,omitempty"`
}

// UserFilters narrows GetUsers results. Zero values mean "no filter".
type UserFilters struct {
	Role     Role
	IsActive *bool
	Search   string
}

// ============================================================================
// Auth Payloads
// ============================================================================

// authPayload is the data member of register/login/firebase responses.
type authPayload struct {
	User         User   `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// refreshPayload is the data member of a refresh response. The service may
// rotate the refresh token; when absent the stored one remains valid.
type refreshPayload struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// ============================================================================
// List and Stats Types
// ============================================================================

// UserList is one page of users. Replaced wholesale per fetch; there is no
// incremental merge.
type UserList struct {
	Items      []User
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// UserStats is the aggregate view behind the statistics dashboard.
type UserStats struct {
	TotalUsers       int            `json:"totalUsers"`
	ActiveUsers      int            `json:"activeUsers"`
	InactiveUsers    int            `json:"inactiveUsers"`
	VerifiedUsers    int            `json:"verifiedUsers"`
	ByRole           map[string]int `json:"byRole"`
	NewUsersToday    int            `json:"newUsersToday"`
	NewUsersThisWeek int            `json:"newUsersThisWeek"`
}

// HealthStatus is the response of the service liveness endpoint.
type HealthStatus struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime,omitempty"`
	Version string `json:"version,omitempty"`
}
