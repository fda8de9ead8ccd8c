package dto

import "time"

// --- Auth ---

type RegisterRequest struct {
	CompanyName string `json:"company_name" validate:"required,min=2,max=100"`
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	Phone       string `json:"phone" validate:"omitempty,max=30"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID         string `json:"id"`
	CompanyID  string `json:"company_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
}

type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

type InviteMemberRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,is-user-role"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

type RequestPasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// --- Subscription / billing ---

type PlanResponse struct {
	Name         string  `json:"name"`
	Tier         int     `json:"tier"`
	PriceMonthly float64 `json:"price_monthly"`
	PriceYearly  float64 `json:"price_yearly"`
	MaxProjects  int     `json:"max_projects"`
	MaxUsers     int     `json:"max_users"`
	MaxStorageMB int     `json:"max_storage_mb"`
	MaxAPIRate   int     `json:"max_api_rate"`
}

type SubscriptionResponse struct {
	PlanName      string    `json:"plan_name"`
	Status        string    `json:"status"`
	TrialEnd      time.Time `json:"trial_end"`
	DaysRemaining int       `json:"days_remaining"`
	MaxProjects   int       `json:"max_projects"`
	MaxUsers      int       `json:"max_users"`
	MaxStorageMB  int       `json:"max_storage_mb"`
	MaxAPIRate    int       `json:"max_api_rate"`
	ProjectsUsed  int       `json:"projects_used"`
	StorageUsedMB int       `json:"storage_used_mb"`
}

type CheckoutRequest struct {
	PlanName string `json:"plan_name" validate:"required"`
	Cycle    string `json:"cycle" validate:"required,is-billing-cycle"`
}

type CheckoutResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

type PaymentResponse struct {
	ID       string     `json:"id"`
	PlanName string     `json:"plan_name"`
	Cycle    string     `json:"cycle"`
	Amount   float64    `json:"amount"`
	Currency string     `json:"currency"`
	Status   string     `json:"status"`
	PaidAt   *time.Time `json:"paid_at,omitempty"`
}

type PlatformStatsResponse struct {
	Total   int64 `json:"total"`
	Trial   int64 `json:"trial"`
	Active  int64 `json:"active"`
	PastDue int64 `json:"past_due"`
	Expired int64 `json:"expired"`
}

// --- Projects ---

type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=200"`
	ClientName  string `json:"client_name" validate:"omitempty,max=200"`
	ClientEmail string `json:"client_email" validate:"omitempty,email"`
	Address     string `json:"address" validate:"omitempty,max=300"`
	Notes       string `json:"notes" validate:"omitempty,max=2000"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=200"`
	ClientName  *string `json:"client_name" validate:"omitempty,max=200"`
	ClientEmail *string `json:"client_email" validate:"omitempty,email"`
	Address     *string `json:"address" validate:"omitempty,max=300"`
	Notes       *string `json:"notes" validate:"omitempty,max=2000"`
}

type ProjectResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ClientName  string    `json:"client_name,omitempty"`
	ClientEmail string    `json:"client_email,omitempty"`
	Address     string    `json:"address,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// --- Analysis ---

type RoomResponse struct {
	ID                string             `json:"id"`
	Seq               int                `json:"seq"`
	Name              string             `json:"name"`
	RoomType          string             `json:"room_type"`
	WallSurfaceM2     float64            `json:"walls_surface_m2"`
	CeilingAreaM2     float64            `json:"area_m2"`
	WallTreatments    TreatmentSelection `json:"wall_treatments"`
	CeilingTreatments TreatmentSelection `json:"ceiling_treatments"`
}

type TreatmentSelection struct {
	Prep          bool `json:"prep"`
	Primer        bool `json:"primer"`
	PaintOneCoat  bool `json:"paint_one_coat"`
	PaintTwoCoats bool `json:"paint_two_coats"`
}

type AnalysisResponse struct {
	ID          string         `json:"id"`
	ProjectID   string         `json:"project_id"`
	FloorPlanID string         `json:"floor_plan_id"`
	Status      string         `json:"status"`
	Model       string         `json:"model,omitempty"`
	RoomCount   int            `json:"room_count"`
	ErrorText   string         `json:"error_text,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Rooms       []RoomResponse `json:"rooms,omitempty"`
}

type UpdateTreatmentsRequest struct {
	WallTreatments    *TreatmentSelection `json:"wall_treatments"`
	CeilingTreatments *TreatmentSelection `json:"ceiling_treatments"`
}

// --- Quotes ---

type QuoteLineResponse struct {
	RoomName    string  `json:"room_name"`
	Description string  `json:"description"`
	AreaM2      float64 `json:"area_m2"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

type QuoteResponse struct {
	ID        string              `json:"id"`
	ProjectID string              `json:"project_id"`
	Number    string              `json:"number"`
	Status    string              `json:"status"`
	Subtotal  float64             `json:"subtotal"`
	VATAmount float64             `json:"vat_amount"`
	Total     float64             `json:"total"`
	Currency  string              `json:"currency"`
	SentAt    *time.Time          `json:"sent_at,omitempty"`
	Lines     []QuoteLineResponse `json:"lines"`
}

type SendQuoteRequest struct {
	// Кому отправить; пустое значение означает email клиента проекта
	RecipientEmail string `json:"recipient_email" validate:"omitempty,email"`
	Message        string `json:"message" validate:"omitempty,max=2000"`
}

// --- Uploads ---

type FloorPlanResponse struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	OriginalName string    `json:"original_name"`
	URL          string    `json:"url"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
}
