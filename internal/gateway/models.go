package gateway

// Wire models for the e-waste backend. JSON field names follow the backend
// contract, including the Indonesian catalog endpoints (kategori/jenis).

type BaseResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type OTPRequest struct {
	Code string `json:"code"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OtpCode     string `json:"otpCode"`
	NewPassword string `json:"newPassword"`
}

type UpdatePasswordRequest struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// UserData is returned by /login and /profile. Token is only present on
// login; the profile fields are optional on both.
type UserData struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Token       string `json:"token,omitempty"`
	Name        string `json:"name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Address     string `json:"address,omitempty"`
	BirthDate   string `json:"birth_date,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

type UserResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    UserData `json:"data"`
}

// ProfileUpdate carries the editable profile fields for /update-profile.
// Empty fields are omitted from the request.
type ProfileUpdate struct {
	Name        string `json:"name,omitempty"`
	Address     string `json:"address,omitempty"`
	BirthDate   string `json:"birthDate,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

type CategoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"nama"`
	Description string `json:"deskripsi,omitempty"`
}

type WasteTypeResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"namaJenis"`
	CategoryID int64  `json:"kategoriId"`
}
