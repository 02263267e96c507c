package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 60 * time.Second

// NetworkError covers transport failures, timeouts and undecodable bodies.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("network error: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// APIError covers responses the backend answered but rejected: a non-2xx
// status, or a 2xx body with success=false. Message holds the server
// message when one was decodable.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api error: status %d", e.Status)
}

// Client is the stateless HTTP mapping to the e-waste backend. It holds no
// session state; callers pass the bearer token where an endpoint needs one.
type Client struct {
	baseURL    string
	deviceID   string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		deviceID:   uuid.NewString(),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Device-ID", c.deviceID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// do executes the request and decodes a 2xx body into out. Non-2xx bodies
// are probed for a {success,message} envelope so the server message
// survives into the APIError.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope BaseResponse
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return &APIError{Status: resp.StatusCode, Message: envelope.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Err: err}
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path, token string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return &NetworkError{Err: err}
		}
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, token, &buf)
	if err != nil {
		return &NetworkError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path, token string, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return &NetworkError{Err: err}
	}
	return c.do(req, out)
}

// checkEnvelope turns a decoded success=false body into an APIError.
func checkEnvelope(resp *BaseResponse) error {
	if !resp.Success {
		return &APIError{Status: http.StatusOK, Message: resp.Message}
	}
	return nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*BaseResponse, error) {
	var resp BaseResponse
	if err := c.postJSON(ctx, "/register", "", req, &resp); err != nil {
		return nil, err
	}
	if err := checkEnvelope(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*UserData, error) {
	var resp UserResponse
	if err := c.postJSON(ctx, "/login", "", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Status: http.StatusOK, Message: resp.Message}
	}
	return &resp.Data, nil
}

func (c *Client) VerifyOTP(ctx context.Context, code string) (*BaseResponse, error) {
	var resp BaseResponse
	if err := c.postJSON(ctx, "/verify-otp", "", OTPRequest{Code: code}, &resp); err != nil {
		return nil, err
	}
	if err := checkEnvelope(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) (*BaseResponse, error) {
	var resp BaseResponse
	if err := c.postJSON(ctx, "/forgot-password", "", ForgotPasswordRequest{Email: email}, &resp); err != nil {
		return nil, err
	}
	if err := checkEnvelope(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*BaseResponse, error) {
	var resp BaseResponse
	if err := c.postJSON(ctx, "/reset-password", "", req, &resp); err != nil {
		return nil, err
	}
	if err := checkEnvelope(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdatePassword(ctx context.Context, token string, req UpdatePasswordRequest) (*BaseResponse, error) {
	var resp BaseResponse
	if err := c.postJSON(ctx, "/update-password", token, req, &resp); err != nil {
		return nil, err
	}
	if err := checkEnvelope(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Profile(ctx context.Context, token string) (*UserData, error) {
	var resp UserResponse
	if err := c.getJSON(ctx, "/profile", token, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Status: http.StatusOK, Message: resp.Message}
	}
	return &resp.Data, nil
}

// UpdateProfile sends the editable profile fields. With a photo attached the
// request goes out as multipart form data, otherwise as plain JSON.
func (c *Client) UpdateProfile(ctx context.Context, token string, fields ProfileUpdate, photo []byte) (*BaseResponse, error) {
	if photo == nil {
		var resp BaseResponse
		if err := c.postJSON(ctx, "/update-profile", token, fields, &resp); err != nil {
			return nil, err
		}
		if err := checkEnvelope(&resp); err != nil {
			return nil, err
		}
		return &resp, nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	parts := map[string]string{
		"name":        fields.Name,
		"address":     fields.Address,
		"birthDate":   fields.BirthDate,
		"phoneNumber": fields.PhoneNumber,
	}
	for field, value := range parts {
		if value == "" {
			continue
		}
		if err := w.WriteField(field, value); err != nil {
			return nil, &NetworkError{Err: err}
		}
	}
	part, err := w.CreateFormFile("photo", fmt.Sprintf("photo_%s.jpg", uuid.NewString()))
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	if _, err := part.Write(photo); err != nil {
		return nil, &NetworkError{Err: err}
	}
	if err := w.Close(); err != nil {
		return nil, &NetworkError{Err: err}
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/update-profile", token, &buf)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var resp BaseResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	if err := checkEnvelope(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Logout(ctx context.Context, token string) (*BaseResponse, error) {
	var resp BaseResponse
	if err := c.postJSON(ctx, "/logout", token, nil, &resp); err != nil {
		return nil, err
	}
	if err := checkEnvelope(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Categories(ctx context.Context) ([]CategoryResponse, error) {
	var out []CategoryResponse
	if err := c.getJSON(ctx, "/kategori", "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) WasteTypes(ctx context.Context) ([]WasteTypeResponse, error) {
	var out []WasteTypeResponse
	if err := c.getJSON(ctx, "/jenis", "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) WasteTypesByCategory(ctx context.Context, categoryID int64) ([]WasteTypeResponse, error) {
	var out []WasteTypeResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/jenis/category/%d", categoryID), "", &out); err != nil {
		return nil, err
	}
	return out, nil
}
