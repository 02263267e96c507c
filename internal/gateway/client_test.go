package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogin_ParsesUserData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Device-ID"))

		var req LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a@x.com", req.Email)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"id": 1, "username": "a", "email": "a@x.com", "token": "tok123",
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	data, err := client.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "secret"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), data.ID)
	assert.Equal(t, "tok123", data.Token)
}

func TestLogin_SuccessFalseBecomesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "Invalid credentials",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "wrong"})

	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
}

func TestDo_NonSuccessStatusKeepsServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "Email already registered",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.Register(context.Background(), RegisterRequest{Email: "a@x.com"})

	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "Email already registered", apiErr.Message)
}

func TestDo_TransportFailureBecomesNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient(server.URL, time.Second)
	_, err := client.Categories(context.Background())

	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestCategories_ParsesWireNames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/kategori", r.URL.Path)
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"id": 1, "nama": "Plastik", "deskripsi": "Botol"},
			{"id": 2, "nama": "Elektronik"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	categories, err := client.Categories(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []CategoryResponse{
		{ID: 1, Name: "Plastik", Description: "Botol"},
		{ID: 2, Name: "Elektronik"},
	}, categories)
}

func TestWasteTypesByCategory_BuildsPathAndParses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jenis/category/5", r.URL.Path)
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"id": 10, "namaJenis": "Battery", "kategoriId": 5},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	types, err := client.WasteTypesByCategory(context.Background(), 5)
	assert.NoError(t, err)
	assert.Equal(t, []WasteTypeResponse{{ID: 10, Name: "Battery", CategoryID: 5}}, types)
}

func TestProfile_SendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"id": 1, "username": "a", "email": "a@x.com"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	data, err := client.Profile(context.Background(), "tok123")
	assert.NoError(t, err)
	assert.Equal(t, "a", data.Username)
}

func TestUpdateProfile_WithoutPhotoSendsJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var fields ProfileUpdate
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&fields))
		assert.Equal(t, "Alice", fields.Name)

		json.NewEncoder(w).Encode(BaseResponse{Success: true, Message: "Profile updated"})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	resp, err := client.UpdateProfile(context.Background(), "tok123", ProfileUpdate{Name: "Alice"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, "Profile updated", resp.Message)
}

func TestUpdateProfile_WithPhotoSendsMultipart(t *testing.T) {
	photo := []byte{0xFF, 0xD8, 0xFF}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))
		assert.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "Alice", r.FormValue("name"))
		assert.Equal(t, "0812", r.FormValue("phoneNumber"))
		assert.Empty(t, r.FormValue("address"))

		file, header, err := r.FormFile("photo")
		assert.NoError(t, err)
		defer file.Close()
		assert.Contains(t, header.Filename, "photo_")

		buf, err := io.ReadAll(file)
		assert.NoError(t, err)
		assert.Equal(t, photo, buf)

		json.NewEncoder(w).Encode(BaseResponse{Success: true, Message: "Profile updated"})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	resp, err := client.UpdateProfile(context.Background(), "tok123",
		ProfileUpdate{Name: "Alice", PhoneNumber: "0812"}, photo)
	assert.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestLogout_SendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/logout", r.URL.Path)
		assert.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(BaseResponse{Success: true, Message: "Logged out"})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	resp, err := client.Logout(context.Background(), "tok123")
	assert.NoError(t, err)
	assert.True(t, resp.Success)
}
