package api

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sholas-io/onboard/pkg/models"
	"github.com/sholas-io/onboard/pkg/repository"
	"golang.org/x/crypto/bcrypt"
)

// AdminUserID identifies the synthesized admin principal. The admin account
// is a single configured credential pair, not a row in the user table.
const AdminUserID = "admin-1"

type AuthHandler struct {
	userRepo      repository.UserRepo
	profileRepo   repository.ProfileRepo
	adminEmail    string
	adminPassword string
	jwtSecret     string
	tokenDuration time.Duration
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(ur repository.UserRepo, pr repository.ProfileRepo, adminEmail, adminPassword, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{
		userRepo:      ur,
		profileRepo:   pr,
		adminEmail:    adminEmail,
		adminPassword: adminPassword,
		jwtSecret:     jwtSecret,
		tokenDuration: tokenDuration,
	}
}

type registerRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Phone    string      `json:"phone,omitempty"`
	Role     models.Role `json:"role,omitempty"`
}

type loginRequest struct {
	Identifier string      `json:"identifier"`
	Password   string      `json:"password"`
	Role       models.Role `json:"role"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user,omitempty"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}
	if req.Role == "" {
		req.Role = models.RoleCandidate
	}
	if req.Role != models.RoleCandidate && req.Role != models.RoleWelder {
		http.Error(w, "Invalid role", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         req.Role,
		Created:      time.Now().UTC().UnixMilli(),
	}
	if err := h.userRepo.CreateUser(ctx, user); err != nil {
		writeDomainError(w, err)
		return
	}

	// Every account starts with an empty incomplete profile.
	profile := &models.Profile{
		UserID: user.ID,
		Kind:   models.KindForRole(user.Role),
		Status: models.StatusIncomplete,
	}
	if err := h.profileRepo.CreateProfile(ctx, profile); err != nil {
		// Roll the user back so a retry does not hit a duplicate email.
		_ = h.userRepo.DeleteUser(ctx, user.ID)
		http.Error(w, "Error creating profile", http.StatusInternalServerError)
		return
	}

	tokenStr, err := h.issueToken(user.ID, user.Email, user.Role)
	if err != nil {
		http.Error(w, "Error signing token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, authResponse{Token: tokenStr, User: user}, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Identifier == "" || req.Password == "" || !req.Role.Valid() {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}

	if req.Role == models.RoleAdmin {
		h.adminLogin(w, req)
		return
	}

	user, err := h.userRepo.GetUserByLogin(r.Context(), req.Identifier, req.Role)
	if err != nil || user == nil {
		http.Error(w, "Credentials not found", http.StatusUnauthorized)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		http.Error(w, "Credentials not found", http.StatusUnauthorized)
		return
	}

	tokenStr, err := h.issueToken(user.ID, user.Email, user.Role)
	if err != nil {
		http.Error(w, "Error signing token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, authResponse{Token: tokenStr, User: user}, http.StatusOK)
}

// adminLogin accepts only the single configured credential pair and
// synthesizes an admin identity. Any mismatch is a plain 401.
func (h *AuthHandler) adminLogin(w http.ResponseWriter, req loginRequest) {
	emailOK := subtle.ConstantTimeCompare([]byte(req.Identifier), []byte(h.adminEmail)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.adminPassword)) == 1
	if !emailOK || !passOK {
		http.Error(w, "Credentials not found", http.StatusUnauthorized)
		return
	}

	tokenStr, err := h.issueToken(AdminUserID, h.adminEmail, models.RoleAdmin)
	if err != nil {
		http.Error(w, "Error signing token", http.StatusInternalServerError)
		return
	}

	admin := &models.User{ID: AdminUserID, Email: h.adminEmail, Role: models.RoleAdmin}
	writeJSON(w, authResponse{Token: tokenStr, User: admin}, http.StatusOK)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// For stateless JWT, logout is client-side (just delete token)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, `{"message":"logged out"}`)
}

// Me returns the authenticated identity; clients use it to restore a session
// from a stored token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if p.Role == models.RoleAdmin {
		writeJSON(w, &models.User{ID: p.UserID, Email: p.Email, Role: p.Role}, http.StatusOK)
		return
	}

	user, err := h.userRepo.GetUserByID(r.Context(), p.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, user, http.StatusOK)
}

func (h *AuthHandler) issueToken(userID, email string, role models.Role) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  string(role),
		"exp":   time.Now().Add(h.tokenDuration).Unix(),
	})
	return token.SignedString([]byte(h.jwtSecret))
}
