package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rogerio-castellano/order-tracker/internal/auth"
	"github.com/rogerio-castellano/order-tracker/internal/models"
	"github.com/rogerio-castellano/order-tracker/internal/repo"
	"go.uber.org/zap"
)

func validCredentials(username, password string) bool {
	return len(username) >= 3 && len(password) >= 6
}

// issueTokens returns a fresh access token and a single-use refresh token.
func issueTokens(r *http.Request, user models.User) (LoginResult, error) {
	token, err := auth.GenerateToken(user)
	if err != nil {
		return LoginResult{}, err
	}
	refresh, err := refreshStore.Issue(r.Context(), user.ID)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, RefreshToken: refresh}, nil
}

// SignupHandler godoc
// @Summary Register a store with its first admin user and return tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param signup body SignupRequest true "Store and admin details"
// @Success 201 {object} RegisterResult
// @Failure 400 {string} string "Invalid input"
// @Failure 409 {string} string "User exists"
// @Router /auth/signup [post]
func SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	req.StoreName = strings.TrimSpace(req.StoreName)
	req.Contact = strings.TrimSpace(req.Contact)
	if req.StoreName == "" || req.Contact == "" || req.Username == "" || req.Password == "" {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}
	if !validCredentials(req.Username, req.Password) {
		http.Error(w, "username or password too short", http.StatusBadRequest)
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	name := req.Name
	if name == "" {
		name = req.Username
	}

	store, user, err := userRepo.RegisterStore(
		models.Store{
			Name:               req.StoreName,
			Address:            req.StoreAddress,
			LowStockThreshold:  models.DefaultLowStockThreshold,
			SalesLookbackDays:  models.DefaultSalesLookbackDays,
			ReorderHorizonDays: models.DefaultReorderHorizonDays,
			Currency:           models.DefaultCurrency,
		},
		models.Person{Name: name, Email: req.Email, Contact: req.Contact, PasswordHash: hashed},
		models.User{Username: req.Username, PasswordHash: hashed, Role: string(auth.RoleAdmin), Active: true},
	)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicatedValueUnique) {
			http.Error(w, "username or contact already exists", http.StatusConflict)
			return
		}
		writeError(w, err, "failed to register store")
		return
	}

	tokens, err := issueTokens(r, user)
	if err != nil {
		logger.Error("failed to issue tokens", zap.Int("user_id", user.ID), zap.Error(err))
		http.Error(w, "failed to generate token", http.StatusInternalServerError)
		return
	}

	logger.Info("store registered", zap.Int("store_id", store.ID), zap.Int("user_id", user.ID))
	respond(w, http.StatusCreated, RegisterResult{
		Message:      "store registered",
		StoreID:      store.ID,
		UserID:       user.ID,
		Token:        tokens.Token,
		RefreshToken: tokens.RefreshToken,
	})
}

// CreateStaffHandler godoc
// @Summary Create a user in the admin's store
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param user body StaffRequest true "User to create, role defaults to staff"
// @Success 201 {object} models.User
// @Failure 400 {string} string "Invalid input"
// @Failure 403 {string} string "Forbidden"
// @Failure 409 {string} string "User exists"
// @Failure 500 {string} string "Server error"
// @Router /admin/staff [post]
func CreateStaffHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	var req StaffRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	req.Contact = strings.TrimSpace(req.Contact)
	if req.Username == "" || req.Password == "" || req.Contact == "" {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}
	if !validCredentials(req.Username, req.Password) {
		http.Error(w, "username or password too short", http.StatusBadRequest)
		return
	}

	role := auth.RoleStaff
	if req.Role != "" {
		role = auth.Role(strings.ToLower(req.Role))
	}
	if role != auth.RoleStaff && role != auth.RoleAdmin {
		http.Error(w, "role must be 'staff' or 'admin'", http.StatusBadRequest)
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}

	name := req.Name
	if name == "" {
		name = req.Username
	}

	user, err := userRepo.CreateUser(
		models.Person{Name: name, Email: req.Email, Contact: req.Contact, PasswordHash: hashedPassword},
		models.User{
			StoreID:      caller.StoreID,
			Username:     req.Username,
			PasswordHash: hashedPassword,
			Role:         string(role),
			Active:       true,
		},
	)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicatedValueUnique) {
			http.Error(w, "could not create user: username or contact duplicated", http.StatusConflict)
			return
		}
		writeError(w, err, "Error creating user")
		return
	}

	respond(w, http.StatusCreated, user)
}

// LoginHandler godoc
// @Summary Authenticate user and return JWT tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body UserLogin true "username and password"
// @Success 200 {object} LoginResult
// @Failure 400 {string} string "Invalid input"
// @Failure 401 {string} string "Unauthorized"
// @Router /auth/login [post]
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var credentials UserLogin
	if err := readJSON(w, r, &credentials); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	user, err := userRepo.GetByUsername(credentials.Username)
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	if !user.Active || !auth.CheckPassword(user.PasswordHash, credentials.Password) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	tokens, err := issueTokens(r, user)
	if err != nil {
		logger.Error("failed to issue tokens", zap.Int("user_id", user.ID), zap.Error(err))
		http.Error(w, "could not generate token", http.StatusInternalServerError)
		return
	}

	respond(w, http.StatusOK, tokens)
}

// RefreshHandler godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param refresh body RefreshRequest true "Refresh token"
// @Success 200 {object} LoginResult
// @Failure 400 {string} string "Invalid input"
// @Failure 401 {string} string "Unauthorized"
// @Router /auth/refresh [post]
func RefreshHandler(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := readJSON(w, r, &req); err != nil || req.RefreshToken == "" {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	userID, err := refreshStore.Consume(r.Context(), req.RefreshToken)
	if err != nil {
		if !errors.Is(err, auth.ErrRefreshTokenNotFound) {
			logger.Error("could not consume refresh token", zap.Error(err))
		}
		http.Error(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}

	user, err := userRepo.GetByID(userID)
	if err != nil || !user.Active {
		http.Error(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}

	tokens, err := issueTokens(r, user)
	if err != nil {
		logger.Error("failed to issue tokens", zap.Int("user_id", user.ID), zap.Error(err))
		http.Error(w, "could not generate token", http.StatusInternalServerError)
		return
	}

	respond(w, http.StatusOK, tokens)
}
