package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/rencard-user/internal/domain/auth"
	"github.com/yanqian/rencard-user/internal/domain/profile"
	"github.com/yanqian/rencard-user/internal/domain/user"
)

// DemographicsUpdater edits phone, sex and birth date of an account.
type DemographicsUpdater interface {
	UpdateDemographics(ctx context.Context, id string, d user.Demographics) error
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	authSvc    auth.Service
	users      DemographicsUpdater
	profileSvc profile.Service
	cookies    CookieConfig
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(authSvc auth.Service, users DemographicsUpdater, profileSvc profile.Service, cookies CookieConfig, logger *slog.Logger) *Handler {
	return &Handler{
		authSvc:    authSvc,
		users:      users,
		profileSvc: profileSvc,
		cookies:    cookies,
		logger:     logger.With("component", "http.handler"),
	}
}

type registerPayload struct {
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	PhoneNumber string   `json:"phoneNumber"`
	BirthDate   wireDate `json:"birthDate"`
	Sex         string   `json:"sex"`
	UseJWT      bool     `json:"useJwt"`
}

type demographicsPayload struct {
	BirthDate   wireDate `json:"birthDate"`
	Sex         string   `json:"sex"`
	PhoneNumber string   `json:"phoneNumber"`
}

type photoPayload struct {
	BlobURL string `json:"blobUrl"`
}

// Register creates an account and signs it in.
func (h *Handler) Register(c *gin.Context) {
	var req registerPayload
	if !h.bind(c, &req) {
		return
	}
	res, err := h.authSvc.Register(c.Request.Context(), auth.RegisterRequest{
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		BirthDate:   req.BirthDate.Time,
		Sex:         req.Sex,
		UseJWT:      req.UseJWT,
	})
	if err != nil {
		abortWithError(c, failure("register_failed", "registration failed", err))
		return
	}
	h.writeTokens(c, res, registerFailureStatus)
}

// Login verifies credentials and signs the user in.
func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if !h.bind(c, &req) {
		return
	}
	res, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, failure("login_failed", "login failed", err))
		return
	}
	h.writeTokens(c, res, unauthorizedStatus)
}

// Logout ends the caller's cookie session.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.authSvc.Logout(c.Request.Context()); err != nil {
		abortWithError(c, failure("logout_failed", "logout failed", err))
		return
	}
	clearSessionCookie(c, h.cookies)
	c.Status(http.StatusNoContent)
}

// RefreshToken exchanges a refresh token for a new token pair.
func (h *Handler) RefreshToken(c *gin.Context) {
	var req auth.RefreshRequest
	if !h.bind(c, &req) {
		return
	}
	res, err := h.authSvc.Refresh(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, failure("refresh_failed", "refresh failed", err))
		return
	}
	h.writeTokens(c, res, unauthorizedStatus)
}

// ChangePassword replaces the caller's password.
func (h *Handler) ChangePassword(c *gin.Context) {
	var req auth.ChangePasswordRequest
	if !h.bind(c, &req) {
		return
	}
	res, err := h.authSvc.ChangePassword(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, failure("change_password_failed", "password change failed", err))
		return
	}
	if !res.Success {
		writeErrors(c, badRequestStatus(res.Kind), res.Errors)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateDemographics edits phone number, sex and birth date.
func (h *Handler) UpdateDemographics(c *gin.Context) {
	callerID, ok := getCallerID(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "authentication required", nil))
		return
	}
	var req demographicsPayload
	if !h.bind(c, &req) {
		return
	}
	err := h.users.UpdateDemographics(c.Request.Context(), callerID, user.Demographics{
		BirthDate:   req.BirthDate.Time,
		Sex:         req.Sex,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		if dirErr, ok := auth.AsDirectoryError(err); ok {
			writeErrors(c, badRequestStatus(dirErr.Kind), dirErr.Messages)
			return
		}
		abortWithError(c, failure("update_failed", "update failed", err))
		return
	}
	c.Status(http.StatusOK)
}

// InitializeProfile creates any missing default profile section.
func (h *Handler) InitializeProfile(c *gin.Context) {
	callerID, ok := getCallerID(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "authentication required", nil))
		return
	}
	if err := h.profileSvc.Provision(c.Request.Context(), callerID); err != nil {
		abortWithError(c, failure("profile_failed", "profile initialization failed", err))
		return
	}
	c.JSON(http.StatusOK, "Profile initialized")
}

// GetProfile returns the caller's profile.
func (h *Handler) GetProfile(c *gin.Context) {
	callerID, ok := getCallerID(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "authentication required", nil))
		return
	}
	p, err := h.profileSvc.Get(c.Request.Context(), callerID)
	if err != nil {
		abortWithError(c, failure("profile_failed", "profile lookup failed", err))
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateProfile replaces about, location and preferences.
func (h *Handler) UpdateProfile(c *gin.Context) {
	callerID, ok := getCallerID(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "authentication required", nil))
		return
	}
	var req profile.UpdateRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.profileSvc.Update(c.Request.Context(), callerID, req); err != nil {
		h.writeProfileError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetPhoto records the caller's photo URL.
func (h *Handler) SetPhoto(c *gin.Context) {
	callerID, ok := getCallerID(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "authentication required", nil))
		return
	}
	var req photoPayload
	if !h.bind(c, &req) {
		return
	}
	photo, err := h.profileSvc.SetPhoto(c.Request.Context(), callerID, req.BlobURL)
	if err != nil {
		h.writeProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, photo)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return false
	}
	return true
}

func (h *Handler) writeTokens(c *gin.Context, res auth.Result, failureStatus func(auth.FailureKind) int) {
	if !res.Success {
		writeErrors(c, failureStatus(res.Kind), res.Errors)
		return
	}
	if res.Session != nil {
		setSessionCookie(c, h.cookies, *res.Session)
	}
	c.JSON(http.StatusOK, res.Tokens)
}

func (h *Handler) writeProfileError(c *gin.Context, err error) {
	var verr *profile.ValidationError
	if errors.As(err, &verr) {
		writeErrors(c, http.StatusBadRequest, verr.Messages)
		return
	}
	abortWithError(c, failure("profile_failed", "profile update failed", err))
}

func writeErrors(c *gin.Context, status int, errs []string) {
	c.JSON(status, gin.H{"errors": errs})
}

func registerFailureStatus(kind auth.FailureKind) int {
	if kind == auth.FailureConflict {
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

func unauthorizedStatus(auth.FailureKind) int {
	return http.StatusUnauthorized
}

func badRequestStatus(kind auth.FailureKind) int {
	if kind == auth.FailureAuthentication {
		return http.StatusUnauthorized
	}
	return http.StatusBadRequest
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
