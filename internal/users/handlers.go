package users

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"natours/config"
	"natours/internal/apperr"
	"natours/internal/auth"
	"natours/internal/crud"
	"natours/internal/mail"
	"natours/internal/models"
	"natours/internal/repo"
	"natours/internal/storage"
)

const minPasswordLen = 8

type Handler struct {
	users   *repo.UserStore
	tokens  *auth.Manager
	mailer  mail.Sender
	images  storage.ImageStore // nil — загрузка изображений выключена
	cfg     *config.Config
	factory *crud.Factory[models.User] // админский CRUD
}

func New(db *gorm.DB, tokens *auth.Manager, mailer mail.Sender, images storage.ImageStore, cfg *config.Config) *Handler {
	return &Handler{
		users:   repo.NewUserStore(db),
		tokens:  tokens,
		mailer:  mailer,
		images:  images,
		cfg:     cfg,
		factory: crud.New[models.User](db, "user"),
	}
}

// Store отдаёт UserStore для auth-middleware.
func (h *Handler) Store() *repo.UserStore { return h.users }

// sendToken — общий финал login/signup/сброса: выпускаем JWT,
// ставим http-only cookie и отдаём токен с пользователем.
func (h *Handler) sendToken(w http.ResponseWriter, r *http.Request, status int, user *models.User) {
	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.cfg.JWT.CookieTTL),
		HttpOnly: true,
		Secure:   h.cfg.JWT.Secure,
	})
	models.WriteToken(w, status, token, map[string]any{"user": user})
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/v1/users/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, r, apperr.Validation("invalid request body: %v", err))
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		apperr.Write(w, r, apperr.Validation("a user must have a name and an email"))
		return
	}
	if len(req.Password) < minPasswordLen {
		apperr.Write(w, r, apperr.Validation("password must be at least %d characters", minPasswordLen))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		Role:         models.RoleUser, // роль через signup не назначается
		PasswordHash: hash,
		Active:       true,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		apperr.Write(w, r, err)
		return
	}
	h.sendToken(w, r, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/v1/users/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, r, apperr.Validation("invalid request body: %v", err))
		return
	}
	if req.Email == "" || req.Password == "" {
		apperr.Write(w, r, apperr.Validation("please provide email and password"))
		return
	}

	user, err := h.users.ByEmail(r.Context(), req.Email)
	// Неизвестная почта и неверный пароль неразличимы для клиента.
	if err != nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.Write(w, r, err)
			return
		}
		apperr.Write(w, r, apperr.Unauthenticated("incorrect email or password"))
		return
	}
	h.sendToken(w, r, http.StatusOK, user)
}

// GET /api/v1/users/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	models.WriteMessage(w, http.StatusOK, "success", "logged out")
}

// POST /api/v1/users/forgot-password
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		apperr.Write(w, r, apperr.Validation("please provide an email"))
		return
	}

	user, err := h.users.ByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.Write(w, r, apperr.NotFound("there is no user with this email"))
			return
		}
		apperr.Write(w, r, err)
		return
	}

	plain, hash, err := auth.NewResetToken()
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	// Срок всегда аддитивный: now + TTL.
	expires := time.Now().Add(h.cfg.App.ResetTokenTTL)
	if err := h.users.SetResetToken(r.Context(), user, hash, expires); err != nil {
		apperr.Write(w, r, err)
		return
	}

	resetURL := fmt.Sprintf("%s/api/v1/users/reset-password/%s", h.cfg.App.PublicURL, plain)
	msg := mail.ResetMessage(user.Email, resetURL, h.cfg.App.ResetTokenTTL)
	if err := h.mailer.Send(r.Context(), msg); err != nil {
		// Письмо не ушло — откатываем выданный токен.
		_ = h.users.ClearResetToken(r.Context(), user)
		apperr.Write(w, r, apperr.Delivery("there was an error sending email, please try again later", err))
		return
	}
	models.WriteMessage(w, http.StatusOK, "success", "token sent to email")
}

// PATCH /api/v1/users/reset-password/{token}
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, r, apperr.Validation("invalid request body: %v", err))
		return
	}
	if len(req.Password) < minPasswordLen {
		apperr.Write(w, r, apperr.Validation("password must be at least %d characters", minPasswordLen))
		return
	}

	hash := auth.HashResetToken(mux.Vars(r)["token"])
	user, err := h.users.ByResetTokenHash(r.Context(), hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.Write(w, r, apperr.Validation("token is invalid or has expired"))
			return
		}
		apperr.Write(w, r, err)
		return
	}

	newHash, err := auth.HashPassword(req.Password)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	// SetPassword чистит reset-поля и сдвигает password_changed_at:
	// все ранее выданные сессионные токены перестают действовать.
	if err := h.users.SetPassword(r.Context(), user, newHash); err != nil {
		apperr.Write(w, r, err)
		return
	}
	h.sendToken(w, r, http.StatusOK, user)
}

// PATCH /api/v1/users/update-password (аутентифицировано)
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	user := auth.CurrentUser(r.Context())
	var req struct {
		PasswordCurrent string `json:"password_current"`
		Password        string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, r, apperr.Validation("invalid request body: %v", err))
		return
	}
	if !auth.CheckPassword(req.PasswordCurrent, user.PasswordHash) {
		apperr.Write(w, r, apperr.Unauthenticated("incorrect password"))
		return
	}
	if len(req.Password) < minPasswordLen {
		apperr.Write(w, r, apperr.Validation("password must be at least %d characters", minPasswordLen))
		return
	}

	newHash, err := auth.HashPassword(req.Password)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	if err := h.users.SetPassword(r.Context(), user, newHash); err != nil {
		apperr.Write(w, r, err)
		return
	}
	h.sendToken(w, r, http.StatusOK, user)
}

// GET /api/v1/users/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	models.WriteData(w, http.StatusOK, map[string]any{"user": auth.CurrentUser(r.Context())})
}

// PATCH /api/v1/users/update-me — имя/почта/фото; пароли — не сюда.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := auth.CurrentUser(r.Context())

	updates := map[string]any{}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		photo, err := h.uploadPhoto(w, r, user)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		if photo != "" {
			updates["photo"] = photo
		}
		if name := r.FormValue("name"); name != "" {
			updates["name"] = name
		}
		if email := r.FormValue("email"); email != "" {
			updates["email"] = email
		}
	} else {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			apperr.Write(w, r, apperr.Validation("invalid request body: %v", err))
			return
		}
		if _, ok := body["password"]; ok {
			apperr.Write(w, r, apperr.Validation("this route is not for password updates, please use /update-password"))
			return
		}
		for _, k := range []string{"name", "email", "photo"} {
			if v, ok := body[k]; ok {
				updates[k] = v
			}
		}
	}
	if len(updates) == 0 {
		apperr.Write(w, r, apperr.Validation("nothing to update"))
		return
	}

	if err := h.users.UpdateProfile(r.Context(), user, updates); err != nil {
		apperr.Write(w, r, err)
		return
	}
	models.WriteData(w, http.StatusOK, map[string]any{"user": user})
}

const maxPhotoSize = 10 << 20 // 10 MiB

// uploadPhoto кладёт файл "photo" из multipart-формы в объектное хранилище.
func (h *Handler) uploadPhoto(_ http.ResponseWriter, r *http.Request, user *models.User) (string, error) {
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		return "", apperr.Validation("invalid multipart form: %v", err)
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", apperr.Validation("invalid photo upload: %v", err)
	}
	defer file.Close()

	if h.images == nil {
		return "", apperr.Validation("image uploads are disabled")
	}
	key := fmt.Sprintf("users/%d-%s%s", user.ID, uuid.NewString(), path.Ext(header.Filename))
	url, err := h.images.Upload(r.Context(), key, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}
	return url, nil
}

// DELETE /api/v1/users/delete-me — active=false, запись остаётся.
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Deactivate(r.Context(), auth.CurrentUser(r.Context())); err != nil {
		apperr.Write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/users — создания пользователей мимо /signup нет.
func (h *Handler) CreateNotSupported(w http.ResponseWriter, r *http.Request) {
	apperr.Write(w, r, apperr.Validation("this route is not defined, please use /signup instead"))
}
