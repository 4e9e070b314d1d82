package users

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"

	"petclinic/internal/domain/clinic"
	"petclinic/internal/middleware"
	"petclinic/internal/ports/auth"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func RegisterRoutes(r chi.Router, svc *Service) {
	r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/users", createUserHandler(svc))
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Enabled  *bool  `json:"enabled"` // default true
	Roles    []struct {
		Name string `json:"name"`
	} `json:"roles"`
}

type userResponse struct {
	Username string   `json:"username"`
	Enabled  bool     `json:"enabled"`
	Roles    []string `json:"roles"`
}

// createUserHandler godoc
// @Summary Crear o reemplazar usuario
// @Description Los roles se normalizan con el prefijo ROLE_ y se colapsan repetidos. El password se guarda con bcrypt.
// @Tags users
// @Accept json
// @Produce json
// @Param payload body createUserRequest true "Usuario"
// @Success 201 {object} userResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /users [post]
func createUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		u := User{Username: req.Username, Password: req.Password, Enabled: true}
		if req.Enabled != nil {
			u.Enabled = *req.Enabled
		}
		for _, role := range req.Roles {
			u.Roles = append(u.Roles, Role{Name: role.Name})
		}

		if err := svc.SaveUser(r.Context(), &u); err != nil {
			switch {
			case errors.Is(err, clinic.ErrInvalid):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, clinic.ErrConstraint):
				http.Error(w, "constraint violation", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, userResponse{Username: u.Username, Enabled: u.Enabled, Roles: u.RoleNames()})
	}
}

// writeJSON está duplicado en clinic: cada módulo expone su propia API.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
