package clinic

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"

	"petclinic/internal/middleware"
	"petclinic/internal/ports/auth"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RegisterRoutes monta la API REST de la clínica. Owners, mascotas y visitas
// piden ROLE_OWNER_ADMIN; vets y especialidades ROLE_VET_ADMIN. Los tipos de
// mascota se leen con cualquiera de los dos y se escriben con ROLE_VET_ADMIN.
func RegisterRoutes(r chi.Router, svc *Services) {
	ownerAdmin := middleware.RequireRole(auth.RoleOwnerAdmin)
	vetAdmin := middleware.RequireRole(auth.RoleVetAdmin)
	anyAdmin := middleware.RequireRole(auth.RoleOwnerAdmin, auth.RoleVetAdmin)

	r.Route("/owners", func(or chi.Router) {
		or.Use(ownerAdmin)
		or.Get("/", listOwnersHandler(svc.Owners))
		or.Post("/", createOwnerHandler(svc.Owners))
		or.Get("/{ownerID}", getOwnerHandler(svc.Owners))
		or.Put("/{ownerID}", updateOwnerHandler(svc.Owners))
		or.Delete("/{ownerID}", deleteOwnerHandler(svc.Owners))

		or.Post("/{ownerID}/pets", addPetToOwnerHandler(svc.Owners, svc.Pets))
		or.Post("/{ownerID}/pets/{petID}/visits", addVisitToPetHandler(svc.Pets, svc.Visits))
	})

	r.Route("/pets", func(pr chi.Router) {
		pr.Use(ownerAdmin)
		pr.Get("/", listPetsHandler(svc.Pets))
		pr.Post("/", createPetHandler(svc.Pets))
		pr.Get("/{petID}", getPetHandler(svc.Pets))
		pr.Put("/{petID}", updatePetHandler(svc.Pets))
		pr.Delete("/{petID}", deletePetHandler(svc.Pets))
	})

	r.Route("/visits", func(vr chi.Router) {
		vr.Use(ownerAdmin)
		vr.Get("/", listVisitsHandler(svc.Visits))
		vr.Post("/", createVisitHandler(svc.Visits))
		vr.Get("/{visitID}", getVisitHandler(svc.Visits))
		vr.Put("/{visitID}", updateVisitHandler(svc.Visits))
		vr.Delete("/{visitID}", deleteVisitHandler(svc.Visits))
	})

	r.Route("/pettypes", func(tr chi.Router) {
		tr.With(anyAdmin).Get("/", listPetTypesHandler(svc.PetTypes))
		tr.With(anyAdmin).Get("/{typeID}", getPetTypeHandler(svc.PetTypes))
		tr.With(vetAdmin).Post("/", createPetTypeHandler(svc.PetTypes))
		tr.With(vetAdmin).Put("/{typeID}", updatePetTypeHandler(svc.PetTypes))
		tr.With(vetAdmin).Delete("/{typeID}", deletePetTypeHandler(svc.PetTypes))
	})

	r.Route("/vets", func(vr chi.Router) {
		vr.Use(vetAdmin)
		vr.Get("/", listVetsHandler(svc.Vets))
		vr.Post("/", createVetHandler(svc.Vets))
		vr.Get("/{vetID}", getVetHandler(svc.Vets))
		vr.Put("/{vetID}", updateVetHandler(svc.Vets))
		vr.Delete("/{vetID}", deleteVetHandler(svc.Vets))
	})

	r.Route("/specialties", func(sr chi.Router) {
		sr.Use(vetAdmin)
		sr.Get("/", listSpecialtiesHandler(svc.Specialties))
		sr.Post("/", createSpecialtyHandler(svc.Specialties))
		sr.Get("/{specialtyID}", getSpecialtyHandler(svc.Specialties))
		sr.Put("/{specialtyID}", updateSpecialtyHandler(svc.Specialties))
		sr.Delete("/{specialtyID}", deleteSpecialtyHandler(svc.Specialties))
	})
}

// pathID lee un id entero de la URL; responde 400 si no lo es.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		http.Error(w, name+" must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	return true
}

// writeError traduce errores de servicio a status HTTP.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case IsNotFound(err):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrConstraint):
		http.Error(w, "constraint violation", http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeLookup[T, R any](w http.ResponseWriter, l Lookup[T], err error, render func(T) R) {
	if err != nil {
		writeError(w, err)
		return
	}
	v, ok := l.Get()
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, render(v))
}

func writeList[T, R any](w http.ResponseWriter, items []T, err error, render func(T) R) {
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]R, 0, len(items))
	for _, it := range items {
		out = append(out, render(it))
	}
	writeJSON(w, http.StatusOK, out)
}

// writeJSON está duplicado en users: cada módulo expone su propia API.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
