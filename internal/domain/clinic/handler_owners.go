package clinic

import (
	"net/http"
	"strings"
)

// listOwnersHandler godoc
// @Summary Listar owners
// @Description Devuelve todos los owners con sus mascotas y visitas, ordenados por id. Con `lastName` filtra por apellido exacto.
// @Tags owners
// @Produce json
// @Param lastName query string false "Apellido exacto"
// @Success 200 {array} ownerResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 500 {string} string "internal error"
// @Router /owners [get]
func listOwnersHandler(svc *OwnerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if lastName := strings.TrimSpace(r.URL.Query().Get("lastName")); lastName != "" {
			items, err := svc.FindOwnerByLastName(r.Context(), lastName)
			writeList(w, items, err, toOwnerResponse)
			return
		}
		items, err := svc.FindAllOwners(r.Context())
		writeList(w, items, err, toOwnerResponse)
	}
}

// createOwnerHandler godoc
// @Summary Crear owner
// @Tags owners
// @Accept json
// @Produce json
// @Param payload body ownerRequest true "Datos del owner; telephone solo dígitos (máx. 10)"
// @Success 201 {object} ownerResponse
// @Failure 400 {string} string "invalid json / validación"
// @Router /owners [post]
func createOwnerHandler(svc *OwnerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ownerRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		o := req.toOwner(0)
		if err := svc.SaveOwner(r.Context(), &o); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toOwnerResponse(o))
	}
}

// getOwnerHandler godoc
// @Summary Obtener owner
// @Tags owners
// @Produce json
// @Param ownerID path int true "ID del owner"
// @Success 200 {object} ownerResponse
// @Failure 404 {string} string "not found"
// @Router /owners/{ownerID} [get]
func getOwnerHandler(svc *OwnerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "ownerID")
		if !ok {
			return
		}
		l, err := svc.FindOwnerByID(r.Context(), id)
		writeLookup(w, l, err, toOwnerResponse)
	}
}

// updateOwnerHandler godoc
// @Summary Actualizar owner
// @Description Reemplaza los datos del owner. Las mascotas no se tocan.
// @Tags owners
// @Accept json
// @Produce json
// @Param ownerID path int true "ID del owner"
// @Param payload body ownerRequest true "Datos del owner"
// @Success 200 {object} ownerResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 404 {string} string "not found"
// @Router /owners/{ownerID} [put]
func updateOwnerHandler(svc *OwnerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "ownerID")
		if !ok {
			return
		}
		var req ownerRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		o := req.toOwner(id)
		if err := svc.SaveOwner(r.Context(), &o); err != nil {
			writeError(w, err)
			return
		}

		l, err := svc.FindOwnerByID(r.Context(), id)
		writeLookup(w, l, err, toOwnerResponse)
	}
}

// deleteOwnerHandler godoc
// @Summary Borrar owner
// @Description Borra el owner junto con sus mascotas y las visitas de ellas.
// @Tags owners
// @Param ownerID path int true "ID del owner"
// @Success 204
// @Failure 404 {string} string "not found"
// @Router /owners/{ownerID} [delete]
func deleteOwnerHandler(svc *OwnerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "ownerID")
		if !ok {
			return
		}
		l, err := svc.FindOwnerByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		o, found := l.Get()
		if !found {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err := svc.DeleteOwner(r.Context(), o); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// addPetToOwnerHandler godoc
// @Summary Agregar mascota a un owner
// @Tags owners
// @Accept json
// @Produce json
// @Param ownerID path int true "ID del owner"
// @Param payload body petRequest true "Mascota; type.id tiene que existir"
// @Success 201 {object} petResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 404 {string} string "owner not found"
// @Router /owners/{ownerID}/pets [post]
func addPetToOwnerHandler(owners *OwnerService, pets *PetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := pathID(w, r, "ownerID")
		if !ok {
			return
		}
		l, err := owners.FindOwnerByID(r.Context(), ownerID)
		if err != nil {
			writeError(w, err)
			return
		}
		owner, found := l.Get()
		if !found {
			http.Error(w, "owner not found", http.StatusNotFound)
			return
		}

		var req petRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		p, err := req.toPet(0)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		owner.AddPet(&p)
		if err := pets.SavePet(r.Context(), &p); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

// addVisitToPetHandler godoc
// @Summary Registrar visita de una mascota
// @Description La mascota tiene que pertenecer al owner de la URL. Sin fecha se usa la de hoy.
// @Tags owners
// @Accept json
// @Produce json
// @Param ownerID path int true "ID del owner"
// @Param petID path int true "ID de la mascota"
// @Param payload body visitRequest true "Visita; date en formato YYYY-MM-DD"
// @Success 201 {object} visitResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 404 {string} string "pet not found"
// @Router /owners/{ownerID}/pets/{petID}/visits [post]
func addVisitToPetHandler(pets *PetService, visits *VisitService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := pathID(w, r, "ownerID")
		if !ok {
			return
		}
		petID, ok := pathID(w, r, "petID")
		if !ok {
			return
		}
		l, err := pets.FindPetByID(r.Context(), petID)
		if err != nil {
			writeError(w, err)
			return
		}
		pet, found := l.Get()
		if !found || pet.OwnerID != ownerID {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}

		var req visitRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		v, err := req.toVisit(0)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		pet.AddVisit(&v)
		if err := visits.SaveVisit(r.Context(), &v); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toVisitResponse(v))
	}
}
