package clinic

import (
	"net/http"
	"strconv"
)

// listPetsHandler godoc
// @Summary Listar mascotas
// @Tags pets
// @Produce json
// @Success 200 {array} petResponse
// @Router /pets [get]
func listPetsHandler(svc *PetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.FindAllPets(r.Context())
		writeList(w, items, err, toPetResponse)
	}
}

// createPetHandler godoc
// @Summary Crear mascota
// @Description ownerId y type.id tienen que existir.
// @Tags pets
// @Accept json
// @Produce json
// @Param payload body petRequest true "Mascota; birthDate en formato YYYY-MM-DD"
// @Success 201 {object} petResponse
// @Failure 400 {string} string "invalid json / validación"
// @Router /pets [post]
func createPetHandler(svc *PetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req petRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		p, err := req.toPet(0)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := svc.SavePet(r.Context(), &p); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

// getPetHandler godoc
// @Summary Obtener mascota con sus visitas
// @Tags pets
// @Produce json
// @Param petID path int true "ID de la mascota"
// @Success 200 {object} petResponse
// @Failure 404 {string} string "not found"
// @Router /pets/{petID} [get]
func getPetHandler(svc *PetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "petID")
		if !ok {
			return
		}
		l, err := svc.FindPetByID(r.Context(), id)
		writeLookup(w, l, err, toPetResponse)
	}
}

// updatePetHandler godoc
// @Summary Actualizar mascota
// @Description Sin ownerId se conserva el owner actual.
// @Tags pets
// @Accept json
// @Produce json
// @Param petID path int true "ID de la mascota"
// @Param payload body petRequest true "Mascota"
// @Success 200 {object} petResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 404 {string} string "not found"
// @Router /pets/{petID} [put]
func updatePetHandler(svc *PetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "petID")
		if !ok {
			return
		}
		l, err := svc.FindPetByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		current, found := l.Get()
		if !found {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		var req petRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		p, err := req.toPet(id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if p.OwnerID == 0 {
			p.OwnerID = current.OwnerID
		}
		if err := svc.SavePet(r.Context(), &p); err != nil {
			writeError(w, err)
			return
		}
		p.Visits = current.Visits
		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

// deletePetHandler godoc
// @Summary Borrar mascota
// @Tags pets
// @Param petID path int true "ID de la mascota"
// @Success 204
// @Failure 404 {string} string "not found"
// @Router /pets/{petID} [delete]
func deletePetHandler(svc *PetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "petID")
		if !ok {
			return
		}
		l, err := svc.FindPetByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		p, found := l.Get()
		if !found {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err := svc.DeletePet(r.Context(), p); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// listVisitsHandler godoc
// @Summary Listar visitas
// @Tags visits
// @Produce json
// @Param petId query int false "Solo las visitas de esta mascota"
// @Success 200 {array} visitResponse
// @Failure 400 {string} string "petId inválido"
// @Router /visits [get]
func listVisitsHandler(svc *VisitService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if raw := r.URL.Query().Get("petId"); raw != "" {
			petID, err := strconv.Atoi(raw)
			if err != nil {
				http.Error(w, "petId must be an integer", http.StatusBadRequest)
				return
			}
			items, err := svc.FindVisitsByPetID(r.Context(), petID)
			writeList(w, items, err, toVisitResponse)
			return
		}
		items, err := svc.FindAllVisits(r.Context())
		writeList(w, items, err, toVisitResponse)
	}
}

func createVisitHandler(svc *VisitService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req visitRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		v, err := req.toVisit(0)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := svc.SaveVisit(r.Context(), &v); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toVisitResponse(v))
	}
}

func getVisitHandler(svc *VisitService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "visitID")
		if !ok {
			return
		}
		l, err := svc.FindVisitByID(r.Context(), id)
		writeLookup(w, l, err, toVisitResponse)
	}
}

func updateVisitHandler(svc *VisitService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "visitID")
		if !ok {
			return
		}
		l, err := svc.FindVisitByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		current, found := l.Get()
		if !found {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		var req visitRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		v, err := req.toVisit(id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if v.PetID == 0 {
			v.PetID = current.PetID
		}
		if req.Date == "" {
			v.Date = current.Date
		}
		if err := svc.SaveVisit(r.Context(), &v); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVisitResponse(v))
	}
}

func deleteVisitHandler(svc *VisitService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "visitID")
		if !ok {
			return
		}
		l, err := svc.FindVisitByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		v, found := l.Get()
		if !found {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err := svc.DeleteVisit(r.Context(), v); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toPetTypeDTO(t PetType) petTypeDTO {
	return petTypeDTO{ID: t.ID, Name: t.Name}
}

// listPetTypesHandler godoc
// @Summary Listar tipos de mascota
// @Description Con `inUse=true` devuelve solo los tipos que tiene al menos una mascota, ordenados por nombre.
// @Tags pettypes
// @Produce json
// @Param inUse query bool false "Solo tipos en uso"
// @Success 200 {array} petTypeDTO
// @Router /pettypes [get]
func listPetTypesHandler(svc *PetTypeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if inUse, _ := strconv.ParseBool(r.URL.Query().Get("inUse")); inUse {
			items, err := svc.FindPetTypes(r.Context())
			writeList(w, items, err, toPetTypeDTO)
			return
		}
		items, err := svc.FindAllPetTypes(r.Context())
		writeList(w, items, err, toPetTypeDTO)
	}
}

func getPetTypeHandler(svc *PetTypeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "typeID")
		if !ok {
			return
		}
		l, err := svc.FindPetTypeByID(r.Context(), id)
		writeLookup(w, l, err, toPetTypeDTO)
	}
}

func createPetTypeHandler(svc *PetTypeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req petTypeDTO
		if !decodeJSON(w, r, &req) {
			return
		}
		t := PetType{Name: req.Name}
		if err := svc.SavePetType(r.Context(), &t); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPetTypeDTO(t))
	}
}

func updatePetTypeHandler(svc *PetTypeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "typeID")
		if !ok {
			return
		}
		var req petTypeDTO
		if !decodeJSON(w, r, &req) {
			return
		}
		t := PetType{ID: id, Name: req.Name}
		if err := svc.SavePetType(r.Context(), &t); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetTypeDTO(t))
	}
}

// deletePetTypeHandler godoc
// @Summary Borrar tipo de mascota
// @Description Borra también las mascotas de ese tipo y sus visitas.
// @Tags pettypes
// @Param typeID path int true "ID del tipo"
// @Success 204
// @Failure 404 {string} string "not found"
// @Router /pettypes/{typeID} [delete]
func deletePetTypeHandler(svc *PetTypeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "typeID")
		if !ok {
			return
		}
		l, err := svc.FindPetTypeByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		t, found := l.Get()
		if !found {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err := svc.DeletePetType(r.Context(), t); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
