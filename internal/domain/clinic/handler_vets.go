package clinic

import "net/http"

// listVetsHandler godoc
// @Summary Listar vets
// @Description Cada vet trae sus especialidades sin repetir, ordenadas por nombre.
// @Tags vets
// @Produce json
// @Success 200 {array} vetResponse
// @Router /vets [get]
func listVetsHandler(svc *VetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.FindAllVets(r.Context())
		writeList(w, items, err, toVetResponse)
	}
}

// createVetHandler godoc
// @Summary Crear vet
// @Description Las especialidades se referencian por id y tienen que existir.
// @Tags vets
// @Accept json
// @Produce json
// @Param payload body vetRequest true "Vet"
// @Success 201 {object} vetResponse
// @Failure 400 {string} string "invalid json / validación"
// @Router /vets [post]
func createVetHandler(svc *VetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req vetRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		v := req.toVet(0)
		if err := svc.SaveVet(r.Context(), &v); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toVetResponse(v))
	}
}

func getVetHandler(svc *VetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "vetID")
		if !ok {
			return
		}
		l, err := svc.FindVetByID(r.Context(), id)
		writeLookup(w, l, err, toVetResponse)
	}
}

func updateVetHandler(svc *VetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "vetID")
		if !ok {
			return
		}
		var req vetRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		v := req.toVet(id)
		if err := svc.SaveVet(r.Context(), &v); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVetResponse(v))
	}
}

func deleteVetHandler(svc *VetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "vetID")
		if !ok {
			return
		}
		l, err := svc.FindVetByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		v, found := l.Get()
		if !found {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err := svc.DeleteVet(r.Context(), v); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toSpecialtyDTO(sp Specialty) specialtyDTO {
	return specialtyDTO{ID: sp.ID, Name: sp.Name}
}

func listSpecialtiesHandler(svc *SpecialtyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.FindAllSpecialties(r.Context())
		writeList(w, items, err, toSpecialtyDTO)
	}
}

func createSpecialtyHandler(svc *SpecialtyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req specialtyDTO
		if !decodeJSON(w, r, &req) {
			return
		}
		sp := Specialty{Name: req.Name}
		if err := svc.SaveSpecialty(r.Context(), &sp); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toSpecialtyDTO(sp))
	}
}

func getSpecialtyHandler(svc *SpecialtyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "specialtyID")
		if !ok {
			return
		}
		l, err := svc.FindSpecialtyByID(r.Context(), id)
		writeLookup(w, l, err, toSpecialtyDTO)
	}
}

func updateSpecialtyHandler(svc *SpecialtyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "specialtyID")
		if !ok {
			return
		}
		var req specialtyDTO
		if !decodeJSON(w, r, &req) {
			return
		}
		sp := Specialty{ID: id, Name: req.Name}
		if err := svc.SaveSpecialty(r.Context(), &sp); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSpecialtyDTO(sp))
	}
}

// deleteSpecialtyHandler godoc
// @Summary Borrar especialidad
// @Description Los vets que la tenían la pierden; los vets no se borran.
// @Tags specialties
// @Param specialtyID path int true "ID de la especialidad"
// @Success 204
// @Failure 404 {string} string "not found"
// @Router /specialties/{specialtyID} [delete]
func deleteSpecialtyHandler(svc *SpecialtyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "specialtyID")
		if !ok {
			return
		}
		l, err := svc.FindSpecialtyByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		sp, found := l.Get()
		if !found {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err := svc.DeleteSpecialty(r.Context(), sp); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
