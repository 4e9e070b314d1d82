package clinic

import (
	"errors"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type ownerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Telephone string `json:"telephone"`
}

type ownerResponse struct {
	ID        int           `json:"id"`
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	Address   string        `json:"address"`
	City      string        `json:"city"`
	Telephone string        `json:"telephone"`
	Pets      []petResponse `json:"pets"`
}

type petRequest struct {
	Name      string     `json:"name"`
	BirthDate string     `json:"birthDate"` // YYYY-MM-DD opcional
	Type      petTypeDTO `json:"type"`
	OwnerID   int        `json:"ownerId"`
}

type petResponse struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	BirthDate string          `json:"birthDate,omitempty"`
	Type      petTypeDTO      `json:"type"`
	OwnerID   int             `json:"ownerId"`
	Visits    []visitResponse `json:"visits"`
}

type petTypeDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type visitRequest struct {
	Date        string `json:"date"` // YYYY-MM-DD; vacío = hoy
	Description string `json:"description"`
	PetID       int    `json:"petId"`
}

type visitResponse struct {
	ID          int    `json:"id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	PetID       int    `json:"petId"`
}

type vetRequest struct {
	FirstName   string         `json:"firstName"`
	LastName    string         `json:"lastName"`
	Specialties []specialtyDTO `json:"specialties"`
}

type vetResponse struct {
	ID          int            `json:"id"`
	FirstName   string         `json:"firstName"`
	LastName    string         `json:"lastName"`
	Specialties []specialtyDTO `json:"specialties"`
}

type specialtyDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (req ownerRequest) toOwner(id int) Owner {
	return Owner{
		ID:        id,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Address:   req.Address,
		City:      req.City,
		Telephone: req.Telephone,
	}
}

func (req petRequest) toPet(id int) (Pet, error) {
	p := Pet{ID: id, Name: req.Name, Type: PetType{ID: req.Type.ID}, OwnerID: req.OwnerID}
	if strings.TrimSpace(req.BirthDate) != "" {
		t, err := time.Parse(dateLayout, req.BirthDate)
		if err != nil {
			return Pet{}, errors.New("birthDate must be YYYY-MM-DD")
		}
		p.BirthDate = t
	}
	return p, nil
}

func (req visitRequest) toVisit(id int) (Visit, error) {
	v := NewVisit()
	v.ID = id
	v.Description = req.Description
	v.PetID = req.PetID
	if strings.TrimSpace(req.Date) != "" {
		t, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			return Visit{}, errors.New("date must be YYYY-MM-DD")
		}
		v.Date = t
	}
	return v, nil
}

func (req vetRequest) toVet(id int) Vet {
	v := Vet{ID: id, FirstName: req.FirstName, LastName: req.LastName}
	for _, sp := range req.Specialties {
		v.Specialties = append(v.Specialties, Specialty{ID: sp.ID, Name: sp.Name})
	}
	return v
}

func toOwnerResponse(o Owner) ownerResponse {
	out := ownerResponse{
		ID:        o.ID,
		FirstName: o.FirstName,
		LastName:  o.LastName,
		Address:   o.Address,
		City:      o.City,
		Telephone: o.Telephone,
		Pets:      make([]petResponse, 0, len(o.Pets)),
	}
	for _, p := range o.Pets {
		out.Pets = append(out.Pets, toPetResponse(p))
	}
	return out
}

func toPetResponse(p Pet) petResponse {
	out := petResponse{
		ID:      p.ID,
		Name:    p.Name,
		Type:    petTypeDTO{ID: p.Type.ID, Name: p.Type.Name},
		OwnerID: p.OwnerID,
		Visits:  make([]visitResponse, 0, len(p.Visits)),
	}
	if !p.BirthDate.IsZero() {
		out.BirthDate = p.BirthDate.Format(dateLayout)
	}
	for _, v := range p.Visits {
		out.Visits = append(out.Visits, toVisitResponse(v))
	}
	return out
}

func toVisitResponse(v Visit) visitResponse {
	return visitResponse{ID: v.ID, Date: v.Date.Format(dateLayout), Description: v.Description, PetID: v.PetID}
}

func toVetResponse(v Vet) vetResponse {
	out := vetResponse{ID: v.ID, FirstName: v.FirstName, LastName: v.LastName, Specialties: make([]specialtyDTO, 0, len(v.Specialties))}
	for _, sp := range v.Specialties {
		out.Specialties = append(out.Specialties, specialtyDTO{ID: sp.ID, Name: sp.Name})
	}
	return out
}
