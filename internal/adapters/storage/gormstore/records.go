package gormstore

import (
	"time"

	"petclinic/internal/domain/clinic"
	"petclinic/internal/domain/users"
)

// Registros de tabla. Las relaciones solo existen para que AutoMigrate cree
// las FKs y para Preload; las escrituras siempre omiten asociaciones.

type ownerRecord struct {
	ID        int    `gorm:"primaryKey"`
	FirstName string `gorm:"size:30;not null"`
	LastName  string `gorm:"size:30;not null;index"`
	Address   string `gorm:"size:255;not null"`
	City      string `gorm:"size:80;not null"`
	Telephone string `gorm:"size:20;not null"`

	Pets []petRecord `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
}

func (ownerRecord) TableName() string { return "owners" }

func (r ownerRecord) toDomain() clinic.Owner {
	return clinic.Owner{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Address:   r.Address,
		City:      r.City,
		Telephone: r.Telephone,
	}
}

func ownerColumns(o clinic.Owner) map[string]any {
	return map[string]any{
		"first_name": o.FirstName,
		"last_name":  o.LastName,
		"address":    o.Address,
		"city":       o.City,
		"telephone":  o.Telephone,
	}
}

type petTypeRecord struct {
	ID   int    `gorm:"primaryKey"`
	Name string `gorm:"size:80;not null;index"`
}

func (petTypeRecord) TableName() string { return "types" }

type petRecord struct {
	ID        int        `gorm:"primaryKey"`
	Name      string     `gorm:"size:30;not null;index"`
	BirthDate *time.Time `gorm:"type:date"`
	TypeID    int        `gorm:"not null;index"`
	OwnerID   int        `gorm:"not null;index"`

	Type   petTypeRecord `gorm:"foreignKey:TypeID;constraint:OnDelete:CASCADE"`
	Visits []visitRecord `gorm:"foreignKey:PetID;constraint:OnDelete:CASCADE"`
}

func (petRecord) TableName() string { return "pets" }

func (r petRecord) toDomain() clinic.Pet {
	p := clinic.Pet{
		ID:      r.ID,
		Name:    r.Name,
		OwnerID: r.OwnerID,
		Type:    clinic.PetType{ID: r.Type.ID, Name: r.Type.Name},
	}
	if r.BirthDate != nil {
		p.BirthDate = clinic.CalendarDate(*r.BirthDate)
	}
	return p
}

func petColumns(p clinic.Pet) map[string]any {
	cols := map[string]any{
		"name":       p.Name,
		"birth_date": nil,
		"type_id":    p.Type.ID,
		"owner_id":   p.OwnerID,
	}
	if !p.BirthDate.IsZero() {
		cols["birth_date"] = p.BirthDate
	}
	return cols
}

func newPetRecord(p clinic.Pet) petRecord {
	rec := petRecord{ID: p.ID, Name: p.Name, TypeID: p.Type.ID, OwnerID: p.OwnerID}
	if !p.BirthDate.IsZero() {
		bd := p.BirthDate
		rec.BirthDate = &bd
	}
	return rec
}

type visitRecord struct {
	ID          int       `gorm:"primaryKey"`
	PetID       int       `gorm:"not null;index"`
	Date        time.Time `gorm:"column:visit_date;type:date;not null"`
	Description string    `gorm:"size:255;not null"`
}

func (visitRecord) TableName() string { return "visits" }

func (r visitRecord) toDomain() clinic.Visit {
	return clinic.Visit{ID: r.ID, PetID: r.PetID, Date: clinic.CalendarDate(r.Date), Description: r.Description}
}

type specialtyRecord struct {
	ID   int    `gorm:"primaryKey"`
	Name string `gorm:"size:80;not null;index"`
}

func (specialtyRecord) TableName() string { return "specialties" }

type vetRecord struct {
	ID        int    `gorm:"primaryKey"`
	FirstName string `gorm:"size:30;not null"`
	LastName  string `gorm:"size:30;not null;index"`

	Specialties []specialtyRecord `gorm:"many2many:vet_specialties;joinForeignKey:VetID;joinReferences:SpecialtyID;constraint:OnDelete:CASCADE"`
}

func (vetRecord) TableName() string { return "vets" }

func (r vetRecord) toDomain() clinic.Vet {
	v := clinic.Vet{ID: r.ID, FirstName: r.FirstName, LastName: r.LastName, Specialties: make([]clinic.Specialty, 0, len(r.Specialties))}
	for _, s := range r.Specialties {
		v.Specialties = append(v.Specialties, clinic.Specialty{ID: s.ID, Name: s.Name})
	}
	return v
}

// vetSpecialtyRecord es la tabla de vínculo, registrada con SetupJoinTable.
type vetSpecialtyRecord struct {
	VetID       int `gorm:"primaryKey;autoIncrement:false"`
	SpecialtyID int `gorm:"primaryKey;autoIncrement:false"`
}

func (vetSpecialtyRecord) TableName() string { return "vet_specialties" }

type userRecord struct {
	Username string `gorm:"primaryKey;size:20"`
	Password string `gorm:"size:60;not null"`
	Enabled  bool   `gorm:"not null"`

	Roles []roleRecord `gorm:"foreignKey:Username;references:Username;constraint:OnDelete:CASCADE"`
}

func (userRecord) TableName() string { return "users" }

func (r userRecord) toDomain() users.User {
	u := users.User{Username: r.Username, Password: r.Password, Enabled: r.Enabled, Roles: make([]users.Role, 0, len(r.Roles))}
	for _, role := range r.Roles {
		u.Roles = append(u.Roles, users.Role{ID: role.ID, Name: role.Role})
	}
	return u
}

type roleRecord struct {
	ID       int    `gorm:"primaryKey"`
	Username string `gorm:"size:20;not null;uniqueIndex:uni_username_role"`
	Role     string `gorm:"size:40;not null;uniqueIndex:uni_username_role"`
}

func (roleRecord) TableName() string { return "roles" }
