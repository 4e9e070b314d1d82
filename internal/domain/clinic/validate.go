package clinic

import (
	"strings"
	"unicode"
)

const maxTelephoneDigits = 10

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func validateOwner(o Owner) error {
	switch {
	case blank(o.FirstName):
		return invalid("owner", "first_name", "must not be empty")
	case blank(o.LastName):
		return invalid("owner", "last_name", "must not be empty")
	case blank(o.Address):
		return invalid("owner", "address", "must not be empty")
	case blank(o.City):
		return invalid("owner", "city", "must not be empty")
	}

	tel := strings.TrimSpace(o.Telephone)
	if tel == "" {
		return invalid("owner", "telephone", "must not be empty")
	}
	if len(tel) > maxTelephoneDigits {
		return invalid("owner", "telephone", "must have at most 10 digits")
	}
	for _, r := range tel {
		if !unicode.IsDigit(r) {
			return invalid("owner", "telephone", "must contain digits only")
		}
	}
	return nil
}

func validatePet(p Pet) error {
	switch {
	case blank(p.Name):
		return invalid("pet", "name", "must not be empty")
	case p.OwnerID == 0:
		return invalid("pet", "owner", "is required")
	case p.Type.ID == 0:
		return invalid("pet", "type", "is required")
	}
	return nil
}

func validateVisit(v Visit) error {
	switch {
	case blank(v.Description):
		return invalid("visit", "description", "must not be empty")
	case v.Date.IsZero():
		return invalid("visit", "date", "is required")
	case v.PetID == 0:
		return invalid("visit", "pet", "is required")
	}
	return nil
}

func validateVet(v Vet) error {
	switch {
	case blank(v.FirstName):
		return invalid("vet", "first_name", "must not be empty")
	case blank(v.LastName):
		return invalid("vet", "last_name", "must not be empty")
	}
	for _, s := range v.Specialties {
		if s.IsNew() {
			return invalid("vet", "specialties", "must be saved before being assigned")
		}
	}
	return nil
}

func validateName(entity, name string) error {
	if blank(name) {
		return invalid(entity, "name", "must not be empty")
	}
	return nil
}

func requireIdentity(entity string, id int) error {
	if id == 0 {
		return invalid(entity, "id", "is required")
	}
	return nil
}
