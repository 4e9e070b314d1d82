package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"petclinic/internal/adapters/storage/memory"
	"petclinic/internal/adapters/storage/seed"
	"petclinic/internal/domain/clinic"
	"petclinic/internal/domain/users"
	"petclinic/internal/platform/logger"
	"petclinic/internal/platform/txscope"
	"petclinic/internal/router"
)

type creds struct {
	user, pass string
}

var admin = &creds{user: "admin", pass: seed.AdminPassword}

func newServer(t *testing.T, security bool) *httptest.Server {
	t.Helper()

	st := memory.NewStore()
	if err := st.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	reg := prometheus.NewRegistry()
	metrics, err := txscope.NewMetrics(reg)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	tx := txscope.Instrument(st, logger.NewNop(), metrics)

	ts := httptest.NewServer(router.NewRouter(router.Options{
		Services:       clinic.NewServices(st.Repositories(), tx, logger.NewNop()),
		Users:          users.NewService(st.Users(), tx, logger.NewNop()),
		SecurityEnable: security,
		Metrics:        reg,
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_OwnerPetVisit(t *testing.T) {
	ts := newServer(t, false)

	// 1) Alta de owner
	ownerID := createID(t, ts.URL, "/api/owners", map[string]any{
		"firstName": "Ana",
		"lastName":  "Pérez",
		"address":   "Calle 1",
		"city":      "Lima",
		"telephone": "987654321",
	})
	if ownerID != 11 {
		t.Fatalf("expected owner id 11 after the seeded ones, got %d", ownerID)
	}
	ownerPath := "/api/owners/" + strconv.Itoa(ownerID)

	// 2) Mascota del owner
	petID := createID(t, ts.URL, ownerPath+"/pets", map[string]any{
		"name":      "Milo",
		"birthDate": "2020-01-02",
		"type":      map[string]any{"id": 2},
	})

	// 3) Visita sin fecha => hoy
	createID(t, ts.URL, ownerPath+"/pets/"+strconv.Itoa(petID)+"/visits", map[string]any{
		"description": "vacuna",
	})

	// 4) El owner trae la mascota y la visita
	{
		st, body := doReq(t, ts.URL, "GET", ownerPath, nil, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get owner, got %d body=%s", st, string(body))
		}
		var o struct {
			Pets []struct {
				Name      string `json:"name"`
				BirthDate string `json:"birthDate"`
				Type      struct {
					Name string `json:"name"`
				} `json:"type"`
				Visits []struct {
					Date        string `json:"date"`
					Description string `json:"description"`
				} `json:"visits"`
			} `json:"pets"`
		}
		if err := json.Unmarshal(body, &o); err != nil {
			t.Fatalf("decode owner: %v", err)
		}
		if len(o.Pets) != 1 || o.Pets[0].Name != "Milo" || o.Pets[0].Type.Name != "dog" {
			t.Fatalf("unexpected pets: %s", string(body))
		}
		if o.Pets[0].BirthDate != "2020-01-02" {
			t.Fatalf("expected birthDate 2020-01-02, got %q", o.Pets[0].BirthDate)
		}
		if len(o.Pets[0].Visits) != 1 || o.Pets[0].Visits[0].Description != "vacuna" || o.Pets[0].Visits[0].Date == "" {
			t.Fatalf("unexpected visits: %s", string(body))
		}
	}

	// 5) Actualizar owner
	{
		st, body := doReq(t, ts.URL, "PUT", ownerPath, nil, map[string]any{
			"firstName": "Ana",
			"lastName":  "Pérez",
			"address":   "Calle 2",
			"city":      "Cusco",
			"telephone": "987654321",
		})
		if st != http.StatusOK || !strings.Contains(string(body), "Cusco") {
			t.Fatalf("expected 200 update owner, got %d body=%s", st, string(body))
		}
	}

	// 6) Borrar owner arrastra mascota
	{
		st, _ := doReq(t, ts.URL, "DELETE", ownerPath, nil, nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 delete owner, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "GET", ownerPath, nil, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 after delete, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "GET", "/api/pets/"+strconv.Itoa(petID), nil, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 for pet of deleted owner, got %d", st)
		}
	}
}

func TestHTTP_StatusMapping(t *testing.T) {
	ts := newServer(t, false)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown owner", "GET", "/api/owners/999", nil, http.StatusNotFound},
		{"non numeric id", "GET", "/api/owners/abc", nil, http.StatusBadRequest},
		{"bad telephone", "POST", "/api/owners", map[string]any{
			"firstName": "a", "lastName": "b", "address": "c", "city": "d", "telephone": "12ab",
		}, http.StatusBadRequest},
		{"unknown pet type", "POST", "/api/owners/1/pets", map[string]any{
			"name": "x", "type": map[string]any{"id": 99},
		}, http.StatusBadRequest},
		{"bad birth date", "POST", "/api/pets", map[string]any{
			"name": "x", "birthDate": "07/09/2010", "ownerId": 1, "type": map[string]any{"id": 1},
		}, http.StatusBadRequest},
		{"visit for someone else's pet", "POST", "/api/owners/1/pets/7/visits", map[string]any{
			"description": "x",
		}, http.StatusNotFound},
		{"empty visit description", "POST", "/api/owners/6/pets/7/visits", map[string]any{
			"description": "",
		}, http.StatusBadRequest},
		{"update unknown vet", "PUT", "/api/vets/999", map[string]any{
			"firstName": "a", "lastName": "b",
		}, http.StatusNotFound},
		{"delete unknown specialty", "DELETE", "/api/specialties/999", nil, http.StatusNotFound},
		{"invalid json", "POST", "/api/specialties", "not-an-object", http.StatusBadRequest},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			st, body := doReq(t, ts.URL, c.method, c.path, nil, c.body)
			if st != c.want {
				t.Fatalf("expected %d, got %d body=%s", c.want, st, string(body))
			}
		})
	}
}

func TestHTTP_SeededReads(t *testing.T) {
	ts := newServer(t, false)

	{
		st, body := doReq(t, ts.URL, "GET", "/api/owners?lastName=Davis", nil, nil)
		var owners []map[string]any
		_ = json.Unmarshal(body, &owners)
		if st != http.StatusOK || len(owners) != 2 {
			t.Fatalf("expected 2 Davis owners, got %d body=%s", st, string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/api/vets/3", nil, nil)
		var v struct {
			LastName    string `json:"lastName"`
			Specialties []struct {
				Name string `json:"name"`
			} `json:"specialties"`
		}
		_ = json.Unmarshal(body, &v)
		if st != http.StatusOK || v.LastName != "Douglas" || len(v.Specialties) != 2 ||
			v.Specialties[0].Name != "dentistry" || v.Specialties[1].Name != "surgery" {
			t.Fatalf("unexpected vet 3: %d body=%s", st, string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/api/pettypes?inUse=true", nil, nil)
		var types []struct {
			Name string `json:"name"`
		}
		_ = json.Unmarshal(body, &types)
		if st != http.StatusOK || len(types) != 6 || types[0].Name != "bird" {
			t.Fatalf("expected 6 in-use types sorted by name, got %d body=%s", st, string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/api/visits?petId=7", nil, nil)
		var visits []map[string]any
		_ = json.Unmarshal(body, &visits)
		if st != http.StatusOK || len(visits) != 2 {
			t.Fatalf("expected 2 visits for pet 7, got %d body=%s", st, string(body))
		}
	}
}

func TestHTTP_SecurityRoles(t *testing.T) {
	ts := newServer(t, true)

	// Sin credenciales
	if st, _ := doReq(t, ts.URL, "GET", "/api/vets", nil, nil); st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "GET", "/api/vets", &creds{user: "admin", pass: "wrong"}, nil); st != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong password, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "GET", "/health", nil, nil); st != http.StatusOK {
		t.Fatalf("expected 200 health without credentials, got %d", st)
	}

	// Admin crea un usuario que solo administra owners
	{
		st, body := doReq(t, ts.URL, "POST", "/api/users", admin, map[string]any{
			"username": "clerk",
			"password": "secret",
			"roles":    []map[string]any{{"name": "OWNER_ADMIN"}, {"name": "owner_admin"}},
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 create user, got %d body=%s", st, string(body))
		}
		var u struct {
			Roles []string `json:"roles"`
		}
		_ = json.Unmarshal(body, &u)
		if len(u.Roles) != 1 || u.Roles[0] != users.RoleOwnerAdmin {
			t.Fatalf("expected a single normalized role, got %v", u.Roles)
		}
	}
	clerk := &creds{user: "clerk", pass: "secret"}

	checks := []struct {
		method string
		path   string
		who    *creds
		body   any
		want   int
	}{
		{"GET", "/api/vets", admin, nil, http.StatusOK},
		{"GET", "/api/vets", clerk, nil, http.StatusForbidden},
		{"GET", "/api/owners/1", clerk, nil, http.StatusOK},
		{"GET", "/api/pettypes", clerk, nil, http.StatusOK},
		{"POST", "/api/pettypes", clerk, map[string]any{"name": "ferret"}, http.StatusForbidden},
		{"POST", "/api/pettypes", admin, map[string]any{"name": "ferret"}, http.StatusCreated},
		{"POST", "/api/users", clerk, map[string]any{"username": "x", "password": "y", "roles": []map[string]any{{"name": "ADMIN"}}}, http.StatusForbidden},
	}
	for _, c := range checks {
		st, body := doReq(t, ts.URL, c.method, c.path, c.who, c.body)
		if st != c.want {
			t.Fatalf("%s %s as %s: expected %d, got %d body=%s", c.method, c.path, c.who.user, c.want, st, string(body))
		}
	}
}

func TestHTTP_MetricsAndSwagger(t *testing.T) {
	ts := newServer(t, false)

	if st, _ := doReq(t, ts.URL, "GET", "/api/owners", nil, nil); st != http.StatusOK {
		t.Fatalf("expected 200 list owners, got %d", st)
	}

	st, body := doReq(t, ts.URL, "GET", "/metrics", nil, nil)
	if st != http.StatusOK || !strings.Contains(string(body), "petclinic_tx_scopes_total") {
		t.Fatalf("expected tx metrics exposed, got %d", st)
	}

	st, body = doReq(t, ts.URL, "GET", "/swagger/doc.json", nil, nil)
	if st != http.StatusOK || !strings.Contains(string(body), "/owners/{ownerID}/pets") {
		t.Fatalf("expected swagger doc, got %d body=%s", st, string(body))
	}
}

func createID(t *testing.T, baseURL, path string, payload map[string]any) int {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", path, nil, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 POST %s, got %d body=%s", path, st, string(body))
	}

	var resp struct {
		ID int `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == 0 {
		t.Fatalf("POST %s: missing id body=%s", path, string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path string, who *creds, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if who != nil {
		req.SetBasicAuth(who.user, who.pass)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
