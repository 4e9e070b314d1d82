package main

import "petclinic/internal/cli"

// @title Petclinic API
// @version 1.0
// @description Registros de la clínica veterinaria: owners, mascotas, visitas, vets y especialidades.
// @BasePath /api
// @securityDefinitions.basic BasicAuth
func main() {
	cli.Execute()
}
