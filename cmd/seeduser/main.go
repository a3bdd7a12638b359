// cmd/seeduser/main.go — Crea/actualiza usuario de demo.
// Uso: go run cmd/seeduser/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/mauropillox/chorilocal-sub000/internal/infra"
	"github.com/mauropillox/chorilocal-sub000/internal/model"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"
)

func main() {
	path := os.Getenv("DATABASE_PATH")
	if path == "" {
		path = "chorilocal.db"
	}
	username := "admin"
	password := "1234"
	nombre := "Admin Demo"
	email := "admin@chorilocal.com"
	rol := "admin"

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Fatalf("bcrypt error: %v", err)
	}

	db, err := infra.NewDatabase(path)
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}

	u := model.Usuario{
		ID:           uuid.New(),
		Username:     username,
		Nombre:       nombre,
		Email:        &email,
		PasswordHash: string(hash),
		Rol:          rol,
		Activo:       true,
	}
	result := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"password_hash", "nombre", "email", "rol", "activo",
		}),
	}).Create(&u)

	if result.Error != nil {
		log.Fatalf("insert error: %v", result.Error)
	}
	fmt.Printf("✅ Usuario '%s' creado/actualizado con password '%s'\n", username, password)
}
