package migration

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"Tray-Validation-Backend/entities"
)

func Migrate(db *gorm.DB) error {
	db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")

	models := []any{
		&entities.Profile{},
		&entities.Recognition{},
		&entities.Image{},
		&entities.Recipe{},
		&entities.RecipeLine{},
		&entities.RecipeLineOption{},
		&entities.InitialItem{},
		&entities.InitialAnnotation{},
		&entities.ValidationWorkLog{},
		&entities.WorkItem{},
		&entities.WorkAnnotation{},
	}
	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			log.Fatalf("Error migrating %T: %v", model, err)
			return err
		}
	}

	fmt.Println("Database migration complete")
	return nil
}
