package main

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"sketchbin/internal/config"
	"sketchbin/internal/db"
	"sketchbin/internal/model"
	"sketchbin/internal/repository"
)

// Local development seeding: an admin, a couple of regular users and a few
// projects to click around in. Idempotent; existing rows are left alone.

var seedUsers = []model.User{
	{Name: "root", Email: "root@sketchbin.local", Type: model.UserTypeAdmin},
	{Name: "badlogic", Email: "badlogic@sketchbin.local", Type: model.UserTypeUser},
	{Name: "grazer", Email: "grazer@sketchbin.local", Type: model.UserTypeUser},
}

var seedProjects = []model.Project{
	{
		Code:        "r0b0t1",
		UserName:    "badlogic",
		Title:       "Maze runner",
		Description: "A robot that solves mazes",
		Content:     `{"program":[]}`,
		IsPublic:    true,
		Type:        model.ProjectTypeRobot,
		IsFeatured:  true,
	},
	{
		Code:        "c4nv4s",
		UserName:    "badlogic",
		Title:       "Starfield",
		Description: "Canvas starfield demo",
		Content:     `{"program":[]}`,
		IsPublic:    false,
		Type:        model.ProjectTypeCanvas,
	},
	{
		Code:        "gr4z3r",
		UserName:    "grazer",
		Title:       "Line follower",
		Content:     `{"program":[]}`,
		IsPublic:    true,
		Type:        model.ProjectTypeRobot,
	},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.OneTimeCode{}, &model.Session{}, &model.Project{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	projectRepo := repository.NewProjectRepository(gormDB)

	created := 0
	userIDs := make(map[string]uint, len(seedUsers))
	for _, user := range seedUsers {
		existing, err := userRepo.FindByName(ctx, user.Name)
		if err == nil {
			userIDs[existing.Name] = existing.ID
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("Error checking user %s: %v", user.Name, err)
		}
		if err := userRepo.Create(ctx, &user); err != nil {
			log.Fatalf("Error creating user %s: %v", user.Name, err)
		}
		userIDs[user.Name] = user.ID
		created++
	}
	log.Printf("Users seeded: %d new, %d total", created, len(seedUsers))

	created = 0
	for _, project := range seedProjects {
		if _, err := projectRepo.FindByCode(ctx, project.Code); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("Error checking project %s: %v", project.Code, err)
		}
		project.UserID = userIDs[project.UserName]
		if err := projectRepo.Create(ctx, &project); err != nil {
			log.Fatalf("Error creating project %s: %v", project.Code, err)
		}
		created++
	}
	log.Printf("Projects seeded: %d new, %d total", created, len(seedProjects))

	log.Println("Seed completed successfully!")
}
