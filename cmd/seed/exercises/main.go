package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mansoorceksport/liftlog/internal/config"
	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/mansoorceksport/liftlog/internal/repository"
	"github.com/mansoorceksport/liftlog/internal/service"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type seed struct {
	name      string
	muscle    domain.MuscleGroup
	equipment domain.Equipment
	timed     bool
}

var library = []seed{
	// Legs
	{"Barbell Squat", domain.MuscleQuadriceps, domain.EquipmentBarbell, false},
	{"Leg Press", domain.MuscleQuadriceps, domain.EquipmentMachine, false},
	{"Walking Lunge", domain.MuscleQuadriceps, domain.EquipmentDumbbell, false},
	{"Leg Extension", domain.MuscleQuadriceps, domain.EquipmentMachine, false},
	{"Lying Leg Curl", domain.MuscleHamstrings, domain.EquipmentMachine, false},
	{"Romanian Deadlift", domain.MuscleHamstrings, domain.EquipmentBarbell, false},
	{"Hip Thrust", domain.MuscleGlutes, domain.EquipmentBarbell, false},
	{"Glute Bridge", domain.MuscleGlutes, domain.EquipmentBodyweight, false},
	{"Standing Calf Raise", domain.MuscleCalves, domain.EquipmentMachine, false},

	// Chest
	{"Barbell Bench Press", domain.MuscleChest, domain.EquipmentBarbell, false},
	{"Incline Dumbbell Press", domain.MuscleChest, domain.EquipmentDumbbell, false},
	{"Push Up", domain.MuscleChest, domain.EquipmentBodyweight, false},
	{"Cable Fly", domain.MuscleChest, domain.EquipmentCable, false},

	// Back
	{"Deadlift", domain.MuscleBack, domain.EquipmentBarbell, false},
	{"Pull Up", domain.MuscleBack, domain.EquipmentBodyweight, false},
	{"Lat Pulldown", domain.MuscleBack, domain.EquipmentCable, false},
	{"Barbell Row", domain.MuscleBack, domain.EquipmentBarbell, false},
	{"Seated Cable Row", domain.MuscleBack, domain.EquipmentCable, false},

	// Shoulders and arms
	{"Overhead Press", domain.MuscleShoulders, domain.EquipmentBarbell, false},
	{"Lateral Raise", domain.MuscleShoulders, domain.EquipmentDumbbell, false},
	{"Face Pull", domain.MuscleShoulders, domain.EquipmentCable, false},
	{"Barbell Curl", domain.MuscleBiceps, domain.EquipmentBarbell, false},
	{"Hammer Curl", domain.MuscleBiceps, domain.EquipmentDumbbell, false},
	{"Tricep Pushdown", domain.MuscleTriceps, domain.EquipmentCable, false},
	{"Skullcrusher", domain.MuscleTriceps, domain.EquipmentBarbell, false},
	{"Wrist Curl", domain.MuscleForearms, domain.EquipmentDumbbell, false},

	// Core and conditioning
	{"Plank", domain.MuscleCore, domain.EquipmentBodyweight, true},
	{"Side Plank", domain.MuscleCore, domain.EquipmentBodyweight, true},
	{"Hanging Leg Raise", domain.MuscleCore, domain.EquipmentBodyweight, false},
	{"Ab Wheel Rollout", domain.MuscleCore, domain.EquipmentOther, false},
	{"Farmer's Carry", domain.MuscleFullBody, domain.EquipmentDumbbell, true},
	{"Kettlebell Swing", domain.MuscleFullBody, domain.EquipmentKettlebell, false},
	{"Rowing Machine", domain.MuscleCardio, domain.EquipmentMachine, true},
	{"Jump Rope", domain.MuscleCardio, domain.EquipmentOther, true},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		log.Fatalf("Failed to connect to Mongo: %v", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDB.Database)
	exercises := service.NewExerciseService(
		repository.NewMongoExerciseRepository(db),
		repository.NewMongoPersonalRecordRepository(db),
		nil,
	)

	created := 0
	for _, s := range library {
		ex := domain.Exercise{Name: s.name, MuscleGroup: s.muscle, Equipment: s.equipment, IsTimed: s.timed}
		if err := exercises.Create(ctx, &ex); err != nil {
			if errors.Is(err, domain.ErrDuplicateExercise) {
				fmt.Printf("Skipping duplicate: %s\n", ex.Name)
				continue
			}
			log.Errorf("Error creating %s: %v", ex.Name, err)
			continue
		}
		created++
		fmt.Printf("Created: %s\n", ex.Name)
	}
	fmt.Printf("Seeding Exercises Complete. %d created.\n", created)
}
