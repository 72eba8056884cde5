package testutil

import (
	"context"
	"database/sql"
	"time"

	"github.com/campus-events/backend/internal/entity"
	"github.com/campus-events/backend/internal/repository"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const FixturePassword = "correct-horse"

var (
	// Users
	Student1 = &entity.User{
		Base:       entity.Base{ID: "student1"},
		Email:      "student1@campus.edu",
		Name:       "Student One",
		RollNumber: "CS001",
		Phone:      "9000000001",
		Role:       entity.RoleStudent,
	}

	Student2 = &entity.User{
		Base:       entity.Base{ID: "student2"},
		Email:      "student2@campus.edu",
		Name:       "Student Two",
		RollNumber: "CS002",
		Phone:      "9000000002",
		Role:       entity.RoleStudent,
	}

	Committee1 = &entity.User{
		Base:  entity.Base{ID: "committee1"},
		Email: "committee1@campus.edu",
		Name:  "Committee One",
		Role:  entity.RoleCommittee,
	}

	Committee2 = &entity.User{
		Base:  entity.Base{ID: "committee2"},
		Email: "committee2@campus.edu",
		Name:  "Committee Two",
		Role:  entity.RoleCommittee,
	}

	Admin1 = &entity.User{
		Base:  entity.Base{ID: "admin1"},
		Email: "admin1@campus.edu",
		Name:  "Admin One",
		Role:  entity.RoleAdmin,
	}

	Users = []*entity.User{Student1, Student2, Committee1, Committee2, Admin1}

	// Events
	FreeEvent = &entity.Event{
		Base:      entity.Base{ID: "free_event"},
		CreatedBy: Committee1.ID,
		Title:     "Orientation Talk",
		Venue:     "Main Auditorium",
		StartTime: time.Date(2030, 1, 10, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2030, 1, 10, 12, 0, 0, 0, time.UTC),
		Capacity:  sql.NullInt64{Int64: 1, Valid: true},
		Price:     0,
		Status:    entity.EventPublished,
		IsPublic:  true,
	}

	PaidEvent = &entity.Event{
		Base:         entity.Base{ID: "paid_event"},
		CreatedBy:    Committee1.ID,
		Title:        "Robotics Workshop",
		Description:  "Build a line follower in a day",
		Venue:        "Lab 3",
		StartTime:    time.Date(2030, 2, 1, 9, 0, 0, 0, time.UTC),
		EndTime:      time.Date(2030, 2, 1, 17, 0, 0, 0, time.UTC),
		Price:        5000,
		PriceSingle:  sql.NullInt64{Int64: 9000, Valid: true},
		PriceTrio:    sql.NullInt64{Int64: 24000, Valid: true},
		AllowedTiers: entity.Array[entity.GroupType]{entity.GroupSingle, entity.GroupDuo, entity.GroupTrio},
		Status:       entity.EventPublished,
		IsPublic:     true,
		PaymentDetails: entity.PaymentDetails{
			AccountName:   "Robotics Club",
			AccountNumber: "001122334455",
			BankCode:      "SBIN0000001",
			UPIID:         "robotics@upi",
		},
	}

	DraftEvent = &entity.Event{
		Base:      entity.Base{ID: "draft_event"},
		CreatedBy: Committee2.ID,
		Title:     "Hackathon Planning",
		StartTime: time.Date(2030, 3, 1, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2030, 3, 1, 17, 0, 0, 0, time.UTC),
		Price:     1000,
		Status:    entity.EventDraft,
	}

	Events = []*entity.Event{FreeEvent, PaidEvent, DraftEvent}

	// Discounts of PaidEvent
	Save10Discount = &entity.Discount{
		Base:       entity.Base{ID: "discount_save10"},
		EventID:    PaidEvent.ID,
		Code:       "SAVE10",
		Percentage: decimal.NewFromInt(10),
		Active:     true,
	}

	InactiveDiscount = &entity.Discount{
		Base:       entity.Base{ID: "discount_old50"},
		EventID:    PaidEvent.ID,
		Code:       "OLD50",
		Percentage: decimal.NewFromInt(50),
		Active:     false,
	}

	FreeDiscount = &entity.Discount{
		Base:       entity.Base{ID: "discount_free100"},
		EventID:    PaidEvent.ID,
		Code:       "FREE100",
		Percentage: decimal.NewFromInt(100),
		Active:     true,
	}

	ZeroDiscount = &entity.Discount{
		Base:       entity.Base{ID: "discount_zero"},
		EventID:    PaidEvent.ID,
		Code:       "ZERO",
		Percentage: decimal.Zero,
		Active:     true,
	}

	OnceDiscount = &entity.Discount{
		Base:       entity.Base{ID: "discount_once"},
		EventID:    PaidEvent.ID,
		Code:       "ONCE",
		Percentage: decimal.Zero,
		FlatAmount: 1000,
		MaxUses:    sql.NullInt64{Int64: 1, Valid: true},
		Active:     true,
	}

	Discounts = []*entity.Discount{Save10Discount, InactiveDiscount, FreeDiscount, ZeroDiscount, OnceDiscount}
)

func CreateFixtureDb(ctx context.Context) {
	InsertUsers(ctx)
	InsertEvents(ctx)
	InsertDiscounts(ctx)
}

func InsertUsers(ctx context.Context) {
	hash, err := bcrypt.GenerateFromPassword([]byte(FixturePassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	userRepo := repository.NewUserRepository()
	for _, u := range Users {
		u.PasswordHash = string(hash)
		if err := userRepo.Create(ctx, u); err != nil {
			panic(err)
		}
	}
}

func InsertEvents(ctx context.Context) {
	eventRepo := repository.NewEventRepository()
	for _, e := range Events {
		if err := eventRepo.Create(ctx, e); err != nil {
			panic(err)
		}
	}
}

func InsertDiscounts(ctx context.Context) {
	discountRepo := repository.NewDiscountRepository()
	for _, d := range Discounts {
		if err := discountRepo.Create(ctx, d); err != nil {
			panic(err)
		}
	}
}
