package services

import (
	"context"
	"sync"
	"time"

	"github.com/monocle-dev/expense-tracker/internal/auth"
	"github.com/monocle-dev/expense-tracker/internal/events"
	applog "github.com/monocle-dev/expense-tracker/internal/log"
	"github.com/monocle-dev/expense-tracker/internal/models"
	"github.com/monocle-dev/expense-tracker/internal/repository"
	"github.com/monocle-dev/expense-tracker/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	types := make([]string, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}

func (r *recordingPublisher) last() events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

// serviceSuite wires every service against a fresh in-memory database.
type serviceSuite struct {
	suite.Suite
	ctx       context.Context
	db        *gorm.DB
	store     *repository.GormStore
	published *recordingPublisher

	users      *UserService
	categories *CategoryService
	expenses   *ExpenseService
	sharing    *SharingService
}

func (suite *serviceSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.db = testutil.NewDB(suite.T())
	suite.store = repository.NewGormStore(suite.db)
	suite.published = &recordingPublisher{}

	log := applog.Discard()
	suite.users = NewUserService(suite.store, auth.NewBcryptHasher(bcrypt.MinCost), suite.published, log, time.Hour)
	suite.categories = NewCategoryService(suite.store, true, log)
	suite.expenses = NewExpenseService(suite.store, suite.categories, log)
	suite.sharing = NewSharingService(suite.store, suite.published, log)
}

func (suite *serviceSuite) register(name string) *models.User {
	user, err := suite.users.Register(suite.ctx, RegisterInput{
		Email:    name + "@x.com",
		Username: name,
		Password: "password-" + name,
	})
	require.NoError(suite.T(), err)
	return user
}

func (suite *serviceSuite) category(owner *models.User, name string) *models.Category {
	category, err := suite.categories.Create(suite.ctx, owner.ID, CategoryInput{Name: name})
	require.NoError(suite.T(), err)
	return category
}

func (suite *serviceSuite) expense(owner *models.User, category *models.Category, amount string) *models.Expense {
	expense, err := suite.expenses.Create(suite.ctx, owner.ID, ExpenseInput{
		Amount:      decimal.RequireFromString(amount),
		Description: "Lunch",
		Date:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		CategoryID:  category.ID,
	})
	require.NoError(suite.T(), err)
	return expense
}

func (suite *serviceSuite) share(owner *models.User, expense *models.Expense, recipient *models.User, split string) *models.ShareView {
	view, err := suite.sharing.Create(suite.ctx, owner.ID, expense.ID, ShareInput{
		SharedWithUserID: recipient.ID,
		SplitPercentage:  decimal.RequireFromString(split),
	})
	require.NoError(suite.T(), err)
	return view
}
