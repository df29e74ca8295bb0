package handlers

import (
	"context"

	"github.com/monocle-dev/expense-tracker/internal/auth"
	"github.com/monocle-dev/expense-tracker/internal/events"
	applog "github.com/monocle-dev/expense-tracker/internal/log"
	"github.com/monocle-dev/expense-tracker/internal/services"
)

// Handler serves the JSON API. Handlers only translate between HTTP and the
// services; every rule lives in the services.
type Handler struct {
	users      *services.UserService
	categories *services.CategoryService
	expenses   *services.ExpenseService
	sharing    *services.SharingService
	tokens     *auth.TokenManager
	hub        *events.Hub
	ping       func(ctx context.Context) error
	log        *applog.Logger
}

type Deps struct {
	Users      *services.UserService
	Categories *services.CategoryService
	Expenses   *services.ExpenseService
	Sharing    *services.SharingService
	Tokens     *auth.TokenManager
	Hub        *events.Hub
	// Ping checks the database for the health endpoint.
	Ping func(ctx context.Context) error
	Log  *applog.Logger
}

func New(deps Deps) *Handler {
	return &Handler{
		users:      deps.Users,
		categories: deps.Categories,
		expenses:   deps.Expenses,
		sharing:    deps.Sharing,
		tokens:     deps.Tokens,
		hub:        deps.Hub,
		ping:       deps.Ping,
		log:        deps.Log.WithComponent(applog.ComponentHTTP),
	}
}
