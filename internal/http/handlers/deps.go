package handlers

import (
	"earnhub/internal/repos"
	"earnhub/internal/services"
	"earnhub/internal/token"
)

type Deps struct {
	Auth    *services.AuthService
	Catalog *services.CatalogService
	Editors *services.EditorRegistry
	Tokens  *token.Issuer

	AuthHandler  *AuthHandler
	PageHandler  *PageHandler
	AdminHandler *AdminHandler
	APIHandler   *APIHandler
}

// NewDeps wires services and handlers over one opportunity store.
func NewDeps(store repos.OpportunityStore, users *repos.UserRepo, tokens *token.Issuer, cookieSecure bool) *Deps {
	authSvc := &services.AuthService{Users: users}
	catalog := services.NewCatalogService(store)
	editors := services.NewEditorRegistry(store)

	return &Deps{
		Auth:    authSvc,
		Catalog: catalog,
		Editors: editors,
		Tokens:  tokens,

		AuthHandler:  &AuthHandler{Auth: authSvc, Editors: editors, CookieSecure: cookieSecure},
		PageHandler:  &PageHandler{Catalog: catalog},
		AdminHandler: &AdminHandler{Editors: editors},
		APIHandler:   &APIHandler{Catalog: catalog, Auth: authSvc, Tokens: tokens},
	}
}
