// Package di provides dependency injection configuration for the DocVault server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/docvaultapp/docvault-server/internal/auth"
	"github.com/docvaultapp/docvault-server/internal/config"
	"github.com/docvaultapp/docvault-server/internal/di/providers"
	"github.com/docvaultapp/docvault-server/internal/logger"
	"github.com/docvaultapp/docvault-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideAccessService)
	do.Provide(injector, providers.ProvideDocumentService)
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideSearchService)
	do.Provide(injector, providers.ProvideShareService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap invokes all services in dependency order to trigger initialization.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.AccessService](injector)
	_ = do.MustInvoke[*service.DocumentService](injector)
	_ = do.MustInvoke[*service.TagService](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*service.ShareService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
