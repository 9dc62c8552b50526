package providers

import (
	"github.com/samber/do/v2"

	"github.com/docvaultapp/docvault-server/internal/config"
	"github.com/docvaultapp/docvault-server/internal/logger"
	"github.com/docvaultapp/docvault-server/internal/service"
)

// ProvideAccessService provides the access policy evaluator.
func ProvideAccessService(i do.Injector) (*service.AccessService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAccessService(storeHandle.Store, log.Logger), nil
}

// ProvideDocumentService provides the document service.
func ProvideDocumentService(i do.Injector) (*service.DocumentService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	access := do.MustInvoke[*service.AccessService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewDocumentService(storeHandle.Store, access, log.Logger), nil
}

// ProvideTagService provides the tag service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	access := do.MustInvoke[*service.AccessService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, access, log.Logger), nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(storeHandle.Store, cfg.Search.IncludeGranted, cfg.Search.FacetTopN, log.Logger), nil
}

// ProvideShareService provides the share link service.
func ProvideShareService(i do.Injector) (*service.ShareService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	access := do.MustInvoke[*service.AccessService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewShareService(storeHandle.Store, access, log.Logger), nil
}
