package cmd

import (
	"go.uber.org/dig"

	"github.com/depscout/depscout/application"
	ecosystemPkg "github.com/depscout/depscout/infrastructure/ecosystem"
	goScanner "github.com/depscout/depscout/infrastructure/ecosystem/golang"
	jsScanner "github.com/depscout/depscout/infrastructure/ecosystem/javascript"
	pyScanner "github.com/depscout/depscout/infrastructure/ecosystem/python"
	tfScanner "github.com/depscout/depscout/infrastructure/ecosystem/terraform"
	providerPkg "github.com/depscout/depscout/infrastructure/provider"
	ghProv "github.com/depscout/depscout/infrastructure/provider/github"
	glProv "github.com/depscout/depscout/infrastructure/provider/gitlab"
)

func buildProviderRegistry() *providerPkg.Registry {
	reg := providerPkg.NewRegistry()
	reg.Register("github", ghProv.New)
	reg.Register("gitlab", glProv.New)
	return reg
}

func buildEcosystemRegistry() *ecosystemPkg.Registry {
	reg := ecosystemPkg.NewRegistry()
	reg.Register(pyScanner.New())
	reg.Register(goScanner.New())
	reg.Register(jsScanner.New())
	reg.Register(tfScanner.New())
	return reg
}

// injectInventoryService wires the registries and the service through a DIG
// container. Registration failures are programming errors, hence the panics.
func injectInventoryService() *application.InventoryService {
	container := dig.New()

	if err := container.Provide(buildProviderRegistry); err != nil {
		panic(err)
	}
	if err := container.Provide(buildEcosystemRegistry); err != nil {
		panic(err)
	}
	if err := container.Provide(application.NewInventoryService); err != nil {
		panic(err)
	}

	var svc *application.InventoryService
	if err := container.Invoke(func(s *application.InventoryService) {
		svc = s
	}); err != nil {
		panic(err)
	}

	return svc
}
