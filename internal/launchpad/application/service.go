package application

// RegistryService 聚合写操作与查询服务，作为接口层的唯一依赖
type RegistryService struct {
	*RegistryCommandService
	*RegistryQueryService
}

// NewRegistryService 组合写操作与查询服务
func NewRegistryService(command *RegistryCommandService, query *RegistryQueryService) *RegistryService {
	return &RegistryService{
		RegistryCommandService: command,
		RegistryQueryService:   query,
	}
}
