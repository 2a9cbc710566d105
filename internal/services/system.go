package services

// Version is reported by the system endpoint.
const Version = "1.0.3"

type SystemVersion struct {
	Version    string            `json:"version"`
	Components map[string]string `json:"components"`
}

type SystemService interface {
	Version() SystemVersion
}

type systemService struct{}

func NewSystemService() SystemService { return systemService{} }

func (systemService) Version() SystemVersion {
	return SystemVersion{
		Version:    Version,
		Components: map[string]string{"gateway": Version},
	}
}
