package server

import (
	"net/http"

	"studio/internal/menu"
	"studio/internal/module"
)

// MenuResponse is the body of GET /api/menu.
type MenuResponse struct {
	Sections []menu.Section    `json:"sections"`
	AppBar   []menu.AppBarItem `json:"appBar"`
}

func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, MenuResponse{
		Sections: s.deps.Menu.Sections(),
		AppBar:   s.deps.Menu.AppBarItems(),
	})
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string                `json:"status"`
	Modules []module.ModuleStatus `json:"modules,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if s.deps.Modules != nil {
		resp.Modules = s.deps.Modules.States()
		for _, m := range resp.Modules {
			if m.State != module.StateInitialized {
				resp.Status = "degraded"
			}
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	WriteJSON(w, status, resp)
}
