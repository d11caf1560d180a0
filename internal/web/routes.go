package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matiasrios/facegate/internal/attendance"
	"github.com/matiasrios/facegate/internal/web/handlers"
)

func (s *Server) setupRoutes(svc *attendance.Service, ex handlers.FaceExtractor) {
	employeesHandler := handlers.NewEmployeesHandler(svc)
	attendanceHandler := handlers.NewAttendanceHandler(svc, ex)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/employees", employeesHandler.Register)
		r.Get("/employees", employeesHandler.List)
		r.Get("/employees/{id}/history", employeesHandler.History)

		r.Post("/attendance/validate", attendanceHandler.Validate)
		r.Post("/attendance/recognize", attendanceHandler.Recognize)
	})

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>Facegate</title>
    <style>
        body { font-family: system-ui, sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; background: #1a1a2e; color: #eee; }
        .container { text-align: center; }
        h1 { color: #00d9ff; }
        p { color: #aaa; }
        a { color: #00d9ff; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Facegate</h1>
        <p>Attendance API server.</p>
        <p>API is available at <a href="/api/v1/health">/api/v1/health</a></p>
    </div>
</body>
</html>`))
	})
}
