package web

import (
	"github.com/gorilla/mux"
)

// Маршрутизатор
func (app *WebApp) SetRoutes() *mux.Router {
	router := mux.NewRouter()

	// Ограничение количества запросов от одного IP
	router.Use(LimitMiddleware)

	router.HandleFunc("/rules", app.HandleGetRules).Methods("GET")
	router.HandleFunc("/rules", app.HandlePostRule).Methods("POST")
	router.HandleFunc("/rules/{id}", app.HandlePutRule).Methods("PUT")
	router.HandleFunc("/rules/{id}", app.HandleDeleteRule).Methods("DELETE")
	router.HandleFunc("/rules/{id}/test", app.HandleTestRule).Methods("POST")

	router.HandleFunc("/templates", app.HandleGetTemplates).Methods("GET")
	router.HandleFunc("/templates", app.HandlePostTemplate).Methods("POST")

	router.HandleFunc("/logs", app.HandleGetLogs).Methods("GET")
	router.HandleFunc("/logs/{id}/response", app.HandlePostLogResponse).Methods("POST")

	router.HandleFunc("/analytics", app.HandleGetAnalytics).Methods("GET")

	return router
}
