package http

import "net/http"

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	NewJSONResponse().Body(s.workspace.Dashboard()).Write(w)
}

// handleListInvoices returns invoices with project name, client name and total resolved.
func (s *Server) handleListInvoices(w http.ResponseWriter, _ *http.Request) {
	NewJSONResponse().Body(nonNil(s.workspace.Invoices())).Write(w)
}
