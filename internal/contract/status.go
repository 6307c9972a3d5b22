package contract

import "github.com/alexanderramin/parada/internal/app"

type StatusRequest = app.StatusRequest

func NewStatusRequest() StatusRequest {
	return app.NewStatusRequest()
}

type PhaseStatusView = app.PhaseStatusView

type StatusSummary = app.StatusSummary

type StatusResponse = app.StatusResponse
