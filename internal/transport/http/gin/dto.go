package httpgin

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// SavePlanResponse mirrors plans.SaveResult for the API docs.
type SavePlanResponse struct {
	Success bool   `json:"success" example:"true"`
	ID      string `json:"id" example:"3f9a0c1be27d"`
	URL     string `json:"url" example:"https://plan.example.com/?id=3f9a0c1be27d"`
}

// PlanSnapshot documents the snapshot body. Handlers pass snapshots
// through as raw JSON.
type PlanSnapshot struct {
	Version  int            `json:"version" example:"4"`
	Tables   []any          `json:"tables"`
	Guests   []any          `json:"guests"`
	Settings map[string]any `json:"settings"`
}
