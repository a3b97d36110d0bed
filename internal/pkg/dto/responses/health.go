package responses

type Health struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}
