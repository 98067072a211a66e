package chi

// ExpressionRequest is the body of POST /api/search/expression.
type ExpressionRequest struct {
	Expression []string `json:"expression"`
	Page       int      `json:"page"`
	Size       int      `json:"size"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
