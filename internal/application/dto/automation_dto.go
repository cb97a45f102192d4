package dto

// CreateAutomationRuleRequest datos para crear una regla de automatización.
type CreateAutomationRuleRequest struct {
	Name      string `json:"name"`
	Trigger   string `json:"trigger"`
	Threshold int    `json:"threshold"`
	Action    string `json:"action"`
	Enabled   bool   `json:"enabled"`
}

// UpdateAutomationRuleRequest actualización parcial de una regla.
type UpdateAutomationRuleRequest struct {
	Name      *string `json:"name,omitempty"`
	Trigger   *string `json:"trigger,omitempty"`
	Threshold *int    `json:"threshold,omitempty"`
	Action    *string `json:"action,omitempty"`
	Enabled   *bool   `json:"enabled,omitempty"`
}
