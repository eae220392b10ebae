package llm

import "google.golang.org/genai"

// WorkOrderResponseSchema describes the JSON shape the model must return.
// It mirrors types.WorkOrderResponse field for field. Keeping the schema
// here rather than deriving it by reflection makes the contract visible
// and keeps nesting within Gemini's schema depth limits.
func WorkOrderResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"workOrderNumber": {Type: genai.TypeString, Description: "Format: WO-YYYYMMDD-XXXX"},
			"machineId":       {Type: genai.TypeString},
			"title":           {Type: genai.TypeString},
			"description":     {Type: genai.TypeString},
			"type": {
				Type: genai.TypeString,
				Enum: []string{"corrective", "preventive", "emergency"},
			},
			"priority": {
				Type: genai.TypeString,
				Enum: []string{"critical", "high", "medium", "low"},
			},
			"status":     {Type: genai.TypeString},
			"assignedTo": {Type: genai.TypeString, Nullable: genai.Ptr(true)},
			"notes":      {Type: genai.TypeString},
			"estimatedDuration": {
				Type:        genai.TypeInteger,
				Description: "Total minutes as an integer, never a formatted string",
			},
			"partsUsed": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"partId":     {Type: genai.TypeString},
						"partNumber": {Type: genai.TypeString},
						"quantity":   {Type: genai.TypeInteger},
					},
					Required: []string{"partId", "partNumber", "quantity"},
				},
			},
			"tasks": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"sequence":                 {Type: genai.TypeInteger},
						"title":                    {Type: genai.TypeString},
						"description":              {Type: genai.TypeString},
						"estimatedDurationMinutes": {Type: genai.TypeInteger},
						"requiredSkills": {
							Type:  genai.TypeArray,
							Items: &genai.Schema{Type: genai.TypeString},
						},
						"safetyNotes": {Type: genai.TypeString},
					},
					Required: []string{"sequence", "title", "description", "estimatedDurationMinutes"},
				},
			},
		},
		Required: []string{
			"workOrderNumber", "machineId", "title", "description",
			"type", "priority", "status", "estimatedDuration",
			"partsUsed", "tasks",
		},
	}
}
