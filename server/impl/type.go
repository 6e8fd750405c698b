package impl

// GenerateRequest asks for one rendered meme.
type GenerateRequest struct {
	// Topic is the trend to joke about, usually a brief's search term.
	Topic string `json:"topic"`
	// Template is the unique template name from the template db.
	Template string `json:"template"`
}

// GenerateResponse carries the generated captions and the composed image.
type GenerateResponse struct {
	Captions map[string]string `json:"captions"`
	// UriImage is the rendered meme as a PNG data URI.
	UriImage string `json:"uri_image"`
}

// TemplateSummary is the list view of one template; boxes are internal
// layout state and are not exposed to the UI.
type TemplateSummary struct {
	Name        string            `json:"name"`
	Explanation string            `json:"explanation"`
	Fields      map[string]string `json:"fields"`
}
