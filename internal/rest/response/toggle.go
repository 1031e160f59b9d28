package response

import "github.com/Guyuepp/Go-Like-Toggle/domain"

// Toggle is the body of POST /messages/:id/like.
// Liked is a pointer so that a missing field can be told apart from false.
type Toggle struct {
	Liked *bool `json:"liked" validate:"required"`
}

// ToDomain: Response -> Domain
func (t *Toggle) ToDomain() domain.ToggleResponse {
	return domain.ToggleResponse{
		Liked: t.Liked != nil && *t.Liked,
	}
}
