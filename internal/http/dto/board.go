package dto

// ClassifyRequest is the form posted from a card on the grid. Comment is
// the id of the comment that currently classifies the card, if any.
type ClassifyRequest struct {
	Impact  string `form:"impact" binding:"omitempty,oneof=high medium low"`
	Effort  string `form:"effort" binding:"omitempty,oneof=high medium low"`
	Comment string `form:"comment" binding:"omitempty,max=64,alphanum"`
}
