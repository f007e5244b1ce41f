package model

import "time"

type ActionType string

const (
	ActionTypeCommentCard ActionType = "commentCard"
)

type Card struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	URL     string   `json:"url"`
	Labels  []Label  `json:"labels"`
	Actions []Action `json:"actions"`
}

type Label struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Action is a card activity entry. Only comment actions carry Data.Text.
type Action struct {
	ID   string     `json:"id"`
	Type ActionType `json:"type"`
	Data ActionData `json:"data"`
	Date time.Time  `json:"date"`
}

type ActionData struct {
	Text string `json:"text"`
}

// LabelNames returns the card's label names in their given order.
func (c Card) LabelNames() []string {
	names := make([]string, 0, len(c.Labels))
	for _, l := range c.Labels {
		names = append(names, l.Name)
	}
	return names
}

// Comments returns the card's comment actions, preserving order.
func (c Card) Comments() []Action {
	var comments []Action
	for _, a := range c.Actions {
		if a.Type == ActionTypeCommentCard {
			comments = append(comments, a)
		}
	}
	return comments
}
