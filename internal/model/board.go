package model

type Board struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Desc   string `json:"desc"`
	URL    string `json:"url,omitempty"`
	Closed bool   `json:"closed,omitempty"`
}
