package models

// Entry is a dictionary lookup result tailored to the learner's level
// and interests.
type Entry struct {
	Word        string   `json:"word"`
	Translation string   `json:"translation"`
	Definition  string   `json:"definition"`
	Examples    []string `json:"examples"`
	Level       string   `json:"level"`
}
