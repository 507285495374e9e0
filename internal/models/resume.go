package models

import "time"

// ResumeRecord is one harvested resume.
type ResumeRecord struct {
	UpdateDate     string `json:"update_date"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Salary         string `json:"salary"`
	URL            string `json:"url"`
}

// Category is one entry of the live resumes-by-category listing.
type Category struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Index int    `json:"index"`
}

// Search describes one executed search request.
type Search struct {
	ID         string     `json:"id"`
	ChatID     int64      `json:"chat_id,omitempty"`
	Category   int        `json:"category"`
	Profession string     `json:"profession"`
	Location   string     `json:"location"`
	Filters    FilterSpec `json:"filters"`
	CreatedAt  time.Time  `json:"created_at"`
}
