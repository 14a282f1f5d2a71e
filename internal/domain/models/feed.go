package models

// NotifyRecord is a delivery record of a change notification
type NotifyRecord struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	InitiatedTime string `json:"initiatedTime"`
}

// Event is one commit in a namespace's activity feed
type Event struct {
	CommitID      string `json:"commitId"`
	Author        string `json:"author"`
	CommitMessage string `json:"commitMessage"`
	Date          string `json:"date"`
}
