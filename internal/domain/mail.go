package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type RosterPublishedMailData struct {
	FullName  string   `json:"fullName"`
	Date      string   `json:"date"`
	ShiftName string   `json:"shiftName"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	TaskNames []string `json:"taskNames"`
}
