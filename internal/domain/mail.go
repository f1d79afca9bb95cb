package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

const MailTypeNewWorkersImported = "new_workers_imported"

type NewWorkersImportedMailData struct {
	FullName    string   `json:"fullName"`
	WorkerNames []string `json:"workerNames"`
}
