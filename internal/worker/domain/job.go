package domain

// Job represents a claimed extraction job loaded for processing
type Job struct {
	JobID       string
	UserID      string
	Filename    string
	StoragePath string
	FileType    string
	TemplateID  string
	Status      string
	RetryCount  int
	MaxRetries  int
}

// JobMessage represents a job message from RabbitMQ
type JobMessage struct {
	JobID       string `json:"job_id"`
	DeliveryTag uint64 `json:"-"`
}

// ExtractedField is a single field produced by the extraction backend
type ExtractedField struct {
	Name       string
	Value      string
	Confidence float64
}

// ExtractionResult is the full output of a successful extraction
type ExtractionResult struct {
	DocumentType string
	Confidence   float64
	Fields       []ExtractedField
}
