package shared

// Asynq queues
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// Asynq task types
const (
	TypeMirrorProductImages = "product:mirror_images"
	TypeMirrorSweep         = "product:mirror_sweep"
)

// MirrorImagesPayload asks the worker to copy a product's external images into object storage
type MirrorImagesPayload struct {
	ProductID string `json:"productId"`
	ImportID  string `json:"importId,omitempty"`
}

// MirrorSweepPayload drives the periodic sweep; Limit caps products per tick
type MirrorSweepPayload struct {
	Limit int `json:"limit"`
}
