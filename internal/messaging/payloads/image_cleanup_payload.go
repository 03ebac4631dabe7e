package payloads

// Причины, по которым изображение стало ненужным
const (
	ReasonDeleted  = "deleted"
	ReasonReplaced = "replaced"
	// ReasonOrphaned — файл загружен, но запись не сохранилась
	ReasonOrphaned = "orphaned"
)

// ImageCleanupPayload описывает изображение, которое нужно удалить с медиа-хостинга
// через RabbitMQ.
type ImageCleanupPayload struct {
	ImageURL   string `json:"image_url"`
	OwnerID    uint   `json:"owner_id"`
	ArtPieceID uint   `json:"art_piece_id"`
	Reason     string `json:"reason"`
}
