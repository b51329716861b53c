package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToStaff(msgType string, payload interface{})
}

// Staff feed events
const (
	EventApplicationSubmitted = "application_submitted"
	EventApplicationEvaluated = "application_evaluated"
	EventApplicationCancelled = "application_cancelled"
	EventDocumentSubmitted    = "document_submitted"
	EventDocumentReviewed     = "document_reviewed"
	EventAnnouncementFinal    = "announcement_finalized"
)

func notify(b Broadcaster, msgType string, payload interface{}) {
	if b != nil {
		b.BroadcastToStaff(msgType, payload)
	}
}
