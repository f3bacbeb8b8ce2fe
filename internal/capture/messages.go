package capture

import (
	"github.com/crow2678/Digital-Twin-sub001/internal/domain/events"
	"go.uber.org/zap"
)

// Message is the producer contract: a declared source tag plus a partial
// event payload.
type Message struct {
	Source string            `json:"source"`
	Data   events.EventInput `json:"data"`
}

// HandleMessage demultiplexes a producer message by its declared source.
// The demux exists purely for diagnostic logging; the event is recorded
// unconditionally regardless of producer category.
func (t *Tracker) HandleMessage(msg Message) events.Event {
	switch msg.Source {
	case events.SourceSalesforce:
		t.log.Debug("salesforce producer message", zap.String("type", msg.Data.Type), zap.String("domain", msg.Data.Domain))
	case events.SourceOutlook:
		t.log.Debug("outlook producer message", zap.String("type", msg.Data.Type))
	case events.SourceResearch:
		t.log.Debug("research producer message", zap.String("type", msg.Data.Type), zap.String("url", msg.Data.URL))
	case events.SourceGeneral:
		t.log.Debug("general producer message", zap.String("type", msg.Data.Type))
	case events.SourcePopup:
		t.log.Debug("popup message", zap.String("type", msg.Data.Type))
	default:
		t.log.Warn("message from undeclared producer", zap.String("source", msg.Source))
	}

	return t.RecordEvent(msg.Data)
}
