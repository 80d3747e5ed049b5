package invoice

import (
	"context"
	"fmt"

	"github.com/MarcGrol/marketbackend/lib/myhttp"
	"github.com/MarcGrol/marketbackend/lib/mylog"
	"github.com/MarcGrol/marketbackend/services/orderevents"
)

func (s *service) Subscribe(c context.Context) error {
	err := s.subscriber.CreateTopic(c, orderevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", orderevents.TopicName, err)
	}

	err = s.subscriber.Subscribe(c, orderevents.TopicName, myhttp.GuessHostnameWithScheme()+"/api/invoice/event")
	if err != nil {
		return fmt.Errorf("error subscribing to topic %s: %s", orderevents.TopicName, err)
	}

	return nil
}

// OnOrderPlaced pre-generates the invoice so it is ready the moment
// buyer or store asks for it. Generation is idempotent, so a redelivered
// event is harmless.
func (s *service) OnOrderPlaced(c context.Context, topic string, event orderevents.OrderPlaced) error {
	_, err := s.generate(c, systemCaller, event.OrderUID)
	if err != nil {
		s.logger.Log(c, event.OrderUID, mylog.SeverityError, "Error generating invoice for order %s: %s", event.OrderUID, err)
		return err
	}

	return nil
}

func (s *service) OnOrderStatusChanged(c context.Context, topic string, event orderevents.OrderStatusChanged) error {
	// Issued invoices are immutable, nothing to do
	return nil
}
