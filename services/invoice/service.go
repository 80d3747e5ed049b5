package invoice

import (
	"github.com/MarcGrol/marketbackend/lib/myblobstore"
	"github.com/MarcGrol/marketbackend/lib/mylog"
	"github.com/MarcGrol/marketbackend/lib/mypubsub"
	"github.com/MarcGrol/marketbackend/lib/mystore"
	"github.com/MarcGrol/marketbackend/lib/mytime"
	"github.com/MarcGrol/marketbackend/lib/myuuid"
	"github.com/MarcGrol/marketbackend/services/catalog"
	"github.com/MarcGrol/marketbackend/services/order"
)

// systemCaller marks invocations triggered by our own event handling
// instead of an end user. It bypasses the buyer/owner check.
const systemCaller = "system"

type service struct {
	invoiceStore  mystore.Store[Invoice]
	sequenceStore mystore.Store[Sequence]
	orderStore    mystore.Store[order.Order]
	catalog       catalog.Accessor
	subscriber    mypubsub.PubSub
	blobResolver  myblobstore.URLResolver
	nower         mytime.Nower
	uuider        myuuid.UUIDer
	logger        mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(invoiceStore mystore.Store[Invoice], sequenceStore mystore.Store[Sequence], orderStore mystore.Store[order.Order], catalogAccessor catalog.Accessor, subscriber mypubsub.PubSub, blobResolver myblobstore.URLResolver, nower mytime.Nower, uuider myuuid.UUIDer, logger mylog.Logger) *service {
	return &service{
		invoiceStore:  invoiceStore,
		sequenceStore: sequenceStore,
		orderStore:    orderStore,
		catalog:       catalogAccessor,
		subscriber:    subscriber,
		blobResolver:  blobResolver,
		nower:         nower,
		uuider:        uuider,
		logger:        logger,
	}
}
