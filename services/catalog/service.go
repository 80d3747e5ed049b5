package catalog

import (
	"github.com/MarcGrol/marketbackend/lib/mylog"
	"github.com/MarcGrol/marketbackend/lib/mystore"
	"github.com/MarcGrol/marketbackend/lib/mytime"
	"github.com/MarcGrol/marketbackend/lib/myuuid"
)

type service struct {
	productStore mystore.Store[Product]
	storeStore   mystore.Store[Store]
	nower        mytime.Nower
	uuider       myuuid.UUIDer
	logger       mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(productStore mystore.Store[Product], storeStore mystore.Store[Store], nower mytime.Nower, uuider myuuid.UUIDer, logger mylog.Logger) *service {
	return &service{
		productStore: productStore,
		storeStore:   storeStore,
		nower:        nower,
		uuider:       uuider,
		logger:       logger,
	}
}
